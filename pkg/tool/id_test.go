package tool

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestGenerateUUIDV7(t *testing.T) {
	id := GenerateUUIDV7()
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	require.Equal(t, uuid.Version(7), parsed.Version())
	require.NotEqual(t, id, GenerateUUIDV7())
}

func TestDerivedID(t *testing.T) {
	require.Equal(t, "in_1", DerivedID("in_1"))
	require.Equal(t, "in_1:failed:evt_9", DerivedID("in_1", "failed", "evt_9"))
}
