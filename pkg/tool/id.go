package tool

import (
	"strings"

	"github.com/google/uuid"
)

func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// DerivedID joins a provider object id with qualifiers into a stable
// identifier, so the same event always produces the same record id.
func DerivedID(base string, parts ...string) string {
	if len(parts) == 0 {
		return base
	}
	return base + ":" + strings.Join(parts, ":")
}
