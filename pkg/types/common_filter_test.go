package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommonFilter_Validate(t *testing.T) {
	allowed := []string{"viewer_id", "created_at"}

	tests := []struct {
		name    string
		filter  *CommonFilter
		wantErr string
	}{
		{name: "eq ok", filter: &CommonFilter{Field: "viewer_id", Operator: CommonFilterOperatorEq, Values: []any{"v1"}}},
		{name: "range ok", filter: &CommonFilter{Field: "created_at", Operator: CommonFilterOperatorRange, Values: []any{"2024-01-01", "2024-02-01"}}},
		{name: "unknown field", filter: &CommonFilter{Field: "amount; drop table donation", Operator: CommonFilterOperatorEq, Values: []any{1}}, wantErr: "not allowed"},
		{name: "missing value", filter: &CommonFilter{Field: "viewer_id", Operator: CommonFilterOperatorEq}, wantErr: "missing value"},
		{name: "short range", filter: &CommonFilter{Field: "created_at", Operator: CommonFilterOperatorRange, Values: []any{"x"}}, wantErr: "two values"},
		{name: "bad operator", filter: &CommonFilter{Field: "viewer_id", Operator: "like", Values: []any{"x"}}, wantErr: "unsupported operator"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filter.Validate(allowed)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
