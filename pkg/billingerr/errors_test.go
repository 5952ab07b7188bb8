package billingerr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: http.StatusOK},
		{name: "signature", err: fmt.Errorf("verify: %w", ErrInvalidSignature), want: http.StatusBadRequest},
		{name: "malformed", err: Malformed("missing %s", "viewerId"), want: http.StatusBadRequest},
		{name: "upstream", err: Upstream("get subscription", errors.New("timeout")), want: http.StatusInternalServerError},
		{name: "store", err: Store("append donation", errors.New("conn refused")), want: http.StatusInternalServerError},
		{name: "unclassified", err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestRetryable(t *testing.T) {
	require.False(t, Retryable(nil))
	require.False(t, Retryable(ErrInvalidSignature))
	require.False(t, Retryable(Malformed("x")))
	require.True(t, Retryable(Upstream("op", errors.New("x"))))
	require.True(t, Retryable(Store("op", errors.New("x"))))
	require.True(t, Retryable(errors.New("x")))
}

func TestClassify_DeadlineIsStoreFailure(t *testing.T) {
	err := Classify("handle", fmt.Errorf("upsert: %w", context.DeadlineExceeded))
	require.ErrorIs(t, err, ErrStore)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	malformed := Malformed("x")
	require.Equal(t, malformed, Classify("handle", malformed))
}

func TestUpstream_KeepsCause(t *testing.T) {
	cause := errors.New("rate limited")
	err := Upstream("get subscription", cause)
	require.ErrorIs(t, err, ErrUpstreamFetch)
	require.ErrorIs(t, err, cause)
}
