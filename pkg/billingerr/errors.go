// Package billingerr is the error taxonomy of the webhook reconciliation path.
//
// InvalidSignature and MalformedEvent are terminal for a delivery: retrying the
// same bytes cannot succeed, so they map to 4xx. UpstreamFetch and Store are
// transient and map to 5xx so the provider redelivers the event later. There is
// no retry loop inside this service.
package billingerr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrMalformedEvent   = errors.New("malformed event")
	ErrUpstreamFetch    = errors.New("upstream fetch failure")
	ErrStore            = errors.New("store failure")
)

// Malformed reports a verified event that lacks required data.
func Malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedEvent, fmt.Sprintf(format, args...))
}

// Upstream wraps a failed provider lookup.
func Upstream(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUpstreamFetch, op, err)
}

// Store wraps a persistence failure.
func Store(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStore, op, err)
}

// Retryable reports whether the provider should redeliver the event.
// Unclassified errors are treated as retryable.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrInvalidSignature) && !errors.Is(err, ErrMalformedEvent)
}

// HTTPStatus maps an error onto the webhook response status.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidSignature), errors.Is(err, ErrMalformedEvent):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Classify turns a processing-deadline error into a store failure so the
// caller answers with a retryable status.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrInvalidSignature) || errors.Is(err, ErrMalformedEvent) ||
		errors.Is(err, ErrUpstreamFetch) || errors.Is(err, ErrStore) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Store(op, err)
	}
	return err
}
