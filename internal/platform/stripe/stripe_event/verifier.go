// Package stripe_event authenticates Stripe webhook deliveries and decodes
// their payloads into validated, typed variants.
package stripe_event

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/fatflowers/sponsorship/pkg/billingerr"
)

// SignatureHeader is the request header carrying the HMAC signature.
const SignatureHeader = "Stripe-Signature"

const (
	EventCheckoutSessionCompleted    = stripe.EventType("checkout.session.completed")
	EventInvoicePaymentSucceeded     = stripe.EventType("invoice.payment_succeeded")
	EventInvoicePaymentFailed        = stripe.EventType("invoice.payment_failed")
	EventCustomerSubscriptionUpdated = stripe.EventType("customer.subscription.updated")
	EventCustomerSubscriptionDeleted = stripe.EventType("customer.subscription.deleted")
)

// Verify authenticates payload against the signature header and returns the
// parsed event. payload must be the raw request body exactly as received.
func Verify(payload []byte, header, secret string, tolerance time.Duration) (*stripe.Event, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("%w: webhook secret not configured", billingerr.ErrInvalidSignature)
	}
	if strings.TrimSpace(header) == "" {
		return nil, fmt.Errorf("%w: missing %s header", billingerr.ErrInvalidSignature, SignatureHeader)
	}
	if tolerance <= 0 {
		tolerance = webhook.DefaultTolerance
	}

	event, err := webhook.ConstructEventWithOptions(payload, header, secret, webhook.ConstructEventOptions{
		Tolerance:                tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		if isSignatureError(err) {
			return nil, fmt.Errorf("%w: %w", billingerr.ErrInvalidSignature, err)
		}
		// signature matched but the body is not an event
		return nil, billingerr.Malformed("decode event: %v", err)
	}
	if event.ID == "" || event.Type == "" {
		return nil, billingerr.Malformed("event without id or type")
	}
	return &event, nil
}

func isSignatureError(err error) bool {
	return errors.Is(err, webhook.ErrNotSigned) ||
		errors.Is(err, webhook.ErrInvalidHeader) ||
		errors.Is(err, webhook.ErrNoValidSignature) ||
		errors.Is(err, webhook.ErrTooOld)
}
