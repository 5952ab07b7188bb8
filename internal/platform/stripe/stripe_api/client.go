// Package stripe_api is the outbound Stripe client: subscription lookups for
// webhook reconciliation and checkout session creation.
package stripe_api

import (
	"context"
	"errors"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/sponsorship/pkg/billingerr"
	"github.com/fatflowers/sponsorship/pkg/config"
)

// ProviderSubscription is the provider's current view of a subscription.
type ProviderSubscription struct {
	ID                 string
	CustomerID         string
	Status             string
	Metadata           map[string]string
	PriceID            string
	UnitAmount         int64
	Currency           string
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	LatestInvoiceID    string
	// LatestInvoiceAmountPaid is only set when the latest invoice was expanded.
	LatestInvoiceAmountPaid int64
}

// CheckoutSessionRequest describes a provider-hosted checkout session.
type CheckoutSessionRequest struct {
	Subscription bool
	// PriceID is required for subscriptions.
	PriceID string
	// AmountMinor and Currency describe a one-time payment.
	AmountMinor int64
	Currency    string
	ProductName string
	CustomerID  string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// Client wraps the stripe-go API client.
type Client struct {
	api    *client.API
	logger *zap.SugaredLogger
}

func NewClient(cfg *config.Config, l *zap.SugaredLogger) *Client {
	if cfg.Stripe.SecretKey == "" {
		l.Warnw("stripe secret key not configured; provider lookups will fail")
	}
	api := &client.API{}
	api.Init(cfg.Stripe.SecretKey, nil)
	return &Client{api: api, logger: l}
}

// GetSubscription re-reads a subscription from the provider with its latest
// invoice expanded. Every failure is an upstream fetch failure.
func (c *Client) GetSubscription(ctx context.Context, id string) (*ProviderSubscription, error) {
	if id == "" {
		return nil, billingerr.Malformed("subscription id is empty")
	}
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	params.AddExpand("latest_invoice")
	sub, err := c.api.Subscriptions.Get(id, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			c.logger.Warnw("stripe get subscription failed", "subscription_id", id,
				"status", stripeErr.HTTPStatusCode, "code", stripeErr.Code, "request_id", stripeErr.RequestID)
		}
		return nil, billingerr.Upstream("get subscription "+id, err)
	}
	return FromStripeSubscription(sub), nil
}

// CreateCheckoutSession creates a hosted checkout session carrying metadata
// on the session and, for subscriptions, on the subscription it creates.
func (c *Client) CreateCheckoutSession(ctx context.Context, req *CheckoutSessionRequest) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		Metadata:   req.Metadata,
	}
	params.Context = ctx
	if req.CustomerID != "" {
		params.Customer = stripe.String(req.CustomerID)
	}
	if req.Subscription {
		params.Mode = stripe.String(string(stripe.CheckoutSessionModeSubscription))
		params.LineItems = []*stripe.CheckoutSessionLineItemParams{{
			Price:    stripe.String(req.PriceID),
			Quantity: stripe.Int64(1),
		}}
		params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{Metadata: req.Metadata}
	} else {
		params.Mode = stripe.String(string(stripe.CheckoutSessionModePayment))
		params.LineItems = []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(req.Currency),
				UnitAmount: stripe.Int64(req.AmountMinor),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(req.ProductName),
				},
			},
			Quantity: stripe.Int64(1),
		}}
		params.PaymentIntentData = &stripe.CheckoutSessionPaymentIntentDataParams{Metadata: req.Metadata}
	}

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, billingerr.Upstream("create checkout session", err)
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// FromStripeSubscription maps the SDK object onto ProviderSubscription.
func FromStripeSubscription(sub *stripe.Subscription) *ProviderSubscription {
	if sub == nil {
		return nil
	}
	out := &ProviderSubscription{
		ID:       sub.ID,
		Status:   string(sub.Status),
		Metadata: sub.Metadata,
		Currency: string(sub.Currency),
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		out.CurrentPeriodStart = unixPtr(item.CurrentPeriodStart)
		out.CurrentPeriodEnd = unixPtr(item.CurrentPeriodEnd)
		if item.Price != nil {
			out.PriceID = item.Price.ID
			out.UnitAmount = item.Price.UnitAmount
			if out.Currency == "" {
				out.Currency = string(item.Price.Currency)
			}
		}
	}
	if sub.LatestInvoice != nil {
		out.LatestInvoiceID = sub.LatestInvoice.ID
		out.LatestInvoiceAmountPaid = sub.LatestInvoice.AmountPaid
	}
	return out
}

func unixPtr(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}

var Module = fx.Options(
	fx.Provide(NewClient),
)
