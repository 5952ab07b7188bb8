// Package reconcile turns verified provider events into ledger and account
// writes. Every handler is safe to run more than once for the same event:
// donations are insert-if-absent, subscriptions and accounts are upserts
// guarded by event time.
package reconcile

import (
	"context"
	"time"

	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"

	"github.com/fatflowers/sponsorship/internal/app/service/account"
	"github.com/fatflowers/sponsorship/internal/models"
	"github.com/fatflowers/sponsorship/internal/platform/stripe/stripe_api"
	"github.com/fatflowers/sponsorship/internal/platform/stripe/stripe_event"
	"github.com/fatflowers/sponsorship/pkg/config"
	"github.com/fatflowers/sponsorship/pkg/metrics"
)

// SubscriptionFetcher reads current subscription state from the provider.
type SubscriptionFetcher interface {
	GetSubscription(ctx context.Context, id string) (*stripe_api.ProviderSubscription, error)
}

type LedgerStore interface {
	AppendDonation(ctx context.Context, d *models.Donation) (bool, error)
	UpsertSubscription(ctx context.Context, sub *models.Subscription) (bool, error)
	CancelSubscription(ctx context.Context, sub *models.Subscription) error
	GetSubscription(ctx context.Context, id string) (*models.Subscription, error)
}

type AccountStore interface {
	Upsert(ctx context.Context, u *account.Update) (bool, error)
}

// AuditLog receives subscription change records.
type AuditLog interface {
	SaveSubscriptionLog(ctx context.Context, log *models.SubscriptionLog)
}

// Outcome summarizes what a handler wrote, for the delivery audit log.
type Outcome struct {
	ViewerID       string   `json:"viewer_id,omitempty"`
	SubscriptionID string   `json:"subscription_id,omitempty"`
	DonationIDs    []string `json:"donation_ids,omitempty"`
	// SkippedDonationIDs were already recorded by an earlier delivery.
	SkippedDonationIDs  []string `json:"skipped_donation_ids,omitempty"`
	SubscriptionApplied *bool    `json:"subscription_applied,omitempty"`
	AccountApplied      bool     `json:"account_applied"`
}

// HandlerFunc reconciles one verified event.
type HandlerFunc func(ctx context.Context, event *stripe.Event) (*Outcome, error)

type Handlers struct {
	provider SubscriptionFetcher
	ledger   LedgerStore
	accounts AccountStore
	audit    AuditLog
	metrics  *metrics.WebhookMetrics
	log      *zap.SugaredLogger
	cfg      *config.Config

	defaultCurrency string
	now             func() time.Time
}

func NewHandlers(
	provider SubscriptionFetcher,
	ledger LedgerStore,
	accounts AccountStore,
	audit AuditLog,
	m *metrics.WebhookMetrics,
	cfg *config.Config,
	log *zap.SugaredLogger,
) *Handlers {
	currency := "usd"
	if cfg != nil && cfg.Stripe.Currency != "" {
		currency = cfg.Stripe.Currency
	}
	return &Handlers{
		provider:        provider,
		ledger:          ledger,
		accounts:        accounts,
		audit:           audit,
		metrics:         m,
		log:             log,
		cfg:             cfg,
		defaultCurrency: currency,
		now:             time.Now,
	}
}

// Routes is the fixed event-type routing table. Types not listed are
// acknowledged and ignored.
func (h *Handlers) Routes() map[stripe.EventType]HandlerFunc {
	return map[stripe.EventType]HandlerFunc{
		stripe_event.EventCheckoutSessionCompleted:    h.CheckoutCompleted,
		stripe_event.EventInvoicePaymentSucceeded:     h.InvoicePaymentSucceeded,
		stripe_event.EventInvoicePaymentFailed:        h.InvoicePaymentFailed,
		stripe_event.EventCustomerSubscriptionUpdated: h.SubscriptionUpdated,
		stripe_event.EventCustomerSubscriptionDeleted: h.SubscriptionDeleted,
	}
}

// eventTime orders writes. Events carry their creation second; a missing
// value falls back to processing time.
func (h *Handlers) eventTime(event *stripe.Event) int64 {
	if event.Created > 0 {
		return event.Created
	}
	return h.now().Unix()
}

// planForPrice maps a provider price back to the configured plan id.
func (h *Handlers) planForPrice(priceID string) string {
	if h.cfg == nil || priceID == "" {
		return ""
	}
	if plan := h.cfg.GetPlanByProviderPriceID(priceID); plan != nil {
		return plan.ID
	}
	return ""
}

func (h *Handlers) nowUTC() *time.Time {
	t := h.now().UTC()
	return &t
}
