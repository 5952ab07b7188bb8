package stripe_event

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stripe/stripe-go/v82"

	"github.com/fatflowers/sponsorship/pkg/billingerr"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// CheckoutSession is the checkout.session.completed payload.
type CheckoutSession struct {
	ID           string            `json:"id" validate:"required"`
	Mode         string            `json:"mode"`
	Customer     string            `json:"customer"`
	Subscription string            `json:"subscription"`
	AmountTotal  *int64            `json:"amount_total"`
	Currency     string            `json:"currency"`
	Metadata     map[string]string `json:"metadata"`
}

// Invoice is the invoice.payment_succeeded / invoice.payment_failed payload.
type Invoice struct {
	ID           string `json:"id" validate:"required"`
	Customer     string `json:"customer"`
	Subscription string `json:"subscription"`
	AmountPaid   int64  `json:"amount_paid" validate:"gte=0"`
	AmountDue    int64  `json:"amount_due" validate:"gte=0"`
	Currency     string `json:"currency" validate:"required"`
	Parent       *struct {
		SubscriptionDetails *struct {
			Subscription string            `json:"subscription"`
			Metadata     map[string]string `json:"metadata"`
		} `json:"subscription_details"`
	} `json:"parent"`
}

// SubscriptionID returns the referenced subscription, reading the newer
// parent.subscription_details shape when the top-level field is absent.
func (i *Invoice) SubscriptionID() string {
	if i.Subscription != "" {
		return i.Subscription
	}
	if i.Parent != nil && i.Parent.SubscriptionDetails != nil {
		return i.Parent.SubscriptionDetails.Subscription
	}
	return ""
}

// SubscriptionMetadata is the subscription metadata snapshot carried by the
// invoice, if any.
func (i *Invoice) SubscriptionMetadata() map[string]string {
	if i.Parent != nil && i.Parent.SubscriptionDetails != nil {
		return i.Parent.SubscriptionDetails.Metadata
	}
	return nil
}

// Subscription is the customer.subscription.* payload.
type Subscription struct {
	ID                 string            `json:"id" validate:"required"`
	Customer           string            `json:"customer"`
	Status             string            `json:"status" validate:"required"`
	CurrentPeriodStart int64             `json:"current_period_start"`
	CurrentPeriodEnd   int64             `json:"current_period_end"`
	CanceledAt         int64             `json:"canceled_at"`
	EndedAt            int64             `json:"ended_at"`
	Metadata           map[string]string `json:"metadata"`
	Items              struct {
		Data []SubscriptionItem `json:"data"`
	} `json:"items"`
}

type SubscriptionItem struct {
	CurrentPeriodStart int64 `json:"current_period_start"`
	CurrentPeriodEnd   int64 `json:"current_period_end"`
	Price              struct {
		ID         string `json:"id"`
		UnitAmount int64  `json:"unit_amount"`
		Currency   string `json:"currency"`
	} `json:"price"`
}

// PeriodBounds returns the current billing period. API versions that moved
// the bounds onto subscription items are read from the first item.
func (s *Subscription) PeriodBounds() (start, end *time.Time) {
	startUnix, endUnix := s.CurrentPeriodStart, s.CurrentPeriodEnd
	if startUnix == 0 && endUnix == 0 && len(s.Items.Data) > 0 {
		startUnix, endUnix = s.Items.Data[0].CurrentPeriodStart, s.Items.Data[0].CurrentPeriodEnd
	}
	return UnixTime(startUnix), UnixTime(endUnix)
}

// PriceID returns the first item's price id.
func (s *Subscription) PriceID() string {
	if len(s.Items.Data) == 0 {
		return ""
	}
	return s.Items.Data[0].Price.ID
}

// EndedTime returns canceled_at, falling back to ended_at.
func (s *Subscription) EndedTime() *time.Time {
	if t := UnixTime(s.CanceledAt); t != nil {
		return t
	}
	return UnixTime(s.EndedAt)
}

// UnixTime converts a provider unix timestamp, treating zero as absent.
func UnixTime(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}

func decode[T any](event *stripe.Event) (*T, error) {
	if event == nil || event.Data == nil || len(event.Data.Raw) == 0 {
		return nil, billingerr.Malformed("event has no data object")
	}
	var out T
	if err := json.Unmarshal(event.Data.Raw, &out); err != nil {
		return nil, billingerr.Malformed("decode %s: %v", event.Type, err)
	}
	if err := validate.Struct(&out); err != nil {
		return nil, billingerr.Malformed("invalid %s payload: %v", event.Type, err)
	}
	return &out, nil
}

func DecodeCheckoutSession(event *stripe.Event) (*CheckoutSession, error) {
	return decode[CheckoutSession](event)
}

func DecodeInvoice(event *stripe.Event) (*Invoice, error) {
	return decode[Invoice](event)
}

func DecodeSubscription(event *stripe.Event) (*Subscription, error) {
	return decode[Subscription](event)
}
