package types

type PaymentProvider string

const (
	PaymentProviderStripe PaymentProvider = "stripe"
)

type PlanInterval string

const (
	PlanIntervalMonth PlanInterval = "month"
	PlanIntervalYear  PlanInterval = "year"
)

// SponsorshipPlan is a recurring sponsorship tier configured under `plans`.
type SponsorshipPlan struct {
	ID              string `json:"id" mapstructure:"id"`
	Name            string `json:"name" mapstructure:"name"`
	ProviderPriceID string `json:"provider_price_id" mapstructure:"provider_price_id"`
	// AmountMinor is informational; the provider price is authoritative.
	AmountMinor int64        `json:"amount_minor" mapstructure:"amount_minor"`
	Currency    string       `json:"currency" mapstructure:"currency"`
	Interval    PlanInterval `json:"interval" mapstructure:"interval"`
}
