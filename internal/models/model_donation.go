package models

import (
	"time"

	"github.com/fatflowers/sponsorship/pkg/types"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Donation is one recorded payment outcome. Rows are append-only: later
// events add new rows instead of mutating existing ones.
type Donation struct {
	// ID is the checkout session id, the invoice id, or an id derived from them.
	ID           string                `gorm:"column:id;type:varchar(255);primary_key" json:"id"`
	ProviderID   types.PaymentProvider `gorm:"column:provider_id;type:varchar(64);not null" json:"provider_id"`
	ViewerID     string                `gorm:"column:viewer_id;type:varchar(64);not null;index:idx_donation_viewer_created,priority:1" json:"viewer_id"`
	MissionaryID string                `gorm:"column:missionary_id;type:varchar(64);not null;default:'';index:idx_donation_missionary_created,priority:1" json:"missionary_id"`
	// AmountMinor is the provider amount in minor units (cents).
	AmountMinor int64 `gorm:"column:amount_minor;type:bigint;not null" json:"amount_minor"`
	// Amount is AmountMinor in major units.
	Amount   decimal.Decimal      `gorm:"column:amount;type:numeric(20,4);not null" json:"amount"`
	Currency string               `gorm:"column:currency;type:varchar(16);not null" json:"currency"`
	Status   types.DonationStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	Kind     types.DonationKind   `gorm:"column:kind;type:varchar(32);not null" json:"kind"`
	PlanID   *string              `gorm:"column:plan_id;type:varchar(64)" json:"plan_id"`

	SessionID      *string `gorm:"column:session_id;type:varchar(255)" json:"session_id"`
	InvoiceID      *string `gorm:"column:invoice_id;type:varchar(255)" json:"invoice_id"`
	SubscriptionID *string `gorm:"column:subscription_id;type:varchar(255);index" json:"subscription_id"`
	// EventID is the provider event that produced the row.
	EventID  string            `gorm:"column:event_id;type:varchar(255);not null" json:"event_id"`
	Metadata datatypes.JSONMap `gorm:"column:metadata;type:jsonb;default:'{}'" json:"metadata"`

	CreatedAt time.Time `gorm:"index:idx_donation_viewer_created,priority:2,sort:desc;index:idx_donation_missionary_created,priority:2,sort:desc" json:"created_at"`
}

func (Donation) TableName() string {
	return "donation"
}

// HasProviderReference reports whether the row points at a provider session, invoice or subscription.
func (d *Donation) HasProviderReference() bool {
	return d != nil && (d.SessionID != nil || d.InvoiceID != nil || d.SubscriptionID != nil)
}
