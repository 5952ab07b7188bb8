package models

import (
	"time"

	"github.com/fatflowers/sponsorship/pkg/types"
	"gorm.io/datatypes"
)

// Subscription mirrors one recurring sponsorship at the payment provider.
// There is at most one row per provider subscription id.
type Subscription struct {
	// ID is the provider subscription id.
	ID           string                   `gorm:"column:id;type:varchar(255);primary_key" json:"id"`
	ProviderID   types.PaymentProvider    `gorm:"column:provider_id;type:varchar(64);not null" json:"provider_id"`
	ViewerID     string                   `gorm:"column:viewer_id;type:varchar(64);not null;index" json:"viewer_id"`
	MissionaryID string                   `gorm:"column:missionary_id;type:varchar(64);not null;default:''" json:"missionary_id"`
	PlanID       string                   `gorm:"column:plan_id;type:varchar(64);not null;default:''" json:"plan_id"`
	CustomerID   string                   `gorm:"column:customer_id;type:varchar(255);not null;default:''" json:"customer_id"`
	Status       types.SubscriptionStatus `gorm:"column:status;type:varchar(64);not null" json:"status"`

	CurrentPeriodStart *time.Time `gorm:"column:current_period_start;default:null" json:"current_period_start"`
	CurrentPeriodEnd   *time.Time `gorm:"column:current_period_end;default:null" json:"current_period_end"`
	CanceledAt         *time.Time `gorm:"column:canceled_at;default:null" json:"canceled_at"`
	// LastEventAt is the creation second of the newest provider event applied to the row.
	LastEventAt int64 `gorm:"column:last_event_at;type:bigint;not null;default:0" json:"last_event_at"`
	// Metadata snapshots the provider subscription metadata.
	Metadata datatypes.JSONMap `gorm:"column:metadata;type:jsonb;default:'{}'" json:"metadata"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscription"
}

// Valid reports whether the subscription currently entitles the viewer.
func (s *Subscription) Valid() bool {
	return s != nil &&
		s.Status == types.SubscriptionStatusActive &&
		(s.CurrentPeriodEnd == nil || s.CurrentPeriodEnd.After(time.Now()))
}
