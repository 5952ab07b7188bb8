package models

import (
	"time"

	"github.com/fatflowers/sponsorship/pkg/types"
)

// ViewerAccount is the per-viewer payment health record.
type ViewerAccount struct {
	ViewerID   string                `gorm:"column:viewer_id;type:varchar(64);primary_key" json:"viewer_id"`
	ProviderID types.PaymentProvider `gorm:"column:provider_id;type:varchar(64);not null" json:"provider_id"`
	CustomerID string                `gorm:"column:customer_id;type:varchar(255);not null;default:''" json:"customer_id"`
	Status     types.AccountStatus   `gorm:"column:status;type:varchar(32);not null" json:"status"`

	LastPaymentAt        *time.Time `gorm:"column:last_payment_at;default:null" json:"last_payment_at"`
	LastPaymentAttemptAt *time.Time `gorm:"column:last_payment_attempt_at;default:null" json:"last_payment_attempt_at"`
	// LastEventAt is the creation second of the newest provider event applied to the row.
	LastEventAt int64  `gorm:"column:last_event_at;type:bigint;not null;default:0" json:"last_event_at"`
	LastEventID string `gorm:"column:last_event_id;type:varchar(255);not null;default:''" json:"last_event_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ViewerAccount) TableName() string {
	return "viewer_account"
}

func (a *ViewerAccount) IsActive() bool {
	return a != nil && a.Status == types.AccountStatusActive
}
