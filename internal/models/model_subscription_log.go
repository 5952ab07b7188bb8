package models

import (
	"time"

	"github.com/fatflowers/sponsorship/pkg/types"
	"gorm.io/datatypes"
)

// SubscriptionLog records changes to subscriptions.
// Use case: troubleshooting out-of-order deliveries.
type SubscriptionLog struct {
	ID             string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	SubscriptionID string `gorm:"column:subscription_id;type:varchar(255);index:idx_subscription_log_sub,priority:1;not null" json:"subscription_id"`
	ViewerID       string `gorm:"column:viewer_id;type:varchar(64);not null" json:"viewer_id"`
	EventID        string `gorm:"column:event_id;type:varchar(255);not null" json:"event_id"`
	// Reason is the change reason.
	Reason types.SubscriptionChangeReason `gorm:"column:reason;type:varchar(64);not null" json:"reason"`
	// Applied is false when the ordering guard skipped the write.
	Applied bool `gorm:"column:applied;not null" json:"applied"`
	// Before stores subscription data before the change in JSON format.
	Before datatypes.JSONType[*Subscription] `gorm:"column:before;type:jsonb;default:'null'" json:"before"`
	// After stores subscription data after the change in JSON format.
	After     datatypes.JSONType[*Subscription] `gorm:"column:after;type:jsonb;default:'null'" json:"after"`
	CreatedAt time.Time                         `gorm:"index:idx_subscription_log_sub,priority:2" json:"created_at"`
}

func (SubscriptionLog) TableName() string {
	return "subscription_log"
}
