package models

import (
	"time"

	"github.com/fatflowers/sponsorship/pkg/types"
	"gorm.io/datatypes"
)

type PaymentNotificationLogStatus string

const (
	PaymentNotificationLogStatusReceived     PaymentNotificationLogStatus = "received"
	PaymentNotificationLogStatusHandled      PaymentNotificationLogStatus = "handled"
	PaymentNotificationLogStatusHandleFailed PaymentNotificationLogStatus = "handle_failed"
	PaymentNotificationLogStatusIgnored      PaymentNotificationLogStatus = "ignored"
	PaymentNotificationLogStatusDuplicate    PaymentNotificationLogStatus = "duplicate"
	PaymentNotificationLogStatusRejected     PaymentNotificationLogStatus = "rejected"
)

// PaymentNotificationLog is the audit trail of webhook deliveries.
type PaymentNotificationLog struct {
	ID         string                       `gorm:"column:id;type:uuid;primary_key" json:"id"`
	ProviderID types.PaymentProvider        `gorm:"column:provider_id;type:varchar(64);not null" json:"provider_id"`
	EventID    string                       `gorm:"column:event_id;type:varchar(255);index" json:"event_id"`
	EventType  string                       `gorm:"column:event_type;type:varchar(128)" json:"event_type"`
	ViewerID   *string                      `gorm:"column:viewer_id;type:varchar(64)" json:"viewer_id"`
	TraceID    string                       `gorm:"column:trace_id;type:varchar(128)" json:"trace_id"`
	Status     PaymentNotificationLogStatus `gorm:"column:status;type:varchar(64);not null" json:"status"`
	// NotificationTime is the provider event creation time.
	NotificationTime time.Time       `gorm:"column:notification_time" json:"notification_time"`
	Data             datatypes.JSON  `gorm:"column:data;type:jsonb" json:"data"`
	Result           *datatypes.JSON `gorm:"column:result;type:jsonb" json:"result"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (PaymentNotificationLog) TableName() string { return "payment_notification_log" }
