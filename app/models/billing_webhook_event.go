package models

import "time"

const BillingProviderStripe = "stripe"

// BillingWebhookEvent stores provider webhook payloads with deduplication
// metadata for idempotent processing.
type BillingWebhookEvent struct {
	ID              string     `gorm:"primaryKey;type:varchar(36)" json:"id" bson:"_id"`
	Provider        string     `gorm:"type:varchar(20);not null;index:ux_billing_webhook_events_provider_event,unique,priority:1" json:"provider" bson:"provider"`
	ProviderEventID string     `gorm:"type:varchar(191);not null;index:ux_billing_webhook_events_provider_event,unique,priority:2" json:"provider_event_id" bson:"provider_event_id"`
	EventType       string     `gorm:"type:varchar(100);not null;index" json:"event_type" bson:"event_type"`
	PayloadJSON     string     `gorm:"type:text;not null" json:"payload_json" bson:"payload_json"`
	ProcessedAt     *time.Time `gorm:"default:null" json:"processed_at,omitempty" bson:"processed_at"`
	ProcessingError string     `gorm:"type:text" json:"processing_error" bson:"processing_error"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at" bson:"updated_at"`
}

func (BillingWebhookEvent) TableName() string {
	return "billing_webhook_events"
}

// Succeeded reports whether an earlier delivery was fully applied.
func (e *BillingWebhookEvent) Succeeded() bool {
	return e != nil && e.ProcessedAt != nil && e.ProcessingError == ""
}
