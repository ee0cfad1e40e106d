package models

import "time"

const (
	EntitlementStatusActive = "active"

	PlanBasic  = "basic"
	PlanPro    = "pro"
	PlanCustom = "custom"
)

// Entitlement is an append-only record of a subscription grant.
// The current entitlement of a user is the active row with the latest CreatedAt.
type Entitlement struct {
	ID                     string     `gorm:"primaryKey;type:varchar(36)" json:"id" bson:"_id"`
	UserID                 string     `gorm:"type:varchar(128);not null;index:idx_entitlements_user_status,priority:1" json:"userId" bson:"user_id"`
	ProviderCustomerID     string     `gorm:"type:varchar(191)" json:"stripeCustomerId" bson:"provider_customer_id"`
	ProviderSubscriptionID string     `gorm:"type:varchar(191);index" json:"stripeSubscriptionId" bson:"provider_subscription_id"`
	ProviderPriceID        string     `gorm:"type:varchar(191)" json:"stripePriceId" bson:"provider_price_id"`
	PlanType               string     `gorm:"type:varchar(20);not null" json:"planType" bson:"plan_type"`
	Status                 string     `gorm:"type:varchar(30);not null;index:idx_entitlements_user_status,priority:2" json:"status" bson:"status"`
	PeriodStart            *time.Time `gorm:"default:null" json:"currentPeriodStart" bson:"period_start"`
	PeriodEnd              *time.Time `gorm:"default:null" json:"currentPeriodEnd" bson:"period_end"`
	CreatedAt              time.Time  `gorm:"autoCreateTime;index" json:"createdAt" bson:"created_at"`
	UpdatedAt              time.Time  `gorm:"autoUpdateTime" json:"updatedAt" bson:"updated_at"`
}

func (Entitlement) TableName() string {
	return "entitlements"
}
