package billing

import (
	"context"
	"time"
)

const EventCheckoutSessionCompleted = "checkout.session.completed"

// Provider is the payment provider as seen by the billing service.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*SubscriptionDetails, error)
	// ParseWebhook verifies the signature before decoding anything.
	ParseWebhook(payload []byte, signatureHeader string) (*WebhookEvent, error)
}

type CheckoutRequest struct {
	PriceID    string
	UserID     string
	SuccessURL string
	CancelURL  string
}

// WebhookEvent is a verified provider event. Checkout is set for
// checkout.session.completed events whose object could be decoded.
type WebhookEvent struct {
	ID          string
	Type        string
	PayloadJSON string
	Checkout    *CheckoutCompleted
}

type CheckoutCompleted struct {
	SessionID      string
	UserID         string
	SubscriptionID string
	CustomerID     string
}

// SubscriptionDetails is the authoritative subscription state fetched after checkout.
type SubscriptionDetails struct {
	ID          string
	CustomerID  string
	PriceID     string
	Status      string
	PeriodStart *time.Time
	PeriodEnd   *time.Time
}

// WebhookResult tells the controller which acknowledgement to send.
type WebhookResult struct {
	Duplicate bool
	Ignored   bool
}
