package billing

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"github.com/stripe/stripe-go/v78/webhook"
)

// StripeProvider implements Provider with the Stripe API.
type StripeProvider struct {
	api           *client.API
	webhookSecret string
}

func NewStripeProvider(secretKey, webhookSecret string) *StripeProvider {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeProvider{api: api, webhookSecret: webhookSecret}
}

func checkoutParams(req CheckoutRequest) *stripe.CheckoutSessionParams {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(req.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	params.AddMetadata("userId", req.UserID)
	return params
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error) {
	params := checkoutParams(req)
	params.Context = ctx
	sess, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return "", err
	}
	return sess.ID, nil
}

func (p *StripeProvider) GetSubscription(ctx context.Context, subscriptionID string) (*SubscriptionDetails, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	sub, err := p.api.Subscriptions.Get(subscriptionID, params)
	if err != nil {
		return nil, err
	}
	return subscriptionDetails(sub), nil
}

func subscriptionDetails(sub *stripe.Subscription) *SubscriptionDetails {
	d := &SubscriptionDetails{
		ID:          sub.ID,
		Status:      string(sub.Status),
		PeriodStart: unixTime(sub.CurrentPeriodStart),
		PeriodEnd:   unixTime(sub.CurrentPeriodEnd),
	}
	if sub.Customer != nil {
		d.CustomerID = sub.Customer.ID
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		d.PriceID = sub.Items.Data[0].Price.ID
	}
	return d
}

func (p *StripeProvider) ParseWebhook(payload []byte, signatureHeader string) (*WebhookEvent, error) {
	if p.webhookSecret == "" {
		return nil, errors.New("webhook secret is not configured")
	}
	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, p.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, err
	}

	out := &WebhookEvent{
		ID:          event.ID,
		Type:        string(event.Type),
		PayloadJSON: string(payload),
	}
	if out.Type == EventCheckoutSessionCompleted && event.Data != nil {
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err == nil {
			out.Checkout = &CheckoutCompleted{
				SessionID: sess.ID,
				UserID:    sess.Metadata["userId"],
			}
			if sess.Subscription != nil {
				out.Checkout.SubscriptionID = sess.Subscription.ID
			}
			if sess.Customer != nil {
				out.Checkout.CustomerID = sess.Customer.ID
			}
		}
	}
	return out, nil
}

func unixTime(sec int64) *time.Time {
	if sec == 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}
