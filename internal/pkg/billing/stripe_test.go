package billing

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"
)

const testWebhookSecret = "whsec_test_secret"

func checkoutCompletedPayload(eventID, userID, subscriptionID string) []byte {
	metadata := "{}"
	if userID != "" {
		metadata = fmt.Sprintf(`{"userId":%q}`, userID)
	}
	return []byte(fmt.Sprintf(`{
  "id": %q,
  "object": "event",
  "api_version": "2020-08-27",
  "type": "checkout.session.completed",
  "data": {
    "object": {
      "id": "cs_test_1",
      "object": "checkout.session",
      "mode": "subscription",
      "customer": "cus_1",
      "subscription": %q,
      "metadata": %s
    }
  }
}`, eventID, subscriptionID, metadata))
}

func sign(payload []byte, secret string) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	}).Header
}

func TestParseWebhookVerifiesSignature(t *testing.T) {
	t.Parallel()
	p := NewStripeProvider("sk_test_x", testWebhookSecret)
	payload := checkoutCompletedPayload("evt_1", "U1", "sub_1")

	ev, err := p.ParseWebhook(payload, sign(payload, testWebhookSecret))
	require.NoError(t, err)
	assert.Equal(t, "evt_1", ev.ID)
	assert.Equal(t, EventCheckoutSessionCompleted, ev.Type)
	require.NotNil(t, ev.Checkout)
	assert.Equal(t, CheckoutCompleted{SessionID: "cs_test_1", UserID: "U1", SubscriptionID: "sub_1", CustomerID: "cus_1"}, *ev.Checkout)

	_, err = p.ParseWebhook(payload, sign(payload, "whsec_other"))
	assert.Error(t, err)
	_, err = p.ParseWebhook(payload, "")
	assert.Error(t, err)

	tampered := checkoutCompletedPayload("evt_1", "attacker", "sub_1")
	_, err = p.ParseWebhook(tampered, sign(payload, testWebhookSecret))
	assert.Error(t, err)

	_, err = NewStripeProvider("sk_test_x", "").ParseWebhook(payload, sign(payload, testWebhookSecret))
	assert.Error(t, err)
}

func TestCheckoutParams(t *testing.T) {
	t.Parallel()

	params := checkoutParams(CheckoutRequest{
		PriceID:    "price_basic",
		UserID:     "U1",
		SuccessURL: "https://app.example.com/subscription?success=true&session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  "https://app.example.com/subscription?canceled=true",
	})
	assert.Equal(t, "subscription", *params.Mode)
	require.Len(t, params.PaymentMethodTypes, 1)
	assert.Equal(t, "card", *params.PaymentMethodTypes[0])
	require.Len(t, params.LineItems, 1)
	assert.Equal(t, "price_basic", *params.LineItems[0].Price)
	assert.Equal(t, int64(1), *params.LineItems[0].Quantity)
	assert.Equal(t, "U1", params.Metadata["userId"])
	assert.Contains(t, *params.SuccessURL, "{CHECKOUT_SESSION_ID}")
}

func TestSubscriptionDetails(t *testing.T) {
	t.Parallel()

	d := subscriptionDetails(&stripe.Subscription{
		ID:                 "sub_1",
		Status:             stripe.SubscriptionStatusActive,
		CurrentPeriodStart: 1700000000,
		CurrentPeriodEnd:   1702592000,
		Customer:           &stripe.Customer{ID: "cus_1"},
		Items: &stripe.SubscriptionItemList{Data: []*stripe.SubscriptionItem{
			{Price: &stripe.Price{ID: "price_pro"}},
		}},
	})
	assert.Equal(t, "sub_1", d.ID)
	assert.Equal(t, "active", d.Status)
	assert.Equal(t, "cus_1", d.CustomerID)
	assert.Equal(t, "price_pro", d.PriceID)
	require.NotNil(t, d.PeriodStart)
	assert.Equal(t, int64(1700000000), d.PeriodStart.Unix())

	empty := subscriptionDetails(&stripe.Subscription{ID: "sub_2"})
	assert.Nil(t, empty.PeriodStart)
	assert.Empty(t, empty.PriceID)
}
