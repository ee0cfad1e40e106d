package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ManuelReschke/NewsDesk/app/models"
	"github.com/ManuelReschke/NewsDesk/app/repository"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/apperr"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/entitlements"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/metrics"
)

// errUnprocessable marks verified events that can never be applied. They are
// recorded and acknowledged so the provider stops redelivering.
var errUnprocessable = errors.New("unprocessable event")

// Service provides checkout creation and webhook synchronization.
type Service struct {
	provider     Provider
	events       repository.WebhookEventRepository
	entitlements repository.EntitlementRepository
	plans        entitlements.PlanTable
	appURL       string
	logger       *slog.Logger
}

// NewService creates a billing service from injected collaborators.
func NewService(
	provider Provider,
	events repository.WebhookEventRepository,
	ents repository.EntitlementRepository,
	plans entitlements.PlanTable,
	appURL string,
	logger *slog.Logger,
) *Service {
	return &Service{
		provider:     provider,
		events:       events,
		entitlements: ents,
		plans:        plans,
		appURL:       strings.TrimRight(appURL, "/"),
		logger:       logger,
	}
}

// SuccessURL keeps the provider's session id placeholder unescaped.
func (s *Service) SuccessURL() string {
	return s.appURL + "/subscription?success=true&session_id={CHECKOUT_SESSION_ID}"
}

func (s *Service) CancelURL() string {
	return s.appURL + "/subscription?canceled=true"
}

// RequestCheckout creates a hosted checkout session for one subscription price.
func (s *Service) RequestCheckout(ctx context.Context, userID, priceID string) (string, error) {
	if userID == "" {
		return "", apperr.Unauthorized("login required")
	}
	priceID = strings.TrimSpace(priceID)
	if priceID == "" {
		return "", apperr.Validation("Price ID is required")
	}

	sessionID, err := s.provider.CreateCheckoutSession(ctx, CheckoutRequest{
		PriceID:    priceID,
		UserID:     userID,
		SuccessURL: s.SuccessURL(),
		CancelURL:  s.CancelURL(),
	})
	if err != nil {
		return "", apperr.Wrap(apperr.KindUpstream, "Error creating checkout session", err)
	}
	return sessionID, nil
}

// HandleWebhook verifies, deduplicates and applies one provider delivery.
// Invalid signatures fail with a validation error before anything is stored.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) (WebhookResult, error) {
	ev, err := s.provider.ParseWebhook(payload, signatureHeader)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("unverified", "rejected").Inc()
		return WebhookResult{}, apperr.Wrap(apperr.KindValidation, "Webhook Error: signature verification failed", err)
	}

	created, stored, err := s.events.CreateIfNotExists(ctx, &models.BillingWebhookEvent{
		Provider:        models.BillingProviderStripe,
		ProviderEventID: ev.ID,
		EventType:       ev.Type,
		PayloadJSON:     ev.PayloadJSON,
	})
	if err != nil {
		return WebhookResult{}, fmt.Errorf("record webhook event: %w", err)
	}
	if !created && stored.Succeeded() {
		metrics.WebhookEvents.WithLabelValues(ev.Type, "duplicate").Inc()
		return WebhookResult{Duplicate: true}, nil
	}

	if ev.Type != EventCheckoutSessionCompleted {
		s.markProcessed(ctx, stored.ID, "")
		metrics.WebhookEvents.WithLabelValues(ev.Type, "ignored").Inc()
		return WebhookResult{Ignored: true}, nil
	}

	if err := s.applyCheckout(ctx, ev); err != nil {
		s.markProcessed(ctx, stored.ID, err.Error())
		if errors.Is(err, errUnprocessable) {
			s.logger.Warn("webhook event not applicable", "event_id", ev.ID, "error", err)
			metrics.WebhookEvents.WithLabelValues(ev.Type, "unprocessable").Inc()
			return WebhookResult{Ignored: true}, nil
		}
		metrics.WebhookEvents.WithLabelValues(ev.Type, "failed").Inc()
		return WebhookResult{}, apperr.Wrap(apperr.KindUpstream, "Webhook processing failed", err)
	}

	s.markProcessed(ctx, stored.ID, "")
	metrics.WebhookEvents.WithLabelValues(ev.Type, "applied").Inc()
	return WebhookResult{}, nil
}

func (s *Service) applyCheckout(ctx context.Context, ev *WebhookEvent) error {
	c := ev.Checkout
	if c == nil {
		return fmt.Errorf("%w: checkout session payload could not be decoded", errUnprocessable)
	}
	if c.UserID == "" {
		return fmt.Errorf("%w: checkout session %s has no userId metadata", errUnprocessable, c.SessionID)
	}
	if c.SubscriptionID == "" {
		return fmt.Errorf("%w: checkout session %s has no subscription", errUnprocessable, c.SessionID)
	}

	sub, err := s.provider.GetSubscription(ctx, c.SubscriptionID)
	if err != nil {
		return fmt.Errorf("retrieve subscription %s: %w", c.SubscriptionID, err)
	}

	customerID := sub.CustomerID
	if customerID == "" {
		customerID = c.CustomerID
	}
	ent := &models.Entitlement{
		UserID:                 c.UserID,
		ProviderCustomerID:     customerID,
		ProviderSubscriptionID: sub.ID,
		ProviderPriceID:        sub.PriceID,
		PlanType:               string(s.plans.Label(sub.PriceID)),
		Status:                 sub.Status,
		PeriodStart:            sub.PeriodStart,
		PeriodEnd:              sub.PeriodEnd,
	}
	if err := s.entitlements.Create(ctx, ent); err != nil {
		return fmt.Errorf("store entitlement: %w", err)
	}
	s.logger.Info("entitlement recorded", "user_id", ent.UserID, "plan", ent.PlanType, "status", ent.Status)
	return nil
}

func (s *Service) markProcessed(ctx context.Context, id, processingError string) {
	if err := s.events.MarkProcessed(ctx, id, processingError); err != nil {
		s.logger.Error("failed to mark webhook event processed", "id", id, "error", err)
	}
}
