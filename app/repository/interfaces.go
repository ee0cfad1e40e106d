package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ManuelReschke/NewsDesk/app/models"
)

var (
	// ErrNotFound is returned by every backend when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrVersionConflict is returned when a conditional write lost against a concurrent one.
	ErrVersionConflict = errors.New("version conflict")
)

// ContentFilter narrows List. Empty fields do not filter.
type ContentFilter struct {
	AuthorID string
	Status   models.ContentStatus
}

// ContentRepository defines storage operations for moderated content
type ContentRepository interface {
	Create(ctx context.Context, item *models.ContentItem) error
	GetByID(ctx context.Context, id string) (*models.ContentItem, error)
	List(ctx context.Context, filter ContentFilter) ([]models.ContentItem, error)
	// Update writes item only if the stored version still equals expectedVersion.
	// On success item.Version is the new version.
	Update(ctx context.Context, item *models.ContentItem, expectedVersion int64) error
	Delete(ctx context.Context, id string) error
}

// UserProfileRepository defines storage operations for user profiles
type UserProfileRepository interface {
	GetByID(ctx context.Context, id string) (*models.UserProfile, error)
	// SetChannelToken merges the token onto the profile, creating it if needed.
	// A nil token clears the registration.
	SetChannelToken(ctx context.Context, id string, token *string, at time.Time) error
}

// EntitlementRepository is append-only
type EntitlementRepository interface {
	Create(ctx context.Context, e *models.Entitlement) error
	ListActiveByUser(ctx context.Context, userID string) ([]models.Entitlement, error)
}

// WebhookEventRepository stores provider webhook deliveries keyed by (provider, provider event id)
type WebhookEventRepository interface {
	// CreateIfNotExists returns created=false and the stored row when the key already exists.
	CreateIfNotExists(ctx context.Context, event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error)
	MarkProcessed(ctx context.Context, id string, processingError string) error
}

// Repositories bundles one backend's implementations
type Repositories struct {
	Content      ContentRepository
	UserProfile  UserProfileRepository
	Entitlement  EntitlementRepository
	WebhookEvent WebhookEventRepository
}
