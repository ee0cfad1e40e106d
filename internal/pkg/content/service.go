package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ManuelReschke/NewsDesk/app/models"
	"github.com/ManuelReschke/NewsDesk/app/repository"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/analytics"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/apperr"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/metrics"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/push"
)

const NotificationTitle = "News Status Update"

var invalidFieldsMessage = fmt.Sprintf("Title and detail are required (title at most %d, detail at most %d characters)",
	models.MaxTitleLength, models.MaxDetailLength)

// Actor is the verified caller of a mutating operation.
type Actor struct {
	UID        string
	IsReviewer bool
}

// UpdateInput is a partial update. Nil and blank fields are left unchanged.
type UpdateInput struct {
	Title           *string
	Detail          *string
	Status          *string
	ExpectedVersion *int64
}

// TokenLookup resolves a user's push channel token ("" if none).
type TokenLookup interface {
	TokenFor(ctx context.Context, userID string) (string, error)
}

// Service runs the moderated-content workflow.
type Service struct {
	repo     repository.ContentRepository
	channels TokenLookup
	sender   push.Sender
	tracker  analytics.Tracker
	logger   *slog.Logger

	notifyTimeout time.Duration
}

func NewService(
	repo repository.ContentRepository,
	channels TokenLookup,
	sender push.Sender,
	tracker analytics.Tracker,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:          repo,
		channels:      channels,
		sender:        sender,
		tracker:       tracker,
		logger:        logger,
		notifyTimeout: 10 * time.Second,
	}
}

// Create stores a new pending item authored by the actor.
func (s *Service) Create(ctx context.Context, actor Actor, title, detail string) (*models.ContentItem, error) {
	if actor.UID == "" {
		return nil, apperr.Unauthorized("login required")
	}
	item := &models.ContentItem{
		Title:    strings.TrimSpace(title),
		Detail:   strings.TrimSpace(detail),
		Status:   models.ContentStatusPending,
		AuthorID: actor.UID,
	}
	if err := item.Validate(); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, invalidFieldsMessage, err)
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create content: %w", err)
	}

	s.tracker.Track(ctx, analytics.Event{
		Name:   analytics.EventNewsCreated,
		UserID: actor.UID,
		Data:   map[string]interface{}{"content_id": item.ID},
	})
	return item, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.ContentItem, error) {
	item, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("News not found")
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// List filters by optional author and optional status; "all" disables the status filter.
func (s *Service) List(ctx context.Context, authorID, status string) ([]models.ContentItem, error) {
	filter := repository.ContentFilter{AuthorID: strings.TrimSpace(authorID)}
	status = strings.TrimSpace(status)
	if status != "" && !strings.EqualFold(status, models.ContentStatusAll) {
		parsed, err := models.ParseContentStatus(status)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindValidation, "Unknown status filter", err)
		}
		filter.Status = parsed
	}
	return s.repo.List(ctx, filter)
}

// Update applies a partial update. A status equal to the stored one is a
// no-op; a real transition needs the reviewer capability and a legal move.
// The author is notified only after a successful status change.
func (s *Service) Update(ctx context.Context, actor Actor, id string, in UpdateInput) (*models.ContentItem, error) {
	if actor.UID == "" {
		return nil, apperr.Unauthorized("login required")
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.ExpectedVersion != nil && *in.ExpectedVersion != current.Version {
		return nil, apperr.Conflict("News was modified by someone else, reload and try again")
	}

	updated := *current
	if v := trimmed(in.Title); v != "" {
		updated.Title = v
	}
	if v := trimmed(in.Detail); v != "" {
		updated.Detail = v
	}
	if err := updated.Validate(); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, invalidFieldsMessage, err)
	}

	statusChanged := false
	if v := trimmed(in.Status); v != "" {
		next, err := models.ParseContentStatus(v)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindValidation, "Unknown status", err)
		}
		if next != current.Status {
			if !actor.IsReviewer {
				return nil, apperr.Forbidden("Only reviewers can change the status")
			}
			if !current.Status.CanTransition(next) {
				return nil, apperr.Conflict(fmt.Sprintf("Cannot change status from %s to %s", current.Status, next))
			}
			updated.Status = next
			statusChanged = true
		}
	}

	if err := s.repo.Update(ctx, &updated, current.Version); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperr.NotFound("News not found")
		case errors.Is(err, repository.ErrVersionConflict):
			return nil, apperr.Wrap(apperr.KindConflict, "News was modified by someone else, reload and try again", err)
		default:
			return nil, fmt.Errorf("update content: %w", err)
		}
	}

	if statusChanged {
		metrics.ContentTransitions.WithLabelValues(string(updated.Status)).Inc()
		s.notifyAuthor(ctx, &updated, current.Title)
		s.tracker.Track(ctx, analytics.Event{
			Name:   analytics.EventNewsReviewed,
			UserID: actor.UID,
			Data:   map[string]interface{}{"content_id": updated.ID, "status": string(updated.Status)},
		})
	}
	return &updated, nil
}

// Delete removes the item. Missing ids succeed.
func (s *Service) Delete(ctx context.Context, actor Actor, id string) error {
	if actor.UID == "" {
		return apperr.Unauthorized("login required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	return nil
}

// notifyAuthor is best effort: failures are logged and counted, never returned.
func (s *Service) notifyAuthor(ctx context.Context, item *models.ContentItem, preWriteTitle string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	token, err := s.channels.TokenFor(ctx, item.AuthorID)
	if err != nil {
		metrics.Notifications.WithLabelValues("failed").Inc()
		s.logger.Warn("notification token lookup failed", "content_id", item.ID, "author", item.AuthorID, "error", err)
		return
	}
	if token == "" {
		metrics.Notifications.WithLabelValues("skipped").Inc()
		return
	}

	body := NotificationBody(preWriteTitle, item.Status)
	if err := s.sender.Send(ctx, token, NotificationTitle, body); err != nil {
		metrics.Notifications.WithLabelValues("failed").Inc()
		s.logger.Warn("notification send failed", "content_id", item.ID, "author", item.AuthorID, "error", err)
		return
	}
	metrics.Notifications.WithLabelValues("sent").Inc()
}

// NotificationBody uses the title as it was before the update was written.
func NotificationBody(title string, status models.ContentStatus) string {
	return fmt.Sprintf("Your news \"%s\" has been %s", title, status)
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
