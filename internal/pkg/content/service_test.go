package content

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/NewsDesk/app/models"
	"github.com/ManuelReschke/NewsDesk/app/repository"
	"github.com/ManuelReschke/NewsDesk/app/repository/repotest"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/analytics"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/apperr"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/push"
)

type sentMessage struct {
	Token, Title, Body string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeSender) Send(_ context.Context, token, title, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{token, title, body})
	return nil
}

type fixture struct {
	svc      *Service
	repos    *repository.Repositories
	channels *push.ChannelService
	sender   *fakeSender
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := repotest.NewRepositories(t)
	channels := push.NewChannelService(repos.UserProfile)
	sender := &fakeSender{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &fixture{
		svc:      NewService(repos.Content, channels, sender, analytics.NoopTracker{}, logger),
		repos:    repos,
		channels: channels,
		sender:   sender,
	}
}

func strPtr(s string) *string { return &s }

var (
	author   = Actor{UID: "U1"}
	reviewer = Actor{UID: "A1", IsReviewer: true}
)

func TestCreateAlwaysPendingAndOwnedByActor(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	item, err := f.svc.Create(ctx, author, "Storm warning", "Heavy rain expected")
	require.NoError(t, err)
	assert.Equal(t, models.ContentStatusPending, item.Status)
	assert.Equal(t, "U1", item.AuthorID)
	assert.Equal(t, int64(1), item.Version)

	items, err := f.svc.List(ctx, "U1", "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Storm warning", items[0].Title)
	assert.Equal(t, models.ContentStatusPending, items[0].Status)
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, author, "", "detail")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	_, err = f.svc.Create(ctx, author, "title", "   ")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	_, err = f.svc.Create(ctx, Actor{}, "title", "detail")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	_, err = f.svc.Create(ctx, author, "title", strings.Repeat("x", models.MaxDetailLength+1))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestLengthLimitsCountCharacters(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	title := strings.Repeat("ü", models.MaxTitleLength)
	detail := strings.Repeat("ß", models.MaxDetailLength)
	item, err := f.svc.Create(ctx, author, title, detail)
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, author, item.ID, UpdateInput{Title: strPtr(title), Detail: strPtr(detail)})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)

	tests := []struct {
		name string
		in   UpdateInput
	}{
		{"title too long", UpdateInput{Title: strPtr(title + "ü")}},
		{"detail too long", UpdateInput{Detail: strPtr(detail + "ß")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Update(ctx, author, item.ID, tt.in)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

func TestListStatusFilter(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.Create(ctx, author, "a", "a")
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, author, "b", "b")
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, reviewer, a.ID, UpdateInput{Status: strPtr("approved")})
	require.NoError(t, err)

	all, err := f.svc.List(ctx, "", "all")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	approved, err := f.svc.List(ctx, "U1", "approved")
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, a.ID, approved[0].ID)

	_, err = f.svc.List(ctx, "", "published")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestReviewNotifiesAuthorOnce(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.channels.Register(ctx, "U1", "T"))
	item, err := f.svc.Create(ctx, author, "Storm warning", "Heavy rain expected")
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, reviewer, item.ID, UpdateInput{
		Title:  strPtr("Storm warning (updated)"),
		Status: strPtr("approved"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.ContentStatusApproved, updated.Status)
	assert.Equal(t, int64(2), updated.Version)

	require.Len(t, f.sender.sent, 1)
	msg := f.sender.sent[0]
	assert.Equal(t, "T", msg.Token)
	assert.Equal(t, NotificationTitle, msg.Title)
	assert.Equal(t, `Your news "Storm warning" has been approved`, msg.Body)
	assert.Contains(t, msg.Body, "approved")
}

func TestUpdateWithoutStatusNeverNotifies(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.channels.Register(ctx, "U1", "T"))
	item, err := f.svc.Create(ctx, author, "t", "d")
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, author, item.ID, UpdateInput{Title: strPtr("new title"), Detail: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, "new title", updated.Title)
	assert.Equal(t, "d", updated.Detail)
	assert.Empty(t, f.sender.sent)
}

func TestUpdateSameStatusIsNoopWithoutNotification(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.channels.Register(ctx, "U1", "T"))
	item, err := f.svc.Create(ctx, author, "t", "d")
	require.NoError(t, err)

	// pending -> pending, even by a non-reviewer.
	_, err = f.svc.Update(ctx, author, item.ID, UpdateInput{Status: strPtr("pending")})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, reviewer, item.ID, UpdateInput{Status: strPtr("rejected")})
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, reviewer, item.ID, UpdateInput{Status: strPtr("rejected")})
	require.NoError(t, err)

	assert.Len(t, f.sender.sent, 1)
}

func TestStatusTransitionRules(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	item, err := f.svc.Create(ctx, author, "t", "d")
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, author, item.ID, UpdateInput{Status: strPtr("approved")})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = f.svc.Update(ctx, reviewer, item.ID, UpdateInput{Status: strPtr("archived")})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = f.svc.Update(ctx, reviewer, item.ID, UpdateInput{Status: strPtr("approved")})
	require.NoError(t, err)

	for _, next := range []string{"rejected", "pending"} {
		_, err = f.svc.Update(ctx, reviewer, item.ID, UpdateInput{Status: strPtr(next)})
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err), next)
	}
}

func TestUpdateVersionConflict(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	item, err := f.svc.Create(ctx, author, "t", "d")
	require.NoError(t, err)

	stale := int64(1)
	_, err = f.svc.Update(ctx, author, item.ID, UpdateInput{Title: strPtr("first"), ExpectedVersion: &stale})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, author, item.ID, UpdateInput{Title: strPtr("second"), ExpectedVersion: &stale})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	got, err := f.svc.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Title)
}

func TestUpdateMissingAndDelete(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Update(ctx, reviewer, "missing", UpdateInput{Status: strPtr("approved")})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	item, err := f.svc.Create(ctx, author, "t", "d")
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, Actor{UID: "someone-else"}, item.ID))
	require.NoError(t, f.svc.Delete(ctx, author, item.ID))

	_, err = f.svc.Get(ctx, item.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(f.svc.Delete(ctx, Actor{}, item.ID)))
}

func TestNotificationFailureDoesNotFailUpdate(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	f.sender.err = errors.New("fcm unavailable")

	require.NoError(t, f.channels.Register(ctx, "U1", "T"))
	item, err := f.svc.Create(ctx, author, "t", "d")
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, reviewer, item.ID, UpdateInput{Status: strPtr("rejected")})
	require.NoError(t, err)
	assert.Equal(t, models.ContentStatusRejected, updated.Status)
}

func TestReviewWithoutChannelSkipsSend(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	item, err := f.svc.Create(ctx, author, "t", "d")
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, reviewer, item.ID, UpdateInput{Status: strPtr("approved")})
	require.NoError(t, err)
	assert.Empty(t, f.sender.sent)
}
