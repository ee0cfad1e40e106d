package push

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/NewsDesk/app/repository/repotest"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/apperr"
)

type recordingMessaging struct {
	sent []*messaging.Message
	err  error
}

func (r *recordingMessaging) Send(_ context.Context, m *messaging.Message) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.sent = append(r.sent, m)
	return "projects/p/messages/1", nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFirebaseSenderBuildsNotification(t *testing.T) {
	t.Parallel()

	client := &recordingMessaging{}
	s := NewFirebaseSender(client, discardLogger())
	require.NoError(t, s.Send(context.Background(), "tok", "News Status Update", "body"))
	require.Len(t, client.sent, 1)
	assert.Equal(t, "tok", client.sent[0].Token)
	assert.Equal(t, "News Status Update", client.sent[0].Notification.Title)
	assert.Equal(t, "body", client.sent[0].Notification.Body)

	client.err = errors.New("registration-token-not-registered")
	assert.Error(t, s.Send(context.Background(), "tok", "t", "b"))
}

func TestLogSenderNeverFails(t *testing.T) {
	t.Parallel()
	assert.NoError(t, NewLogSender(discardLogger()).Send(context.Background(), "abcdefghij", "t", "b"))
	assert.Equal(t, "efghij", tokenSuffix("abcdefghij"))
	assert.Equal(t, "abc", tokenSuffix("abc"))
}

func TestChannelServiceLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewChannelService(repotest.NewRepositories(t).UserProfile)
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	_, err := svc.Get(ctx, "u1")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	tok, err := svc.TokenFor(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, tok)

	assert.Equal(t, apperr.KindValidation, apperr.KindOf(svc.Register(ctx, "u1", "  ")))
	require.NoError(t, svc.Register(ctx, "u1", "device-1"))

	ch, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, ch.Token)
	assert.Equal(t, "device-1", *ch.Token)
	assert.True(t, ch.LastUpdate.Equal(fixed))

	tok, err = svc.TokenFor(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "device-1", tok)

	require.NoError(t, svc.Unregister(ctx, "u1"))
	ch, err = svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, ch.Token)

	require.NoError(t, svc.Unregister(ctx, "never-registered"))
}
