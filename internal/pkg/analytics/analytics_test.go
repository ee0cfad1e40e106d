package analytics

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPicksNoopWithoutCredentials(t *testing.T) {
	t.Parallel()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	assert.IsType(t, NoopTracker{}, New("", "token", logger))
	assert.IsType(t, NoopTracker{}, New("123", " ", logger))
	assert.IsType(t, &PixelTracker{}, New("123", "token", logger))
}

func TestPixelTrackerSend(t *testing.T) {
	t.Parallel()

	var gotPath string
	var got eventsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"events_received":1}`))
	}))
	defer srv.Close()

	p := NewPixelTracker("px1", "secret", slog.New(slog.NewTextHandler(io.Discard, nil)))
	p.BaseURL = srv.URL
	p.now = func() time.Time { return time.Unix(1700000000, 0) }

	err := p.Send(context.Background(), Event{Name: EventNewsCreated, UserID: "U1", Data: map[string]interface{}{"title": "Storm"}})
	require.NoError(t, err)

	assert.Equal(t, "/px1/events", gotPath)
	assert.Equal(t, "secret", got.AccessToken)
	require.Len(t, got.Data, 1)
	assert.Equal(t, EventNewsCreated, got.Data[0].EventName)
	assert.Equal(t, int64(1700000000), got.Data[0].EventTime)
	assert.Equal(t, []string{HashIdentifier("u1")}, got.Data[0].UserData["external_id"])
	assert.Equal(t, "Storm", got.Data[0].CustomData["title"])
}

func TestPixelTrackerSendErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"Invalid OAuth access token"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	p := NewPixelTracker("px1", "bad", slog.New(slog.NewTextHandler(io.Discard, nil)))
	p.BaseURL = srv.URL

	assert.Error(t, p.Send(context.Background(), Event{Name: EventPageView}))
	assert.Error(t, p.Send(context.Background(), Event{}))
}

func TestHashIdentifierNormalizes(t *testing.T) {
	t.Parallel()
	assert.Equal(t, HashIdentifier("abc"), HashIdentifier("  ABC "))
	assert.Len(t, HashIdentifier("abc"), 64)
}
