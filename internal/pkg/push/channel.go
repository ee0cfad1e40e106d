package push

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ManuelReschke/NewsDesk/app/repository"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/apperr"
)

// Channel is the registration state returned to the client.
type Channel struct {
	Token      *string    `json:"token"`
	LastUpdate *time.Time `json:"lastUpdate"`
}

// ChannelService manages the push channel token on a user profile.
type ChannelService struct {
	profiles repository.UserProfileRepository
	now      func() time.Time
}

func NewChannelService(profiles repository.UserProfileRepository) *ChannelService {
	return &ChannelService{profiles: profiles, now: time.Now}
}

// Register overwrites the user's token. Format and uniqueness are not checked.
func (s *ChannelService) Register(ctx context.Context, userID, token string) error {
	token = strings.TrimSpace(token)
	if userID == "" {
		return apperr.Unauthorized("login required")
	}
	if token == "" {
		return apperr.Validation("FCM token is required")
	}
	return s.profiles.SetChannelToken(ctx, userID, &token, s.now().UTC())
}

func (s *ChannelService) Get(ctx context.Context, userID string) (*Channel, error) {
	p, err := s.profiles.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}
	return &Channel{Token: p.ChannelToken, LastUpdate: p.LastTokenUpdate}, nil
}

// Unregister clears the token. A user without a profile gets an empty one.
func (s *ChannelService) Unregister(ctx context.Context, userID string) error {
	if userID == "" {
		return apperr.Unauthorized("login required")
	}
	return s.profiles.SetChannelToken(ctx, userID, nil, s.now().UTC())
}

// TokenFor returns the registered token, or "" if none.
func (s *ChannelService) TokenFor(ctx context.Context, userID string) (string, error) {
	p, err := s.profiles.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if !p.HasChannel() {
		return "", nil
	}
	return *p.ChannelToken, nil
}
