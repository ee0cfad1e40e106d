package push

import (
	"context"
	"log/slog"

	"firebase.google.com/go/v4/messaging"
)

// Sender delivers one notification to one channel token.
type Sender interface {
	Send(ctx context.Context, token, title, body string) error
}

// MessagingClient is the subset of *messaging.Client used by FirebaseSender.
type MessagingClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FirebaseSender sends through Firebase Cloud Messaging.
type FirebaseSender struct {
	client MessagingClient
	logger *slog.Logger
}

func NewFirebaseSender(client MessagingClient, logger *slog.Logger) *FirebaseSender {
	return &FirebaseSender{client: client, logger: logger}
}

func (s *FirebaseSender) Send(ctx context.Context, token, title, body string) error {
	msg := &messaging.Message{
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Token: token,
	}
	id, err := s.client.Send(ctx, msg)
	if err != nil {
		return err
	}
	s.logger.Debug("push notification sent", "message_id", id)
	return nil
}

// LogSender only logs. Used when no messaging credentials are configured.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, token, title, body string) error {
	s.logger.Info("push notification (not delivered, messaging disabled)",
		"token_suffix", tokenSuffix(token), "title", title, "body", body)
	return nil
}

func tokenSuffix(token string) string {
	if len(token) <= 6 {
		return token
	}
	return token[len(token)-6:]
}
