package notifier

import (
	"context"

	"github.com/rs/zerolog"
)

// ConsoleTransport logs notifications instead of dispatching them. Used in
// development and in the seed command.
type ConsoleTransport struct {
	log zerolog.Logger
}

// NewConsoleTransport creates a logging transport.
func NewConsoleTransport(log zerolog.Logger) *ConsoleTransport {
	return &ConsoleTransport{log: log.With().Str("component", "console_notifier").Logger()}
}

// Send logs the notification.
func (t *ConsoleTransport) Send(_ context.Context, studentID int, title, message, channel string) error {
	t.log.Info().
		Int("student_id", studentID).
		Str("channel", channel).
		Str("title", title).
		Str("message", message).
		Msg("Notification")
	return nil
}
