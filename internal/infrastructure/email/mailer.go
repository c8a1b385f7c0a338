package email

import (
	"context"

	"github.com/rs/zerolog"
)

// LogMailer satisfies ports.Mailer by logging the reset dispatch instead
// of sending mail. Actual delivery belongs to the external email service;
// this implementation stands in for it in development and tests. The
// token itself is never logged.
type LogMailer struct {
	logger zerolog.Logger
}

func NewLogMailer(logger zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendPasswordReset(_ context.Context, email, resetToken string) error {
	m.logger.Info().
		Str("email", email).
		Int("token_len", len(resetToken)).
		Msg("password reset dispatched")
	return nil
}
