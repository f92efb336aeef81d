// Package mail delivers outbound email. Delivery is an external concern:
// callers treat a Sender as fire-and-forget and must stay functional when it
// fails.
package mail

import (
	"context"

	"github.com/rs/zerolog"
)

// Sender delivers a single plain-text message.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogSender is the fallback used when no delivery provider is configured: it
// writes the message to the log instead of sending it. Useful for local
// development, where the login link can be copied from the log output.
type LogSender struct {
	Log zerolog.Logger
}

func (s LogSender) Send(_ context.Context, to, subject, body string) error {
	s.Log.Info().
		Str("to", to).
		Str("subject", subject).
		Str("body", body).
		Msg("email delivery not configured, logging instead")
	return nil
}
