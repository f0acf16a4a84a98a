// Package mail delivers transactional messages such as password reset
// links.
package mail

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/repetix/repetix-api/internal/platform/logger"
)

// ErrInvalidMessage is returned for messages without a recipient or body.
var ErrInvalidMessage = errors.New("invalid mail message")

// Message is a plain text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Validate reports whether m can be sent.
func (m Message) Validate() error {
	if strings.TrimSpace(m.To) == "" || strings.TrimSpace(m.Body) == "" {
		return ErrInvalidMessage
	}
	return nil
}

// Mailer sends messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes messages to the structured log instead of delivering
// them. It is used when no mail provider is configured.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a LogMailer. A nil logger means slog.Default().
func NewLogMailer(log *slog.Logger) *LogMailer {
	if log == nil {
		log = slog.Default()
	}
	return &LogMailer{logger: log.With(slog.String("component", "mailer"))}
}

var _ Mailer = (*LogMailer)(nil)

// Send implements Mailer.
func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	logger.FromContextOrDefault(ctx, m.logger).Info("mail message",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("body", msg.Body))
	return nil
}
