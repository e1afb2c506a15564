package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrInvalidAddress marks messages that can never be delivered
	ErrInvalidAddress = errors.New("invalid mail address")

	// ErrDeferred marks messages that are stored for delivery but could not
	// be handed on yet. Enqueueing them again would send them twice.
	ErrDeferred = errors.New("mail stored for deferred delivery")
)

// Message is one transactional email
type Message struct {
	To        string `json:"to"`
	Subject   string `json:"subject"`
	HTML      string `json:"html"`
	EventType string `json:"event_type,omitempty"`
}

// Sender delivers a message
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes messages to the log instead of sending them. It backs
// environments without an SMTP server.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("%w: empty recipient", ErrInvalidAddress)
	}

	s.logger.Info("Mail not sent, no SMTP server configured",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.Int("html_size", len(msg.HTML)),
	)
	return nil
}

// DirectQueue sends messages in-process when no broker is configured
type DirectQueue struct {
	sender Sender
}

func NewDirectQueue(sender Sender) *DirectQueue {
	return &DirectQueue{sender: sender}
}

func (q *DirectQueue) Enqueue(ctx context.Context, msg Message) error {
	return q.sender.Send(ctx, msg)
}
