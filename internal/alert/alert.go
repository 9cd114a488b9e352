// Package alert defines the notification-delivery collaborator
// contract. The store consumes it to push debit/credit alerts; delivery
// failure is never fatal to the originating transaction.
package alert

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Message is one outbound alert.
type Message struct {
	Destination string `json:"destination"`
	Text        string `json:"messageText"`
	Category    string `json:"category"`
}

// Result reports the delivery outcome.
type Result struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Sender delivers alerts to an external channel (SMS gateway, push
// service). Implementations may block on the network; callers must not
// hold store locks while sending.
type Sender interface {
	Send(ctx context.Context, msg Message) (Result, error)
}

// LogSender is a Sender that logs instead of delivering. Used in the
// demo build and in tests.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a new LogSender.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

// Send logs the alert and reports success.
func (s *LogSender) Send(_ context.Context, msg Message) (Result, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return Result{Success: false, Error: err.Error()}, err
	}

	s.logger.Info("ALERT DISPATCHED",
		slog.String("destination", msg.Destination),
		slog.String("category", msg.Category),
		slog.String("payload", string(payload)))

	return Result{Success: true, ID: "log"}, nil
}
