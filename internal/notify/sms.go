package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// SMSSender is a stub: it logs the message and reports success. No SMS
// gateway is wired up yet; the channel exists so callers and the delivery
// bookkeeping treat SMS like any other channel.
type SMSSender struct {
	log *zap.Logger
}

// NewSMSSender creates the logging SMS stub.
func NewSMSSender(log *zap.Logger) *SMSSender {
	if log == nil {
		log = zap.NewNop()
	}
	return &SMSSender{log: log}
}

// Send implements Sender.
func (s *SMSSender) Send(ctx context.Context, msg Message) (string, error) {
	if msg.To == "" {
		return "", fmt.Errorf("sms: recipient is required")
	}
	s.log.Info("sms: would send",
		zap.String("to", msg.To),
		zap.String("text", msg.Body))
	return "logged (no SMS gateway configured)", nil
}
