// Package notify delivers best-effort order notifications. Failures are the
// caller's to log; they never abort the triggering request.
package notify

import (
	"context"
	"log"

	"butikku/backend/internal/domain"
)

type Sender interface {
	OrderCreated(ctx context.Context, order domain.Order) error
	OrderFulfilled(ctx context.Context, order domain.Order) error
}

// LogSender writes notifications to the process log. It stands in for the
// outbound email/WhatsApp channel in dev and test setups.
type LogSender struct{}

func NewLogSender() *LogSender {
	return &LogSender{}
}

func (s *LogSender) OrderCreated(_ context.Context, order domain.Order) error {
	log.Printf("[notify] order created id=%s email=%s items=%d total=%d", order.ID, order.Email, len(order.Items), order.TotalPurchased)
	return nil
}

func (s *LogSender) OrderFulfilled(_ context.Context, order domain.Order) error {
	log.Printf("[notify] order fulfilled id=%s email=%s", order.ID, order.Email)
	return nil
}
