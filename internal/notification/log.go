package notification

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier writes events to the structured log. It is the default sink
// when no SMTP server is configured.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{
		logger: logger,
	}
}

func (n *LogNotifier) Notify(_ context.Context, event Event) error {
	n.logger.Info("order notification",
		zap.String("kind", string(event.Kind)),
		zap.String("order_number", event.OrderNumber),
		zap.String("recipient", event.RecipientEmail),
		zap.String("total", event.Total.StringFixed(2)),
		zap.Ints("ticket_numbers", event.TicketNumbers),
		zap.String("reason", event.Reason),
	)

	return nil
}
