package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/settlement/pkg/settlement"
)

// LogSink writes each event as a structured log line.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink returns a LogSink. A nil logger discards events.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

func (sink *LogSink) Name() string {
	return "log"
}

func (sink *LogSink) Publish(ctx context.Context, event settlement.BookingEvent) error {
	sink.logger.Info("booking event",
		zap.String("booking_id", event.BookingID),
		zap.String("vertical", string(event.Vertical)),
		zap.String("previous_state", string(event.PreviousState)),
		zap.String("state", string(event.State)),
		zap.Int64("total_charged", event.Pricing.TotalCharged),
		zap.String("currency", event.Pricing.Currency),
		zap.Int64("version", event.Version),
		zap.Time("occurred_at", event.OccurredAt),
	)
	return nil
}
