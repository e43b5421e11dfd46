// Package logging builds the process logger and adapts it to the settlement
// operation log.
package logging

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/MarkoPoloResearchLab/settlement/pkg/settlement"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// New returns a production logger, or a development one for the console format.
func New(format string, level string) (*zap.Logger, error) {
	var config zap.Config
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatJSON:
		config = zap.NewProductionConfig()
	case FormatConsole:
		config = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unsupported log format %q", format)
	}
	if strings.TrimSpace(level) != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		config.Level = zap.NewAtomicLevelAt(parsed)
	}
	return config.Build()
}

// ZapOperationLogger writes one structured line per settlement operation.
type ZapOperationLogger struct {
	logger *zap.Logger
}

// NewZapOperationLogger wraps logger. A nil logger discards entries.
func NewZapOperationLogger(logger *zap.Logger) *ZapOperationLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapOperationLogger{logger: logger}
}

// LogOperation implements settlement.OperationLogger.
func (operationLogger *ZapOperationLogger) LogOperation(ctx context.Context, entry settlement.OperationLog) {
	fields := []zap.Field{
		zap.String("operation", entry.Operation),
		zap.String("booking_id", entry.BookingID),
		zap.String("status", entry.Status),
	}
	if entry.ActorID != "" {
		fields = append(fields, zap.String("actor_id", entry.ActorID))
	}
	if entry.State != "" {
		fields = append(fields, zap.String("state", string(entry.State)), zap.Int64("version", entry.Version))
	}
	if entry.Detail != "" {
		fields = append(fields, zap.String("detail", entry.Detail))
	}
	switch {
	case entry.Error != nil:
		fields = append(fields, zap.Error(entry.Error))
		if settlement.IsTransient(entry.Error) {
			operationLogger.logger.Warn("settlement operation failed", fields...)
			return
		}
		operationLogger.logger.Info("settlement operation rejected", fields...)
	case entry.Status == settlement.StatusWarning:
		operationLogger.logger.Warn("settlement operation", fields...)
	default:
		operationLogger.logger.Info("settlement operation", fields...)
	}
}
