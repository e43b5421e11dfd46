package settlement

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// ServiceOption configures a Service instance.
type ServiceOption func(*Service)

// OperationLogger records domain-level events emitted by Service operations.
type OperationLogger interface {
	LogOperation(ctx context.Context, entry OperationLog)
}

// OperationLog describes a settlement operation and its outcome.
type OperationLog struct {
	Operation string
	BookingID string
	ActorID   string
	State     State
	Version   int64
	Detail    string
	Status    string
	Error     error
}

// WithOperationLogger wires a logger that receives callbacks for every operation.
func WithOperationLogger(logger OperationLogger) ServiceOption {
	return func(service *Service) {
		service.logger = logger
	}
}

// WithNotifier wires the booking event publisher.
func WithNotifier(notifier Notifier) ServiceOption {
	return func(service *Service) {
		if notifier != nil {
			service.notifier = notifier
		}
	}
}

// WithReleaseScheduler wires the timer that fires automatic releases.
func WithReleaseScheduler(scheduler ReleaseScheduler) ServiceOption {
	return func(service *Service) {
		if scheduler != nil {
			service.scheduler = scheduler
		}
	}
}

// WithPolicyTable replaces the default per-vertical pricing and hold policies.
func WithPolicyTable(policies PolicyTable) ServiceOption {
	return func(service *Service) {
		service.policies = policies
	}
}

// WithMaxConflictRetries bounds how often a contended transition is re-read and retried.
func WithMaxConflictRetries(retries int) ServiceOption {
	return func(service *Service) {
		service.maxConflictRetries = retries
	}
}

// WithExternalTimeout bounds every payment gateway call.
func WithExternalTimeout(timeout time.Duration) ServiceOption {
	return func(service *Service) {
		service.externalTimeout = timeout
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(tracer trace.Tracer) ServiceOption {
	return func(service *Service) {
		if tracer != nil {
			service.tracer = tracer
		}
	}
}
