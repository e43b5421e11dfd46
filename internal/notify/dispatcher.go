// Package notify fans committed booking events out to message brokers and
// archives. Publication is asynchronous and never blocks a settlement call.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/settlement/pkg/settlement"
)

const (
	defaultQueueSize = 1024
	defaultWorkers   = 2
)

var (
	// ErrInvalidConfig is returned for unusable dispatcher settings.
	ErrInvalidConfig = errors.New("invalid notification config")

	defaultRetrySchedule = []time.Duration{100 * time.Millisecond, time.Second, 5 * time.Second}
)

// Sink delivers one event to one destination.
type Sink interface {
	Name() string
	Publish(ctx context.Context, event settlement.BookingEvent) error
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithQueueSize bounds the number of undelivered events kept in memory.
func WithQueueSize(size int) DispatcherOption {
	return func(dispatcher *Dispatcher) {
		dispatcher.queueSize = size
	}
}

// WithWorkers sets the number of delivery goroutines.
func WithWorkers(workers int) DispatcherOption {
	return func(dispatcher *Dispatcher) {
		dispatcher.workers = workers
	}
}

// WithRetrySchedule sets the waits between delivery attempts per sink.
func WithRetrySchedule(schedule []time.Duration) DispatcherOption {
	return func(dispatcher *Dispatcher) {
		dispatcher.retrySchedule = append([]time.Duration(nil), schedule...)
	}
}

// Dispatcher implements settlement.Notifier over a set of sinks.
type Dispatcher struct {
	logger        *zap.Logger
	sinks         []Sink
	queue         chan settlement.BookingEvent
	queueSize     int
	workers       int
	retrySchedule []time.Duration
	dropped       atomic.Int64
	delivered     atomic.Int64
	failed        atomic.Int64
}

// NewDispatcher constructs a Dispatcher. Events are buffered until Run starts.
func NewDispatcher(logger *zap.Logger, sinks []Sink, options ...DispatcherOption) (*Dispatcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	dispatcher := &Dispatcher{
		logger:        logger,
		sinks:         append([]Sink(nil), sinks...),
		queueSize:     defaultQueueSize,
		workers:       defaultWorkers,
		retrySchedule: defaultRetrySchedule,
	}
	for _, option := range options {
		if option != nil {
			option(dispatcher)
		}
	}
	if dispatcher.queueSize <= 0 {
		return nil, fmt.Errorf("%w: queue size must be positive", ErrInvalidConfig)
	}
	if dispatcher.workers <= 0 {
		return nil, fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	}
	for index, sink := range dispatcher.sinks {
		if sink == nil {
			return nil, fmt.Errorf("%w: sink %d is nil", ErrInvalidConfig, index)
		}
	}
	dispatcher.queue = make(chan settlement.BookingEvent, dispatcher.queueSize)
	return dispatcher, nil
}

// Notify enqueues the event, dropping it with a log line when the queue is full.
func (dispatcher *Dispatcher) Notify(ctx context.Context, event settlement.BookingEvent) {
	select {
	case dispatcher.queue <- event:
	default:
		dispatcher.dropped.Add(1)
		dispatcher.logger.Warn("notification queue full; event dropped",
			zap.String("booking_id", event.BookingID),
			zap.String("state", string(event.State)),
			zap.Int64("version", event.Version),
		)
	}
}

// Run delivers queued events until ctx is cancelled.
func (dispatcher *Dispatcher) Run(ctx context.Context) error {
	var waitGroup sync.WaitGroup
	for worker := 0; worker < dispatcher.workers; worker++ {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case event := <-dispatcher.queue:
					dispatcher.deliver(ctx, event)
				}
			}
		}()
	}
	waitGroup.Wait()
	if pending := len(dispatcher.queue); pending > 0 {
		dispatcher.logger.Warn("notification dispatcher stopped with undelivered events", zap.Int("pending", pending))
	}
	return nil
}

// Flush delivers every queued event on the caller's goroutine and returns
// how many it took. Call it once Run has returned.
func (dispatcher *Dispatcher) Flush(ctx context.Context) int {
	flushed := 0
	for {
		select {
		case event := <-dispatcher.queue:
			dispatcher.deliver(ctx, event)
			flushed++
		default:
			return flushed
		}
	}
}

// Stats reports delivery counters: delivered and failed count sink deliveries,
// dropped counts events rejected by a full queue.
func (dispatcher *Dispatcher) Stats() (delivered int64, failed int64, dropped int64) {
	return dispatcher.delivered.Load(), dispatcher.failed.Load(), dispatcher.dropped.Load()
}

func (dispatcher *Dispatcher) deliver(ctx context.Context, event settlement.BookingEvent) {
	for _, sink := range dispatcher.sinks {
		if err := dispatcher.publishWithRetry(ctx, sink, event); err != nil {
			dispatcher.failed.Add(1)
			dispatcher.logger.Error("notification delivery failed",
				zap.String("sink", sink.Name()),
				zap.String("booking_id", event.BookingID),
				zap.String("state", string(event.State)),
				zap.Int64("version", event.Version),
				zap.Error(err),
			)
			continue
		}
		dispatcher.delivered.Add(1)
	}
}

func (dispatcher *Dispatcher) publishWithRetry(ctx context.Context, sink Sink, event settlement.BookingEvent) error {
	var lastErr error
	for attempt := 0; ; attempt++ {
		lastErr = sink.Publish(ctx, event)
		if lastErr == nil {
			return nil
		}
		if attempt >= len(dispatcher.retrySchedule) {
			return lastErr
		}
		timer := time.NewTimer(dispatcher.retrySchedule[attempt])
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(lastErr, ctx.Err())
		case <-timer.C:
		}
	}
}
