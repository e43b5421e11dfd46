// Package scheduler fires automatic escrow releases when holds expire.
//
// Timers feed a buffered queue drained by worker goroutines, so a fire never
// blocks the caller that armed it. Delivery is at least once; the settlement
// service makes repeated releases idempotent.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/settlement/pkg/settlement"
)

const (
	defaultWorkers        = 4
	defaultQueueSize      = 256
	defaultInitialBackoff = 500 * time.Millisecond
	defaultMaxBackoff     = 30 * time.Second
	defaultMaxAttempts    = 5
	defaultCooldown       = 5 * time.Minute
	defaultAttemptTimeout = 15 * time.Second
)

// ErrInvalidConfig is returned for non-positive scheduler settings.
var ErrInvalidConfig = errors.New("invalid scheduler config")

// Target is the settlement surface the scheduler drives.
type Target interface {
	ReleaseExpiredHold(ctx context.Context, bookingID settlement.BookingID) (settlement.Booking, error)
	ListHeldBookings(ctx context.Context) ([]settlement.Booking, error)
}

// Config tunes the worker pool and the retry policy.
type Config struct {
	Workers        int
	QueueSize      int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	MaxAttempts    int
	Cooldown       time.Duration
	AttemptTimeout time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Workers:        defaultWorkers,
		QueueSize:      defaultQueueSize,
		InitialBackoff: defaultInitialBackoff,
		MaxBackoff:     defaultMaxBackoff,
		MaxAttempts:    defaultMaxAttempts,
		Cooldown:       defaultCooldown,
		AttemptTimeout: defaultAttemptTimeout,
	}
}

// Validate rejects settings that would stall or spin the scheduler.
func (config Config) Validate() error {
	switch {
	case config.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	case config.QueueSize <= 0:
		return fmt.Errorf("%w: queue size must be positive", ErrInvalidConfig)
	case config.InitialBackoff <= 0 || config.MaxBackoff < config.InitialBackoff:
		return fmt.Errorf("%w: backoff must satisfy 0 < initial <= max", ErrInvalidConfig)
	case config.MaxAttempts <= 0:
		return fmt.Errorf("%w: max attempts must be positive", ErrInvalidConfig)
	case config.Cooldown <= 0:
		return fmt.Errorf("%w: cooldown must be positive", ErrInvalidConfig)
	case config.AttemptTimeout <= 0:
		return fmt.Errorf("%w: attempt timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

type armedTimer struct {
	timer      *time.Timer
	generation uint64
}

// Scheduler implements settlement.ReleaseScheduler.
type Scheduler struct {
	config     Config
	logger     *zap.Logger
	nowFn      func() time.Time
	queue      chan string
	mutex      sync.Mutex
	timers     map[string]armedTimer
	inflight   map[string]struct{}
	generation uint64
	stopped    bool
}

// New constructs a Scheduler. Timers may be armed before Run starts the workers.
func New(config Config, logger *zap.Logger, now func() time.Time) (*Scheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Scheduler{
		config:   config,
		logger:   logger,
		nowFn:    now,
		queue:    make(chan string, config.QueueSize),
		timers:   make(map[string]armedTimer),
		inflight: make(map[string]struct{}),
	}, nil
}

// Arm schedules a release attempt at fireAt, replacing any earlier timer.
func (scheduler *Scheduler) Arm(bookingID string, fireAt time.Time) {
	scheduler.mutex.Lock()
	defer scheduler.mutex.Unlock()
	if scheduler.stopped {
		return
	}
	if existing, ok := scheduler.timers[bookingID]; ok {
		existing.timer.Stop()
	}
	scheduler.generation++
	generation := scheduler.generation
	delay := fireAt.Sub(scheduler.nowFn())
	if delay < 0 {
		delay = 0
	}
	scheduler.timers[bookingID] = armedTimer{
		timer:      time.AfterFunc(delay, func() { scheduler.fire(bookingID, generation) }),
		generation: generation,
	}
}

// Disarm cancels a pending timer. Releases already queued still run and are no-ops.
func (scheduler *Scheduler) Disarm(bookingID string) {
	scheduler.mutex.Lock()
	defer scheduler.mutex.Unlock()
	if existing, ok := scheduler.timers[bookingID]; ok {
		existing.timer.Stop()
		delete(scheduler.timers, bookingID)
	}
}

// Pending returns the number of armed timers.
func (scheduler *Scheduler) Pending() int {
	scheduler.mutex.Lock()
	defer scheduler.mutex.Unlock()
	return len(scheduler.timers)
}

// Stop cancels every timer and ignores later Arm calls.
func (scheduler *Scheduler) Stop() {
	scheduler.mutex.Lock()
	defer scheduler.mutex.Unlock()
	scheduler.stopped = true
	for bookingID, existing := range scheduler.timers {
		existing.timer.Stop()
		delete(scheduler.timers, bookingID)
	}
}

func (scheduler *Scheduler) fire(bookingID string, generation uint64) {
	scheduler.mutex.Lock()
	current, ok := scheduler.timers[bookingID]
	if !ok || current.generation != generation {
		scheduler.mutex.Unlock()
		return
	}
	delete(scheduler.timers, bookingID)
	scheduler.mutex.Unlock()

	select {
	case scheduler.queue <- bookingID:
	default:
		scheduler.logger.Warn("release queue full; re-arming after cooldown",
			zap.String("booking_id", bookingID),
			zap.Duration("cooldown", scheduler.config.Cooldown),
		)
		scheduler.Arm(bookingID, scheduler.nowFn().Add(scheduler.config.Cooldown))
	}
}

// Run drains the release queue with the configured worker count until ctx
// is cancelled, then stops every timer.
func (scheduler *Scheduler) Run(ctx context.Context, target Target) error {
	if target == nil {
		return fmt.Errorf("%w: target is nil", ErrInvalidConfig)
	}
	var waitGroup sync.WaitGroup
	for worker := 0; worker < scheduler.config.Workers; worker++ {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case bookingID := <-scheduler.queue:
					scheduler.release(ctx, target, bookingID)
				}
			}
		}()
	}
	waitGroup.Wait()
	scheduler.Stop()
	return nil
}

// Recover rebuilds timers from the ledger: future holds are re-armed and
// elapsed holds fire immediately. It returns the number of armed bookings.
func (scheduler *Scheduler) Recover(ctx context.Context, target Target) (int, error) {
	bookings, err := target.ListHeldBookings(ctx)
	if err != nil {
		return 0, fmt.Errorf("scheduler recover: %w", err)
	}
	armed := 0
	for _, booking := range bookings {
		if booking.HoldExpiresAt == nil {
			scheduler.logger.Warn("held booking without hold expiry", zap.String("booking_id", booking.ID))
			continue
		}
		scheduler.Arm(booking.ID, *booking.HoldExpiresAt)
		armed++
	}
	scheduler.logger.Info("release timers recovered", zap.Int("armed", armed), zap.Int("held", len(bookings)))
	return armed, nil
}

// SweepReport summarizes a synchronous Sweep.
type SweepReport struct {
	Held     int
	Released int
	Pending  int
	Skipped  int
	Failed   int
}

// Sweep releases every elapsed hold synchronously, without timers.
func (scheduler *Scheduler) Sweep(ctx context.Context, target Target) (SweepReport, error) {
	bookings, err := target.ListHeldBookings(ctx)
	if err != nil {
		return SweepReport{}, fmt.Errorf("scheduler sweep: %w", err)
	}
	report := SweepReport{Held: len(bookings)}
	nowUTC := scheduler.nowFn().UTC()
	for _, booking := range bookings {
		if booking.HoldExpiresAt != nil && nowUTC.Before(*booking.HoldExpiresAt) {
			report.Pending++
			continue
		}
		switch scheduler.attempt(ctx, target, booking.ID) {
		case outcomeReleased:
			report.Released++
		case outcomeRearmed:
			report.Pending++
		case outcomeSkipped:
			report.Skipped++
		default:
			report.Failed++
		}
	}
	return report, nil
}

type outcome int

const (
	outcomeReleased outcome = iota
	outcomeRearmed
	outcomeSkipped
	outcomeRetryLater
	outcomeAborted
)

// release runs at most one attempt per booking at a time; a fire that lands
// while an attempt is running is dropped.
func (scheduler *Scheduler) release(ctx context.Context, target Target, bookingID string) {
	if !scheduler.claim(bookingID) {
		scheduler.logger.Debug("release already in flight", zap.String("booking_id", bookingID))
		return
	}
	defer scheduler.unclaim(bookingID)
	if scheduler.attempt(ctx, target, bookingID) == outcomeRetryLater {
		scheduler.Arm(bookingID, scheduler.nowFn().Add(scheduler.config.Cooldown))
	}
}

func (scheduler *Scheduler) claim(bookingID string) bool {
	scheduler.mutex.Lock()
	defer scheduler.mutex.Unlock()
	if _, running := scheduler.inflight[bookingID]; running {
		return false
	}
	scheduler.inflight[bookingID] = struct{}{}
	return true
}

func (scheduler *Scheduler) unclaim(bookingID string) {
	scheduler.mutex.Lock()
	defer scheduler.mutex.Unlock()
	delete(scheduler.inflight, bookingID)
}

func (scheduler *Scheduler) attempt(ctx context.Context, target Target, rawBookingID string) outcome {
	logger := scheduler.logger.With(zap.String("booking_id", rawBookingID))
	bookingID, err := settlement.NewBookingID(rawBookingID)
	if err != nil {
		logger.Error("release skipped: invalid booking id", zap.Error(err))
		return outcomeSkipped
	}

	exponential := backoff.NewExponentialBackOff()
	exponential.InitialInterval = scheduler.config.InitialBackoff
	exponential.MaxInterval = scheduler.config.MaxBackoff

	booking, err := backoff.Retry(ctx, func() (settlement.Booking, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, scheduler.config.AttemptTimeout)
		defer cancel()
		released, releaseErr := target.ReleaseExpiredHold(attemptCtx, bookingID)
		if releaseErr != nil && isPermanent(releaseErr) {
			return released, backoff.Permanent(releaseErr)
		}
		return released, releaseErr
	},
		backoff.WithBackOff(exponential),
		backoff.WithMaxTries(uint(scheduler.config.MaxAttempts)),
		backoff.WithNotify(func(retryErr error, wait time.Duration) {
			logger.Warn("release attempt failed; retrying", zap.Error(retryErr), zap.Duration("wait", wait))
		}),
	)

	switch {
	case err == nil:
		logger.Info("hold settled", zap.String("state", string(booking.State)), zap.Int64("version", booking.Version))
		return outcomeReleased
	case errors.Is(err, settlement.ErrHoldActive):
		if booking.HoldExpiresAt == nil {
			logger.Error("release skipped: active hold without expiry", zap.Error(err))
			return outcomeSkipped
		}
		scheduler.Arm(rawBookingID, *booking.HoldExpiresAt)
		logger.Info("hold still active; re-armed", zap.Time("fire_at", *booking.HoldExpiresAt))
		return outcomeRearmed
	case isPermanent(err):
		logger.Info("release not applicable", zap.String("state", string(booking.State)), zap.Error(err))
		return outcomeSkipped
	case ctx.Err() != nil:
		logger.Warn("release aborted", zap.Error(err))
		return outcomeAborted
	default:
		logger.Error("release retries exhausted; re-arming after cooldown",
			zap.Error(err),
			zap.Duration("cooldown", scheduler.config.Cooldown),
		)
		return outcomeRetryLater
	}
}

// isPermanent reports outcomes that no retry can change.
func isPermanent(err error) bool {
	return errors.Is(err, settlement.ErrHoldActive) ||
		errors.Is(err, settlement.ErrInvalidTransition) ||
		errors.Is(err, settlement.ErrUnknownBooking) ||
		errors.Is(err, settlement.ErrInvalidBookingID) ||
		errors.Is(err, settlement.ErrForbidden)
}
