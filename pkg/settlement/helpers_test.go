package settlement_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MarkoPoloResearchLab/settlement/internal/gateway/sandbox"
	"github.com/MarkoPoloResearchLab/settlement/internal/store/memstore"
	"github.com/MarkoPoloResearchLab/settlement/pkg/settlement"
)

var (
	customerActor = settlement.Actor{ID: "customer-1"}
	providerActor = settlement.Actor{ID: "provider-1"}
	operatorActor = settlement.Actor{ID: "ops-1", Operator: true}
	strangerActor = settlement.Actor{ID: "stranger-1"}
)

type testClock struct {
	mutex sync.Mutex
	now   time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)}
}

func (clock *testClock) Now() time.Time {
	clock.mutex.Lock()
	defer clock.mutex.Unlock()
	return clock.now
}

func (clock *testClock) Advance(duration time.Duration) {
	clock.mutex.Lock()
	defer clock.mutex.Unlock()
	clock.now = clock.now.Add(duration)
}

type recordingScheduler struct {
	mutex    sync.Mutex
	armed    map[string]time.Time
	disarmed []string
}

func newRecordingScheduler() *recordingScheduler {
	return &recordingScheduler{armed: make(map[string]time.Time)}
}

func (scheduler *recordingScheduler) Arm(bookingID string, fireAt time.Time) {
	scheduler.mutex.Lock()
	defer scheduler.mutex.Unlock()
	scheduler.armed[bookingID] = fireAt
}

func (scheduler *recordingScheduler) Disarm(bookingID string) {
	scheduler.mutex.Lock()
	defer scheduler.mutex.Unlock()
	delete(scheduler.armed, bookingID)
	scheduler.disarmed = append(scheduler.disarmed, bookingID)
}

func (scheduler *recordingScheduler) armedAt(bookingID string) (time.Time, bool) {
	scheduler.mutex.Lock()
	defer scheduler.mutex.Unlock()
	fireAt, ok := scheduler.armed[bookingID]
	return fireAt, ok
}

type recordingNotifier struct {
	mutex  sync.Mutex
	events []settlement.BookingEvent
}

func (notifier *recordingNotifier) Notify(_ context.Context, event settlement.BookingEvent) {
	notifier.mutex.Lock()
	defer notifier.mutex.Unlock()
	notifier.events = append(notifier.events, event)
}

func (notifier *recordingNotifier) states() []settlement.State {
	notifier.mutex.Lock()
	defer notifier.mutex.Unlock()
	states := make([]settlement.State, 0, len(notifier.events))
	for _, event := range notifier.events {
		states = append(states, event.State)
	}
	return states
}

type recorderLogger struct {
	mutex   sync.Mutex
	entries []settlement.OperationLog
}

func (logger *recorderLogger) LogOperation(_ context.Context, entry settlement.OperationLog) {
	logger.mutex.Lock()
	defer logger.mutex.Unlock()
	logger.entries = append(logger.entries, entry)
}

func (logger *recorderLogger) find(operation string) (settlement.OperationLog, bool) {
	logger.mutex.Lock()
	defer logger.mutex.Unlock()
	for _, entry := range logger.entries {
		if entry.Operation == operation {
			return entry, true
		}
	}
	return settlement.OperationLog{}, false
}

type harness struct {
	store     *memstore.Store
	gateway   *sandbox.Gateway
	clock     *testClock
	scheduler *recordingScheduler
	notifier  *recordingNotifier
	logger    *recorderLogger
	service   *settlement.Service
}

func newHarness(test *testing.T, gatewayOptions ...sandbox.Option) *harness {
	test.Helper()
	instance := &harness{
		store:     memstore.New(),
		gateway:   sandbox.New(gatewayOptions...),
		clock:     newTestClock(),
		scheduler: newRecordingScheduler(),
		notifier:  &recordingNotifier{},
		logger:    &recorderLogger{},
	}
	service, err := settlement.NewService(
		instance.store,
		instance.gateway,
		instance.clock.Now,
		settlement.WithPolicyTable(mustPolicyTable(test, nil)),
		settlement.WithReleaseScheduler(instance.scheduler),
		settlement.WithNotifier(instance.notifier),
		settlement.WithOperationLogger(instance.logger),
	)
	if err != nil {
		test.Fatalf("service init failed: %v", err)
	}
	instance.service = service
	return instance
}

func mustPolicyTable(test *testing.T, providerRates map[string]int64) settlement.PolicyTable {
	test.Helper()
	policies := make(map[settlement.Vertical]settlement.VerticalPolicy)
	for _, vertical := range settlement.Verticals() {
		policies[vertical] = settlement.VerticalPolicy{
			RatePerUnit:           10000,
			CommissionRatePercent: decimal.NewFromInt(20),
			TaxRatePercent:        decimal.NewFromInt(18),
			HoldWindow:            72 * time.Hour,
			ProviderRates:         providerRates,
		}
	}
	table, err := settlement.NewPolicyTable("usd", policies)
	if err != nil {
		test.Fatalf("policy table: %v", err)
	}
	return table
}

func mustBookingID(test *testing.T, raw string) settlement.BookingID {
	test.Helper()
	bookingID, err := settlement.NewBookingID(raw)
	if err != nil {
		test.Fatalf("booking id: %v", err)
	}
	return bookingID
}

func walkRequest(idempotencyKey string) settlement.CreateBookingRequest {
	return settlement.CreateBookingRequest{
		Vertical:       settlement.VerticalWalk,
		ProviderID:     providerActor.ID,
		CustomerID:     customerActor.ID,
		Units:          decimal.RequireFromString("1.5"),
		IdempotencyKey: idempotencyKey,
	}
}

func (instance *harness) mustCreateHeld(test *testing.T, request settlement.CreateBookingRequest) settlement.Booking {
	test.Helper()
	booking, err := instance.service.CreateBooking(context.Background(), customerActor, request)
	if err != nil {
		test.Fatalf("create booking: %v", err)
	}
	if booking.State != settlement.StateHeld {
		test.Fatalf("expected held booking, got %s", booking.State)
	}
	return booking
}

func (instance *harness) mustGet(test *testing.T, bookingID string) settlement.Booking {
	test.Helper()
	booking, err := instance.service.GetBookingStatus(context.Background(), operatorActor, mustBookingID(test, bookingID))
	if err != nil {
		test.Fatalf("get booking: %v", err)
	}
	return booking
}

func (instance *harness) mustEntries(test *testing.T, bookingID string) []settlement.LedgerEntry {
	test.Helper()
	entries, err := instance.service.ListLedgerEntries(context.Background(), operatorActor, mustBookingID(test, bookingID))
	if err != nil {
		test.Fatalf("list entries: %v", err)
	}
	return entries
}

func entryTypes(entries []settlement.LedgerEntry) []settlement.EntryType {
	types := make([]settlement.EntryType, 0, len(entries))
	for _, entry := range entries {
		types = append(types, entry.Type)
	}
	return types
}
