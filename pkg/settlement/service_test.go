package settlement_test

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MarkoPoloResearchLab/settlement/internal/gateway/sandbox"
	"github.com/MarkoPoloResearchLab/settlement/internal/store/memstore"
	"github.com/MarkoPoloResearchLab/settlement/pkg/pricing"
	"github.com/MarkoPoloResearchLab/settlement/pkg/settlement"
)

func TestCreateBookingPricesChargesAndHolds(test *testing.T) {
	test.Parallel()
	instance := newHarness(test)
	createdAt := instance.clock.Now()

	booking := instance.mustCreateHeld(test, walkRequest("walk-1"))

	if booking.ID != "walk-1" {
		test.Fatalf("expected idempotency key as id, got %q", booking.ID)
	}
	if booking.Pricing.BaseAmount != 15000 || booking.Pricing.CommissionAmount != 3000 || booking.Pricing.TaxAmount != 540 || booking.Pricing.TotalCharged != 18540 {
		test.Fatalf("unexpected pricing: %+v", booking.Pricing)
	}
	if booking.HoldExpiresAt == nil || !booking.HoldExpiresAt.Equal(createdAt.Add(72*time.Hour)) {
		test.Fatalf("expected hold to expire 72h after creation, got %v", booking.HoldExpiresAt)
	}
	if booking.ExternalChargeID == "" {
		test.Fatalf("expected external charge id")
	}
	if booking.Version != 3 || booking.Intent != settlement.IntentNone {
		test.Fatalf("expected version 3 with no claim after create, charge claim and hold, got v%d/%q", booking.Version, booking.Intent)
	}
	fireAt, armed := instance.scheduler.armedAt(booking.ID)
	if !armed || !fireAt.Equal(*booking.HoldExpiresAt) {
		test.Fatalf("expected release armed at hold expiry, got %v (armed=%v)", fireAt, armed)
	}
	entries := instance.mustEntries(test, booking.ID)
	if len(entries) != 1 || entries[0].Type != settlement.EntryCharge || entries[0].Amount != 18540 {
		test.Fatalf("expected a single +18540 charge entry, got %+v", entries)
	}
	if entries[0].IdempotencyKey != "walk-1:charge" {
		test.Fatalf("unexpected entry idempotency key %q", entries[0].IdempotencyKey)
	}
	if states := instance.notifier.states(); !reflect.DeepEqual(states, []settlement.State{settlement.StateHeld}) {
		test.Fatalf("expected one held event, got %v", states)
	}
}

func TestCreateBookingReplayReturnsExistingBooking(test *testing.T) {
	test.Parallel()
	instance := newHarness(test)
	first := instance.mustCreateHeld(test, walkRequest("walk-replay"))
	second := instance.mustCreateHeld(test, walkRequest("walk-replay"))

	if first.ID != second.ID || first.Version != second.Version {
		test.Fatalf("expected replay to return the same booking, got %+v and %+v", first, second)
	}
	if executed := instance.gateway.Executed(sandbox.OperationCharge); executed != 1 {
		test.Fatalf("expected one charge, got %d", executed)
	}
	if count := instance.store.EntryCount(); count != 1 {
		test.Fatalf("expected one ledger entry, got %d", count)
	}
}

func TestCreateBookingReplayWithDifferentParametersFails(test *testing.T) {
	test.Parallel()
	instance := newHarness(test)
	instance.mustCreateHeld(test, walkRequest("walk-mismatch"))

	request := walkRequest("walk-mismatch")
	request.Units = decimal.NewFromInt(3)
	_, err := instance.service.CreateBooking(context.Background(), customerActor, request)
	if !errors.Is(err, settlement.ErrDuplicateBooking) {
		test.Fatalf("expected ErrDuplicateBooking, got %v", err)
	}
}

func TestCreateBookingDeclineKeepsPendingPayment(test *testing.T) {
	test.Parallel()
	instance := newHarness(test, sandbox.WithDeclinedCustomers(customerActor.ID))

	_, err := instance.service.CreateBooking(context.Background(), customerActor, walkRequest("walk-declined"))
	if !errors.Is(err, settlement.ErrPaymentDeclined) {
		test.Fatalf("expected ErrPaymentDeclined, got %v", err)
	}
	booking := instance.mustGet(test, "walk-declined")
	if booking.State != settlement.StatePendingPayment || booking.Intent != settlement.IntentNone {
		test.Fatalf("expected pending_payment booking with the charge claim dropped, got %s/%q", booking.State, booking.Intent)
	}
	if entries := instance.mustEntries(test, booking.ID); len(entries) != 0 {
		test.Fatalf("expected no entries, got %+v", entries)
	}
	if _, armed := instance.scheduler.armedAt(booking.ID); armed {
		test.Fatalf("expected no release timer for unpaid booking")
	}
}

func TestCreateBookingTimeoutThenReplayCharges(test *testing.T) {
	test.Parallel()
	instance := newHarness(test)
	instance.gateway.FailNext(sandbox.OperationCharge, context.DeadlineExceeded)

	_, err := instance.service.CreateBooking(context.Background(), customerActor, walkRequest("walk-timeout"))
	if !errors.Is(err, settlement.ErrExternalServiceTimeout) {
		test.Fatalf("expected ErrExternalServiceTimeout, got %v", err)
	}
	if booking := instance.mustGet(test, "walk-timeout"); booking.State != settlement.StatePendingPayment || booking.Intent != settlement.IntentCharge {
		test.Fatalf("expected pending_payment with the charge still claimed after timeout, got %s/%q", booking.State, booking.Intent)
	}
	if _, err := instance.service.CancelBooking(context.Background(), customerActor, mustBookingID(test, "walk-timeout")); !errors.Is(err, settlement.ErrCancellationWindowClosed) {
		test.Fatalf("expected cancel to wait for the unresolved charge, got %v", err)
	}

	booking := instance.mustCreateHeld(test, walkRequest("walk-timeout"))
	if booking.ID != "walk-timeout" {
		test.Fatalf("unexpected booking id %q", booking.ID)
	}
	if calls, executed := instance.gateway.Calls(sandbox.OperationCharge), instance.gateway.Executed(sandbox.OperationCharge); calls != 2 || executed != 1 {
		test.Fatalf("expected two charge attempts and one capture, got %d and %d", calls, executed)
	}
}

func TestCreateBookingValidation(test *testing.T) {
	test.Parallel()
	testCases := []struct {
		name    string
		actor   settlement.Actor
		mutate  func(request *settlement.CreateBookingRequest)
		wantErr error
	}{
		{name: "stranger", actor: strangerActor, mutate: func(*settlement.CreateBookingRequest) {}, wantErr: settlement.ErrForbidden},
		{name: "provider books for customer", actor: providerActor, mutate: func(*settlement.CreateBookingRequest) {}, wantErr: settlement.ErrForbidden},
		{name: "empty actor", actor: settlement.Actor{}, mutate: func(*settlement.CreateBookingRequest) {}, wantErr: settlement.ErrInvalidActor},
		{name: "zero units", actor: customerActor, mutate: func(request *settlement.CreateBookingRequest) { request.Units = decimal.Zero }, wantErr: pricing.ErrInvalidPricingInput},
		{name: "unknown vertical", actor: customerActor, mutate: func(request *settlement.CreateBookingRequest) { request.Vertical = "grooming" }, wantErr: settlement.ErrInvalidVertical},
		{name: "missing provider", actor: customerActor, mutate: func(request *settlement.CreateBookingRequest) { request.ProviderID = " " }, wantErr: settlement.ErrInvalidParty},
		{name: "self booking", actor: customerActor, mutate: func(request *settlement.CreateBookingRequest) { request.ProviderID = customerActor.ID }, wantErr: settlement.ErrInvalidRequest},
		{name: "key with delimiter", actor: customerActor, mutate: func(request *settlement.CreateBookingRequest) { request.IdempotencyKey = "a:b" }, wantErr: settlement.ErrInvalidBookingID},
	}
	for _, testCase := range testCases {
		testCase := testCase
		test.Run(testCase.name, func(test *testing.T) {
			test.Parallel()
			instance := newHarness(test)
			request := walkRequest("walk-invalid")
			testCase.mutate(&request)
			_, err := instance.service.CreateBooking(context.Background(), testCase.actor, request)
			if !errors.Is(err, testCase.wantErr) {
				test.Fatalf("expected %v, got %v", testCase.wantErr, err)
			}
			bookings, listErr := instance.store.ListBookings(context.Background(), settlement.BookingFilter{})
			if listErr != nil {
				test.Fatalf("list bookings: %v", listErr)
			}
			if len(bookings) != 0 {
				test.Fatalf("expected no stored booking, got %d", len(bookings))
			}
		})
	}
}

func TestCreateBookingWithoutKeyGeneratesID(test *testing.T) {
	test.Parallel()
	instance := newHarness(test)
	first := instance.mustCreateHeld(test, walkRequest(""))
	second := instance.mustCreateHeld(test, walkRequest(""))
	if first.ID == "" || first.ID == second.ID {
		test.Fatalf("expected distinct generated ids, got %q and %q", first.ID, second.ID)
	}
}

func TestAdvisoryTotalMismatchIsLoggedAndIgnored(test *testing.T) {
	test.Parallel()
	instance := newHarness(test)
	request := walkRequest("walk-advisory")
	advisory := int64(100)
	request.AdvisoryTotal = &advisory

	booking := instance.mustCreateHeld(test, request)
	if booking.Pricing.TotalCharged != 18540 {
		test.Fatalf("expected authoritative total, got %d", booking.Pricing.TotalCharged)
	}
	entry, found := instance.logger.find("advisory_mismatch")
	if !found || entry.Status != "warning" {
		test.Fatalf("expected advisory mismatch warning, got %+v (found=%v)", entry, found)
	}
}

func TestReleaseExpiredHoldReleasesExactlyOnce(test *testing.T) {
	test.Parallel()
	instance := newHarness(test)
	booking := instance.mustCreateHeld(test, walkRequest("walk-release"))
	bookingID := mustBookingID(test, booking.ID)
	instance.clock.Advance(72 * time.Hour)

	released, err := instance.service.ReleaseExpiredHold(context.Background(), bookingID)
	if err != nil {
		test.Fatalf("release: %v", err)
	}
	if released.State != settlement.StateReleased || released.HoldExpiresAt != nil {
		test.Fatalf("expected released booking without hold, got %+v", released)
	}
	again, err := instance.service.ReleaseExpiredHold(context.Background(), bookingID)
	if err != nil {
		test.Fatalf("second release: %v", err)
	}
	if again.State != settlement.StateReleased || again.Version != released.Version {
		test.Fatalf("expected no-op re-fire, got %s v%d", again.State, again.Version)
	}
	if calls := instance.gateway.Calls(sandbox.OperationPayout); calls != 1 {
		test.Fatalf("expected one payout call, got %d", calls)
	}
	if moved := instance.gateway.Moved(sandbox.OperationPayout); moved != 15000 {
		test.Fatalf("expected payout of base amount, got %d", moved)
	}

	entries := instance.mustEntries(test, booking.ID)
	wantTypes := []settlement.EntryType{settlement.EntryCharge, settlement.EntryPayout, settlement.EntryCommission, settlement.EntryTax}
	if !reflect.DeepEqual(entryTypes(entries), wantTypes) {
		test.Fatalf("unexpected entry types %v", entryTypes(entries))
	}
	if sum := settlement.SumEntries(entries); sum != 0 {
		test.Fatalf("expected conserved escrow, got sum %d", sum)
	}
	if states := instance.notifier.states(); !reflect.DeepEqual(states, []settlement.State{settlement.StateHeld, settlement.StateReleased}) {
		test.Fatalf("unexpected events %v", states)
	}
}

func TestReleaseExpiredHoldBeforeExpiryReportsActiveHold(test *testing.T) {
	test.Parallel()
	instance := newHarness(test)
	booking := instance.mustCreateHeld(test, walkRequest("walk-early"))
	instance.clock.Advance(71 * time.Hour)

	current, err := instance.service.ReleaseExpiredHold(context.Background(), mustBookingID(test, booking.ID))
	if !errors.Is(err, settlement.ErrHoldActive) {
		test.Fatalf("expected ErrHoldActive, got %v", err)
	}
	if current.HoldExpiresAt == nil || !current.HoldExpiresAt.Equal(*booking.HoldExpiresAt) {
		test.Fatalf("expected current hold expiry, got %v", current.HoldExpiresAt)
	}
	if stored := instance.mustGet(test, booking.ID); stored.Version != booking.Version || stored.State != settlement.StateHeld {
		test.Fatalf("expected untouched booking, got %s v%d", stored.State, stored.Version)
	}
}

func TestConcurrentReleaseSignalsPayOnce(test *testing.T) {
	test.Parallel()
	instance := newHarness(test)
	booking := instance.mustCreateHeld(test, walkRequest("walk-race"))
	bookingID := mustBookingID(test, booking.ID)
	instance.clock.Advance(80 * time.Hour)

	var waitGroup sync.WaitGroup
	for worker := 0; worker < 8; worker++ {
		waitGroup.Add(1)
		go func(worker int) {
			defer waitGroup.Done()
			var err error
			if worker%2 == 0 {
				_, err = instance.service.ReleaseExpiredHold(context.Background(), bookingID)
			} else {
				_, err = instance.service.ConfirmCompletion(context.Background(), customerActor, bookingID)
			}
			if err != nil && !errors.Is(err, settlement.ErrConflict) {
				test.Errorf("unexpected release error: %v", err)
			}
		}(worker)
	}
	waitGroup.Wait()

	if _, err := instance.service.ReleaseExpiredHold(context.Background(), bookingID); err != nil {
		test.Fatalf("settling release: %v", err)
	}
	if stored := instance.mustGet(test, booking.ID); stored.State != settlement.StateReleased {
		test.Fatalf("expected released, got %s", stored.State)
	}
	if executed := instance.gateway.Executed(sandbox.OperationPayout); executed != 1 {
		test.Fatalf("expected exactly one payout, got %d", executed)
	}
	entries := instance.mustEntries(test, booking.ID)
	if len(entries) != 4 || settlement.SumEntries(entries) != 0 {
		test.Fatalf("expected four conserved entries, got %+v", entries)
	}
}

func TestConfirmCompletionReleasesEarly(test *testing.T) {
	test.Parallel()
	instance := newHarness(test)
	booking := instance.mustCreateHeld(test, walkRequest("walk-confirm"))

	released, err := instance.service.ConfirmCompletion(context.Background(), customerActor, mustBookingID(test, booking.ID))
	if err != nil {
		test.Fatalf("confirm: %v", err)
	}
	if released.State != settlement.StateReleased {
		test.Fatalf("expected released, got %s", released.State)
	}
	if _, armed := instance.scheduler.armedAt(booking.ID); armed {
		test.Fatalf("expected release timer disarmed")
	}
}

func TestCancelHeldBeforeServiceStartRefunds(test *testing.T) {
	test.Parallel()
	instance := newHarness(test)
	request := walkRequest("walk-cancel")
	serviceStart := instance.clock.Now().Add(5 * time.Hour)
	request.ScheduledStart = &serviceStart
	booking := instance.mustCreateHeld(test, request)
	instance.clock.Advance(4 * time.Hour)

	refunded, err := instance.service.CancelBooking(context.Background(), customerActor, mustBookingID(test, booking.ID))
	if err != nil {
		test.Fatalf("cancel: %v", err)
	}
	if refunded.State != settlement.StateRefunded || refunded.HoldExpiresAt != nil {
		test.Fatalf("expected refunded booking without hold, got %+v", refunded)
	}
	if moved := instance.gateway.Moved(sandbox.OperationRefund); moved != booking.Pricing.TotalCharged {
		test.Fatalf("expected full refund of %d, got %d", booking.Pricing.TotalCharged, moved)
	}
	if calls := instance.gateway.Calls(sandbox.OperationPayout); calls != 0 {
		test.Fatalf("expected no payout, got %d calls", calls)
	}
	entries := instance.mustEntries(test, booking.ID)
	if !reflect.DeepEqual(entryTypes(entries), []settlement.EntryType{settlement.EntryCharge, settlement.EntryRefund}) {
		test.Fatalf("unexpected entries %v", entryTypes(entries))
	}
	if settlement.SumEntries(entries) != 0 {
		test.Fatalf("expected conserved escrow, got %d", settlement.SumEntries(entries))
	}
	if _, armed := instance.scheduler.armedAt(booking.ID); armed {
		test.Fatalf("expected release timer disarmed")
	}

	again, err := instance.service.CancelBooking(context.Background(), customerActor, mustBookingID(test, booking.ID))
	if err != nil || again.Version != refunded.Version {
		test.Fatalf("expected idempotent cancel, got %v (v%d)", err, again.Version)
	}
}

func TestCancelAfterServiceStartFails(test *testing.T) {
	test.Parallel()
	instance := newHarness(test)
	request := walkRequest("walk-late-cancel")
	serviceStart := instance.clock.Now().Add(2 * time.Hour)
	request.ScheduledStart = &serviceStart
	booking := instance.mustCreateHeld(test, request)
	instance.clock.Advance(2 * time.Hour)

	_, err := instance.service.CancelBooking(context.Background(), customerActor, mustBookingID(test, booking.ID))
	if !errors.Is(err, settlement.ErrCancellationWindowClosed) {
		test.Fatalf("expected ErrCancellationWindowClosed, got %v", err)
	}
	if stored := instance.mustGet(test, booking.ID); stored.Version != booking.Version {
		test.Fatalf("expected version %d, got %d", booking.Version, stored.Version)
	}
}

func TestCancelPendingPaymentCancelsWithoutMoney(test *testing.T) {
	test.Parallel()
	instance := newHarness(test, sandbox.WithDeclinedCustomers(customerActor.ID))
	if _, err := instance.service.CreateBooking(context.Background(), customerActor, walkRequest("walk-unpaid")); !errors.Is(err, settlement.ErrPaymentDeclined) {
		test.Fatalf("expected decline, got %v", err)
	}

	cancelled, err := instance.service.CancelBooking(context.Background(), customerActor, mustBookingID(test, "walk-unpaid"))
	if err != nil {
		test.Fatalf("cancel: %v", err)
	}
	if cancelled.State != settlement.StateCancelled {
		test.Fatalf("expected cancelled, got %s", cancelled.State)
	}
	if calls := instance.gateway.Calls(sandbox.OperationRefund); calls != 0 {
		test.Fatalf("expected no refund for unpaid booking, got %d", calls)
	}
	replayed, err := instance.service.CreateBooking(context.Background(), customerActor, walkRequest("walk-unpaid"))
	if err != nil || replayed.State != settlement.StateCancelled {
		test.Fatalf("expected replay to return cancelled booking, got %s (%v)", replayed.State, err)
	}
}

func TestCancelDuringInFlightChargeIsRefused(test *testing.T) {
	test.Parallel()
	instance := newHarness(test, sandbox.WithLatency(200*time.Millisecond))

	type createOutcome struct {
		booking settlement.Booking
		err     error
	}
	created := make(chan createOutcome, 1)
	go func() {
		booking, err := instance.service.CreateBooking(context.Background(), customerActor, walkRequest("walk-racing"))
		created <- createOutcome{booking: booking, err: err}
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		booking, err := instance.service.GetBookingStatus(context.Background(), customerActor, mustBookingID(test, "walk-racing"))
		if err == nil && booking.Intent == settlement.IntentCharge {
			break
		}
		if time.Now().After(deadline) {
			test.Fatalf("charge was never claimed: %+v (%v)", booking, err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	_, err := instance.service.CancelBooking(context.Background(), customerActor, mustBookingID(test, "walk-racing"))
	if !errors.Is(err, settlement.ErrCancellationWindowClosed) {
		test.Fatalf("expected ErrCancellationWindowClosed while charging, got %v", err)
	}

	outcome := <-created
	if outcome.err != nil {
		test.Fatalf("create booking: %v", outcome.err)
	}
	if outcome.booking.State != settlement.StateHeld {
		test.Fatalf("expected held booking, got %s", outcome.booking.State)
	}
	entries := instance.mustEntries(test, "walk-racing")
	if !reflect.DeepEqual(entryTypes(entries), []settlement.EntryType{settlement.EntryCharge}) || settlement.SumEntries(entries) != instance.gateway.Moved(sandbox.OperationCharge) {
		test.Fatalf("expected the captured charge on the ledger, got %+v", entries)
	}
	if calls := instance.gateway.Calls(sandbox.OperationRefund); calls != 0 {
		test.Fatalf("expected no refund, got %d calls", calls)
	}
}

func TestCancelAfterDisputeRefundFails(test *testing.T) {
	test.Parallel()
	instance := newHarness(test)
	booking := instance.mustCreateHeld(test, walkRequest("walk-dispute-refund"))
	bookingID := mustBookingID(test, booking.ID)
	if _, err := instance.service.RaiseDispute(context.Background(), customerActor, bookingID, "walker never came"); err != nil {
		test.Fatalf("dispute: %v", err)
	}
	refunded, err := instance.service.ResolveDispute(context.Background(), operatorActor, bookingID, settlement.ResolutionRefund)
	if err != nil {
		test.Fatalf("resolve: %v", err)
	}

	_, err = instance.service.CancelBooking(context.Background(), customerActor, bookingID)
	if !errors.Is(err, settlement.ErrInvalidTransition) {
		test.Fatalf("expected ErrInvalidTransition for a dispute refund, got %v", err)
	}
	if stored := instance.mustGet(test, booking.ID); stored.Version != refunded.Version {
		test.Fatalf("expected version %d, got %d", refunded.Version, stored.Version)
	}
}

func TestDisputeFreezesReleaseUntilOperatorResolves(test *testing.T) {
	test.Parallel()
	instance := newHarness(test)
	booking := instance.mustCreateHeld(test, walkRequest("walk-dispute"))
	bookingID := mustBookingID(test, booking.ID)
	instance.clock.Advance(time.Hour)

	disputed, err := instance.service.RaiseDispute(context.Background(), customerActor, bookingID, "dog came back muddy")
	if err != nil {
		test.Fatalf("dispute: %v", err)
	}
	if disputed.State != settlement.StateDisputed || disputed.HoldExpiresAt != nil || disputed.DisputeReason != "dog came back muddy" {
		test.Fatalf("unexpected disputed booking %+v", disputed)
	}
	if _, armed := instance.scheduler.armedAt(booking.ID); armed {
		test.Fatalf("expected release timer disarmed")
	}

	instance.clock.Advance(100 * time.Hour)
	if _, err := instance.service.ReleaseExpiredHold(context.Background(), bookingID); !errors.Is(err, settlement.ErrInvalidTransition) {
		test.Fatalf("expected frozen release, got %v", err)
	}
	if _, err := instance.service.CancelBooking(context.Background(), customerActor, bookingID); !errors.Is(err, settlement.ErrCancellationWindowClosed) {
		test.Fatalf("expected closed cancellation window, got %v", err)
	}
	if _, err := instance.service.ResolveDispute(context.Background(), customerActor, bookingID, settlement.ResolutionRefund); !errors.Is(err, settlement.ErrForbidden) {
		test.Fatalf("expected ErrForbidden for customer resolution, got %v", err)
	}

	resolved, err := instance.service.ResolveDispute(context.Background(), operatorActor, bookingID, settlement.ResolutionRefund)
	if err != nil {
		test.Fatalf("resolve: %v", err)
	}
	if resolved.State != settlement.StateRefunded {
		test.Fatalf("expected refunded, got %s", resolved.State)
	}
	if sum := settlement.SumEntries(instance.mustEntries(test, booking.ID)); sum != 0 {
		test.Fatalf("expected conserved escrow, got %d", sum)
	}
}

func TestResolveDisputeRelease(test *testing.T) {
	test.Parallel()
	instance := newHarness(test)
	booking := instance.mustCreateHeld(test, walkRequest("walk-dispute-release"))
	bookingID := mustBookingID(test, booking.ID)
	if _, err := instance.service.RaiseDispute(context.Background(), providerActor, bookingID, "customer absent"); err != nil {
		test.Fatalf("dispute: %v", err)
	}

	released, err := instance.service.ResolveDispute(context.Background(), operatorActor, bookingID, settlement.ResolutionRelease)
	if err != nil {
		test.Fatalf("resolve: %v", err)
	}
	if released.State != settlement.StateReleased {
		test.Fatalf("expected released, got %s", released.State)
	}
	if executed := instance.gateway.Executed(sandbox.OperationPayout); executed != 1 {
		test.Fatalf("expected one payout, got %d", executed)
	}
}

func TestDisputeAfterHoldWindowFails(test *testing.T) {
	test.Parallel()
	instance := newHarness(test)
	booking := instance.mustCreateHeld(test, walkRequest("walk-late-dispute"))
	instance.clock.Advance(73 * time.Hour)

	_, err := instance.service.RaiseDispute(context.Background(), customerActor, mustBookingID(test, booking.ID), "too late")
	if !errors.Is(err, settlement.ErrInvalidTransition) {
		test.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestIllegalTransitionsLeaveVersionUnchanged(test *testing.T) {
	test.Parallel()
	instance := newHarness(test)
	booking := instance.mustCreateHeld(test, walkRequest("walk-terminal"))
	bookingID := mustBookingID(test, booking.ID)
	released, err := instance.service.ConfirmCompletion(context.Background(), customerActor, bookingID)
	if err != nil {
		test.Fatalf("confirm: %v", err)
	}

	attempts := map[string]func() error{
		"dispute": func() error {
			_, err := instance.service.RaiseDispute(context.Background(), customerActor, bookingID, "late")
			return err
		},
		"cancel": func() error {
			_, err := instance.service.CancelBooking(context.Background(), customerActor, bookingID)
			return err
		},
		"resolve refund": func() error {
			_, err := instance.service.ResolveDispute(context.Background(), operatorActor, bookingID, settlement.ResolutionRefund)
			return err
		},
		"service end": func() error {
			_, err := instance.service.RecordServiceEnd(context.Background(), providerActor, bookingID, instance.clock.Now())
			return err
		},
	}
	for name, attempt := range attempts {
		if err := attempt(); !errors.Is(err, settlement.ErrInvalidTransition) {
			test.Fatalf("%s: expected ErrInvalidTransition, got %v", name, err)
		}
	}
	if stored := instance.mustGet(test, booking.ID); stored.Version != released.Version || stored.State != settlement.StateReleased {
		test.Fatalf("expected released v%d, got %s v%d", released.Version, stored.State, stored.Version)
	}
}

func TestForbiddenActorsProduceNoStateChange(test *testing.T) {
	test.Parallel()
	instance := newHarness(test)
	booking := instance.mustCreateHeld(test, walkRequest("walk-forbidden"))
	bookingID := mustBookingID(test, booking.ID)

	attempts := map[string]func() error{
		"stranger cancel": func() error {
			_, err := instance.service.CancelBooking(context.Background(), strangerActor, bookingID)
			return err
		},
		"stranger dispute": func() error {
			_, err := instance.service.RaiseDispute(context.Background(), strangerActor, bookingID, "nope")
			return err
		},
		"provider confirm": func() error {
			_, err := instance.service.ConfirmCompletion(context.Background(), providerActor, bookingID)
			return err
		},
		"customer service start": func() error {
			_, err := instance.service.RecordServiceStart(context.Background(), customerActor, bookingID, instance.clock.Now())
			return err
		},
		"stranger status": func() error {
			_, err := instance.service.GetBookingStatus(context.Background(), strangerActor, bookingID)
			return err
		},
		"stranger entries": func() error {
			_, err := instance.service.ListLedgerEntries(context.Background(), strangerActor, bookingID)
			return err
		},
	}
	for name, attempt := range attempts {
		if err := attempt(); !errors.Is(err, settlement.ErrForbidden) {
			test.Fatalf("%s: expected ErrForbidden, got %v", name, err)
		}
	}
	if stored := instance.mustGet(test, booking.ID); stored.Version != booking.Version || stored.State != settlement.StateHeld {
		test.Fatalf("expected untouched held booking, got %s v%d", stored.State, stored.Version)
	}
}

func TestRecordServiceStartClosesCancellation(test *testing.T) {
	test.Parallel()
	instance := newHarness(test)
	booking := instance.mustCreateHeld(test, walkRequest("walk-started"))
	bookingID := mustBookingID(test, booking.ID)

	started, err := instance.service.RecordServiceStart(context.Background(), providerActor, bookingID, instance.clock.Now())
	if err != nil {
		test.Fatalf("record start: %v", err)
	}
	if started.ServiceStart == nil || started.Version != booking.Version+1 {
		test.Fatalf("expected recorded start and bumped version, got %+v", started)
	}
	if _, err := instance.service.RecordServiceEnd(context.Background(), providerActor, bookingID, instance.clock.Now().Add(-time.Minute)); !errors.Is(err, settlement.ErrInvalidRequest) {
		test.Fatalf("expected end before start to fail, got %v", err)
	}
	if _, err := instance.service.CancelBooking(context.Background(), customerActor, bookingID); !errors.Is(err, settlement.ErrCancellationWindowClosed) {
		test.Fatalf("expected ErrCancellationWindowClosed, got %v", err)
	}
}

func TestPayoutFailureKeepsClaimAndResumes(test *testing.T) {
	test.Parallel()
	instance := newHarness(test)
	booking := instance.mustCreateHeld(test, walkRequest("walk-payout-retry"))
	bookingID := mustBookingID(test, booking.ID)
	instance.clock.Advance(72 * time.Hour)
	instance.gateway.FailNext(sandbox.OperationPayout, errors.New("connection reset"))

	_, err := instance.service.ReleaseExpiredHold(context.Background(), bookingID)
	if !errors.Is(err, settlement.ErrGatewayUnavailable) || !settlement.IsTransient(err) {
		test.Fatalf("expected transient gateway failure, got %v", err)
	}
	claimed := instance.mustGet(test, booking.ID)
	if claimed.State != settlement.StateHeld || claimed.Intent != settlement.IntentRelease {
		test.Fatalf("expected held booking with release claimed, got %s/%q", claimed.State, claimed.Intent)
	}
	if _, err := instance.service.CancelBooking(context.Background(), customerActor, bookingID); !errors.Is(err, settlement.ErrCancellationWindowClosed) {
		test.Fatalf("expected cancel to be refused during release, got %v", err)
	}
	if stored := instance.mustGet(test, booking.ID); stored.Version != claimed.Version || stored.Intent != settlement.IntentRelease {
		test.Fatalf("expected refused cancel to leave the claim untouched, got v%d/%q", stored.Version, stored.Intent)
	}

	released, err := instance.service.ReleaseExpiredHold(context.Background(), bookingID)
	if err != nil {
		test.Fatalf("resume release: %v", err)
	}
	if released.State != settlement.StateReleased || released.Intent != settlement.IntentNone {
		test.Fatalf("expected released booking, got %+v", released)
	}
	if executed := instance.gateway.Executed(sandbox.OperationPayout); executed != 1 {
		test.Fatalf("expected one payout, got %d", executed)
	}
}

func TestZeroRateBookingMovesNoMoney(test *testing.T) {
	test.Parallel()
	store := memstore.New()
	gateway := sandbox.New()
	clock := newTestClock()
	service, err := settlement.NewService(store, gateway, clock.Now,
		settlement.WithPolicyTable(mustPolicyTable(test, map[string]int64{"volunteer-1": 0})))
	if err != nil {
		test.Fatalf("service init failed: %v", err)
	}
	request := walkRequest("walk-free")
	request.ProviderID = "volunteer-1"
	booking, err := service.CreateBooking(context.Background(), customerActor, request)
	if err != nil {
		test.Fatalf("create: %v", err)
	}
	if booking.State != settlement.StateHeld || booking.Pricing.TotalCharged != 0 {
		test.Fatalf("expected free held booking, got %+v", booking)
	}
	clock.Advance(72 * time.Hour)
	released, err := service.ReleaseExpiredHold(context.Background(), mustBookingID(test, booking.ID))
	if err != nil || released.State != settlement.StateReleased {
		test.Fatalf("expected release, got %s (%v)", released.State, err)
	}
	if gateway.Calls(sandbox.OperationCharge) != 0 || gateway.Calls(sandbox.OperationPayout) != 0 {
		test.Fatalf("expected no gateway calls for a free booking")
	}
	if count := store.EntryCount(); count != 0 {
		test.Fatalf("expected no entries, got %d", count)
	}
}

func TestListProviderBookings(test *testing.T) {
	test.Parallel()
	instance := newHarness(test)
	held := instance.mustCreateHeld(test, walkRequest("walk-list-1"))
	second := instance.mustCreateHeld(test, walkRequest("walk-list-2"))
	if _, err := instance.service.ConfirmCompletion(context.Background(), customerActor, mustBookingID(test, second.ID)); err != nil {
		test.Fatalf("confirm: %v", err)
	}

	bookings, err := instance.service.ListProviderBookings(context.Background(), providerActor, providerActor.ID, []settlement.State{settlement.StateHeld})
	if err != nil {
		test.Fatalf("list: %v", err)
	}
	if len(bookings) != 1 || bookings[0].ID != held.ID {
		test.Fatalf("expected only the held booking, got %+v", bookings)
	}
	all, err := instance.service.ListProviderBookings(context.Background(), operatorActor, providerActor.ID, nil)
	if err != nil || len(all) != 2 {
		test.Fatalf("expected two bookings for operator, got %d (%v)", len(all), err)
	}
	if _, err := instance.service.ListProviderBookings(context.Background(), customerActor, providerActor.ID, nil); !errors.Is(err, settlement.ErrForbidden) {
		test.Fatalf("expected ErrForbidden, got %v", err)
	}
	heldBookings, err := instance.service.ListHeldBookings(context.Background())
	if err != nil || len(heldBookings) != 1 {
		test.Fatalf("expected one held booking, got %d (%v)", len(heldBookings), err)
	}
}

func TestServiceLogsOperationOutcome(test *testing.T) {
	test.Parallel()
	instance := newHarness(test)
	booking := instance.mustCreateHeld(test, walkRequest("walk-logged"))
	_, _ = instance.service.CancelBooking(context.Background(), strangerActor, mustBookingID(test, booking.ID))

	created, found := instance.logger.find("create_booking")
	if !found || created.Status != "ok" || created.BookingID != booking.ID || created.State != settlement.StateHeld {
		test.Fatalf("unexpected create log %+v", created)
	}
	cancelled, found := instance.logger.find("cancel_booking")
	if !found || cancelled.Status != "error" || !errors.Is(cancelled.Error, settlement.ErrForbidden) {
		test.Fatalf("unexpected cancel log %+v", cancelled)
	}
}
