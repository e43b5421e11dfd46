package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Ledger is the durable record of bookings and their money movements.
// Every write is a compare-and-swap on the booking version.
type Ledger struct {
	store Store
	nowFn func() time.Time
}

// NewLedger wires a Ledger over a Store.
func NewLedger(store Store, now func() time.Time) (*Ledger, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store dependency is nil", ErrInvalidServiceConfig)
	}
	if now == nil {
		return nil, fmt.Errorf("%w: clock dependency is nil", ErrInvalidServiceConfig)
	}
	return &Ledger{store: store, nowFn: now}, nil
}

// Create persists a new booking in pending_payment at version 1.
func (ledger *Ledger) Create(ctx context.Context, booking Booking) (Booking, error) {
	if _, err := NewBookingID(booking.ID); err != nil {
		return Booking{}, WrapError("ledger", "booking", "invalid_id", err)
	}
	if err := booking.Pricing.Verify(); err != nil {
		return Booking{}, WrapError("ledger", "pricing", "invalid", err)
	}
	nowUTC := ledger.nowFn().UTC()
	booking.State = StatePendingPayment
	booking.Version = 1
	booking.HoldExpiresAt = nil
	booking.Intent = IntentNone
	booking.CreatedAt = nowUTC
	booking.UpdatedAt = nowUTC
	if err := ledger.store.InsertBooking(ctx, booking); err != nil {
		return Booking{}, err
	}
	return booking, nil
}

// Transition moves a booking to target when its stored version equals
// expectedVersion, appending entries in the same transaction. Terminal
// bookings are immutable and always conflict.
func (ledger *Ledger) Transition(ctx context.Context, bookingID string, expectedVersion int64, target State, fields TransitionFields, entries []LedgerEntry) (Booking, error) {
	var updated Booking
	err := ledger.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		current, err := transactionStore.GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if current.State.IsTerminal() {
			return WrapError("ledger", "booking", "terminal", ErrConflict)
		}
		if current.Version != expectedVersion {
			return WrapError("ledger", "booking", "stale_version", ErrConflict)
		}
		nowUTC := ledger.nowFn().UTC()
		next := current
		fields.apply(&next)
		next.State = target
		if target.IsTerminal() {
			next.HoldExpiresAt = nil
			next.Intent = IntentNone
		}
		next.Version = current.Version + 1
		next.UpdatedAt = nowUTC
		if err := transactionStore.UpdateBooking(ctx, next, expectedVersion); err != nil {
			return err
		}
		for _, entry := range entries {
			if entry.Amount == 0 {
				continue
			}
			entry.BookingID = bookingID
			if entry.EntryID == "" {
				entry.EntryID = uuid.NewString()
			}
			if entry.IdempotencyKey == "" {
				entry.IdempotencyKey = entryIdempotencyKey(bookingID, entry.Type)
			}
			if entry.MetadataJSON == "" {
				entry.MetadataJSON = "{}"
			}
			entry.CreatedAt = nowUTC
			if err := transactionStore.InsertEntry(ctx, entry); err != nil {
				return err
			}
		}
		updated = next
		return nil
	})
	if err != nil {
		return Booking{}, err
	}
	return updated, nil
}

// Get returns the booking or ErrUnknownBooking.
func (ledger *Ledger) Get(ctx context.Context, bookingID string) (Booking, error) {
	return ledger.store.GetBooking(ctx, bookingID)
}

// ListByProvider returns a provider's bookings, optionally narrowed to states.
func (ledger *Ledger) ListByProvider(ctx context.Context, providerID string, states []State) ([]Booking, error) {
	if providerID == "" {
		return nil, fmt.Errorf("%w: provider id is empty", ErrInvalidParty)
	}
	return ledger.store.ListBookings(ctx, BookingFilter{ProviderID: providerID, States: states})
}

// ListHeld returns every booking currently in escrow.
func (ledger *Ledger) ListHeld(ctx context.Context) ([]Booking, error) {
	return ledger.store.ListBookings(ctx, BookingFilter{States: []State{StateHeld}})
}

// ListEntries returns the booking's entries in insertion order.
func (ledger *Ledger) ListEntries(ctx context.Context, bookingID string) ([]LedgerEntry, error) {
	if _, err := ledger.store.GetBooking(ctx, bookingID); err != nil {
		return nil, err
	}
	return ledger.store.ListEntries(ctx, bookingID)
}

func isConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
