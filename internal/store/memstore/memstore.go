// Package memstore keeps bookings in process memory. It backs tests and the
// "memory" driver of settlementd; data does not survive a restart.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/MarkoPoloResearchLab/settlement/pkg/settlement"
)

type snapshot struct {
	bookings   map[string]settlement.Booking
	order      []string
	entries    map[string][]settlement.LedgerEntry
	entryKeys  map[string]struct{}
	entryCount int
}

func newSnapshot() *snapshot {
	return &snapshot{
		bookings:  make(map[string]settlement.Booking),
		entries:   make(map[string][]settlement.LedgerEntry),
		entryKeys: make(map[string]struct{}),
	}
}

func (current *snapshot) clone() *snapshot {
	copied := &snapshot{
		bookings:   make(map[string]settlement.Booking, len(current.bookings)),
		order:      append([]string(nil), current.order...),
		entries:    make(map[string][]settlement.LedgerEntry, len(current.entries)),
		entryKeys:  make(map[string]struct{}, len(current.entryKeys)),
		entryCount: current.entryCount,
	}
	for bookingID, booking := range current.bookings {
		copied.bookings[bookingID] = booking
	}
	for bookingID, entries := range current.entries {
		copied.entries[bookingID] = append([]settlement.LedgerEntry(nil), entries...)
	}
	for key := range current.entryKeys {
		copied.entryKeys[key] = struct{}{}
	}
	return copied
}

// Store implements settlement.Store. Transactions stage writes on a copy and
// swap it in on success, serialized by a single mutex.
type Store struct {
	mutex *sync.Mutex
	root  **snapshot
	data  *snapshot
	inTx  bool
}

// New constructs an empty Store.
func New() *Store {
	data := newSnapshot()
	return &Store{mutex: &sync.Mutex{}, root: &data, data: data}
}

func (store *Store) lock() func() {
	if store.inTx {
		return func() {}
	}
	store.mutex.Lock()
	return store.mutex.Unlock
}

func (store *Store) current() *snapshot {
	if store.inTx {
		return store.data
	}
	return *store.root
}

// WithTx runs fn against a staged copy committed only when fn succeeds.
func (store *Store) WithTx(ctx context.Context, fn func(ctx context.Context, txStore settlement.Store) error) error {
	if store.inTx {
		return fn(ctx, store)
	}
	store.mutex.Lock()
	defer store.mutex.Unlock()
	staged := (*store.root).clone()
	transactionStore := &Store{mutex: store.mutex, root: store.root, data: staged, inTx: true}
	if err := fn(ctx, transactionStore); err != nil {
		return err
	}
	*store.root = staged
	return nil
}

// InsertBooking stores a new booking.
func (store *Store) InsertBooking(ctx context.Context, booking settlement.Booking) error {
	unlock := store.lock()
	defer unlock()
	data := store.current()
	if _, exists := data.bookings[booking.ID]; exists {
		return settlement.WrapError("store", "booking", "duplicate", settlement.ErrDuplicateBooking)
	}
	data.bookings[booking.ID] = booking
	data.order = append(data.order, booking.ID)
	return nil
}

// GetBooking loads a booking by id.
func (store *Store) GetBooking(ctx context.Context, bookingID string) (settlement.Booking, error) {
	unlock := store.lock()
	defer unlock()
	booking, ok := store.current().bookings[bookingID]
	if !ok {
		return settlement.Booking{}, settlement.WrapError("store", "booking", "not_found", fmt.Errorf("%w: %s", settlement.ErrUnknownBooking, bookingID))
	}
	return booking, nil
}

// UpdateBooking replaces a booking when its stored version matches.
func (store *Store) UpdateBooking(ctx context.Context, booking settlement.Booking, expectedVersion int64) error {
	unlock := store.lock()
	defer unlock()
	data := store.current()
	existing, ok := data.bookings[booking.ID]
	if !ok {
		return settlement.WrapError("store", "booking", "not_found", settlement.ErrUnknownBooking)
	}
	if existing.Version != expectedVersion {
		return settlement.WrapError("store", "booking", "version_mismatch", settlement.ErrConflict)
	}
	data.bookings[booking.ID] = booking
	return nil
}

// InsertEntry appends a ledger entry, rejecting a repeated idempotency key.
func (store *Store) InsertEntry(ctx context.Context, entry settlement.LedgerEntry) error {
	unlock := store.lock()
	defer unlock()
	data := store.current()
	uniqueKey := entry.BookingID + "|" + entry.IdempotencyKey
	if _, exists := data.entryKeys[uniqueKey]; exists {
		return settlement.WrapError("store", "entry", "duplicate", settlement.ErrDuplicateEntry)
	}
	data.entryKeys[uniqueKey] = struct{}{}
	data.entries[entry.BookingID] = append(data.entries[entry.BookingID], entry)
	data.entryCount++
	return nil
}

// ListBookings returns bookings matching filter in creation order.
func (store *Store) ListBookings(ctx context.Context, filter settlement.BookingFilter) ([]settlement.Booking, error) {
	unlock := store.lock()
	defer unlock()
	data := store.current()
	var bookings []settlement.Booking
	for _, bookingID := range data.order {
		booking := data.bookings[bookingID]
		if !filter.Matches(booking) {
			continue
		}
		bookings = append(bookings, booking)
		if filter.Limit > 0 && len(bookings) == filter.Limit {
			break
		}
	}
	sort.SliceStable(bookings, func(left, right int) bool {
		return bookings[left].CreatedAt.Before(bookings[right].CreatedAt)
	})
	return bookings, nil
}

// ListEntries returns a booking's entries in insertion order.
func (store *Store) ListEntries(ctx context.Context, bookingID string) ([]settlement.LedgerEntry, error) {
	unlock := store.lock()
	defer unlock()
	return append([]settlement.LedgerEntry(nil), store.current().entries[bookingID]...), nil
}

// EntryCount returns how many entries have been committed across all bookings.
func (store *Store) EntryCount() int {
	unlock := store.lock()
	defer unlock()
	return store.current().entryCount
}
