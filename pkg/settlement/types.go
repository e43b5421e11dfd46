package settlement

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MarkoPoloResearchLab/settlement/pkg/pricing"
)

// BookingID identifies a booking. It doubles as the creation idempotency key.
type BookingID struct {
	value string
}

// NewBookingID validates and normalizes a booking id.
func NewBookingID(raw string) (BookingID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return BookingID{}, fmt.Errorf("%w: empty value", ErrInvalidBookingID)
	}
	if len(trimmed) > maxBookingIDLength {
		return BookingID{}, fmt.Errorf("%w: longer than %d characters", ErrInvalidBookingID, maxBookingIDLength)
	}
	if strings.Contains(trimmed, idempotencyKeyDelimiter) {
		return BookingID{}, fmt.Errorf("%w: must not contain %q", ErrInvalidBookingID, idempotencyKeyDelimiter)
	}
	return BookingID{value: trimmed}, nil
}

// GenerateBookingID returns a random id for requests without an idempotency key.
func GenerateBookingID() BookingID {
	return BookingID{value: uuid.NewString()}
}

// String returns the normalized identifier.
func (id BookingID) String() string {
	return id.value
}

// Vertical is a marketplace service category.
type Vertical string

const (
	VerticalTraining  Vertical = "training"
	VerticalWalk      Vertical = "walk"
	VerticalSitting   Vertical = "sitting"
	VerticalTransport Vertical = "transport"
	VerticalWash      Vertical = "wash"
)

// Verticals lists every supported vertical.
func Verticals() []Vertical {
	return []Vertical{VerticalTraining, VerticalWalk, VerticalSitting, VerticalTransport, VerticalWash}
}

// ParseVertical validates a vertical name.
func ParseVertical(raw string) (Vertical, error) {
	normalized := Vertical(strings.ToLower(strings.TrimSpace(raw)))
	for _, vertical := range Verticals() {
		if vertical == normalized {
			return vertical, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidVertical, raw)
}

// State defines the booking lifecycle.
type State string

const (
	StatePendingPayment State = "pending_payment"
	StateHeld           State = "held"
	StateReleased       State = "released"
	StateRefunded       State = "refunded"
	StateDisputed       State = "disputed"
	StateCancelled      State = "cancelled"
)

// States lists every booking state.
func States() []State {
	return []State{StatePendingPayment, StateHeld, StateReleased, StateRefunded, StateDisputed, StateCancelled}
}

// ParseState validates a state name.
func ParseState(raw string) (State, error) {
	normalized := State(strings.ToLower(strings.TrimSpace(raw)))
	for _, state := range States() {
		if state == normalized {
			return state, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidState, raw)
}

// IsTerminal reports whether the state is final.
func (state State) IsTerminal() bool {
	return state == StateReleased || state == StateRefunded || state == StateCancelled
}

// SettlementIntent marks a money movement that has been claimed but not yet recorded.
type SettlementIntent string

const (
	IntentNone    SettlementIntent = ""
	IntentCharge  SettlementIntent = "charge"
	IntentRelease SettlementIntent = "release"
	IntentRefund  SettlementIntent = "refund"
)

// Resolution is the operator outcome for a disputed booking.
type Resolution string

const (
	ResolutionRelease Resolution = "release"
	ResolutionRefund  Resolution = "refund"
)

// ParseResolution validates a dispute outcome.
func ParseResolution(raw string) (Resolution, error) {
	switch Resolution(strings.ToLower(strings.TrimSpace(raw))) {
	case ResolutionRelease:
		return ResolutionRelease, nil
	case ResolutionRefund:
		return ResolutionRefund, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidResolution, raw)
	}
}

// EntryType enumerates ledger entry kinds.
type EntryType string

const (
	EntryCharge     EntryType = "charge"
	EntryCommission EntryType = "commission"
	EntryTax        EntryType = "tax"
	EntryPayout     EntryType = "payout"
	EntryRefund     EntryType = "refund"
)

// Booking is the persisted escrow record.
type Booking struct {
	ID               string
	Vertical         Vertical
	ProviderID       string
	CustomerID       string
	Pricing          pricing.Pricing
	State            State
	ServiceStart     *time.Time
	ServiceEnd       *time.Time
	HoldExpiresAt    *time.Time
	ExternalChargeID string
	DisputeReason    string
	Intent           SettlementIntent
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Version          int64
}

// IsParty reports whether the actor id is the booking's customer or provider.
func (booking Booking) IsParty(actorID string) bool {
	return actorID == booking.CustomerID || actorID == booking.ProviderID
}

// LedgerEntry is a single immutable money movement against a booking.
type LedgerEntry struct {
	EntryID        string
	BookingID      string
	Type           EntryType
	Amount         int64
	CounterpartyID string
	IdempotencyKey string
	MetadataJSON   string
	CreatedAt      time.Time
}

// SumEntries returns the signed total of entries.
func SumEntries(entries []LedgerEntry) int64 {
	var total int64
	for _, entry := range entries {
		total += entry.Amount
	}
	return total
}

// TransitionFields lists the booking attributes a ledger write may change.
// Nil pointers and empty strings leave the stored value untouched.
type TransitionFields struct {
	HoldExpiresAt      *time.Time
	ClearHoldExpiresAt bool
	ExternalChargeID   string
	DisputeReason      string
	ServiceStart       *time.Time
	ServiceEnd         *time.Time
	Intent             *SettlementIntent
}

func (fields TransitionFields) apply(booking *Booking) {
	if fields.ClearHoldExpiresAt {
		booking.HoldExpiresAt = nil
	}
	if fields.HoldExpiresAt != nil {
		holdExpiresAt := fields.HoldExpiresAt.UTC()
		booking.HoldExpiresAt = &holdExpiresAt
	}
	if fields.ExternalChargeID != "" {
		booking.ExternalChargeID = fields.ExternalChargeID
	}
	if fields.DisputeReason != "" {
		booking.DisputeReason = fields.DisputeReason
	}
	if fields.ServiceStart != nil {
		serviceStart := fields.ServiceStart.UTC()
		booking.ServiceStart = &serviceStart
	}
	if fields.ServiceEnd != nil {
		serviceEnd := fields.ServiceEnd.UTC()
		booking.ServiceEnd = &serviceEnd
	}
	if fields.Intent != nil {
		booking.Intent = *fields.Intent
	}
}

func intentPointer(intent SettlementIntent) *SettlementIntent {
	return &intent
}

// BookingFilter narrows ListBookings results. Empty fields match everything.
type BookingFilter struct {
	ProviderID string
	States     []State
	Limit      int
}

// Matches reports whether a booking satisfies the filter.
func (filter BookingFilter) Matches(booking Booking) bool {
	if filter.ProviderID != "" && booking.ProviderID != filter.ProviderID {
		return false
	}
	if len(filter.States) == 0 {
		return true
	}
	for _, state := range filter.States {
		if booking.State == state {
			return true
		}
	}
	return false
}

// StateStrings returns the filter states as plain strings.
func (filter BookingFilter) StateStrings() []string {
	values := make([]string, 0, len(filter.States))
	for _, state := range filter.States {
		values = append(values, string(state))
	}
	return values
}

// Actor is the authenticated caller of a Settlement API operation.
type Actor struct {
	ID       string
	Operator bool
}

// NewActor validates the caller identity.
func NewActor(id string, operator bool) (Actor, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return Actor{}, fmt.Errorf("%w: empty id", ErrInvalidActor)
	}
	return Actor{ID: trimmed, Operator: operator}, nil
}

// Store is the persistence contract used by Ledger.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, txStore Store) error) error
	InsertBooking(ctx context.Context, booking Booking) error
	GetBooking(ctx context.Context, bookingID string) (Booking, error)
	UpdateBooking(ctx context.Context, booking Booking, expectedVersion int64) error
	InsertEntry(ctx context.Context, entry LedgerEntry) error
	ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error)
	ListEntries(ctx context.Context, bookingID string) ([]LedgerEntry, error)
}

func entryIdempotencyKey(bookingID string, entryType EntryType) string {
	return bookingID + idempotencyKeyDelimiter + string(entryType)
}

func externalToken(bookingID string, suffix string) string {
	return bookingID + idempotencyKeyDelimiter + suffix
}

// encodeMetadata relies on encoding/json sorting map keys.
func encodeMetadata(values map[string]string) string {
	if len(values) == 0 {
		return "{}"
	}
	encoded, err := json.Marshal(values)
	if err != nil {
		return "{}"
	}
	return string(encoded)
}
