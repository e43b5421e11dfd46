package settlement

import (
	"context"
	"time"

	"github.com/MarkoPoloResearchLab/settlement/pkg/pricing"
)

// PaymentGateway moves money in and out of escrow. Every call is keyed by an
// idempotency token derived from the booking id so retries never duplicate.
type PaymentGateway interface {
	Charge(ctx context.Context, request ChargeRequest) (ChargeResult, error)
	Payout(ctx context.Context, request PayoutRequest) (PayoutResult, error)
	Refund(ctx context.Context, request RefundRequest) (RefundResult, error)
}

// ChargeRequest captures funds from the customer into escrow.
type ChargeRequest struct {
	BookingID        string
	CustomerID       string
	Amount           int64
	Currency         string
	IdempotencyToken string
	Metadata         map[string]string
}

// ChargeResult identifies the captured charge.
type ChargeResult struct {
	ExternalChargeID string
}

// PayoutRequest transfers the provider's share out of escrow.
type PayoutRequest struct {
	BookingID        string
	ProviderID       string
	Amount           int64
	Currency         string
	IdempotencyToken string
	Metadata         map[string]string
}

// PayoutResult identifies the transfer.
type PayoutResult struct {
	ExternalPayoutID string
}

// RefundRequest returns held funds to the customer.
type RefundRequest struct {
	BookingID        string
	CustomerID       string
	ExternalChargeID string
	Amount           int64
	Currency         string
	IdempotencyToken string
	Metadata         map[string]string
}

// RefundResult identifies the refund.
type RefundResult struct {
	ExternalRefundID string
}

// Notifier publishes booking events. Implementations must not block the caller.
type Notifier interface {
	Notify(ctx context.Context, event BookingEvent)
}

// BookingEvent describes a committed state change.
type BookingEvent struct {
	BookingID     string          `json:"booking_id"`
	Vertical      Vertical        `json:"vertical"`
	ProviderID    string          `json:"provider_id"`
	CustomerID    string          `json:"customer_id"`
	PreviousState State           `json:"previous_state"`
	State         State           `json:"state"`
	Pricing       pricing.Pricing `json:"pricing"`
	HoldExpiresAt *time.Time      `json:"hold_expires_at,omitempty"`
	DisputeReason string          `json:"dispute_reason,omitempty"`
	Version       int64           `json:"version"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// NewBookingEvent builds the event for a committed transition.
func NewBookingEvent(previous State, booking Booking, occurredAt time.Time) BookingEvent {
	return BookingEvent{
		BookingID:     booking.ID,
		Vertical:      booking.Vertical,
		ProviderID:    booking.ProviderID,
		CustomerID:    booking.CustomerID,
		PreviousState: previous,
		State:         booking.State,
		Pricing:       booking.Pricing,
		HoldExpiresAt: booking.HoldExpiresAt,
		DisputeReason: booking.DisputeReason,
		Version:       booking.Version,
		OccurredAt:    occurredAt.UTC(),
	}
}

// ReleaseScheduler arms and disarms automatic release timers.
type ReleaseScheduler interface {
	Arm(bookingID string, fireAt time.Time)
	Disarm(bookingID string)
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, BookingEvent) {}

type noopScheduler struct{}

func (noopScheduler) Arm(string, time.Time) {}

func (noopScheduler) Disarm(string) {}
