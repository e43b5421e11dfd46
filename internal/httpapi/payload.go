package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MarkoPoloResearchLab/settlement/pkg/pricing"
	"github.com/MarkoPoloResearchLab/settlement/pkg/settlement"
)

type createBookingRequest struct {
	Vertical       string     `json:"vertical"`
	ProviderID     string     `json:"provider_id"`
	CustomerID     string     `json:"customer_id"`
	Units          string     `json:"units"`
	IdempotencyKey string     `json:"idempotency_key"`
	ScheduledStart *time.Time `json:"scheduled_start"`
	AdvisoryTotal  *int64     `json:"advisory_total"`
}

// toServiceRequest prefers the Idempotency-Key header over the body field.
func (request createBookingRequest) toServiceRequest(headerKey string) (settlement.CreateBookingRequest, error) {
	if strings.TrimSpace(request.Units) == "" {
		return settlement.CreateBookingRequest{}, errors.New("units is required")
	}
	units, err := decimal.NewFromString(strings.TrimSpace(request.Units))
	if err != nil {
		return settlement.CreateBookingRequest{}, fmt.Errorf("units: %w", err)
	}
	idempotencyKey := strings.TrimSpace(headerKey)
	if idempotencyKey == "" {
		idempotencyKey = request.IdempotencyKey
	}
	return settlement.CreateBookingRequest{
		Vertical:       settlement.Vertical(request.Vertical),
		ProviderID:     request.ProviderID,
		CustomerID:     request.CustomerID,
		Units:          units,
		IdempotencyKey: idempotencyKey,
		ScheduledStart: request.ScheduledStart,
		AdvisoryTotal:  request.AdvisoryTotal,
	}, nil
}

type disputeRequest struct {
	Reason string `json:"reason"`
}

type resolveRequest struct {
	Resolution string `json:"resolution"`
}

type serviceTimeRequest struct {
	At *time.Time `json:"at"`
}

type bookingPayload struct {
	BookingID        string          `json:"booking_id"`
	Vertical         string          `json:"vertical"`
	ProviderID       string          `json:"provider_id"`
	CustomerID       string          `json:"customer_id"`
	State            string          `json:"state"`
	Pricing          pricing.Pricing `json:"pricing"`
	ServiceStart     *time.Time      `json:"service_start,omitempty"`
	ServiceEnd       *time.Time      `json:"service_end,omitempty"`
	HoldExpiresAt    *time.Time      `json:"hold_expires_at,omitempty"`
	ExternalChargeID string          `json:"external_charge_id,omitempty"`
	DisputeReason    string          `json:"dispute_reason,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Version          int64           `json:"version"`
}

func newBookingPayload(booking settlement.Booking) bookingPayload {
	return bookingPayload{
		BookingID:        booking.ID,
		Vertical:         string(booking.Vertical),
		ProviderID:       booking.ProviderID,
		CustomerID:       booking.CustomerID,
		State:            string(booking.State),
		Pricing:          booking.Pricing,
		ServiceStart:     booking.ServiceStart,
		ServiceEnd:       booking.ServiceEnd,
		HoldExpiresAt:    booking.HoldExpiresAt,
		ExternalChargeID: booking.ExternalChargeID,
		DisputeReason:    booking.DisputeReason,
		CreatedAt:        booking.CreatedAt,
		UpdatedAt:        booking.UpdatedAt,
		Version:          booking.Version,
	}
}

type entryPayload struct {
	EntryID        string          `json:"entry_id"`
	Type           string          `json:"type"`
	Amount         int64           `json:"amount"`
	CounterpartyID string          `json:"counterparty_id"`
	IdempotencyKey string          `json:"idempotency_key"`
	Metadata       json.RawMessage `json:"metadata"`
	CreatedAt      time.Time       `json:"created_at"`
}

func newEntryPayload(entry settlement.LedgerEntry) entryPayload {
	metadata := entry.MetadataJSON
	if !json.Valid([]byte(metadata)) {
		metadata = "{}"
	}
	return entryPayload{
		EntryID:        entry.EntryID,
		Type:           string(entry.Type),
		Amount:         entry.Amount,
		CounterpartyID: entry.CounterpartyID,
		IdempotencyKey: entry.IdempotencyKey,
		Metadata:       json.RawMessage(metadata),
		CreatedAt:      entry.CreatedAt,
	}
}
