package grpcserver

import (
	"time"

	settlementv1 "github.com/MarkoPoloResearchLab/settlement/api/settlement/v1"
	"github.com/MarkoPoloResearchLab/settlement/pkg/pricing"
	"github.com/MarkoPoloResearchLab/settlement/pkg/settlement"
)

func newBookingMessage(booking settlement.Booking) *settlementv1.Booking {
	return &settlementv1.Booking{
		BookingId:            booking.ID,
		Vertical:             string(booking.Vertical),
		ProviderId:           booking.ProviderID,
		CustomerId:           booking.CustomerID,
		State:                string(booking.State),
		Pricing:              newPricingMessage(booking.Pricing),
		ServiceStartUnixUtc:  unixOrZero(booking.ServiceStart),
		ServiceEndUnixUtc:    unixOrZero(booking.ServiceEnd),
		HoldExpiresAtUnixUtc: unixOrZero(booking.HoldExpiresAt),
		ExternalChargeId:     booking.ExternalChargeID,
		DisputeReason:        booking.DisputeReason,
		CreatedUnixUtc:       booking.CreatedAt.UTC().Unix(),
		UpdatedUnixUtc:       booking.UpdatedAt.UTC().Unix(),
		Version:              booking.Version,
	}
}

func newPricingMessage(value pricing.Pricing) *settlementv1.Pricing {
	return &settlementv1.Pricing{
		BaseRatePerUnit:  value.BaseRatePerUnit,
		Units:            value.Units,
		BaseAmount:       value.BaseAmount,
		CommissionRate:   value.CommissionRate,
		CommissionAmount: value.CommissionAmount,
		TaxRate:          value.TaxRate,
		TaxAmount:        value.TaxAmount,
		TotalCharged:     value.TotalCharged,
		Currency:         value.Currency,
	}
}

func newEntryMessage(entry settlement.LedgerEntry) *settlementv1.Entry {
	return &settlementv1.Entry{
		EntryId:        entry.EntryID,
		Type:           string(entry.Type),
		Amount:         entry.Amount,
		CounterpartyId: entry.CounterpartyID,
		IdempotencyKey: entry.IdempotencyKey,
		MetadataJson:   entry.MetadataJSON,
		CreatedUnixUtc: entry.CreatedAt.UTC().Unix(),
	}
}

func unixOrZero(value *time.Time) int64 {
	if value == nil {
		return 0
	}
	return value.UTC().Unix()
}
