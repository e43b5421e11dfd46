package mongostore

import (
	"time"

	"github.com/MarkoPoloResearchLab/settlement/pkg/pricing"
	"github.com/MarkoPoloResearchLab/settlement/pkg/settlement"
)

type bookingDocument struct {
	ID               string          `bson:"_id"`
	Vertical         string          `bson:"vertical"`
	ProviderID       string          `bson:"provider_id"`
	CustomerID       string          `bson:"customer_id"`
	State            string          `bson:"state"`
	Pricing          pricingDocument `bson:"pricing"`
	ServiceStart     *int64          `bson:"service_start,omitempty"`
	ServiceEnd       *int64          `bson:"service_end,omitempty"`
	HoldExpiresAt    *int64          `bson:"hold_expires_at,omitempty"`
	ExternalChargeID string          `bson:"external_charge_id"`
	DisputeReason    string          `bson:"dispute_reason"`
	Intent           string          `bson:"intent"`
	Version          int64           `bson:"version"`
	CreatedAt        int64           `bson:"created_at"`
	UpdatedAt        int64           `bson:"updated_at"`
	Entries          []entryDocument `bson:"entries"`
}

type pricingDocument struct {
	BaseRatePerUnit  int64  `bson:"base_rate_per_unit"`
	Units            string `bson:"units"`
	BaseAmount       int64  `bson:"base_amount"`
	CommissionRate   string `bson:"commission_rate"`
	CommissionAmount int64  `bson:"commission_amount"`
	TaxRate          string `bson:"tax_rate"`
	TaxAmount        int64  `bson:"tax_amount"`
	TotalCharged     int64  `bson:"total_charged"`
	Currency         string `bson:"currency"`
}

type entryDocument struct {
	EntryID        string `bson:"entry_id"`
	Type           string `bson:"type"`
	Amount         int64  `bson:"amount"`
	CounterpartyID string `bson:"counterparty_id"`
	IdempotencyKey string `bson:"idempotency_key"`
	Metadata       string `bson:"metadata"`
	CreatedAt      int64  `bson:"created_at"`
}

func newBookingDocument(booking settlement.Booking) bookingDocument {
	return bookingDocument{
		ID:               booking.ID,
		Vertical:         string(booking.Vertical),
		ProviderID:       booking.ProviderID,
		CustomerID:       booking.CustomerID,
		State:            string(booking.State),
		Pricing:          newPricingDocument(booking.Pricing),
		ServiceStart:     timeToNanos(booking.ServiceStart),
		ServiceEnd:       timeToNanos(booking.ServiceEnd),
		HoldExpiresAt:    timeToNanos(booking.HoldExpiresAt),
		ExternalChargeID: booking.ExternalChargeID,
		DisputeReason:    booking.DisputeReason,
		Intent:           string(booking.Intent),
		Version:          booking.Version,
		CreatedAt:        booking.CreatedAt.UnixNano(),
		UpdatedAt:        booking.UpdatedAt.UnixNano(),
		Entries:          []entryDocument{},
	}
}

func (document bookingDocument) toBooking() (settlement.Booking, error) {
	vertical, err := settlement.ParseVertical(document.Vertical)
	if err != nil {
		return settlement.Booking{}, err
	}
	state, err := settlement.ParseState(document.State)
	if err != nil {
		return settlement.Booking{}, err
	}
	return settlement.Booking{
		ID:               document.ID,
		Vertical:         vertical,
		ProviderID:       document.ProviderID,
		CustomerID:       document.CustomerID,
		Pricing:          document.Pricing.toPricing(),
		State:            state,
		ServiceStart:     nanosToTime(document.ServiceStart),
		ServiceEnd:       nanosToTime(document.ServiceEnd),
		HoldExpiresAt:    nanosToTime(document.HoldExpiresAt),
		ExternalChargeID: document.ExternalChargeID,
		DisputeReason:    document.DisputeReason,
		Intent:           settlement.SettlementIntent(document.Intent),
		CreatedAt:        time.Unix(0, document.CreatedAt).UTC(),
		UpdatedAt:        time.Unix(0, document.UpdatedAt).UTC(),
		Version:          document.Version,
	}, nil
}

func (document bookingDocument) ledgerEntries() []settlement.LedgerEntry {
	entries := make([]settlement.LedgerEntry, 0, len(document.Entries))
	for _, entry := range document.Entries {
		entries = append(entries, entry.toLedgerEntry(document.ID))
	}
	return entries
}

func (document bookingDocument) hasEntryKey(idempotencyKey string) bool {
	for _, entry := range document.Entries {
		if entry.IdempotencyKey == idempotencyKey {
			return true
		}
	}
	return false
}

func newPricingDocument(quoted pricing.Pricing) pricingDocument {
	return pricingDocument{
		BaseRatePerUnit:  quoted.BaseRatePerUnit,
		Units:            quoted.Units,
		BaseAmount:       quoted.BaseAmount,
		CommissionRate:   quoted.CommissionRate,
		CommissionAmount: quoted.CommissionAmount,
		TaxRate:          quoted.TaxRate,
		TaxAmount:        quoted.TaxAmount,
		TotalCharged:     quoted.TotalCharged,
		Currency:         quoted.Currency,
	}
}

func (document pricingDocument) toPricing() pricing.Pricing {
	return pricing.Pricing{
		BaseRatePerUnit:  document.BaseRatePerUnit,
		Units:            document.Units,
		BaseAmount:       document.BaseAmount,
		CommissionRate:   document.CommissionRate,
		CommissionAmount: document.CommissionAmount,
		TaxRate:          document.TaxRate,
		TaxAmount:        document.TaxAmount,
		TotalCharged:     document.TotalCharged,
		Currency:         document.Currency,
	}
}

func newEntryDocument(entry settlement.LedgerEntry) entryDocument {
	metadata := entry.MetadataJSON
	if metadata == "" {
		metadata = defaultMetadataJSON
	}
	return entryDocument{
		EntryID:        entry.EntryID,
		Type:           string(entry.Type),
		Amount:         entry.Amount,
		CounterpartyID: entry.CounterpartyID,
		IdempotencyKey: entry.IdempotencyKey,
		Metadata:       metadata,
		CreatedAt:      entry.CreatedAt.UnixNano(),
	}
}

func (document entryDocument) toLedgerEntry(bookingID string) settlement.LedgerEntry {
	return settlement.LedgerEntry{
		EntryID:        document.EntryID,
		BookingID:      bookingID,
		Type:           settlement.EntryType(document.Type),
		Amount:         document.Amount,
		CounterpartyID: document.CounterpartyID,
		IdempotencyKey: document.IdempotencyKey,
		MetadataJSON:   document.Metadata,
		CreatedAt:      time.Unix(0, document.CreatedAt).UTC(),
	}
}

func timeToNanos(value *time.Time) *int64 {
	if value == nil {
		return nil
	}
	nanos := value.UnixNano()
	return &nanos
}

func nanosToTime(value *int64) *time.Time {
	if value == nil {
		return nil
	}
	converted := time.Unix(0, *value).UTC()
	return &converted
}
