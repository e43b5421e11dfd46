package notify

import (
	"time"

	"github.com/MarkoPoloResearchLab/settlement/pkg/settlement"
)

// Receipt is the archived summary of a settled booking.
type Receipt struct {
	BookingID          string              `json:"booking_id"`
	Vertical           settlement.Vertical `json:"vertical"`
	ProviderID         string              `json:"provider_id"`
	CustomerID         string              `json:"customer_id"`
	Outcome            settlement.State    `json:"outcome"`
	Currency           string              `json:"currency"`
	TotalCharged       int64               `json:"total_charged"`
	ProviderPayout     int64               `json:"provider_payout"`
	PlatformCommission int64               `json:"platform_commission"`
	PlatformTax        int64               `json:"platform_tax"`
	CustomerRefund     int64               `json:"customer_refund"`
	Version            int64               `json:"version"`
	SettledAt          time.Time           `json:"settled_at"`
}

// NewReceipt derives the money split from a terminal event. The second
// result is false for events that are not terminal.
func NewReceipt(event settlement.BookingEvent) (Receipt, bool) {
	if !event.State.IsTerminal() {
		return Receipt{}, false
	}
	receipt := Receipt{
		BookingID:  event.BookingID,
		Vertical:   event.Vertical,
		ProviderID: event.ProviderID,
		CustomerID: event.CustomerID,
		Outcome:    event.State,
		Currency:   event.Pricing.Currency,
		Version:    event.Version,
		SettledAt:  event.OccurredAt.UTC(),
	}
	switch event.State {
	case settlement.StateReleased:
		receipt.TotalCharged = event.Pricing.TotalCharged
		receipt.ProviderPayout = event.Pricing.BaseAmount
		receipt.PlatformCommission = event.Pricing.CommissionAmount
		receipt.PlatformTax = event.Pricing.TaxAmount
	case settlement.StateRefunded:
		receipt.TotalCharged = event.Pricing.TotalCharged
		receipt.CustomerRefund = event.Pricing.TotalCharged
	}
	return receipt, true
}
