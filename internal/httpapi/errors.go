package httpapi

import (
	"errors"
	"net/http"

	"github.com/MarkoPoloResearchLab/settlement/pkg/pricing"
	"github.com/MarkoPoloResearchLab/settlement/pkg/settlement"
)

type errorClass struct {
	target error
	status int
	code   string
}

var errorClasses = []errorClass{
	{target: settlement.ErrInvalidBookingID, status: http.StatusBadRequest, code: "invalid_booking_id"},
	{target: settlement.ErrInvalidActor, status: http.StatusBadRequest, code: "invalid_actor"},
	{target: settlement.ErrInvalidParty, status: http.StatusBadRequest, code: "invalid_party"},
	{target: settlement.ErrInvalidVertical, status: http.StatusBadRequest, code: "invalid_vertical"},
	{target: settlement.ErrInvalidState, status: http.StatusBadRequest, code: "invalid_state"},
	{target: settlement.ErrInvalidResolution, status: http.StatusBadRequest, code: "invalid_resolution"},
	{target: pricing.ErrInvalidPricingInput, status: http.StatusBadRequest, code: "invalid_pricing_input"},
	{target: settlement.ErrInvalidRequest, status: http.StatusBadRequest, code: "invalid_request"},
	{target: settlement.ErrPaymentDeclined, status: http.StatusPaymentRequired, code: "payment_declined"},
	{target: settlement.ErrForbidden, status: http.StatusForbidden, code: "forbidden"},
	{target: settlement.ErrUnknownBooking, status: http.StatusNotFound, code: "unknown_booking"},
	{target: settlement.ErrDuplicateBooking, status: http.StatusConflict, code: "duplicate_booking"},
	{target: settlement.ErrInvalidTransition, status: http.StatusConflict, code: "invalid_transition"},
	{target: settlement.ErrCancellationWindowClosed, status: http.StatusConflict, code: "cancellation_window_closed"},
	{target: settlement.ErrHoldActive, status: http.StatusConflict, code: "hold_active"},
	{target: settlement.ErrConflict, status: http.StatusConflict, code: "conflict"},
	{target: settlement.ErrExternalServiceTimeout, status: http.StatusGatewayTimeout, code: "external_service_timeout"},
	{target: settlement.ErrGatewayUnavailable, status: http.StatusBadGateway, code: "gateway_unavailable"},
	{target: settlement.ErrLedgerUnavailable, status: http.StatusServiceUnavailable, code: "ledger_unavailable"},
}

// classifyError maps a service error to an HTTP status and a stable code.
func classifyError(err error) (int, string) {
	for _, class := range errorClasses {
		if errors.Is(err, class.target) {
			return class.status, class.code
		}
	}
	return http.StatusInternalServerError, "internal"
}
