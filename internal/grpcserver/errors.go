package grpcserver

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/MarkoPoloResearchLab/settlement/pkg/pricing"
	"github.com/MarkoPoloResearchLab/settlement/pkg/settlement"
)

const (
	errorInvalidBookingID         = "invalid_booking_id"
	errorInvalidActor             = "invalid_actor"
	errorInvalidParty             = "invalid_party"
	errorInvalidVertical          = "invalid_vertical"
	errorInvalidState             = "invalid_state"
	errorInvalidResolution        = "invalid_resolution"
	errorInvalidUnits             = "invalid_units"
	errorInvalidPricingInput      = "invalid_pricing_input"
	errorInvalidRequest           = "invalid_request"
	errorUnauthenticated          = "unauthenticated"
	errorForbidden                = "forbidden"
	errorUnknownBooking           = "unknown_booking"
	errorDuplicateBooking         = "duplicate_booking"
	errorInvalidTransition        = "invalid_transition"
	errorCancellationWindowClosed = "cancellation_window_closed"
	errorHoldActive               = "hold_active"
	errorPaymentDeclined          = "payment_declined"
	errorConflict                 = "conflict"
	errorExternalServiceTimeout   = "external_service_timeout"
	errorGatewayUnavailable       = "gateway_unavailable"
	errorLedgerUnavailable        = "ledger_unavailable"
)

func mapToGRPCError(source error) error {
	if errors.Is(source, settlement.ErrInvalidBookingID) {
		return status.Error(codes.InvalidArgument, errorInvalidBookingID)
	}
	if errors.Is(source, settlement.ErrInvalidActor) {
		return status.Error(codes.InvalidArgument, errorInvalidActor)
	}
	if errors.Is(source, settlement.ErrInvalidParty) {
		return status.Error(codes.InvalidArgument, errorInvalidParty)
	}
	if errors.Is(source, settlement.ErrInvalidVertical) {
		return status.Error(codes.InvalidArgument, errorInvalidVertical)
	}
	if errors.Is(source, settlement.ErrInvalidState) {
		return status.Error(codes.InvalidArgument, errorInvalidState)
	}
	if errors.Is(source, settlement.ErrInvalidResolution) {
		return status.Error(codes.InvalidArgument, errorInvalidResolution)
	}
	if errors.Is(source, pricing.ErrInvalidPricingInput) {
		return status.Error(codes.InvalidArgument, errorInvalidPricingInput)
	}
	if errors.Is(source, settlement.ErrInvalidRequest) {
		return status.Error(codes.InvalidArgument, errorInvalidRequest)
	}
	if errors.Is(source, settlement.ErrForbidden) {
		return status.Error(codes.PermissionDenied, errorForbidden)
	}
	if errors.Is(source, settlement.ErrUnknownBooking) {
		return status.Error(codes.NotFound, errorUnknownBooking)
	}
	if errors.Is(source, settlement.ErrDuplicateBooking) {
		return status.Error(codes.AlreadyExists, errorDuplicateBooking)
	}
	if errors.Is(source, settlement.ErrInvalidTransition) {
		return status.Error(codes.FailedPrecondition, errorInvalidTransition)
	}
	if errors.Is(source, settlement.ErrCancellationWindowClosed) {
		return status.Error(codes.FailedPrecondition, errorCancellationWindowClosed)
	}
	if errors.Is(source, settlement.ErrHoldActive) {
		return status.Error(codes.FailedPrecondition, errorHoldActive)
	}
	if errors.Is(source, settlement.ErrPaymentDeclined) {
		return status.Error(codes.FailedPrecondition, errorPaymentDeclined)
	}
	if errors.Is(source, settlement.ErrConflict) {
		return status.Error(codes.Aborted, errorConflict)
	}
	if errors.Is(source, settlement.ErrExternalServiceTimeout) {
		return status.Error(codes.DeadlineExceeded, errorExternalServiceTimeout)
	}
	if errors.Is(source, settlement.ErrGatewayUnavailable) {
		return status.Error(codes.Unavailable, errorGatewayUnavailable)
	}
	if errors.Is(source, settlement.ErrLedgerUnavailable) {
		return status.Error(codes.Unavailable, errorLedgerUnavailable)
	}
	return status.Error(codes.Internal, source.Error())
}
