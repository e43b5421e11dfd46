package settlement

import "time"

// Operation log statuses.
const (
	StatusOK      = "ok"
	StatusError   = "error"
	StatusWarning = "warning"
)

const (
	operationCreateBooking      = "create_booking"
	operationCancelBooking      = "cancel_booking"
	operationRaiseDispute       = "raise_dispute"
	operationResolveDispute     = "resolve_dispute"
	operationConfirmCompletion  = "confirm_completion"
	operationReleaseExpiredHold = "release_expired_hold"
	operationRecordServiceStart = "record_service_start"
	operationRecordServiceEnd   = "record_service_end"
	operationAdvisoryMismatch   = "advisory_mismatch"

	idempotencyKeyDelimiter = ":"
	tokenSuffixCharge       = "charge"
	tokenSuffixPayout       = "payout"
	tokenSuffixRefund       = "refund"

	platformCounterpartyID = "platform"

	maxBookingIDLength = 128

	defaultMaxConflictRetries = 3
	defaultExternalTimeout    = 10 * time.Second
	defaultHoldWindow         = 72 * time.Hour
	defaultCurrency           = "usd"

	tracerName = "github.com/MarkoPoloResearchLab/settlement/pkg/settlement"
)
