package settlement

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MarkoPoloResearchLab/settlement/pkg/pricing"
)

// CreateBookingRequest carries the client's booking parameters. Prices are
// never taken from the client; AdvisoryTotal is only compared and logged.
type CreateBookingRequest struct {
	Vertical       Vertical
	ProviderID     string
	CustomerID     string
	Units          decimal.Decimal
	IdempotencyKey string
	ScheduledStart *time.Time
	AdvisoryTotal  *int64
}

// CreateBooking prices, persists, charges and holds a booking. Replaying the
// same idempotency key returns the existing booking; a replay that finds the
// booking still pending_payment retries the charge with the original token.
func (service *Service) CreateBooking(ctx context.Context, actor Actor, request CreateBookingRequest) (booking Booking, err error) {
	ctx, span := service.startSpan(ctx, operationCreateBooking, request.IdempotencyKey)
	defer func() {
		service.finish(ctx, span, operationCreateBooking, actor, booking.ID, booking, err)
	}()

	candidate, err := service.prepareBooking(ctx, actor, request)
	if err != nil {
		return Booking{}, err
	}
	if _, err := service.ledger.Create(ctx, candidate); err != nil {
		if !errors.Is(err, ErrDuplicateBooking) {
			return Booking{}, err
		}
		existing, getErr := service.ledger.Get(ctx, candidate.ID)
		if getErr != nil {
			return Booking{}, getErr
		}
		if !sameBookingRequest(existing, candidate) {
			return Booking{}, WrapError(operationCreateBooking, "booking", "parameters_mismatch", ErrDuplicateBooking)
		}
	}
	charged, err := service.run(ctx, operationCreateBooking, candidate.ID, service.captureStep(operationCreateBooking))
	if err != nil {
		return Booking{}, err
	}
	return charged, nil
}

func (service *Service) prepareBooking(ctx context.Context, actor Actor, request CreateBookingRequest) (Booking, error) {
	if err := validateActor(operationCreateBooking, actor); err != nil {
		return Booking{}, err
	}
	providerID := strings.TrimSpace(request.ProviderID)
	customerID := strings.TrimSpace(request.CustomerID)
	if providerID == "" || customerID == "" {
		return Booking{}, WrapError(operationCreateBooking, "party", "empty", ErrInvalidParty)
	}
	if providerID == customerID {
		return Booking{}, WrapError(operationCreateBooking, "party", "self_booking", fmt.Errorf("%w: provider and customer must differ", ErrInvalidRequest))
	}
	if !actor.Operator && actor.ID != customerID {
		return Booking{}, WrapError(operationCreateBooking, "actor", "forbidden", ErrForbidden)
	}
	vertical, err := ParseVertical(string(request.Vertical))
	if err != nil {
		return Booking{}, WrapError(operationCreateBooking, "vertical", "invalid", err)
	}
	bookingID := GenerateBookingID()
	if strings.TrimSpace(request.IdempotencyKey) != "" {
		bookingID, err = NewBookingID(request.IdempotencyKey)
		if err != nil {
			return Booking{}, WrapError(operationCreateBooking, "idempotency_key", "invalid", err)
		}
	}
	quoted, err := service.policies.Price(vertical, providerID, request.Units)
	if err != nil {
		return Booking{}, WrapError(operationCreateBooking, "pricing", "invalid", err)
	}
	if request.AdvisoryTotal != nil && !quoted.MatchesAdvisory(*request.AdvisoryTotal) {
		service.logOperation(ctx, OperationLog{
			Operation: operationAdvisoryMismatch,
			BookingID: bookingID.String(),
			ActorID:   actor.ID,
			Detail:    "advisory total " + strconv.FormatInt(*request.AdvisoryTotal, 10) + " != authoritative " + strconv.FormatInt(quoted.TotalCharged, 10),
			Status:    StatusWarning,
		})
	}
	var scheduledStart *time.Time
	if request.ScheduledStart != nil {
		start := request.ScheduledStart.UTC()
		scheduledStart = &start
	}
	return Booking{
		ID:           bookingID.String(),
		Vertical:     vertical,
		ProviderID:   providerID,
		CustomerID:   customerID,
		Pricing:      quoted,
		ServiceStart: scheduledStart,
	}, nil
}

func sameBookingRequest(existing Booking, candidate Booking) bool {
	if existing.Vertical != candidate.Vertical || existing.ProviderID != candidate.ProviderID || existing.CustomerID != candidate.CustomerID {
		return false
	}
	existingUnits, err := pricing.ParseRate(existing.Pricing.Units)
	if err != nil {
		return false
	}
	candidateUnits, err := pricing.ParseRate(candidate.Pricing.Units)
	if err != nil {
		return false
	}
	return existingUnits.Equal(candidateUnits)
}

// CancelBooking cancels an unpaid booking or refunds a held one before service start.
func (service *Service) CancelBooking(ctx context.Context, actor Actor, bookingID BookingID) (booking Booking, err error) {
	return service.mutate(ctx, operationCancelBooking, actor, bookingID, func() transitionStep {
		return service.cancelStep(operationCancelBooking, actor)
	})
}

// RaiseDispute freezes automatic release of a held booking.
func (service *Service) RaiseDispute(ctx context.Context, actor Actor, bookingID BookingID, reason string) (booking Booking, err error) {
	trimmedReason := strings.TrimSpace(reason)
	return service.mutate(ctx, operationRaiseDispute, actor, bookingID, func() transitionStep {
		if trimmedReason == "" {
			return rejectStep(WrapError(operationRaiseDispute, "reason", "empty", ErrInvalidRequest))
		}
		return service.disputeStep(operationRaiseDispute, actor, trimmedReason)
	})
}

// ConfirmCompletion releases a held booking early on the customer's confirmation.
func (service *Service) ConfirmCompletion(ctx context.Context, actor Actor, bookingID BookingID) (booking Booking, err error) {
	return service.mutate(ctx, operationConfirmCompletion, actor, bookingID, func() transitionStep {
		return service.confirmStep(operationConfirmCompletion, actor)
	})
}

// ResolveDispute settles a disputed booking. Only operators may resolve.
func (service *Service) ResolveDispute(ctx context.Context, actor Actor, bookingID BookingID, resolution Resolution) (booking Booking, err error) {
	return service.mutate(ctx, operationResolveDispute, actor, bookingID, func() transitionStep {
		if _, parseErr := ParseResolution(string(resolution)); parseErr != nil {
			return rejectStep(WrapError(operationResolveDispute, "resolution", "invalid", parseErr))
		}
		return service.resolveStep(operationResolveDispute, actor, resolution)
	})
}

// RecordServiceStart stores the actual start of service. Cancellation closes once it passes.
func (service *Service) RecordServiceStart(ctx context.Context, actor Actor, bookingID BookingID, at time.Time) (booking Booking, err error) {
	return service.mutate(ctx, operationRecordServiceStart, actor, bookingID, func() transitionStep {
		return service.serviceTimeStep(operationRecordServiceStart, actor, true, at.UTC())
	})
}

// RecordServiceEnd stores the actual end of service.
func (service *Service) RecordServiceEnd(ctx context.Context, actor Actor, bookingID BookingID, at time.Time) (booking Booking, err error) {
	return service.mutate(ctx, operationRecordServiceEnd, actor, bookingID, func() transitionStep {
		return service.serviceTimeStep(operationRecordServiceEnd, actor, false, at.UTC())
	})
}

// ReleaseExpiredHold is the release timer's entry point. It releases a held
// booking whose hold has elapsed and resumes any claimed disbursement. On
// ErrHoldActive the returned booking carries the current expiry.
func (service *Service) ReleaseExpiredHold(ctx context.Context, bookingID BookingID) (booking Booking, err error) {
	ctx, span := service.startSpan(ctx, operationReleaseExpiredHold, bookingID.String())
	defer func() {
		service.finish(ctx, span, operationReleaseExpiredHold, Actor{}, bookingID.String(), booking, err)
	}()
	if bookingID.String() == "" {
		return Booking{}, WrapError(operationReleaseExpiredHold, "booking", "invalid_id", ErrInvalidBookingID)
	}
	return service.run(ctx, operationReleaseExpiredHold, bookingID.String(), service.expiredHoldStep(operationReleaseExpiredHold))
}

// GetBookingStatus returns the booking to one of its parties or an operator.
func (service *Service) GetBookingStatus(ctx context.Context, actor Actor, bookingID BookingID) (Booking, error) {
	if err := validateActor("get_booking", actor); err != nil {
		return Booking{}, err
	}
	booking, err := service.ledger.Get(ctx, bookingID.String())
	if err != nil {
		return Booking{}, err
	}
	if err := authorize("get_booking", actor, booking, partyCustomer, partyProvider); err != nil {
		return Booking{}, err
	}
	return booking, nil
}

// ListLedgerEntries returns the booking's money movements.
func (service *Service) ListLedgerEntries(ctx context.Context, actor Actor, bookingID BookingID) ([]LedgerEntry, error) {
	if _, err := service.GetBookingStatus(ctx, actor, bookingID); err != nil {
		return nil, err
	}
	return service.ledger.ListEntries(ctx, bookingID.String())
}

// ListProviderBookings returns a provider's bookings, optionally narrowed to states.
func (service *Service) ListProviderBookings(ctx context.Context, actor Actor, providerID string, states []State) ([]Booking, error) {
	if err := validateActor("list_provider_bookings", actor); err != nil {
		return nil, err
	}
	trimmedProviderID := strings.TrimSpace(providerID)
	if !actor.Operator && actor.ID != trimmedProviderID {
		return nil, WrapError("list_provider_bookings", "actor", "forbidden", ErrForbidden)
	}
	return service.ledger.ListByProvider(ctx, trimmedProviderID, states)
}

// ListHeldBookings returns every booking in escrow. The release scheduler
// rebuilds its timers from it after a restart.
func (service *Service) ListHeldBookings(ctx context.Context) ([]Booking, error) {
	return service.ledger.ListHeld(ctx)
}

func (service *Service) mutate(ctx context.Context, operation string, actor Actor, bookingID BookingID, buildStep func() transitionStep) (booking Booking, err error) {
	ctx, span := service.startSpan(ctx, operation, bookingID.String())
	defer func() {
		service.finish(ctx, span, operation, actor, bookingID.String(), booking, err)
	}()
	if err := validateActor(operation, actor); err != nil {
		return Booking{}, err
	}
	if bookingID.String() == "" {
		return Booking{}, WrapError(operation, "booking", "invalid_id", ErrInvalidBookingID)
	}
	updated, err := service.run(ctx, operation, bookingID.String(), buildStep())
	if err != nil {
		return Booking{}, err
	}
	return updated, nil
}

func rejectStep(err error) transitionStep {
	return func(context.Context, Booking) (*transitionPlan, error) {
		return nil, err
	}
}
