package settlement

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Service is the Settlement API: pricing, escrow transitions and money
// movement over a Ledger and a PaymentGateway.
type Service struct {
	ledger             *Ledger
	gateway            PaymentGateway
	policies           PolicyTable
	nowFn              func() time.Time
	logger             OperationLogger
	notifier           Notifier
	scheduler          ReleaseScheduler
	tracer             trace.Tracer
	maxConflictRetries int
	externalTimeout    time.Duration
}

// NewService wires a Service.
func NewService(store Store, gateway PaymentGateway, now func() time.Time, options ...ServiceOption) (*Service, error) {
	if gateway == nil {
		return nil, fmt.Errorf("%w: payment gateway dependency is nil", ErrInvalidServiceConfig)
	}
	ledger, err := NewLedger(store, now)
	if err != nil {
		return nil, err
	}
	service := &Service{
		ledger:             ledger,
		gateway:            gateway,
		policies:           DefaultPolicyTable(),
		nowFn:              now,
		notifier:           noopNotifier{},
		scheduler:          noopScheduler{},
		tracer:             otel.Tracer(tracerName),
		maxConflictRetries: defaultMaxConflictRetries,
		externalTimeout:    defaultExternalTimeout,
	}
	for _, option := range options {
		if option != nil {
			option(service)
		}
	}
	if service.maxConflictRetries < 0 {
		return nil, fmt.Errorf("%w: max conflict retries must not be negative", ErrInvalidServiceConfig)
	}
	if service.externalTimeout <= 0 {
		return nil, fmt.Errorf("%w: external timeout must be positive", ErrInvalidServiceConfig)
	}
	if service.policies.policies == nil {
		return nil, fmt.Errorf("%w: policy table is empty", ErrInvalidServiceConfig)
	}
	return service, nil
}

// Ledger exposes the underlying booking ledger.
func (service *Service) Ledger() *Ledger {
	return service.ledger
}

type party int

const (
	partyCustomer party = iota
	partyProvider
)

// authorize admits operators and the listed parties of the booking.
func authorize(operation string, actor Actor, booking Booking, parties ...party) error {
	if actor.Operator {
		return nil
	}
	for _, allowed := range parties {
		switch allowed {
		case partyCustomer:
			if actor.ID == booking.CustomerID {
				return nil
			}
		case partyProvider:
			if actor.ID == booking.ProviderID {
				return nil
			}
		}
	}
	return WrapError(operation, "actor", "forbidden", ErrForbidden)
}

func validateActor(operation string, actor Actor) error {
	if _, err := NewActor(actor.ID, actor.Operator); err != nil {
		return WrapError(operation, "actor", "invalid", err)
	}
	return nil
}

func (service *Service) charge(ctx context.Context, operation string, booking Booking) (ChargeResult, error) {
	if booking.Pricing.TotalCharged == 0 {
		return ChargeResult{}, nil
	}
	var result ChargeResult
	err := service.callGateway(ctx, operation, "charge", func(callCtx context.Context) error {
		charged, err := service.gateway.Charge(callCtx, ChargeRequest{
			BookingID:        booking.ID,
			CustomerID:       booking.CustomerID,
			Amount:           booking.Pricing.TotalCharged,
			Currency:         booking.Pricing.Currency,
			IdempotencyToken: externalToken(booking.ID, tokenSuffixCharge),
			Metadata:         bookingMetadata(booking),
		})
		result = charged
		return err
	})
	return result, err
}

func (service *Service) payout(ctx context.Context, operation string, booking Booking) ([]LedgerEntry, error) {
	amounts := booking.Pricing
	payoutID := ""
	if amounts.BaseAmount > 0 {
		err := service.callGateway(ctx, operation, "payout", func(callCtx context.Context) error {
			result, err := service.gateway.Payout(callCtx, PayoutRequest{
				BookingID:        booking.ID,
				ProviderID:       booking.ProviderID,
				Amount:           amounts.BaseAmount,
				Currency:         amounts.Currency,
				IdempotencyToken: externalToken(booking.ID, tokenSuffixPayout),
				Metadata:         bookingMetadata(booking),
			})
			payoutID = result.ExternalPayoutID
			return err
		})
		if err != nil {
			return nil, err
		}
	}
	return []LedgerEntry{
		{
			Type:           EntryPayout,
			Amount:         -amounts.BaseAmount,
			CounterpartyID: booking.ProviderID,
			MetadataJSON: encodeMetadata(map[string]string{
				"currency":           amounts.Currency,
				"external_payout_id": payoutID,
			}),
		},
		{
			Type:           EntryCommission,
			Amount:         -amounts.CommissionAmount,
			CounterpartyID: platformCounterpartyID,
			MetadataJSON:   encodeMetadata(map[string]string{"currency": amounts.Currency, "rate": amounts.CommissionRate}),
		},
		{
			Type:           EntryTax,
			Amount:         -amounts.TaxAmount,
			CounterpartyID: platformCounterpartyID,
			MetadataJSON:   encodeMetadata(map[string]string{"currency": amounts.Currency, "rate": amounts.TaxRate}),
		},
	}, nil
}

func (service *Service) refund(ctx context.Context, operation string, booking Booking) ([]LedgerEntry, error) {
	amounts := booking.Pricing
	refundID := ""
	if amounts.TotalCharged > 0 {
		err := service.callGateway(ctx, operation, "refund", func(callCtx context.Context) error {
			result, err := service.gateway.Refund(callCtx, RefundRequest{
				BookingID:        booking.ID,
				CustomerID:       booking.CustomerID,
				ExternalChargeID: booking.ExternalChargeID,
				Amount:           amounts.TotalCharged,
				Currency:         amounts.Currency,
				IdempotencyToken: externalToken(booking.ID, tokenSuffixRefund),
				Metadata:         bookingMetadata(booking),
			})
			refundID = result.ExternalRefundID
			return err
		})
		if err != nil {
			return nil, err
		}
	}
	return []LedgerEntry{{
		Type:           EntryRefund,
		Amount:         -amounts.TotalCharged,
		CounterpartyID: booking.CustomerID,
		MetadataJSON: encodeMetadata(map[string]string{
			"currency":           amounts.Currency,
			"external_refund_id": refundID,
		}),
	}}, nil
}

// callGateway bounds an external call and normalizes its failure.
func (service *Service) callGateway(ctx context.Context, operation string, subject string, call func(callCtx context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, service.externalTimeout)
	defer cancel()
	err := call(callCtx)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrExternalServiceTimeout) || (errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil) {
		if !errors.Is(err, ErrExternalServiceTimeout) {
			err = fmt.Errorf("%w: %v", ErrExternalServiceTimeout, err)
		}
		return WrapError(operation, subject, "timeout", err)
	}
	if errors.Is(err, ErrPaymentDeclined) {
		return WrapError(operation, subject, "declined", err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if !errors.Is(err, ErrGatewayUnavailable) {
		err = fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	return WrapError(operation, subject, "unavailable", err)
}

// afterCommit arms or disarms the release timer and publishes state changes.
func (service *Service) afterCommit(ctx context.Context, previous Booking, updated Booking) {
	if updated.State == StateHeld && previous.State != StateHeld && updated.HoldExpiresAt != nil {
		service.scheduler.Arm(updated.ID, *updated.HoldExpiresAt)
	}
	if previous.State == StateHeld && updated.State != StateHeld {
		service.scheduler.Disarm(updated.ID)
	}
	if previous.State != updated.State {
		service.notifier.Notify(ctx, NewBookingEvent(previous.State, updated, service.nowFn()))
	}
}

func (service *Service) startSpan(ctx context.Context, operation string, bookingID string) (context.Context, trace.Span) {
	return service.tracer.Start(ctx, "settlement."+operation, trace.WithAttributes(
		attribute.String("settlement.operation", operation),
		attribute.String("settlement.booking_id", bookingID),
	))
}

func finishSpan(span trace.Span, booking Booking, err error) {
	if booking.ID != "" {
		span.SetAttributes(
			attribute.String("settlement.state", string(booking.State)),
			attribute.Int64("settlement.version", booking.Version),
		)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
	}
	span.End()
}

func (service *Service) logOperation(ctx context.Context, entry OperationLog) {
	if service.logger == nil {
		return
	}
	if entry.Status == "" {
		if entry.Error != nil {
			entry.Status = StatusError
		} else {
			entry.Status = StatusOK
		}
	}
	service.logger.LogOperation(ctx, entry)
}

func (service *Service) finish(ctx context.Context, span trace.Span, operation string, actor Actor, bookingID string, booking Booking, err error) {
	finishSpan(span, booking, err)
	service.logOperation(ctx, OperationLog{
		Operation: operation,
		BookingID: bookingID,
		ActorID:   actor.ID,
		State:     booking.State,
		Version:   booking.Version,
		Error:     err,
	})
}

func bookingMetadata(booking Booking) map[string]string {
	return map[string]string{
		"booking_id":  booking.ID,
		"vertical":    string(booking.Vertical),
		"provider_id": booking.ProviderID,
		"customer_id": booking.CustomerID,
		"total":       strconv.FormatInt(booking.Pricing.TotalCharged, 10),
	}
}
