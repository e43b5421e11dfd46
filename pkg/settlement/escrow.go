package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var allowedTransitions = map[State]map[State]struct{}{
	StatePendingPayment: {
		StateHeld:      {},
		StateCancelled: {},
	},
	StateHeld: {
		StateReleased: {},
		StateRefunded: {},
		StateDisputed: {},
	},
	StateDisputed: {
		StateReleased: {},
		StateRefunded: {},
	},
}

// ValidateTransition reports whether the escrow state machine permits from -> to.
func ValidateTransition(from State, to State) error {
	if from.IsTerminal() {
		return fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, from)
	}
	if _, ok := allowedTransitions[from][to]; !ok {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// transitionPlan is one ledger write. Non-final plans claim a settlement
// intent and are followed by another step once committed. A final plan with
// err set reports err after it commits.
type transitionPlan struct {
	target  State
	fields  TransitionFields
	entries []LedgerEntry
	final   bool
	err     error
}

// transitionStep inspects the current booking and returns the next write, or
// nil when the booking already reflects the intended outcome.
type transitionStep func(ctx context.Context, current Booking) (*transitionPlan, error)

// run drives a step to completion, re-reading on version conflicts.
func (service *Service) run(ctx context.Context, operation string, bookingID string, step transitionStep) (Booking, error) {
	conflicts := 0
	for {
		current, err := service.ledger.Get(ctx, bookingID)
		if err != nil {
			return Booking{}, err
		}
		plan, err := step(ctx, current)
		if err != nil {
			return current, err
		}
		if plan == nil {
			return current, nil
		}
		updated, err := service.ledger.Transition(ctx, bookingID, current.Version, plan.target, plan.fields, plan.entries)
		if err != nil {
			if !isConflict(err) {
				return current, err
			}
			conflicts++
			if conflicts > service.maxConflictRetries {
				return current, WrapError(operation, "booking", "conflict_retries_exhausted", err)
			}
			continue
		}
		service.afterCommit(ctx, current, updated)
		if plan.final {
			return updated, plan.err
		}
	}
}

// captureStep claims the charge, charges the customer and moves the booking
// into escrow. While the claim stands the booking cannot be cancelled; a
// decline drops the claim since no money moved.
func (service *Service) captureStep(operation string) transitionStep {
	var captured *ChargeResult
	return func(ctx context.Context, current Booking) (*transitionPlan, error) {
		if current.State != StatePendingPayment {
			return nil, nil
		}
		switch current.Intent {
		case IntentNone:
			return &transitionPlan{
				target: StatePendingPayment,
				fields: TransitionFields{Intent: intentPointer(IntentCharge)},
			}, nil
		case IntentCharge:
		default:
			return nil, WrapError(operation, "booking", "settlement_in_progress", ErrInvalidTransition)
		}
		if captured == nil {
			result, err := service.charge(ctx, operation, current)
			if errors.Is(err, ErrPaymentDeclined) {
				return &transitionPlan{
					target: StatePendingPayment,
					fields: TransitionFields{Intent: intentPointer(IntentNone)},
					final:  true,
					err:    err,
				}, nil
			}
			if err != nil {
				return nil, err
			}
			captured = &result
		}
		policy, err := service.policies.Lookup(current.Vertical)
		if err != nil {
			return nil, err
		}
		holdExpiresAt := service.nowFn().UTC().Add(policy.HoldWindow)
		var entries []LedgerEntry
		if current.Pricing.TotalCharged > 0 {
			entries = append(entries, LedgerEntry{
				Type:           EntryCharge,
				Amount:         current.Pricing.TotalCharged,
				CounterpartyID: current.CustomerID,
				MetadataJSON: encodeMetadata(map[string]string{
					"currency":           current.Pricing.Currency,
					"external_charge_id": captured.ExternalChargeID,
				}),
			})
		}
		return &transitionPlan{
			target: StateHeld,
			fields: TransitionFields{
				HoldExpiresAt:    &holdExpiresAt,
				ExternalChargeID: captured.ExternalChargeID,
				Intent:           intentPointer(IntentNone),
			},
			entries: entries,
			final:   true,
		}, nil
	}
}

// disburseStep claims a release or refund intent, moves the money, and records
// the terminal transition. A claimed intent is resumed by whichever caller
// touches the booking next; guard only runs before the claim.
func (service *Service) disburseStep(operation string, intent SettlementIntent, guard func(current Booking) error) transitionStep {
	target := StateReleased
	if intent == IntentRefund {
		target = StateRefunded
	}
	return func(ctx context.Context, current Booking) (*transitionPlan, error) {
		if current.State == target {
			return nil, nil
		}
		if current.Intent != IntentNone && current.Intent != intent {
			return nil, WrapError(operation, "booking", "settlement_in_progress", ErrInvalidTransition)
		}
		if current.Intent == IntentNone {
			if err := ValidateTransition(current.State, target); err != nil {
				return nil, WrapError(operation, "booking", "invalid_transition", err)
			}
			if err := guard(current); err != nil {
				return nil, err
			}
			return &transitionPlan{
				target: current.State,
				fields: TransitionFields{Intent: intentPointer(intent)},
			}, nil
		}
		var (
			entries []LedgerEntry
			err     error
		)
		if intent == IntentRelease {
			entries, err = service.payout(ctx, operation, current)
		} else {
			entries, err = service.refund(ctx, operation, current)
		}
		if err != nil {
			return nil, err
		}
		return &transitionPlan{
			target: target,
			fields: TransitionFields{
				ClearHoldExpiresAt: true,
				Intent:             intentPointer(IntentNone),
			},
			entries: entries,
			final:   true,
		}, nil
	}
}

func (service *Service) disputeStep(operation string, actor Actor, reason string) transitionStep {
	return func(ctx context.Context, current Booking) (*transitionPlan, error) {
		if err := authorize(operation, actor, current, partyCustomer, partyProvider); err != nil {
			return nil, err
		}
		if current.State == StateDisputed {
			return nil, nil
		}
		if err := ValidateTransition(current.State, StateDisputed); err != nil {
			return nil, WrapError(operation, "booking", "invalid_transition", err)
		}
		if current.Intent != IntentNone {
			return nil, WrapError(operation, "booking", "settlement_in_progress", ErrInvalidTransition)
		}
		if current.HoldExpiresAt != nil && !service.nowFn().Before(*current.HoldExpiresAt) {
			return nil, WrapError(operation, "hold", "window_elapsed", ErrInvalidTransition)
		}
		return &transitionPlan{
			target: StateDisputed,
			fields: TransitionFields{
				ClearHoldExpiresAt: true,
				DisputeReason:      reason,
			},
			final: true,
		}, nil
	}
}

func (service *Service) cancelStep(operation string, actor Actor) transitionStep {
	refund := service.disburseStep(operation, IntentRefund, func(current Booking) error {
		if current.State != StateHeld {
			return WrapError(operation, "booking", "not_held", ErrCancellationWindowClosed)
		}
		if current.ServiceStart != nil && !service.nowFn().Before(*current.ServiceStart) {
			return WrapError(operation, "booking", "service_started", ErrCancellationWindowClosed)
		}
		return nil
	})
	return func(ctx context.Context, current Booking) (*transitionPlan, error) {
		if err := authorize(operation, actor, current, partyCustomer, partyProvider); err != nil {
			return nil, err
		}
		switch current.State {
		case StateCancelled:
			return nil, nil
		case StateRefunded:
			// Only a cancellation refunds without a dispute on record.
			if current.DisputeReason == "" {
				return nil, nil
			}
			return nil, WrapError(operation, "booking", "invalid_transition", fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, current.State))
		case StatePendingPayment:
			if current.Intent == IntentCharge {
				return nil, WrapError(operation, "booking", "charge_in_progress", ErrCancellationWindowClosed)
			}
			if err := ValidateTransition(current.State, StateCancelled); err != nil {
				return nil, WrapError(operation, "booking", "invalid_transition", err)
			}
			return &transitionPlan{target: StateCancelled, final: true}, nil
		case StateDisputed:
			return nil, WrapError(operation, "booking", "disputed", ErrCancellationWindowClosed)
		case StateReleased:
			return nil, WrapError(operation, "booking", "invalid_transition", fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, current.State))
		default:
			if current.Intent == IntentRelease {
				return nil, WrapError(operation, "booking", "release_in_progress", ErrCancellationWindowClosed)
			}
			return refund(ctx, current)
		}
	}
}

func (service *Service) expiredHoldStep(operation string) transitionStep {
	release := service.disburseStep(operation, IntentRelease, func(current Booking) error {
		if current.State != StateHeld {
			return WrapError(operation, "booking", "not_held", ErrInvalidTransition)
		}
		if current.HoldExpiresAt != nil && service.nowFn().Before(*current.HoldExpiresAt) {
			return WrapError(operation, "hold", "active", ErrHoldActive)
		}
		return nil
	})
	resumeRefund := service.disburseStep(operation, IntentRefund, func(Booking) error {
		return WrapError(operation, "booking", "no_refund_claimed", ErrInvalidTransition)
	})
	return func(ctx context.Context, current Booking) (*transitionPlan, error) {
		if current.Intent == IntentRefund {
			return resumeRefund(ctx, current)
		}
		return release(ctx, current)
	}
}

func (service *Service) confirmStep(operation string, actor Actor) transitionStep {
	release := service.disburseStep(operation, IntentRelease, func(current Booking) error {
		if current.State != StateHeld {
			return WrapError(operation, "booking", "not_held", ErrInvalidTransition)
		}
		return nil
	})
	return func(ctx context.Context, current Booking) (*transitionPlan, error) {
		if err := authorize(operation, actor, current, partyCustomer); err != nil {
			return nil, err
		}
		return release(ctx, current)
	}
}

func (service *Service) resolveStep(operation string, actor Actor, resolution Resolution) transitionStep {
	intent := IntentRelease
	if resolution == ResolutionRefund {
		intent = IntentRefund
	}
	settle := service.disburseStep(operation, intent, func(current Booking) error {
		if current.State != StateDisputed {
			return WrapError(operation, "booking", "not_disputed", ErrInvalidTransition)
		}
		return nil
	})
	return func(ctx context.Context, current Booking) (*transitionPlan, error) {
		if err := authorize(operation, actor, current); err != nil {
			return nil, err
		}
		return settle(ctx, current)
	}
}

func (service *Service) serviceTimeStep(operation string, actor Actor, recordStart bool, at time.Time) transitionStep {
	return func(ctx context.Context, current Booking) (*transitionPlan, error) {
		if err := authorize(operation, actor, current, partyProvider); err != nil {
			return nil, err
		}
		if current.State.IsTerminal() {
			return nil, WrapError(operation, "booking", "terminal", fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, current.State))
		}
		fields := TransitionFields{}
		if recordStart {
			if current.ServiceStart != nil && current.ServiceStart.Equal(at) {
				return nil, nil
			}
			fields.ServiceStart = &at
		} else {
			if current.ServiceStart != nil && at.Before(*current.ServiceStart) {
				return nil, WrapError(operation, "service_end", "before_start", ErrInvalidRequest)
			}
			if current.ServiceEnd != nil && current.ServiceEnd.Equal(at) {
				return nil, nil
			}
			fields.ServiceEnd = &at
		}
		return &transitionPlan{target: current.State, fields: fields, final: true}, nil
	}
}
