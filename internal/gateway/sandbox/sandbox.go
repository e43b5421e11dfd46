// Package sandbox is an in-process payment gateway. It deduplicates calls by
// idempotency token the way a real processor does and records every call.
package sandbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MarkoPoloResearchLab/settlement/pkg/settlement"
)

// Operation names a gateway capability.
type Operation string

const (
	OperationCharge Operation = "charge"
	OperationPayout Operation = "payout"
	OperationRefund Operation = "refund"
)

// Option configures a Gateway.
type Option func(*Gateway)

// WithDeclinedCustomers makes charges for these customers fail with ErrPaymentDeclined.
func WithDeclinedCustomers(customerIDs ...string) Option {
	return func(gateway *Gateway) {
		for _, customerID := range customerIDs {
			gateway.declined[customerID] = struct{}{}
		}
	}
}

// WithLatency delays every call, honoring context cancellation.
func WithLatency(latency time.Duration) Option {
	return func(gateway *Gateway) {
		gateway.latency = latency
	}
}

// Gateway implements settlement.PaymentGateway.
type Gateway struct {
	mutex    sync.Mutex
	latency  time.Duration
	declined map[string]struct{}
	results  map[Operation]map[string]string
	calls    map[Operation]int
	amounts  map[Operation]int64
	failures map[Operation][]error
}

// New constructs a Gateway.
func New(options ...Option) *Gateway {
	gateway := &Gateway{
		declined: make(map[string]struct{}),
		results: map[Operation]map[string]string{
			OperationCharge: {},
			OperationPayout: {},
			OperationRefund: {},
		},
		calls:    make(map[Operation]int),
		amounts:  make(map[Operation]int64),
		failures: make(map[Operation][]error),
	}
	for _, option := range options {
		if option != nil {
			option(gateway)
		}
	}
	return gateway
}

// FailNext queues an error returned by the next call of operation.
func (gateway *Gateway) FailNext(operation Operation, err error) {
	gateway.mutex.Lock()
	defer gateway.mutex.Unlock()
	gateway.failures[operation] = append(gateway.failures[operation], err)
}

// Calls returns how many times operation was invoked, replays included.
func (gateway *Gateway) Calls(operation Operation) int {
	gateway.mutex.Lock()
	defer gateway.mutex.Unlock()
	return gateway.calls[operation]
}

// Executed returns how many distinct tokens operation moved money for.
func (gateway *Gateway) Executed(operation Operation) int {
	gateway.mutex.Lock()
	defer gateway.mutex.Unlock()
	return len(gateway.results[operation])
}

// Moved returns the total amount moved by operation.
func (gateway *Gateway) Moved(operation Operation) int64 {
	gateway.mutex.Lock()
	defer gateway.mutex.Unlock()
	return gateway.amounts[operation]
}

// Charge captures funds.
func (gateway *Gateway) Charge(ctx context.Context, request settlement.ChargeRequest) (settlement.ChargeResult, error) {
	if gateway.isDeclined(request.CustomerID) {
		gateway.record(OperationCharge)
		return settlement.ChargeResult{}, fmt.Errorf("%w: customer %s", settlement.ErrPaymentDeclined, request.CustomerID)
	}
	externalID, err := gateway.execute(ctx, OperationCharge, request.IdempotencyToken, request.Amount, "chrg")
	if err != nil {
		return settlement.ChargeResult{}, err
	}
	return settlement.ChargeResult{ExternalChargeID: externalID}, nil
}

// Payout transfers funds to a provider.
func (gateway *Gateway) Payout(ctx context.Context, request settlement.PayoutRequest) (settlement.PayoutResult, error) {
	externalID, err := gateway.execute(ctx, OperationPayout, request.IdempotencyToken, request.Amount, "trsf")
	if err != nil {
		return settlement.PayoutResult{}, err
	}
	return settlement.PayoutResult{ExternalPayoutID: externalID}, nil
}

// Refund returns funds to a customer.
func (gateway *Gateway) Refund(ctx context.Context, request settlement.RefundRequest) (settlement.RefundResult, error) {
	externalID, err := gateway.execute(ctx, OperationRefund, request.IdempotencyToken, request.Amount, "rfnd")
	if err != nil {
		return settlement.RefundResult{}, err
	}
	return settlement.RefundResult{ExternalRefundID: externalID}, nil
}

func (gateway *Gateway) isDeclined(customerID string) bool {
	gateway.mutex.Lock()
	defer gateway.mutex.Unlock()
	_, declined := gateway.declined[customerID]
	return declined
}

func (gateway *Gateway) record(operation Operation) {
	gateway.mutex.Lock()
	defer gateway.mutex.Unlock()
	gateway.calls[operation]++
}

func (gateway *Gateway) execute(ctx context.Context, operation Operation, token string, amount int64, prefix string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("%w: %s without idempotency token", settlement.ErrInvalidRequest, operation)
	}
	if gateway.latency > 0 {
		timer := time.NewTimer(gateway.latency)
		select {
		case <-ctx.Done():
			timer.Stop()
			gateway.record(operation)
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	gateway.mutex.Lock()
	defer gateway.mutex.Unlock()
	gateway.calls[operation]++
	if queued := gateway.failures[operation]; len(queued) > 0 {
		gateway.failures[operation] = queued[1:]
		return "", queued[0]
	}
	if externalID, ok := gateway.results[operation][token]; ok {
		return externalID, nil
	}
	externalID := prefix + "_" + uuid.NewString()
	gateway.results[operation][token] = externalID
	gateway.amounts[operation] += amount
	return externalID, nil
}
