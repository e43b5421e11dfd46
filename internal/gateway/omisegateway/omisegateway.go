// Package omisegateway settles bookings through the Omise payments API:
// charges capture into the platform balance, transfers pay providers out to
// their recipients and refunds reverse the original charge.
package omisegateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/settlement/pkg/settlement"
)

const (
	apiEndpoint           = "https://api.omise.co"
	idempotencyHeader     = "Idempotency-Key"
	metadataTokenKey      = "idempotency_token"
	defaultMaxAttempts    = 3
	defaultInitialBackoff = 200 * time.Millisecond
	defaultMaxBackoff     = 2 * time.Second
)

// ErrMissingCredentials is returned when either Omise key is empty.
var ErrMissingCredentials = errors.New("omise keys are required")

// Option configures a Gateway.
type Option func(*Gateway)

// WithCustomerAccounts maps settlement customer ids to Omise customer ids.
// Unmapped customers are charged under their settlement id.
func WithCustomerAccounts(accounts map[string]string) Option {
	return func(gateway *Gateway) {
		for customerID, account := range accounts {
			gateway.customers[customerID] = account
		}
	}
}

// WithRecipientAccounts maps provider ids to Omise recipient ids.
func WithRecipientAccounts(accounts map[string]string) Option {
	return func(gateway *Gateway) {
		for providerID, account := range accounts {
			gateway.recipients[providerID] = account
		}
	}
}

// WithRetry bounds transport retries.
func WithRetry(maxAttempts int, initialBackoff time.Duration, maxBackoff time.Duration) Option {
	return func(gateway *Gateway) {
		gateway.maxAttempts = maxAttempts
		gateway.initialBackoff = initialBackoff
		gateway.maxBackoff = maxBackoff
	}
}

// WithTransport replaces the HTTP transport used for API calls.
func WithTransport(transport http.RoundTripper) Option {
	return func(gateway *Gateway) {
		if transport != nil {
			gateway.client.Client = &http.Client{Transport: transport}
		}
	}
}

// WithAPIEndpoint points charge, transfer and refund calls at baseURL.
func WithAPIEndpoint(baseURL string) Option {
	return func(gateway *Gateway) {
		if baseURL != "" {
			gateway.client.Endpoints[apiEndpoint] = baseURL
		}
	}
}

// WithLogger sets the gateway logger.
func WithLogger(logger *zap.Logger) Option {
	return func(gateway *Gateway) {
		if logger != nil {
			gateway.logger = logger
		}
	}
}

// Gateway implements settlement.PaymentGateway.
type Gateway struct {
	client         *omise.Client
	logger         *zap.Logger
	customers      map[string]string
	recipients     map[string]string
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// New constructs a Gateway from the account keys.
func New(publicKey string, secretKey string, options ...Option) (*Gateway, error) {
	if publicKey == "" || secretKey == "" {
		return nil, ErrMissingCredentials
	}
	client, err := omise.NewClient(publicKey, secretKey)
	if err != nil {
		return nil, fmt.Errorf("omise client: %w", err)
	}
	gateway := &Gateway{
		client:         client,
		logger:         zap.NewNop(),
		customers:      make(map[string]string),
		recipients:     make(map[string]string),
		maxAttempts:    defaultMaxAttempts,
		initialBackoff: defaultInitialBackoff,
		maxBackoff:     defaultMaxBackoff,
	}
	for _, option := range options {
		if option != nil {
			option(gateway)
		}
	}
	if gateway.maxAttempts <= 0 || gateway.initialBackoff <= 0 || gateway.maxBackoff < gateway.initialBackoff {
		return nil, fmt.Errorf("omise gateway: invalid retry policy")
	}
	return gateway, nil
}

// Charge captures the booking total from the customer's card on file.
func (gateway *Gateway) Charge(ctx context.Context, request settlement.ChargeRequest) (settlement.ChargeResult, error) {
	metadata := make(map[string]interface{}, len(request.Metadata)+1)
	for key, value := range request.Metadata {
		metadata[key] = value
	}
	metadata[metadataTokenKey] = request.IdempotencyToken
	operation := &operations.CreateCharge{
		Customer: gateway.account(gateway.customers, request.CustomerID),
		Amount:   request.Amount,
		Currency: request.Currency,
		Metadata: metadata,
	}
	charge := &omise.Charge{}
	err := gateway.do(ctx, "charge", request.IdempotencyToken, func(client *omise.Client) error {
		return client.Do(charge, operation)
	})
	if err != nil {
		return settlement.ChargeResult{}, err
	}
	if charge.Status == omise.ChargeFailed {
		return settlement.ChargeResult{}, fmt.Errorf("%w: charge %s failed", settlement.ErrPaymentDeclined, charge.ID)
	}
	return settlement.ChargeResult{ExternalChargeID: charge.ID}, nil
}

// Payout transfers the provider share to the provider's recipient.
func (gateway *Gateway) Payout(ctx context.Context, request settlement.PayoutRequest) (settlement.PayoutResult, error) {
	operation := &operations.CreateTransfer{
		Amount:    request.Amount,
		Recipient: gateway.account(gateway.recipients, request.ProviderID),
	}
	transfer := &omise.Transfer{}
	err := gateway.do(ctx, "payout", request.IdempotencyToken, func(client *omise.Client) error {
		return client.Do(transfer, operation)
	})
	if err != nil {
		return settlement.PayoutResult{}, err
	}
	return settlement.PayoutResult{ExternalPayoutID: transfer.ID}, nil
}

// Refund returns the amount against the original charge.
func (gateway *Gateway) Refund(ctx context.Context, request settlement.RefundRequest) (settlement.RefundResult, error) {
	if request.ExternalChargeID == "" {
		return settlement.RefundResult{}, fmt.Errorf("%w: refund without a captured charge", settlement.ErrGatewayUnavailable)
	}
	operation := &operations.CreateRefund{
		ChargeID: request.ExternalChargeID,
		Amount:   request.Amount,
	}
	refund := &omise.Refund{}
	err := gateway.do(ctx, "refund", request.IdempotencyToken, func(client *omise.Client) error {
		return client.Do(refund, operation)
	})
	if err != nil {
		return settlement.RefundResult{}, err
	}
	return settlement.RefundResult{ExternalRefundID: refund.ID}, nil
}

func (gateway *Gateway) account(accounts map[string]string, partyID string) string {
	if account, ok := accounts[partyID]; ok {
		return account
	}
	return partyID
}

// do runs one API operation with the idempotency key attached, retrying
// transport failures and 5xx/429 responses with exponential backoff.
func (gateway *Gateway) do(ctx context.Context, name string, idempotencyToken string, call func(client *omise.Client) error) error {
	callClient := *gateway.client
	callClient.WithContext(ctx)
	if idempotencyToken != "" {
		callClient.WithCustomHeaders(map[string]string{idempotencyHeader: idempotencyToken})
	}

	exponential := backoff.NewExponentialBackOff()
	exponential.InitialInterval = gateway.initialBackoff
	exponential.MaxInterval = gateway.maxBackoff

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		callErr := call(&callClient)
		if callErr == nil {
			return struct{}{}, nil
		}
		if ctx.Err() != nil {
			return struct{}{}, backoff.Permanent(ctx.Err())
		}
		if !isRetryable(callErr) {
			return struct{}{}, backoff.Permanent(callErr)
		}
		return struct{}{}, callErr
	},
		backoff.WithBackOff(exponential),
		backoff.WithMaxTries(uint(gateway.maxAttempts)),
		backoff.WithNotify(func(retryErr error, wait time.Duration) {
			gateway.logger.Warn("omise call failed; retrying",
				zap.String("operation", name),
				zap.String("idempotency_token", idempotencyToken),
				zap.Duration("wait", wait),
				zap.Error(retryErr),
			)
		}),
	)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	var apiErr *omise.Error
	if errors.As(err, &apiErr) && name == "charge" && isDecline(apiErr) {
		return fmt.Errorf("%w: %w", settlement.ErrPaymentDeclined, apiErr)
	}
	return fmt.Errorf("%w: omise %s: %w", settlement.ErrGatewayUnavailable, name, err)
}

func isRetryable(err error) bool {
	var apiErr *omise.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= http.StatusInternalServerError
	}
	var internalErr omise.ErrInternal
	if errors.Is(err, omise.ErrInvalidKey) || errors.As(err, &internalErr) {
		return false
	}
	return true
}

// isDecline reports a 4xx answer other than rate limiting.
func isDecline(apiErr *omise.Error) bool {
	return apiErr.StatusCode >= http.StatusBadRequest && apiErr.StatusCode < http.StatusInternalServerError && apiErr.StatusCode != http.StatusTooManyRequests
}
