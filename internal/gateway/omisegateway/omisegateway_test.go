package omisegateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/omise/omise-go"

	"github.com/MarkoPoloResearchLab/settlement/pkg/settlement"
)

type scriptedResponse struct {
	status int
	body   string
}

type recordedRequest struct {
	path           string
	idempotencyKey string
	body           string
}

type fakeOmise struct {
	mutex     sync.Mutex
	responses map[string][]scriptedResponse
	requests  []recordedRequest
}

func (server *fakeOmise) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	body, _ := io.ReadAll(request.Body)
	server.mutex.Lock()
	server.requests = append(server.requests, recordedRequest{
		path:           request.URL.Path,
		idempotencyKey: request.Header.Get(idempotencyHeader),
		body:           string(body),
	})
	response := scriptedResponse{status: http.StatusNotFound, body: `{"object":"error","code":"not_found","message":"unscripted"}`}
	if queued := server.responses[request.URL.Path]; len(queued) > 0 {
		response = queued[0]
		server.responses[request.URL.Path] = queued[1:]
	}
	server.mutex.Unlock()
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(response.status)
	_, _ = writer.Write([]byte(response.body))
}

func (server *fakeOmise) recorded() []recordedRequest {
	server.mutex.Lock()
	defer server.mutex.Unlock()
	return append([]recordedRequest(nil), server.requests...)
}

type countingTransport struct {
	calls atomic.Int32
}

func (transport *countingTransport) RoundTrip(request *http.Request) (*http.Response, error) {
	transport.calls.Add(1)
	return http.DefaultTransport.RoundTrip(request)
}

func newTestGateway(test *testing.T, responses map[string][]scriptedResponse, options ...Option) (*Gateway, *fakeOmise) {
	test.Helper()
	fake := &fakeOmise{responses: responses}
	server := httptest.NewServer(fake)
	test.Cleanup(server.Close)
	options = append([]Option{
		WithAPIEndpoint(server.URL),
		WithRetry(3, time.Millisecond, 2*time.Millisecond),
	}, options...)
	gateway, err := New("pkey_test_1", "skey_test_1", options...)
	if err != nil {
		test.Fatalf("new gateway: %v", err)
	}
	return gateway, fake
}

func TestChargeSendsIdempotencyKeyAndCustomer(test *testing.T) {
	test.Parallel()
	gateway, fake := newTestGateway(test, map[string][]scriptedResponse{
		"/charges": {{status: http.StatusOK, body: `{"object":"charge","id":"chrg_test_1","status":"successful","amount":18540,"currency":"thb"}`}},
	}, WithCustomerAccounts(map[string]string{"customer-1": "cust_test_1"}))

	result, err := gateway.Charge(context.Background(), settlement.ChargeRequest{
		BookingID:        "walk-1",
		CustomerID:       "customer-1",
		Amount:           18540,
		Currency:         "thb",
		IdempotencyToken: "walk-1:charge",
		Metadata:         map[string]string{"booking_id": "walk-1"},
	})
	if err != nil {
		test.Fatalf("charge: %v", err)
	}
	if result.ExternalChargeID != "chrg_test_1" {
		test.Fatalf("unexpected charge id %q", result.ExternalChargeID)
	}
	requests := fake.recorded()
	if len(requests) != 1 || requests[0].idempotencyKey != "walk-1:charge" {
		test.Fatalf("unexpected requests: %+v", requests)
	}
	if !strings.Contains(requests[0].body, "cust_test_1") || !strings.Contains(requests[0].body, "18540") {
		test.Fatalf("unexpected charge body: %s", requests[0].body)
	}
}

func TestChargeFailedStatusIsDecline(test *testing.T) {
	test.Parallel()
	gateway, _ := newTestGateway(test, map[string][]scriptedResponse{
		"/charges": {{status: http.StatusOK, body: `{"object":"charge","id":"chrg_test_2","status":"failed"}`}},
	})
	_, err := gateway.Charge(context.Background(), settlement.ChargeRequest{CustomerID: "customer-2", Amount: 100, Currency: "thb", IdempotencyToken: "b:charge"})
	if !errors.Is(err, settlement.ErrPaymentDeclined) {
		test.Fatalf("expected ErrPaymentDeclined, got %v", err)
	}
}

func TestChargeClientErrorIsDeclineWithoutRetry(test *testing.T) {
	test.Parallel()
	gateway, fake := newTestGateway(test, map[string][]scriptedResponse{
		"/charges": {{status: http.StatusBadRequest, body: `{"object":"error","code":"invalid_card","message":"card was declined"}`}},
	})
	_, err := gateway.Charge(context.Background(), settlement.ChargeRequest{CustomerID: "customer-3", Amount: 100, Currency: "thb", IdempotencyToken: "c:charge"})
	if !errors.Is(err, settlement.ErrPaymentDeclined) {
		test.Fatalf("expected ErrPaymentDeclined, got %v", err)
	}
	if calls := len(fake.recorded()); calls != 1 {
		test.Fatalf("expected a single attempt, got %d", calls)
	}
	var apiErr *omise.Error
	if !errors.As(err, &apiErr) || apiErr.Code != "invalid_card" || apiErr.StatusCode != http.StatusBadRequest {
		test.Fatalf("expected the omise error to be preserved, got %v", err)
	}
}

func TestPayoutClientErrorIsUnavailableNotDecline(test *testing.T) {
	test.Parallel()
	gateway, fake := newTestGateway(test, map[string][]scriptedResponse{
		"/transfers": {{status: http.StatusBadRequest, body: `{"object":"error","code":"insufficient_fund","message":"balance too low"}`}},
	})
	_, err := gateway.Payout(context.Background(), settlement.PayoutRequest{ProviderID: "provider-9", Amount: 100, Currency: "thb", IdempotencyToken: "e:payout"})
	if !errors.Is(err, settlement.ErrGatewayUnavailable) || errors.Is(err, settlement.ErrPaymentDeclined) {
		test.Fatalf("expected ErrGatewayUnavailable, got %v", err)
	}
	if calls := len(fake.recorded()); calls != 1 {
		test.Fatalf("expected a single attempt, got %d", calls)
	}
}

func TestCallContextBoundsInFlightRequest(test *testing.T) {
	test.Parallel()
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		select {
		case <-release:
		case <-request.Context().Done():
		}
	}))
	test.Cleanup(func() {
		close(release)
		server.Close()
	})
	gateway, err := New("pkey_test_1", "skey_test_1", WithAPIEndpoint(server.URL), WithRetry(3, time.Millisecond, 2*time.Millisecond))
	if err != nil {
		test.Fatalf("new gateway: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	startedAt := time.Now()
	_, err = gateway.Charge(ctx, settlement.ChargeRequest{CustomerID: "customer-5", Amount: 100, Currency: "thb", IdempotencyToken: "f:charge"})
	if !errors.Is(err, context.DeadlineExceeded) {
		test.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	if elapsed := time.Since(startedAt); elapsed > 2*time.Second {
		test.Fatalf("request outlived its context: %s", elapsed)
	}
}

func TestWithTransportCarriesCalls(test *testing.T) {
	test.Parallel()
	fake := &fakeOmise{responses: map[string][]scriptedResponse{
		"/transfers": {{status: http.StatusOK, body: `{"object":"transfer","id":"trsf_test_2","amount":100}`}},
	}}
	server := httptest.NewServer(fake)
	test.Cleanup(server.Close)
	transport := &countingTransport{}
	gateway, err := New("pkey_test_1", "skey_test_1", WithAPIEndpoint(server.URL), WithTransport(transport))
	if err != nil {
		test.Fatalf("new gateway: %v", err)
	}
	if _, err := gateway.Payout(context.Background(), settlement.PayoutRequest{ProviderID: "provider-1", Amount: 100, IdempotencyToken: "g:payout"}); err != nil {
		test.Fatalf("payout: %v", err)
	}
	if calls := transport.calls.Load(); calls != 1 {
		test.Fatalf("expected the custom transport to carry one call, got %d", calls)
	}
	if requests := fake.recorded(); len(requests) != 1 || requests[0].idempotencyKey != "g:payout" {
		test.Fatalf("unexpected requests: %+v", requests)
	}
}

func TestPayoutRetriesServerErrorsWithSameKey(test *testing.T) {
	test.Parallel()
	gateway, fake := newTestGateway(test, map[string][]scriptedResponse{
		"/transfers": {
			{status: http.StatusServiceUnavailable, body: `{"object":"error","code":"service_unavailable","message":"try again"}`},
			{status: http.StatusOK, body: `{"object":"transfer","id":"trsf_test_1","amount":15000}`},
		},
	}, WithRecipientAccounts(map[string]string{"provider-1": "recp_test_1"}))

	result, err := gateway.Payout(context.Background(), settlement.PayoutRequest{
		BookingID:        "walk-1",
		ProviderID:       "provider-1",
		Amount:           15000,
		Currency:         "thb",
		IdempotencyToken: "walk-1:payout",
	})
	if err != nil {
		test.Fatalf("payout: %v", err)
	}
	if result.ExternalPayoutID != "trsf_test_1" {
		test.Fatalf("unexpected payout id %q", result.ExternalPayoutID)
	}
	requests := fake.recorded()
	if len(requests) != 2 {
		test.Fatalf("expected two attempts, got %d", len(requests))
	}
	for _, request := range requests {
		if request.idempotencyKey != "walk-1:payout" {
			test.Fatalf("retry changed idempotency key: %+v", request)
		}
	}
}

func TestRefundExhaustedRetriesAreUnavailable(test *testing.T) {
	test.Parallel()
	failure := scriptedResponse{status: http.StatusBadGateway, body: `{"object":"error","code":"bad_gateway","message":"upstream"}`}
	gateway, fake := newTestGateway(test, map[string][]scriptedResponse{
		"/charges/chrg_test_1/refunds": {failure, failure, failure},
	})
	_, err := gateway.Refund(context.Background(), settlement.RefundRequest{
		ExternalChargeID: "chrg_test_1",
		Amount:           18540,
		IdempotencyToken: "walk-1:refund",
	})
	if !errors.Is(err, settlement.ErrGatewayUnavailable) {
		test.Fatalf("expected ErrGatewayUnavailable, got %v", err)
	}
	if calls := len(fake.recorded()); calls != 3 {
		test.Fatalf("expected three attempts, got %d", calls)
	}
}

func TestRefundRequiresCharge(test *testing.T) {
	test.Parallel()
	gateway, fake := newTestGateway(test, nil)
	if _, err := gateway.Refund(context.Background(), settlement.RefundRequest{Amount: 10}); !errors.Is(err, settlement.ErrGatewayUnavailable) {
		test.Fatalf("expected ErrGatewayUnavailable, got %v", err)
	}
	if calls := len(fake.recorded()); calls != 0 {
		test.Fatalf("expected no API calls, got %d", calls)
	}
}

func TestCancelledContextStopsCall(test *testing.T) {
	test.Parallel()
	gateway, _ := newTestGateway(test, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := gateway.Charge(ctx, settlement.ChargeRequest{CustomerID: "customer-4", Amount: 100, Currency: "thb", IdempotencyToken: "d:charge"})
	if !errors.Is(err, context.Canceled) {
		test.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewRequiresKeys(test *testing.T) {
	test.Parallel()
	if _, err := New("", "skey_test_1"); !errors.Is(err, ErrMissingCredentials) {
		test.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}
