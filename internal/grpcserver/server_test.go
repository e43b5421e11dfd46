package grpcserver

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tyemirov/tauth/pkg/sessionvalidator"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/proto"

	settlementv1 "github.com/MarkoPoloResearchLab/settlement/api/settlement/v1"
	"github.com/MarkoPoloResearchLab/settlement/internal/gateway/sandbox"
	"github.com/MarkoPoloResearchLab/settlement/internal/store/memstore"
	"github.com/MarkoPoloResearchLab/settlement/pkg/settlement"
)

const (
	bufconnSize    = 1 << 20
	testSigningKey = "secret-key"
	testIssuer     = "tauth"
	testOperatorID = "ops-1"
)

type testClock struct {
	mutex sync.Mutex
	now   time.Time
}

func newTestClock(now time.Time) *testClock {
	return &testClock{now: now}
}

func (clock *testClock) Now() time.Time {
	clock.mutex.Lock()
	defer clock.mutex.Unlock()
	return clock.now
}

func (clock *testClock) Advance(duration time.Duration) {
	clock.mutex.Lock()
	defer clock.mutex.Unlock()
	clock.now = clock.now.Add(duration)
}

func startSettlementClient(test *testing.T, clock *testClock) (settlementv1.SettlementServiceClient, *grpc.ClientConn) {
	test.Helper()
	service, err := settlement.NewService(memstore.New(), sandbox.New(), clock.Now)
	if err != nil {
		test.Fatalf("service init failed: %v", err)
	}
	authenticator, err := NewAuthenticator([]byte(testSigningKey), testIssuer, []string{testOperatorID})
	if err != nil {
		test.Fatalf("authenticator init failed: %v", err)
	}

	listener := bufconn.Listen(bufconnSize)
	grpcServer := NewServer(NewSettlementServer(service, clock.Now), authenticator, zap.NewNop())
	go func() {
		if serveErr := grpcServer.Serve(listener); serveErr != nil {
			test.Logf("gRPC server error: %v", serveErr)
		}
	}()

	dialer := func(ctx context.Context, _ string) (net.Conn, error) {
		return listener.Dial()
	}
	conn, err := grpc.NewClient("passthrough:///bufnet", grpc.WithContextDialer(dialer), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		test.Fatalf("gRPC client init failed: %v", err)
	}
	conn.Connect()
	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	if err := waitForClientReady(waitCtx, conn); err != nil {
		test.Fatalf("gRPC client failed to connect: %v", err)
	}
	test.Cleanup(func() {
		grpcServer.Stop()
		_ = conn.Close()
	})
	return settlementv1.NewSettlementServiceClient(conn), conn
}

func waitForClientReady(ctx context.Context, conn *grpc.ClientConn) error {
	for {
		state := conn.GetState()
		if state == connectivity.Ready {
			return nil
		}
		if state == connectivity.Shutdown {
			return errors.New("grpc connection shutdown before ready")
		}
		if !conn.WaitForStateChange(ctx, state) {
			return ctx.Err()
		}
	}
}

func signToken(test *testing.T, userID string, issuer string) string {
	test.Helper()
	claims := &sessionvalidator.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSigningKey))
	if err != nil {
		test.Fatalf("token signing failed: %v", err)
	}
	return signed
}

func as(test *testing.T, userID string) context.Context {
	test.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	test.Cleanup(cancel)
	return WithBearerToken(ctx, signToken(test, userID, testIssuer))
}

func requireCode(test *testing.T, err error, wantCode codes.Code, wantMessage string) {
	test.Helper()
	statusInfo, ok := status.FromError(err)
	if !ok {
		test.Fatalf("expected gRPC status, got %v", err)
	}
	if statusInfo.Code() != wantCode || statusInfo.Message() != wantMessage {
		test.Fatalf("expected %s/%s, got %s/%s", wantCode, wantMessage, statusInfo.Code(), statusInfo.Message())
	}
}

func TestSettlementServiceLifecycle(test *testing.T) {
	test.Parallel()
	clock := newTestClock(time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC))
	client, _ := startSettlementClient(test, clock)

	created, err := client.CreateBooking(as(test, "customer-1"), &settlementv1.CreateBookingRequest{
		Vertical:       "sitting",
		ProviderId:     "provider-1",
		CustomerId:     "customer-1",
		Units:          "2",
		IdempotencyKey: "sit-grpc-1",
	})
	if err != nil {
		test.Fatalf("create booking: %v", err)
	}
	if created.GetBooking().GetState() != string(settlement.StateHeld) || created.GetBooking().GetPricing().GetBaseAmount() != 12000 {
		test.Fatalf("unexpected booking %+v", created.Booking)
	}
	if created.Booking.HoldExpiresAtUnixUtc != clock.Now().Add(72*time.Hour).Unix() {
		test.Fatalf("unexpected hold expiry %d", created.Booking.HoldExpiresAtUnixUtc)
	}

	_, err = client.ReleaseExpiredHold(as(test, "customer-1"), &settlementv1.BookingRequest{BookingId: "sit-grpc-1"})
	requireCode(test, err, codes.PermissionDenied, errorForbidden)

	_, err = client.ReleaseExpiredHold(as(test, testOperatorID), &settlementv1.BookingRequest{BookingId: "sit-grpc-1"})
	requireCode(test, err, codes.FailedPrecondition, errorHoldActive)

	clock.Advance(73 * time.Hour)
	released, err := client.ReleaseExpiredHold(as(test, testOperatorID), &settlementv1.BookingRequest{BookingId: "sit-grpc-1"})
	if err != nil {
		test.Fatalf("release: %v", err)
	}
	if released.Booking.State != string(settlement.StateReleased) {
		test.Fatalf("expected released, got %s", released.Booking.State)
	}

	entries, err := client.ListEntries(as(test, "provider-1"), &settlementv1.BookingRequest{BookingId: "sit-grpc-1"})
	if err != nil {
		test.Fatalf("list entries: %v", err)
	}
	if entries.Balance != 0 {
		test.Fatalf("expected a settled booking to balance to zero, got %d", entries.Balance)
	}

	listed, err := client.ListProviderBookings(as(test, "provider-1"), &settlementv1.ListProviderBookingsRequest{ProviderId: "provider-1", States: []string{"released"}})
	if err != nil {
		test.Fatalf("list provider bookings: %v", err)
	}
	if len(listed.Bookings) != 1 || listed.Bookings[0].BookingId != "sit-grpc-1" {
		test.Fatalf("unexpected provider bookings %+v", listed.Bookings)
	}

	_, err = client.CancelBooking(as(test, "customer-1"), &settlementv1.BookingRequest{BookingId: "sit-grpc-1"})
	requireCode(test, err, codes.FailedPrecondition, errorInvalidTransition)
}

func TestCreateBookingChargesAuthoritativeTotalOverAdvisory(test *testing.T) {
	test.Parallel()
	clock := newTestClock(time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC))
	client, _ := startSettlementClient(test, clock)

	request := &settlementv1.CreateBookingRequest{
		Vertical:       "sitting",
		ProviderId:     "provider-1",
		CustomerId:     "customer-1",
		Units:          "2",
		IdempotencyKey: "sit-grpc-advisory",
		AdvisoryTotal:  proto.Int64(1),
	}
	wire, err := proto.Marshal(request)
	if err != nil {
		test.Fatalf("marshal request: %v", err)
	}
	decoded := &settlementv1.CreateBookingRequest{}
	if err := proto.Unmarshal(wire, decoded); err != nil {
		test.Fatalf("unmarshal request: %v", err)
	}
	if !proto.Equal(request, decoded) || decoded.AdvisoryTotal == nil {
		test.Fatalf("advisory total lost on the wire: %v", decoded)
	}

	created, err := client.CreateBooking(as(test, "customer-1"), request)
	if err != nil {
		test.Fatalf("create booking: %v", err)
	}
	pricingMessage := created.GetBooking().GetPricing()
	if pricingMessage.GetTotalCharged() == 1 || pricingMessage.GetTotalCharged() != pricingMessage.GetBaseAmount()+pricingMessage.GetCommissionAmount()+pricingMessage.GetTaxAmount() {
		test.Fatalf("expected the authoritative total, got %v", pricingMessage)
	}
	if pricingMessage.GetCurrency() == "" || pricingMessage.GetUnits() != "2" {
		test.Fatalf("unexpected pricing %v", pricingMessage)
	}
}

func TestSettlementServiceRejectsInvalidCalls(test *testing.T) {
	test.Parallel()
	clock := newTestClock(time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC))
	client, _ := startSettlementClient(test, clock)

	unauthenticated, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := client.GetBooking(unauthenticated, &settlementv1.BookingRequest{BookingId: "any"})
	requireCode(test, err, codes.Unauthenticated, errorUnauthenticated)

	wrongIssuer := WithBearerToken(unauthenticated, signToken(test, "customer-1", "someone-else"))
	_, err = client.GetBooking(wrongIssuer, &settlementv1.BookingRequest{BookingId: "any"})
	requireCode(test, err, codes.Unauthenticated, errorUnauthenticated)

	_, err = client.GetBooking(as(test, "customer-1"), &settlementv1.BookingRequest{BookingId: "missing"})
	requireCode(test, err, codes.NotFound, errorUnknownBooking)

	_, err = client.GetBooking(as(test, "customer-1"), &settlementv1.BookingRequest{BookingId: ""})
	requireCode(test, err, codes.InvalidArgument, errorInvalidBookingID)

	_, err = client.CreateBooking(as(test, "customer-1"), &settlementv1.CreateBookingRequest{Vertical: "walk", ProviderId: "provider-1", CustomerId: "customer-1", Units: "many"})
	requireCode(test, err, codes.InvalidArgument, errorInvalidUnits)

	_, err = client.CreateBooking(as(test, "customer-1"), &settlementv1.CreateBookingRequest{Vertical: "walk", ProviderId: "provider-1", CustomerId: "customer-1", Units: "0"})
	requireCode(test, err, codes.InvalidArgument, errorInvalidPricingInput)

	_, err = client.ListProviderBookings(as(test, "customer-1"), &settlementv1.ListProviderBookingsRequest{ProviderId: "provider-1"})
	requireCode(test, err, codes.PermissionDenied, errorForbidden)

	_, err = client.ListProviderBookings(as(test, "provider-1"), &settlementv1.ListProviderBookingsRequest{ProviderId: "provider-1", States: []string{"lost"}})
	requireCode(test, err, codes.InvalidArgument, errorInvalidState)
}

func TestHealthCheckSkipsAuthentication(test *testing.T) {
	test.Parallel()
	clock := newTestClock(time.Now().UTC())
	_, conn := startSettlementClient(test, clock)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	response, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		test.Fatalf("health check: %v", err)
	}
	if response.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		test.Fatalf("expected SERVING, got %s", response.GetStatus())
	}
}

func TestMapToGRPCErrorFallsBackToInternal(test *testing.T) {
	test.Parallel()
	testCases := []struct {
		err         error
		wantCode    codes.Code
		wantMessage string
	}{
		{err: settlement.WrapError("raise_dispute", "reason", "empty", settlement.ErrInvalidRequest), wantCode: codes.InvalidArgument, wantMessage: errorInvalidRequest},
		{err: settlement.ErrConflict, wantCode: codes.Aborted, wantMessage: errorConflict},
		{err: errors.Join(settlement.ErrLedgerUnavailable, errors.New("dial tcp")), wantCode: codes.Unavailable, wantMessage: errorLedgerUnavailable},
		{err: settlement.ErrPaymentDeclined, wantCode: codes.FailedPrecondition, wantMessage: errorPaymentDeclined},
		{err: errors.New("boom"), wantCode: codes.Internal, wantMessage: "boom"},
	}
	for _, testCase := range testCases {
		requireCode(test, mapToGRPCError(testCase.err), testCase.wantCode, testCase.wantMessage)
	}
}
