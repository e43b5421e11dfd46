// Package grpcserver exposes the settlement service over gRPC.
package grpcserver

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	settlementv1 "github.com/MarkoPoloResearchLab/settlement/api/settlement/v1"
	"github.com/MarkoPoloResearchLab/settlement/pkg/settlement"
)

// ServiceName is the fully qualified gRPC service name.
var ServiceName = settlementv1.SettlementService_ServiceDesc.ServiceName

// BookingService is the subset of settlement.Service served over gRPC.
type BookingService interface {
	CreateBooking(ctx context.Context, actor settlement.Actor, request settlement.CreateBookingRequest) (settlement.Booking, error)
	CancelBooking(ctx context.Context, actor settlement.Actor, bookingID settlement.BookingID) (settlement.Booking, error)
	RaiseDispute(ctx context.Context, actor settlement.Actor, bookingID settlement.BookingID, reason string) (settlement.Booking, error)
	ConfirmCompletion(ctx context.Context, actor settlement.Actor, bookingID settlement.BookingID) (settlement.Booking, error)
	ResolveDispute(ctx context.Context, actor settlement.Actor, bookingID settlement.BookingID, resolution settlement.Resolution) (settlement.Booking, error)
	RecordServiceStart(ctx context.Context, actor settlement.Actor, bookingID settlement.BookingID, at time.Time) (settlement.Booking, error)
	RecordServiceEnd(ctx context.Context, actor settlement.Actor, bookingID settlement.BookingID, at time.Time) (settlement.Booking, error)
	ReleaseExpiredHold(ctx context.Context, bookingID settlement.BookingID) (settlement.Booking, error)
	GetBookingStatus(ctx context.Context, actor settlement.Actor, bookingID settlement.BookingID) (settlement.Booking, error)
	ListLedgerEntries(ctx context.Context, actor settlement.Actor, bookingID settlement.BookingID) ([]settlement.LedgerEntry, error)
	ListProviderBookings(ctx context.Context, actor settlement.Actor, providerID string, states []settlement.State) ([]settlement.Booking, error)
}

var _ settlementv1.SettlementServiceServer = (*SettlementServer)(nil)

// SettlementServer adapts settlement.Service to settlementv1.SettlementServiceServer.
type SettlementServer struct {
	settlementv1.UnimplementedSettlementServiceServer
	service BookingService
	now     func() time.Time
}

// NewSettlementServer constructs the gRPC adapter.
func NewSettlementServer(service BookingService, now func() time.Time) *SettlementServer {
	if now == nil {
		now = time.Now
	}
	return &SettlementServer{service: service, now: now}
}

func (server *SettlementServer) CreateBooking(ctx context.Context, request *settlementv1.CreateBookingRequest) (*settlementv1.BookingResponse, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	units, err := decimal.NewFromString(strings.TrimSpace(request.Units))
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, errorInvalidUnits)
	}
	var scheduledStart *time.Time
	if request.ScheduledStartUnixUtc > 0 {
		start := time.Unix(request.ScheduledStartUnixUtc, 0).UTC()
		scheduledStart = &start
	}
	booking, err := server.service.CreateBooking(ctx, actor, settlement.CreateBookingRequest{
		Vertical:       settlement.Vertical(request.Vertical),
		ProviderID:     request.ProviderId,
		CustomerID:     request.CustomerId,
		Units:          units,
		IdempotencyKey: request.IdempotencyKey,
		ScheduledStart: scheduledStart,
		AdvisoryTotal:  request.AdvisoryTotal,
	})
	return bookingResponse(booking, err)
}

func (server *SettlementServer) GetBooking(ctx context.Context, request *settlementv1.BookingRequest) (*settlementv1.BookingResponse, error) {
	return server.bookingCall(ctx, request.BookingId, server.service.GetBookingStatus)
}

func (server *SettlementServer) CancelBooking(ctx context.Context, request *settlementv1.BookingRequest) (*settlementv1.BookingResponse, error) {
	return server.bookingCall(ctx, request.BookingId, server.service.CancelBooking)
}

func (server *SettlementServer) RaiseDispute(ctx context.Context, request *settlementv1.DisputeRequest) (*settlementv1.BookingResponse, error) {
	return server.bookingCall(ctx, request.BookingId, func(ctx context.Context, actor settlement.Actor, bookingID settlement.BookingID) (settlement.Booking, error) {
		return server.service.RaiseDispute(ctx, actor, bookingID, request.Reason)
	})
}

func (server *SettlementServer) ConfirmCompletion(ctx context.Context, request *settlementv1.BookingRequest) (*settlementv1.BookingResponse, error) {
	return server.bookingCall(ctx, request.BookingId, server.service.ConfirmCompletion)
}

func (server *SettlementServer) ResolveDispute(ctx context.Context, request *settlementv1.ResolveRequest) (*settlementv1.BookingResponse, error) {
	return server.bookingCall(ctx, request.BookingId, func(ctx context.Context, actor settlement.Actor, bookingID settlement.BookingID) (settlement.Booking, error) {
		return server.service.ResolveDispute(ctx, actor, bookingID, settlement.Resolution(request.Resolution))
	})
}

func (server *SettlementServer) RecordServiceStart(ctx context.Context, request *settlementv1.ServiceTimeRequest) (*settlementv1.BookingResponse, error) {
	at := server.serviceTime(request.AtUnixUtc)
	return server.bookingCall(ctx, request.BookingId, func(ctx context.Context, actor settlement.Actor, bookingID settlement.BookingID) (settlement.Booking, error) {
		return server.service.RecordServiceStart(ctx, actor, bookingID, at)
	})
}

func (server *SettlementServer) RecordServiceEnd(ctx context.Context, request *settlementv1.ServiceTimeRequest) (*settlementv1.BookingResponse, error) {
	at := server.serviceTime(request.AtUnixUtc)
	return server.bookingCall(ctx, request.BookingId, func(ctx context.Context, actor settlement.Actor, bookingID settlement.BookingID) (settlement.Booking, error) {
		return server.service.RecordServiceEnd(ctx, actor, bookingID, at)
	})
}

// ReleaseExpiredHold lets an operator trigger the release timer by hand.
func (server *SettlementServer) ReleaseExpiredHold(ctx context.Context, request *settlementv1.BookingRequest) (*settlementv1.BookingResponse, error) {
	return server.bookingCall(ctx, request.BookingId, func(ctx context.Context, actor settlement.Actor, bookingID settlement.BookingID) (settlement.Booking, error) {
		if !actor.Operator {
			return settlement.Booking{}, settlement.WrapError("release_expired_hold", "actor", "forbidden", settlement.ErrForbidden)
		}
		return server.service.ReleaseExpiredHold(ctx, bookingID)
	})
}

func (server *SettlementServer) ListEntries(ctx context.Context, request *settlementv1.BookingRequest) (*settlementv1.ListEntriesResponse, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	bookingID, err := settlement.NewBookingID(request.BookingId)
	if err != nil {
		return nil, mapToGRPCError(err)
	}
	entries, err := server.service.ListLedgerEntries(ctx, actor, bookingID)
	if err != nil {
		return nil, mapToGRPCError(err)
	}
	response := &settlementv1.ListEntriesResponse{Entries: make([]*settlementv1.Entry, 0, len(entries)), Balance: settlement.SumEntries(entries)}
	for _, entry := range entries {
		response.Entries = append(response.Entries, newEntryMessage(entry))
	}
	return response, nil
}

func (server *SettlementServer) ListProviderBookings(ctx context.Context, request *settlementv1.ListProviderBookingsRequest) (*settlementv1.ListBookingsResponse, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	states := make([]settlement.State, 0, len(request.States))
	for _, rawState := range request.States {
		state, err := settlement.ParseState(rawState)
		if err != nil {
			return nil, mapToGRPCError(err)
		}
		states = append(states, state)
	}
	bookings, err := server.service.ListProviderBookings(ctx, actor, request.ProviderId, states)
	if err != nil {
		return nil, mapToGRPCError(err)
	}
	response := &settlementv1.ListBookingsResponse{Bookings: make([]*settlementv1.Booking, 0, len(bookings))}
	for _, booking := range bookings {
		response.Bookings = append(response.Bookings, newBookingMessage(booking))
	}
	return response, nil
}

func (server *SettlementServer) bookingCall(ctx context.Context, rawBookingID string, call func(context.Context, settlement.Actor, settlement.BookingID) (settlement.Booking, error)) (*settlementv1.BookingResponse, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	bookingID, err := settlement.NewBookingID(rawBookingID)
	if err != nil {
		return nil, mapToGRPCError(err)
	}
	return bookingResponse(call(ctx, actor, bookingID))
}

func (server *SettlementServer) serviceTime(atUnixUTC int64) time.Time {
	if atUnixUTC <= 0 {
		return server.now().UTC()
	}
	return time.Unix(atUnixUTC, 0).UTC()
}

func bookingResponse(booking settlement.Booking, err error) (*settlementv1.BookingResponse, error) {
	if err != nil {
		return nil, mapToGRPCError(err)
	}
	return &settlementv1.BookingResponse{Booking: newBookingMessage(booking)}, nil
}
