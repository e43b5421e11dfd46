// Package httpapi exposes the settlement service as a JSON API behind tauth
// session cookies.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/tyemirov/tauth/pkg/sessionvalidator"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/settlement/pkg/settlement"
)

const (
	claimsContextKey     = "auth_claims"
	idempotencyKeyHeader = "Idempotency-Key"
	shutdownTimeout      = 5 * time.Second
)

// BookingService is the subset of settlement.Service served over HTTP.
type BookingService interface {
	CreateBooking(ctx context.Context, actor settlement.Actor, request settlement.CreateBookingRequest) (settlement.Booking, error)
	CancelBooking(ctx context.Context, actor settlement.Actor, bookingID settlement.BookingID) (settlement.Booking, error)
	RaiseDispute(ctx context.Context, actor settlement.Actor, bookingID settlement.BookingID, reason string) (settlement.Booking, error)
	ConfirmCompletion(ctx context.Context, actor settlement.Actor, bookingID settlement.BookingID) (settlement.Booking, error)
	ResolveDispute(ctx context.Context, actor settlement.Actor, bookingID settlement.BookingID, resolution settlement.Resolution) (settlement.Booking, error)
	RecordServiceStart(ctx context.Context, actor settlement.Actor, bookingID settlement.BookingID, at time.Time) (settlement.Booking, error)
	RecordServiceEnd(ctx context.Context, actor settlement.Actor, bookingID settlement.BookingID, at time.Time) (settlement.Booking, error)
	GetBookingStatus(ctx context.Context, actor settlement.Actor, bookingID settlement.BookingID) (settlement.Booking, error)
	ListLedgerEntries(ctx context.Context, actor settlement.Actor, bookingID settlement.BookingID) ([]settlement.LedgerEntry, error)
	ListProviderBookings(ctx context.Context, actor settlement.Actor, providerID string, states []settlement.State) ([]settlement.Booking, error)
}

// Config configures the HTTP surface.
type Config struct {
	ListenAddr     string
	AllowedOrigins []string
	OperatorIDs    []string
	RequestTimeout time.Duration
}

// Server owns the router and the listening http.Server.
type Server struct {
	logger *zap.Logger
	cfg    Config
	router *gin.Engine
}

// NewServer builds the router. The validator authenticates every /api route.
func NewServer(cfg Config, service BookingService, validator *sessionvalidator.Validator, logger *zap.Logger, now func() time.Time) (*Server, error) {
	if service == nil {
		return nil, errors.New("booking service is required")
	}
	if validator == nil {
		return nil, errors.New("session validator is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	operators := make(map[string]struct{}, len(cfg.OperatorIDs))
	for _, operatorID := range cfg.OperatorIDs {
		operators[operatorID] = struct{}{}
	}
	handler := &httpHandler{
		logger:    logger,
		service:   service,
		operators: operators,
		timeout:   cfg.RequestTimeout,
		now:       now,
	}
	return &Server{
		logger: logger,
		cfg:    cfg,
		router: setupRouter(cfg, handler, validator.GinMiddleware(claimsContextKey)),
	}, nil
}

// Handler returns the HTTP handler.
func (server *Server) Handler() http.Handler {
	return server.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (server *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    server.cfg.ListenAddr,
		Handler: server.router,
	}

	errCh := make(chan error, 1)
	go func() {
		server.logger.Info("http api listening", zap.String("addr", server.cfg.ListenAddr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
			server.logger.Warn("server shutdown error", zap.Error(shutdownErr))
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http api: %w", err)
	}
}

func setupRouter(cfg Config, handler *httpHandler, authMiddleware gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Origin", "Accept", idempotencyKeyHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.Use(authMiddleware)

	api.POST("/bookings", handler.handleCreate)
	api.GET("/bookings/:id", handler.handleGet)
	api.GET("/bookings/:id/entries", handler.handleEntries)
	api.POST("/bookings/:id/cancel", handler.handleCancel)
	api.POST("/bookings/:id/dispute", handler.handleDispute)
	api.POST("/bookings/:id/complete", handler.handleComplete)
	api.POST("/bookings/:id/resolve", handler.handleResolve)
	api.POST("/bookings/:id/service-start", handler.handleServiceStart)
	api.POST("/bookings/:id/service-end", handler.handleServiceEnd)
	api.GET("/providers/:id/bookings", handler.handleProviderBookings)

	return router
}

type httpHandler struct {
	logger    *zap.Logger
	service   BookingService
	operators map[string]struct{}
	timeout   time.Duration
	now       func() time.Time
}

func (handler *httpHandler) handleCreate(ctx *gin.Context) {
	actor, ok := handler.actor(ctx)
	if !ok {
		return
	}
	var request createBookingRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}
	createRequest, err := request.toServiceRequest(ctx.GetHeader(idempotencyKeyHeader))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", err.Error()))
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	booking, err := handler.service.CreateBooking(requestCtx, actor, createRequest)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"booking": newBookingPayload(booking)})
}

func (handler *httpHandler) handleGet(ctx *gin.Context) {
	handler.respondBooking(ctx, handler.service.GetBookingStatus)
}

func (handler *httpHandler) handleEntries(ctx *gin.Context) {
	actor, ok := handler.actor(ctx)
	if !ok {
		return
	}
	bookingID, ok := bookingIDParam(ctx)
	if !ok {
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	entries, err := handler.service.ListLedgerEntries(requestCtx, actor, bookingID)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	payload := make([]entryPayload, 0, len(entries))
	for _, entry := range entries {
		payload = append(payload, newEntryPayload(entry))
	}
	ctx.JSON(http.StatusOK, gin.H{"entries": payload, "balance": settlement.SumEntries(entries)})
}

func (handler *httpHandler) handleCancel(ctx *gin.Context) {
	handler.respondBooking(ctx, handler.service.CancelBooking)
}

func (handler *httpHandler) handleComplete(ctx *gin.Context) {
	handler.respondBooking(ctx, handler.service.ConfirmCompletion)
}

func (handler *httpHandler) handleDispute(ctx *gin.Context) {
	var request disputeRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}
	handler.respondBooking(ctx, func(requestCtx context.Context, actor settlement.Actor, bookingID settlement.BookingID) (settlement.Booking, error) {
		return handler.service.RaiseDispute(requestCtx, actor, bookingID, request.Reason)
	})
}

func (handler *httpHandler) handleResolve(ctx *gin.Context) {
	var request resolveRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}
	handler.respondBooking(ctx, func(requestCtx context.Context, actor settlement.Actor, bookingID settlement.BookingID) (settlement.Booking, error) {
		return handler.service.ResolveDispute(requestCtx, actor, bookingID, settlement.Resolution(request.Resolution))
	})
}

func (handler *httpHandler) handleServiceStart(ctx *gin.Context) {
	at, ok := handler.bindServiceTime(ctx)
	if !ok {
		return
	}
	handler.respondBooking(ctx, func(requestCtx context.Context, actor settlement.Actor, bookingID settlement.BookingID) (settlement.Booking, error) {
		return handler.service.RecordServiceStart(requestCtx, actor, bookingID, at)
	})
}

func (handler *httpHandler) handleServiceEnd(ctx *gin.Context) {
	at, ok := handler.bindServiceTime(ctx)
	if !ok {
		return
	}
	handler.respondBooking(ctx, func(requestCtx context.Context, actor settlement.Actor, bookingID settlement.BookingID) (settlement.Booking, error) {
		return handler.service.RecordServiceEnd(requestCtx, actor, bookingID, at)
	})
}

func (handler *httpHandler) handleProviderBookings(ctx *gin.Context) {
	actor, ok := handler.actor(ctx)
	if !ok {
		return
	}
	states, err := parseStates(ctx.QueryArray("state"))
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	bookings, err := handler.service.ListProviderBookings(requestCtx, actor, ctx.Param("id"), states)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	payload := make([]bookingPayload, 0, len(bookings))
	for _, booking := range bookings {
		payload = append(payload, newBookingPayload(booking))
	}
	ctx.JSON(http.StatusOK, gin.H{"bookings": payload})
}

type bookingCall func(ctx context.Context, actor settlement.Actor, bookingID settlement.BookingID) (settlement.Booking, error)

func (handler *httpHandler) respondBooking(ctx *gin.Context, call bookingCall) {
	actor, ok := handler.actor(ctx)
	if !ok {
		return
	}
	bookingID, ok := bookingIDParam(ctx)
	if !ok {
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	booking, err := call(requestCtx, actor, bookingID)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"booking": newBookingPayload(booking)})
}

func (handler *httpHandler) bindServiceTime(ctx *gin.Context) (time.Time, bool) {
	var request serviceTimeRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&request); err != nil {
			ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
			return time.Time{}, false
		}
	}
	if request.At == nil {
		return handler.now().UTC(), true
	}
	return request.At.UTC(), true
}

func (handler *httpHandler) actor(ctx *gin.Context) (settlement.Actor, bool) {
	claims := getClaims(ctx)
	if claims == nil {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing session"))
		return settlement.Actor{}, false
	}
	userID := claims.GetUserID()
	_, operator := handler.operators[userID]
	actor, err := settlement.NewActor(userID, operator)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "session has no user"))
		return settlement.Actor{}, false
	}
	return actor, true
}

func (handler *httpHandler) requestContext(ctx *gin.Context) (context.Context, context.CancelFunc) {
	if handler.timeout <= 0 {
		return context.WithCancel(ctx.Request.Context())
	}
	return context.WithTimeout(ctx.Request.Context(), handler.timeout)
}

func (handler *httpHandler) respondError(ctx *gin.Context, err error) {
	statusCode, code := classifyError(err)
	if statusCode >= http.StatusInternalServerError {
		handler.logger.Error("settlement request failed",
			zap.String("path", ctx.FullPath()),
			zap.String("code", code),
			zap.Error(err))
	}
	ctx.JSON(statusCode, errorResponse(code, err.Error()))
}

func bookingIDParam(ctx *gin.Context) (settlement.BookingID, bool) {
	bookingID, err := settlement.NewBookingID(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_booking_id", err.Error()))
		return settlement.BookingID{}, false
	}
	return bookingID, true
}

func parseStates(rawStates []string) ([]settlement.State, error) {
	var states []settlement.State
	for _, raw := range rawStates {
		for _, part := range strings.Split(raw, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			state, err := settlement.ParseState(part)
			if err != nil {
				return nil, err
			}
			states = append(states, state)
		}
	}
	return states, nil
}

func getClaims(ctx *gin.Context) *sessionvalidator.Claims {
	claimsValue, ok := ctx.Get(claimsContextKey)
	if !ok {
		return nil
	}
	claims, _ := claimsValue.(*sessionvalidator.Claims)
	return claims
}

func errorResponse(code string, message string) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}
