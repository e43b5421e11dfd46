package grpcserver

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	settlementv1 "github.com/MarkoPoloResearchLab/settlement/api/settlement/v1"
)

// NewServer returns a grpc.Server with the settlement and health services
// registered behind authentication and request logging.
func NewServer(implementation settlementv1.SettlementServiceServer, authenticator *Authenticator, logger *zap.Logger) *grpc.Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(
		loggingInterceptor(logger),
		authenticator.UnaryInterceptor(),
	))
	settlementv1.RegisterSettlementServiceServer(grpcServer, implementation)
	healthServer := health.NewServer()
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	return grpcServer
}

func loggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, request any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		startedAt := time.Now()
		response, err := handler(ctx, request)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.Duration("duration", time.Since(startedAt)),
			zap.String("code", status.Code(err).String()),
		}
		if err != nil {
			logger.Debug("grpc call failed", append(fields, zap.Error(err))...)
			return response, err
		}
		logger.Debug("grpc call", fields...)
		return response, nil
	}
}
