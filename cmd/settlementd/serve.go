package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/tyemirov/tauth/pkg/sessionvalidator"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/MarkoPoloResearchLab/settlement/internal/config"
	"github.com/MarkoPoloResearchLab/settlement/internal/gateway/omisegateway"
	"github.com/MarkoPoloResearchLab/settlement/internal/gateway/sandbox"
	"github.com/MarkoPoloResearchLab/settlement/internal/grpcserver"
	"github.com/MarkoPoloResearchLab/settlement/internal/httpapi"
	"github.com/MarkoPoloResearchLab/settlement/internal/logging"
	"github.com/MarkoPoloResearchLab/settlement/internal/notify"
	"github.com/MarkoPoloResearchLab/settlement/internal/notify/amqpsink"
	"github.com/MarkoPoloResearchLab/settlement/internal/notify/kafkasink"
	"github.com/MarkoPoloResearchLab/settlement/internal/notify/receiptsink"
	"github.com/MarkoPoloResearchLab/settlement/internal/scheduler"
	"github.com/MarkoPoloResearchLab/settlement/internal/tracing"
	"github.com/MarkoPoloResearchLab/settlement/pkg/settlement"
)

const (
	serviceVersion  = "dev"
	shutdownTimeout = 10 * time.Second
)

// runtime holds the wired components and their release hooks.
type runtime struct {
	logger     *zap.Logger
	service    *settlement.Service
	scheduler  *scheduler.Scheduler
	dispatcher *notify.Dispatcher
	closers    []func() error
}

func (current *runtime) close() {
	for index := len(current.closers) - 1; index >= 0; index-- {
		if err := current.closers[index](); err != nil {
			current.logger.Warn("shutdown hook failed", zap.Error(err))
		}
	}
	_ = current.logger.Sync()
}

func buildRuntime(ctx context.Context, cfg config.Config) (*runtime, error) {
	logger, err := logging.New(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init: %w", err)
	}
	current := &runtime{logger: logger}
	built := false
	defer func() {
		if !built {
			current.close()
		}
	}()

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: serviceVersion,
		Environment:    cfg.Tracing.Environment,
		Endpoint:       cfg.Tracing.Endpoint,
		Insecure:       cfg.Tracing.Insecure,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing: %w", err)
	}
	current.closers = append(current.closers, func() error {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return shutdownTracing(shutdownCtx)
	})

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	current.closers = append(current.closers, closeStore)

	gateway, err := buildGateway(cfg, logger)
	if err != nil {
		return nil, err
	}

	sinks, err := current.buildSinks(cfg)
	if err != nil {
		return nil, err
	}
	current.dispatcher, err = notify.NewDispatcher(logger, sinks, notify.WithQueueSize(cfg.Notify.QueueSize))
	if err != nil {
		return nil, fmt.Errorf("notify dispatcher: %w", err)
	}

	schedulerConfig := scheduler.DefaultConfig()
	schedulerConfig.Workers = cfg.Scheduler.Workers
	schedulerConfig.QueueSize = cfg.Scheduler.QueueSize
	schedulerConfig.InitialBackoff = cfg.Scheduler.InitialBackoff
	schedulerConfig.MaxBackoff = cfg.Scheduler.MaxBackoff
	schedulerConfig.MaxAttempts = cfg.Scheduler.MaxAttempts
	schedulerConfig.Cooldown = cfg.Scheduler.Cooldown
	current.scheduler, err = scheduler.New(schedulerConfig, logger, time.Now)
	if err != nil {
		return nil, fmt.Errorf("release scheduler: %w", err)
	}
	current.closers = append(current.closers, func() error {
		current.scheduler.Stop()
		return nil
	})

	policies, err := cfg.PolicyTable()
	if err != nil {
		return nil, fmt.Errorf("policy table: %w", err)
	}
	current.service, err = settlement.NewService(store, gateway, time.Now,
		settlement.WithOperationLogger(logging.NewZapOperationLogger(logger)),
		settlement.WithNotifier(current.dispatcher),
		settlement.WithReleaseScheduler(current.scheduler),
		settlement.WithPolicyTable(policies),
		settlement.WithMaxConflictRetries(cfg.MaxConflictRetries),
		settlement.WithExternalTimeout(cfg.ExternalTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("settlement service init: %w", err)
	}
	built = true
	return current, nil
}

func buildGateway(cfg config.Config, logger *zap.Logger) (settlement.PaymentGateway, error) {
	switch cfg.Gateway.Driver {
	case config.GatewayOmise:
		gateway, err := omisegateway.New(cfg.Gateway.OmisePublicKey, cfg.Gateway.OmiseSecretKey,
			omisegateway.WithCustomerAccounts(cfg.Gateway.OmiseCustomers),
			omisegateway.WithRecipientAccounts(cfg.Gateway.OmiseRecipients),
			omisegateway.WithLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("omise gateway: %w", err)
		}
		return gateway, nil
	default:
		logger.Warn("using the in-process sandbox payment gateway")
		return sandbox.New(sandbox.WithDeclinedCustomers(cfg.Gateway.DeclinedCustomer...)), nil
	}
}

func (current *runtime) buildSinks(cfg config.Config) ([]notify.Sink, error) {
	sinks := []notify.Sink{notify.NewLogSink(current.logger)}
	if cfg.Notify.AMQPURL != "" {
		publisher, err := amqpsink.New(cfg.Notify.AMQPURL, cfg.Notify.AMQPExchange)
		if err != nil {
			return nil, fmt.Errorf("amqp sink: %w", err)
		}
		current.closers = append(current.closers, publisher.Close)
		sinks = append(sinks, publisher)
	}
	if len(cfg.Notify.KafkaBrokers) > 0 {
		producer, err := kafkasink.New(cfg.Notify.KafkaBrokers, cfg.Notify.KafkaTopic)
		if err != nil {
			return nil, fmt.Errorf("kafka sink: %w", err)
		}
		current.closers = append(current.closers, producer.Close)
		sinks = append(sinks, producer)
	}
	if cfg.Notify.S3Endpoint != "" {
		archiver, err := receiptsink.New(receiptsink.Config{
			Endpoint:  cfg.Notify.S3Endpoint,
			AccessKey: cfg.Notify.S3AccessKey,
			SecretKey: cfg.Notify.S3SecretKey,
			Bucket:    cfg.Notify.S3Bucket,
			UseSSL:    cfg.Notify.S3UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("receipt sink: %w", err)
		}
		sinks = append(sinks, archiver)
	}
	return sinks, nil
}

type component struct {
	name string
	run  func(ctx context.Context) error
}

func runServe(ctx context.Context, cfg config.Config) error {
	current, err := buildRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer current.close()
	logger := current.logger

	components, err := buildComponents(cfg, current)
	if err != nil {
		return err
	}
	if _, err := current.scheduler.Recover(ctx, current.service); err != nil {
		return fmt.Errorf("recover release timers: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	errCh := make(chan error, len(components))
	for _, next := range components {
		next := next
		go func() {
			err := next.run(runCtx)
			if err != nil {
				err = fmt.Errorf("%s: %w", next.name, err)
			}
			errCh <- err
		}()
	}

	var firstErr error
	for remaining := len(components); remaining > 0; remaining-- {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
			logger.Error("component stopped", zap.Error(err))
		}
		cancel()
	}
	flushCtx, flushCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer flushCancel()
	if flushed := current.dispatcher.Flush(flushCtx); flushed > 0 {
		logger.Info("flushed pending notifications", zap.Int("events", flushed))
	}
	return firstErr
}

func buildComponents(cfg config.Config, current *runtime) ([]component, error) {
	components := []component{
		{name: "notify dispatcher", run: current.dispatcher.Run},
		{name: "release scheduler", run: func(ctx context.Context) error {
			return current.scheduler.Run(ctx, current.service)
		}},
	}
	if cfg.HTTPListenAddr != "" {
		validator, err := sessionvalidator.New(sessionvalidator.Config{
			SigningKey: []byte(cfg.SessionSigningKey),
			Issuer:     cfg.SessionIssuer,
			CookieName: cfg.SessionCookieName,
		})
		if err != nil {
			return nil, fmt.Errorf("session validator: %w", err)
		}
		httpServer, err := httpapi.NewServer(httpapi.Config{
			ListenAddr:     cfg.HTTPListenAddr,
			AllowedOrigins: cfg.AllowedOrigins,
			OperatorIDs:    cfg.OperatorIDs,
			RequestTimeout: 2 * cfg.ExternalTimeout,
		}, current.service, validator, current.logger, time.Now)
		if err != nil {
			return nil, fmt.Errorf("http api: %w", err)
		}
		components = append(components, component{name: "http api", run: httpServer.Run})
	}
	if cfg.GRPCListenAddr != "" {
		authenticator, err := grpcserver.NewAuthenticator([]byte(cfg.SessionSigningKey), cfg.SessionIssuer, cfg.OperatorIDs)
		if err != nil {
			return nil, fmt.Errorf("grpc auth: %w", err)
		}
		grpcServer := grpcserver.NewServer(grpcserver.NewSettlementServer(current.service, time.Now), authenticator, current.logger)
		components = append(components, component{name: "grpc api", run: func(ctx context.Context) error {
			return serveGRPC(ctx, grpcServer, cfg.GRPCListenAddr, current.logger)
		}})
	}
	return components, nil
}

func serveGRPC(ctx context.Context, grpcServer *grpc.Server, listenAddr string, logger *zap.Logger) error {
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("gRPC server starting", zap.String("listen_addr", listenAddr))
		errCh <- grpcServer.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
		grpcServer.GracefulStop()
		if serveErr := <-errCh; serveErr != nil && !errors.Is(serveErr, grpc.ErrServerStopped) {
			return serveErr
		}
		return nil
	case serveErr := <-errCh:
		if errors.Is(serveErr, grpc.ErrServerStopped) {
			return nil
		}
		return serveErr
	}
}

func runMigrate(ctx context.Context, cfg config.Config, out io.Writer) error {
	_, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()
	_, err = fmt.Fprintf(out, "%s store schema is up to date\n", cfg.StoreDriver)
	return err
}

func runRecover(ctx context.Context, cfg config.Config, out io.Writer) error {
	current, err := buildRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer current.close()

	report, err := current.scheduler.Sweep(ctx, current.service)
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}
	current.dispatcher.Flush(ctx)
	_, err = fmt.Fprintf(out, "held=%d released=%d pending=%d skipped=%d failed=%d\n",
		report.Held, report.Released, report.Pending, report.Skipped, report.Failed)
	return err
}
