package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	platformgrpc "github.com/campaignledger/sessiontasks/internal/platform/grpc"
	"github.com/campaignledger/sessiontasks/internal/platform/logging"
	"github.com/campaignledger/sessiontasks/internal/services/tasks/dispatch"
	"github.com/campaignledger/sessiontasks/internal/services/tasks/storage/sqlite"
)

// RuntimeConfig controls worker startup, dependencies, and loop behavior.
type RuntimeConfig struct {
	Port          int
	DBPath        string
	WebhookURL    string
	PollInterval  time.Duration
	BatchSize     int
	MaxAttempts   int
	RetryBackoff  time.Duration
	RetryMaxDelay time.Duration
	Retention     time.Duration
}

const (
	defaultWorkerPort = 8089
	defaultWorkerDB   = "data/outbox.db"

	// HealthService is the gRPC health service name reported by the worker.
	HealthService = "tasks.outbox"
)

// OpenOutbox opens the sqlite outbox, creating its directory if needed.
func OpenOutbox(path string) (*sqlite.Store, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultWorkerDB
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create outbox storage dir: %w", err)
		}
	}
	store, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open outbox sqlite store: %w", err)
	}
	return store, nil
}

// Run starts the outbox store, the health server, and the delivery loop.
func Run(ctx context.Context, cfg RuntimeConfig, logger *zap.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger = logging.OrNop(logger)
	if cfg.Port <= 0 {
		cfg.Port = defaultWorkerPort
	}

	dispatcher, err := dispatch.NewWebhook(cfg.WebhookURL, nil)
	if err != nil {
		return err
	}

	store, err := OpenOutbox(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.Warn("close outbox sqlite store", zap.Error(closeErr))
		}
	}()

	deliverer := NewDeliverer(store, dispatcher, DeliveryConfig{
		PollInterval:  cfg.PollInterval,
		BatchSize:     cfg.BatchSize,
		MaxAttempts:   cfg.MaxAttempts,
		RetryBackoff:  cfg.RetryBackoff,
		RetryMaxDelay: cfg.RetryMaxDelay,
		Retention:     cfg.Retention,
	}, logger, nil)

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return fmt.Errorf("listen on worker port %d: %w", cfg.Port, err)
	}
	defer listener.Close()

	grpcServer, healthServer := platformgrpc.NewHealthServer(HealthService)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := grpcServer.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve worker health: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		defer func() {
			healthServer.Shutdown()
			grpcServer.GracefulStop()
		}()
		return deliverer.Run(groupCtx)
	})

	logger.Info("worker server listening", zap.Stringer("addr", listener.Addr()))
	return group.Wait()
}
