// Package worker parses worker command flags and launches the outbox
// delivery runtime.
package worker

import (
	"context"
	"flag"
	"fmt"
	"time"

	"go.uber.org/zap"

	entrypoint "github.com/campaignledger/sessiontasks/internal/platform/cmd"
	platformgrpc "github.com/campaignledger/sessiontasks/internal/platform/grpc"
	tasksapp "github.com/campaignledger/sessiontasks/internal/services/tasks/app"
)

// Config holds worker command configuration.
type Config struct {
	Port          int           `env:"WORKER_PORT" envDefault:"8089"`
	DBPath        string        `env:"WORKER_DB_PATH" envDefault:"data/outbox.db"`
	WebhookURL    string        `env:"TASKS_WEBHOOK_URL"`
	PollInterval  time.Duration `env:"WORKER_POLL_INTERVAL" envDefault:"30s"`
	BatchSize     int           `env:"WORKER_BATCH_SIZE" envDefault:"20"`
	MaxAttempts   int           `env:"WORKER_MAX_ATTEMPTS" envDefault:"8"`
	RetryBackoff  time.Duration `env:"WORKER_RETRY_BACKOFF" envDefault:"5m"`
	RetryMaxDelay time.Duration `env:"WORKER_RETRY_MAX_DELAY" envDefault:"1h"`
	Retention     time.Duration `env:"WORKER_RETENTION" envDefault:"168h"`
	LogLevel      string        `env:"WORKER_LOG_LEVEL" envDefault:"info"`
	ProbeTimeout  time.Duration `env:"WORKER_PROBE_TIMEOUT" envDefault:"3s"`
	// Probe checks a running worker's health endpoint instead of serving.
	Probe bool
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The worker health gRPC server port")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The outbox SQLite database path")
	fs.StringVar(&cfg.WebhookURL, "webhook-url", cfg.WebhookURL, "Chat webhook that receives task notifications")
	fs.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "Outbox poll interval")
	fs.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "Messages delivered per poll")
	fs.IntVar(&cfg.MaxAttempts, "max-attempts", cfg.MaxAttempts, "Maximum delivery attempts before dead-letter")
	fs.DurationVar(&cfg.RetryBackoff, "retry-backoff", cfg.RetryBackoff, "Base retry backoff delay")
	fs.DurationVar(&cfg.RetryMaxDelay, "retry-max-delay", cfg.RetryMaxDelay, "Maximum retry delay")
	fs.DurationVar(&cfg.Retention, "retention", cfg.Retention, "How long sent messages are kept; negative keeps them forever")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.BoolVar(&cfg.Probe, "probe", cfg.Probe, "Check the health of a worker on -port and exit")
	fs.DurationVar(&cfg.ProbeTimeout, "probe-timeout", cfg.ProbeTimeout, "How long -probe waits for SERVING")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the worker runtime, or probes a running one when cfg.Probe is set.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Probe {
		return Probe(ctx, cfg)
	}
	options := entrypoint.RunOptions{LogLevel: cfg.LogLevel}
	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceWorker, options, func(ctx context.Context, logger *zap.Logger) error {
		return tasksapp.Run(ctx, tasksapp.RuntimeConfig{
			Port:          cfg.Port,
			DBPath:        cfg.DBPath,
			WebhookURL:    cfg.WebhookURL,
			PollInterval:  cfg.PollInterval,
			BatchSize:     cfg.BatchSize,
			MaxAttempts:   cfg.MaxAttempts,
			RetryBackoff:  cfg.RetryBackoff,
			RetryMaxDelay: cfg.RetryMaxDelay,
			Retention:     cfg.Retention,
		}, logger)
	})
}

// Probe reports whether the worker listening on cfg.Port is serving.
func Probe(ctx context.Context, cfg Config) error {
	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	if err := platformgrpc.Probe(ctx, addr, tasksapp.HealthService, cfg.ProbeTimeout, nil); err != nil {
		return fmt.Errorf("worker at %s is not healthy: %w", addr, err)
	}
	return nil
}
