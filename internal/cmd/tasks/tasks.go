// Package tasks parses the assignment command flags and runs one
// "assign tasks" action against a roster file.
package tasks

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	entrypoint "github.com/campaignledger/sessiontasks/internal/platform/cmd"
	"github.com/campaignledger/sessiontasks/internal/platform/errors/i18n"
	tasksapp "github.com/campaignledger/sessiontasks/internal/services/tasks/app"
	"github.com/campaignledger/sessiontasks/internal/services/tasks/dispatch"
	"github.com/campaignledger/sessiontasks/internal/services/tasks/render"
	"github.com/campaignledger/sessiontasks/internal/services/tasks/roster"
)

// Config holds assignment command configuration.
type Config struct {
	Roster      string `env:"TASKS_ROSTER"`
	Seed        string `env:"TASKS_SEED"`
	Send        bool   `env:"TASKS_SEND"`
	Queue       bool   `env:"TASKS_QUEUE"`
	Locale      string `env:"TASKS_LOCALE" envDefault:"en"`
	Title       string `env:"TASKS_TITLE"`
	Footers     bool   `env:"TASKS_FOOTERS"`
	WebhookURL  string `env:"TASKS_WEBHOOK_URL"`
	DBPath      string `env:"WORKER_DB_PATH" envDefault:"data/outbox.db"`
	MaxAttempts int    `env:"WORKER_MAX_ATTEMPTS" envDefault:"8"`
	LogLevel    string `env:"TASKS_LOG_LEVEL" envDefault:"warn"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Roster, "roster", cfg.Roster, "Roster file (.yaml, .yml or .json)")
	fs.StringVar(&cfg.Seed, "seed", cfg.Seed, "Replay a previous assignment seed")
	fs.BoolVar(&cfg.Send, "send", cfg.Send, "Send the assignment to the chat webhook")
	fs.BoolVar(&cfg.Queue, "queue", cfg.Queue, "Queue the assignment for the worker instead of sending it")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "Notification language (en, pt-BR)")
	fs.StringVar(&cfg.Title, "title", cfg.Title, "Session title; overrides the roster file")
	fs.BoolVar(&cfg.Footers, "footers", cfg.Footers, "Add a hint line under each section")
	fs.StringVar(&cfg.WebhookURL, "webhook-url", cfg.WebhookURL, "Chat webhook that receives task notifications")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The outbox SQLite database path")
	fs.IntVar(&cfg.MaxAttempts, "max-attempts", cfg.MaxAttempts, "Delivery attempts for queued notifications")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.Roster) == "" {
		return Config{}, errors.New("a roster file is required (-roster)")
	}
	if cfg.Send && cfg.Queue {
		return Config{}, errors.New("-send and -queue are mutually exclusive")
	}
	if _, err := cfg.seed(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) seed() (*int64, error) {
	raw := strings.TrimSpace(c.Seed)
	if raw == "" {
		return nil, nil
	}
	seed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse seed %q: %w", raw, err)
	}
	return &seed, nil
}

// Run assigns tasks for the roster and writes the result to out.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	options := entrypoint.RunOptions{LogLevel: cfg.LogLevel}
	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceTasks, options, func(ctx context.Context, logger *zap.Logger) error {
		return run(ctx, cfg, out, logger)
	})
}

func run(ctx context.Context, cfg Config, out io.Writer, logger *zap.Logger) error {
	snapshot, err := roster.Load(cfg.Roster)
	if err != nil {
		return err
	}
	seed, err := cfg.seed()
	if err != nil {
		return err
	}

	opts := tasksapp.Options{
		Localizer:   render.NewLocalizer(i18n.ParseLocale(cfg.Locale)),
		Logger:      logger,
		MaxAttempts: cfg.MaxAttempts,
		WithFooters: cfg.Footers,
	}
	if cfg.Send {
		webhook, err := dispatch.NewWebhook(cfg.WebhookURL, nil)
		if err != nil {
			return err
		}
		opts.Dispatcher = webhook
	}
	if cfg.Queue {
		store, err := tasksapp.OpenOutbox(cfg.DBPath)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := store.Close(); closeErr != nil {
				logger.Warn("close outbox sqlite store", zap.Error(closeErr))
			}
		}()
		opts.Outbox = store
	}
	svc := tasksapp.NewService(opts)

	title := snapshot.Title
	if strings.TrimSpace(cfg.Title) != "" {
		title = cfg.Title
	}
	result, err := svc.Assign(ctx, tasksapp.AssignInput{
		Characters:   snapshot.Characters,
		Selection:    snapshot.Selection,
		SessionTitle: title,
		Seed:         seed,
	})
	if err != nil {
		return err
	}
	fmt.Fprint(out, render.Text(result.Payload))
	fmt.Fprintf(out, "\nseed: %d\n", result.Seed)

	switch {
	case cfg.Send:
		if err := svc.Send(ctx); err != nil {
			fmt.Fprintf(out, "not sent; rerun with -seed %d to resend the same assignment\n", result.Seed)
			return err
		}
		fmt.Fprintln(out, "sent")
	case cfg.Queue:
		id, err := svc.Enqueue(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "queued: %s\n", id)
	}
	return nil
}
