package worker

import (
	"context"
	"flag"
	"testing"
	"time"
)

func TestParseConfig_ParsesDefaultsAndFlags(t *testing.T) {
	fs := flag.NewFlagSet("worker", flag.ContinueOnError)
	t.Setenv("CAMPAIGN_LEDGER_WORKER_PORT", "9099")
	t.Setenv("CAMPAIGN_LEDGER_TASKS_WEBHOOK_URL", "https://chat.example/hooks/1")

	cfg, err := ParseConfig(fs, []string{"-max-attempts", "3", "-retry-backoff", "1m"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 9099 {
		t.Fatalf("port = %d, want 9099", cfg.Port)
	}
	if cfg.WebhookURL != "https://chat.example/hooks/1" {
		t.Fatalf("webhook url = %q", cfg.WebhookURL)
	}
	if cfg.MaxAttempts != 3 {
		t.Fatalf("max attempts = %d, want 3", cfg.MaxAttempts)
	}
	if cfg.RetryBackoff != time.Minute {
		t.Fatalf("retry backoff = %v, want 1m", cfg.RetryBackoff)
	}
}

func TestParseConfig_Defaults(t *testing.T) {
	fs := flag.NewFlagSet("worker", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "data/outbox.db" {
		t.Fatalf("db path = %q, want data/outbox.db", cfg.DBPath)
	}
	if cfg.RetryBackoff != 5*time.Minute || cfg.RetryMaxDelay != time.Hour {
		t.Fatalf("retry = %v/%v, want 5m/1h", cfg.RetryBackoff, cfg.RetryMaxDelay)
	}
	if cfg.Retention != 7*24*time.Hour {
		t.Fatalf("retention = %v, want 168h", cfg.Retention)
	}
}

func TestParseConfig_RejectsUnknownFlag(t *testing.T) {
	fs := flag.NewFlagSet("worker", flag.ContinueOnError)
	fs.SetOutput(discard{})
	if _, err := ParseConfig(fs, []string{"-consumer", "x"}); err == nil {
		t.Fatal("expected unknown flag error")
	}
}

func TestRun_RequiresWebhook(t *testing.T) {
	t.Setenv("CAMPAIGN_LEDGER_OTEL_ENDPOINT", "")
	err := Run(context.Background(), Config{DBPath: t.TempDir() + "/outbox.db", LogLevel: "error"})
	if err == nil {
		t.Fatal("expected missing webhook error")
	}
}

func TestRun_ProbeFailsWithoutWorker(t *testing.T) {
	port := 1
	if err := Run(context.Background(), Config{Port: port, Probe: true, ProbeTimeout: 200 * time.Millisecond}); err == nil {
		t.Fatal("expected probe failure when nothing is listening")
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
