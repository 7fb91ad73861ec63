package app

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	platformgrpc "github.com/campaignledger/sessiontasks/internal/platform/grpc"
)

func TestRunRequiresWebhookURL(t *testing.T) {
	if err := Run(context.Background(), RuntimeConfig{DBPath: filepath.Join(t.TempDir(), "outbox.db")}, nil); err == nil {
		t.Fatal("expected missing webhook error")
	}
	if err := Run(context.Background(), RuntimeConfig{WebhookURL: "ftp://example.com"}, nil); err == nil {
		t.Fatal("expected unsupported scheme error")
	}
}

func TestRunServesHealthUntilCancelled(t *testing.T) {
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer webhook.Close()

	port := freePort(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, RuntimeConfig{
			Port:         port,
			DBPath:       filepath.Join(t.TempDir(), "outbox.db"),
			WebhookURL:   webhook.URL,
			PollInterval: 50 * time.Millisecond,
		}, nil)
	}()

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	if err := platformgrpc.Probe(context.Background(), addr, HealthService, 5*time.Second, nil); err != nil {
		cancel()
		t.Fatalf("probe worker health: %v", err)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer listener.Close()
	return listener.Addr().(*net.TCPAddr).Port
}
