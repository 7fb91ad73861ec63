// Package timeouts defines shared timeout constants used across commands.
// Centralizing these values prevents drift between the CLI and the worker
// and makes the durations discoverable.
package timeouts

import "time"

// Dispatch caps a single outbound notification request.
const Dispatch = 10 * time.Second

// StoreOpen limits how long a command waits for the outbox database to open.
const StoreOpen = 5 * time.Second

// Shutdown limits how long the worker waits for in-flight deliveries and the
// health server during graceful shutdown.
const Shutdown = 5 * time.Second
