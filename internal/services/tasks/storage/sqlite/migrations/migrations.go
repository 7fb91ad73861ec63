// Package migrations embeds the outbox SQLite schema.
package migrations

import "embed"

// FS holds the outbox migration files.
//
//go:embed *.sql
var FS embed.FS
