// Package main assigns session tasks from a roster file.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	taskscmd "github.com/campaignledger/sessiontasks/internal/cmd/tasks"
	"github.com/campaignledger/sessiontasks/internal/platform/config"
	apperrors "github.com/campaignledger/sessiontasks/internal/platform/errors"
	"github.com/campaignledger/sessiontasks/internal/platform/errors/i18n"
)

func main() {
	cfg, err := taskscmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[TASKS] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := taskscmd.Run(ctx, cfg, os.Stdout); err != nil {
		if apperrors.CodeOf(err) != apperrors.CodeUnknown {
			config.Exitf("%s", apperrors.UserMessage(err, i18n.ParseLocale(cfg.Locale)))
		}
		log.Fatalf("assign tasks: %v", err)
	}
}
