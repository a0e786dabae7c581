// Package main provides a CLI for inspecting the defence event journal.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/hmcts/cpp-context-defence-sub003/internal/platform/config"

	journalcmd "github.com/hmcts/cpp-context-defence-sub003/internal/cmd/journal"
)

func main() {
	cfg, err := journalcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := journalcmd.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		config.Exitf("Error: %v", err)
	}
}
