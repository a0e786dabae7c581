// Package cmd carries the startup helpers shared by the defence binaries:
// env-then-flags config parsing and telemetry lifecycle around a run loop.
package cmd

import (
	"context"
	"errors"
	"flag"
	"log"
	"strings"
	"time"

	"github.com/hmcts/cpp-context-defence-sub003/internal/platform/config"
	"github.com/hmcts/cpp-context-defence-sub003/internal/platform/otel"
)

// Service names reported to telemetry by each binary.
const (
	ServiceJournal  = "journal"
	ServiceScenario = "scenario"
)

const defaultShutdownTimeout = 5 * time.Second

// ParseConfig fills cfg from environment variables. Flags registered
// afterwards take the env values as their defaults, so flags win.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	return config.ParseEnv(cfg)
}

// ParseArgs parses command-line flags over the env-seeded config.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// RunOptions adjusts RunWithTelemetry behavior.
type RunOptions struct {
	// ShutdownTimeout bounds the telemetry flush after run returns.
	ShutdownTimeout time.Duration
}

// RunWithTelemetry sets up trace export for the named service, invokes run,
// and flushes telemetry on the way out.
func RunWithTelemetry(ctx context.Context, service string, run func(context.Context) error) error {
	return RunWithTelemetryAndOptions(ctx, service, RunOptions{}, run)
}

// RunWithTelemetryAndOptions is RunWithTelemetry with an explicit flush
// timeout.
func RunWithTelemetryAndOptions(ctx context.Context, service string, options RunOptions, run func(context.Context) error) error {
	if strings.TrimSpace(service) == "" {
		return errors.New("service name is required")
	}
	if run == nil {
		return errors.New("run function is required")
	}

	shutdown, err := otel.Setup(ctx, service)
	if err != nil {
		return err
	}
	defer func() {
		timeout := options.ShutdownTimeout
		if timeout <= 0 {
			timeout = defaultShutdownTimeout
		}
		flushCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			log.Printf("%s otel shutdown: %v", service, err)
		}
	}()

	return run(ctx)
}
