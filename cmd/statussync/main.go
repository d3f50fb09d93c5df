// Command statussync runs a single status sync and prints its summary as
// JSON. It is meant to be driven by an external scheduler.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rajasatyajit/StatusAggregator/config"
	"github.com/rajasatyajit/StatusAggregator/internal/app"
	"github.com/rajasatyajit/StatusAggregator/internal/logger"
	"github.com/rajasatyajit/StatusAggregator/internal/pipeline"
)

func main() {
	timeout := flag.Duration("timeout", 2*time.Minute, "maximum duration of the run")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	// stdout carries the result
	logger.InitWithWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	components, err := app.New(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize", "error", err)
	}

	code := run(ctx, components.Pipeline, os.Stdout)
	components.Close(context.Background())
	cancel()
	stop()
	os.Exit(code)
}

type syncer interface {
	RunOnce(ctx context.Context) (pipeline.Result, error)
}

// run executes one sync and writes the result. It returns the process exit
// code: 1 when the run failed, 2 when some rows could not be persisted.
func run(ctx context.Context, s syncer, out io.Writer) int {
	res, err := s.RunOnce(ctx)
	if err != nil {
		logger.Error("Sync failed", "error", err)
		return 1
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		logger.Error("Failed to write result", "error", err)
		return 1
	}
	if len(res.Failed) > 0 {
		return 2
	}
	return 0
}
