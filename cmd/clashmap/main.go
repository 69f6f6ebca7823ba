package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/javiermolinar/clashmap/internal/config"
	"github.com/javiermolinar/clashmap/internal/logging"
	"github.com/javiermolinar/clashmap/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(cfg.Log.Env, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	app := ui.NewApp(cfg, ui.WithLogger(logger))
	defer func() { _ = app.Close() }()
	return app.Execute()
}
