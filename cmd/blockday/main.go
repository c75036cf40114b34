package main

import (
	"fmt"
	"os"

	"github.com/afontaine/blockday/internal/config"
	"github.com/afontaine/blockday/internal/logging"
	"github.com/afontaine/blockday/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := logging.Init(logging.Config{Debug: cfg.Log.Debug, LogDir: cfg.Log.Dir}); err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}

	app := ui.NewApp(cfg)
	defer func() { _ = app.Close() }()
	return app.Execute()
}
