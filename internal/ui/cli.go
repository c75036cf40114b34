// Package ui implements the command line interface.
package ui

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/afontaine/blockday/internal/config"
	"github.com/afontaine/blockday/internal/db"
	"github.com/afontaine/blockday/internal/llm"
	"github.com/afontaine/blockday/internal/logging"
	"github.com/afontaine/blockday/internal/schedule"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	store   *db.SQLite
	config  *config.Config
	root    *cobra.Command
	debug   bool
	noColor bool
}

// NewApp creates a new CLI application with the given config. The database
// is opened lazily on first use so commands like version and config work
// without one.
func NewApp(cfg *config.Config) *App {
	a := &App{config: cfg}

	a.root = &cobra.Command{
		Use:   "blockday",
		Short: "A CLI day planner built on fixed time blocks",
		Long: `Blockday plans your day onto a fixed grid of named time blocks,
each split into four quartiles.

It keeps your tasks and recurring commitments, generates a daily
schedule (with a local fallback when no AI provider is reachable),
and lets you adjust individual slots afterwards.`,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if a.noColor {
				DisableColor()
			}
			if !a.debug {
				return nil
			}
			return logging.Init(logging.Config{Debug: true, LogDir: cfg.Log.Dir})
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runDay(cmd.Context(), "")
		},
	}

	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")
	a.root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.generateCmd())
	a.root.AddCommand(a.dayCmd())
	a.root.AddCommand(a.taskCmd())
	a.root.AddCommand(a.recurringCmd())
	a.root.AddCommand(a.assignCmd())
	a.root.AddCommand(a.unassignCmd())
	a.root.AddCommand(a.skipCmd())
	a.root.AddCommand(a.watchCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("blockday %s (commit: %s)\n", Version, Commit)
		},
	}
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

// Close releases the database if it was opened.
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

// ensureStore opens the database on first use.
func (a *App) ensureStore() error {
	if a.store != nil {
		return nil
	}
	store, err := db.New(a.config.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	a.store = store
	return nil
}

// newGenerator wires a schedule generator against the configured LLM
// provider. When no client can be built the generator runs heuristic-only;
// generation must never fail just because the provider is unreachable.
func (a *App) newGenerator() *schedule.Generator {
	var payload schedule.PayloadGenerator
	client, err := llm.NewClient(a.config.LLM.Provider, a.config.LLM.APIKey, a.config.LLM.Model, a.config.LLM.BaseURL)
	if err != nil {
		logging.Logger.Warn("LLM client unavailable, using local fallback only", "err", err)
	} else {
		payload = llm.NewScheduleGenerator(client)
	}

	timeout := time.Duration(a.config.LLM.TimeoutSeconds) * time.Second
	return schedule.NewGenerator(a.store, a.store, a.store, payload, timeout)
}

func (a *App) user() string {
	return a.config.Schedule.User
}
