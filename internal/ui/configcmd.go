package ui

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/afontaine/blockday/internal/config"
)

func (a *App) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the current configuration",
		RunE: func(_ *cobra.Command, _ []string) error {
			fmt.Printf("Config file: %s\n\n", config.DefaultConfigPath())
			printConfig(a.config)
			return nil
		},
	}

	cmd.AddCommand(a.configInitCmd())
	return cmd
}

func (a *App) configInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a config file with current values",
		Long: `Write the effective configuration to the default config path.
Refuses to overwrite an existing file.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			path := config.DefaultConfigPath()
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config file already exists: %s", path)
			}

			if err := a.config.SaveTo(path); err != nil {
				return fmt.Errorf("saving config: %w", err)
			}
			fmt.Printf("Created %s\n", path)
			return nil
		},
	}
}

func printConfig(cfg *config.Config) {
	fmt.Println("[schedule]")
	fmt.Printf("  user            = %s\n", cfg.Schedule.User)
	fmt.Printf("  auto_plan_time  = %s\n", cfg.Schedule.AutoPlanTime)
	fmt.Println("\n[llm]")
	fmt.Printf("  provider        = %s\n", cfg.LLM.Provider)
	fmt.Printf("  model           = %s\n", cfg.LLM.Model)
	fmt.Printf("  base_url        = %s\n", cfg.LLM.BaseURL)
	fmt.Printf("  timeout_seconds = %d\n", cfg.LLM.TimeoutSeconds)
	fmt.Println("\n[storage]")
	fmt.Printf("  db_path         = %s\n", cfg.Storage.DBPath)
	fmt.Println("\n[log]")
	fmt.Printf("  dir             = %s\n", cfg.Log.Dir)
	fmt.Printf("  debug           = %t\n", cfg.Log.Debug)
}
