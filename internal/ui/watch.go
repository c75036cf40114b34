package ui

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/afontaine/blockday/internal/autoplan"
)

func (a *App) watchCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the auto-plan scheduler in the foreground",
		Long: `Run the auto-plan scheduler: regenerate today's schedule every day
at a fixed time. The time comes from schedule.auto_plan_time in the
config, or from --at.

Runs until interrupted (Ctrl-C).`,
		Example: `  blockday watch
  blockday watch --at=06:30`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}

			planTime := at
			if planTime == "" {
				planTime = a.config.Schedule.AutoPlanTime
			}
			if planTime == "" {
				return fmt.Errorf("no auto-plan time configured; set schedule.auto_plan_time or pass --at")
			}

			runner := autoplan.New(a.newGenerator(), a.user())
			if err := runner.Start(planTime); err != nil {
				return err
			}
			defer runner.Stop()

			fmt.Printf("Auto-plan scheduled daily at %s. Press Ctrl-C to stop.\n", planTime)

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			<-stop

			fmt.Println("\nStopping.")
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Daily generation time (HH:MM, overrides config)")

	return cmd
}
