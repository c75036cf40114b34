package ui

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/afontaine/blockday/internal/dateutil"
	"github.com/afontaine/blockday/internal/grid"
	"github.com/afontaine/blockday/internal/task"
)

func (a *App) recurringCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recurring",
		Short: "Manage recurring tasks",
		Long: `Recurring tasks repeat on chosen weekdays in a fixed time block.
They appear as slot candidates on matching days without being
persisted per day; skipping one suppresses it for a single date.`,
	}

	cmd.AddCommand(a.recurringAddCmd())
	cmd.AddCommand(a.recurringListCmd())
	cmd.AddCommand(a.recurringRemoveCmd())

	return cmd
}

func (a *App) recurringAddCmd() *cobra.Command {
	var (
		block    string
		quarter  int
		days     string
		duration int
	)

	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add a recurring task",
		Example: `  blockday recurring add "Standup" --block="COMMUNICATIONS" --quarter=1 --days=monday,wednesday,friday
  blockday recurring add "Gym" --block="17:00" --days=tuesday,thursday --duration=60`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}

			var dayList []string
			for _, d := range strings.Split(days, ",") {
				d = strings.TrimSpace(d)
				if d == "" {
					continue
				}
				if !dateutil.ValidWeekdayToken(d) {
					return fmt.Errorf("unknown weekday: %q", d)
				}
				dayList = append(dayList, d)
			}
			if len(dayList) == 0 {
				return fmt.Errorf("at least one weekday is required")
			}

			r, err := task.NewRecurring(a.user(), args[0], block, quarter, dayList, duration)
			if err != nil {
				return err
			}

			if err := a.store.CreateRecurring(cmd.Context(), r); err != nil {
				return fmt.Errorf("creating recurring task: %w", err)
			}

			resolved := grid.ResolveLabel(r.TimeBlock)
			fmt.Printf("Created recurring task %s: %s in %s on %s\n",
				r.ID, r.TaskName, resolved.Name, strings.Join(r.DaysOfWeek, ", "))
			return nil
		},
	}

	cmd.Flags().StringVar(&block, "block", "", "Time block (name or clock time, required)")
	cmd.Flags().IntVar(&quarter, "quarter", 0, "Quartile 1-4 (0 = any)")
	cmd.Flags().StringVar(&days, "days", "", "Comma-separated weekdays (required)")
	cmd.Flags().IntVar(&duration, "duration", 0, "Duration in minutes")

	_ = cmd.MarkFlagRequired("block")
	_ = cmd.MarkFlagRequired("days")

	return cmd
}

func (a *App) recurringListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active recurring tasks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}

			defs, err := a.store.ListActiveRecurring(cmd.Context(), a.user())
			if err != nil {
				return fmt.Errorf("listing recurring tasks: %w", err)
			}

			if len(defs) == 0 {
				fmt.Println("No active recurring tasks.")
				return nil
			}

			for _, r := range defs {
				quarter := "any quartile"
				if r.Quarter != 0 {
					quarter = fmt.Sprintf("quartile %d", r.Quarter)
				}
				fmt.Printf("  %s  %s  %s (%s)  %s\n",
					r.ID[:8],
					formatRecurring(r.TaskName),
					grid.ResolveLabel(r.TimeBlock).Name,
					quarter,
					formatMuted(strings.Join(r.DaysOfWeek, ",")),
				)
			}
			return nil
		},
	}
}

func (a *App) recurringRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove [recurring-id]",
		Short: "Deactivate a recurring task",
		Long: `Deactivate a recurring task definition. Past schedule entries keep
their occupants; the definition just stops producing candidates.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}

			if err := a.store.DeactivateRecurring(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("deactivating recurring task: %w", err)
			}
			fmt.Printf("Recurring task %s deactivated.\n", args[0])
			return nil
		},
	}
}
