package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/afontaine/blockday/internal/dateutil"
	"github.com/afontaine/blockday/internal/grid"
	"github.com/afontaine/blockday/internal/schedule"
	"github.com/afontaine/blockday/internal/task"
)

// slotFlags are the common slot-addressing flags for assign/unassign/skip.
type slotFlags struct {
	date     string
	block    string
	quartile int
}

func (f *slotFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.date, "date", "", "Date (YYYY-MM-DD, today/tomorrow/weekday; default: today)")
	cmd.Flags().StringVar(&f.block, "block", "", "Time block (name or clock time, required)")
	cmd.Flags().IntVar(&f.quartile, "quartile", 0, "Quartile 1-4 (required)")

	_ = cmd.MarkFlagRequired("block")
	_ = cmd.MarkFlagRequired("quartile")
}

func (f *slotFlags) resolve() (day time.Time, block string, quartile int, err error) {
	day, err = dateutil.ParseRelativeDate(f.date, time.Now())
	if err != nil {
		return time.Time{}, "", 0, err
	}
	if !grid.ValidQuartile(f.quartile) {
		return time.Time{}, "", 0, task.ErrInvalidQuartile
	}
	return day, grid.ResolveLabel(f.block).Name, f.quartile, nil
}

func (a *App) assignCmd() *cobra.Command {
	var flags slotFlags

	cmd := &cobra.Command{
		Use:   "assign [task-id-or-name]",
		Short: "Assign a task to a slot",
		Long: `Assign a task to one quartile slot. The argument may be a task id
or a task name; names are matched case-insensitively and partial
matches resolve to the closest task.

A slot holds at most one regular task. Assigning into a slot that
already references one is rejected.`,
		Example: `  blockday assign "write report" --block="CHIEF PROJECT" --quartile=2
  blockday assign 6e2a91d0-... --date=tomorrow --block=09:00 --quartile=1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}

			day, block, quartile, err := flags.resolve()
			if err != nil {
				return err
			}

			taskID, name, err := a.resolveTaskArg(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			svc := schedule.NewSlotService(a.store, a.store, a.store)
			if err := svc.AddRegular(cmd.Context(), a.user(), day, block, quartile, taskID); err != nil {
				return fmt.Errorf("assigning task: %w", err)
			}

			fmt.Printf("Assigned %s to %s q%d on %s\n",
				formatActive(name), block, quartile, day.Format("2006-01-02"))
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func (a *App) unassignCmd() *cobra.Command {
	var flags slotFlags

	cmd := &cobra.Command{
		Use:   "unassign [candidate-id]",
		Short: "Remove a candidate from a slot",
		Long: `Remove a candidate from one quartile slot. The id comes from the day
view: a task id, a recurring definition id, or a derived occupant id.

Removal only affects this slot; use "blockday skip" to also keep the
recurring occurrence from coming back as a candidate for the date.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.removeCandidate(cmd.Context(), args[0], &flags, false)
		},
	}

	flags.register(cmd)
	return cmd
}

func (a *App) skipCmd() *cobra.Command {
	var flags slotFlags

	cmd := &cobra.Command{
		Use:   "skip [candidate-id]",
		Short: "Skip a recurring occurrence for a date",
		Long: `Remove a recurring candidate from a slot and record the skip so the
occurrence does not reappear for that date. Skipping is idempotent:
repeating the command changes nothing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.removeCandidate(cmd.Context(), args[0], &flags, true)
		},
	}

	flags.register(cmd)
	return cmd
}

func (a *App) removeCandidate(ctx context.Context, candidateID string, flags *slotFlags, recordSkip bool) error {
	if err := a.ensureStore(); err != nil {
		return err
	}

	day, block, quartile, err := flags.resolve()
	if err != nil {
		return err
	}

	svc := schedule.NewSlotService(a.store, a.store, a.store)
	if err := svc.Remove(ctx, a.user(), day, block, quartile, candidateID, recordSkip); err != nil {
		return fmt.Errorf("removing candidate: %w", err)
	}

	verb := "Removed"
	if recordSkip {
		verb = "Skipped"
	}
	fmt.Printf("%s %s from %s q%d on %s\n",
		verb, candidateID, block, quartile, day.Format("2006-01-02"))
	return nil
}

// resolveTaskArg resolves a task argument (id or name) to a task id and
// display name.
func (a *App) resolveTaskArg(ctx context.Context, arg string) (id, name string, err error) {
	tasks, err := a.store.ListEligibleTasks(ctx, a.user(), task.Filters{})
	if err != nil {
		return "", "", fmt.Errorf("listing tasks: %w", err)
	}

	index := schedule.NewTaskIndex(tasks)
	id, ok := index.Resolve(schedule.Ref{ID: arg, Name: arg})
	if !ok {
		return "", "", fmt.Errorf("%w: %q", task.ErrTaskNotFound, arg)
	}
	if t := index.Get(id); t != nil {
		return id, t.Name, nil
	}
	return id, id, nil
}
