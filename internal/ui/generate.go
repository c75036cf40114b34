package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/afontaine/blockday/internal/dateutil"
	"github.com/afontaine/blockday/internal/schedule"
	"github.com/afontaine/blockday/internal/task"
)

func (a *App) generateCmd() *cobra.Command {
	var (
		date   string
		notes  string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the schedule for a day",
		Long: `Generate a schedule for a day from your open tasks and recurring
commitments.

The configured AI provider gets one attempt under a hard timeout.
If it fails, times out, or returns unusable output, a deterministic
local planner takes over, so generation always produces a schedule.

Regenerating replaces the day's existing schedule entirely.`,
		Example: `  blockday generate
  blockday generate --date=tomorrow
  blockday generate --notes="keep the afternoon light" --dry-run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}

			day, err := dateutil.ParseRelativeDate(date, time.Now())
			if err != nil {
				return err
			}

			gen := a.newGenerator()
			prefs := schedule.Preferences{Notes: notes}

			var result *schedule.Result
			if dryRun {
				result, err = gen.Preview(cmd.Context(), a.user(), day, prefs)
			} else {
				result, err = gen.Generate(cmd.Context(), a.user(), day, prefs)
			}
			if err != nil {
				return fmt.Errorf("generating schedule: %w", err)
			}

			source := "AI"
			if result.Source == schedule.SourceLocalFallback {
				source = "local planner"
			}
			fmt.Printf("%s\n", formatStats(fmt.Sprintf(
				"Scheduled %d slots for %s via %s",
				len(result.Entries), day.Format("2006-01-02"), source)))

			if dryRun {
				for _, e := range result.Entries {
					fmt.Printf("  %s q%d  %s\n", e.TimeBlock, e.Quartile, describeEntry(e))
				}
				fmt.Println(formatMuted("(Dry run - schedule not saved)"))
				return nil
			}

			return a.runDay(cmd.Context(), day.Format("2006-01-02"))
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD, today/tomorrow/weekday; default: today)")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-text preferences forwarded to the AI planner")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the generated schedule without saving")

	return cmd
}

// describeEntry renders a draft entry's content for the dry-run listing.
func describeEntry(e *task.Entry) string {
	if ref := e.TaskRef(); ref != "" {
		return ref
	}
	if names := e.Occupants(); len(names) > 0 {
		return strings.Join(names, ", ")
	}
	return "-"
}
