package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/afontaine/blockday/internal/dateutil"
	"github.com/afontaine/blockday/internal/grid"
	"github.com/afontaine/blockday/internal/schedule"
	"github.com/afontaine/blockday/internal/task"
)

var (
	blockHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("62")).
				Padding(0, 1)

	dayTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true)
)

func (a *App) dayCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "day",
		Short: "Show the schedule for a day",
		Long: `Show the full block grid for a day with everything in each slot:
the assigned task or recurring occupants, plus recurring commitments
that apply to the slot but are not yet placed.`,
		Example: `  blockday day
  blockday day --date=2026-09-01
  blockday day --date=tomorrow`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runDay(cmd.Context(), date)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD, today/tomorrow/weekday; default: today)")

	return cmd
}

func (a *App) runDay(ctx context.Context, dateStr string) error {
	if err := a.ensureStore(); err != nil {
		return err
	}

	day, err := dateutil.ParseRelativeDate(dateStr, time.Now())
	if err != nil {
		return err
	}

	entries, err := a.store.GetEntries(ctx, a.user(), day)
	if err != nil {
		return fmt.Errorf("loading schedule: %w", err)
	}
	tasks, err := a.store.ListEligibleTasks(ctx, a.user(), task.Filters{})
	if err != nil {
		return fmt.Errorf("listing tasks: %w", err)
	}
	recurring, err := a.store.ListActiveRecurring(ctx, a.user())
	if err != nil {
		return fmt.Errorf("listing recurring tasks: %w", err)
	}
	skips, err := a.store.ListSkips(ctx, a.user(), day)
	if err != nil {
		return fmt.Errorf("listing skips: %w", err)
	}

	agg := schedule.NewAggregator(schedule.NewTaskIndex(tasks), recurring, skips)

	bySlot := make(map[string]*task.Entry, len(entries))
	for _, e := range entries {
		bySlot[slotKey(e.TimeBlock, e.Quartile)] = e
	}

	fmt.Println(dayTitleStyle.Render(day.Format("Monday, January 2, 2006")))
	fmt.Println()

	for _, b := range grid.Blocks {
		fmt.Printf("%s  %s\n", blockHeaderStyle.Render(b.Name), formatMuted(b.Start+"-"+b.End))

		for q := 1; q <= grid.Quartiles; q++ {
			entry := bySlot[slotKey(b.Name, q)]
			candidates := agg.Candidates(entry, day, b.Name, q)
			printSlot(b, q, entry, candidates)
		}
		fmt.Println()
	}

	return nil
}

func printSlot(b grid.Block, q int, entry *task.Entry, candidates []schedule.Candidate) {
	start, end := grid.QuartileSpan(b, q)
	label := fmt.Sprintf("  %s-%s", start, end)

	if entry != nil && entry.IsCompleted() && len(candidates) == 0 {
		fmt.Printf("%s  %s\n", label, formatMuted("done"))
		return
	}
	if len(candidates) == 0 {
		fmt.Printf("%s  %s\n", label, formatMuted("-"))
		return
	}

	shown := candidates
	overflow := 0
	if len(shown) > schedule.MaxDisplayCandidates {
		overflow = len(shown) - schedule.MaxDisplayCandidates
		shown = shown[:schedule.MaxDisplayCandidates]
	}

	names := make([]string, 0, len(shown))
	for _, c := range shown {
		names = append(names, formatCandidate(c))
	}
	line := strings.Join(names, ", ")
	if overflow > 0 {
		line += formatMuted(fmt.Sprintf("  +%d more", overflow))
	}
	fmt.Printf("%s  %s\n", label, line)
}

func formatCandidate(c schedule.Candidate) string {
	if c.IsActive {
		return formatActive(c.Name)
	}
	return formatRecurring(c.Name + " (recurring)")
}

func slotKey(block string, quartile int) string {
	return fmt.Sprintf("%s#%d", block, quartile)
}
