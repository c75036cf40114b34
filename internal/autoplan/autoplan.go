// Package autoplan runs scheduled background generation of daily schedules.
package autoplan

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/afontaine/blockday/internal/dateutil"
	"github.com/afontaine/blockday/internal/logging"
	"github.com/afontaine/blockday/internal/schedule"
)

// Runner regenerates the day's schedule at a fixed local time every day.
type Runner struct {
	generator *schedule.Generator
	userID    string
	cron      *cron.Cron
}

// New creates a Runner for the given user.
func New(generator *schedule.Generator, userID string) *Runner {
	return &Runner{
		generator: generator,
		userID:    userID,
		cron:      cron.New(),
	}
}

// Start registers the daily job at the given HH:MM local time and starts the
// scheduler. It does not block.
func (r *Runner) Start(at string) error {
	spec, err := cronSpec(at)
	if err != nil {
		return err
	}

	if _, err := r.cron.AddFunc(spec, r.run); err != nil {
		return fmt.Errorf("scheduling auto-plan job: %w", err)
	}

	r.cron.Start()
	logging.Logger.Info("auto-plan scheduler started", "user", r.userID, "at", at)
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

func (r *Runner) run() {
	date := dateutil.TruncateToDay(time.Now())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := r.generator.Generate(ctx, r.userID, date, schedule.Preferences{})
	if err != nil {
		logging.Logger.Error("auto-plan generation failed",
			"user", r.userID, "date", date.Format("2006-01-02"), "err", err)
		return
	}

	logging.Logger.Info("auto-plan generated schedule",
		"user", r.userID, "date", date.Format("2006-01-02"),
		"source", result.Source, "entries", len(result.Entries))
}

// cronSpec converts "HH:MM" into a standard five-field cron spec.
func cronSpec(at string) (string, error) {
	parts := strings.SplitN(at, ":", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("auto-plan time must be HH:MM, got %q", at)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("auto-plan time must be HH:MM, got %q", at)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("auto-plan time must be HH:MM, got %q", at)
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}
