package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/afontaine/blockday/internal/logging"
	"github.com/afontaine/blockday/internal/task"
)

// DefaultTimeout bounds the external generator call. On timeout or any
// failure the local heuristic takes over; a single attempt then fallback is
// the complete failure path.
const DefaultTimeout = 30 * time.Second

// Preferences carries user guidance forwarded to the external generator.
type Preferences struct {
	Notes string
}

// PayloadGenerator produces a best-effort raw schedule payload. The payload
// shape is unspecified; Normalize handles every accepted variant.
type PayloadGenerator interface {
	GenerateSchedule(ctx context.Context, tasks []*task.Task, recurring []*task.RecurringTask, date time.Time, prefs Preferences) (json.RawMessage, error)
}

// Result is a completed generation: the normalized entries and where the
// raw payload came from.
type Result struct {
	Source  string
	Entries []*task.Entry
}

// Generator orchestrates schedule generation: fetch the user's data, obtain
// a raw payload (LLM with hard timeout, heuristic fallback), normalize it
// onto the grid, and atomically replace the date's persisted schedule.
type Generator struct {
	tasks     task.Repository
	recurring task.RecurringRepository
	schedules task.ScheduleRepository
	llm       PayloadGenerator // nil = heuristic only
	timeout   time.Duration

	mu    sync.Mutex
	locks map[string]*dateLock
}

// dateLock is a per-(user,date) mutex with a holder/waiter count so idle
// entries can be pruned from the lock table.
type dateLock struct {
	mu   sync.Mutex
	refs int
}

// NewGenerator creates a Generator. A nil PayloadGenerator skips the
// external call and always uses the heuristic.
func NewGenerator(tasks task.Repository, recurring task.RecurringRepository, schedules task.ScheduleRepository, llm PayloadGenerator, timeout time.Duration) *Generator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Generator{
		tasks:     tasks,
		recurring: recurring,
		schedules: schedules,
		llm:       llm,
		timeout:   timeout,
		locks:     make(map[string]*dateLock),
	}
}

// Generate produces and persists the schedule for a date. Regeneration is a
// wholesale replace, not a merge: the existing schedule for the date is
// deleted and the new draft set inserted in one transaction. Calls are
// serialized per (user, date) so two regenerations can never interleave
// their delete and insert phases.
func (g *Generator) Generate(ctx context.Context, userID string, date time.Time, prefs Preferences) (*Result, error) {
	unlock := g.lockDate(userID, date)
	defer unlock()

	result, err := g.build(ctx, userID, date, prefs)
	if err != nil {
		return nil, err
	}

	if err := g.schedules.ReplaceEntries(ctx, userID, date, result.Entries); err != nil {
		return nil, fmt.Errorf("replacing schedule for %s: %w", date.Format("2006-01-02"), err)
	}
	return result, nil
}

// Preview produces the schedule for a date without persisting it.
func (g *Generator) Preview(ctx context.Context, userID string, date time.Time, prefs Preferences) (*Result, error) {
	return g.build(ctx, userID, date, prefs)
}

func (g *Generator) build(ctx context.Context, userID string, date time.Time, prefs Preferences) (*Result, error) {
	tasks, err := g.tasks.ListEligibleTasks(ctx, userID, task.Filters{})
	if err != nil {
		return nil, fmt.Errorf("listing eligible tasks: %w", err)
	}
	recurring, err := g.recurring.ListActiveRecurring(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing recurring tasks: %w", err)
	}

	index := NewTaskIndex(tasks)
	raw := g.rawSchedule(ctx, tasks, recurring, date, prefs)

	entries, err := Normalize(userID, raw.Payload, date, index)
	if err != nil && raw.Source != SourceLocalFallback {
		// Unparseable external output is a generator failure too.
		logging.Logger.Warn("schedule payload unusable, using local fallback",
			"user", userID, "date", date.Format("2006-01-02"), "err", err)
		raw = RawSchedule{Source: SourceLocalFallback, Payload: HeuristicPayload(tasks, recurring, date)}
		entries, err = Normalize(userID, raw.Payload, date, index)
	}
	if err != nil {
		return nil, fmt.Errorf("normalizing schedule payload: %w", err)
	}

	return &Result{Source: raw.Source, Entries: entries}, nil
}

// rawSchedule obtains the raw payload: one attempt against the external
// generator under a hard timeout, then the deterministic heuristic. Failures
// are logged for observability and never propagated.
func (g *Generator) rawSchedule(ctx context.Context, tasks []*task.Task, recurring []*task.RecurringTask, date time.Time, prefs Preferences) RawSchedule {
	if g.llm != nil {
		llmCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		payload, err := g.llm.GenerateSchedule(llmCtx, tasks, recurring, date, prefs)
		if err == nil {
			return RawSchedule{Source: SourceOpenAI, Payload: payload}
		}
		logging.Logger.Warn("external schedule generation failed, using local fallback",
			"date", date.Format("2006-01-02"), "err", err)
	}

	return RawSchedule{Source: SourceLocalFallback, Payload: HeuristicPayload(tasks, recurring, date)}
}

// lockDate serializes generation per (user, date) and returns the release
// func. The table entry is dropped once the last holder or waiter is gone,
// so a long-lived process does not accumulate one mutex per generated date.
func (g *Generator) lockDate(userID string, date time.Time) func() {
	key := userID + "|" + date.Format("2006-01-02")

	g.mu.Lock()
	lock, ok := g.locks[key]
	if !ok {
		lock = &dateLock{}
		g.locks[key] = lock
	}
	lock.refs++
	g.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		g.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(g.locks, key)
		}
		g.mu.Unlock()
	}
}
