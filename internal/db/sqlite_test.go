package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/afontaine/blockday/internal/task"
)

func newTestRepo(t *testing.T) *SQLite {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")

	repo, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create test repo: %v", err)
	}

	t.Cleanup(func() {
		_ = repo.Close()
	})

	return repo
}

func mustCreateTask(t *testing.T, repo *SQLite, name string, taskType task.Type, priority task.Priority) *task.Task {
	t.Helper()

	tsk, err := task.New("u1", name, string(taskType), "", string(priority))
	if err != nil {
		t.Fatalf("building task: %v", err)
	}
	if err := repo.CreateTask(context.Background(), tsk); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	return tsk
}

func TestCreateAndGetTask(t *testing.T) {
	repo := newTestRepo(t)

	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.Local)
	tsk, err := task.New("u1", "Write report", "task", "work", "high")
	if err != nil {
		t.Fatalf("building task: %v", err)
	}
	tsk.EstimatedTime = 90
	tsk.DueDate = &due

	if err := repo.CreateTask(context.Background(), tsk); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	got, err := repo.GetTask(context.Background(), tsk.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got == nil {
		t.Fatal("task not found after insert")
	}
	if got.Name != "Write report" || got.Priority != task.PriorityHigh || got.EstimatedTime != 90 {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Errorf("due date = %v, want %v", got.DueDate, due)
	}
}

func TestGetTaskNotFound(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.GetTask(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing task, got %+v", got)
	}
}

func TestListEligibleTasksExcludesMilestones(t *testing.T) {
	repo := newTestRepo(t)

	mustCreateTask(t, repo, "Write report", task.TypeTask, task.PriorityHigh)
	mustCreateTask(t, repo, "Polish slides", task.TypeSubtask, task.PriorityMedium)
	mustCreateTask(t, repo, "Ship v2", task.TypeMilestone, task.PriorityMedium)
	mustCreateTask(t, repo, "Beta cut", task.TypeSubMilestone, task.PriorityMedium)

	all, err := repo.ListTasks(context.Background(), "u1", task.Filters{})
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("ListTasks returned %d, want 4", len(all))
	}

	eligible, err := repo.ListEligibleTasks(context.Background(), "u1", task.Filters{})
	if err != nil {
		t.Fatalf("ListEligibleTasks failed: %v", err)
	}
	if len(eligible) != 2 {
		t.Fatalf("ListEligibleTasks returned %d, want 2", len(eligible))
	}
	for _, tsk := range eligible {
		if !tsk.Eligible() {
			t.Errorf("ineligible task returned: %+v", tsk)
		}
	}
}

func TestListTasksFilters(t *testing.T) {
	repo := newTestRepo(t)

	a := mustCreateTask(t, repo, "A", task.TypeTask, task.PriorityHigh)
	mustCreateTask(t, repo, "B", task.TypeTask, task.PriorityLow)

	if err := repo.UpdateTaskStatus(context.Background(), a.ID, task.StatusCompleted); err != nil {
		t.Fatalf("UpdateTaskStatus failed: %v", err)
	}

	done, err := repo.ListTasks(context.Background(), "u1", task.Filters{Status: task.StatusCompleted})
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(done) != 1 || done[0].ID != a.ID {
		t.Errorf("status filter returned %+v", done)
	}
}

func TestUpdateTaskStatusNotFound(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.UpdateTaskStatus(context.Background(), "missing", task.StatusCompleted)
	if !errors.Is(err, task.ErrTaskNotFound) {
		t.Errorf("got %v, want ErrTaskNotFound", err)
	}
}

func TestRecurringLifecycle(t *testing.T) {
	repo := newTestRepo(t)

	r, err := task.NewRecurring("u1", "Standup", "COMMUNICATIONS", 1, []string{"monday", "wednesday"}, 15)
	if err != nil {
		t.Fatalf("building recurring: %v", err)
	}
	if err := repo.CreateRecurring(context.Background(), r); err != nil {
		t.Fatalf("CreateRecurring failed: %v", err)
	}

	defs, err := repo.ListActiveRecurring(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListActiveRecurring failed: %v", err)
	}
	if len(defs) != 1 {
		t.Fatalf("got %d definitions, want 1", len(defs))
	}
	got := defs[0]
	if got.TaskName != "Standup" || got.Quarter != 1 {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if len(got.DaysOfWeek) != 2 || got.DaysOfWeek[0] != "monday" || got.DaysOfWeek[1] != "wednesday" {
		t.Errorf("days of week = %v", got.DaysOfWeek)
	}

	if err := repo.DeactivateRecurring(context.Background(), r.ID); err != nil {
		t.Fatalf("DeactivateRecurring failed: %v", err)
	}
	defs, err = repo.ListActiveRecurring(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListActiveRecurring failed: %v", err)
	}
	if len(defs) != 0 {
		t.Errorf("deactivated definition still listed: %+v", defs)
	}
}

func TestReplaceEntriesRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	date := time.Date(2026, 8, 31, 0, 0, 0, 0, time.Local)

	first := []*task.Entry{
		task.NewEntry("u1", date, "CHIEF PROJECT", 1, "t1"),
		task.NewEntry("u1", date, "ADMIN", 3, ""),
	}
	first[1].Reflection = "RECURRING_TASK:Standup"

	if err := repo.ReplaceEntries(context.Background(), "u1", date, first); err != nil {
		t.Fatalf("ReplaceEntries failed: %v", err)
	}

	got, err := repo.GetEntries(context.Background(), "u1", date)
	if err != nil {
		t.Fatalf("GetEntries failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}

	e, err := repo.GetEntry(context.Background(), "u1", date, "ADMIN", 3)
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if e == nil || e.Reflection != "RECURRING_TASK:Standup" {
		t.Errorf("reflection lost: %+v", e)
	}
	if !e.Date.Equal(date) {
		t.Errorf("date = %v, want %v", e.Date, date)
	}

	// Regeneration replaces wholesale.
	second := []*task.Entry{
		task.NewEntry("u1", date, "DEEP FOCUS", 2, "t9"),
	}
	if err := repo.ReplaceEntries(context.Background(), "u1", date, second); err != nil {
		t.Fatalf("second ReplaceEntries failed: %v", err)
	}
	got, err = repo.GetEntries(context.Background(), "u1", date)
	if err != nil {
		t.Fatalf("GetEntries failed: %v", err)
	}
	if len(got) != 1 || got[0].TimeBlock != "DEEP FOCUS" {
		t.Errorf("replace was a merge, not a replace: %+v", got)
	}
}

func TestReplaceEntriesScopedToDate(t *testing.T) {
	repo := newTestRepo(t)
	monday := time.Date(2026, 8, 31, 0, 0, 0, 0, time.Local)
	tuesday := monday.AddDate(0, 0, 1)

	if err := repo.ReplaceEntries(context.Background(), "u1", monday,
		[]*task.Entry{task.NewEntry("u1", monday, "ADMIN", 1, "t1")}); err != nil {
		t.Fatalf("ReplaceEntries failed: %v", err)
	}
	if err := repo.ReplaceEntries(context.Background(), "u1", tuesday,
		[]*task.Entry{task.NewEntry("u1", tuesday, "ADMIN", 1, "t2")}); err != nil {
		t.Fatalf("ReplaceEntries failed: %v", err)
	}

	got, err := repo.GetEntries(context.Background(), "u1", monday)
	if err != nil {
		t.Fatalf("GetEntries failed: %v", err)
	}
	if len(got) != 1 || got[0].PlannedTaskID != "t1" {
		t.Errorf("other date's replace touched monday: %+v", got)
	}
}

func TestInsertEntrySlotTaken(t *testing.T) {
	repo := newTestRepo(t)
	date := time.Date(2026, 8, 31, 0, 0, 0, 0, time.Local)

	if err := repo.InsertEntry(context.Background(), task.NewEntry("u1", date, "ADMIN", 1, "t1")); err != nil {
		t.Fatalf("InsertEntry failed: %v", err)
	}

	err := repo.InsertEntry(context.Background(), task.NewEntry("u1", date, "ADMIN", 1, "t2"))
	if !errors.Is(err, task.ErrSlotTaken) {
		t.Fatalf("got %v, want ErrSlotTaken", err)
	}

	// Same slot, different quartile is fine.
	if err := repo.InsertEntry(context.Background(), task.NewEntry("u1", date, "ADMIN", 2, "t2")); err != nil {
		t.Errorf("different quartile rejected: %v", err)
	}
}

func TestUpdateEntry(t *testing.T) {
	repo := newTestRepo(t)
	date := time.Date(2026, 8, 31, 0, 0, 0, 0, time.Local)

	e := task.NewEntry("u1", date, "ADMIN", 1, "t1")
	if err := repo.InsertEntry(context.Background(), e); err != nil {
		t.Fatalf("InsertEntry failed: %v", err)
	}

	e.Status = task.EntryCompleted
	e.Reflection = "MULTIPLE_TASKS:A|B"
	e.EnergyImpact = 2
	if err := repo.UpdateEntry(context.Background(), e); err != nil {
		t.Fatalf("UpdateEntry failed: %v", err)
	}

	got, err := repo.GetEntry(context.Background(), "u1", date, "ADMIN", 1)
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if got.Status != task.EntryCompleted || got.Reflection != "MULTIPLE_TASKS:A|B" || got.EnergyImpact != 2 {
		t.Errorf("update lost fields: %+v", got)
	}
}

func TestUpdateEntryNotFound(t *testing.T) {
	repo := newTestRepo(t)

	e := task.NewEntry("u1", time.Now(), "ADMIN", 1, "")
	err := repo.UpdateEntry(context.Background(), e)
	if !errors.Is(err, task.ErrEntryNotFound) {
		t.Errorf("got %v, want ErrEntryNotFound", err)
	}
}

func TestAddSkipIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	date := time.Date(2026, 8, 31, 0, 0, 0, 0, time.Local)

	skip := &task.SkipEntry{
		UserID:       "u1",
		Date:         date,
		TimeBlock:    "COMMUNICATIONS",
		Quartile:     1,
		RecurringKey: "r1",
	}

	for i := 0; i < 3; i++ {
		if err := repo.AddSkip(context.Background(), skip); err != nil {
			t.Fatalf("AddSkip #%d failed: %v", i+1, err)
		}
	}

	skips, err := repo.ListSkips(context.Background(), "u1", date)
	if err != nil {
		t.Fatalf("ListSkips failed: %v", err)
	}
	if len(skips) != 1 {
		t.Fatalf("got %d skips, want 1", len(skips))
	}
	if skips[0].RecurringKey != "r1" || skips[0].Quartile != 1 {
		t.Errorf("skip round trip lost fields: %+v", skips[0])
	}
}

func TestListSkipsScopedToDate(t *testing.T) {
	repo := newTestRepo(t)
	monday := time.Date(2026, 8, 31, 0, 0, 0, 0, time.Local)
	tuesday := monday.AddDate(0, 0, 1)

	if err := repo.AddSkip(context.Background(), &task.SkipEntry{
		UserID: "u1", Date: monday, TimeBlock: "ADMIN", Quartile: 1, RecurringKey: "r1",
	}); err != nil {
		t.Fatalf("AddSkip failed: %v", err)
	}

	skips, err := repo.ListSkips(context.Background(), "u1", tuesday)
	if err != nil {
		t.Fatalf("ListSkips failed: %v", err)
	}
	if len(skips) != 0 {
		t.Errorf("skip leaked to another date: %+v", skips)
	}
}
