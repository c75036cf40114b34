package schedule

import (
	"bytes"
	"testing"

	"github.com/afontaine/blockday/internal/task"
)

func prioritizedTask(id, name string, p task.Priority) *task.Task {
	t := testTask(id, name, task.TypeTask)
	t.Priority = p
	return t
}

func TestHeuristicPlacesByTier(t *testing.T) {
	tasks := []*task.Task{
		prioritizedTask("h1", "Deep work", task.PriorityHigh),
		prioritizedTask("m1", "Email", task.PriorityMedium),
		prioritizedTask("l1", "Tidy up", task.PriorityLow),
	}

	raw := HeuristicPayload(tasks, nil, monday)
	entries, err := Normalize("u1", raw, monday, NewTaskIndex(tasks))
	if err != nil {
		t.Fatalf("heuristic output must normalize: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	wantBlocks := map[string]string{
		"h1": "CHIEF PROJECT",
		"m1": "COMMUNICATIONS",
		"l1": "COLLABORATION",
	}
	for _, e := range entries {
		want, ok := wantBlocks[e.PlannedTaskID]
		if !ok {
			t.Errorf("unexpected entry for %q", e.PlannedTaskID)
			continue
		}
		if e.TimeBlock != want {
			t.Errorf("task %s landed in %s, want %s", e.PlannedTaskID, e.TimeBlock, want)
		}
	}
}

func TestHeuristicSkipsCompletedTasks(t *testing.T) {
	done := prioritizedTask("h1", "Done already", task.PriorityHigh)
	done.Status = task.StatusCompleted
	tasks := []*task.Task{done}

	raw := HeuristicPayload(tasks, nil, monday)
	entries, err := Normalize("u1", raw, monday, NewTaskIndex(tasks))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("completed task was scheduled: %+v", entries)
	}
}

func TestHeuristicReservesRecurringSlots(t *testing.T) {
	tasks := []*task.Task{
		prioritizedTask("h1", "Deep work", task.PriorityHigh),
	}
	recurring := []*task.RecurringTask{
		testRecurring("r1", "Planning ritual", "CHIEF PROJECT", 1),
	}

	raw := HeuristicPayload(tasks, recurring, monday)
	entries, err := Normalize("u1", raw, monday, NewTaskIndex(tasks))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reserved := findEntry(entries, "CHIEF PROJECT", 1)
	if reserved == nil {
		t.Fatal("reserved recurring slot missing")
	}
	if reserved.PlannedTaskID != "" {
		t.Errorf("reserved slot has task %q, want empty", reserved.PlannedTaskID)
	}

	placed := findEntry(entries, "CHIEF PROJECT", 2)
	if placed == nil || placed.PlannedTaskID != "h1" {
		t.Errorf("task should shift to the next free quartile, got %+v", placed)
	}
}

func TestHeuristicExcessTasksUnscheduled(t *testing.T) {
	// High tier capacity is 8 quartiles (two blocks); the ninth task is out.
	var tasks []*task.Task
	for i := 0; i < 9; i++ {
		tasks = append(tasks, prioritizedTask(
			string(rune('a'+i)), "Task "+string(rune('a'+i)), task.PriorityHigh))
	}

	raw := HeuristicPayload(tasks, nil, monday)
	entries, err := Normalize("u1", raw, monday, NewTaskIndex(tasks))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 8 {
		t.Errorf("got %d entries, want 8", len(entries))
	}
}

func TestHeuristicDeterministic(t *testing.T) {
	tasks := []*task.Task{
		prioritizedTask("h1", "One", task.PriorityHigh),
		prioritizedTask("h2", "Two", task.PriorityHigh),
	}
	recurring := []*task.RecurringTask{
		testRecurring("r1", "Ritual", "DEEP FOCUS", 3),
	}

	first := HeuristicPayload(tasks, recurring, monday)
	for i := 0; i < 10; i++ {
		if got := HeuristicPayload(tasks, recurring, monday); !bytes.Equal(first, got) {
			t.Fatalf("payload differs between runs:\n%s\n%s", first, got)
		}
	}
}
