package task

import (
	"errors"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		tsk, err := New("u1", "Write report", "", "", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tsk.Type != TypeTask {
			t.Errorf("Type = %s, want task", tsk.Type)
		}
		if tsk.Priority != PriorityMedium {
			t.Errorf("Priority = %s, want medium", tsk.Priority)
		}
		if tsk.Status != StatusNotStarted {
			t.Errorf("Status = %s, want not_started", tsk.Status)
		}
		if tsk.ID == "" {
			t.Error("expected generated id")
		}
	})

	t.Run("empty name", func(t *testing.T) {
		if _, err := New("u1", "   ", "", "", ""); !errors.Is(err, ErrEmptyName) {
			t.Errorf("got %v, want ErrEmptyName", err)
		}
	})

	t.Run("invalid type", func(t *testing.T) {
		if _, err := New("u1", "x", "epic", "", ""); !errors.Is(err, ErrInvalidType) {
			t.Errorf("got %v, want ErrInvalidType", err)
		}
	})

	t.Run("invalid priority", func(t *testing.T) {
		if _, err := New("u1", "x", "", "", "urgent"); !errors.Is(err, ErrInvalidPriority) {
			t.Errorf("got %v, want ErrInvalidPriority", err)
		}
	})
}

func TestEligible(t *testing.T) {
	tests := []struct {
		taskType Type
		want     bool
	}{
		{TypeTask, true},
		{TypeSubtask, true},
		{TypeMilestone, false},
		{TypeSubMilestone, false},
	}

	for _, tt := range tests {
		tsk := &Task{Type: tt.taskType}
		if got := tsk.Eligible(); got != tt.want {
			t.Errorf("Eligible() for %s = %v, want %v", tt.taskType, got, tt.want)
		}
	}
}

func TestNewRecurring(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		r, err := NewRecurring("u1", "Standup", "COMMUNICATIONS", 1, []string{"Monday", " wednesday "}, 15)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !r.Active {
			t.Error("new definitions should be active")
		}
		if r.DaysOfWeek[0] != "monday" || r.DaysOfWeek[1] != "wednesday" {
			t.Errorf("days not normalized: %v", r.DaysOfWeek)
		}
	})

	t.Run("invalid quarter", func(t *testing.T) {
		if _, err := NewRecurring("u1", "x", "ADMIN", 5, []string{"monday"}, 0); !errors.Is(err, ErrInvalidQuartile) {
			t.Errorf("got %v, want ErrInvalidQuartile", err)
		}
	})

	t.Run("zero quarter means any", func(t *testing.T) {
		if _, err := NewRecurring("u1", "x", "ADMIN", 0, []string{"monday"}, 0); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestOccursOn(t *testing.T) {
	r := &RecurringTask{DaysOfWeek: []string{"monday", "friday"}}

	monday := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC) // a Monday
	tuesday := monday.AddDate(0, 0, 1)
	friday := monday.AddDate(0, 0, 4)

	if !r.OccursOn(monday) {
		t.Error("should occur on Monday")
	}
	if r.OccursOn(tuesday) {
		t.Error("should not occur on Tuesday")
	}
	if !r.OccursOn(friday) {
		t.Error("should occur on Friday")
	}
}
