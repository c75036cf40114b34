package task

import (
	"time"

	"github.com/google/uuid"
)

// EntryStatus represents the state of a schedule entry.
type EntryStatus string

const (
	EntryNotStarted EntryStatus = "not_started"
	EntryInProgress EntryStatus = "in_progress"
	EntryCompleted  EntryStatus = "completed"
)

// Entry is the persisted unit of the daily plan: one (date, block, quartile)
// slot. At most one entry exists per (user, date, block, quartile); that
// composite is the slot identity and the persistence layer enforces it.
//
// PlannedTaskID and ActualTaskID reference regular tasks. Recurring and
// nameless occupants are carried in Reflection using the occupant codec.
type Entry struct {
	ID            string
	UserID        string
	Date          time.Time
	TimeBlock     string
	Quartile      int
	PlannedTaskID string // empty = no regular task planned
	ActualTaskID  string // empty = not reassigned
	Status        EntryStatus
	Reflection    string
	EnergyImpact  int
	CreatedAt     time.Time
}

// NewEntry creates a draft entry for a slot with not-started status.
func NewEntry(userID string, date time.Time, timeBlock string, quartile int, plannedTaskID string) *Entry {
	return &Entry{
		ID:            uuid.NewString(),
		UserID:        userID,
		Date:          date,
		TimeBlock:     timeBlock,
		Quartile:      quartile,
		PlannedTaskID: plannedTaskID,
		Status:        EntryNotStarted,
		CreatedAt:     time.Now(),
	}
}

// IsCompleted returns true if the entry has completed status.
func (e *Entry) IsCompleted() bool {
	return e.Status == EntryCompleted
}

// IsPlaceholder returns true if the entry is a system-generated filler that
// must never be rendered as a real task.
func (e *Entry) IsPlaceholder() bool {
	return IsPlaceholderReflection(e.Reflection)
}

// TaskRef returns the task reference the entry currently points at,
// preferring the actual task over the planned one. Empty if neither is set.
func (e *Entry) TaskRef() string {
	if e.ActualTaskID != "" {
		return e.ActualTaskID
	}
	return e.PlannedTaskID
}

// SkipEntry suppresses one recurring occurrence for a single date and slot
// without touching the underlying definition. RecurringKey is either a
// definition id or a synthetic "name:<name>" key.
type SkipEntry struct {
	UserID       string
	Date         time.Time
	TimeBlock    string
	Quartile     int
	RecurringKey string
}
