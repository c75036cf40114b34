package task

import (
	"context"
	"time"
)

// Filters narrows task listing. Zero values mean "no filter".
type Filters struct {
	Status   Status
	Category string
	DueFrom  time.Time
	DueTo    time.Time
}

// Repository defines the storage interface for tasks.
type Repository interface {
	// CreateTask adds a new task to the repository.
	CreateTask(ctx context.Context, t *Task) error

	// GetTask retrieves a task by ID. Returns nil, nil when not found.
	GetTask(ctx context.Context, id string) (*Task, error)

	// ListTasks returns all tasks for a user matching the filters.
	ListTasks(ctx context.Context, userID string, f Filters) ([]*Task, error)

	// ListEligibleTasks returns the user's tasks that may be scheduled into
	// time slots (milestone types excluded), matching the filters.
	ListEligibleTasks(ctx context.Context, userID string, f Filters) ([]*Task, error)

	// UpdateTaskStatus transitions a task's status.
	UpdateTaskStatus(ctx context.Context, id string, status Status) error
}

// RecurringRepository defines the storage interface for recurring task
// definitions.
type RecurringRepository interface {
	// CreateRecurring adds a recurring task definition.
	CreateRecurring(ctx context.Context, r *RecurringTask) error

	// ListActiveRecurring returns the user's active definitions.
	ListActiveRecurring(ctx context.Context, userID string) ([]*RecurringTask, error)

	// DeactivateRecurring soft-deactivates a definition. The row and its
	// identity survive so skip-registry keys stay resolvable.
	DeactivateRecurring(ctx context.Context, id string) error
}

// ScheduleRepository defines the persistence sink for daily schedule
// entries. Slot identity is (userID, date, timeBlock, quartile) and the
// implementation must reject duplicate slots.
type ScheduleRepository interface {
	// GetEntries returns all entries for the user and date.
	GetEntries(ctx context.Context, userID string, date time.Time) ([]*Entry, error)

	// GetEntry returns the entry occupying one slot, or nil, nil.
	GetEntry(ctx context.Context, userID string, date time.Time, timeBlock string, quartile int) (*Entry, error)

	// ReplaceEntries atomically deletes the date's entries and inserts the
	// new set. Callers never observe a half-replaced date.
	ReplaceEntries(ctx context.Context, userID string, date time.Time, entries []*Entry) error

	// InsertEntry adds a single entry. Returns ErrSlotTaken if the slot is
	// already occupied.
	InsertEntry(ctx context.Context, e *Entry) error

	// UpdateEntry persists mutations of an existing entry (task refs,
	// status, reflection, energy impact).
	UpdateEntry(ctx context.Context, e *Entry) error
}

// SkipRepository is the server-owned skip registry for recurring
// occurrences.
type SkipRepository interface {
	// AddSkip records a suppression. Adding the same skip twice is a no-op.
	AddSkip(ctx context.Context, s *SkipEntry) error

	// ListSkips returns all skips for the user and date.
	ListSkips(ctx context.Context, userID string, date time.Time) ([]*SkipEntry, error)
}
