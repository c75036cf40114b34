package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/afontaine/blockday/internal/logging"
	"github.com/afontaine/blockday/internal/task"
)

// SlotService mutates individual slots: adding and removing occupants and
// recording recurring skips. Generation-time writes go through Generator;
// this is the direct-edit path.
type SlotService struct {
	schedules task.ScheduleRepository
	recurring task.RecurringRepository
	skips     task.SkipRepository
}

// NewSlotService creates a SlotService.
func NewSlotService(schedules task.ScheduleRepository, recurring task.RecurringRepository, skips task.SkipRepository) *SlotService {
	return &SlotService{schedules: schedules, recurring: recurring, skips: skips}
}

// AddRegular assigns a regular task to a slot, creating the entry when the
// slot is empty. A slot holds at most one regular task: if one is already
// referenced the operation is rejected with task.ErrSlotOccupied and nothing
// is mutated.
func (s *SlotService) AddRegular(ctx context.Context, userID string, date time.Time, block string, quartile int, taskID string) error {
	entry, err := s.schedules.GetEntry(ctx, userID, date, block, quartile)
	if err != nil {
		return fmt.Errorf("loading slot entry: %w", err)
	}

	if entry == nil {
		return s.schedules.InsertEntry(ctx, task.NewEntry(userID, date, block, quartile, taskID))
	}

	if err := entry.AddRegular(taskID); err != nil {
		return err
	}
	return s.schedules.UpdateEntry(ctx, entry)
}

// AddRecurring adds a recurring-name occupant to a slot, creating the entry
// when the slot is empty. Recurring names stack without limit.
func (s *SlotService) AddRecurring(ctx context.Context, userID string, date time.Time, block string, quartile int, name string) error {
	entry, err := s.schedules.GetEntry(ctx, userID, date, block, quartile)
	if err != nil {
		return fmt.Errorf("loading slot entry: %w", err)
	}

	if entry == nil {
		entry = task.NewEntry(userID, date, block, quartile, "")
		entry.AddRecurring(name)
		return s.schedules.InsertEntry(ctx, entry)
	}

	entry.AddRecurring(name)
	return s.schedules.UpdateEntry(ctx, entry)
}

// Remove removes the candidate with the given id from a slot. The id may be
// a recurring definition id (an unpersisted candidate: removal is a
// skip-today), an occupant-derived id (multiple-<block>-<quartile>-<index>),
// or a regular task id on the entry. When recordSkip is set, removing a
// recurring occupant also writes a skip-registry entry so the occurrence
// does not reappear as a candidate for that date.
func (s *SlotService) Remove(ctx context.Context, userID string, date time.Time, block string, quartile int, candidateID string, recordSkip bool) error {
	defs, err := s.recurring.ListActiveRecurring(ctx, userID)
	if err != nil {
		return fmt.Errorf("listing recurring definitions: %w", err)
	}

	// Unpersisted recurring candidate: suppression is the whole operation.
	for _, r := range defs {
		if r.ID == candidateID {
			return s.addSkip(ctx, userID, date, block, quartile, r.SkipKey())
		}
	}

	entry, err := s.schedules.GetEntry(ctx, userID, date, block, quartile)
	if err != nil {
		return fmt.Errorf("loading slot entry: %w", err)
	}
	if entry == nil {
		return task.ErrEntryNotFound
	}

	if index := ParseOccupantCandidateID(candidateID); index >= 0 {
		removed, remaining := entry.RemoveRecurring(index)
		if removed == "" {
			return task.ErrEntryNotFound
		}
		if remaining == 0 && entry.TaskRef() == "" {
			entry.Status = task.EntryCompleted
		}
		if err := s.schedules.UpdateEntry(ctx, entry); err != nil {
			return err
		}
		if recordSkip {
			return s.addSkip(ctx, userID, date, block, quartile, recurringKeyFor(defs, removed))
		}
		return nil
	}

	if entry.TaskRef() == candidateID {
		// Clearing the regular task frees the slot for reassignment; only
		// the removal of a slot's last recurring occupant implies the slot's
		// work is over.
		entry.PlannedTaskID = ""
		entry.ActualTaskID = ""
		return s.schedules.UpdateEntry(ctx, entry)
	}

	return task.ErrEntryNotFound
}

// recurringKeyFor resolves an occupant name back to its definition id when
// one matches, else falls back to the synthetic name key. The fallback
// supports skipping occurrences whose originating definition cannot be
// matched.
func recurringKeyFor(defs []*task.RecurringTask, name string) string {
	for _, r := range defs {
		if r.TaskName == name {
			return r.SkipKey()
		}
	}
	return task.NameSkipKey(name)
}

func (s *SlotService) addSkip(ctx context.Context, userID string, date time.Time, block string, quartile int, key string) error {
	logging.Logger.Debug("recording recurring skip",
		"user", userID, "date", date.Format("2006-01-02"),
		"block", block, "quartile", quartile, "key", key)
	return s.skips.AddSkip(ctx, &task.SkipEntry{
		UserID:       userID,
		Date:         date,
		TimeBlock:    block,
		Quartile:     quartile,
		RecurringKey: key,
	})
}
