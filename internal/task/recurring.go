package task

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// RecurringTask is a repeatable task template. TimeBlock may be a canonical
// block name or a looser human label; callers resolve it through the grid.
// A zero Quarter means the task may land in any quartile of its block.
type RecurringTask struct {
	ID              string
	UserID          string
	TaskName        string
	TimeBlock       string
	Quarter         int // 1-4, 0 = any
	DaysOfWeek      []string
	DurationMinutes int
	Category        string
	Subcategory     string
	Priority        Priority
	Active          bool
	CreatedAt       time.Time
}

// NewRecurring creates a recurring task definition with validation.
func NewRecurring(userID, name, timeBlock string, quarter int, days []string, durationMinutes int) (*RecurringTask, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if quarter != 0 && (quarter < 1 || quarter > 4) {
		return nil, ErrInvalidQuartile
	}

	normalized := make([]string, 0, len(days))
	for _, d := range days {
		normalized = append(normalized, strings.ToLower(strings.TrimSpace(d)))
	}

	return &RecurringTask{
		ID:              uuid.NewString(),
		UserID:          userID,
		TaskName:        name,
		TimeBlock:       timeBlock,
		Quarter:         quarter,
		DaysOfWeek:      normalized,
		DurationMinutes: durationMinutes,
		Priority:        PriorityMedium,
		Active:          true,
		CreatedAt:       time.Now(),
	}, nil
}

// OccursOn returns true if the definition's weekday set includes the given
// date's weekday.
func (r *RecurringTask) OccursOn(date time.Time) bool {
	weekday := strings.ToLower(date.Weekday().String())
	for _, d := range r.DaysOfWeek {
		if d == weekday {
			return true
		}
	}
	return false
}

// SkipKey identifies a recurring occurrence in the skip registry. The
// definition id is used when available; occupants that cannot be traced back
// to a definition fall back to a synthetic name key.
func (r *RecurringTask) SkipKey() string {
	return r.ID
}

// NameSkipKey builds the synthetic skip-registry key for a recurring
// occupant known only by display name.
func NameSkipKey(name string) string {
	return "name:" + name
}
