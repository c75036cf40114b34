// Package task defines the core domain types for blockday.
package task

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Validation errors.
var (
	ErrEmptyName       = errors.New("task name cannot be empty")
	ErrInvalidType     = errors.New("invalid task type")
	ErrInvalidPriority = errors.New("priority must be 'high', 'medium' or 'low'")
	ErrInvalidQuartile = errors.New("quartile must be between 1 and 4")
)

// Domain errors.
var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrEntryNotFound = errors.New("schedule entry not found")
	ErrSlotTaken     = errors.New("slot already has an entry")
	ErrSlotOccupied  = errors.New("slot already holds a regular task")
)

// Type classifies a task. Milestones and sub-milestones are deliverables and
// are never eligible for time-block scheduling.
type Type string

const (
	TypeMilestone    Type = "milestone"
	TypeSubMilestone Type = "sub_milestone"
	TypeTask         Type = "task"
	TypeSubtask      Type = "subtask"
)

// Status represents the state of a task.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Priority represents scheduling urgency.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Task represents a unit of work owned by a user.
type Task struct {
	ID            string
	UserID        string
	Name          string
	Type          Type
	Category      string
	Subcategory   string
	Priority      Priority
	Status        Status
	EstimatedTime int // minutes
	DueDate       *time.Time
	XDate         *time.Time // completion/work date
	CreatedAt     time.Time
}

// New creates a new Task with validation. An empty priority defaults to
// medium; an empty task type defaults to "task".
func New(userID, name, taskType, category, priority string) (*Task, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	tt, err := parseType(taskType)
	if err != nil {
		return nil, err
	}

	pr, err := parsePriority(priority)
	if err != nil {
		return nil, err
	}

	return &Task{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Type:      tt,
		Category:  category,
		Priority:  pr,
		Status:    StatusNotStarted,
		CreatedAt: time.Now(),
	}, nil
}

func parseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "task":
		return TypeTask, nil
	case "subtask":
		return TypeSubtask, nil
	case "milestone":
		return TypeMilestone, nil
	case "sub_milestone", "sub-milestone":
		return TypeSubMilestone, nil
	default:
		return "", ErrInvalidType
	}
}

func parsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	case "low":
		return PriorityLow, nil
	default:
		return "", ErrInvalidPriority
	}
}

// Eligible returns true if the task may be assigned to a time slot.
// Deliverable types (milestones) are excluded from scheduling.
func (t *Task) Eligible() bool {
	return t.Type != TypeMilestone && t.Type != TypeSubMilestone
}

// IsCompleted returns true if the task has completed status.
func (t *Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}
