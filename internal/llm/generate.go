package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/afontaine/blockday/internal/grid"
	"github.com/afontaine/blockday/internal/schedule"
	"github.com/afontaine/blockday/internal/task"
)

const schedulePrompt = `You are a daily planning assistant. Assign the user's tasks into fixed time blocks for %s (%s).

Time blocks (each divided into quartiles 1-4):
%s

Tasks to schedule (use the exact ids):
%s

Recurring commitments already fixed for this day (do not double-book their slots):
%s

%s

Rules:
1. Respond ONLY with valid JSON (no markdown, no explanation).
2. The JSON is an object keyed by a time range label "HH:MM-HH:MM".
3. Each value has the form {"task": {"id": "<task id>"}, "quartile": "1".."4"}.
4. Use only task ids from the list above; never invent ids.
5. High priority tasks go into the morning chief blocks, low priority into flexible evening blocks.
6. Assign at most one task per (block, quartile) slot.
7. Leave milestones out entirely; schedule work items only.`

// ScheduleGenerator produces raw schedule payloads through an LLM client.
// It implements schedule.PayloadGenerator.
type ScheduleGenerator struct {
	client Client
}

// NewScheduleGenerator creates a ScheduleGenerator with the given client.
func NewScheduleGenerator(client Client) *ScheduleGenerator {
	return &ScheduleGenerator{client: client}
}

// GenerateSchedule asks the LLM for a schedule payload. The response is
// returned raw; shape validation and normalization are the caller's concern.
func (g *ScheduleGenerator) GenerateSchedule(ctx context.Context, tasks []*task.Task, recurring []*task.RecurringTask, date time.Time, prefs schedule.Preferences) (json.RawMessage, error) {
	prompt := fmt.Sprintf(schedulePrompt,
		date.Format("2006-01-02"),
		date.Format("Monday"),
		formatBlocks(),
		formatTasks(tasks),
		formatRecurring(recurring, date),
		formatPreferences(prefs),
	)

	var raw json.RawMessage
	if err := g.client.ChatJSON(ctx, []Message{{Role: "system", Content: prompt}}, &raw); err != nil {
		return nil, fmt.Errorf("getting schedule from LLM: %w", err)
	}
	return raw, nil
}

func formatBlocks() string {
	var sb strings.Builder
	for _, b := range grid.Blocks {
		sb.WriteString(fmt.Sprintf("- %s: %s-%s\n", b.Name, b.Start, b.End))
	}
	return sb.String()
}

func formatTasks(tasks []*task.Task) string {
	var sb strings.Builder
	for _, t := range tasks {
		if !t.Eligible() || t.IsCompleted() {
			continue
		}
		sb.WriteString(fmt.Sprintf("- id=%s %q [%s priority, ~%d min]\n",
			t.ID, t.Name, t.Priority, t.EstimatedTime))
	}
	if sb.Len() == 0 {
		return "None"
	}
	return sb.String()
}

func formatRecurring(recurring []*task.RecurringTask, date time.Time) string {
	var sb strings.Builder
	for _, r := range recurring {
		if !r.Active || !r.OccursOn(date) {
			continue
		}
		quarter := "any quartile"
		if r.Quarter != 0 {
			quarter = fmt.Sprintf("quartile %d", r.Quarter)
		}
		sb.WriteString(fmt.Sprintf("- %q in %s (%s, %d min)\n",
			r.TaskName, grid.ResolveLabel(r.TimeBlock).Name, quarter, r.DurationMinutes))
	}
	if sb.Len() == 0 {
		return "None"
	}
	return sb.String()
}

func formatPreferences(prefs schedule.Preferences) string {
	if strings.TrimSpace(prefs.Notes) == "" {
		return "User preferences: none."
	}
	return "User preferences: " + prefs.Notes
}
