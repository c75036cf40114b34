package schedule

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/afontaine/blockday/internal/grid"
	"github.com/afontaine/blockday/internal/task"
)

// Priority tiers map to block groups: high-priority work lands early in the
// chief blocks, low-priority work in the flexible late blocks.
var tierBlocks = map[task.Priority][]string{
	task.PriorityHigh:   {"CHIEF PROJECT", "DEEP FOCUS"},
	task.PriorityMedium: {"COMMUNICATIONS", "ADMIN"},
	task.PriorityLow:    {"COLLABORATION", "FLEX EVENING"},
}

type heuristicTask struct {
	ID string `json:"id"`
}

type heuristicSlot struct {
	Task     *heuristicTask `json:"task,omitempty"`
	Quartile string         `json:"quartile"`
}

// HeuristicPayload is the deterministic local generator. It produces the
// flat-object payload shape: keys are the quartile's clock span, values
// carry an explicit task id and quartile ordinal. Slots claimed by recurring
// definitions for the date's weekday are reserved with an empty task
// reference so normalization preserves them; remaining quartiles are filled
// with incomplete tasks by priority tier in input order. Tasks beyond the
// tier's capacity are left unscheduled.
func HeuristicPayload(tasks []*task.Task, recurring []*task.RecurringTask, date time.Time) json.RawMessage {
	payload := make(map[string]heuristicSlot)
	reserved := make(map[string]bool) // "<block>/<quartile>"

	for _, r := range recurring {
		if !r.Active || !r.OccursOn(date) || r.Quarter == 0 {
			continue
		}
		b := grid.ResolveLabel(r.TimeBlock)
		key := slotLabel(b, r.Quarter)
		if reserved[key] {
			continue
		}
		reserved[key] = true
		payload[key] = heuristicSlot{Quartile: strconv.Itoa(r.Quarter)}
	}

	for _, tier := range []task.Priority{task.PriorityHigh, task.PriorityMedium, task.PriorityLow} {
		slots := tierSlots(tier, reserved)
		next := 0
		for _, t := range tasks {
			if t.Priority != tier || t.IsCompleted() {
				continue
			}
			if next >= len(slots) {
				break
			}
			s := slots[next]
			next++
			payload[s.label] = heuristicSlot{
				Task:     &heuristicTask{ID: t.ID},
				Quartile: strconv.Itoa(s.quartile),
			}
		}
	}

	raw, _ := json.Marshal(payload)
	return raw
}

type heuristicPlacement struct {
	label    string
	quartile int
}

// tierSlots enumerates the tier's free quartiles in grid order.
func tierSlots(tier task.Priority, reserved map[string]bool) []heuristicPlacement {
	var out []heuristicPlacement
	for _, name := range tierBlocks[tier] {
		b, ok := grid.ByName(name)
		if !ok {
			continue
		}
		for q := 1; q <= grid.Quartiles; q++ {
			label := slotLabel(b, q)
			if reserved[label] {
				continue
			}
			out = append(out, heuristicPlacement{label: label, quartile: q})
		}
	}
	return out
}

// slotLabel is the quartile's clock span; resolving its start time lands on
// the owning block, so the label doubles as the flat-object key.
func slotLabel(b grid.Block, q int) string {
	start, end := grid.QuartileSpan(b, q)
	return start + "-" + end
}
