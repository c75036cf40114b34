package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/afontaine/blockday/internal/grid"
	"github.com/afontaine/blockday/internal/task"
)

// MaxDisplayCandidates is the bounded display cap per slot. Callers truncate
// to this and surface the remainder count rather than dropping it silently.
const MaxDisplayCandidates = 4

// CandidateKind distinguishes regular tasks from recurring-name occupants.
type CandidateKind string

const (
	KindRegular   CandidateKind = "regular"
	KindRecurring CandidateKind = "recurring"
)

// Candidate provenance values.
const (
	ProvenanceEntry     = "schedule_entry"
	ProvenanceOccupants = "slot_occupants"
	ProvenanceRecurring = "recurring_definition"
)

// Candidate is one task considered "in" a slot for display and interaction,
// independent of how it is physically encoded.
type Candidate struct {
	ID              string
	Name            string
	Kind            CandidateKind
	IsActive        bool
	Provenance      string
	DurationMinutes int
}

// Aggregator merges the persisted slot entry, its occupants, and matching
// recurring definitions into ordered candidate lists. It holds request-local
// views fetched once per (user, date) and performs pure reads only.
type Aggregator struct {
	index     *TaskIndex
	recurring []*task.RecurringTask
	skips     map[skipKey]bool
}

type skipKey struct {
	block    string
	quartile int
	key      string
}

// NewAggregator builds an aggregator from one user/date's data.
func NewAggregator(index *TaskIndex, recurring []*task.RecurringTask, skips []*task.SkipEntry) *Aggregator {
	skipSet := make(map[skipKey]bool, len(skips))
	for _, s := range skips {
		skipSet[skipKey{s.TimeBlock, s.Quartile, s.RecurringKey}] = true
	}
	return &Aggregator{index: index, recurring: recurring, skips: skipSet}
}

// Candidates returns the ordered candidate list for one slot: active
// candidates derived from the persisted entry first, then eligible recurring
// definitions in discovery order. A nil entry is not an error; the result is
// then built entirely from recurring definitions.
func (a *Aggregator) Candidates(entry *task.Entry, date time.Time, block string, quartile int) []Candidate {
	var out []Candidate

	completed := entry != nil && entry.IsCompleted()
	if entry != nil && !completed && !entry.IsPlaceholder() {
		out = append(out, a.activeCandidates(entry, block, quartile)...)
	}

	if completed {
		return out
	}

	activeNames := make(map[string]bool, len(out))
	for _, c := range out {
		activeNames[c.Name] = true
	}

	for _, r := range a.recurring {
		if !r.Active || !r.OccursOn(date) {
			continue
		}
		if grid.ResolveLabel(r.TimeBlock).Name != block {
			continue
		}
		if r.Quarter != 0 && r.Quarter != quartile {
			continue
		}
		if activeNames[r.TaskName] {
			continue
		}
		if a.skipped(block, quartile, r.SkipKey()) || a.skipped(block, quartile, task.NameSkipKey(r.TaskName)) {
			continue
		}
		out = append(out, Candidate{
			ID:              r.ID,
			Name:            r.TaskName,
			Kind:            KindRecurring,
			Provenance:      ProvenanceRecurring,
			DurationMinutes: r.DurationMinutes,
		})
	}

	return out
}

// activeCandidates derives the slot's currently active occupants from a
// persisted entry: the referenced regular task when one is set (actual
// preferred over planned), else the decoded recurring-name occupants.
func (a *Aggregator) activeCandidates(entry *task.Entry, block string, quartile int) []Candidate {
	if ref := entry.TaskRef(); ref != "" {
		t := a.index.Get(ref)
		if t == nil {
			// Reference to a foreign or ineligible task: dropped, not surfaced.
			return nil
		}
		return []Candidate{{
			ID:              t.ID,
			Name:            t.Name,
			Kind:            KindRegular,
			IsActive:        true,
			Provenance:      ProvenanceEntry,
			DurationMinutes: t.EstimatedTime,
		}}
	}

	occupants := entry.Occupants()
	out := make([]Candidate, 0, len(occupants))
	for i, name := range occupants {
		out = append(out, Candidate{
			ID:         OccupantCandidateID(block, quartile, i),
			Name:       name,
			Kind:       KindRecurring,
			IsActive:   true,
			Provenance: ProvenanceOccupants,
		})
	}
	return out
}

func (a *Aggregator) skipped(block string, quartile int, key string) bool {
	return a.skips[skipKey{block, quartile, key}]
}

// OccupantCandidateID derives the stable-within-slot id of an occupant from
// its list position.
func OccupantCandidateID(block string, quartile, index int) string {
	slug := strings.ReplaceAll(strings.ToLower(block), " ", "-")
	return fmt.Sprintf("multiple-%s-%d-%d", slug, quartile, index)
}

// ParseOccupantCandidateID recovers the occupant index from a derived
// candidate id. Returns -1 if the id is not occupant-derived.
func ParseOccupantCandidateID(id string) int {
	if !strings.HasPrefix(id, "multiple-") {
		return -1
	}
	parts := strings.Split(id, "-")
	if len(parts) < 4 {
		return -1
	}
	var index int
	if _, err := fmt.Sscanf(parts[len(parts)-1], "%d", &index); err != nil {
		return -1
	}
	return index
}
