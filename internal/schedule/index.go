// Package schedule implements the daily schedule engine: normalizing raw
// AI or heuristic schedule payloads onto the canonical time grid, resolving
// task references, aggregating slot candidates, and orchestrating generation
// with a local fallback.
package schedule

import (
	"strings"

	"github.com/afontaine/blockday/internal/task"
)

// Ref is a task reference as it arrives from untrusted payloads: an explicit
// id, a freeform name, or neither (a recurring slot with no backing task).
type Ref struct {
	ID   string
	Name string
}

// IsZero reports whether the reference carries neither an id nor a name.
func (r Ref) IsZero() bool {
	return r.ID == "" && strings.TrimSpace(r.Name) == ""
}

// TaskIndex resolves task references against the set of scheduling-eligible
// tasks. It is request-local: built fresh from one user's task list and
// discarded after use.
type TaskIndex struct {
	order []*task.Task
	byID  map[string]*task.Task
}

// NewTaskIndex builds an index from the given tasks, keeping only those
// eligible for scheduling. Milestone-type tasks are dropped here so that
// resolution can never bind a deliverable into a time slot.
func NewTaskIndex(tasks []*task.Task) *TaskIndex {
	ix := &TaskIndex{byID: make(map[string]*task.Task, len(tasks))}
	for _, t := range tasks {
		if !t.Eligible() {
			continue
		}
		ix.order = append(ix.order, t)
		ix.byID[t.ID] = t
	}
	return ix
}

// Resolve maps a reference to a task id. Explicit ids are checked first,
// verbatim. Names resolve by exact case-insensitive trimmed match, then by
// bidirectional substring containment over the same normalized index; among
// several containment matches the shortest task name wins, ties broken by
// index order. A failed resolution returns ("", false) and is not an error:
// callers treat it as "no task reference".
func (ix *TaskIndex) Resolve(ref Ref) (string, bool) {
	if ref.ID != "" {
		if _, ok := ix.byID[ref.ID]; ok {
			return ref.ID, true
		}
	}

	query := normalizeName(ref.Name)
	if query == "" {
		return "", false
	}

	for _, t := range ix.order {
		if normalizeName(t.Name) == query {
			return t.ID, true
		}
	}

	var best *task.Task
	for _, t := range ix.order {
		entry := normalizeName(t.Name)
		if !strings.Contains(entry, query) && !strings.Contains(query, entry) {
			continue
		}
		if best == nil || len(t.Name) < len(best.Name) {
			best = t
		}
	}
	if best != nil {
		return best.ID, true
	}

	return "", false
}

// Has reports whether the id belongs to an eligible task.
func (ix *TaskIndex) Has(id string) bool {
	_, ok := ix.byID[id]
	return ok
}

// Get returns the eligible task with the given id, or nil.
func (ix *TaskIndex) Get(id string) *task.Task {
	return ix.byID[id]
}

// Tasks returns the indexed tasks in insertion order.
func (ix *TaskIndex) Tasks() []*task.Task {
	return ix.order
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
