package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/afontaine/blockday/internal/grid"
	"github.com/afontaine/blockday/internal/task"
)

// ErrUnrecognizedPayload is returned when the raw schedule is neither of the
// accepted shapes.
var ErrUnrecognizedPayload = errors.New("unrecognized schedule payload shape")

// Generation provenance values.
const (
	SourceOpenAI        = "openai"
	SourceLocalFallback = "local_fallback"
)

// RawSchedule is a generator's untyped output plus its provenance. The
// payload shape is inspected structurally and never leaks past Normalize.
type RawSchedule struct {
	Source  string
	Payload json.RawMessage
}

// rawTaskRef is the loosest task reference shape generators produce.
type rawTaskRef struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	TaskName     string `json:"taskName"`
	AssignedTask string `json:"assignedTask"`
}

func (r *rawTaskRef) ref() Ref {
	if r == nil {
		return Ref{}
	}
	name := r.Name
	if name == "" {
		name = r.TaskName
	}
	if name == "" {
		name = r.AssignedTask
	}
	return Ref{ID: r.ID, Name: name}
}

// rawBlock is one element of the array payload shape. A block carries up to
// four ordered task slots in one of three spellings.
type rawBlock struct {
	TimeBlock string `json:"timeBlock"`
	Block     string `json:"block"`
	Name      string `json:"name"`
	Label     string `json:"label"`

	Tasks     []rawTaskRef `json:"tasks"`
	Quartiles []struct {
		Task *rawTaskRef `json:"task"`
	} `json:"quartiles"`
	Task *rawTaskRef `json:"task"`
}

func (b *rawBlock) label() string {
	for _, s := range []string{b.TimeBlock, b.Block, b.Name, b.Label} {
		if s != "" {
			return s
		}
	}
	return ""
}

// refs returns the block's ordered task references, at most one per
// quartile. Excess slots beyond the quartile count are silently dropped.
func (b *rawBlock) refs() []Ref {
	var refs []Ref
	switch {
	case len(b.Tasks) > 0:
		for i := range b.Tasks {
			refs = append(refs, b.Tasks[i].ref())
		}
	case len(b.Quartiles) > 0:
		for _, q := range b.Quartiles {
			refs = append(refs, q.Task.ref())
		}
	case b.Task != nil:
		refs = append(refs, b.Task.ref())
	}
	if len(refs) > grid.Quartiles {
		refs = refs[:grid.Quartiles]
	}
	return refs
}

// rawSlot is one value of the flat-object payload shape, keyed by a
// time-range label.
type rawSlot struct {
	Task         *rawTaskRef `json:"task"`
	AssignedTask string      `json:"assignedTask"`
	Quartile     rawQuartile `json:"quartile"`
}

func (s *rawSlot) ref() Ref {
	if s.Task != nil && !s.Task.ref().IsZero() {
		return s.Task.ref()
	}
	return Ref{Name: s.AssignedTask}
}

// rawQuartile accepts a quartile either as a JSON number or as a free-text
// label ("1st", "second"). Unrecognized values default to quartile 1.
type rawQuartile int

func (q *rawQuartile) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if n, err := strconv.Atoi(s); err == nil && grid.ValidQuartile(n) {
		*q = rawQuartile(n)
		return nil
	}
	*q = rawQuartile(grid.ParseQuartileLabel(s))
	return nil
}

func (q rawQuartile) value() int {
	if !grid.ValidQuartile(int(q)) {
		return 1
	}
	return int(q)
}

// Normalize converts an untrusted raw schedule payload into draft schedule
// entries on the canonical grid. Both accepted shapes are supported; the
// shape is detected from the payload's leading token.
//
// Drafts whose task reference fails to resolve are still emitted with an
// empty planned-task id, preserving recurring slots that have no backing
// task row. A validity pass then drops any draft whose resolved id is not in
// the eligible-task index, which also covers ids the generator invented.
// The first valid draft wins when a slot is referenced twice; slot identity
// is (date, timeBlock, quartile) and downstream persistence keys strictly
// on it.
func Normalize(userID string, raw json.RawMessage, date time.Time, index *TaskIndex) ([]*task.Entry, error) {
	payload := bytesTrimLeft(raw)
	if len(payload) == 0 {
		return nil, ErrUnrecognizedPayload
	}

	var drafts []*task.Entry
	switch payload[0] {
	case '[':
		var blocks []rawBlock
		if err := json.Unmarshal(raw, &blocks); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnrecognizedPayload, err)
		}
		drafts = normalizeArray(userID, blocks, date, index)
	case '{':
		var slots map[string]rawSlot
		if err := json.Unmarshal(raw, &slots); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnrecognizedPayload, err)
		}
		drafts = normalizeFlat(userID, slots, date, index)
	default:
		return nil, ErrUnrecognizedPayload
	}

	// Validity before dedupe: an invalid reference must never displace a
	// valid one for the same slot.
	return dedupeSlots(filterValid(drafts, index)), nil
}

func normalizeArray(userID string, blocks []rawBlock, date time.Time, index *TaskIndex) []*task.Entry {
	var drafts []*task.Entry
	for i := range blocks {
		b := grid.ResolveLabel(blocks[i].label())
		for pos, ref := range blocks[i].refs() {
			drafts = append(drafts, draftEntry(userID, date, b.Name, pos+1, ref, index))
		}
	}
	return drafts
}

func normalizeFlat(userID string, slots map[string]rawSlot, date time.Time, index *TaskIndex) []*task.Entry {
	var drafts []*task.Entry
	for label, slot := range slots {
		b := grid.ResolveLabel(label)
		drafts = append(drafts, draftEntry(userID, date, b.Name, slot.Quartile.value(), slot.ref(), index))
	}
	return drafts
}

func draftEntry(userID string, date time.Time, block string, quartile int, ref Ref, index *TaskIndex) *task.Entry {
	id, _ := index.Resolve(ref)
	return task.NewEntry(userID, date, block, quartile, id)
}

// filterValid drops drafts whose planned-task id is set but does not belong
// to the eligible-task set. Empty references survive: they mark recurring
// slots.
func filterValid(drafts []*task.Entry, index *TaskIndex) []*task.Entry {
	valid := drafts[:0]
	for _, d := range drafts {
		if d.PlannedTaskID != "" && !index.Has(d.PlannedTaskID) {
			continue
		}
		valid = append(valid, d)
	}
	return valid
}

// dedupeSlots keeps the first draft per (timeBlock, quartile) so the insert
// phase can never violate slot identity.
func dedupeSlots(drafts []*task.Entry) []*task.Entry {
	type slot struct {
		block    string
		quartile int
	}
	seen := make(map[slot]bool, len(drafts))
	out := drafts[:0]
	for _, d := range drafts {
		key := slot{d.TimeBlock, d.Quartile}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d)
	}
	return out
}

func bytesTrimLeft(raw []byte) []byte {
	for len(raw) > 0 {
		switch raw[0] {
		case ' ', '\t', '\n', '\r':
			raw = raw[1:]
		default:
			return raw
		}
	}
	return raw
}
