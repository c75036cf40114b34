package task

import (
	"fmt"
	"strings"
)

// The persisted schema allows a single planned/actual task pair per slot, so
// recurring and nameless occupants are encoded in the entry's reflection
// field behind sentinel prefixes. This file is the only place that knows the
// string format; everything else works on the typed Occupants value.
const (
	prefixRecurring   = "RECURRING_TASK:"
	prefixMultiple    = "MULTIPLE_TASKS:"
	prefixPlaceholder = "PLACEHOLDER:"

	multipleSeparator = "|"
)

// Occupants is the ordered list of recurring-name occupants of a slot. An
// occupant's position in the list is its only stable identity within the
// slot. The regular-task occupant, if any, lives on the entry's task
// references and is not part of this list.
type Occupants []string

// ParseReflection decodes a reflection field into its occupant list.
// Placeholder markers and plain free-text reflections decode to an empty
// list; the second return distinguishes placeholders so callers can treat
// those slots as never-rendered filler.
func ParseReflection(s string) (Occupants, bool) {
	switch {
	case strings.HasPrefix(s, prefixPlaceholder):
		return nil, true
	case strings.HasPrefix(s, prefixRecurring):
		name := strings.TrimPrefix(s, prefixRecurring)
		if name == "" {
			return nil, false
		}
		return Occupants{name}, false
	case strings.HasPrefix(s, prefixMultiple):
		raw := strings.Split(strings.TrimPrefix(s, prefixMultiple), multipleSeparator)
		names := make(Occupants, 0, len(raw))
		for _, n := range raw {
			if n != "" {
				names = append(names, n)
			}
		}
		return names, false
	default:
		return nil, false
	}
}

// IsPlaceholderReflection reports whether s is a placeholder marker.
func IsPlaceholderReflection(s string) bool {
	return strings.HasPrefix(s, prefixPlaceholder)
}

// PlaceholderReflection builds a placeholder marker with the given note.
func PlaceholderReflection(note string) string {
	return prefixPlaceholder + note
}

// Encode renders the occupant list back into the reflection wire format.
// Zero occupants encode to the empty string, one to the single-recurring
// form, more to the pipe-delimited list.
func (o Occupants) Encode() string {
	switch len(o) {
	case 0:
		return ""
	case 1:
		return prefixRecurring + o[0]
	default:
		return prefixMultiple + strings.Join(o, multipleSeparator)
	}
}

// Contains reports whether the list holds the given name.
func (o Occupants) Contains(name string) bool {
	for _, n := range o {
		if n == name {
			return true
		}
	}
	return false
}

// Add appends a recurring occupant. Recurring-name collisions degrade into
// the list encoding, so Add never fails.
func (o Occupants) Add(name string) Occupants {
	return append(o, name)
}

// RemoveAt removes the occupant at the given index and returns the removed
// name with the shrunk list. Out-of-range indexes leave the list unchanged.
func (o Occupants) RemoveAt(index int) (string, Occupants) {
	if index < 0 || index >= len(o) {
		return "", o
	}
	removed := o[index]
	rest := make(Occupants, 0, len(o)-1)
	rest = append(rest, o[:index]...)
	rest = append(rest, o[index+1:]...)
	return removed, rest
}

// AddRegular assigns a regular task to the entry. A slot holds at most one
// regular task: if the entry already references one, the addition is refused
// with ErrSlotOccupied and the entry is left untouched. Placeholder markers
// are discarded by a successful assignment.
func (e *Entry) AddRegular(taskID string) error {
	if e.TaskRef() != "" {
		return fmt.Errorf("%w: %s %s q%d", ErrSlotOccupied, e.Date.Format("2006-01-02"), e.TimeBlock, e.Quartile)
	}
	if e.IsPlaceholder() {
		e.Reflection = ""
	}
	e.PlannedTaskID = taskID
	return nil
}

// AddRecurring adds a recurring-name occupant to the entry, transitioning
// the reflection encoding: none/placeholder -> single, single -> multiple,
// multiple -> appended.
func (e *Entry) AddRecurring(name string) {
	occupants, _ := ParseReflection(e.Reflection)
	e.Reflection = occupants.Add(name).Encode()
}

// RemoveRecurring removes the recurring occupant at the given index,
// collapsing the encoding (multiple of two -> single, single -> empty).
// It returns the removed name and the number of occupants remaining.
func (e *Entry) RemoveRecurring(index int) (string, int) {
	occupants, placeholder := ParseReflection(e.Reflection)
	if placeholder {
		return "", 0
	}
	removed, rest := occupants.RemoveAt(index)
	if removed == "" {
		return "", len(occupants)
	}
	e.Reflection = rest.Encode()
	return removed, len(rest)
}

// Occupants returns the entry's decoded recurring occupants.
func (e *Entry) Occupants() Occupants {
	occupants, _ := ParseReflection(e.Reflection)
	return occupants
}
