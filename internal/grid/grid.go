// Package grid defines the canonical time-block grid the daily schedule is
// built on. The grid is fixed at compile time: an ordered set of named blocks
// covering the full 24-hour cycle, each split into 4 equal quartiles.
package grid

import (
	"strings"
	"time"
)

// Quartiles is the number of sub-slots per block.
const Quartiles = 4

// Block is one canonical time block. Start and End are "HH:MM" in 24-hour
// format; End of the last block is "24:00" so the blocks tile the day.
type Block struct {
	Name  string
	Start string
	End   string
}

// Blocks is the canonical ordered grid. It is never mutated; both scheduling
// and rendering derive from this single definition.
var Blocks = []Block{
	{Name: "REST", Start: "00:00", End: "06:00"},
	{Name: "LAUNCH", Start: "06:00", End: "09:00"},
	{Name: "CHIEF PROJECT", Start: "09:00", End: "11:00"},
	{Name: "COMMUNICATIONS", Start: "11:00", End: "13:00"},
	{Name: "DEEP FOCUS", Start: "13:00", End: "15:00"},
	{Name: "ADMIN", Start: "15:00", End: "17:00"},
	{Name: "COLLABORATION", Start: "17:00", End: "19:00"},
	{Name: "FLEX EVENING", Start: "19:00", End: "24:00"},
}

// CatchAll returns the designated fallback block for unresolvable input.
// It is the last block of the grid.
func CatchAll() Block {
	return Blocks[len(Blocks)-1]
}

// ByName returns the block with the given name (case-insensitive) and true,
// or the zero Block and false.
func ByName(name string) (Block, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for _, b := range Blocks {
		if b.Name == name {
			return b, true
		}
	}
	return Block{}, false
}

// ResolveClock maps a clock time to the block whose [start, end) interval
// contains it. Unparseable input resolves to the catch-all block; this
// function never fails because upstream data is untrusted.
func ResolveClock(clock string) Block {
	m, ok := parseClock(clock)
	if !ok {
		return CatchAll()
	}
	for _, b := range Blocks {
		if m >= minutes(b.Start) && m < minutes(b.End) {
			return b
		}
	}
	return CatchAll()
}

// ResolveLabel maps an arbitrary human label to a canonical block. It tries,
// in order: exact block name, the start time of a "HH:MM-HH:MM" range label,
// a bare clock time, and substring containment against block names. Anything
// else resolves to the catch-all block.
func ResolveLabel(label string) Block {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return CatchAll()
	}

	if b, ok := ByName(trimmed); ok {
		return b
	}

	// Time-range labels like "9:00-11:00" or "17:00 - 19:00".
	if start, _, found := strings.Cut(trimmed, "-"); found {
		if m, ok := parseClock(start); ok {
			return resolveMinutes(m)
		}
	}

	if m, ok := parseClock(trimmed); ok {
		return resolveMinutes(m)
	}

	upper := strings.ToUpper(trimmed)
	for _, b := range Blocks {
		if strings.Contains(b.Name, upper) || strings.Contains(upper, b.Name) {
			return b
		}
	}

	return CatchAll()
}

// QuartileSpan returns the clock interval of quartile q (1-4) within the
// block. Used for display and duration math only, never for slot identity.
func QuartileSpan(b Block, q int) (start, end string) {
	if q < 1 {
		q = 1
	}
	if q > Quartiles {
		q = Quartiles
	}
	blockStart := minutes(b.Start)
	span := (minutes(b.End) - blockStart) / Quartiles
	return clock(blockStart + (q-1)*span), clock(blockStart + q*span)
}

// QuartileMinutes returns the duration of one quartile of the block.
func QuartileMinutes(b Block) int {
	return (minutes(b.End) - minutes(b.Start)) / Quartiles
}

// ParseQuartileLabel parses a free-text quartile label ("1st", "second",
// "Q3", "4") into a quartile number. Unrecognized labels default to 1.
func ParseQuartileLabel(label string) int {
	s := strings.ToLower(strings.TrimSpace(label))
	switch s {
	case "1", "1st", "first", "q1":
		return 1
	case "2", "2nd", "second", "q2":
		return 2
	case "3", "3rd", "third", "q3":
		return 3
	case "4", "4th", "fourth", "last", "q4":
		return 4
	default:
		return 1
	}
}

// ValidQuartile reports whether q is a valid quartile number.
func ValidQuartile(q int) bool {
	return q >= 1 && q <= Quartiles
}

func resolveMinutes(m int) Block {
	for _, b := range Blocks {
		if m >= minutes(b.Start) && m < minutes(b.End) {
			return b
		}
	}
	return CatchAll()
}

// parseClock parses "HH:MM" (or "H:MM") into minutes since midnight.
func parseClock(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 4 {
		s = "0" + s
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

// minutes converts a trusted grid time ("HH:MM", or "24:00") to minutes.
func minutes(s string) int {
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	return h*60 + m
}

func clock(m int) string {
	if m >= 24*60 {
		return "24:00"
	}
	return time.Date(2000, 1, 1, m/60, m%60, 0, 0, time.UTC).Format("15:04")
}
