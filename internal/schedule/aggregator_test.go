package schedule

import (
	"testing"
	"time"

	"github.com/afontaine/blockday/internal/task"
)

// monday is a date whose weekday matches the recurring fixtures below.
var monday = time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

func testRecurring(id, name, block string, quarter int) *task.RecurringTask {
	return &task.RecurringTask{
		ID:         id,
		UserID:     "u1",
		TaskName:   name,
		TimeBlock:  block,
		Quarter:    quarter,
		DaysOfWeek: []string{"monday"},
		Active:     true,
	}
}

func TestCandidatesFromRecurringOnly(t *testing.T) {
	agg := NewAggregator(testIndex(), []*task.RecurringTask{
		testRecurring("r1", "Standup", "COMMUNICATIONS", 1),
		testRecurring("r2", "Gym", "COLLABORATION", 0), // any quartile
	}, nil)

	got := agg.Candidates(nil, monday, "COMMUNICATIONS", 1)
	if len(got) != 1 || got[0].Name != "Standup" {
		t.Fatalf("got %+v, want single Standup candidate", got)
	}
	if got[0].IsActive {
		t.Error("recurring-definition candidates are not active")
	}
	if got[0].Provenance != ProvenanceRecurring {
		t.Errorf("provenance = %s, want %s", got[0].Provenance, ProvenanceRecurring)
	}

	// Zero quarter matches every quartile of its block.
	for q := 1; q <= 4; q++ {
		got := agg.Candidates(nil, monday, "COLLABORATION", q)
		if len(got) != 1 || got[0].Name != "Gym" {
			t.Errorf("COLLABORATION q%d: got %+v, want Gym", q, got)
		}
	}

	// Wrong block and wrong quartile yield nothing.
	if got := agg.Candidates(nil, monday, "ADMIN", 1); len(got) != 0 {
		t.Errorf("ADMIN q1: got %+v, want none", got)
	}
	if got := agg.Candidates(nil, monday, "COMMUNICATIONS", 2); len(got) != 0 {
		t.Errorf("COMMUNICATIONS q2: got %+v, want none", got)
	}
}

func TestCandidatesWrongWeekday(t *testing.T) {
	agg := NewAggregator(testIndex(), []*task.RecurringTask{
		testRecurring("r1", "Standup", "COMMUNICATIONS", 1),
	}, nil)

	tuesday := monday.AddDate(0, 0, 1)
	if got := agg.Candidates(nil, tuesday, "COMMUNICATIONS", 1); len(got) != 0 {
		t.Errorf("got %+v, want none on Tuesday", got)
	}
}

func TestCandidatesFromEntryTaskRef(t *testing.T) {
	agg := NewAggregator(testIndex(), nil, nil)

	entry := task.NewEntry("u1", monday, "CHIEF PROJECT", 2, "t1")
	got := agg.Candidates(entry, monday, "CHIEF PROJECT", 2)
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	c := got[0]
	if c.ID != "t1" || c.Name != "Write Report" || !c.IsActive || c.Kind != KindRegular {
		t.Errorf("unexpected candidate %+v", c)
	}
	if c.Provenance != ProvenanceEntry {
		t.Errorf("provenance = %s, want %s", c.Provenance, ProvenanceEntry)
	}
}

func TestCandidatesForeignTaskRefDropped(t *testing.T) {
	agg := NewAggregator(testIndex(), nil, nil)

	entry := task.NewEntry("u1", monday, "CHIEF PROJECT", 2, "not-a-task")
	if got := agg.Candidates(entry, monday, "CHIEF PROJECT", 2); len(got) != 0 {
		t.Errorf("got %+v, want none for a foreign reference", got)
	}
}

func TestCandidatesFromOccupants(t *testing.T) {
	agg := NewAggregator(testIndex(), nil, nil)

	entry := task.NewEntry("u1", monday, "COMMUNICATIONS", 1, "")
	entry.AddRecurring("Standup")
	entry.AddRecurring("Email sweep")

	got := agg.Candidates(entry, monday, "COMMUNICATIONS", 1)
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2", len(got))
	}
	if got[0].Name != "Standup" || got[1].Name != "Email sweep" {
		t.Errorf("occupant order lost: %+v", got)
	}
	if got[0].ID != OccupantCandidateID("COMMUNICATIONS", 1, 0) {
		t.Errorf("occupant id = %q", got[0].ID)
	}
	for _, c := range got {
		if !c.IsActive || c.Provenance != ProvenanceOccupants {
			t.Errorf("unexpected occupant candidate %+v", c)
		}
	}
}

func TestCandidatesDedupByName(t *testing.T) {
	// A recurring definition whose occurrence is already an active occupant
	// must not appear twice.
	agg := NewAggregator(testIndex(), []*task.RecurringTask{
		testRecurring("r1", "Standup", "COMMUNICATIONS", 1),
	}, nil)

	entry := task.NewEntry("u1", monday, "COMMUNICATIONS", 1, "")
	entry.AddRecurring("Standup")

	got := agg.Candidates(entry, monday, "COMMUNICATIONS", 1)
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1: %+v", len(got), got)
	}
	if !got[0].IsActive {
		t.Error("the active occupant should win over the definition")
	}
}

func TestCandidatesCompletedEntryBlocksAll(t *testing.T) {
	agg := NewAggregator(testIndex(), []*task.RecurringTask{
		testRecurring("r1", "Standup", "COMMUNICATIONS", 1),
	}, nil)

	entry := task.NewEntry("u1", monday, "COMMUNICATIONS", 1, "t1")
	entry.Status = task.EntryCompleted

	if got := agg.Candidates(entry, monday, "COMMUNICATIONS", 1); len(got) != 0 {
		t.Errorf("completed slot produced candidates: %+v", got)
	}
}

func TestCandidatesSkipRegistry(t *testing.T) {
	defs := []*task.RecurringTask{
		testRecurring("r1", "Standup", "COMMUNICATIONS", 1),
		testRecurring("r2", "Gym", "COLLABORATION", 1),
	}

	t.Run("id key", func(t *testing.T) {
		agg := NewAggregator(testIndex(), defs, []*task.SkipEntry{
			{UserID: "u1", Date: monday, TimeBlock: "COMMUNICATIONS", Quartile: 1, RecurringKey: "r1"},
		})
		if got := agg.Candidates(nil, monday, "COMMUNICATIONS", 1); len(got) != 0 {
			t.Errorf("skipped definition still surfaced: %+v", got)
		}
		// The skip is slot-scoped: another slot of the same block is unaffected.
		if got := agg.Candidates(nil, monday, "COLLABORATION", 1); len(got) != 1 {
			t.Errorf("unrelated slot affected: %+v", got)
		}
	})

	t.Run("name key", func(t *testing.T) {
		agg := NewAggregator(testIndex(), defs, []*task.SkipEntry{
			{UserID: "u1", Date: monday, TimeBlock: "COLLABORATION", Quartile: 1, RecurringKey: task.NameSkipKey("Gym")},
		})
		if got := agg.Candidates(nil, monday, "COLLABORATION", 1); len(got) != 0 {
			t.Errorf("name-skipped definition still surfaced: %+v", got)
		}
	})
}

func TestCandidatesPlaceholderEntry(t *testing.T) {
	agg := NewAggregator(testIndex(), []*task.RecurringTask{
		testRecurring("r1", "Standup", "COMMUNICATIONS", 1),
	}, nil)

	entry := task.NewEntry("u1", monday, "COMMUNICATIONS", 1, "")
	entry.Reflection = task.PlaceholderReflection("filler")

	// Placeholders contribute no active candidates but do not block recurring.
	got := agg.Candidates(entry, monday, "COMMUNICATIONS", 1)
	if len(got) != 1 || got[0].Name != "Standup" {
		t.Errorf("got %+v, want the recurring candidate only", got)
	}
}

func TestOccupantCandidateIDRoundTrip(t *testing.T) {
	id := OccupantCandidateID("CHIEF PROJECT", 2, 3)
	if id != "multiple-chief-project-2-3" {
		t.Errorf("OccupantCandidateID = %q", id)
	}
	if got := ParseOccupantCandidateID(id); got != 3 {
		t.Errorf("ParseOccupantCandidateID(%q) = %d, want 3", id, got)
	}

	for _, bad := range []string{"t1", "6e2a91d0", "multiple-", "multiple-x-y"} {
		if got := ParseOccupantCandidateID(bad); got != -1 {
			t.Errorf("ParseOccupantCandidateID(%q) = %d, want -1", bad, got)
		}
	}
}
