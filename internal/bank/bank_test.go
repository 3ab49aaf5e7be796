package bank

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/claude/fixfit/internal/models"
	"github.com/claude/fixfit/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClassify(t *testing.T) {
	c := NewClassifier(nil, "")
	tests := []struct {
		name string
		want string
	}{
		{"דדליפט רומני", "גב"},
		{"חתירה בכבל", "גב"},
		{"סקוואט גביע", "רגליים"},
		{"לאנג' הליכה", "רגליים"},
		{"לחיצת חזה בשיפוע", "חזה"},
		{"פרפר בכבלים", "חזה"},
		{"לחיצת כתפיים", "חזה"}, // first matching rule wins
		{"ארנולד פרס", "כתפיים"},
		{"כפיפת ביצפס", "ידיים"},
		{"פלאנק צידי", "בטן"},
		{"Something Else", "כללי"},
	}
	for _, tt := range tests {
		if got := c.Classify(tt.name); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestClassifyCustomRules(t *testing.T) {
	c := NewClassifier([]Rule{
		{Keywords: []string{"row"}, Category: "back"},
	}, "misc")
	if got := c.Classify("Seated Row"); got != "misc" {
		t.Errorf("keyword match is case-sensitive by contract, got %q", got)
	}
	if got := c.Classify("Cable row"); got != "back" {
		t.Errorf("Classify = %q, want back", got)
	}
	if got := c.Classify("Deadlift"); got != "misc" {
		t.Errorf("Classify = %q, want misc", got)
	}
}

func seedProgram(t *testing.T, mem *store.Memory, typ string, entries ...models.ExerciseEntry) {
	t.Helper()
	p := models.Program{
		TraineeID:   "user-1",
		TraineeName: "Dana",
		Type:        typ,
		Exercises:   entries,
		Status:      models.StatusPending,
	}
	if _, err := mem.Add(context.Background(), store.CollectionWorkouts, p.Doc()); err != nil {
		t.Fatal(err)
	}
}

func TestPopulate(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	seedProgram(t, mem, "אימון A",
		models.NewExerciseEntry("סקוואט", "4", "8", "60", 0),
		models.NewExerciseEntry("לחיצת חזה + פרפר", "3", "10", "20", 1),
	)
	seedProgram(t, mem, "אימון B",
		models.NewExerciseEntry("סקוואט", "5", "5", "80", 0),
		models.NewExerciseEntry("משהו אחר", "3", "12", "", 1),
	)

	s := NewSweeper(mem, testLogger(), NewClassifier(nil, ""))
	stats, err := s.Populate(ctx)
	if err != nil {
		t.Fatalf("populate: %v", err)
	}

	// Unique movements: סקוואט, לחיצת חזה, פרפר, משהו אחר. The super-set
	// contributes its members, not the combined label.
	if stats.Added != 4 {
		t.Errorf("Added = %d, want 4", stats.Added)
	}
	if stats.ProgramsScanned != 2 {
		t.Errorf("ProgramsScanned = %d, want 2", stats.ProgramsScanned)
	}

	snaps, _ := mem.List(ctx, store.CollectionExerciseBank)
	byName := map[string]store.Document{}
	for _, snap := range snaps {
		byName[snap.Data["name"].(string)] = snap.Data
	}
	if len(byName) != 4 {
		t.Fatalf("bank entries = %d, want 4", len(byName))
	}
	if _, ok := byName["לחיצת חזה + פרפר"]; ok {
		t.Error("combined super-set label should not be banked")
	}
	if got := byName["סקוואט"]["category"]; got != "רגליים" {
		t.Errorf("סקוואט category = %v", got)
	}
	if got := byName["משהו אחר"]["category"]; got != "כללי" {
		t.Errorf("fallback category = %v", got)
	}
	if got := byName["סקוואט"]["defaultSets"]; got != "4" {
		t.Errorf("defaultSets = %v, want the first-seen prescription", got)
	}
	if _, ok := byName["סקוואט"]["createdAt"]; !ok {
		t.Error("missing createdAt")
	}
}

// TestPopulateDefaultsFromEntry verifies the swept entry's own sets/reps seed
// the bank defaults; the "3"/"8-12" constants apply only when the row is blank.
func TestPopulateDefaultsFromEntry(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	seedProgram(t, mem, "אימון A",
		models.NewExerciseEntry("לחיצת רגליים", "5", "6-8", "120", 0),
		models.NewExerciseEntry("כפיפות בטן", "", "", "", 1),
	)

	s := NewSweeper(mem, testLogger(), NewClassifier(nil, ""))
	if _, err := s.Populate(ctx); err != nil {
		t.Fatalf("populate: %v", err)
	}

	snaps, _ := mem.List(ctx, store.CollectionExerciseBank)
	byName := map[string]store.Document{}
	for _, snap := range snaps {
		byName[snap.Data["name"].(string)] = snap.Data
	}
	if got := byName["לחיצת רגליים"]["defaultSets"]; got != "5" {
		t.Errorf("defaultSets = %v, want the entry's own sets", got)
	}
	if got := byName["לחיצת רגליים"]["defaultReps"]; got != "6-8" {
		t.Errorf("defaultReps = %v, want the entry's own reps", got)
	}
	if got := byName["כפיפות בטן"]["defaultSets"]; got != DefaultSets {
		t.Errorf("blank row defaultSets = %v, want %q", got, DefaultSets)
	}
	if got := byName["כפיפות בטן"]["defaultReps"]; got != DefaultReps {
		t.Errorf("blank row defaultReps = %v, want %q", got, DefaultReps)
	}
}

// TestPopulateRerun verifies a second sweep adds nothing.
func TestPopulateRerun(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	seedProgram(t, mem, "אימון A", models.NewExerciseEntry("סקוואט", "4", "8", "60", 0))

	s := NewSweeper(mem, testLogger(), NewClassifier(nil, ""))
	if _, err := s.Populate(ctx); err != nil {
		t.Fatal(err)
	}
	stats, err := s.Populate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Added != 0 {
		t.Errorf("Added = %d on rerun, want 0", stats.Added)
	}
	snaps, _ := mem.List(ctx, store.CollectionExerciseBank)
	if len(snaps) != 1 {
		t.Errorf("bank entries = %d, want 1", len(snaps))
	}
}
