package models

import (
	"reflect"
	"testing"
)

// TestNewExerciseEntrySuperSet verifies that a name containing the combination
// delimiter is flagged and split into trimmed movement names, in order.
func TestNewExerciseEntrySuperSet(t *testing.T) {
	tests := []struct {
		name     string
		exName   string
		wantFlag bool
		wantSub  []string
	}{
		{
			name:     "combined",
			exName:   "Bench Press + Push-ups",
			wantFlag: true,
			wantSub:  []string{"Bench Press", "Push-ups"},
		},
		{
			name:     "three movements",
			exName:   "סקוואט+לאנג' + קפיצות",
			wantFlag: true,
			wantSub:  []string{"סקוואט", "לאנג'", "קפיצות"},
		},
		{
			name:     "plain",
			exName:   "Deadlift",
			wantFlag: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExerciseEntry(tt.exName, "3", "10", "", 0)
			if e.IsSuperSet != tt.wantFlag {
				t.Errorf("IsSuperSet = %v, want %v", e.IsSuperSet, tt.wantFlag)
			}
			if tt.wantFlag && !reflect.DeepEqual(e.SuperSet, tt.wantSub) {
				t.Errorf("SuperSet = %v, want %v", e.SuperSet, tt.wantSub)
			}
			if e.Name != tt.exName {
				t.Errorf("Name = %q, want original %q", e.Name, tt.exName)
			}
		})
	}
}

// TestDisplayWeight verifies the trainee-facing rendering of alternate weight
// values. Non-delimited values (including free text) pass through unchanged.
func TestDisplayWeight(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"20|25", "20 / 25"},
		{"20 | 25", "20 / 25"},
		{"12.5", "12.5"},
		{"עד כשל", "עד כשל"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := DisplayWeight(tt.in); got != tt.want {
			t.Errorf("DisplayWeight(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestToggleEntry walks a program through check-off transitions and verifies
// status and percentage at each step.
func TestToggleEntry(t *testing.T) {
	p := Program{
		Exercises: []ExerciseEntry{
			NewExerciseEntry("Squat", "3", "8", "60", 0),
			NewExerciseEntry("Lunge", "3", "12", "", 1),
		},
		Status: StatusPending,
	}

	p.ToggleEntry(0)
	if p.Status != StatusPartiallyCompleted {
		t.Errorf("after 1/2: status = %q, want %q", p.Status, StatusPartiallyCompleted)
	}
	if p.CompletionPercentage != 50 {
		t.Errorf("after 1/2: percentage = %d, want 50", p.CompletionPercentage)
	}
	if !p.Exercises[0].IsCompleted {
		t.Error("entry 0 should be marked completed")
	}

	p.ToggleEntry(1)
	if p.Status != StatusCompleted {
		t.Errorf("after 2/2: status = %q, want %q", p.Status, StatusCompleted)
	}
	if p.CompletionPercentage != 100 {
		t.Errorf("after 2/2: percentage = %d, want 100", p.CompletionPercentage)
	}

	// Un-check both → back to pending
	p.ToggleEntry(0)
	p.ToggleEntry(1)
	if p.Status != StatusPending {
		t.Errorf("after 0/2: status = %q, want %q", p.Status, StatusPending)
	}
	if len(p.CompletedIndices) != 0 {
		t.Errorf("completed indices = %v, want empty", p.CompletedIndices)
	}

	// Out of range is a no-op
	p.ToggleEntry(5)
	if p.CompletionPercentage != 0 {
		t.Errorf("out-of-range toggle changed percentage to %d", p.CompletionPercentage)
	}
}

// TestProgramDocRoundTrip verifies that a program survives conversion to its
// document form and back, preserving entry order and string-typed fields.
func TestProgramDocRoundTrip(t *testing.T) {
	p := Program{
		TraineeID:   "uid-1",
		TraineeName: "Dana Cohen",
		Type:        "אימון A",
		Title:       "אימון A",
		Status:      StatusPending,
		Exercises: []ExerciseEntry{
			NewExerciseEntry("Bench Press + Push-ups", "4", "8-12", "20|25", 0),
			NewExerciseEntry("Row", "3", "10", "40", 1),
		},
	}

	got := ProgramFromDoc("uid-1_אימון_A", p.Doc())

	if got.TraineeID != p.TraineeID || got.Type != p.Type {
		t.Errorf("round trip lost identity/type: %+v", got)
	}
	if len(got.Exercises) != 2 {
		t.Fatalf("exercises = %d, want 2", len(got.Exercises))
	}
	if got.Exercises[0].Weight != "20|25" {
		t.Errorf("weight = %q, want raw %q", got.Exercises[0].Weight, "20|25")
	}
	if !got.Exercises[0].IsSuperSet || len(got.Exercises[0].SuperSet) != 2 {
		t.Errorf("super-set not preserved: %+v", got.Exercises[0])
	}
	if got.Exercises[1].Order != 1 {
		t.Errorf("order = %d, want 1", got.Exercises[1].Order)
	}
}

// TestSanitizeProgramType verifies the document-ID sanitation rules: runs of
// whitespace and path separators become single underscores.
func TestSanitizeProgramType(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"אימון A", "אימון_A"},
		{"Upper  Body / Push", "Upper_Body___Push"},
		{"Legs", "Legs"},
	}
	for _, tt := range tests {
		if got := SanitizeProgramType(tt.in); got != tt.want {
			t.Errorf("SanitizeProgramType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
