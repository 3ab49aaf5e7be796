package models

import (
	"math"
	"strings"
	"time"
)

// Program status values. A program starts pending and moves between states
// as the trainee checks entries off.
const (
	StatusPending            = "pending"
	StatusPartiallyCompleted = "partially_completed"
	StatusCompleted          = "completed"
)

// SuperSetDelimiter joins multiple movements in one entry name
// (e.g. "Bench Press + Push-ups").
const SuperSetDelimiter = "+"

// AltWeightDelimiter separates two alternative weight values stored in one
// field (e.g. "20|25"), rendered to trainees as "20 / 25".
const AltWeightDelimiter = "|"

// ExerciseEntry is one line item inside a Program. Sets, reps and weight are
// free-text on purpose: values like "8-12", "20|25" or "עד כשל" are all valid
// and must round-trip untouched.
type ExerciseEntry struct {
	Name        string   `json:"name"`
	Sets        string   `json:"sets"`
	Reps        string   `json:"reps"`
	Weight      string   `json:"weight"`
	IsSuperSet  bool     `json:"isSuperSet,omitempty"`
	SuperSet    []string `json:"superSetExercises,omitempty"`
	IsCompleted bool     `json:"isCompleted"`
	Order       int      `json:"order"`
}

// NewExerciseEntry builds an entry at the given position, detecting combined
// (super-set) names and splitting them into trimmed movement names.
func NewExerciseEntry(name, sets, reps, weight string, order int) ExerciseEntry {
	e := ExerciseEntry{
		Name:   name,
		Sets:   sets,
		Reps:   reps,
		Weight: weight,
		Order:  order,
	}
	if strings.Contains(name, SuperSetDelimiter) {
		e.IsSuperSet = true
		for _, part := range strings.Split(name, SuperSetDelimiter) {
			e.SuperSet = append(e.SuperSet, strings.TrimSpace(part))
		}
	}
	return e
}

// DisplayWeight renders a stored weight for the trainee view: alternate
// values joined by the delimiter become "A / B", anything else passes
// through unchanged.
func DisplayWeight(weight string) string {
	if !strings.Contains(weight, AltWeightDelimiter) {
		return weight
	}
	parts := strings.Split(weight, AltWeightDelimiter)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return strings.Join(parts, " / ")
}

// Program is one training protocol assigned to exactly one identity. The
// exercise order is the prescribed sequence and is never reordered after
// creation. TraineeName is a denormalized copy and may drift if the identity
// is renamed.
type Program struct {
	ID                   string          `json:"id"`
	TraineeID            string          `json:"traineeId"`
	TraineeName          string          `json:"traineeName"`
	Type                 string          `json:"type"`
	Title                string          `json:"title"`
	Exercises            []ExerciseEntry `json:"exercises"`
	Status               string          `json:"status"`
	CompletionPercentage int             `json:"completionPercentage"`
	CompletedIndices     []int           `json:"completedIndices,omitempty"`
	LastUpdated          time.Time       `json:"lastUpdated,omitempty"`
	SourceFile           string          `json:"sourceFile,omitempty"`
}

// ToggleEntry flips the completed flag for the entry at the given index and
// recomputes the completion percentage and status. Out-of-range indices are
// ignored.
func (p *Program) ToggleEntry(index int) {
	if index < 0 || index >= len(p.Exercises) {
		return
	}
	found := -1
	for i, ci := range p.CompletedIndices {
		if ci == index {
			found = i
			break
		}
	}
	if found >= 0 {
		p.CompletedIndices = append(p.CompletedIndices[:found], p.CompletedIndices[found+1:]...)
		p.Exercises[index].IsCompleted = false
	} else {
		p.CompletedIndices = append(p.CompletedIndices, index)
		p.Exercises[index].IsCompleted = true
	}
	p.recomputeProgress()
}

func (p *Program) recomputeProgress() {
	total := len(p.Exercises)
	if total == 0 {
		total = 1
	}
	p.CompletionPercentage = int(math.Round(float64(len(p.CompletedIndices)) / float64(total) * 100))
	switch {
	case p.CompletionPercentage == 100:
		p.Status = StatusCompleted
	case p.CompletionPercentage > 0:
		p.Status = StatusPartiallyCompleted
	default:
		p.Status = StatusPending
	}
}

// EntriesDoc converts exercise entries to their persisted document form.
func EntriesDoc(entries []ExerciseEntry) []map[string]any {
	out := make([]map[string]any, len(entries))
	for i, e := range entries {
		ex := map[string]any{
			"name":        e.Name,
			"sets":        e.Sets,
			"reps":        e.Reps,
			"weight":      e.Weight,
			"isCompleted": e.IsCompleted,
			"order":       e.Order,
		}
		if e.IsSuperSet {
			ex["isSuperSet"] = true
			ex["superSetExercises"] = e.SuperSet
		}
		out[i] = ex
	}
	return out
}

// Doc converts the program to its persisted document form (without the ID,
// which is the document key).
func (p Program) Doc() map[string]any {
	exercises := EntriesDoc(p.Exercises)
	d := map[string]any{
		"traineeId":   p.TraineeID,
		"traineeName": p.TraineeName,
		"type":        p.Type,
		"exercises":   exercises,
	}
	if p.Title != "" {
		d["title"] = p.Title
	}
	if p.Status != "" {
		d["status"] = p.Status
		d["completionPercentage"] = p.CompletionPercentage
	}
	if len(p.CompletedIndices) > 0 {
		d["completedIndices"] = p.CompletedIndices
	}
	if p.SourceFile != "" {
		d["sourceFile"] = p.SourceFile
	}
	return d
}

// ProgramFromDoc builds a Program from a workouts collection document.
func ProgramFromDoc(id string, d map[string]any) Program {
	p := Program{
		ID:                   id,
		TraineeID:            docString(d, "traineeId"),
		TraineeName:          docString(d, "traineeName"),
		Type:                 docString(d, "type"),
		Title:                docString(d, "title"),
		Status:               docString(d, "status"),
		CompletionPercentage: docInt(d, "completionPercentage"),
		CompletedIndices:     docIntSlice(d, "completedIndices"),
		LastUpdated:          docTime(d, "lastUpdated"),
		SourceFile:           docString(d, "sourceFile"),
	}
	for _, ex := range docMapSlice(d, "exercises") {
		p.Exercises = append(p.Exercises, ExerciseEntry{
			Name:        docString(ex, "name"),
			Sets:        docString(ex, "sets"),
			Reps:        docString(ex, "reps"),
			Weight:      docString(ex, "weight"),
			IsSuperSet:  docBool(ex, "isSuperSet"),
			SuperSet:    docStringSlice(ex, "superSetExercises"),
			IsCompleted: docBool(ex, "isCompleted"),
			Order:       docInt(ex, "order"),
		})
	}
	return p
}

// SanitizeProgramType makes a program-type label safe for use inside a
// document ID: whitespace runs and path separators become underscores.
func SanitizeProgramType(t string) string {
	return strings.ReplaceAll(strings.Join(strings.Fields(t), "_"), "/", "_")
}

// ProgramDocID is the deterministic document key for workbook imports, so a
// re-run merges into the same document instead of duplicating it.
func ProgramDocID(traineeID, programType string) string {
	return traineeID + "_" + SanitizeProgramType(programType)
}
