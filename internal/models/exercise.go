package models

import "time"

// ExerciseDefinition is a reusable exercise-bank catalog entry. It has no
// foreign-key link to programs; the builder matches by name only.
type ExerciseDefinition struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	DefaultSets string    `json:"defaultSets"`
	DefaultReps string    `json:"defaultReps"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// Doc converts the definition to its persisted document form.
func (e ExerciseDefinition) Doc() map[string]any {
	return map[string]any{
		"name":        e.Name,
		"category":    e.Category,
		"defaultSets": e.DefaultSets,
		"defaultReps": e.DefaultReps,
	}
}

// ExerciseDefinitionFromDoc builds a definition from an exercise_bank document.
func ExerciseDefinitionFromDoc(id string, d map[string]any) ExerciseDefinition {
	return ExerciseDefinition{
		ID:          id,
		Name:        docString(d, "name"),
		Category:    docString(d, "category"),
		DefaultSets: docString(d, "defaultSets"),
		DefaultReps: docString(d, "defaultReps"),
		CreatedAt:   docTime(d, "createdAt"),
	}
}
