package store

import (
	"context"
	"sort"
	"strings"

	"github.com/claude/fixfit/internal/models"
)

// Queries provides typed read access over a DocumentStore. It backs both the
// HTTP handlers and the MCP tools.
type Queries struct {
	Docs DocumentStore
}

// ListTrainees returns all identity profiles ordered by display name.
func (q *Queries) ListTrainees(ctx context.Context) ([]models.Identity, error) {
	snaps, err := q.Docs.List(ctx, CollectionUsers)
	if err != nil {
		return nil, err
	}
	out := make([]models.Identity, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, models.IdentityFromDoc(s.ID, s.Data))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName < out[j].DisplayName })
	return out, nil
}

// ListPrograms returns programs, optionally filtered to one trainee.
func (q *Queries) ListPrograms(ctx context.Context, traineeID string) ([]models.Program, error) {
	var (
		snaps []Snapshot
		err   error
	)
	if traineeID == "" {
		snaps, err = q.Docs.List(ctx, CollectionWorkouts)
	} else {
		snaps, err = q.Docs.ListWhere(ctx, CollectionWorkouts, "traineeId", traineeID)
	}
	if err != nil {
		return nil, err
	}
	out := make([]models.Program, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, models.ProgramFromDoc(s.ID, s.Data))
	}
	return out, nil
}

// GetProgram returns one program by document ID.
func (q *Queries) GetProgram(ctx context.Context, id string) (*models.Program, error) {
	doc, err := q.Docs.Get(ctx, CollectionWorkouts, id)
	if err != nil {
		return nil, err
	}
	p := models.ProgramFromDoc(id, doc)
	return &p, nil
}

// SearchExerciseBank returns catalog entries whose name or category contains
// the query (case-insensitive); an empty query returns everything.
func (q *Queries) SearchExerciseBank(ctx context.Context, query string) ([]models.ExerciseDefinition, error) {
	snaps, err := q.Docs.List(ctx, CollectionExerciseBank)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	var out []models.ExerciseDefinition
	for _, s := range snaps {
		def := models.ExerciseDefinitionFromDoc(s.ID, s.Data)
		if query == "" ||
			strings.Contains(strings.ToLower(def.Name), query) ||
			strings.Contains(strings.ToLower(def.Category), query) {
			out = append(out, def)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
