package importer

import (
	"github.com/claude/fixfit/internal/ingest"
	"github.com/claude/fixfit/internal/models"
)

// Group is one (person, program-type) aggregate: the entries of one program
// document, in prescribed order.
type Group struct {
	TraineeName string
	Type        string
	Entries     []models.ExerciseEntry
}

// Aggregate groups exercise rows by (person, program-type). Groups keep
// first-seen order; entries within a group keep source row order, which is
// authoritative — each entry's order field is its position at grouping time.
// Rows missing the person, type or exercise name after trimming are
// discarded, not errors. Returns the groups and the number of discarded rows.
func Aggregate(rows []ingest.Row) ([]*Group, int) {
	var (
		order   []*Group
		byKey   = map[string]*Group{}
		skipped int
	)

	for _, row := range rows {
		trainee := row.Get(ingest.FieldTrainee)
		progType := row.Get(ingest.FieldType)
		name := row.Get(ingest.FieldName)
		if trainee == "" || progType == "" || name == "" {
			skipped++
			continue
		}

		key := trainee + "::" + progType
		g, ok := byKey[key]
		if !ok {
			g = &Group{TraineeName: trainee, Type: progType}
			byKey[key] = g
			order = append(order, g)
		}

		g.Entries = append(g.Entries, models.NewExerciseEntry(
			name,
			row.Get(ingest.FieldSets),
			row.Get(ingest.FieldReps),
			row.Get(ingest.FieldWeight),
			len(g.Entries),
		))
	}

	return order, skipped
}
