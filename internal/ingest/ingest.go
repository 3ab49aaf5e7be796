// Package ingest holds the row model shared by the tabular import sources.
// A source yields identity rows (one person each) and exercise rows (one
// exercise occurrence each); the importer turns them into accounts, profile
// documents and program documents.
package ingest

import "strings"

// Canonical exercise-row field names. Sources map their raw headers (or
// positional columns) onto these.
const (
	FieldTrainee = "traineeName"
	FieldType    = "type"
	FieldName    = "name"
	FieldSets    = "sets"
	FieldReps    = "reps"
	FieldWeight  = "weight"
)

// Row is one exercise row keyed by canonical field names. Unrecognized
// source headers pass through under their raw names.
type Row map[string]string

// Get returns the trimmed value for a field.
func (r Row) Get(field string) string {
	return strings.TrimSpace(r[field])
}

// IdentityRow is one person from an identity source (Users.csv or the Users
// workbook sheet).
type IdentityRow struct {
	Email    string
	Password string
	Name     string
	Role     string
}

// Valid reports whether the row carries the required identity fields.
func (u IdentityRow) Valid() bool {
	return u.Email != "" && u.Name != ""
}
