// Package csvdir reads the CSV-directory import layout: a Users.csv identity
// file plus one exercise CSV per person, with bilingual exercise headers.
package csvdir

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/claude/fixfit/internal/ingest"
)

// UsersFile is the reserved identity file name inside the import directory.
const UsersFile = "Users.csv"

// headerMap translates the known exercise-file headers (Hebrew and English)
// to canonical field names. Unknown headers pass through unchanged.
var headerMap = map[string]string{
	"מתאמן":       ingest.FieldTrainee,
	"סוג אימון":   ingest.FieldType,
	"שם תרגיל":    ingest.FieldName,
	"סטים":        ingest.FieldSets,
	"חזרות":       ingest.FieldReps,
	"משקל":        ingest.FieldWeight,
	"TraineeName": ingest.FieldTrainee,
	"Type":        ingest.FieldType,
	"Name":        ingest.FieldName,
	"Sets":        ingest.FieldSets,
	"Reps":        ingest.FieldReps,
	"Weight":      ingest.FieldWeight,
}

// CanonicalHeader maps a raw header to its canonical field name, passing
// unrecognized headers through after trimming.
func CanonicalHeader(raw string) string {
	raw = strings.TrimSpace(raw)
	if canonical, ok := headerMap[raw]; ok {
		return canonical
	}
	return raw
}

// ReadUsers parses Users.csv (headers Email, Password, TraineeName). Rows are
// returned as-is; the caller decides what to do with invalid ones.
func ReadUsers(path string) ([]ingest.IdentityRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	colIdx := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		colIdx[strings.TrimSpace(h)] = i
	}
	col := func(row []string, name string) string {
		i, ok := colIdx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	users := make([]ingest.IdentityRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		users = append(users, ingest.IdentityRow{
			Email:    col(rec, "Email"),
			Password: col(rec, "Password"),
			Name:     col(rec, "TraineeName"),
		})
	}
	return users, nil
}

// ExerciseFiles lists the per-person exercise CSVs in the directory: every
// *.csv except the reserved Users.csv, sorted by name for a stable run order.
func ExerciseFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".csv") || name == UsersFile {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

// ReadExercises parses one exercise CSV into canonical rows, preserving
// source row order.
func ReadExercises(path string) ([]ingest.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = CanonicalHeader(h)
	}

	rows := make([]ingest.Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := ingest.Row{}
		for i, v := range rec {
			if i >= len(headers) {
				break
			}
			row[headers[i]] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}
