// Package workbook reads the Excel import layout: an optional Users identity
// sheet plus one exercise sheet per person, where the sheet name is the
// person's display name. Data sheets have no header row; columns are fixed
// (B=type, C=name, D=sets, E=reps, F=weight, A reserved).
package workbook

import (
	"fmt"
	"strings"

	"github.com/claude/fixfit/internal/ingest"
	"github.com/xuri/excelize/v2"
)

// reservedSheets are system sheets that never represent a person. Matching
// is exact and case-sensitive, mirroring the studio's spreadsheet layout.
var reservedSheets = map[string]bool{
	"מחסן תרגילים":  true,
	"כל המתאמנים":   true,
	"לוח אימונים":   true,
	"מחסן תרגילים#": true,
	"כל המתאמנים#":  true,
	"לוח אימונים#":  true,
	"Users":         true,
	"users":         true,
	"Dashboard":     true,
	"Settings":      true,
}

// IsReserved reports whether a sheet name is a system sheet.
func IsReserved(name string) bool {
	return reservedSheets[name]
}

// Workbook is an open Excel workbook import source.
type Workbook struct {
	f *excelize.File
}

// Open opens the workbook at path.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	return &Workbook{f: f}, nil
}

// Close releases the underlying file.
func (w *Workbook) Close() error {
	return w.f.Close()
}

// UserRows reads the Users (or users) identity sheet. The second return
// value reports whether the sheet exists; a workbook without one relies on
// auto-provisioning from sheet names.
func (w *Workbook) UserRows() ([]ingest.IdentityRow, bool, error) {
	sheet := ""
	for _, name := range w.f.GetSheetList() {
		if name == "Users" || name == "users" {
			sheet = name
			break
		}
	}
	if sheet == "" {
		return nil, false, nil
	}

	rows, err := w.f.GetRows(sheet)
	if err != nil {
		return nil, true, fmt.Errorf("reading sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, true, nil
	}

	colIdx := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		colIdx[strings.TrimSpace(h)] = i
	}
	col := func(row []string, names ...string) string {
		for _, name := range names {
			if i, ok := colIdx[name]; ok && i < len(row) {
				if v := strings.TrimSpace(row[i]); v != "" {
					return v
				}
			}
		}
		return ""
	}

	users := make([]ingest.IdentityRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		users = append(users, ingest.IdentityRow{
			Email: col(row, "Email"),
			Name:  col(row, "TraineeName", "Name"),
			Role:  col(row, "Role"),
		})
	}
	return users, true, nil
}

// PersonSheets lists the exercise sheets in workbook order, excluding
// reserved system sheets. Each sheet name is the person's display name.
func (w *Workbook) PersonSheets() []string {
	var out []string
	for _, name := range w.f.GetSheetList() {
		if IsReserved(name) {
			continue
		}
		out = append(out, name)
	}
	return out
}

// Positional data columns (column A is reserved).
const (
	colType = iota + 1 // B
	colName
	colSets
	colReps
	colWeight
)

// ExerciseRows reads one person's sheet from row 2 onward into canonical
// rows, preserving sheet order. The trainee field is left empty — the caller
// owns the mapping from sheet name to person.
func (w *Workbook) ExerciseRows(sheet string) ([]ingest.Row, error) {
	rows, err := w.f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	cell := func(row []string, i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	out := make([]ingest.Row, 0, len(rows)-1)
	for _, row := range rows[1:] {
		out = append(out, ingest.Row{
			ingest.FieldType:   cell(row, colType),
			ingest.FieldName:   cell(row, colName),
			ingest.FieldSets:   cell(row, colSets),
			ingest.FieldReps:   cell(row, colReps),
			ingest.FieldWeight: cell(row, colWeight),
		})
	}
	return out, nil
}
