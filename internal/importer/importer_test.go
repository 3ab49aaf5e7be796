package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/claude/fixfit/internal/models"
	"github.com/claude/fixfit/internal/store"
	"github.com/xuri/excelize/v2"
)

func testOptions() Options {
	return Options{
		CSVPassword:       "123456",
		WorkbookPassword:  "password123",
		PlaceholderDomain: "fixfit.test",
	}
}

// writeCSVDir lays out an import directory: an identity file and one
// exercise file per person.
func writeCSVDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func countDocs(t *testing.T, mem *store.Memory, collection string) int {
	t.Helper()
	snaps, err := mem.List(context.Background(), collection)
	if err != nil {
		t.Fatal(err)
	}
	return len(snaps)
}

func TestImportCSVDir(t *testing.T) {
	dir := writeCSVDir(t, map[string]string{
		"Users.csv": "Email,Password,TraineeName\n" +
			"dana@example.com,secret,Dana Cohen\n" +
			",,\n",
		"dana.csv": "מתאמן,סוג אימון,שם תרגיל,סטים,חזרות,משקל\n" +
			"Dana Cohen,אימון A,סקוואט,4,8,60\n" +
			"Dana Cohen,אימון A,לחיצת חזה,3,10,20|25\n" +
			"Dana Cohen,אימון B,דדליפט,5,5,100\n" +
			"Nobody,אימון A,חתירה,3,12,40\n",
	})

	mem := store.NewMemory()
	imp := New(mem, mem, testLogger(), testOptions())
	stats, err := imp.ImportCSVDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	if stats.UsersCreated != 1 {
		t.Errorf("UsersCreated = %d, want 1", stats.UsersCreated)
	}
	if stats.UsersSkipped != 1 {
		t.Errorf("UsersSkipped = %d, want 1", stats.UsersSkipped)
	}
	if stats.ProgramsWritten != 2 {
		t.Errorf("ProgramsWritten = %d, want 2", stats.ProgramsWritten)
	}
	// The row for a person absent from the identity file is a whole
	// skipped program, not a provisioning trigger.
	if stats.GroupsSkipped != 1 {
		t.Errorf("GroupsSkipped = %d, want 1", stats.GroupsSkipped)
	}
	if got := countDocs(t, mem, store.CollectionWorkouts); got != 2 {
		t.Errorf("workout docs = %d, want 2", got)
	}

	snaps, _ := mem.List(context.Background(), store.CollectionWorkouts)
	for _, snap := range snaps {
		p := models.ProgramFromDoc(snap.ID, snap.Data)
		if p.TraineeName != "Dana Cohen" {
			t.Errorf("doc %s trainee = %q", snap.ID, p.TraineeName)
		}
		if p.Status != models.StatusPending {
			t.Errorf("doc %s status = %q", snap.ID, p.Status)
		}
		if p.SourceFile != "dana.csv" {
			t.Errorf("doc %s sourceFile = %q", snap.ID, p.SourceFile)
		}
		if _, ok := snap.Data["importedAt"]; !ok {
			t.Errorf("doc %s missing importedAt", snap.ID)
		}
	}
}

// TestImportCSVDirRerunAppends pins the append semantics of the CSV layout:
// a second run of the same directory doubles the program documents.
func TestImportCSVDirRerunAppends(t *testing.T) {
	dir := writeCSVDir(t, map[string]string{
		"Users.csv": "Email,Password,TraineeName\ndana@example.com,secret,Dana Cohen\n",
		"dana.csv": "TraineeName,Type,Name,Sets,Reps,Weight\n" +
			"Dana Cohen,אימון A,סקוואט,4,8,60\n",
	})

	mem := store.NewMemory()
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		imp := New(mem, mem, testLogger(), testOptions())
		if _, err := imp.ImportCSVDir(ctx, dir); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	if got := countDocs(t, mem, store.CollectionWorkouts); got != 2 {
		t.Errorf("workout docs = %d, want 2 after rerun", got)
	}
	users, _ := mem.ListUsers(ctx)
	if len(users) != 1 {
		t.Errorf("accounts = %d, want 1 after rerun", len(users))
	}
}

func TestImportCSVDirMissingDir(t *testing.T) {
	mem := store.NewMemory()
	imp := New(mem, mem, testLogger(), testOptions())
	if _, err := imp.ImportCSVDir(context.Background(), filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

// writeStudioWorkbook builds a workbook with a Users sheet, two person
// sheets (one not listed in Users), and a reserved system sheet.
func writeStudioWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Users"); err != nil {
		t.Fatal(err)
	}
	setRows(t, f, "Users", [][]any{
		{"Email", "TraineeName", "Role"},
		{"dana@example.com", "דנה כהן", "trainee"},
	})

	if _, err := f.NewSheet("דנה כהן"); err != nil {
		t.Fatal(err)
	}
	setRows(t, f, "דנה כהן", [][]any{
		{"", "", "", "", "", ""},
		{"", "אימון A", "סקוואט", "4", "8-12", "60"},
		{"", "אימון A", "דדליפט + חתירה", "3", "10", "80"},
		{"", "אימון B", "לחיצת חזה", "3", "10", "20|25"},
	})

	if _, err := f.NewSheet("Walk In"); err != nil {
		t.Fatal(err)
	}
	setRows(t, f, "Walk In", [][]any{
		{"", "", "", "", "", ""},
		{"", "אימון A", "פלאנק", "3", "30s", ""},
	})

	if _, err := f.NewSheet("מחסן תרגילים"); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "studio.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func setRows(t *testing.T, f *excelize.File, sheet string, rows [][]any) {
	t.Helper()
	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatal(err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				t.Fatal(err)
			}
		}
	}
}

func TestImportWorkbook(t *testing.T) {
	path := writeStudioWorkbook(t)
	mem := store.NewMemory()
	ctx := context.Background()

	imp := New(mem, mem, testLogger(), testOptions())
	stats, err := imp.ImportWorkbook(ctx, path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	// One account from the Users sheet, one auto-provisioned from the
	// unlisted person sheet.
	if stats.UsersCreated != 2 {
		t.Errorf("UsersCreated = %d, want 2", stats.UsersCreated)
	}
	if stats.ProgramsWritten != 3 {
		t.Errorf("ProgramsWritten = %d, want 3", stats.ProgramsWritten)
	}
	if got := countDocs(t, mem, store.CollectionWorkouts); got != 3 {
		t.Errorf("workout docs = %d, want 3", got)
	}

	if _, err := mem.UserByEmail(ctx, "walk.in@fixfit.test"); err != nil {
		t.Errorf("auto-provisioned account missing: %v", err)
	}

	dana, err := mem.UserByEmail(ctx, "dana@example.com")
	if err != nil {
		t.Fatal(err)
	}
	doc, err := mem.Get(ctx, store.CollectionWorkouts, models.ProgramDocID(dana.UID, "אימון A"))
	if err != nil {
		t.Fatalf("deterministic doc missing: %v", err)
	}
	p := models.ProgramFromDoc(models.ProgramDocID(dana.UID, "אימון A"), doc)
	if len(p.Exercises) != 2 {
		t.Fatalf("exercises = %d, want 2", len(p.Exercises))
	}
	if !p.Exercises[1].IsSuperSet {
		t.Error("second entry should be a super-set")
	}
	if _, ok := doc["lastUpdated"]; !ok {
		t.Error("missing lastUpdated")
	}
}

// TestImportWorkbookRerunMerges verifies rerunning the same workbook keeps
// one document per (person, program type) and one account per person.
func TestImportWorkbookRerunMerges(t *testing.T) {
	path := writeStudioWorkbook(t)
	mem := store.NewMemory()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		imp := New(mem, mem, testLogger(), testOptions())
		if _, err := imp.ImportWorkbook(ctx, path); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	if got := countDocs(t, mem, store.CollectionWorkouts); got != 3 {
		t.Errorf("workout docs = %d, want 3 after rerun", got)
	}
	users, _ := mem.ListUsers(ctx)
	if len(users) != 2 {
		t.Errorf("accounts = %d, want 2 after rerun", len(users))
	}
}

// TestImportWorkbookNoPersonSheets verifies a workbook of only system sheets
// imports cleanly as a no-op.
func TestImportWorkbookNoPersonSheets(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", "Dashboard"); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	mem := store.NewMemory()
	imp := New(mem, mem, testLogger(), testOptions())
	stats, err := imp.ImportWorkbook(context.Background(), path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if stats.ProgramsWritten != 0 || stats.SourcesProcessed != 0 {
		t.Errorf("stats = %+v, want zero work", stats)
	}
}
