// Package importer runs the batch import pipeline: read a tabular source,
// normalize and classify rows, resolve identities, aggregate exercise rows
// into programs, and write program documents to the backend.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/claude/fixfit/internal/ingest"
	"github.com/claude/fixfit/internal/ingest/csvdir"
	"github.com/claude/fixfit/internal/ingest/workbook"
	"github.com/claude/fixfit/internal/models"
	"github.com/claude/fixfit/internal/store"
)

// Stats tracks import progress.
type Stats struct {
	UsersCreated int
	UsersReused  int
	UsersSkipped int

	SourcesProcessed int
	SourcesSkipped   int
	SourcesFailed    int

	ProgramsWritten int
	RowsImported    int
	RowsSkipped     int
	GroupsSkipped   int
}

// Options carries the run defaults that used to be inline literals in the
// original migration scripts.
type Options struct {
	CSVPassword       string
	WorkbookPassword  string
	PlaceholderDomain string
}

// Importer reads tabular sources and writes identities and programs.
type Importer struct {
	docs  store.DocumentStore
	ids   store.IdentityProvider
	log   *slog.Logger
	opts  Options
	stats Stats
}

// New creates a new Importer.
func New(docs store.DocumentStore, ids store.IdentityProvider, log *slog.Logger, opts Options) *Importer {
	return &Importer{docs: docs, ids: ids, log: log, opts: opts}
}

// ImportCSVDir processes a CSV directory: Users.csv provisions identities,
// every other *.csv is one person's exercise source. Program documents are
// appended (backend-generated keys), so re-running the same import
// duplicates programs — a long-standing behavior kept as is.
func (imp *Importer) ImportCSVDir(ctx context.Context, dir string) (*Stats, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return &imp.stats, fmt.Errorf("csv directory: %w", err)
	}
	if !info.IsDir() {
		return &imp.stats, fmt.Errorf("csv directory %s: not a directory", dir)
	}

	resolver := NewResolver(imp.docs, imp.ids, imp.log, imp.opts.CSVPassword, imp.opts.PlaceholderDomain)

	usersPath := filepath.Join(dir, csvdir.UsersFile)
	if _, err := os.Stat(usersPath); err == nil {
		users, err := csvdir.ReadUsers(usersPath)
		if err != nil {
			return &imp.stats, fmt.Errorf("reading identities: %w", err)
		}
		imp.resolveIdentityRows(ctx, resolver, users)
	} else {
		imp.log.Warn("identity file not found, relying on prior accounts", "path", usersPath)
	}

	files, err := csvdir.ExerciseFiles(dir)
	if err != nil {
		return &imp.stats, fmt.Errorf("listing exercise files: %w", err)
	}

	for _, path := range files {
		imp.importCSVFile(ctx, resolver, path)
	}

	return &imp.stats, nil
}

func (imp *Importer) resolveIdentityRows(ctx context.Context, resolver *Resolver, users []ingest.IdentityRow) {
	for _, u := range users {
		if !u.Valid() {
			imp.log.Warn("skipping invalid identity row", "email", u.Email, "name", u.Name)
			imp.stats.UsersSkipped++
			continue
		}
		_, created, err := resolver.Resolve(ctx, u.Name, u.Email, u.Password, u.Role)
		if err != nil {
			imp.log.Warn("identity resolution failed, skipping person", "email", u.Email, "error", err)
			imp.stats.UsersSkipped++
			continue
		}
		if created {
			imp.stats.UsersCreated++
		} else {
			imp.stats.UsersReused++
		}
	}
}

// importCSVFile imports one person-file worth of exercise rows. Failures are
// per-source: they are logged and counted, never fatal for the run.
func (imp *Importer) importCSVFile(ctx context.Context, resolver *Resolver, path string) {
	name := filepath.Base(path)
	rows, err := csvdir.ReadExercises(path)
	if err != nil {
		imp.log.Warn("skipping unreadable exercise file", "file", name, "error", err)
		imp.stats.SourcesSkipped++
		return
	}

	groups, skipped := Aggregate(rows)
	imp.stats.RowsSkipped += skipped

	batch := imp.docs.Batch()
	written := 0
	for _, g := range groups {
		// The CSV layout has no auto-provisioning: people must come
		// from Users.csv or an earlier run.
		uid, ok := resolver.Lookup(g.TraineeName)
		if !ok {
			imp.log.Warn("skipping program for unknown trainee", "trainee", g.TraineeName, "type", g.Type)
			imp.stats.GroupsSkipped++
			continue
		}

		p := models.Program{
			TraineeID:   uid,
			TraineeName: g.TraineeName,
			Type:        g.Type,
			Exercises:   g.Entries,
			Status:      models.StatusPending,
			SourceFile:  name,
		}
		doc := p.Doc()
		doc["importedAt"] = store.ServerTimestamp
		batch.Add(store.CollectionWorkouts, doc)
		written++
		imp.stats.RowsImported += len(g.Entries)
	}

	if err := batch.Commit(ctx); err != nil {
		imp.log.Error("batch write failed for source", "file", name, "error", err)
		imp.stats.SourcesFailed++
		return
	}
	imp.stats.SourcesProcessed++
	imp.stats.ProgramsWritten += written
	imp.log.Info("imported exercise file", "file", name, "programs", written)
}

// ImportWorkbook processes an Excel workbook: the Users sheet provisions
// identities, every non-reserved sheet is one person's exercise source.
// Program documents use deterministic keys derived from the identity and the
// sanitized program type, so re-running the same import merges instead of
// duplicating.
func (imp *Importer) ImportWorkbook(ctx context.Context, path string) (*Stats, error) {
	wb, err := workbook.Open(path)
	if err != nil {
		return &imp.stats, err
	}
	defer wb.Close()

	resolver := NewResolver(imp.docs, imp.ids, imp.log, imp.opts.WorkbookPassword, imp.opts.PlaceholderDomain)

	users, found, err := wb.UserRows()
	switch {
	case err != nil:
		imp.log.Warn("identity sheet unreadable, relying on auto-provisioning", "error", err)
	case !found:
		imp.log.Warn("identity sheet not found, relying on auto-provisioning from sheet names")
	default:
		imp.resolveIdentityRows(ctx, resolver, users)
	}

	for _, sheet := range wb.PersonSheets() {
		imp.importSheet(ctx, resolver, wb, sheet)
	}

	return &imp.stats, nil
}

// importSheet imports one person's sheet. The sheet name is the display name;
// a person absent from the Users sheet gets a placeholder-email account.
func (imp *Importer) importSheet(ctx context.Context, resolver *Resolver, wb *workbook.Workbook, sheet string) {
	uid, created, err := resolver.Resolve(ctx, sheet, "", "", "")
	if err != nil {
		imp.log.Warn("skipping sheet, identity resolution failed", "sheet", sheet, "error", err)
		imp.stats.SourcesSkipped++
		return
	}
	if created {
		imp.stats.UsersCreated++
	}

	rows, err := wb.ExerciseRows(sheet)
	if err != nil {
		imp.log.Warn("skipping unreadable sheet", "sheet", sheet, "error", err)
		imp.stats.SourcesSkipped++
		return
	}
	for _, row := range rows {
		row[ingest.FieldTrainee] = sheet
	}

	groups, skipped := Aggregate(rows)
	imp.stats.RowsSkipped += skipped

	batch := imp.docs.Batch()
	for _, g := range groups {
		p := models.Program{
			TraineeID:   uid,
			TraineeName: g.TraineeName,
			Type:        g.Type,
			Title:       g.Type,
			Exercises:   g.Entries,
			Status:      models.StatusPending,
		}
		doc := p.Doc()
		doc["lastUpdated"] = store.ServerTimestamp
		batch.Set(store.CollectionWorkouts, models.ProgramDocID(uid, g.Type), doc, true)
		imp.stats.RowsImported += len(g.Entries)
	}

	if err := batch.Commit(ctx); err != nil {
		imp.log.Error("batch write failed for sheet", "sheet", sheet, "error", err)
		imp.stats.SourcesFailed++
		return
	}
	imp.stats.SourcesProcessed++
	imp.stats.ProgramsWritten += len(groups)
	imp.log.Info("imported sheet", "sheet", sheet, "programs", len(groups))
}
