package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/claude/fixfit/internal/backend"
	"github.com/claude/fixfit/internal/config"
	"github.com/claude/fixfit/internal/importer"
	"github.com/claude/fixfit/internal/runlog"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	credentials := flag.String("credentials", "", "service-account JSON path (overrides config)")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: fixfit-import [-config config.yaml] [-credentials sa.json] /path/to/csv-dir\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	dir := flag.Arg(0)

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	be, err := backend.Open(ctx, cfg, log, *credentials)
	if err != nil {
		log.Error("failed to open backend", "error", err)
		os.Exit(1)
	}
	defer be.Close()

	imp := importer.New(be.Docs, be.IDs, log, importer.Options{
		CSVPassword:       cfg.Import.CSVPassword,
		WorkbookPassword:  cfg.Import.WorkbookPassword,
		PlaceholderDomain: cfg.Import.PlaceholderDomain,
	})

	started := time.Now()
	stats, err := imp.ImportCSVDir(ctx, dir)
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	recordRun(log, cfg, "csv", dir, stats, started)
	printStats(log, stats)
	log.Info("import complete")
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"users_created", stats.UsersCreated,
		"users_reused", stats.UsersReused,
		"users_skipped", stats.UsersSkipped,
		"sources_processed", stats.SourcesProcessed,
		"sources_skipped", stats.SourcesSkipped,
		"sources_failed", stats.SourcesFailed,
		"programs_written", stats.ProgramsWritten,
		"rows_imported", stats.RowsImported,
		"rows_skipped", stats.RowsSkipped,
		"groups_skipped", stats.GroupsSkipped,
	)
}

// recordRun journals the run locally. Journal failures are warnings: the
// import itself already happened.
func recordRun(log *slog.Logger, cfg *config.Config, source, path string, stats *importer.Stats, started time.Time) {
	j, err := runlog.Open(cfg.Import.RunLogPath)
	if err != nil {
		log.Warn("run journal unavailable", "error", err)
		return
	}
	defer j.Close()

	id, err := j.Record(runlog.Run{
		Source:          source,
		Path:            path,
		UsersCreated:    stats.UsersCreated,
		ProgramsWritten: stats.ProgramsWritten,
		RowsImported:    stats.RowsImported,
		RowsSkipped:     stats.RowsSkipped,
		StartedAt:       started,
		FinishedAt:      time.Now(),
	})
	if err != nil {
		log.Warn("recording run failed", "error", err)
		return
	}
	log.Info("run journaled", "id", id)
}
