package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/claude/fixfit/internal/backend"
	"github.com/claude/fixfit/internal/bank"
	"github.com/claude/fixfit/internal/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	credentials := flag.String("credentials", "", "service-account JSON path (overrides config)")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

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

	rules := make([]bank.Rule, 0, len(cfg.Bank.Rules))
	for _, r := range cfg.Bank.Rules {
		rules = append(rules, bank.Rule{Keywords: r.Keywords, Category: r.Category})
	}

	sweeper := bank.NewSweeper(be.Docs, log, bank.NewClassifier(rules, cfg.Bank.DefaultCategory))
	stats, err := sweeper.Populate(ctx)
	if err != nil {
		log.Error("bank populate failed", "error", err)
		os.Exit(1)
	}

	log.Info("bank populate complete",
		"programs_scanned", stats.ProgramsScanned,
		"names_seen", stats.NamesSeen,
		"added", stats.Added,
		"already_known", stats.AlreadyKnown,
	)
}
