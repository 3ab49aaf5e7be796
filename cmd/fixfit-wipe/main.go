package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/claude/fixfit/internal/backend"
	"github.com/claude/fixfit/internal/config"
	"github.com/claude/fixfit/internal/store"
)

// confirmationPhrase must be typed verbatim before anything is deleted.
const confirmationPhrase = "DELETE ALL"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	credentials := flag.String("credentials", "", "service-account JSON path (overrides config)")
	keepAccounts := flag.Bool("keep-accounts", false, "delete documents but keep identity-provider accounts")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	fmt.Printf("This removes EVERY document and account from the %s backend.\n", cfg.Backend.Kind)
	fmt.Printf("Type %q to continue: ", confirmationPhrase)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil || strings.TrimSpace(line) != confirmationPhrase {
		fmt.Println("Aborted.")
		os.Exit(1)
	}

	ctx := context.Background()
	be, err := backend.Open(ctx, cfg, log, *credentials)
	if err != nil {
		log.Error("failed to open backend", "error", err)
		os.Exit(1)
	}
	defer be.Close()

	for _, collection := range []string{
		store.CollectionWorkouts,
		store.CollectionExerciseBank,
		store.CollectionUsers,
	} {
		n, err := be.Docs.DeleteAll(ctx, collection)
		if err != nil {
			log.Error("collection wipe failed", "collection", collection, "error", err)
			os.Exit(1)
		}
		log.Info("collection wiped", "collection", collection, "deleted", n)
	}

	if *keepAccounts {
		log.Info("keeping identity-provider accounts")
		return
	}

	users, err := be.IDs.ListUsers(ctx)
	if err != nil {
		log.Error("listing accounts failed", "error", err)
		os.Exit(1)
	}
	deleted := 0
	for _, u := range users {
		if err := be.IDs.DeleteUser(ctx, u.UID); err != nil {
			log.Warn("account delete failed", "uid", u.UID, "email", u.Email, "error", err)
			continue
		}
		deleted++
	}
	log.Info("accounts wiped", "deleted", deleted, "total", len(users))
}
