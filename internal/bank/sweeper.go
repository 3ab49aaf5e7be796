package bank

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/claude/fixfit/internal/models"
	"github.com/claude/fixfit/internal/store"
)

// Fallback prescription values for swept entries whose source row carries
// none.
const (
	DefaultSets = "3"
	DefaultReps = "8-12"
)

// Stats tracks one sweep.
type Stats struct {
	ProgramsScanned int
	NamesSeen       int
	Added           int
	AlreadyKnown    int
}

// Sweeper scans every program document and adds each movement name it has
// not seen before to the exercise bank. Super-set entries contribute their
// individual movements, not the combined label.
type Sweeper struct {
	docs       store.DocumentStore
	log        *slog.Logger
	classifier *Classifier
}

// NewSweeper creates a sweeper using the given classifier.
func NewSweeper(docs store.DocumentStore, log *slog.Logger, classifier *Classifier) *Sweeper {
	return &Sweeper{docs: docs, log: log, classifier: classifier}
}

// Populate runs one sweep. Matching against existing bank entries is
// case-insensitive on the trimmed name, so re-running is a no-op.
func (s *Sweeper) Populate(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	known := map[string]bool{}
	existing, err := s.docs.List(ctx, store.CollectionExerciseBank)
	if err != nil {
		return stats, fmt.Errorf("listing exercise bank: %w", err)
	}
	for _, snap := range existing {
		if name, ok := snap.Data["name"].(string); ok {
			known[normalize(name)] = true
		}
	}

	programs, err := s.docs.List(ctx, store.CollectionWorkouts)
	if err != nil {
		return stats, fmt.Errorf("listing programs: %w", err)
	}

	batch := s.docs.Batch()
	for _, snap := range programs {
		stats.ProgramsScanned++
		p := models.ProgramFromDoc(snap.ID, snap.Data)
		for _, e := range p.Exercises {
			for _, name := range movementNames(e) {
				stats.NamesSeen++
				key := normalize(name)
				if key == "" || known[key] {
					stats.AlreadyKnown++
					continue
				}
				known[key] = true

				// The entry's own prescription seeds the bank default;
				// first sighting wins.
				sets, reps := e.Sets, e.Reps
				if sets == "" {
					sets = DefaultSets
				}
				if reps == "" {
					reps = DefaultReps
				}

				category := s.classifier.Classify(name)
				batch.Add(store.CollectionExerciseBank, store.Document{
					"name":        name,
					"category":    category,
					"defaultSets": sets,
					"defaultReps": reps,
					"createdAt":   store.ServerTimestamp,
				})
				stats.Added++
				s.log.Info("adding bank entry", "name", name, "category", category)
			}
		}
	}

	if stats.Added > 0 {
		if err := batch.Commit(ctx); err != nil {
			return stats, fmt.Errorf("writing bank entries: %w", err)
		}
	}
	return stats, nil
}

func movementNames(e models.ExerciseEntry) []string {
	if e.IsSuperSet {
		return e.SuperSet
	}
	return []string{e.Name}
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
