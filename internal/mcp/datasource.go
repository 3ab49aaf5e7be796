package mcp

import (
	"context"

	"github.com/claude/fixfit/internal/models"
	"github.com/claude/fixfit/internal/store"
)

// DataSource abstracts the data layer for MCP tools. *store.Queries satisfies
// it over any backend.
type DataSource interface {
	ListTrainees(ctx context.Context) ([]models.Identity, error)
	ListPrograms(ctx context.Context, traineeID string) ([]models.Program, error)
	GetProgram(ctx context.Context, id string) (*models.Program, error)
	SearchExerciseBank(ctx context.Context, query string) ([]models.ExerciseDefinition, error)
}

// Compile-time check: *store.Queries satisfies DataSource.
var _ DataSource = (*store.Queries)(nil)
