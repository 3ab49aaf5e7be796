package mcp

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/fixfit/internal/models"
	"github.com/claude/fixfit/internal/store"
)

// --- Tool definitions ---

var toolListTrainees = mcp.NewTool("list_trainees",
	mcp.WithDescription("List all registered identities with display name, email, and role, ordered by name."),
)

var toolGetPrograms = mcp.NewTool("get_programs",
	mcp.WithDescription("Query workout programs with completion state. Each program holds an ordered exercise list with sets, reps, and weight as written by the coach."),
	mcp.WithString("trainee", mcp.Description("Filter by trainee identity ID. Omit for all programs.")),
	mcp.WithString("type", mcp.Description("Filter by program type label, e.g. 'אימון A'. Omit for all types.")),
)

var toolGetProgram = mcp.NewTool("get_program",
	mcp.WithDescription("Fetch one workout program by document ID, including every exercise entry and its completed flag."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Program document ID")),
)

var toolSearchExerciseBank = mcp.NewTool("search_exercise_bank",
	mcp.WithDescription("Search the exercise catalog by name or muscle-group category (case-insensitive substring). Empty query returns the full catalog."),
	mcp.WithString("query", mcp.Description("Search text, e.g. an exercise name fragment or a category")),
)

// --- Tool handlers ---

func (h *handlers) listTrainees(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	trainees, err := h.ds.ListTrainees(ctx)
	if err != nil {
		h.log.Error("mcp list_trainees", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(trainees)
}

func (h *handlers) getPrograms(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	programs, err := h.ds.ListPrograms(ctx, req.GetString("trainee", ""))
	if err != nil {
		h.log.Error("mcp get_programs", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if typ := req.GetString("type", ""); typ != "" {
		filtered := programs[:0]
		for _, p := range programs {
			if p.Type == typ {
				filtered = append(filtered, p)
			}
		}
		programs = filtered
	}
	return jsonResult(programs)
}

func (h *handlers) getProgram(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	p, err := h.ds.GetProgram(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return mcp.NewToolResultError("program not found: " + id), nil
	}
	if err != nil {
		h.log.Error("mcp get_program", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(p)
}

func (h *handlers) searchExerciseBank(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	defs, err := h.ds.SearchExerciseBank(ctx, req.GetString("query", ""))
	if err != nil {
		h.log.Error("mcp search_exercise_bank", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if defs == nil {
		defs = []models.ExerciseDefinition{}
	}
	return jsonResult(defs)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
