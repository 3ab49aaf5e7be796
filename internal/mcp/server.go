// Package mcp exposes the studio's data to AI assistants over the Model
// Context Protocol: the roster, assigned programs, and the exercise bank.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("FixFit", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("FixFit studio data server. Query the trainee roster, assigned workout programs with completion state, and the exercise bank catalog."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListTrainees, Handler: h.listTrainees},
		server.ServerTool{Tool: toolGetPrograms, Handler: h.getPrograms},
		server.ServerTool{Tool: toolGetProgram, Handler: h.getProgram},
		server.ServerTool{Tool: toolSearchExerciseBank, Handler: h.searchExerciseBank},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resRoster, Handler: h.roster},
		server.ServerResource{Resource: resExerciseBank, Handler: h.exerciseBank},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resRoster = mcp.NewResource(
	"fixfit://roster",
	"Trainee Roster",
	mcp.WithResourceDescription("All registered identities with display name, email, and role"),
	mcp.WithMIMEType("application/json"),
)

var resExerciseBank = mcp.NewResource(
	"fixfit://exercise_bank",
	"Exercise Bank",
	mcp.WithResourceDescription("The exercise catalog with categories and default set/rep prescriptions"),
	mcp.WithMIMEType("application/json"),
)
