package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("LiftTrack", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("LiftTrack workout log. Query lifting history and progress, log sets, and read rest-timer settings. Weights are in pounds. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetProgress, Handler: h.getProgress},
		server.ServerTool{Tool: toolGetWorkouts, Handler: h.getWorkouts},
		server.ServerTool{Tool: toolGetTodaysSession, Handler: h.getTodaysSession},
		server.ServerTool{Tool: toolLogSet, Handler: h.logSet},
		server.ServerTool{Tool: toolGetExerciseSettings, Handler: h.getExerciseSettings},
	)

	s.AddResources(
		server.ServerResource{Resource: resExercises, Handler: h.exerciseCatalog},
		server.ServerResource{Resource: resTodaysWorkout, Handler: h.todaysWorkout},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resExercises = mcp.NewResource(
	"lifttrack://exercises",
	"Exercise Catalog",
	mcp.WithResourceDescription("The fixed list of exercises sets can be logged against"),
	mcp.WithMIMEType("application/json"),
)

var resTodaysWorkout = mcp.NewResource(
	"lifttrack://todays_workout",
	"Today's Workout",
	mcp.WithResourceDescription("All exercise instances and sets logged today"),
	mcp.WithMIMEType("application/json"),
)
