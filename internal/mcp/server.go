// Package mcp exposes the workout history, exercise library, and coaching
// guidance as Model Context Protocol tools.
package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer,
// falling back to the configured default.
func UserIDFromContext(ctx context.Context, fallback string) string {
	if id, ok := ctx.Value(userIDKey).(string); ok && id != "" {
		return id
	}
	return fallback
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools registered.
func New(ds DataSource, adviser Adviser, defaultUser, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("LiftLog", version,
		server.WithToolCapabilities(false),
		server.WithInstructions("LiftLog workout tracker. Browse the exercise library, query a user's workout history with derived stats (sets, volume, duration), and fetch coaching guidance for an exercise."),
	)

	h := &handlers{ds: ds, adviser: adviser, defaultUser: defaultUser, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
		server.ServerTool{Tool: toolGetWorkoutHistory, Handler: h.getWorkoutHistory},
		server.ServerTool{Tool: toolGetWorkoutRecord, Handler: h.getWorkoutRecord},
		server.ServerTool{Tool: toolExerciseGuidance, Handler: h.exerciseGuidance},
	)

	return s
}

// handlers holds dependencies for MCP tool handlers.
type handlers struct {
	ds          DataSource
	adviser     Adviser
	defaultUser string
	log         *slog.Logger
}
