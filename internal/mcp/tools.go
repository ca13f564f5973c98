package mcp

import (
	"context"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/stats"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List the active exercises in the library, ordered by name. Each entry includes name, description, and difficulty (beginner/intermediate/advanced)."),
)

var toolGetWorkoutHistory = mcp.NewTool("get_workout_history",
	mcp.WithDescription("Retrieve a user's persisted workouts, newest first. Each workout includes date, duration, and the exercises performed with their sets (reps, weight, unit)."),
	mcp.WithString("user", mcp.Description("User ID. Defaults to the configured user.")),
)

var toolGetWorkoutRecord = mcp.NewTool("get_workout_record",
	mcp.WithDescription("Retrieve one workout by ID together with derived stats: total sets, total volume (weight x reps) with its unit, and a formatted duration."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout document ID")),
)

var toolExerciseGuidance = mcp.NewTool("exercise_guidance",
	mcp.WithDescription("Fetch beginner-oriented coaching instructions (markdown) for an exercise: equipment, steps, tips, variations, and safety notes."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name, e.g. 'Barbell Bench Press'")),
)

// --- Tool handlers ---

func (h *handlers) listExercises(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := h.ds.ListExercises(ctx)
	if err != nil {
		h.log.Error("mcp list_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(docs)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkoutHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user := req.GetString("user", "")
	if user == "" {
		user = UserIDFromContext(ctx, h.defaultUser)
	}

	records, err := h.ds.WorkoutsByUser(ctx, user)
	if err != nil {
		h.log.Error("mcp get_workout_history", "user", user, "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(records)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// recordWithStats is a workout record with its derived display stats.
type recordWithStats struct {
	Workout     *models.WorkoutRecord `json:"workout"`
	TotalSets   int                   `json:"totalSets"`
	TotalVolume float64               `json:"totalVolume"`
	VolumeUnit  models.WeightUnit     `json:"volumeUnit"`
	Duration    string                `json:"duration"`
}

func (h *handlers) getWorkoutRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id is required"), nil
	}

	record, err := h.ds.WorkoutByID(ctx, id)
	if err != nil {
		h.log.Error("mcp get_workout_record", "id", id, "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if record == nil {
		return mcp.NewToolResultError("workout not found: " + id), nil
	}

	volume, unit := stats.TotalVolume(record)
	result, err := mcp.NewToolResultJSON(recordWithStats{
		Workout:     record,
		TotalSets:   stats.TotalSets(record),
		TotalVolume: volume,
		VolumeUnit:  unit,
		Duration:    stats.FormatDuration(record.Duration),
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) exerciseGuidance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise is required"), nil
	}

	message, err := h.adviser.Guidance(ctx, name)
	if err != nil {
		h.log.Error("mcp exercise_guidance", "exercise", name, "error", err)
		return mcp.NewToolResultError("guidance failed: " + err.Error()), nil
	}
	return mcp.NewToolResultText(message), nil
}
