package mcp

import (
	"context"

	"github.com/claude/liftlog/internal/models"
)

// DataSource abstracts the content store for MCP tools. *content.Client
// satisfies it.
type DataSource interface {
	ListExercises(ctx context.Context) ([]models.ExerciseDoc, error)
	WorkoutsByUser(ctx context.Context, userID string) ([]models.WorkoutRecord, error)
	WorkoutByID(ctx context.Context, id string) (*models.WorkoutRecord, error)
}

// Adviser abstracts the guidance endpoint. *advice.Client satisfies it.
type Adviser interface {
	Guidance(ctx context.Context, exerciseName string) (string, error)
}
