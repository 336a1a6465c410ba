package mcp

import (
	"context"

	"github.com/google/uuid"
	"github.com/meltforce/lifttrack/internal/models"
	"github.com/meltforce/lifttrack/internal/storage"
)

// DataSource abstracts the data layer for MCP tools.
type DataSource interface {
	GetOrCreateWorkout(ctx context.Context, userID int, date string) (models.Workout, error)
	TodaysInstances(ctx context.Context, userID int, exercise, date string) ([]models.InstanceWithSets, error)
	CreateInstance(ctx context.Context, workoutID uuid.UUID, exercise string) (models.WorkoutExercise, error)
	InsertSet(ctx context.Context, workoutExerciseID uuid.UUID, reps, weight, setOrder int) (models.Set, error)
	GetExerciseSettings(ctx context.Context, userID int, exercise string) (models.ExerciseSettings, error)
	QueryAllWorkouts(ctx context.Context, userID int) ([]models.WorkoutWithExercises, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
