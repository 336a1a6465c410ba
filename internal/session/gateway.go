// Package session owns the workout-session lifecycle: deciding whether a page
// load starts a new session, resumes today's, or reviews completed ones, and
// performing the create-or-find steps against the store.
package session

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/meltforce/lifttrack/internal/models"
	"github.com/meltforce/lifttrack/internal/storage"
)

// Gateway abstracts the persistence layer for the session machine.
// *storage.DB satisfies it; tests use an in-memory fake.
type Gateway interface {
	GetOrCreateWorkout(ctx context.Context, userID int, date string) (models.Workout, error)
	TodaysInstances(ctx context.Context, userID int, exercise, date string) ([]models.InstanceWithSets, error)
	LastInstanceForExercise(ctx context.Context, userID int, exercise, before string) (*models.InstanceWithSets, error)
	CreateInstance(ctx context.Context, workoutID uuid.UUID, exercise string) (models.WorkoutExercise, error)
	InsertSet(ctx context.Context, workoutExerciseID uuid.UUID, reps, weight, setOrder int) (models.Set, error)
	DeleteSet(ctx context.Context, setID uuid.UUID, userID int) error
	GetExerciseSettings(ctx context.Context, userID int, exercise string) (models.ExerciseSettings, error)
}

// Compile-time check: *storage.DB satisfies Gateway.
var _ Gateway = (*storage.DB)(nil)

var (
	// ErrResting rejects set logging while the rest countdown is running.
	ErrResting = errors.New("rest timer running")
	// ErrNotActive rejects mutations outside the active state.
	ErrNotActive = errors.New("session is not active")
	// ErrValidation rejects input that never reaches the store
	// (non-numeric or negative reps/weight, bad indices).
	ErrValidation = errors.New("invalid input")
)
