package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/meltforce/lifttrack/internal/models"
)

// GetExerciseSettings returns the user's settings row for an exercise.
// A missing row is reported as ErrNotFound; callers fall back to
// models.DefaultRestSeconds rather than treating it as a failure.
func (db *DB) GetExerciseSettings(ctx context.Context, userID int, exercise string) (models.ExerciseSettings, error) {
	s := models.ExerciseSettings{UserID: userID, Exercise: exercise}
	err := db.Pool.QueryRow(ctx, `
		SELECT rest_duration_seconds
		FROM exercise_settings
		WHERE user_id = $1 AND exercise = $2
	`, userID, exercise).Scan(&s.RestDurationSeconds)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ExerciseSettings{}, ErrNotFound
	}
	if err != nil {
		return models.ExerciseSettings{}, fmt.Errorf("querying exercise settings: %w", err)
	}
	return s, nil
}

// UpsertExerciseSettings creates or replaces the settings row for
// (user, exercise).
func (db *DB) UpsertExerciseSettings(ctx context.Context, s models.ExerciseSettings) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO exercise_settings (user_id, exercise, rest_duration_seconds)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, exercise) DO UPDATE
			SET rest_duration_seconds = EXCLUDED.rest_duration_seconds
	`, s.UserID, s.Exercise, s.RestDurationSeconds)
	if err != nil {
		return fmt.Errorf("upserting exercise settings: %w", err)
	}
	return nil
}
