package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/meltforce/lifttrack/internal/models"
)

// InsertSet persists one logged set and returns the row with its generated id
// and server-assigned timestamp. The write is a single statement: either the
// full row lands or the call fails with no partial state.
func (db *DB) InsertSet(ctx context.Context, workoutExerciseID uuid.UUID, reps, weight, setOrder int) (models.Set, error) {
	s := models.Set{
		WorkoutExerciseID: workoutExerciseID,
		Reps:              reps,
		Weight:            weight,
		SetOrder:          setOrder,
		Round:             1, // reserved
	}
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO sets (workout_exercise_id, reps, weight, set_order, round)
		VALUES ($1, $2, $3, $4, 1)
		RETURNING id, created_at
	`, workoutExerciseID, reps, weight, setOrder).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return models.Set{}, fmt.Errorf("inserting set: %w", err)
	}
	return s, nil
}

// DeleteSet hard-deletes a set row. Sibling set_order values are not
// renumbered. Deleting a row that does not belong to the user is a no-op
// reported as ErrNotFound.
func (db *DB) DeleteSet(ctx context.Context, setID uuid.UUID, userID int) error {
	tag, err := db.Pool.Exec(ctx, `
		DELETE FROM sets s
		USING workout_exercises we, workouts w
		WHERE s.id = $1
		  AND we.id = s.workout_exercise_id
		  AND w.id = we.workout_id
		  AND w.user_id = $2
	`, setID, userID)
	if err != nil {
		return fmt.Errorf("deleting set: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) querySets(ctx context.Context, workoutExerciseID uuid.UUID) ([]models.Set, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, workout_exercise_id, reps, weight, set_order, round, created_at
		FROM sets
		WHERE workout_exercise_id = $1
		ORDER BY set_order ASC, created_at ASC
	`, workoutExerciseID)
	if err != nil {
		return nil, fmt.Errorf("querying sets: %w", err)
	}
	defer rows.Close()

	var result []models.Set
	for rows.Next() {
		var s models.Set
		if err := rows.Scan(&s.ID, &s.WorkoutExerciseID, &s.Reps, &s.Weight, &s.SetOrder, &s.Round, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning set: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
