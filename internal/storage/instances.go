package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/meltforce/lifttrack/internal/models"
)

const uniqueViolation = "23505"

// CreateInstance allocates the next instance number for (workoutID, exercise)
// and inserts the row. The number is computed inside the INSERT itself and the
// (workout_id, exercise, instance) unique index rejects a stale read, so two
// racing calls cannot both claim the same number; the loser retries once and
// lands on the next free number.
func (db *DB) CreateInstance(ctx context.Context, workoutID uuid.UUID, exercise string) (models.WorkoutExercise, error) {
	const attempts = 2
	var lastErr error
	for i := 0; i < attempts; i++ {
		we := models.WorkoutExercise{WorkoutID: workoutID, Exercise: exercise}
		err := db.Pool.QueryRow(ctx, `
			INSERT INTO workout_exercises (workout_id, exercise, instance, seq)
			SELECT $1, $2, COALESCE(MAX(instance), 0) + 1, 1
			FROM workout_exercises
			WHERE workout_id = $1 AND exercise = $2
			RETURNING id, instance, seq
		`, workoutID, exercise).Scan(&we.ID, &we.Instance, &we.Seq)
		if err == nil {
			return we, nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			lastErr = err
			continue
		}
		return models.WorkoutExercise{}, fmt.Errorf("creating workout exercise: %w", err)
	}
	return models.WorkoutExercise{}, fmt.Errorf("creating workout exercise: %w", lastErr)
}

// TodaysInstances returns the user's instances of the given exercise on the
// given date, ordered by instance ascending, each with its sets ordered by
// set_order ascending. An empty slice means no session exists today.
func (db *DB) TodaysInstances(ctx context.Context, userID int, exercise, date string) ([]models.InstanceWithSets, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT we.id, we.workout_id, we.exercise, we.instance, we.seq
		FROM workout_exercises we
		JOIN workouts w ON w.id = we.workout_id
		WHERE w.user_id = $1 AND we.exercise = $2 AND w.workout_date = $3
		ORDER BY we.instance ASC
	`, userID, exercise, date)
	if err != nil {
		return nil, fmt.Errorf("querying today's instances: %w", err)
	}
	defer rows.Close()

	var result []models.InstanceWithSets
	for rows.Next() {
		var inst models.InstanceWithSets
		if err := rows.Scan(&inst.ID, &inst.WorkoutID, &inst.Exercise, &inst.Instance, &inst.Seq); err != nil {
			return nil, fmt.Errorf("scanning instance: %w", err)
		}
		result = append(result, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		result[i].Sets, err = db.querySets(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}
