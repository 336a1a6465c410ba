package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/meltforce/lifttrack/internal/models"
)

// GetOrCreateWorkout returns the user's workout row for the given calendar
// date (YYYY-MM-DD), creating it if absent. The upsert is keyed on the
// (user_id, workout_date) unique constraint, so concurrent calls converge on
// the same row.
func (db *DB) GetOrCreateWorkout(ctx context.Context, userID int, date string) (models.Workout, error) {
	w := models.Workout{UserID: userID, WorkoutDate: date}
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO workouts (user_id, workout_date)
		VALUES ($1, $2)
		ON CONFLICT (user_id, workout_date) DO UPDATE
			SET workout_date = EXCLUDED.workout_date
		RETURNING id
	`, userID, date).Scan(&w.ID)
	if err != nil {
		return models.Workout{}, fmt.Errorf("get-or-create workout: %w", err)
	}
	return w, nil
}

// LastInstanceForExercise returns the highest-instance session of the given
// exercise from the user's most recent workout strictly before the given
// date, with its sets ordered by set_order ascending. Returns ErrNotFound
// when the user has never logged this exercise before that date.
func (db *DB) LastInstanceForExercise(ctx context.Context, userID int, exercise, before string) (*models.InstanceWithSets, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT we.id, we.workout_id, we.exercise, we.instance, we.seq
		FROM workout_exercises we
		JOIN workouts w ON w.id = we.workout_id
		WHERE w.user_id = $1 AND we.exercise = $2 AND w.workout_date < $3
		ORDER BY w.workout_date DESC, we.instance DESC
		LIMIT 1
	`, userID, exercise, before)

	var inst models.InstanceWithSets
	err := row.Scan(&inst.ID, &inst.WorkoutID, &inst.Exercise, &inst.Instance, &inst.Seq)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying last instance: %w", err)
	}

	inst.Sets, err = db.querySets(ctx, inst.ID)
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

// QueryAllWorkouts returns the user's full workout history, newest day first,
// with nested exercise instances and sets. This is the dashboard payload and
// the input to the progress projection.
func (db *DB) QueryAllWorkouts(ctx context.Context, userID int) ([]models.WorkoutWithExercises, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, user_id, workout_date::text
		FROM workouts
		WHERE user_id = $1
		ORDER BY workout_date DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutWithExercises
	index := map[uuid.UUID]int{}
	for rows.Next() {
		var w models.WorkoutWithExercises
		if err := rows.Scan(&w.ID, &w.UserID, &w.WorkoutDate); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		index[w.ID] = len(result)
		result = append(result, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return result, nil
	}

	instRows, err := db.Pool.Query(ctx, `
		SELECT we.id, we.workout_id, we.exercise, we.instance, we.seq
		FROM workout_exercises we
		JOIN workouts w ON w.id = we.workout_id
		WHERE w.user_id = $1
		ORDER BY we.instance ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying workout exercises: %w", err)
	}
	defer instRows.Close()

	instIndex := map[uuid.UUID]*models.InstanceWithSets{}
	for instRows.Next() {
		var inst models.InstanceWithSets
		if err := instRows.Scan(&inst.ID, &inst.WorkoutID, &inst.Exercise, &inst.Instance, &inst.Seq); err != nil {
			return nil, fmt.Errorf("scanning workout exercise: %w", err)
		}
		if i, ok := index[inst.WorkoutID]; ok {
			result[i].Exercises = append(result[i].Exercises, inst)
			instIndex[inst.ID] = &result[i].Exercises[len(result[i].Exercises)-1]
		}
	}
	if err := instRows.Err(); err != nil {
		return nil, err
	}

	setRows, err := db.Pool.Query(ctx, `
		SELECT s.id, s.workout_exercise_id, s.reps, s.weight, s.set_order, s.round, s.created_at
		FROM sets s
		JOIN workout_exercises we ON we.id = s.workout_exercise_id
		JOIN workouts w ON w.id = we.workout_id
		WHERE w.user_id = $1
		ORDER BY s.set_order ASC, s.created_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying sets: %w", err)
	}
	defer setRows.Close()

	for setRows.Next() {
		var s models.Set
		if err := setRows.Scan(&s.ID, &s.WorkoutExerciseID, &s.Reps, &s.Weight, &s.SetOrder, &s.Round, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning set: %w", err)
		}
		if inst, ok := instIndex[s.WorkoutExerciseID]; ok {
			inst.Sets = append(inst.Sets, s)
		}
	}
	return result, setRows.Err()
}
