// Package models holds the row types shared by storage, session, and the API.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Exercises is the fixed catalog. There is no exercise management; the UI
// offers exactly these six lifts.
var Exercises = []string{
	"Low Row",
	"Lat Pulldown",
	"Bench Press",
	"Pull-ups",
	"Leg Press",
	"Bicep Curl",
}

// KnownExercise reports whether name is in the fixed catalog.
func KnownExercise(name string) bool {
	for _, e := range Exercises {
		if e == name {
			return true
		}
	}
	return false
}

// Workout is one user's day bucket. At most one row exists per
// (user_id, workout_date); it is created lazily on the first set-logging
// activity of the day and never deleted.
type Workout struct {
	ID          uuid.UUID `json:"id"`
	UserID      int       `json:"userId"`
	WorkoutDate string    `json:"workoutDate"` // YYYY-MM-DD
}

// WorkoutExercise is the Nth session of one exercise within a day.
// Instance numbers start at 1 and are gapless per (workout_id, exercise).
// Seq is legacy and carries no meaning beyond compatibility.
type WorkoutExercise struct {
	ID        uuid.UUID `json:"id"`
	WorkoutID uuid.UUID `json:"workoutId"`
	Exercise  string    `json:"exercise"`
	Instance  int       `json:"instance"`
	Seq       int       `json:"seq"`
}

// Set is one logged reps/weight pair. Weight is in pounds. Round is a
// reserved column, always 1. SetOrder is the caller's positional index at
// log time and is not compacted after deletions.
type Set struct {
	ID                uuid.UUID  `json:"id"`
	WorkoutExerciseID uuid.UUID  `json:"workoutExerciseId"`
	Reps              int        `json:"reps"`
	Weight            int        `json:"weight"`
	SetOrder          int        `json:"setOrder"`
	Round             int        `json:"round"`
	CreatedAt         *time.Time `json:"createdAt"` // nil until the store confirms the row
}

// ExerciseSettings is the per-user, per-exercise configuration.
type ExerciseSettings struct {
	UserID              int    `json:"userId"`
	Exercise            string `json:"exercise"`
	RestDurationSeconds int    `json:"restDurationSeconds"`
}

// DefaultRestSeconds applies when no settings row exists or the fetch fails.
const DefaultRestSeconds = 120

// DefaultSeedSets is the number of empty rows a fresh session starts with
// when there is no template. It is a constant, never persisted.
const DefaultSeedSets = 5

// InstanceWithSets is a WorkoutExercise with its sets, ordered by set_order
// ascending. It is what the session resolver selects templates from.
type InstanceWithSets struct {
	WorkoutExercise
	Sets []Set `json:"sets"`
}

// WorkoutWithExercises is the fully nested day used by the dashboard and the
// progress projection.
type WorkoutWithExercises struct {
	Workout
	Exercises []InstanceWithSets `json:"workoutExercises"`
}
