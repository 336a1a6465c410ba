// Package progress derives the history chart series from a user's workouts.
package progress

import (
	"sort"
	"time"

	"github.com/meltforce/lifttrack/internal/models"
)

// Point is one confirmed set on the progress series.
type Point struct {
	Time   time.Time `json:"time"`
	Reps   int       `json:"reps"`
	Weight int       `json:"weight"` // pounds
}

// Project flattens all of a user's workouts to the sets of the selected
// exercise, drops sets without a store-confirmed timestamp, and returns them
// sorted ascending by timestamp. Pure: no mutation of the input, no caching;
// it is recomputed from the full dataset on every call.
func Project(workouts []models.WorkoutWithExercises, exercise string) []Point {
	var points []Point
	for _, w := range workouts {
		for _, inst := range w.Exercises {
			if inst.Exercise != exercise {
				continue
			}
			for _, s := range inst.Sets {
				if s.CreatedAt == nil {
					continue
				}
				points = append(points, Point{Time: *s.CreatedAt, Reps: s.Reps, Weight: s.Weight})
			}
		}
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	return points
}
