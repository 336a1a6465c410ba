package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/lifttrack/internal/models"
	"github.com/meltforce/lifttrack/internal/progress"
)

func today() string {
	return time.Now().Format("2006-01-02")
}

// --- Tool definitions ---

var toolGetProgress = mcp.NewTool("get_progress",
	mcp.WithDescription("Get the progress series for an exercise: every confirmed set across all workouts, sorted ascending by time. Each point carries reps and weight (lbs)."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name (e.g. 'Bench Press', 'Lat Pulldown')")),
)

var toolGetWorkouts = mcp.NewTool("get_workouts",
	mcp.WithDescription("Query workout days with nested exercise instances and sets. Optional date range, newest first."),
	mcp.WithString("start", mcp.Description("Start date (YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (YYYY-MM-DD). Defaults to today.")),
)

var toolGetTodaysSession = mcp.NewTool("get_todays_session",
	mcp.WithDescription("Get today's instances of an exercise with their sets, or an empty list if none were started today."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name")),
)

var toolLogSet = mcp.NewTool("log_set",
	mcp.WithDescription("Log one set (reps at a weight in lbs) for an exercise. Finds or creates today's workout and the exercise instance, then appends the set."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name")),
	mcp.WithNumber("reps", mcp.Required(), mcp.Description("Repetition count (non-negative integer)")),
	mcp.WithNumber("weight", mcp.Required(), mcp.Description("Weight in pounds (non-negative integer)")),
)

var toolGetExerciseSettings = mcp.NewTool("get_exercise_settings",
	mcp.WithDescription("Get the configured rest duration (seconds) for an exercise. Defaults to 120 when unset."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name")),
)

// --- Tool handlers ---

func (h *handlers) getProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	if !models.KnownExercise(exercise) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown exercise %q", exercise)), nil
	}

	uid := UserIDFromContext(ctx)
	workouts, err := h.ds.QueryAllWorkouts(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_progress", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(progress.Project(workouts, exercise))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	end := req.GetString("end", today())
	start := req.GetString("start", "")
	if start == "" {
		t, err := time.Parse("2006-01-02", end)
		if err != nil {
			return mcp.NewToolResultError("invalid end date: " + end), nil
		}
		start = t.AddDate(0, 0, -30).Format("2006-01-02")
	}

	uid := UserIDFromContext(ctx)
	workouts, err := h.ds.QueryAllWorkouts(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	// Dates are YYYY-MM-DD, so the range filter is a string compare.
	filtered := make([]models.WorkoutWithExercises, 0, len(workouts))
	for _, w := range workouts {
		if w.WorkoutDate >= start && w.WorkoutDate <= end {
			filtered = append(filtered, w)
		}
	}

	result, err := mcp.NewToolResultJSON(filtered)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTodaysSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	if !models.KnownExercise(exercise) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown exercise %q", exercise)), nil
	}

	uid := UserIDFromContext(ctx)
	instances, err := h.ds.TodaysInstances(ctx, uid, exercise, today())
	if err != nil {
		h.log.Error("mcp get_todays_session", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if instances == nil {
		instances = []models.InstanceWithSets{}
	}

	result, err := mcp.NewToolResultJSON(instances)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// logSet finds or creates today's workout and exercise instance, then appends
// the set at the next position within that instance.
func (h *handlers) logSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	if !models.KnownExercise(exercise) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown exercise %q", exercise)), nil
	}
	reps, err := req.RequireInt("reps")
	if err != nil || reps < 0 {
		return mcp.NewToolResultError("reps must be a non-negative integer"), nil
	}
	weight, err := req.RequireInt("weight")
	if err != nil || weight < 0 {
		return mcp.NewToolResultError("weight must be a non-negative integer"), nil
	}

	uid := UserIDFromContext(ctx)
	date := today()

	workout, err := h.ds.GetOrCreateWorkout(ctx, uid, date)
	if err != nil {
		h.log.Error("mcp log_set: workout", "error", err)
		return mcp.NewToolResultError("store failed: " + err.Error()), nil
	}

	instances, err := h.ds.TodaysInstances(ctx, uid, exercise, date)
	if err != nil {
		h.log.Error("mcp log_set: instances", "error", err)
		return mcp.NewToolResultError("store failed: " + err.Error()), nil
	}

	var target models.InstanceWithSets
	if len(instances) > 0 {
		target = instances[len(instances)-1]
	} else {
		created, err := h.ds.CreateInstance(ctx, workout.ID, exercise)
		if err != nil {
			h.log.Error("mcp log_set: create instance", "error", err)
			return mcp.NewToolResultError("store failed: " + err.Error()), nil
		}
		target = models.InstanceWithSets{WorkoutExercise: created}
	}

	set, err := h.ds.InsertSet(ctx, target.ID, reps, weight, len(target.Sets))
	if err != nil {
		h.log.Error("mcp log_set: insert", "error", err)
		return mcp.NewToolResultError("store failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(set)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getExerciseSettings(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	if !models.KnownExercise(exercise) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown exercise %q", exercise)), nil
	}

	uid := UserIDFromContext(ctx)
	settings, err := h.ds.GetExerciseSettings(ctx, uid, exercise)
	if err != nil {
		settings = models.ExerciseSettings{
			UserID:              uid,
			Exercise:            exercise,
			RestDurationSeconds: models.DefaultRestSeconds,
		}
	}

	result, err := mcp.NewToolResultJSON(settings)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
