package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/meltforce/lifttrack/internal/models"
	"github.com/meltforce/lifttrack/internal/storage"
)

// State is the view the session snapshot represents.
type State string

const (
	// StateLoading is the initial state; a session that fails to start
	// stays here and the error surfaces to the caller.
	StateLoading State = "loading"
	// StateActive means the user can log sets.
	StateActive State = "active"
	// StateSummary means today already has at least one completed instance;
	// the snapshot carries those for a read-only recap.
	StateSummary State = "summary"
)

// SetEntry is one row of the active set list. Reps and Weight hold the raw
// input text; they are parsed only when the row is logged. ID stays zero
// until the store confirms the row.
type SetEntry struct {
	ID     uuid.UUID `json:"id,omitempty"`
	Reps   string    `json:"reps"`
	Weight string    `json:"weight"`
	Logged bool      `json:"logged"`
}

// Session is a value-typed snapshot of one exercise's session state. Every
// transition takes a snapshot and returns a new one; nothing here is shared
// or ambient.
type Session struct {
	State             State                     `json:"state"`
	UserID            int                       `json:"userId"`
	Exercise          string                    `json:"exercise"`
	Date              string                    `json:"date"`
	WorkoutExerciseID uuid.UUID                 `json:"workoutExerciseId,omitempty"`
	Instance          int                       `json:"instance,omitempty"`
	Sets              []SetEntry                `json:"sets,omitempty"`
	RestDuration      int                       `json:"restDuration"` // seconds
	Resting           bool                      `json:"resting"`
	Today             []models.InstanceWithSets `json:"today,omitempty"`
}

// Machine drives session transitions against a Gateway.
type Machine struct {
	gw  Gateway
	log *slog.Logger
}

// NewMachine creates a Machine.
func NewMachine(gw Gateway, log *slog.Logger) *Machine {
	return &Machine{gw: gw, log: log}
}

// Enter derives the state for a page load: summary when the exercise already
// has instances today, otherwise a freshly started active session.
func (m *Machine) Enter(ctx context.Context, userID int, exercise, date string) (Session, error) {
	today, err := m.gw.TodaysInstances(ctx, userID, exercise, date)
	if err != nil {
		return loadingSession(userID, exercise, date), fmt.Errorf("loading today's instances: %w", err)
	}
	if len(today) > 0 {
		return Session{
			State:        StateSummary,
			UserID:       userID,
			Exercise:     exercise,
			Date:         date,
			RestDuration: models.DefaultRestSeconds,
			Today:        today,
		}, nil
	}
	return m.startNewWorkout(ctx, userID, exercise, date, today)
}

// StartNewWorkout begins a new session. Called from summary it creates a new
// instance (the number increments again) rather than reopening the prior one.
func (m *Machine) StartNewWorkout(ctx context.Context, userID int, exercise, date string) (Session, error) {
	today, err := m.gw.TodaysInstances(ctx, userID, exercise, date)
	if err != nil {
		return loadingSession(userID, exercise, date), fmt.Errorf("loading today's instances: %w", err)
	}
	return m.startNewWorkout(ctx, userID, exercise, date, today)
}

func (m *Machine) startNewWorkout(ctx context.Context, userID int, exercise, date string, today []models.InstanceWithSets) (Session, error) {
	tmpl, err := ResolveTemplate(ctx, m.gw, userID, exercise, date, today)
	if err != nil {
		return loadingSession(userID, exercise, date), err
	}

	workout, err := m.gw.GetOrCreateWorkout(ctx, userID, date)
	if err != nil {
		return loadingSession(userID, exercise, date), err
	}

	// The one step that must not silently collide. On failure the
	// transition aborts: no session is fabricated client-side.
	instance, err := m.gw.CreateInstance(ctx, workout.ID, exercise)
	if err != nil {
		return loadingSession(userID, exercise, date), err
	}

	restDuration := models.DefaultRestSeconds
	if settings, err := m.gw.GetExerciseSettings(ctx, userID, exercise); err == nil {
		restDuration = settings.RestDurationSeconds
	} else if !errors.Is(err, storage.ErrNotFound) {
		m.log.Warn("settings fetch failed, using default rest duration", "exercise", exercise, "error", err)
	}

	return Session{
		State:             StateActive,
		UserID:            userID,
		Exercise:          exercise,
		Date:              date,
		WorkoutExerciseID: instance.ID,
		Instance:          instance.Instance,
		Sets:              seedSets(tmpl),
		RestDuration:      restDuration,
	}, nil
}

// seedSets builds the initial set list: the template's sets in set_order
// order carrying only reps/weight, or exactly DefaultSeedSets empty rows.
func seedSets(tmpl *models.InstanceWithSets) []SetEntry {
	if tmpl != nil && len(tmpl.Sets) > 0 {
		sets := make([]models.Set, len(tmpl.Sets))
		copy(sets, tmpl.Sets)
		sort.SliceStable(sets, func(i, j int) bool { return sets[i].SetOrder < sets[j].SetOrder })

		entries := make([]SetEntry, len(sets))
		for i, s := range sets {
			entries[i] = SetEntry{
				Reps:   strconv.Itoa(s.Reps),
				Weight: strconv.Itoa(s.Weight),
			}
		}
		return entries
	}
	return make([]SetEntry, models.DefaultSeedSets)
}

// CompleteExercise is a pure UI signal: it persists nothing. The returned
// bool tells the caller to refresh and re-derive state (which recomputes to
// summary once at least one set was logged). With no logged sets it is a
// no-op.
func (m *Machine) CompleteExercise(s Session) (Session, bool) {
	for _, e := range s.Sets {
		if e.Logged {
			return s, true
		}
	}
	return s, false
}

// EndRest clears the resting gate. Both the timer-ended event and an explicit
// skip funnel through here.
func (m *Machine) EndRest(s Session) Session {
	s.Resting = false
	return s
}

func loadingSession(userID int, exercise, date string) Session {
	return Session{
		State:        StateLoading,
		UserID:       userID,
		Exercise:     exercise,
		Date:         date,
		RestDuration: models.DefaultRestSeconds,
	}
}
