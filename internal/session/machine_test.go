package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/lifttrack/internal/models"
	"github.com/meltforce/lifttrack/internal/storage"
)

// fakeGateway is an in-memory Gateway for exercising the machine without a
// database. Failure modes are injectable per method.
type fakeGateway struct {
	workouts  map[string]models.Workout // key: userID|date
	instances []*models.InstanceWithSets
	byWorkout map[uuid.UUID]string // workout id -> userID|date key
	settings  map[string]models.ExerciseSettings

	failCreateInstance error
	failInsertSet      error
	failSettings       error
	failTodays         error

	insertCalls int
	deleteCalls int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		workouts:  map[string]models.Workout{},
		byWorkout: map[uuid.UUID]string{},
		settings:  map[string]models.ExerciseSettings{},
	}
}

func key(userID int, date string) string { return fmt.Sprintf("%d|%s", userID, date) }

func (g *fakeGateway) GetOrCreateWorkout(_ context.Context, userID int, date string) (models.Workout, error) {
	k := key(userID, date)
	if w, ok := g.workouts[k]; ok {
		return w, nil
	}
	w := models.Workout{ID: uuid.New(), UserID: userID, WorkoutDate: date}
	g.workouts[k] = w
	g.byWorkout[w.ID] = k
	return w, nil
}

func (g *fakeGateway) TodaysInstances(_ context.Context, userID int, exercise, date string) ([]models.InstanceWithSets, error) {
	if g.failTodays != nil {
		return nil, g.failTodays
	}
	var out []models.InstanceWithSets
	for _, inst := range g.instances {
		if g.byWorkout[inst.WorkoutID] == key(userID, date) && inst.Exercise == exercise {
			out = append(out, *inst)
		}
	}
	return out, nil
}

func (g *fakeGateway) LastInstanceForExercise(_ context.Context, userID int, exercise, before string) (*models.InstanceWithSets, error) {
	var best *models.InstanceWithSets
	var bestDate string
	for _, inst := range g.instances {
		k := g.byWorkout[inst.WorkoutID]
		w := g.workouts[k]
		if w.UserID != userID || inst.Exercise != exercise || w.WorkoutDate >= before {
			continue
		}
		if best == nil || w.WorkoutDate > bestDate ||
			(w.WorkoutDate == bestDate && inst.Instance > best.Instance) {
			cp := *inst
			best = &cp
			bestDate = w.WorkoutDate
		}
	}
	if best == nil {
		return nil, storage.ErrNotFound
	}
	return best, nil
}

func (g *fakeGateway) CreateInstance(_ context.Context, workoutID uuid.UUID, exercise string) (models.WorkoutExercise, error) {
	if g.failCreateInstance != nil {
		return models.WorkoutExercise{}, g.failCreateInstance
	}
	max := 0
	for _, inst := range g.instances {
		if inst.WorkoutID == workoutID && inst.Exercise == exercise && inst.Instance > max {
			max = inst.Instance
		}
	}
	we := models.WorkoutExercise{
		ID:        uuid.New(),
		WorkoutID: workoutID,
		Exercise:  exercise,
		Instance:  max + 1,
		Seq:       1,
	}
	g.instances = append(g.instances, &models.InstanceWithSets{WorkoutExercise: we})
	return we, nil
}

func (g *fakeGateway) InsertSet(_ context.Context, workoutExerciseID uuid.UUID, reps, weight, setOrder int) (models.Set, error) {
	g.insertCalls++
	if g.failInsertSet != nil {
		return models.Set{}, g.failInsertSet
	}
	now := time.Now()
	s := models.Set{
		ID:                uuid.New(),
		WorkoutExerciseID: workoutExerciseID,
		Reps:              reps,
		Weight:            weight,
		SetOrder:          setOrder,
		Round:             1,
		CreatedAt:         &now,
	}
	for _, inst := range g.instances {
		if inst.ID == workoutExerciseID {
			inst.Sets = append(inst.Sets, s)
			return s, nil
		}
	}
	return models.Set{}, errors.New("no such workout exercise")
}

func (g *fakeGateway) DeleteSet(_ context.Context, setID uuid.UUID, _ int) error {
	g.deleteCalls++
	for _, inst := range g.instances {
		for i, s := range inst.Sets {
			if s.ID == setID {
				inst.Sets = append(inst.Sets[:i], inst.Sets[i+1:]...)
				return nil
			}
		}
	}
	return storage.ErrNotFound
}

func (g *fakeGateway) GetExerciseSettings(_ context.Context, userID int, exercise string) (models.ExerciseSettings, error) {
	if g.failSettings != nil {
		return models.ExerciseSettings{}, g.failSettings
	}
	if s, ok := g.settings[key(userID, exercise)]; ok {
		return s, nil
	}
	return models.ExerciseSettings{}, storage.ErrNotFound
}

// seedHistory inserts a prior-day instance with the given (reps, weight)
// pairs, in set_order order.
func seedHistory(t *testing.T, g *fakeGateway, userID int, exercise, date string, pairs [][2]int) *models.InstanceWithSets {
	t.Helper()
	w, err := g.GetOrCreateWorkout(context.Background(), userID, date)
	if err != nil {
		t.Fatal(err)
	}
	we, err := g.CreateInstance(context.Background(), w.ID, exercise)
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range pairs {
		if _, err := g.InsertSet(context.Background(), we.ID, p[0], p[1], i); err != nil {
			t.Fatal(err)
		}
	}
	return g.instances[len(g.instances)-1]
}

func testMachine(g *fakeGateway) *Machine {
	return NewMachine(g, slog.New(slog.DiscardHandler))
}

const (
	testUser = 1
	today    = "2025-06-02"
)

// TestStartNewWorkoutGaplessInstances verifies that starting N sessions on
// the same day yields instance numbers 1..N with no gaps or reuse.
func TestStartNewWorkoutGaplessInstances(t *testing.T) {
	g := newFakeGateway()
	m := testMachine(g)

	for want := 1; want <= 4; want++ {
		sess, err := m.StartNewWorkout(context.Background(), testUser, "Bench Press", today)
		if err != nil {
			t.Fatalf("start #%d: %v", want, err)
		}
		if sess.State != StateActive {
			t.Fatalf("start #%d: state = %q, want active", want, sess.State)
		}
		if sess.Instance != want {
			t.Errorf("start #%d: instance = %d, want %d", want, sess.Instance, want)
		}
	}
}

// TestStartNewWorkoutNoHistory verifies the cold-start seed: exactly 5 empty
// unlogged rows and the 120s default rest duration.
func TestStartNewWorkoutNoHistory(t *testing.T) {
	g := newFakeGateway()
	m := testMachine(g)

	sess, err := m.StartNewWorkout(context.Background(), testUser, "Bench Press", today)
	if err != nil {
		t.Fatal(err)
	}
	if len(sess.Sets) != 5 {
		t.Fatalf("seeded %d sets, want 5", len(sess.Sets))
	}
	for i, e := range sess.Sets {
		if e.Reps != "" || e.Weight != "" || e.Logged {
			t.Errorf("set %d = %+v, want empty unlogged", i, e)
		}
	}
	if sess.RestDuration != 120 {
		t.Errorf("rest duration = %d, want 120", sess.RestDuration)
	}
}

// TestStartNewWorkoutSeedsFromPriorDay verifies that prior-day sets carry
// their reps/weight forward in set_order order, marked unlogged, with no ids.
func TestStartNewWorkoutSeedsFromPriorDay(t *testing.T) {
	g := newFakeGateway()
	seedHistory(t, g, testUser, "Bench Press", "2025-05-30", [][2]int{{10, 135}, {8, 145}, {6, 155}})
	m := testMachine(g)

	sess, err := m.StartNewWorkout(context.Background(), testUser, "Bench Press", today)
	if err != nil {
		t.Fatal(err)
	}
	want := []SetEntry{
		{Reps: "10", Weight: "135"},
		{Reps: "8", Weight: "145"},
		{Reps: "6", Weight: "155"},
	}
	if len(sess.Sets) != len(want) {
		t.Fatalf("seeded %d sets, want %d", len(sess.Sets), len(want))
	}
	for i := range want {
		if sess.Sets[i] != want[i] {
			t.Errorf("set %d = %+v, want %+v", i, sess.Sets[i], want[i])
		}
	}
}

// TestStartNewWorkoutPrefersSameDay verifies that an existing same-day
// instance beats prior-day history, and that the highest same-day instance is
// the one chosen.
func TestStartNewWorkoutPrefersSameDay(t *testing.T) {
	g := newFakeGateway()
	seedHistory(t, g, testUser, "Bench Press", "2025-05-30", [][2]int{{10, 135}})
	seedHistory(t, g, testUser, "Bench Press", today, [][2]int{{5, 185}})
	seedHistory(t, g, testUser, "Bench Press", today, [][2]int{{3, 200}})
	m := testMachine(g)

	sess, err := m.StartNewWorkout(context.Background(), testUser, "Bench Press", today)
	if err != nil {
		t.Fatal(err)
	}
	if sess.Instance != 3 {
		t.Errorf("instance = %d, want 3", sess.Instance)
	}
	if len(sess.Sets) != 1 || sess.Sets[0].Reps != "3" || sess.Sets[0].Weight != "200" {
		t.Errorf("seeded sets = %+v, want the instance-2 template (3 reps @ 200)", sess.Sets)
	}
}

// TestEnterSummary verifies that a page load with existing same-day instances
// lands in summary and carries them for the recap.
func TestEnterSummary(t *testing.T) {
	g := newFakeGateway()
	seedHistory(t, g, testUser, "Bench Press", today, [][2]int{{10, 135}})
	m := testMachine(g)

	sess, err := m.Enter(context.Background(), testUser, "Bench Press", today)
	if err != nil {
		t.Fatal(err)
	}
	if sess.State != StateSummary {
		t.Fatalf("state = %q, want summary", sess.State)
	}
	if len(sess.Today) != 1 || sess.Today[0].Instance != 1 {
		t.Errorf("summary instances = %+v, want one instance numbered 1", sess.Today)
	}
}

// TestEnterStartsFresh verifies that a page load with no same-day data goes
// straight to an active session.
func TestEnterStartsFresh(t *testing.T) {
	g := newFakeGateway()
	m := testMachine(g)

	sess, err := m.Enter(context.Background(), testUser, "Bench Press", today)
	if err != nil {
		t.Fatal(err)
	}
	if sess.State != StateActive {
		t.Errorf("state = %q, want active", sess.State)
	}
}

// TestInstanceCreateFailureAborts verifies that a failed instance creation
// leaves the caller in loading with the error surfaced, never a fabricated
// client-side session.
func TestInstanceCreateFailureAborts(t *testing.T) {
	g := newFakeGateway()
	g.failCreateInstance = errors.New("store down")
	m := testMachine(g)

	sess, err := m.StartNewWorkout(context.Background(), testUser, "Bench Press", today)
	if err == nil {
		t.Fatal("expected error")
	}
	if sess.State != StateLoading {
		t.Errorf("state = %q, want loading", sess.State)
	}
	if sess.WorkoutExerciseID != uuid.Nil {
		t.Error("aborted session should carry no instance id")
	}
}

// TestSettingsFetchFailureFallsBack verifies that a failing settings fetch
// does not abort the transition: the hard-coded 120s applies.
func TestSettingsFetchFailureFallsBack(t *testing.T) {
	g := newFakeGateway()
	g.failSettings = errors.New("store down")
	m := testMachine(g)

	sess, err := m.StartNewWorkout(context.Background(), testUser, "Bench Press", today)
	if err != nil {
		t.Fatal(err)
	}
	if sess.RestDuration != 120 {
		t.Errorf("rest duration = %d, want 120", sess.RestDuration)
	}
}

// TestSettingsApply verifies that a stored rest duration is reported by the
// next StartNewWorkout.
func TestSettingsApply(t *testing.T) {
	g := newFakeGateway()
	g.settings[key(testUser, "Bench Press")] = models.ExerciseSettings{
		UserID: testUser, Exercise: "Bench Press", RestDurationSeconds: 90,
	}
	m := testMachine(g)

	sess, err := m.StartNewWorkout(context.Background(), testUser, "Bench Press", today)
	if err != nil {
		t.Fatal(err)
	}
	if sess.RestDuration != 90 {
		t.Errorf("rest duration = %d, want 90", sess.RestDuration)
	}
}

// TestBenchPressScenario runs a full first-workout flow: two sets of
// 10@135 with no prior history yield instance 1, set_order 0 and 1, and the
// default rest duration.
func TestBenchPressScenario(t *testing.T) {
	g := newFakeGateway()
	m := testMachine(g)
	ctx := context.Background()

	sess, err := m.StartNewWorkout(ctx, testUser, "Bench Press", today)
	if err != nil {
		t.Fatal(err)
	}
	if sess.Instance != 1 {
		t.Fatalf("instance = %d, want 1", sess.Instance)
	}
	if sess.RestDuration != 120 {
		t.Errorf("rest duration = %d, want 120", sess.RestDuration)
	}

	for i := 0; i < 2; i++ {
		sess.Sets[i].Reps = "10"
		sess.Sets[i].Weight = "135"
		sess, err = m.LogSet(ctx, sess, i)
		if err != nil {
			t.Fatalf("log set %d: %v", i, err)
		}
		sess = m.EndRest(sess)
	}

	inst := g.instances[0]
	if len(inst.Sets) != 2 {
		t.Fatalf("persisted %d sets, want 2", len(inst.Sets))
	}
	for i, s := range inst.Sets {
		if s.Reps != 10 || s.Weight != 135 || s.SetOrder != i || s.Round != 1 {
			t.Errorf("set %d = %+v, want 10@135 order %d round 1", i, s, i)
		}
	}
}
