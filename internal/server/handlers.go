package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meltforce/lifttrack/internal/models"
	"github.com/meltforce/lifttrack/internal/progress"
	"github.com/meltforce/lifttrack/internal/storage"
)

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	ident, ok := mustIdentity(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ident)
}

func (s *Server) handleExercises(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.Exercises)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	ident, ok := mustIdentity(w, r)
	if !ok {
		return
	}
	exercise := r.URL.Query().Get("exercise")
	if !models.KnownExercise(exercise) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown exercise"})
		return
	}

	sess, err := s.machine.Enter(r.Context(), ident.UserID, exercise, s.today())
	if err != nil {
		s.log.Error("session enter failed", "exercise", exercise, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	ident, ok := mustIdentity(w, r)
	if !ok {
		return
	}
	var req struct {
		Exercise string `json:"exercise"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if !models.KnownExercise(req.Exercise) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown exercise"})
		return
	}

	sess, err := s.machine.StartNewWorkout(r.Context(), ident.UserID, req.Exercise, s.today())
	if err != nil {
		s.log.Error("start workout failed", "exercise", req.Exercise, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleLogSet(w http.ResponseWriter, r *http.Request) {
	ident, ok := mustIdentity(w, r)
	if !ok {
		return
	}
	var req struct {
		WorkoutExerciseID uuid.UUID `json:"workoutExerciseId"`
		SetOrder          int       `json:"setOrder"`
		Reps              int       `json:"reps"`
		Weight            int       `json:"weight"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.WorkoutExerciseID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "workoutExerciseId is required"})
		return
	}
	if req.Reps < 0 || req.Weight < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reps and weight must be non-negative"})
		return
	}

	set, err := s.db.InsertSet(r.Context(), req.WorkoutExerciseID, req.Reps, req.Weight, req.SetOrder)
	if err != nil {
		s.log.Error("log set failed", "user", ident.UserID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

func (s *Server) handleDeleteSet(w http.ResponseWriter, r *http.Request) {
	ident, ok := mustIdentity(w, r)
	if !ok {
		return
	}
	setID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid set ID"})
		return
	}

	if err := s.db.DeleteSet(r.Context(), setID, ident.UserID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "set not found"})
			return
		}
		s.log.Error("delete set failed", "set", setID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	ident, ok := mustIdentity(w, r)
	if !ok {
		return
	}
	var req struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Date == "" {
		req.Date = s.today()
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
		return
	}

	workout, err := s.db.GetOrCreateWorkout(r.Context(), ident.UserID, req.Date)
	if err != nil {
		s.log.Error("create workout failed", "date", req.Date, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (s *Server) handleInstances(w http.ResponseWriter, r *http.Request) {
	ident, ok := mustIdentity(w, r)
	if !ok {
		return
	}
	exercise := r.URL.Query().Get("exercise")
	if !models.KnownExercise(exercise) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown exercise"})
		return
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		date = s.today()
	}

	instances, err := s.db.TodaysInstances(r.Context(), ident.UserID, exercise, date)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if instances == nil {
		instances = []models.InstanceWithSets{}
	}
	writeJSON(w, http.StatusOK, instances)
}

func (s *Server) handleCreateInstance(w http.ResponseWriter, r *http.Request) {
	if _, ok := mustIdentity(w, r); !ok {
		return
	}
	var req struct {
		WorkoutID uuid.UUID `json:"workoutId"`
		Exercise  string    `json:"exercise"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.WorkoutID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "workoutId is required"})
		return
	}
	if !models.KnownExercise(req.Exercise) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown exercise"})
		return
	}

	instance, err := s.db.CreateInstance(r.Context(), req.WorkoutID, req.Exercise)
	if err != nil {
		s.log.Error("create instance failed", "exercise", req.Exercise, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, instance)
}

func (s *Server) handleWorkouts(w http.ResponseWriter, r *http.Request) {
	ident, ok := mustIdentity(w, r)
	if !ok {
		return
	}
	workouts, err := s.db.QueryAllWorkouts(r.Context(), ident.UserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	ident, ok := mustIdentity(w, r)
	if !ok {
		return
	}
	exercise := r.URL.Query().Get("exercise")
	if !models.KnownExercise(exercise) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown exercise"})
		return
	}

	workouts, err := s.db.QueryAllWorkouts(r.Context(), ident.UserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, progress.Project(workouts, exercise))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
