package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/meltforce/lifttrack/internal/models"
	"github.com/meltforce/lifttrack/internal/storage"
)

// exerciseParam pulls the exercise path segment. Exercise names contain
// spaces, so the segment arrives escaped.
func exerciseParam(r *http.Request) string {
	name, err := url.PathUnescape(chi.URLParam(r, "exercise"))
	if err != nil {
		return ""
	}
	return name
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	ident, ok := mustIdentity(w, r)
	if !ok {
		return
	}
	exercise := exerciseParam(r)
	if !models.KnownExercise(exercise) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown exercise"})
		return
	}

	settings, err := s.db.GetExerciseSettings(r.Context(), ident.UserID, exercise)
	if errors.Is(err, storage.ErrNotFound) {
		settings = models.ExerciseSettings{
			UserID:              ident.UserID,
			Exercise:            exercise,
			RestDurationSeconds: models.DefaultRestSeconds,
		}
	} else if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	ident, ok := mustIdentity(w, r)
	if !ok {
		return
	}
	exercise := exerciseParam(r)
	if !models.KnownExercise(exercise) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown exercise"})
		return
	}

	var req struct {
		RestDurationSeconds int `json:"restDurationSeconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.RestDurationSeconds <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "restDurationSeconds must be positive"})
		return
	}

	settings := models.ExerciseSettings{
		UserID:              ident.UserID,
		Exercise:            exercise,
		RestDurationSeconds: req.RestDurationSeconds,
	}
	if err := s.db.UpsertExerciseSettings(r.Context(), settings); err != nil {
		s.log.Error("update settings failed", "exercise", exercise, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
