package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/meltforce/lifttrack/internal/models"
	"github.com/meltforce/lifttrack/internal/session"
	"github.com/meltforce/lifttrack/internal/storage"
	"tailscale.com/client/tailscale/apitype"
)

// Store is the persistence surface the HTTP layer needs. *storage.DB
// satisfies it; handler tests use an in-memory fake.
type Store interface {
	session.Gateway
	GetOrCreateUser(ctx context.Context, login, displayName string) (int, error)
	QueryAllWorkouts(ctx context.Context, userID int) ([]models.WorkoutWithExercises, error)
	UpsertExerciseSettings(ctx context.Context, s models.ExerciseSettings) error
}

// Compile-time check: *storage.DB satisfies Store.
var _ Store = (*storage.DB)(nil)

// WhoIsClient is the slice of the Tailscale local API used to resolve the
// request identity. *local.Client satisfies it.
type WhoIsClient interface {
	WhoIs(ctx context.Context, remoteAddr string) (*apitype.WhoIsResponse, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	db      Store
	machine *session.Machine
	lc      WhoIsClient
	log     *slog.Logger
	router  chi.Router
	now     func() time.Time
}

// New creates a new Server with all routes configured.
func New(db Store, log *slog.Logger) *Server {
	s := &Server{
		db:      db,
		machine: session.NewMachine(db, log),
		log:     log,
		router:  chi.NewRouter(),
		now:     time.Now,
	}
	s.routes()
	return s
}

// SetTailscale enables identity resolution via the tailnet. Without it the
// server runs in dev mode with a single local user.
func (s *Server) SetTailscale(lc WhoIsClient) {
	s.lc = lc
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.Identity)
		r.Get("/me", s.handleMe)
		r.Get("/exercises", s.handleExercises)
		r.Get("/session", s.handleGetSession)
		r.Post("/session/start", s.handleStartSession)
		r.Post("/sets", s.handleLogSet)
		r.Delete("/sets/{id}", s.handleDeleteSet)
		r.Get("/workouts", s.handleWorkouts)
		r.Post("/workouts", s.handleCreateWorkout)
		r.Get("/instances", s.handleInstances)
		r.Post("/instances", s.handleCreateInstance)
		r.Get("/progress", s.handleProgress)
		r.Get("/settings/{exercise}", s.handleGetSettings)
		r.Put("/settings/{exercise}", s.handleUpdateSettings)
	})
}

// today returns the server's current calendar date, the key for the one
// workout-per-day bucket.
func (s *Server) today() string {
	return s.now().Format("2006-01-02")
}
