package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/claude/fixfit/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	docs    store.DocumentStore
	ids     store.IdentityProvider
	queries *store.Queries
	log     *slog.Logger
	apiKey  string
	roleFor func(email string) string
	router  chi.Router
}

// New creates a new Server with all routes configured. roleFor maps an email
// to its configured role; nil means everyone is a trainee.
func New(docs store.DocumentStore, ids store.IdentityProvider, apiKey string, roleFor func(string) string, log *slog.Logger) *Server {
	if roleFor == nil {
		roleFor = func(string) string { return "trainee" }
	}
	s := &Server{
		docs:    docs,
		ids:     ids,
		queries: &store.Queries{Docs: docs},
		log:     log,
		apiKey:  apiKey,
		roleFor: roleFor,
		router:  chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Coach endpoints (API key required)
	s.router.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/workouts", s.handleCreateWorkout)
		r.Put("/workouts/{id}", s.handleUpdateWorkout)
		r.Delete("/workouts/{id}", s.handleDeleteWorkout)
		r.Post("/exercises", s.handleCreateExercise)
		r.Delete("/exercises/{id}", s.handleDeleteExercise)
		r.Patch("/trainees/{id}/role", s.handleUpdateRole)
	})

	// Read endpoints (no auth — tsnet handles access)
	s.router.Get("/api/v1/trainees", s.handleListTrainees)
	s.router.Get("/api/v1/trainees/{id}/workouts", s.handleTraineeWorkouts)
	s.router.Get("/api/v1/workouts", s.handleListWorkouts)
	s.router.Get("/api/v1/workouts/{id}", s.handleGetWorkout)
	s.router.Post("/api/v1/workouts/{id}/toggle", s.handleToggleEntry)
	s.router.Get("/api/v1/exercises", s.handleSearchExercises)
	s.router.Get("/api/v1/role", s.handleRoleLookup)
}
