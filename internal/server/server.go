package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/reconcile"
	"github.com/claude/liftlog/internal/session"
	"github.com/go-chi/chi/v5"
)

// ContentStore is the read side of the content store the handlers need.
// *content.Client satisfies it.
type ContentStore interface {
	ListExercises(ctx context.Context) ([]models.ExerciseDoc, error)
	ExerciseByID(ctx context.Context, id string) (*models.ExerciseDoc, error)
	WorkoutsByUser(ctx context.Context, userID string) ([]models.WorkoutRecord, error)
	WorkoutByID(ctx context.Context, id string) (*models.WorkoutRecord, error)
}

// Adviser produces coaching text for an exercise. *advice.Client satisfies it.
type Adviser interface {
	Guidance(ctx context.Context, exerciseName string) (string, error)
}

// Server holds dependencies for HTTP handlers. It hosts the single active
// workout session of this instance.
type Server struct {
	content  ContentStore
	adviser  Adviser
	sessions *session.Store
	watch    *session.Stopwatch
	rec      *reconcile.Reconciler
	userID   string
	apiKey   string
	log      *slog.Logger
	router   chi.Router
}

// New creates a Server with all routes configured. apiKey may be empty, in
// which case mutating routes are unguarded (local development).
func New(store ContentStore, adviser Adviser, sessions *session.Store, watch *session.Stopwatch,
	rec *reconcile.Reconciler, userID, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		content:  store,
		adviser:  adviser,
		sessions: sessions,
		watch:    watch,
		rec:      rec,
		userID:   userID,
		apiKey:   apiKey,
		log:      log,
		router:   chi.NewRouter(),
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

	// Exercise library and history (read-only)
	s.router.Get("/api/v1/exercises", s.handleListExercises)
	s.router.Get("/api/v1/exercises/{id}", s.handleGetExercise)
	s.router.Post("/api/v1/exercises/{id}/guidance", s.handleGuidance)
	s.router.Get("/api/v1/workouts", s.handleWorkoutHistory)
	s.router.Get("/api/v1/workouts/{id}", s.handleGetWorkout)

	// Mutations (API key required when configured)
	s.router.Group(func(r chi.Router) {
		if s.apiKey != "" {
			r.Use(APIKeyAuth(s.apiKey))
		}
		r.Delete("/api/v1/workouts/{id}", s.handleDeleteWorkout)
	})

	s.router.Route("/api/v1/session", func(r chi.Router) {
		r.Get("/", s.handleGetSession)

		r.Group(func(r chi.Router) {
			if s.apiKey != "" {
				r.Use(APIKeyAuth(s.apiKey))
			}
			r.Delete("/", s.handleResetSession)
			r.Put("/weight-unit", s.handleSetWeightUnit)
			r.Post("/complete", s.handleCompleteWorkout)
			r.Post("/exercises", s.handleAddExercise)
			r.Delete("/exercises/{id}", s.handleRemoveExercise)
			r.Post("/exercises/{id}/sets", s.handleAddSet)
			r.Patch("/exercises/{id}/sets/{setId}", s.handleUpdateSet)
			r.Post("/exercises/{id}/sets/{setId}/toggle", s.handleToggleSet)
			r.Delete("/exercises/{id}/sets/{setId}", s.handleDeleteSet)
		})
	})
}
