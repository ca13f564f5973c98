package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/claude/liftlog/internal/reconcile"
	"github.com/claude/liftlog/internal/stats"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	docs, err := s.content.ListExercises(r.Context())
	if err != nil {
		s.log.Error("listing exercises", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "failed to load exercises"})
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleGetExercise(w http.ResponseWriter, r *http.Request) {
	doc, err := s.content.ExerciseByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.log.Error("fetching exercise", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "failed to load exercise"})
		return
	}
	if doc == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "exercise not found"})
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleGuidance(w http.ResponseWriter, r *http.Request) {
	doc, err := s.content.ExerciseByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.log.Error("fetching exercise for guidance", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "failed to load exercise"})
		return
	}
	if doc == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "exercise not found"})
		return
	}

	message, err := s.adviser.Guidance(r.Context(), doc.Name)
	if err != nil {
		s.log.Error("fetching guidance", "exercise", doc.Name, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "failed to fetch guidance"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": message})
}

func (s *Server) handleWorkoutHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		userID = s.userID
	}

	records, err := s.content.WorkoutsByUser(r.Context(), userID)
	if err != nil {
		s.log.Error("fetching history", "user", userID, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "failed to load workouts"})
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// workoutSummary is the derived display block returned with a record.
type workoutSummary struct {
	TotalSets   int              `json:"totalSets"`
	TotalVolume float64          `json:"totalVolume"`
	VolumeUnit  string           `json:"volumeUnit"`
	Duration    string           `json:"duration"`
	Exercises   []exerciseVolume `json:"exercises"`
}

// exerciseVolume is the per-exercise volume line of a summary. Name is
// empty when the referenced exercise definition no longer exists.
type exerciseVolume struct {
	Name   string  `json:"name"`
	Volume float64 `json:"volume"`
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	record, err := s.content.WorkoutByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.log.Error("fetching workout", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "failed to load workout"})
		return
	}
	if record == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}

	volume, unit := stats.TotalVolume(record)
	perExercise := make([]exerciseVolume, 0, len(record.Exercises))
	for _, entry := range record.Exercises {
		line := exerciseVolume{Volume: stats.ExerciseVolume(entry)}
		if entry.Exercise != nil {
			line.Name = entry.Exercise.Name
		}
		perExercise = append(perExercise, line)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"workout": record,
		"summary": workoutSummary{
			TotalSets:   stats.TotalSets(record),
			TotalVolume: volume,
			VolumeUnit:  string(unit),
			Duration:    stats.FormatDuration(record.Duration),
			Exercises:   perExercise,
		},
	})
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	err := s.rec.Delete(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, reconcile.ErrDeleteInFlight):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case err != nil:
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "failed to delete workout"})
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "workout deleted"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
