package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/reconcile"
	"github.com/claude/liftlog/internal/session"
	"github.com/go-chi/chi/v5"
)

// sessionView is a snapshot plus the live elapsed time.
type sessionView struct {
	session.Snapshot
	ElapsedSeconds int `json:"elapsedSeconds"`
}

func (s *Server) view(snap session.Snapshot) sessionView {
	return sessionView{Snapshot: snap, ElapsedSeconds: s.watch.Elapsed()}
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.view(s.sessions.Snapshot()))
}

func (s *Server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	var sel session.Selection
	if err := json.NewDecoder(r.Body).Decode(&sel); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if sel.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	// The first exercise anchors the workout start time.
	s.watch.Start()
	writeJSON(w, http.StatusOK, s.view(s.sessions.AddExercise(sel)))
}

func (s *Server) handleRemoveExercise(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.view(s.sessions.RemoveExercise(chi.URLParam(r, "id"))))
}

func (s *Server) handleAddSet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.view(s.sessions.AddSet(chi.URLParam(r, "id"))))
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	field := session.SetField(body.Field)
	if field != session.FieldReps && field != session.FieldWeight {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "field must be reps or weight"})
		return
	}

	snap := s.sessions.UpdateSet(chi.URLParam(r, "id"), chi.URLParam(r, "setId"), field, body.Value)
	writeJSON(w, http.StatusOK, s.view(snap))
}

func (s *Server) handleToggleSet(w http.ResponseWriter, r *http.Request) {
	snap := s.sessions.ToggleSetCompletion(chi.URLParam(r, "id"), chi.URLParam(r, "setId"))
	writeJSON(w, http.StatusOK, s.view(snap))
}

func (s *Server) handleDeleteSet(w http.ResponseWriter, r *http.Request) {
	snap := s.sessions.DeleteSet(chi.URLParam(r, "id"), chi.URLParam(r, "setId"))
	writeJSON(w, http.StatusOK, s.view(snap))
}

func (s *Server) handleSetWeightUnit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Unit string `json:"unit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	unit, err := models.ParseWeightUnit(body.Unit)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.view(s.sessions.SetWeightUnit(unit)))
}

func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	snap := s.sessions.Reset()
	s.watch.Reset()
	writeJSON(w, http.StatusOK, s.view(snap))
}

func (s *Server) handleCompleteWorkout(w http.ResponseWriter, r *http.Request) {
	snap := s.sessions.Snapshot()

	id, err := s.rec.Complete(r.Context(), snap, s.userID, s.watch.Elapsed())
	switch {
	case errors.Is(err, reconcile.ErrSaveInFlight):
		writeJSON(w, http.StatusConflict, map[string]string{
			"code": "save_in_flight", "error": err.Error()})
		return
	case errors.Is(err, reconcile.ErrNothingToSave):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"code": "nothing_to_save", "error": "complete at least one set before saving the workout"})
		return
	case errors.Is(err, reconcile.ErrExerciseNotFound):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"code": "exercise_not_found", "error": err.Error()})
		return
	case err != nil:
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"code": "save_failed", "error": "failed to save workout, please try again"})
		return
	}

	// The session only clears after a confirmed save.
	s.sessions.Reset()
	s.watch.Reset()
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}
