// Package reconcile turns session state into a persistable workout
// document and drives the create/delete calls against the content store.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/session"
)

var (
	// ErrExerciseNotFound means a session exercise name had no exact match
	// in the library at save time. The whole build aborts; no partial
	// document is produced.
	ErrExerciseNotFound = errors.New("exercise not found in library")

	// ErrNothingToSave means the build produced zero valid exercises.
	// The user has to complete at least one set before saving.
	ErrNothingToSave = errors.New("no completed sets to save")

	// ErrSaveInFlight and ErrDeleteInFlight reject a duplicate call while
	// one is already pending. They are guards, not queues.
	ErrSaveInFlight   = errors.New("a save is already in progress")
	ErrDeleteInFlight = errors.New("a delete is already in progress")
)

// Remote is the subset of the content store the reconciler needs.
// *content.Client satisfies it.
type Remote interface {
	ExerciseByName(ctx context.Context, name string) (*models.ExerciseDoc, error)
	CreateWorkout(ctx context.Context, doc *models.WorkoutDoc) (string, error)
	DeleteWorkout(ctx context.Context, id string) error
}

// Reconciler converts session snapshots into workout documents and issues
// the save/delete calls. At most one save and one delete may be in flight
// at a time.
type Reconciler struct {
	remote   Remote
	log      *slog.Logger
	saving   atomic.Bool
	deleting atomic.Bool
	newKey   func() string
	now      func() time.Time
}

// New creates a Reconciler.
func New(remote Remote, log *slog.Logger) *Reconciler {
	return &Reconciler{
		remote: remote,
		log:    log,
		newKey: models.NewKey,
		now:    time.Now,
	}
}

// Build transforms a snapshot into a workout document. Each exercise name
// is resolved against the library (one lookup per exercise, repeated names
// included); sets are filtered to completed ones with non-empty reps and
// weight; exercises left with no sets are dropped. An unresolvable name
// aborts with ErrExerciseNotFound, an empty result with ErrNothingToSave.
func (r *Reconciler) Build(ctx context.Context, snap session.Snapshot, userID string, elapsedSec int) (*models.WorkoutDoc, error) {
	var entries []models.WorkoutEntry
	for _, ex := range snap.Exercises {
		doc, err := r.remote.ExerciseByName(ctx, ex.Name)
		if err != nil {
			return nil, fmt.Errorf("resolving %q: %w", ex.Name, err)
		}
		if doc == nil {
			return nil, fmt.Errorf("%w: %q", ErrExerciseNotFound, ex.Name)
		}

		var sets []models.SetEntry
		for _, set := range ex.Sets {
			if !set.Completed || set.Reps == "" || set.Weight == "" {
				continue
			}
			sets = append(sets, models.SetEntry{
				Type:       "set",
				Key:        r.newKey(),
				Reps:       coerceInt(set.Reps),
				Weight:     coerceFloat(set.Weight),
				WeightUnit: set.WeightUnit,
			})
		}
		if len(sets) == 0 {
			continue
		}

		entries = append(entries, models.WorkoutEntry{
			Type:     "workoutExercise",
			Key:      r.newKey(),
			Exercise: models.ExerciseRef{Type: "reference", Ref: doc.ID},
			Sets:     sets,
		})
	}

	if len(entries) == 0 {
		return nil, ErrNothingToSave
	}

	return &models.WorkoutDoc{
		Type:      "workout",
		UserID:    userID,
		Date:      r.now().UTC().Format(time.RFC3339),
		Duration:  elapsedSec,
		Exercises: entries,
	}, nil
}

// Complete builds a document from the snapshot and saves it, returning the
// new document id. The in-flight guard covers the whole build-and-save: a
// second call while one is pending gets ErrSaveInFlight without touching
// the network. A failed save leaves the session intact so the user can
// retry without re-entering data.
func (r *Reconciler) Complete(ctx context.Context, snap session.Snapshot, userID string, elapsedSec int) (string, error) {
	if !r.saving.CompareAndSwap(false, true) {
		return "", ErrSaveInFlight
	}
	defer r.saving.Store(false)

	doc, err := r.Build(ctx, snap, userID, elapsedSec)
	if err != nil {
		return "", err
	}

	id, err := r.remote.CreateWorkout(ctx, doc)
	if err != nil {
		r.log.Error("saving workout", "user", userID, "error", err)
		return "", fmt.Errorf("saving workout: %w", err)
	}
	r.log.Info("workout saved", "id", id, "user", userID,
		"exercises", len(doc.Exercises), "duration_sec", doc.Duration)
	return id, nil
}

// Delete removes a persisted workout. All-or-nothing: on failure the
// document remains intact and the caller is told to try again. A second
// call while one is pending gets ErrDeleteInFlight.
func (r *Reconciler) Delete(ctx context.Context, workoutID string) error {
	if !r.deleting.CompareAndSwap(false, true) {
		return ErrDeleteInFlight
	}
	defer r.deleting.Store(false)

	if err := r.remote.DeleteWorkout(ctx, workoutID); err != nil {
		r.log.Error("deleting workout", "id", workoutID, "error", err)
		return fmt.Errorf("deleting workout: %w", err)
	}
	r.log.Info("workout deleted", "id", workoutID)
	return nil
}

// coerceInt parses reps leniently: non-numeric text becomes 0 rather than
// an error, matching the save-time leniency of the field inputs.
func coerceInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// coerceFloat parses weight leniently, falling back to 0.
func coerceFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
