// Package session holds the state of the workout currently being performed.
//
// The store is the single source of truth for the active session. Mutations
// are synchronous and total: unknown ids are no-ops, never errors. Every
// mutation produces a fresh snapshot; callers never see shared slices, so a
// snapshot taken before a mutation is unaffected by it.
package session

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// Set is one performed (or planned) set. Reps and weight stay free-text
// until save time; validation happens during reconciliation.
type Set struct {
	ID         string            `json:"id"`
	Reps       string            `json:"reps"`
	Weight     string            `json:"weight"`
	WeightUnit models.WeightUnit `json:"weightUnit"`
	Completed  bool              `json:"isCompleted"`
}

// Exercise is one exercise instance in the active session. ExerciseID and
// Name are copied from the library entry at selection time.
type Exercise struct {
	ID         string `json:"id"`
	ExerciseID string `json:"exerciseId"`
	Name       string `json:"name"`
	Sets       []Set  `json:"sets"`
}

// Snapshot is an immutable view of the session state. Exercise order is
// insertion order.
type Snapshot struct {
	Exercises  []Exercise        `json:"exercises"`
	WeightUnit models.WeightUnit `json:"weightUnit"`
}

// Selection identifies a library entry chosen by the user.
type Selection struct {
	Name       string `json:"name"`
	ExerciseID string `json:"exerciseId"`
}

// Prefs is the durable blob store used to keep the weight unit across
// restarts. *prefs.DB satisfies it.
type Prefs interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}

// prefsKey is the namespace key the persisted slice of session state
// lives under in the blob store.
const prefsKey = "workout-store"

// persistedState is the durable subset of a snapshot.
type persistedState struct {
	WeightUnit models.WeightUnit `json:"weightUnit"`
}

// Store owns the active session. One store exists per running instance;
// at most one workout is active at a time.
type Store struct {
	mu    sync.Mutex
	snap  Snapshot
	prefs Prefs
	log   *slog.Logger
	newID func() string
}

// New creates a Store with the default unit (kg), restoring the persisted
// weight unit if the blob store has one. prefs may be nil for an ephemeral
// store.
func New(prefs Prefs, log *slog.Logger) *Store {
	s := &Store{
		snap:  Snapshot{WeightUnit: models.UnitKG},
		prefs: prefs,
		log:   log,
		newID: uuid.NewString,
	}
	if prefs != nil {
		if blob, err := prefs.Get(prefsKey); err != nil {
			log.Warn("loading session prefs", "error", err)
		} else if len(blob) > 0 {
			var st persistedState
			if err := json.Unmarshal(blob, &st); err != nil {
				log.Warn("decoding session prefs", "error", err)
			} else if unit, err := models.ParseWeightUnit(string(st.WeightUnit)); err == nil {
				s.snap.WeightUnit = unit
			}
		}
	}
	return s
}

// Snapshot returns a deep copy of the current session state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSnapshot(s.snap)
}

// AddExercise appends a new exercise with no sets, ordered after all
// existing exercises. Selecting the same library entry twice yields two
// independent session exercises.
func (s *Store) AddExercise(sel Selection) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneSnapshot(s.snap)
	next.Exercises = append(next.Exercises, Exercise{
		ID:         s.newID(),
		ExerciseID: sel.ExerciseID,
		Name:       sel.Name,
	})
	s.snap = next
	return cloneSnapshot(next)
}

// RemoveExercise removes the exercise with the given id, preserving the
// order of the rest. Unknown ids are a no-op.
func (s *Store) RemoveExercise(exerciseID string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneSnapshot(s.snap)
	kept := next.Exercises[:0]
	for _, ex := range next.Exercises {
		if ex.ID != exerciseID {
			kept = append(kept, ex)
		}
	}
	next.Exercises = kept
	s.snap = next
	return cloneSnapshot(next)
}

// AddSet appends an empty, incomplete set to the named exercise. The set
// inherits the session's current weight unit.
func (s *Store) AddSet(exerciseID string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneSnapshot(s.snap)
	for i, ex := range next.Exercises {
		if ex.ID == exerciseID {
			next.Exercises[i].Sets = append(ex.Sets, Set{
				ID:         s.newID(),
				WeightUnit: next.WeightUnit,
			})
			break
		}
	}
	s.snap = next
	return cloneSnapshot(next)
}

// SetField names a free-text field of a set.
type SetField string

const (
	FieldReps   SetField = "reps"
	FieldWeight SetField = "weight"
)

// UpdateSet overwrites one field of a set, leaving the others untouched.
// Unknown exercise, set, or field names are a no-op.
func (s *Store) UpdateSet(exerciseID, setID string, field SetField, value string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneSnapshot(s.snap)
	for i, ex := range next.Exercises {
		if ex.ID != exerciseID {
			continue
		}
		for j, set := range ex.Sets {
			if set.ID != setID {
				continue
			}
			switch field {
			case FieldReps:
				next.Exercises[i].Sets[j].Reps = value
			case FieldWeight:
				next.Exercises[i].Sets[j].Weight = value
			}
		}
	}
	s.snap = next
	return cloneSnapshot(next)
}

// DeleteSet removes a set from its exercise. Unknown ids are a no-op.
func (s *Store) DeleteSet(exerciseID, setID string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneSnapshot(s.snap)
	for i, ex := range next.Exercises {
		if ex.ID != exerciseID {
			continue
		}
		kept := ex.Sets[:0]
		for _, set := range ex.Sets {
			if set.ID != setID {
				kept = append(kept, set)
			}
		}
		next.Exercises[i].Sets = kept
	}
	s.snap = next
	return cloneSnapshot(next)
}

// ToggleSetCompletion flips a set's completed flag. No validation of reps
// or weight happens here; an empty set can be marked complete and is
// filtered out at save time instead.
func (s *Store) ToggleSetCompletion(exerciseID, setID string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneSnapshot(s.snap)
	for i, ex := range next.Exercises {
		if ex.ID != exerciseID {
			continue
		}
		for j, set := range ex.Sets {
			if set.ID == setID {
				next.Exercises[i].Sets[j].Completed = !set.Completed
			}
		}
	}
	s.snap = next
	return cloneSnapshot(next)
}

// SetWeightUnit changes the default unit for future sets. Existing sets
// keep the unit they were created with. The choice is persisted.
func (s *Store) SetWeightUnit(unit models.WeightUnit) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneSnapshot(s.snap)
	next.WeightUnit = unit
	s.snap = next
	s.persistLocked()
	return cloneSnapshot(next)
}

// Reset discards the active session. The weight unit preference survives.
func (s *Store) Reset() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap = Snapshot{WeightUnit: s.snap.WeightUnit}
	return cloneSnapshot(s.snap)
}

// persistLocked writes the durable subset of the snapshot. A failed write
// never fails the mutation.
func (s *Store) persistLocked() {
	if s.prefs == nil {
		return
	}
	blob, err := json.Marshal(persistedState{WeightUnit: s.snap.WeightUnit})
	if err != nil {
		s.log.Warn("encoding session prefs", "error", err)
		return
	}
	if err := s.prefs.Set(prefsKey, blob); err != nil {
		s.log.Warn("persisting session prefs", "error", err)
	}
}

func cloneSnapshot(snap Snapshot) Snapshot {
	out := Snapshot{WeightUnit: snap.WeightUnit}
	if snap.Exercises == nil {
		return out
	}
	out.Exercises = make([]Exercise, len(snap.Exercises))
	for i, ex := range snap.Exercises {
		cp := ex
		if ex.Sets != nil {
			cp.Sets = make([]Set, len(ex.Sets))
			copy(cp.Sets, ex.Sets)
		}
		out.Exercises[i] = cp
	}
	return out
}
