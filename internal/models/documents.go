package models

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
)

// WeightUnit is the unit a set's weight was recorded in.
type WeightUnit string

const (
	UnitKG  WeightUnit = "kg"
	UnitLBS WeightUnit = "lbs"
)

// ParseWeightUnit validates a unit string coming from config or a request body.
func ParseWeightUnit(s string) (WeightUnit, error) {
	switch WeightUnit(s) {
	case UnitKG:
		return UnitKG, nil
	case UnitLBS:
		return UnitLBS, nil
	}
	return "", fmt.Errorf("unknown weight unit %q", s)
}

// ExerciseDoc is an exercise definition from the content library. Image is
// the store's raw image object (asset reference), passed through untouched;
// resolving it to a URL is the consumer's concern.
type ExerciseDoc struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Difficulty  string          `json:"difficulty,omitempty"`
	Image       json.RawMessage `json:"image,omitempty"`
	VideoURL    string          `json:"videoUrl,omitempty"`
	IsActive    bool            `json:"isActive"`
}

// SetEntry is one persisted set inside a workout document.
type SetEntry struct {
	Type       string     `json:"_type"`
	Key        string     `json:"_key"`
	Reps       int        `json:"reps"`
	Weight     float64    `json:"weight"`
	WeightUnit WeightUnit `json:"weightUnit"`
}

// ExerciseRef points a workout entry at its exercise definition.
type ExerciseRef struct {
	Type string `json:"_type"`
	Ref  string `json:"_ref"`
}

// WorkoutEntry is one exercise performed within a workout document,
// with the sets that were completed for it.
type WorkoutEntry struct {
	Type     string      `json:"_type"`
	Key      string      `json:"_key"`
	Exercise ExerciseRef `json:"exercise"`
	Sets     []SetEntry  `json:"sets"`
}

// WorkoutDoc is the workout document written to the content store.
type WorkoutDoc struct {
	ID        string         `json:"_id,omitempty"`
	Type      string         `json:"_type"`
	UserID    string         `json:"userId"`
	Date      string         `json:"date"`
	Duration  int            `json:"duration"`
	Exercises []WorkoutEntry `json:"exercises"`
}

// ExerciseSummary is the dereferenced exercise shape returned by
// history queries, a subset of ExerciseDoc.
type ExerciseSummary struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// RecordEntry is a workout entry as read back from the store, with the
// exercise reference already followed. Exercise may be nil if the
// referenced definition was deleted after the workout was saved.
type RecordEntry struct {
	Key      string           `json:"_key"`
	Exercise *ExerciseSummary `json:"exercise"`
	Sets     []SetEntry       `json:"sets"`
}

// WorkoutRecord is a persisted workout as read back for history views.
type WorkoutRecord struct {
	ID        string        `json:"_id"`
	Date      string        `json:"date"`
	Duration  int           `json:"duration"`
	Exercises []RecordEntry `json:"exercises"`
}

const keyAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewKey returns a 9-character base36 key for array members of a workout
// document. Keys only need to be unique within a single document.
func NewKey() string {
	b := make([]byte, 9)
	for i := range b {
		b[i] = keyAlphabet[rand.IntN(len(keyAlphabet))]
	}
	return string(b)
}
