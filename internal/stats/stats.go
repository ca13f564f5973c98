// Package stats derives display statistics from persisted workout records.
// All functions are pure.
package stats

import (
	"fmt"

	"github.com/claude/liftlog/internal/models"
)

// FallbackWeightUnit is reported when no set carries a unit.
const FallbackWeightUnit = models.UnitKG

// TotalSets sums set counts across all exercises of a workout. Entries
// with no sets count as 0.
func TotalSets(record *models.WorkoutRecord) int {
	total := 0
	for _, entry := range record.Exercises {
		total += len(entry.Sets)
	}
	return total
}

// TotalVolume sums weight x reps over every set where both are non-zero.
// The reported unit is that of the last such set in iteration order;
// mixed-unit workouts are not converted, so the number is an approximation
// when units differ.
func TotalVolume(record *models.WorkoutRecord) (float64, models.WeightUnit) {
	volume := 0.0
	unit := FallbackWeightUnit
	for _, entry := range record.Exercises {
		for _, set := range entry.Sets {
			if set.Weight != 0 && set.Reps != 0 {
				volume += set.Weight * float64(set.Reps)
				if set.WeightUnit != "" {
					unit = set.WeightUnit
				}
			}
		}
	}
	return volume, unit
}

// ExerciseVolume sums weight x reps for the sets of one workout entry.
func ExerciseVolume(entry models.RecordEntry) float64 {
	volume := 0.0
	for _, set := range entry.Sets {
		volume += set.Weight * float64(set.Reps)
	}
	return volume
}

// FormatDuration renders a non-negative duration in seconds as a short
// human string:
//
//	45   -> "45 s"
//	125  -> "2 m 5 s"
//	120  -> "2 m"
//	3600 -> "1 h"
//	3665 -> "1 h 1 m 5 s"
func FormatDuration(totalSeconds int) string {
	if totalSeconds < 60 {
		return fmt.Sprintf("%d s", totalSeconds)
	}

	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		switch {
		case seconds > 0:
			return fmt.Sprintf("%d h %d m %d s", hours, minutes, seconds)
		case minutes > 0:
			return fmt.Sprintf("%d h %d m", hours, minutes)
		default:
			return fmt.Sprintf("%d h", hours)
		}
	}

	if seconds > 0 {
		return fmt.Sprintf("%d m %d s", minutes, seconds)
	}
	return fmt.Sprintf("%d m", minutes)
}
