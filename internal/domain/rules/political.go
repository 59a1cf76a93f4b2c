// Package rules contains the pure calculation logic for political mechanics.
// This package is PURE and must NOT import any infrastructure packages.
package rules

import (
	"math"
	"sort"
)

// Clamp bounds v to [lo, hi]. NaN collapses to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampPercent bounds to [0, 100].
func ClampPercent(v float64) float64 {
	return Clamp(v, 0, 100)
}

// Finite reports a usable number.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Mood is the six-level public mood scale of a jurisdiction.
type Mood int

const (
	MoodFurious Mood = iota
	MoodAngry
	MoodUneasy
	MoodContent
	MoodPleased
	MoodEnthusiastic
)

var moodNames = [...]string{"furious", "angry", "uneasy", "content", "pleased", "enthusiastic"}

func (m Mood) String() string {
	if m < MoodFurious || m > MoodEnthusiastic {
		return "unknown"
	}
	return moodNames[m]
}

// MoodFromIndex buckets a 0-100 mood index.
func MoodFromIndex(index float64) Mood {
	switch {
	case index < 20:
		return MoodFurious
	case index < 35:
		return MoodAngry
	case index < 50:
		return MoodUneasy
	case index < 65:
		return MoodContent
	case index < 80:
		return MoodPleased
	default:
		return MoodEnthusiastic
	}
}

// ApprovalDelta maps a mood to the bounded integer monthly approval move
// in [-2, +3].
func ApprovalDelta(m Mood) int {
	switch m {
	case MoodFurious:
		return -2
	case MoodAngry:
		return -1
	case MoodUneasy:
		return 0
	case MoodContent:
		return 1
	case MoodPleased:
		return 2
	case MoodEnthusiastic:
		return 3
	}
	return 0
}

// ApprovalTierCapital is the approval-tier term of the monthly capital delta.
func ApprovalTierCapital(approval float64) float64 {
	switch {
	case approval >= 70:
		return 3
	case approval >= 55:
		return 2
	case approval >= 40:
		return 1
	case approval >= 25:
		return 0
	default:
		return -2
	}
}

// MoodIndex derives a 0-100 mood from governance metrics when a
// jurisdiction has no explicit mood statistic.
func MoodIndex(unemployment, crime, poverty, budgetBalance float64) float64 {
	score := 70.0
	score -= (unemployment - 5) * 3
	score -= (crime - 30) * 0.4
	score -= (poverty - 12) * 1.2
	if budgetBalance < 0 {
		score -= math.Min(10, -budgetBalance/100)
	}
	return ClampPercent(score)
}

// Renormalize scales a popularity vector to sum to 100. Negative or
// non-finite entries are floored at 0; an all-zero vector is split evenly.
func Renormalize(pop map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(pop))
	if len(pop) == 0 {
		return out
	}
	keys := make([]string, 0, len(pop))
	total := 0.0
	for id, v := range pop {
		if !Finite(v) || v < 0 {
			v = 0
		}
		out[id] = v
		total += v
		keys = append(keys, id)
	}
	sort.Strings(keys)
	if total <= 0 {
		even := 100.0 / float64(len(out))
		for _, id := range keys {
			out[id] = even
		}
		return out
	}
	for _, id := range keys {
		out[id] = out[id] * 100 / total
	}
	return out
}

// Sum adds a popularity vector.
func Sum(pop map[string]float64) float64 {
	total := 0.0
	for _, v := range pop {
		total += v
	}
	return total
}
