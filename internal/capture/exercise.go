package capture

import (
	"math"
	"math/rand/v2"
	"strings"
)

// Exercise types understood by the scoring backend.
const (
	ExercisePushup       = "pushup"
	ExerciseSquat        = "squat"
	ExercisePlank        = "plank"
	ExerciseVerticalJump = "vertical-jump"
	ExerciseSprint       = "sprint"
	ExerciseAgility      = "agility"
	ExerciseEndurance    = "endurance"

	// DefaultExercise is used for unrecognized test names.
	DefaultExercise = ExercisePushup
)

var exercises = map[string]bool{
	ExercisePushup:       true,
	ExerciseSquat:        true,
	ExercisePlank:        true,
	ExerciseVerticalJump: true,
	ExerciseSprint:       true,
	ExerciseAgility:      true,
	ExerciseEndurance:    true,
}

// timedExercises report their backend score in seconds.
var timedExercises = map[string]bool{
	ExerciseSprint:    true,
	ExerciseAgility:   true,
	ExerciseEndurance: true,
}

// Exercises returns the recognized exercise types.
func Exercises() []string {
	return []string{
		ExercisePushup, ExerciseSquat, ExercisePlank, ExerciseVerticalJump,
		ExerciseSprint, ExerciseAgility, ExerciseEndurance,
	}
}

// NormalizeExercise maps a test name to a recognized exercise type,
// falling back to DefaultExercise.
func NormalizeExercise(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if exercises[key] {
		return key
	}
	return DefaultExercise
}

// UnitFor returns the unit of a backend-computed score for the test name.
func UnitFor(testName string) string {
	if timedExercises[testName] {
		return "seconds"
	}
	return "reps"
}

// fallbackRange bounds a synthetic result. Integer scores are drawn from
// [scoreMin, scoreMin+scoreSpan); decimal scores from [scoreMin, scoreMin+scoreSpan]
// rounded to two places. Percentiles are drawn from [pctMin, pctMin+pctSpan).
type fallbackRange struct {
	scoreMin  float64
	scoreSpan int
	decimal   bool
	unit      string
	pctMin    int
	pctSpan   int
}

var fallbackRanges = map[string]fallbackRange{
	ExercisePushup:       {scoreMin: 25, scoreSpan: 30, unit: "reps", pctMin: 70, pctSpan: 30},
	ExerciseSquat:        {scoreMin: 30, scoreSpan: 40, unit: "reps", pctMin: 75, pctSpan: 25},
	ExerciseVerticalJump: {scoreMin: 20, scoreSpan: 10, unit: "inches", pctMin: 80, pctSpan: 20},
	ExerciseSprint:       {scoreMin: 4, scoreSpan: 2, decimal: true, unit: "seconds", pctMin: 85, pctSpan: 15},
	ExerciseAgility:      {scoreMin: 5, scoreSpan: 2, decimal: true, unit: "seconds", pctMin: 75, pctSpan: 20},
	ExerciseEndurance:    {scoreMin: 6, scoreSpan: 2, decimal: true, unit: "min/mile", pctMin: 70, pctSpan: 25},
}

// FallbackResult synthesizes a plausible result for testName when the
// scoring backend is unavailable. Unknown names yield the zero Result.
func FallbackResult(rng *rand.Rand, testName string) Result {
	r, ok := fallbackRanges[testName]
	if !ok {
		return Result{}
	}

	var score float64
	if r.decimal {
		score = math.Round((r.scoreMin+rng.Float64()*float64(r.scoreSpan))*100) / 100
	} else {
		score = r.scoreMin + float64(rng.IntN(r.scoreSpan))
	}
	return Result{
		Score:      score,
		Unit:       r.unit,
		Percentile: float64(r.pctMin + rng.IntN(r.pctSpan)),
	}
}
