package capture

import (
	"math"
	"math/rand/v2"
	"testing"
)

// TestNormalizeExercise verifies known names pass through and unknown names default.
func TestNormalizeExercise(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"pushup", "pushup"},
		{"Squat", "squat"},
		{" vertical-jump ", "vertical-jump"},
		{"sprint", "sprint"},
		{"bench-press", DefaultExercise},
		{"", DefaultExercise},
	}
	for _, tt := range tests {
		if got := NormalizeExercise(tt.in); got != tt.want {
			t.Errorf("NormalizeExercise(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestUnitFor verifies only the timed exercises report seconds.
func TestUnitFor(t *testing.T) {
	for _, name := range []string{"sprint", "agility", "endurance"} {
		if got := UnitFor(name); got != "seconds" {
			t.Errorf("UnitFor(%q) = %q, want seconds", name, got)
		}
	}
	for _, name := range []string{"pushup", "squat", "plank", "vertical-jump", "unknown"} {
		if got := UnitFor(name); got != "reps" {
			t.Errorf("UnitFor(%q) = %q, want reps", name, got)
		}
	}
}

// TestFallbackResultBounds draws many fallback results per exercise and checks
// every draw stays inside the documented inclusive bounds.
func TestFallbackResultBounds(t *testing.T) {
	tests := []struct {
		name             string
		unit             string
		minScore, maxScr float64
		minPct, maxPct   float64
		integer          bool
	}{
		{"pushup", "reps", 25, 54, 70, 99, true},
		{"squat", "reps", 30, 69, 75, 99, true},
		{"vertical-jump", "inches", 20, 29, 80, 99, true},
		{"sprint", "seconds", 4, 6, 85, 99, false},
		{"agility", "seconds", 5, 7, 75, 94, false},
		{"endurance", "min/mile", 6, 8, 70, 94, false},
	}

	rng := rand.New(rand.NewPCG(7, 11))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for range 2000 {
				r := FallbackResult(rng, tt.name)
				if r.Unit != tt.unit {
					t.Fatalf("unit = %q, want %q", r.Unit, tt.unit)
				}
				if r.Score < tt.minScore || r.Score > tt.maxScr {
					t.Fatalf("score = %v, want within [%v, %v]", r.Score, tt.minScore, tt.maxScr)
				}
				if r.Percentile < tt.minPct || r.Percentile > tt.maxPct {
					t.Fatalf("percentile = %v, want within [%v, %v]", r.Percentile, tt.minPct, tt.maxPct)
				}
				if r.Percentile != math.Trunc(r.Percentile) {
					t.Fatalf("percentile = %v, want integer", r.Percentile)
				}
				if tt.integer && r.Score != math.Trunc(r.Score) {
					t.Fatalf("score = %v, want integer", r.Score)
				}
				if !tt.integer && math.Abs(r.Score*100-math.Round(r.Score*100)) > 1e-6 {
					t.Fatalf("score = %v, want at most two decimals", r.Score)
				}
			}
		})
	}
}

// TestFallbackResultUnknown verifies unrecognized names produce the zero result,
// including exercises without a fallback range.
func TestFallbackResultUnknown(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	for _, name := range []string{"bench-press", "", "plank", "PUSHUP"} {
		if got := FallbackResult(rng, name); got != (Result{}) {
			t.Errorf("FallbackResult(%q) = %+v, want zero", name, got)
		}
	}
}
