package scoring

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Flag is a success flag decoded by truthiness, the way the web client
// checks it: true, non-zero numbers, any non-empty string (even "false"),
// objects and arrays are set; false, 0, "" and null are not.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case bool:
		*f = Flag(x)
	case float64:
		*f = x != 0
	case string:
		*f = x != ""
	case map[string]any, []any:
		*f = true
	default:
		*f = false
	}
	return nil
}

// Number is a leniently decoded numeric field. Missing, null or
// non-numeric values decode as 0.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case float64:
		*n = Number(x)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			*n = 0
			return nil
		}
		*n = Number(f)
	case bool:
		if x {
			*n = 1
		} else {
			*n = 0
		}
	default:
		*n = 0
	}
	return nil
}

type beginRequest struct {
	ExerciseType string `json:"exercise_type"`
}

// BeginResponse is the backend reply to /start_session.
type BeginResponse struct {
	Success   Flag   `json:"success"`
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
}

type scorecardRequest struct {
	ExerciseType string  `json:"exercise_type"`
	SessionID    *string `json:"session_id"`
}

// ScorecardResponse is the backend reply to /scorecard.
type ScorecardResponse struct {
	Success    Flag   `json:"success"`
	Score      Number `json:"score"`
	Percentile Number `json:"percentile"`
	Analysis   string `json:"analysis,omitempty"`
	Error      string `json:"error,omitempty"`
}

type endRequest struct {
	SessionID string `json:"session_id"`
}

// HealthStatus is the backend reply to /health.
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Healthy reports whether the backend declared itself healthy.
func (h HealthStatus) Healthy() bool {
	return strings.EqualFold(h.Status, "healthy")
}
