package scoring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// newTestServer creates an httptest server that routes requests to handler functions
// keyed by path.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

// TestBeginSession verifies the exercise type is sent and the session id parsed.
func TestBeginSession(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/start_session": func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("method = %s, want POST", r.Method)
			}
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body["exercise_type"] != "squat" {
				t.Errorf("exercise_type = %v, want squat", body["exercise_type"])
			}
			writeTestJSON(t, w, http.StatusOK, map[string]any{"success": true, "session_id": "session_1_squat"})
		},
	})

	resp, err := NewClient(ts.URL, time.Second).BeginSession(context.Background(), "squat")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Success {
		t.Error("success = false, want true")
	}
	if resp.SessionID != "session_1_squat" {
		t.Errorf("session_id = %q, want session_1_squat", resp.SessionID)
	}
}

// TestScorecardNullSession verifies an absent session id is sent as JSON null,
// not omitted.
func TestScorecardNullSession(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/scorecard": func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			v, ok := body["session_id"]
			if !ok {
				t.Error("session_id key missing")
			}
			if v != nil {
				t.Errorf("session_id = %v, want null", v)
			}
			writeTestJSON(t, w, http.StatusOK, map[string]any{"success": true, "score": 42, "percentile": 88})
		},
	})

	resp, err := NewClient(ts.URL, time.Second).Scorecard(context.Background(), "pushup", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Score != 42 || resp.Percentile != 88 {
		t.Errorf("score/percentile = %v/%v, want 42/88", resp.Score, resp.Percentile)
	}
}

// TestScorecardLenientNumbers verifies numeric fields tolerate strings, nulls and garbage.
func TestScorecardLenientNumbers(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantOK  bool
		wantScr Number
		wantPct Number
	}{
		{"numbers", `{"success":true,"score":85.5,"percentile":90}`, true, 85.5, 90},
		{"strings", `{"success":"true","score":"12","percentile":"7.5"}`, true, 12, 7.5},
		{"missing", `{"success":true}`, true, 0, 0},
		{"null and garbage", `{"success":1,"score":null,"percentile":"abc"}`, true, 0, 0},
		{"failure", `{"success":false,"error":"boom"}`, false, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp ScorecardResponse
			if err := json.Unmarshal([]byte(tt.body), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if bool(resp.Success) != tt.wantOK {
				t.Errorf("success = %v, want %v", resp.Success, tt.wantOK)
			}
			if resp.Score != tt.wantScr {
				t.Errorf("score = %v, want %v", resp.Score, tt.wantScr)
			}
			if resp.Percentile != tt.wantPct {
				t.Errorf("percentile = %v, want %v", resp.Percentile, tt.wantPct)
			}
		})
	}
}

// TestFlagTruthiness verifies success decodes by truthiness: any non-empty
// string is set, including "false" and "0".
func TestFlagTruthiness(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{`true`, true},
		{`false`, false},
		{`1`, true},
		{`0`, false},
		{`"yes"`, true},
		{`"false"`, true},
		{`"0"`, true},
		{`""`, false},
		{`null`, false},
		{`{}`, true},
		{`[]`, true},
	}
	for _, tt := range tests {
		var f Flag
		if err := json.Unmarshal([]byte(tt.raw), &f); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.raw, err)
		}
		if bool(f) != tt.want {
			t.Errorf("Flag(%s) = %v, want %v", tt.raw, f, tt.want)
		}
	}
}

// TestPostNonOK verifies non-2xx responses become errors carrying the status.
func TestPostNonOK(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/scorecard": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, http.StatusInternalServerError, map[string]any{"success": false, "error": "model crashed"})
		},
	})

	_, err := NewClient(ts.URL, time.Second).Scorecard(context.Background(), "pushup", nil)
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error = %v, want status code in message", err)
	}
}

// TestPostMalformed verifies a non-JSON body is reported as a decode error.
func TestPostMalformed(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/start_session": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>gateway</html>"))
		},
	})

	_, err := NewClient(ts.URL, time.Second).BeginSession(context.Background(), "pushup")
	if err == nil {
		t.Fatal("expected decode error")
	}
}

// TestTransportFailure verifies an unreachable backend returns an error instead of hanging.
func TestTransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	if _, err := NewClient(url, time.Second).BeginSession(context.Background(), "pushup"); err == nil {
		t.Fatal("expected transport error")
	}
}

// TestHealth verifies the health endpoint is parsed.
func TestHealth(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/health": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, http.StatusOK, map[string]any{"status": "healthy", "message": "SIH AI Backend is running"})
		},
	})

	h, err := NewClient(ts.URL, time.Second).Health(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !h.Healthy() {
		t.Errorf("status = %q, want healthy", h.Status)
	}
}

// TestEndSession verifies the session id is forwarded and a logical failure is an error.
func TestEndSession(t *testing.T) {
	var fail atomic.Bool
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/end_session": func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body["session_id"] != "abc" {
				t.Errorf("session_id = %q, want abc", body["session_id"])
			}
			writeTestJSON(t, w, http.StatusOK, map[string]any{"success": !fail.Load()})
		},
	})

	c := NewClient(ts.URL, time.Second)
	if err := c.EndSession(context.Background(), "abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fail.Store(true)
	if err := c.EndSession(context.Background(), "abc"); err == nil {
		t.Fatal("expected error for success=false")
	}
}

// TestNewClientDefaults verifies the default URL and trailing slash handling.
func TestNewClientDefaults(t *testing.T) {
	if got := NewClient("", 0).BaseURL(); got != DefaultBackendURL {
		t.Errorf("BaseURL() = %q, want %q", got, DefaultBackendURL)
	}
	if got := NewClient("http://ai.local:5000/", 0).BaseURL(); got != "http://ai.local:5000" {
		t.Errorf("BaseURL() = %q, want trailing slash stripped", got)
	}
}
