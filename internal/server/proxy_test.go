package server

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
)

// TestProxyMirrorsBackend verifies status and body pass through unchanged and
// request bodies reach the backend.
func TestProxyMirrorsBackend(t *testing.T) {
	var mu sync.Mutex
	var gotPath, gotBody string
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		gotPath, gotBody = r.URL.Path, string(data)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/health":
			w.Write([]byte(`{"status":"healthy","timestamp":"now"}`))
		case "/start_session":
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"success":false,"error":"bad exercise"}`))
		case "/scorecard":
			w.Write([]byte(`{"success":true,"score":"31","percentile":80}`))
		}
	})
	env := newTestEnv(t, backend)

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		wantPath   string
		wantStatus int
		wantBody   string
	}{
		{"health", http.MethodGet, "/api/health", nil, "/health", http.StatusOK, `{"status":"healthy","timestamp":"now"}`},
		{"start session", http.MethodPost, "/api/start-session", `{"exercise_type":"burpee"}`, "/start_session", http.StatusBadRequest, `{"success":false,"error":"bad exercise"}`},
		{"scorecard", http.MethodPost, "/api/scorecard", `{"exercise_type":"squat","session_id":null}`, "/scorecard", http.StatusOK, `{"success":true,"score":"31","percentile":80}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.path, tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			mu.Lock()
			defer mu.Unlock()
			if gotPath != tt.wantPath {
				t.Errorf("backend path = %q, want %q", gotPath, tt.wantPath)
			}
			if s, ok := tt.body.(string); ok && gotBody != s {
				t.Errorf("backend body = %q, want %q", gotBody, s)
			}
			if rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("content-type = %q", ct)
			}
		})
	}
}

type proxyFailure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// TestProxyBackendDown verifies transport failures become 500 {success:false}.
func TestProxyBackendDown(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	got := decode[proxyFailure](t, rec)
	if got.Success || got.Error == "" {
		t.Errorf("body = %+v, want success=false with error", got)
	}
}

// TestProxyInvalidJSON verifies malformed request or response bodies are
// reported as proxy failures without passing them on.
func TestProxyInvalidJSON(t *testing.T) {
	var calls atomic.Int32
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte("<html>oops</html>"))
	})
	env := newTestEnv(t, backend)

	rec := env.do(t, http.MethodPost, "/api/scorecard", "not json")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("bad request body status = %d, want 500", rec.Code)
	}
	if n := calls.Load(); n != 0 {
		t.Errorf("backend called %d times for invalid body", n)
	}

	rec = env.do(t, http.MethodPost, "/api/start-session", `{"exercise_type":"pushup"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("bad response body status = %d, want 500", rec.Code)
	}
	var got proxyFailure
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil || got.Success {
		t.Errorf("body = %+v (%v), want success=false", got, err)
	}
}
