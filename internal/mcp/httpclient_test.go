package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/claude/athletconnect/internal/catalog"
	"github.com/claude/athletconnect/internal/models"
)

// newTestServer creates an httptest server that routes requests to handler functions
// keyed by path. Verifies the HTTP client sends correct paths and query params.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Error(err)
	}
}

// TestHTTPClientLeaderboard verifies filters are sent as query params and the
// ranked list is decoded.
func TestHTTPClientLeaderboard(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/leaderboard": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("sport"); got != "Track & Field" {
				t.Errorf("sport=%q, want Track & Field", got)
			}
			if r.URL.Query().Has("region") {
				t.Error("empty region should not be sent")
			}
			writeTestJSON(t, w, []models.Athlete{{ID: "4", Name: "Neeraj Chopra"}})
		},
	})
	defer ts.Close()

	got, err := NewHTTPClient(ts.URL+"/").Leaderboard(context.Background(), "Track & Field", "")
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(got) != 1 || got[0].ID != "4" {
		t.Errorf("leaderboard = %+v", got)
	}
}

// TestHTTPClientLookups verifies single-item lookups and 404 mapping to ErrNotFound.
func TestHTTPClientLookups(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/tests/vertical-jump": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, models.FitnessTest{ID: "vertical-jump", Name: "Vertical Jump"})
		},
		"/api/v1/athletes/2": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, models.Athlete{ID: "2", Name: "Arjun Singh"})
		},
	})
	defer ts.Close()
	c := NewHTTPClient(ts.URL)
	ctx := context.Background()

	ft, err := c.Test(ctx, "vertical-jump")
	if err != nil || ft.Name != "Vertical Jump" {
		t.Errorf("Test = %+v, %v", ft, err)
	}
	a, err := c.Athlete(ctx, "2")
	if err != nil || a.Name != "Arjun Singh" {
		t.Errorf("Athlete = %+v, %v", a, err)
	}
	if _, err := c.Athlete(ctx, "99"); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("missing athlete error = %v, want ErrNotFound", err)
	}
}

// TestHTTPClientLists verifies list endpoints decode their arrays.
func TestHTTPClientLists(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/tests": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, []models.FitnessTest{{ID: "pushup"}, {ID: "squat"}})
		},
		"/api/v1/opportunities": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, []models.Opportunity{{ID: "1", Type: models.OpportunityScholarship}})
		},
	})
	defer ts.Close()
	c := NewHTTPClient(ts.URL)

	tests, err := c.Tests(context.Background())
	if err != nil || len(tests) != 2 {
		t.Errorf("Tests = %+v, %v", tests, err)
	}
	opps, err := c.Opportunities(context.Background())
	if err != nil || len(opps) != 1 || opps[0].Type != models.OpportunityScholarship {
		t.Errorf("Opportunities = %+v, %v", opps, err)
	}
}

// TestHTTPClientHealth verifies health goes through the server proxy and
// proxy failures surface as errors.
func TestHTTPClientHealth(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/health": func(w http.ResponseWriter, r *http.Request) {
			if !healthy.Load() {
				w.WriteHeader(http.StatusInternalServerError)
				writeTestJSON(t, w, map[string]any{"success": false, "error": "dial tcp: refused"})
				return
			}
			writeTestJSON(t, w, map[string]string{"status": "healthy", "timestamp": "2026-10-19T12:00:00"})
		},
	})
	defer ts.Close()
	c := NewHTTPClient(ts.URL)

	h, err := c.Health(context.Background())
	if err != nil || !h.Healthy() {
		t.Errorf("Health = %+v, %v", h, err)
	}

	healthy.Store(false)
	if _, err := c.Health(context.Background()); err == nil {
		t.Error("expected error when proxy reports failure")
	}
}

// TestHTTPClientServerError verifies non-200 responses include status and body.
func TestHTTPClientServerError(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/tests": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"db down"}`, http.StatusInternalServerError)
		},
	})
	defer ts.Close()

	_, err := NewHTTPClient(ts.URL).Tests(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, catalog.ErrNotFound) {
		t.Error("500 mapped to ErrNotFound")
	}
}
