package mcp

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/athletconnect/internal/catalog"
	"github.com/claude/athletconnect/internal/models"
)

// --- Tool definitions ---

var toolListTests = mcp.NewTool("list_tests",
	mcp.WithDescription("List the guided fitness tests an athlete can record (push-ups, squats, vertical jump, sprint, agility, endurance)."),
)

var toolGetTest = mcp.NewTool("get_test",
	mcp.WithDescription("Get one fitness test with its duration, equipment and instructions."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Test id (e.g. pushup, vertical-jump, sprint)")),
)

var toolGetLeaderboard = mcp.NewTool("get_leaderboard",
	mcp.WithDescription("Athletes ranked by the sum of their test percentiles, highest first."),
	mcp.WithString("sport", mcp.Description("Exact sport to filter by (e.g. 'Basketball'). Omit or 'All Sports' for every sport.")),
	mcp.WithString("region", mcp.Description("Substring of the athlete location (e.g. 'India'). Omit or 'All Regions' for everywhere.")),
	mcp.WithNumber("limit", mcp.Description("Maximum number of athletes to return. Defaults to all.")),
)

var toolGetAthlete = mcp.NewTool("get_athlete",
	mcp.WithDescription("Get an athlete profile with personal bests, test results and achievements."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Athlete id")),
)

var toolListOpportunities = mcp.NewTool("list_opportunities",
	mcp.WithDescription("List scholarships, trials, camps and coaching programs."),
	mcp.WithString("type", mcp.Description("Filter by opportunity type"), mcp.Enum("scholarship", "trial", "camp", "coaching")),
	mcp.WithString("sport", mcp.Description("Filter by exact sport")),
)

var toolBackendHealth = mcp.NewTool("backend_health",
	mcp.WithDescription("Check whether the AI scoring backend used for fitness test capture is reachable and healthy."),
)

// --- Tool handlers ---

func (h *handlers) listTests(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tests, err := h.ds.Tests(ctx)
	if err != nil {
		h.log.Error("mcp list_tests", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(tests)
}

func (h *handlers) getTest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	t, err := h.ds.Test(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		return mcp.NewToolResultError("no test with id " + id), nil
	}
	if err != nil {
		h.log.Error("mcp get_test", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(t)
}

func (h *handlers) getLeaderboard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	athletes, err := h.ds.Leaderboard(ctx, req.GetString("sport", ""), req.GetString("region", ""))
	if err != nil {
		h.log.Error("mcp get_leaderboard", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if limit := req.GetInt("limit", 0); limit > 0 && limit < len(athletes) {
		athletes = athletes[:limit]
	}
	return jsonResult(leaderboardEntries(athletes))
}

func (h *handlers) getAthlete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	a, err := h.ds.Athlete(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		return mcp.NewToolResultError("no athlete with id " + id), nil
	}
	if err != nil {
		h.log.Error("mcp get_athlete", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(a)
}

func (h *handlers) listOpportunities(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opps, err := h.ds.Opportunities(ctx)
	if err != nil {
		h.log.Error("mcp list_opportunities", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	typ := models.OpportunityType(req.GetString("type", ""))
	sport := req.GetString("sport", "")
	filtered := make([]models.Opportunity, 0, len(opps))
	for _, o := range opps {
		if typ != "" && o.Type != typ {
			continue
		}
		if sport != "" && o.Sport != sport {
			continue
		}
		filtered = append(filtered, o)
	}
	return jsonResult(filtered)
}

func (h *handlers) backendHealth(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.health == nil {
		return mcp.NewToolResultError("no scoring backend configured"), nil
	}
	status, err := h.health.Health(ctx)
	if err != nil {
		return mcp.NewToolResultError("scoring backend unreachable: " + err.Error()), nil
	}
	return jsonResult(map[string]any{
		"healthy":   status.Healthy(),
		"status":    status.Status,
		"timestamp": status.Timestamp,
		"message":   status.Message,
	})
}

// leaderboardEntry is a compact ranking row; full profiles are one get_athlete away.
type leaderboardEntry struct {
	Rank            int     `json:"rank"`
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Sport           string  `json:"sport"`
	Location        string  `json:"location"`
	PercentileTotal float64 `json:"percentile_total"`
	Tests           int     `json:"tests"`
}

func leaderboardEntries(athletes []models.Athlete) []leaderboardEntry {
	out := make([]leaderboardEntry, 0, len(athletes))
	for i, a := range athletes {
		out = append(out, leaderboardEntry{
			Rank:            i + 1,
			ID:              a.ID,
			Name:            a.Name,
			Sport:           a.Sport,
			Location:        a.Location,
			PercentileTotal: a.PercentileTotal(),
			Tests:           len(a.TestResults),
		})
	}
	return out
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
