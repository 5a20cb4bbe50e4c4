package mcp

import (
	"context"

	"github.com/claude/athletconnect/internal/catalog"
	"github.com/claude/athletconnect/internal/models"
	"github.com/claude/athletconnect/internal/scoring"
)

// DataSource is the read-only catalog view used by MCP tools. Any
// catalog.Provider (local) and HTTPClient (remote via REST API) satisfy it.
type DataSource interface {
	Tests(ctx context.Context) ([]models.FitnessTest, error)
	Test(ctx context.Context, id string) (*models.FitnessTest, error)
	Leaderboard(ctx context.Context, sport, region string) ([]models.Athlete, error)
	Athlete(ctx context.Context, id string) (*models.Athlete, error)
	Opportunities(ctx context.Context) ([]models.Opportunity, error)
}

// HealthChecker reports the scoring backend's health.
type HealthChecker interface {
	Health(ctx context.Context) (*scoring.HealthStatus, error)
}

// Compile-time checks.
var (
	_ DataSource    = catalog.Provider(nil)
	_ DataSource    = (*HTTPClient)(nil)
	_ HealthChecker = (*scoring.Client)(nil)
	_ HealthChecker = (*HTTPClient)(nil)
)
