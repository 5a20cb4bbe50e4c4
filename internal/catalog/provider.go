// Package catalog serves the athlete-facing catalog: profiles, leaderboards,
// fitness tests, opportunities and conversations.
package catalog

import (
	"context"
	"errors"

	"github.com/claude/athletconnect/internal/models"
)

var (
	// ErrNotFound is returned when a lookup matches nothing.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials is returned by Login for an empty email or password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Leaderboard filter values that disable filtering.
const (
	AllSports  = "All Sports"
	AllRegions = "All Regions"
)

// Provider is the catalog data source used by the HTTP API and MCP server.
type Provider interface {
	Athlete(ctx context.Context, id string) (*models.Athlete, error)
	Athletes(ctx context.Context) ([]models.Athlete, error)
	Leaderboard(ctx context.Context, sport, region string) ([]models.Athlete, error)
	Opportunities(ctx context.Context) ([]models.Opportunity, error)
	ApplyOpportunity(ctx context.Context, id string) (*models.Opportunity, error)
	Tests(ctx context.Context) ([]models.FitnessTest, error)
	Test(ctx context.Context, id string) (*models.FitnessTest, error)
	Conversations(ctx context.Context) ([]models.Conversation, error)
	Login(ctx context.Context, email, password string) (*models.Athlete, error)
	RecordResult(ctx context.Context, athleteID string, result models.TestResult) error
}
