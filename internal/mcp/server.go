// Package mcp exposes the catalog and the scoring backend's health as an MCP
// tool and resource server.
package mcp

import (
	"log/slog"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
// health may be nil, in which case backend_health reports an error.
func New(ds DataSource, health HealthChecker, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("AthletConnect", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("AthletConnect sports network. Browse fitness tests, leaderboards, athlete profiles and opportunities, and check whether the AI scoring backend is up."),
	)

	h := &handlers{ds: ds, health: health, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListTests, Handler: h.listTests},
		server.ServerTool{Tool: toolGetTest, Handler: h.getTest},
		server.ServerTool{Tool: toolGetLeaderboard, Handler: h.getLeaderboard},
		server.ServerTool{Tool: toolGetAthlete, Handler: h.getAthlete},
		server.ServerTool{Tool: toolListOpportunities, Handler: h.listOpportunities},
		server.ServerTool{Tool: toolBackendHealth, Handler: h.backendHealth},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resTests, Handler: h.testsResource},
		server.ServerResource{Resource: resLeaderboard, Handler: h.leaderboardResource},
	)

	return s
}

// NewHTTPHandler serves s over streamable HTTP for mounting at /mcp.
func NewHTTPHandler(s *server.MCPServer) http.Handler {
	return server.NewStreamableHTTPServer(s)
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds     DataSource
	health HealthChecker
	log    *slog.Logger
}

// --- Resource definitions ---

var resTests = mcp.NewResource(
	"athletconnect://tests",
	"Fitness Tests",
	mcp.WithResourceDescription("Every guided fitness test with equipment and step-by-step instructions"),
	mcp.WithMIMEType("application/json"),
)

var resLeaderboard = mcp.NewResource(
	"athletconnect://leaderboard",
	"Leaderboard",
	mcp.WithResourceDescription("All athletes ranked by summed test percentiles"),
	mcp.WithMIMEType("application/json"),
)
