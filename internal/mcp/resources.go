package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) testsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	tests, err := h.ds.Tests(ctx)
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, tests)
}

func (h *handlers) leaderboardResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	athletes, err := h.ds.Leaderboard(ctx, "", "")
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, leaderboardEntries(athletes))
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
