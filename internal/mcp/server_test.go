package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(Config{DBPath: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func toolRequest(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultJSON(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &decoded))
	return decoded
}

func seedFixture(t *testing.T, s *Server) {
	t.Helper()
	result, err := s.handleSeedGames(context.Background(), toolRequest(map[string]interface{}{
		"games": []interface{}{
			map[string]interface{}{
				"id": 1, "name": "Super Mario Bros", "slug": "super-mario-bros",
				"category": 0, "developer": "Nintendo", "publisher": "Nintendo",
				"rating": 88.0, "rating_count": 2500,
			},
			map[string]interface{}{
				"id": 2, "name": "Mario Kart 8", "slug": "mario-kart-8",
				"category": 0, "developer": "Nintendo", "publisher": "Nintendo",
				"rating": 91.0, "rating_count": 3000,
			},
			map[string]interface{}{
				"id": 3, "name": "", "slug": "nameless",
			},
		},
	}))
	require.NoError(t, err)

	decoded := resultJSON(t, result)
	assert.Equal(t, float64(2), decoded["written"])
	assert.Equal(t, float64(1), decoded["skipped"])
}

func TestNewServerAssemblesPipeline(t *testing.T) {
	s := newTestServer(t)

	assert.NotNil(t, s.store)
	assert.NotNil(t, s.coordinator)
	assert.Nil(t, s.remote, "no credentials means no remote client")
}

func TestHandleSeedAndSearch(t *testing.T) {
	s := newTestServer(t)
	seedFixture(t, s)

	result, err := s.handleSearchGames(context.Background(), toolRequest(map[string]interface{}{
		"query":           "mario",
		"include_metrics": true,
	}))
	require.NoError(t, err)

	decoded := resultJSON(t, result)
	results := decoded["results"].([]interface{})
	assert.Len(t, results, 2)

	ctx := decoded["context"].(map[string]interface{})
	assert.Equal(t, "mario", ctx["query"])
	assert.Equal(t, "franchise_browse", ctx["intent"])

	require.Contains(t, decoded, "metrics")
	metrics := decoded["metrics"].(map[string]interface{})
	assert.Equal(t, false, metrics["cache_hit"])
}

func TestHandleSearchEmptyQueryIsNotAnError(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleSearchGames(context.Background(), toolRequest(map[string]interface{}{
		"query": "",
	}))
	require.NoError(t, err)

	decoded := resultJSON(t, result)
	assert.Empty(t, decoded["results"])
}

func TestHandleSearchMissingQuery(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleSearchGames(context.Background(), toolRequest(map[string]interface{}{}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestHandleSearchInvalidLimit(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleSearchGames(context.Background(), toolRequest(map[string]interface{}{
		"query": "mario",
		"limit": float64(500),
	}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestHandleSearchZeroLimitUsesDefault(t *testing.T) {
	s := newTestServer(t)
	seedFixture(t, s)

	result, err := s.handleSearchGames(context.Background(), toolRequest(map[string]interface{}{
		"query": "mario",
		"limit": float64(0),
	}))
	require.NoError(t, err)

	decoded := resultJSON(t, result)
	assert.NotEmpty(t, decoded["results"])

	_, err = s.handleSearchGames(context.Background(), toolRequest(map[string]interface{}{
		"query": "mario",
		"limit": float64(-1),
	}))
	require.Error(t, err)
}

func TestHandleGetSearchStatus(t *testing.T) {
	s := newTestServer(t)
	seedFixture(t, s)

	result, err := s.handleGetSearchStatus(context.Background(), toolRequest(nil))
	require.NoError(t, err)

	decoded := resultJSON(t, result)
	assert.Equal(t, false, decoded["search_active"])
	assert.Equal(t, float64(2), decoded["local_games"])
	assert.Equal(t, false, decoded["remote_enabled"])
}

func TestHandleClearSearchCache(t *testing.T) {
	s := newTestServer(t)
	seedFixture(t, s)

	_, err := s.handleSearchGames(context.Background(), toolRequest(map[string]interface{}{
		"query": "mario",
	}))
	require.NoError(t, err)

	result, err := s.handleClearSearchCache(context.Background(), toolRequest(nil))
	require.NoError(t, err)

	decoded := resultJSON(t, result)
	assert.Equal(t, true, decoded["cleared"])
	assert.Equal(t, float64(1), decoded["entries_dropped"])
	assert.Zero(t, s.coordinator.CacheLen())
}

func TestHandleSeedGamesMalformed(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleSeedGames(context.Background(), toolRequest(map[string]interface{}{
		"games": "not an array",
	}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}
