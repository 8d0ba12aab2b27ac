package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/leroysdeath/vgsearch/internal/coordinator"
	"github.com/leroysdeath/vgsearch/internal/localstore"
	"github.com/leroysdeath/vgsearch/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeSearchFailed  = -32001 // Every search source failed
	ErrorCodeStoreFailed   = -32002 // Local store operation failed
)

// handleSearchGames handles the search_games tool invocation
func (s *Server) handleSearchGames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	// Empty queries are a valid no-op search, not a parameter error: the
	// coordinator short-circuits them to an empty result list.
	query, ok := args["query"].(string)
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "query parameter is required", map[string]interface{}{
			"param":  "query",
			"reason": "missing or not a string",
		})
	}

	// limit 0 means "use the coordinator default".
	limit := getIntDefault(args, "limit", 0)
	if limit < 0 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be 0 (default) or between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	opts := types.SearchOptions{
		MaxResults:     limit,
		IncludeMetrics: getBoolDefault(args, "include_metrics", false),
		FastMode:       getBoolDefault(args, "fast_mode", false),
		BypassCache:    getBoolDefault(args, "bypass_cache", false),
		UseAggressive:  getBoolDefault(args, "aggressive", false),
	}

	resp, err := s.coordinator.Search(ctx, query, opts)
	if err != nil {
		return nil, newMCPError(ErrorCodeSearchFailed, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(formatSearchResponse(resp))), nil
}

// handleGetSearchStatus handles the get_search_status tool invocation
func (s *Server) handleGetSearchStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	count, err := s.store.CountGames(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeStoreFailed, "failed to count games", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"search_active": s.coordinator.IsSearchActive(),
		"cache_entries": s.coordinator.CacheLen(),
		"local_games":   count,
		"build_mode":    localstore.BuildMode,
	}
	if info := s.coordinator.ActiveSearchInfo(); info != nil {
		response["active_search"] = map[string]interface{}{
			"id":         info.ID,
			"source":     info.Source,
			"query":      info.Query,
			"started_at": info.StartedAt.Format(time.RFC3339),
		}
	}
	if s.remote != nil {
		response["remote_quota_remaining"] = s.remote.QuotaRemaining()
	} else {
		response["remote_enabled"] = false
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleClearSearchCache handles the clear_search_cache tool invocation
func (s *Server) handleClearSearchCache(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dropped := s.coordinator.CacheLen()
	s.coordinator.ClearCache()

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"cleared":         true,
		"entries_dropped": dropped,
	})), nil
}

// handleSeedGames handles the seed_games tool invocation
func (s *Server) handleSeedGames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	raw, ok := args["games"]
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "games parameter is required", map[string]interface{}{
			"param":  "games",
			"reason": "missing",
		})
	}

	games, err := decodeSeedGames(raw)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "malformed games array", map[string]interface{}{
			"error": err.Error(),
		})
	}

	written, err := s.store.BulkUpsert(ctx, games)
	if err != nil {
		return nil, newMCPError(ErrorCodeStoreFailed, "bulk upsert failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Cached responses may predate the freshly seeded rows.
	s.coordinator.ClearCache()

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"written": written,
		"skipped": len(games) - written,
	})), nil
}

// seedGame mirrors the seed_games item schema.
type seedGame struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Summary     string   `json:"summary"`
	Category    int      `json:"category"`
	Developer   string   `json:"developer"`
	Publisher   string   `json:"publisher"`
	Rating      *float64 `json:"rating"`
	RatingCount *int     `json:"rating_count"`
	Follows     *int     `json:"follows"`
	Hypes       *int     `json:"hypes"`
	Releases    []struct {
		Platform int    `json:"platform"`
		Status   int    `json:"status"`
		Date     *int64 `json:"date"`
	} `json:"releases"`
}

// decodeSeedGames converts the loosely-typed tool argument into entities
// via a JSON round trip.
func decodeSeedGames(raw interface{}) ([]*types.GameEntity, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var seeds []seedGame
	if err := json.Unmarshal(data, &seeds); err != nil {
		return nil, err
	}

	games := make([]*types.GameEntity, 0, len(seeds))
	for _, sg := range seeds {
		g := &types.GameEntity{
			ID:          sg.ID,
			Name:        sg.Name,
			Slug:        sg.Slug,
			Summary:     sg.Summary,
			Category:    types.CategoryFromCode(sg.Category),
			Developer:   sg.Developer,
			Publisher:   sg.Publisher,
			Rating:      sg.Rating,
			RatingCount: sg.RatingCount,
			Follows:     sg.Follows,
			Hypes:       sg.Hypes,
		}
		for _, rel := range sg.Releases {
			record := types.ReleaseRecord{
				PlatformID: rel.Platform,
				Status:     types.StatusFromCode(rel.Status),
			}
			if rel.Date != nil {
				ts := time.Unix(*rel.Date, 0).UTC()
				record.Date = &ts
			}
			g.Releases = append(g.Releases, record)
		}
		games = append(games, g)
	}
	return games, nil
}

// formatSearchResponse shapes a coordinator response for tool output.
func formatSearchResponse(resp *coordinator.Response) map[string]interface{} {
	results := make([]map[string]interface{}, 0, len(resp.Results))
	for _, r := range resp.Results {
		entry := map[string]interface{}{
			"id":       r.Game.ID,
			"name":     r.Game.Name,
			"slug":     r.Game.Slug,
			"category": r.Game.Category.String(),
			"source":   string(r.Source),
			"score": map[string]interface{}{
				"total":     r.TotalScore,
				"relevance": r.RelevanceScore,
				"quality":   r.QualityScore,
				"interest":  r.InterestScore,
				"recency":   r.RecencyBonus,
				"franchise": r.FranchiseBonus,
			},
		}
		if r.Game.Rating != nil {
			entry["rating"] = *r.Game.Rating
		}
		results = append(results, entry)
	}

	response := map[string]interface{}{
		"results": results,
		"context": map[string]interface{}{
			"query":    resp.Context.Query,
			"intent":   string(resp.Context.Intent),
			"expanded": resp.Context.Expanded,
		},
	}
	if resp.Metrics != nil {
		response["metrics"] = map[string]interface{}{
			"expanded_queries": resp.Metrics.ExpandedQueries,
			"local_hits":       resp.Metrics.LocalHits,
			"remote_hits":      resp.Metrics.RemoteHits,
			"merged":           resp.Metrics.Merged,
			"filtered":         resp.Metrics.Filtered,
			"source_failures":  resp.Metrics.SourceFailures,
			"cache_hit":        resp.Metrics.CacheHit,
			"duration_ms":      resp.Metrics.Duration.Milliseconds(),
		}
	}
	return response
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}
