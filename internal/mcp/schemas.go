package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// searchGamesTool returns the tool definition for search_games
func searchGamesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_games",
		Description: "Search the game catalog with a free-text query and get ranked, deduplicated results",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Free-text search query. Empty or single-character queries return an empty result list.",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100, 0 for the default)",
					"default":     50,
					"minimum":     1,
					"maximum":     100,
				},
				"fast_mode": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, skip the remote catalog and search the local store only",
					"default":     false,
				},
				"bypass_cache": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, force a fresh search instead of returning a cached response",
					"default":     false,
				},
				"aggressive": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, widen query expansion (larger numeral window, extended aliases)",
					"default":     false,
				},
				"include_metrics": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, include per-search counters in the response",
					"default":     false,
				},
			},
			Required: []string{"query"},
		},
	}
}

// getSearchStatusTool returns the tool definition for get_search_status
func getSearchStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_search_status",
		Description: "Report the active search, cache size, local store size, and remaining remote quota",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// clearSearchCacheTool returns the tool definition for clear_search_cache
func clearSearchCacheTool() mcp.Tool {
	return mcp.Tool{
		Name:        "clear_search_cache",
		Description: "Drop every cached search response",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// seedGamesTool returns the tool definition for seed_games
func seedGamesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "seed_games",
		Description: "Bulk-load game entities into the local store",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"games": map[string]interface{}{
					"type":        "array",
					"description": "Game entities to upsert. Invalid entries are skipped.",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"id":           map[string]interface{}{"type": "integer"},
							"name":         map[string]interface{}{"type": "string"},
							"slug":         map[string]interface{}{"type": "string"},
							"summary":      map[string]interface{}{"type": "string"},
							"category":     map[string]interface{}{"type": "integer", "description": "Catalog category code (0 = main game)"},
							"developer":    map[string]interface{}{"type": "string"},
							"publisher":    map[string]interface{}{"type": "string"},
							"rating":       map[string]interface{}{"type": "number"},
							"rating_count": map[string]interface{}{"type": "integer"},
							"follows":      map[string]interface{}{"type": "integer"},
							"hypes":        map[string]interface{}{"type": "integer"},
							"releases": map[string]interface{}{
								"type": "array",
								"items": map[string]interface{}{
									"type": "object",
									"properties": map[string]interface{}{
										"platform": map[string]interface{}{"type": "integer"},
										"status":   map[string]interface{}{"type": "integer"},
										"date":     map[string]interface{}{"type": "integer", "description": "Unix seconds"},
									},
								},
							},
						},
						"required": []string{"id", "name"},
					},
				},
			},
			Required: []string{"games"},
		},
	}
}
