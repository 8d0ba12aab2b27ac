package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/leroysdeath/vgsearch/internal/coordinator"
	"github.com/leroysdeath/vgsearch/internal/localstore"
	"github.com/leroysdeath/vgsearch/pkg/types"
)

type apiServer struct {
	coordinator *coordinator.Coordinator
	store       *localstore.SQLiteStore
	logger      *slog.Logger
}

type searchResultPayload struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Slug     string   `json:"slug,omitempty"`
	Category string   `json:"category"`
	Source   string   `json:"source"`
	Rating   *float64 `json:"rating,omitempty"`
	Score    float64  `json:"score"`
}

type searchPayload struct {
	Results []searchResultPayload `json:"results"`
	Context struct {
		Query    string   `json:"query"`
		Intent   string   `json:"intent"`
		Expanded []string `json:"expanded"`
	} `json:"context"`
	Metrics *types.SearchMetrics `json:"metrics,omitempty"`
}

func (a *apiServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts := types.SearchOptions{
		IncludeMetrics: q.Get("metrics") == "true",
		FastMode:       q.Get("fast") == "true",
		BypassCache:    q.Get("bypass_cache") == "true",
		UseAggressive:  q.Get("aggressive") == "true",
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 100 {
			writeError(w, http.StatusBadRequest, "limit must be an integer between 1 and 100")
			return
		}
		opts.MaxResults = limit
	}

	resp, err := a.coordinator.Search(r.Context(), q.Get("q"), opts)
	if err != nil {
		a.logger.Error("search failed", "query", q.Get("q"), "error", err)
		writeError(w, http.StatusBadGateway, "search failed")
		return
	}

	payload := searchPayload{Results: make([]searchResultPayload, 0, len(resp.Results))}
	payload.Context.Query = resp.Context.Query
	payload.Context.Intent = string(resp.Context.Intent)
	payload.Context.Expanded = resp.Context.Expanded
	payload.Metrics = resp.Metrics
	for _, res := range resp.Results {
		payload.Results = append(payload.Results, searchResultPayload{
			ID:       res.Game.ID,
			Name:     res.Game.Name,
			Slug:     res.Game.Slug,
			Category: res.Game.Category.String(),
			Source:   string(res.Source),
			Rating:   res.Game.Rating,
			Score:    res.TotalScore,
		})
	}
	writeJSON(w, http.StatusOK, payload)
}

func (a *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	count, err := a.store.CountGames(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count games")
		return
	}

	status := map[string]interface{}{
		"search_active": a.coordinator.IsSearchActive(),
		"cache_entries": a.coordinator.CacheLen(),
		"local_games":   count,
	}
	if info := a.coordinator.ActiveSearchInfo(); info != nil {
		status["active_search"] = map[string]interface{}{
			"id":         info.ID,
			"source":     info.Source,
			"query":      info.Query,
			"started_at": info.StartedAt.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, status)
}

func (a *apiServer) handleClearCache(w http.ResponseWriter, r *http.Request) {
	dropped := a.coordinator.CacheLen()
	a.coordinator.ClearCache()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"cleared":         true,
		"entries_dropped": dropped,
	})
}

type seedRelease struct {
	Platform int    `json:"platform"`
	Status   int    `json:"status"`
	Date     *int64 `json:"date"`
}

type seedGamePayload struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Slug        string        `json:"slug"`
	Summary     string        `json:"summary"`
	Category    int           `json:"category"`
	Developer   string        `json:"developer"`
	Publisher   string        `json:"publisher"`
	Rating      *float64      `json:"rating"`
	RatingCount *int          `json:"rating_count"`
	Follows     *int          `json:"follows"`
	Hypes       *int          `json:"hypes"`
	Releases    []seedRelease `json:"releases"`
}

func (a *apiServer) handleSeed(w http.ResponseWriter, r *http.Request) {
	var payload []seedGamePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "malformed games array")
		return
	}

	games := make([]*types.GameEntity, 0, len(payload))
	for _, sg := range payload {
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

	written, err := a.store.BulkUpsert(r.Context(), games)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "bulk upsert failed")
		return
	}

	// Seeded data invalidates anything cached.
	a.coordinator.ClearCache()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"written": written,
		"skipped": len(games) - written,
	})
}

func (a *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
