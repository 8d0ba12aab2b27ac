// Package mcp exposes the search coordinator over the Model Context
// Protocol so agent tooling can query the game catalog.
//
// Four tools are registered:
//
//   - search_games: run a coordinated search. Accepts the raw query plus
//     the consumer options (limit, fast_mode, bypass_cache, aggressive,
//     include_metrics) and returns the ranked results with their score
//     breakdown and the derived search context.
//
//   - get_search_status: report whether a search is active, the cache
//     entry count, the local store size, and the remaining remote quota.
//
//   - clear_search_cache: drop every cached search response. Intended
//     for external orchestration, e.g. after reseeding the store.
//
//   - seed_games: bulk-load entities into the local store. Invalid
//     entries are skipped, not fatal; the response reports how many rows
//     were written.
//
// All tool responses are JSON-formatted text content. Errors use JSON-RPC
// error codes: standard codes for invalid parameters and internal
// failures, server-specific codes (-32001 and below) for domain errors.
package mcp
