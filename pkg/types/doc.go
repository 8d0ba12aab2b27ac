// Package types provides shared type definitions for the vgsearch engine.
//
// This package defines the domain types used across the search pipeline:
// game entities, category tiers, search intents, search contexts, and
// scored results.
//
// # Core Types
//
// GameEntity is the normalized representation of a catalog entry. Entries
// arrive from two heterogeneous sources (the local SQLite store and the
// remote catalog service) and are normalized exactly once at ingestion:
//
//	game := &types.GameEntity{
//	    ID:        1020,
//	    Name:      "Super Mario Bros.",
//	    Category:  types.CategoryMain,
//	    Developer: "Nintendo",
//	    Publisher: "Nintendo",
//	}
//
// Category is a closed enum with an explicit Unknown variant. Every category
// resolves to exactly one priority tier via Category.Tier; Unknown maps to
// the lowest-confidence tier, never to a panic:
//
//	game.Category.Tier() // types.TierMain for CategoryMain
//
// # Search Context
//
// SearchContext captures one search invocation: the original query, its
// bounded expansion set, the detected intent, and result caps. It is created
// once per invocation and never mutated afterwards.
//
// # Scored Results
//
// ScoredResult pairs a GameEntity with its score breakdown. Results are
// created during scoring and discarded after final ordering; they are never
// persisted.
//
// # Validation
//
// Domain types implement Validate methods to guard data integrity at the
// component boundaries:
//
//	if err := result.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package types
