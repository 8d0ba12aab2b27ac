// Package query translates expanded query strings into source-specific
// descriptors: a single OR-combined substring predicate for the local
// store, and a structured category/sort/limit query for the remote catalog.
package query

import (
	"github.com/leroysdeath/vgsearch/pkg/types"
)

// Sort keys understood by the remote catalog.
const (
	SortTotalRatingDesc = "total_rating desc"
	SortFollowsDesc     = "follows desc"
)

// Per-descriptor result limits.
const (
	franchiseLimit = 100
	specificLimit  = 50
	localLimit     = 50
)

// browseIncludeCodes is the category inclusion set for franchise and
// browse-style searches. This set is a fixed contract with the catalog:
// it decides which content classes are eligible at all, before the
// protection filter runs.
var browseIncludeCodes = []int{
	types.CodeMainGame,
	types.CodeExpansion,
	types.CodeBundle,
	types.CodeStandaloneExpansion,
	types.CodeEpisode,
	types.CodeSeason,
	types.CodeRemake,
	types.CodeRemaster,
	types.CodeExpandedGame,
	types.CodePort,
	types.CodeUpdate,
}

// specificExcludeCodes is the category exclusion set for specific-title
// searches: mods, forks, and pure DLC/pack content never match a title
// lookup. Also a fixed contract.
var specificExcludeCodes = []int{
	types.CodeMod,
	types.CodeFork,
	types.CodeDLCAddon,
	types.CodePack,
}

// LocalQuery is a descriptor for the local store: one OR-combined
// substring predicate over name and summary, avoiding a round trip per
// term.
type LocalQuery struct {
	Terms []string // substring-matched against name OR summary
	Limit int
}

// RemoteQuery is a structured descriptor for the remote catalog.
type RemoteQuery struct {
	Term              string
	IncludeCategories []int // non-empty for browse-style searches
	ExcludeCategories []int // non-empty for specific-title searches
	Sort              string
	Limit             int
}

// Descriptor pairs the two source queries derived from one expanded query
// string. Priority is the index of the expanded query (0 = original).
type Descriptor struct {
	Query    string
	Priority int
	Local    LocalQuery
	Remote   RemoteQuery
}

// browseIntent reports whether the intent gets the broad category
// inclusion treatment.
func browseIntent(intent types.SearchIntent) bool {
	switch intent {
	case types.IntentFranchiseBrowse, types.IntentGenreDiscovery,
		types.IntentDeveloperSearch, types.IntentYearSearch,
		types.IntentPlatformSearch:
		return true
	default:
		return false
	}
}

// Build constructs one descriptor per expanded query in sctx, preserving
// expansion priority order.
func Build(sctx *types.SearchContext) []Descriptor {
	descriptors := make([]Descriptor, 0, len(sctx.Expanded))
	for i, q := range sctx.Expanded {
		descriptors = append(descriptors, Descriptor{
			Query:    q,
			Priority: i,
			Local: LocalQuery{
				Terms: []string{q},
				Limit: localLimit,
			},
			Remote: buildRemote(q, sctx.Intent),
		})
	}
	return descriptors
}

func buildRemote(q string, intent types.SearchIntent) RemoteQuery {
	if browseIntent(intent) {
		return RemoteQuery{
			Term:              q,
			IncludeCategories: browseIncludeCodes,
			Sort:              SortTotalRatingDesc,
			Limit:             franchiseLimit,
		}
	}
	return RemoteQuery{
		Term:              q,
		ExcludeCategories: specificExcludeCodes,
		Sort:              SortFollowsDesc,
		Limit:             specificLimit,
	}
}
