// Package ranking imposes the coarse category-tier ordering on scored
// results. A lower-tier entity never outranks a higher-tier one, no
// matter how well it scored; the fine score only orders within a tier.
package ranking

import (
	"sort"

	"github.com/leroysdeath/vgsearch/pkg/types"
)

// Rank sorts results in place: tier first, then total score descending,
// then batch rank ascending so exact-query hits win ties. The sort is
// stable, so equal entries keep their merge order and repeated runs on
// identical input produce identical output.
func Rank(results []*types.ScoredResult) {
	sort.SliceStable(results, func(i, j int) bool {
		ti, tj := results[i].Game.Category.Tier(), results[j].Game.Category.Tier()
		if ti != tj {
			return ti < tj
		}
		if results[i].TotalScore != results[j].TotalScore {
			return results[i].TotalScore > results[j].TotalScore
		}
		return results[i].BatchRank < results[j].BatchRank
	})
}

// Truncate caps the ranked list, keeping the head.
func Truncate(results []*types.ScoredResult, max int) []*types.ScoredResult {
	if max <= 0 || len(results) <= max {
		return results
	}
	return results[:max]
}
