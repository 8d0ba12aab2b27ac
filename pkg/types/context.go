package types

import (
	"strings"
	"time"
)

// SearchIntent labels the inferred purpose behind a query. The intent
// selects scoring weights and the shape of the remote catalog query.
type SearchIntent string

const (
	IntentSpecificGame    SearchIntent = "specific_game"
	IntentFranchiseBrowse SearchIntent = "franchise_browse"
	IntentGenreDiscovery  SearchIntent = "genre_discovery"
	IntentDeveloperSearch SearchIntent = "developer_search"
	IntentYearSearch      SearchIntent = "year_search"
	IntentPlatformSearch  SearchIntent = "platform_search"
)

// MinQueryLength is the minimum query length (in runes) that triggers a
// search. Shorter queries short-circuit to an empty successful result.
const MinQueryLength = 2

// SearchContext captures one search invocation. It is created once per
// search and must not be mutated afterwards.
type SearchContext struct {
	// Query is the original, trimmed query string.
	Query string

	// Expanded holds the expanded query strings in priority order. It
	// always contains at least one element, and Expanded[0] == Query.
	Expanded []string

	Intent SearchIntent

	// QualityThreshold is the intent-dependent minimum quality score in
	// [0, 1] applied during scoring.
	QualityThreshold float64

	// MaxResults caps the final result list.
	MaxResults int
}

// NormalizeQuery lowercases, folds common diacritics, and collapses
// interior whitespace. The coordinator keys its cache by the normalized
// form so that "Mario " and "mario" share an entry, and text matching
// treats "Pokémon" and "pokemon" as the same word.
func NormalizeQuery(q string) string {
	return strings.Join(strings.Fields(FoldDiacritics(strings.ToLower(q))), " ")
}

var diacriticReplacer = strings.NewReplacer(
	"á", "a", "à", "a", "â", "a", "ä", "a", "ã", "a",
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"í", "i", "ì", "i", "î", "i", "ï", "i",
	"ó", "o", "ò", "o", "ô", "o", "ö", "o", "õ", "o",
	"ú", "u", "ù", "u", "û", "u", "ü", "u",
	"ñ", "n", "ç", "c",
)

// FoldDiacritics maps accented lowercase letters onto their ASCII base
// forms. Catalog names use them freely; queries almost never do.
func FoldDiacritics(s string) string {
	return diacriticReplacer.Replace(s)
}

// SearchOptions controls one coordinated search.
type SearchOptions struct {
	// MaxResults caps the result list. Zero selects the default.
	MaxResults int

	// IncludeMetrics attaches a metrics snapshot to the response.
	IncludeMetrics bool

	// FastMode skips the remote catalog and searches the local store only.
	FastMode bool

	// BypassCache forces a fresh search. The fresh result still replaces
	// the cached entry on completion.
	BypassCache bool

	// UseAggressive widens query expansion: a larger numeral window, the
	// extended alias table, and a higher expansion cap.
	UseAggressive bool
}

// SearchMetrics is a snapshot of per-search counters.
type SearchMetrics struct {
	ExpandedQueries int           `json:"expanded_queries"`
	LocalHits       int           `json:"local_hits"`
	RemoteHits      int           `json:"remote_hits"`
	Merged          int           `json:"merged"`
	Filtered        int           `json:"filtered"`
	SourceFailures  int           `json:"source_failures"`
	CacheHit        bool          `json:"cache_hit"`
	Duration        time.Duration `json:"duration_ns"`
}
