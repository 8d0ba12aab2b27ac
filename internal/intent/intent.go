// Package intent classifies free-text queries into search intents from
// lexical cues alone. Classification is a pure function: no I/O, no state,
// deterministic for identical input.
package intent

import (
	"regexp"
	"strings"

	"github.com/leroysdeath/vgsearch/pkg/types"
)

// Word-count threshold above which a query reads as a specific title
// rather than a franchise browse.
const specificTitleWordCount = 3

var yearPattern = regexp.MustCompile(`\b(19[7-9]\d|20\d{2})\b`)

// recencyWords trigger year-style searches without an explicit year.
var recencyWords = map[string]bool{
	"new":      true,
	"latest":   true,
	"upcoming": true,
	"recent":   true,
}

// platformWords is the fixed platform vocabulary.
var platformWords = map[string]bool{
	"ps4": true, "ps5": true, "playstation": true,
	"xbox": true, "switch": true, "wii": true,
	"pc": true, "steam": true, "3ds": true, "vita": true,
	"gamecube": true, "dreamcast": true,
	"exclusive": true, "exclusives": true,
}

// genreWords is the fixed genre vocabulary.
var genreWords = map[string]bool{
	"rpg": true, "jrpg": true, "shooter": true, "fps": true,
	"platformer": true, "roguelike": true, "metroidvania": true,
	"puzzle": true, "racing": true, "fighting": true, "horror": true,
	"strategy": true, "simulation": true, "adventure": true,
	"sandbox": true, "survival": true, "stealth": true,
	"action": true, "indie": true, "mmo": true, "moba": true,
}

// knownDevelopers holds developer/publisher names recognized for
// developer-intent queries. Multi-word names are stored space-joined.
var knownDevelopers = map[string]bool{
	"nintendo": true, "capcom": true, "konami": true, "sega": true,
	"square enix": true, "squaresoft": true, "fromsoftware": true,
	"bethesda": true, "valve": true, "blizzard": true, "atlus": true,
	"rockstar": true, "ubisoft": true, "bioware": true, "naughty dog": true,
	"insomniac": true, "platinum games": true, "game freak": true,
	"rare": true, "bungie": true, "id software": true,
}

// knownFranchises holds short franchise tokens eligible for browse intent.
var knownFranchises = map[string]bool{
	"mario": true, "zelda": true, "pokemon": true, "metroid": true,
	"kirby": true, "sonic": true, "halo": true, "doom": true,
	"fallout": true, "elder scrolls": true, "final fantasy": true,
	"dragon quest": true, "persona": true, "mega man": true,
	"castlevania": true, "resident evil": true, "silent hill": true,
	"street fighter": true, "tekken": true, "gta": true, "ff": true,
	"metal gear": true, "dark souls": true, "god of war": true,
	"uncharted": true, "kingdom hearts": true, "monster hunter": true,
}

// Classify labels a trimmed query with one search intent. Rules apply in
// priority order; ambiguity falls back to a deterministic default instead
// of an error.
func Classify(query string) types.SearchIntent {
	q := strings.ToLower(strings.TrimSpace(query))
	words := strings.Fields(q)
	if len(words) == 0 {
		return types.IntentFranchiseBrowse
	}

	// (a) explicit year or recency token
	if yearPattern.MatchString(q) {
		return types.IntentYearSearch
	}
	for _, w := range words {
		if recencyWords[w] {
			return types.IntentYearSearch
		}
	}

	// (b) platform token
	for _, w := range words {
		if platformWords[w] {
			return types.IntentPlatformSearch
		}
	}

	// (c) developer name followed by "games"
	if developerPrefix(words) {
		return types.IntentDeveloperSearch
	}

	// (d) genre vocabulary: two genre words, or one plus "games"
	genreHits := 0
	hasGamesWord := false
	for _, w := range words {
		if genreWords[w] {
			genreHits++
		}
		if w == "games" || w == "game" {
			hasGamesWord = true
		}
	}
	if genreHits >= 2 || (genreHits == 1 && hasGamesWord) {
		return types.IntentGenreDiscovery
	}

	// (e) long queries and subtitled titles read as specific games
	if len(words) > specificTitleWordCount || strings.ContainsAny(q, ":") || strings.Contains(q, " - ") {
		return types.IntentSpecificGame
	}

	// (f) short query matching a known franchise
	if knownFranchises[q] {
		return types.IntentFranchiseBrowse
	}
	if len(words) == 2 && knownFranchises[words[0]] {
		// "mario kart", "zelda botw": franchise token plus qualifier
		return types.IntentSpecificGame
	}

	// (g) default: browse for short queries, specific for longer ones
	if len(words) <= 2 {
		return types.IntentFranchiseBrowse
	}
	return types.IntentSpecificGame
}

// developerPrefix reports whether the query is a known developer name
// followed by "games" (e.g. "nintendo games", "square enix games").
func developerPrefix(words []string) bool {
	n := len(words)
	if n < 2 || (words[n-1] != "games" && words[n-1] != "game") {
		return false
	}
	return knownDevelopers[strings.Join(words[:n-1], " ")]
}

// QualityThreshold returns the intent-dependent minimum quality score used
// by the scorer. Browse-style intents tolerate lower-quality entries than
// discovery intents.
func QualityThreshold(intent types.SearchIntent) float64 {
	switch intent {
	case types.IntentGenreDiscovery, types.IntentYearSearch:
		return 0.4
	case types.IntentFranchiseBrowse:
		return 0.1
	default:
		return 0.2
	}
}
