// Package scoring computes the composite relevance/quality score for
// entities that survive the content filter. Every factor is an
// independently callable pure function so tests exercise them directly.
//
// The numeric boundaries (authority tiers, bonus magnitudes) are
// empirically tuned constants carried in Params rather than derived;
// regression tests pin the orderings that matter.
package scoring

import (
	"math"
	"strings"
	"time"

	"github.com/leroysdeath/vgsearch/pkg/types"
)

// Params holds the tuned scoring constants.
type Params struct {
	// Rating-count boundaries for the authority tiers.
	EliteCount int
	HighCount  int
	MidCount   int
	LowCount   int

	// Tier multipliers. The gaps are deliberately uneven so a
	// high-rating low-sample entity cannot outrank a slightly lower
	// rated entity with a large sample.
	EliteScore   float64
	HighScore    float64
	MidScore     float64
	LowScore     float64
	MinimalScore float64

	// Relevance ladder.
	ExactRelevance     float64
	PrefixRelevance    float64
	SubstringRelevance float64
	TokenRelevance     float64

	// Rating assumed when the entity carries no rating at all.
	BaselineRating float64

	// Interest saturates at 10^InterestSaturation combined follows+hypes.
	InterestSaturation float64

	// Franchise-entry bonus ladder, applied only for franchise queries.
	NumberedBonus  float64
	SubtitledBonus float64
	PrefixBonus    float64
	ContainsBonus  float64

	// Recency bonus, applied only for discovery-style intents.
	MaxRecencyBonus     float64
	RecencyHorizonYears float64

	// Flat penalty per step of batch rank, so exact-query hits stay
	// ahead of expansion hits when everything else ties.
	BatchPenalty float64
}

// DefaultParams returns the tuned production constants.
func DefaultParams() Params {
	return Params{
		EliteCount: 1000,
		HighCount:  500,
		MidCount:   100,
		LowCount:   20,

		EliteScore:   1.0,
		HighScore:    0.8,
		MidScore:     0.55,
		LowScore:     0.35,
		MinimalScore: 0.2,

		ExactRelevance:     1.0,
		PrefixRelevance:    0.75,
		SubstringRelevance: 0.5,
		TokenRelevance:     0.35,

		BaselineRating:     50,
		InterestSaturation: 4,

		NumberedBonus:  0.25,
		SubtitledBonus: 0.18,
		PrefixBonus:    0.12,
		ContainsBonus:  0.06,

		MaxRecencyBonus:     0.3,
		RecencyHorizonYears: 10,

		BatchPenalty: 0.02,
	}
}

// weights splits the intent-weighted sum across the three core factors.
type weights struct {
	relevance float64
	quality   float64
	interest  float64
}

func weightsFor(intent types.SearchIntent) weights {
	switch intent {
	case types.IntentSpecificGame:
		return weights{relevance: 0.5, quality: 0.3, interest: 0.2}
	case types.IntentFranchiseBrowse:
		return weights{relevance: 0.3, quality: 0.45, interest: 0.25}
	case types.IntentGenreDiscovery, types.IntentYearSearch:
		return weights{relevance: 0.2, quality: 0.5, interest: 0.3}
	default:
		return weights{relevance: 0.35, quality: 0.4, interest: 0.25}
	}
}

// Scorer scores entities against a SearchContext.
type Scorer struct {
	params Params
}

// New creates a Scorer. Zero-value params fall back to DefaultParams.
func New(params Params) *Scorer {
	if params.EliteCount == 0 {
		params = DefaultParams()
	}
	return &Scorer{params: params}
}

// Score fills in the score breakdown for one merged result. The second
// return is false when the entity should be dropped: relevance alone
// gates only for SPECIFIC_GAME intent, and the context's quality
// threshold prunes the long tail for every intent.
func (s *Scorer) Score(r *types.ScoredResult, sctx *types.SearchContext) bool {
	if r == nil || r.Game == nil || sctx == nil {
		return false
	}
	g := r.Game

	// An entity produced by an expanded query is judged against that
	// query too: a sister release matches its own expansion term, not the
	// literal input, and must not be gated out for it. The batch penalty
	// below still prefers literal hits.
	r.RelevanceScore = s.Relevance(g.Name, sctx.Query)
	if r.BatchRank > 0 && r.BatchRank < len(sctx.Expanded) {
		r.RelevanceScore = math.Max(r.RelevanceScore, s.Relevance(g.Name, sctx.Expanded[r.BatchRank]))
	}
	if r.RelevanceScore == 0 && sctx.Intent == types.IntentSpecificGame {
		return false
	}

	r.QualityScore = s.Quality(g.Rating, g.RatingCount)
	r.InterestScore = s.Interest(g.Follows, g.Hypes)
	r.FranchiseBonus = s.FranchiseBonus(g.Name, sctx.Query, sctx.Intent)
	r.RecencyBonus = s.RecencyBonus(g, sctx.Intent)

	w := weightsFor(sctx.Intent)
	total := w.relevance*r.RelevanceScore +
		w.quality*r.QualityScore +
		w.interest*r.InterestScore +
		r.FranchiseBonus +
		r.RecencyBonus -
		float64(r.BatchRank)*s.params.BatchPenalty
	r.TotalScore = math.Max(0, total)

	return r.TotalScore >= sctx.QualityThreshold
}

// Relevance maps the query/name text relationship onto the ladder:
// exact > prefix > substring > all-tokens-present > zero.
func (s *Scorer) Relevance(name, query string) float64 {
	n := types.NormalizeQuery(name)
	q := types.NormalizeQuery(query)
	if n == "" || q == "" {
		return 0
	}
	switch {
	case n == q:
		return s.params.ExactRelevance
	case strings.HasPrefix(n, q):
		return s.params.PrefixRelevance
	case strings.Contains(n, q):
		return s.params.SubstringRelevance
	}
	for _, tok := range strings.Fields(q) {
		if !strings.Contains(n, tok) {
			return 0
		}
	}
	return s.params.TokenRelevance
}

// Quality combines the aggregate rating with the rating-count authority
// tier. Missing metrics degrade to the baseline rating and minimal tier.
func (s *Scorer) Quality(rating *float64, ratingCount *int) float64 {
	r := s.params.BaselineRating
	if rating != nil {
		r = math.Min(math.Max(*rating, 0), 100)
	}
	return (r / 100) * s.AuthorityTier(ratingCount)
}

// AuthorityTier maps a rating count onto the discrete tier multiplier.
func (s *Scorer) AuthorityTier(ratingCount *int) float64 {
	if ratingCount == nil {
		return s.params.MinimalScore
	}
	switch c := *ratingCount; {
	case c >= s.params.EliteCount:
		return s.params.EliteScore
	case c >= s.params.HighCount:
		return s.params.HighScore
	case c >= s.params.MidCount:
		return s.params.MidScore
	case c >= s.params.LowCount:
		return s.params.LowScore
	default:
		return s.params.MinimalScore
	}
}

// Interest is a saturating log of combined follows and hypes, bounded
// so audience buzz never dominates the authority term.
func (s *Scorer) Interest(follows, hypes *int) float64 {
	total := 0
	if follows != nil {
		total += *follows
	}
	if hypes != nil {
		total += *hypes
	}
	if total <= 0 {
		return 0
	}
	return math.Min(1, math.Log10(1+float64(total))/s.params.InterestSaturation)
}

// FranchiseBonus rewards canonical franchise entries when the query is a
// franchise browse: numbered entries over subtitled, subtitled over a
// plain prefix match, prefix over a mere substring hit.
func (s *Scorer) FranchiseBonus(name, query string, intent types.SearchIntent) float64 {
	if intent != types.IntentFranchiseBrowse {
		return 0
	}
	n := types.NormalizeQuery(name)
	q := types.NormalizeQuery(query)
	if q == "" || !strings.Contains(n, q) {
		return 0
	}
	switch {
	case endsWithNumeral(n):
		return s.params.NumberedBonus
	case strings.Contains(name, ":") || strings.Contains(name, " - "):
		return s.params.SubtitledBonus
	case strings.HasPrefix(n, q):
		return s.params.PrefixBonus
	default:
		return s.params.ContainsBonus
	}
}

// RecencyBonus rewards newer releases for discovery-style intents,
// decaying linearly to zero at the horizon.
func (s *Scorer) RecencyBonus(g *types.GameEntity, intent types.SearchIntent) float64 {
	if intent != types.IntentGenreDiscovery && intent != types.IntentYearSearch {
		return 0
	}
	released := g.FirstReleaseDate()
	if released.IsZero() {
		return 0
	}
	ageYears := yearsSince(released)
	if ageYears < 0 {
		ageYears = 0
	}
	if ageYears >= s.params.RecencyHorizonYears {
		return 0
	}
	return s.params.MaxRecencyBonus * (1 - ageYears/s.params.RecencyHorizonYears)
}

func yearsSince(t time.Time) float64 {
	return time.Since(t).Hours() / (24 * 365.25)
}

var romanNumeral = map[string]bool{
	"ii": true, "iii": true, "iv": true, "v": true,
	"vi": true, "vii": true, "viii": true, "ix": true,
	"x": true, "xi": true, "xii": true, "xiii": true,
	"xiv": true, "xv": true, "xvi": true,
}

func endsWithNumeral(name string) bool {
	fields := strings.Fields(name)
	if len(fields) < 2 {
		return false
	}
	last := fields[len(fields)-1]
	if romanNumeral[last] {
		return true
	}
	for _, r := range last {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
