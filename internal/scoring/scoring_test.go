package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leroysdeath/vgsearch/pkg/types"
)

func ptr[T any](v T) *T { return &v }

func newScorer() *Scorer { return New(DefaultParams()) }

func TestRelevanceLadder(t *testing.T) {
	s := newScorer()

	exact := s.Relevance("Chrono Trigger", "chrono trigger")
	prefix := s.Relevance("Chrono Trigger", "chrono")
	substring := s.Relevance("Chrono Trigger", "trigger")
	tokens := s.Relevance("Chrono Trigger", "trigger chrono")
	none := s.Relevance("Chrono Trigger", "stardew")

	assert.Greater(t, exact, prefix)
	assert.Greater(t, prefix, substring)
	assert.Greater(t, substring, tokens)
	assert.Greater(t, tokens, 0.0)
	assert.Zero(t, none)
}

func TestAuthorityTierBoundaries(t *testing.T) {
	s := newScorer()

	tests := []struct {
		count int
		tier  float64
	}{
		{1500, 1.0},
		{1000, 1.0},
		{999, 0.8},
		{500, 0.8},
		{499, 0.55},
		{100, 0.55},
		{99, 0.35},
		{20, 0.35},
		{19, 0.2},
		{0, 0.2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.tier, s.AuthorityTier(ptr(tt.count)), "count %d", tt.count)
	}
	assert.Equal(t, 0.2, s.AuthorityTier(nil))
}

// A high rating on a tiny sample must not outrank a slightly lower
// rating on a large sample.
func TestQualityTierOverridesRawRating(t *testing.T) {
	s := newScorer()

	smallSample := s.Quality(ptr(95.0), ptr(25))
	largeSample := s.Quality(ptr(85.0), ptr(1500))

	assert.Greater(t, largeSample, smallSample)
}

func TestQualityMissingMetrics(t *testing.T) {
	s := newScorer()

	baseline := s.Quality(nil, nil)
	assert.InDelta(t, 0.5*0.2, baseline, 1e-9)
	assert.False(t, baseline != baseline, "quality must never be NaN")
}

func TestInterestBounded(t *testing.T) {
	s := newScorer()

	assert.Zero(t, s.Interest(nil, nil))
	assert.Zero(t, s.Interest(ptr(0), ptr(0)))

	small := s.Interest(ptr(50), nil)
	large := s.Interest(ptr(500000), ptr(100000))
	assert.Greater(t, small, 0.0)
	assert.Greater(t, large, small)
	assert.LessOrEqual(t, large, 1.0)
}

func TestFranchiseBonusLadder(t *testing.T) {
	s := newScorer()

	numbered := s.FranchiseBonus("Super Mario Bros 3", "mario", types.IntentFranchiseBrowse)
	roman := s.FranchiseBonus("Final Fantasy VII", "final fantasy", types.IntentFranchiseBrowse)
	subtitled := s.FranchiseBonus("Mario Kart: Double Dash", "mario", types.IntentFranchiseBrowse)
	prefixed := s.FranchiseBonus("Mario Party", "mario", types.IntentFranchiseBrowse)
	contained := s.FranchiseBonus("Super Mario World", "mario", types.IntentFranchiseBrowse)

	assert.Equal(t, numbered, roman)
	assert.Greater(t, numbered, subtitled)
	assert.Greater(t, subtitled, prefixed)
	assert.Greater(t, prefixed, contained)
	assert.Greater(t, contained, 0.0)
}

func TestFranchiseBonusOnlyForFranchiseIntent(t *testing.T) {
	s := newScorer()

	assert.Zero(t, s.FranchiseBonus("Super Mario Bros 3", "mario", types.IntentSpecificGame))
	assert.Zero(t, s.FranchiseBonus("Super Mario Bros 3", "mario", types.IntentGenreDiscovery))
	assert.Zero(t, s.FranchiseBonus("Stardew Valley", "mario", types.IntentFranchiseBrowse))
}

func TestRecencyBonus(t *testing.T) {
	s := newScorer()

	recent := time.Now().AddDate(-1, 0, 0)
	old := time.Now().AddDate(-25, 0, 0)

	newGame := &types.GameEntity{
		ID: 1, Name: "New Release",
		Releases: []types.ReleaseRecord{{PlatformID: 6, Status: types.StatusReleased, Date: &recent}},
	}
	oldGame := &types.GameEntity{
		ID: 2, Name: "Old Classic",
		Releases: []types.ReleaseRecord{{PlatformID: 6, Status: types.StatusReleased, Date: &old}},
	}
	undated := &types.GameEntity{ID: 3, Name: "Undated"}

	assert.Greater(t, s.RecencyBonus(newGame, types.IntentGenreDiscovery), 0.0)
	assert.Zero(t, s.RecencyBonus(oldGame, types.IntentGenreDiscovery))
	assert.Zero(t, s.RecencyBonus(undated, types.IntentYearSearch))
	assert.Zero(t, s.RecencyBonus(newGame, types.IntentFranchiseBrowse))
	assert.Zero(t, s.RecencyBonus(newGame, types.IntentSpecificGame))
}

func TestScoreDropsIrrelevantSpecificGame(t *testing.T) {
	s := newScorer()
	sctx := &types.SearchContext{
		Query:            "chrono trigger",
		Intent:           types.IntentSpecificGame,
		QualityThreshold: 0.2,
	}

	r := &types.ScoredResult{
		Game:   &types.GameEntity{ID: 1, Name: "Stardew Valley"},
		Source: types.SourceRemote,
	}
	assert.False(t, s.Score(r, sctx))
}

func TestScoreKeepsIrrelevantForBrowseIntents(t *testing.T) {
	s := newScorer()
	sctx := &types.SearchContext{
		Query:            "mario",
		Intent:           types.IntentFranchiseBrowse,
		QualityThreshold: 0.1,
	}

	// No textual match, but strong metrics: survives for browse intents.
	r := &types.ScoredResult{
		Game: &types.GameEntity{
			ID: 1, Name: "Luigi's Mansion",
			Rating: ptr(85.0), RatingCount: ptr(2000), Follows: ptr(900),
		},
		Source: types.SourceRemote,
	}
	require.True(t, s.Score(r, sctx))
	assert.Zero(t, r.RelevanceScore)
	assert.Greater(t, r.TotalScore, 0.1)
}

func TestScoreBatchRankPenalty(t *testing.T) {
	s := newScorer()
	sctx := &types.SearchContext{
		Query:            "mario",
		Intent:           types.IntentFranchiseBrowse,
		QualityThreshold: 0.1,
	}

	mk := func(rank int) *types.ScoredResult {
		return &types.ScoredResult{
			Game: &types.GameEntity{
				ID: 1, Name: "Mario Party",
				Rating: ptr(80.0), RatingCount: ptr(1200),
			},
			Source:    types.SourceRemote,
			BatchRank: rank,
		}
	}
	direct := mk(0)
	expanded := mk(3)
	require.True(t, s.Score(direct, sctx))
	require.True(t, s.Score(expanded, sctx))

	assert.Greater(t, direct.TotalScore, expanded.TotalScore)
}

func TestScoreQualityThresholdPrunes(t *testing.T) {
	s := newScorer()
	sctx := &types.SearchContext{
		Query:            "roguelike games",
		Intent:           types.IntentGenreDiscovery,
		QualityThreshold: 0.4,
	}

	weak := &types.ScoredResult{
		Game:   &types.GameEntity{ID: 1, Name: "Some Roguelike"},
		Source: types.SourceLocal,
	}
	strong := &types.ScoredResult{
		Game: &types.GameEntity{
			ID: 2, Name: "Hades Roguelike",
			Rating: ptr(93.0), RatingCount: ptr(3000), Follows: ptr(5000),
		},
		Source: types.SourceRemote,
	}
	assert.False(t, s.Score(weak, sctx))
	assert.True(t, s.Score(strong, sctx))
}

func TestScoreNeverNegative(t *testing.T) {
	s := newScorer()
	sctx := &types.SearchContext{
		Query:            "mario",
		Intent:           types.IntentFranchiseBrowse,
		QualityThreshold: 0,
	}
	r := &types.ScoredResult{
		Game:      &types.GameEntity{ID: 1, Name: "Mario Party"},
		Source:    types.SourceLocal,
		BatchRank: 50,
	}
	require.True(t, s.Score(r, sctx))
	assert.GreaterOrEqual(t, r.TotalScore, 0.0)
	require.NoError(t, r.Validate())
}
