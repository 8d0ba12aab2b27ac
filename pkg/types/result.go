package types

// ResultSource tags which backend produced an entity.
type ResultSource string

const (
	SourceLocal  ResultSource = "local-store"
	SourceRemote ResultSource = "remote-catalog"
	SourceHybrid ResultSource = "hybrid" // present in both backends
)

// ScoredResult pairs a game with its score breakdown for one search.
// Results live only for the duration of the search; they are never
// persisted.
type ScoredResult struct {
	Game   *GameEntity
	Source ResultSource

	// BatchRank is the priority index of the expanded query that produced
	// this entity (0 = original query). Merging preserves it so scoring
	// can favor exact-query hits over expansion hits.
	BatchRank int

	// Score breakdown. TotalScore is the intent-weighted sum of the rest.
	RelevanceScore float64
	QualityScore   float64
	InterestScore  float64
	RecencyBonus   float64
	FranchiseBonus float64
	TotalScore     float64
}

// Validate checks the scored result's invariants.
func (r *ScoredResult) Validate() error {
	if r.Game == nil {
		return ErrMissingGame
	}
	if r.BatchRank < 0 {
		return ErrInvalidBatchRank
	}
	if r.TotalScore < 0 {
		return ErrNegativeScore
	}
	return nil
}
