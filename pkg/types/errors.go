package types

import "errors"

// Domain errors for type validation
var (
	// Game entity errors
	ErrInvalidGameID = errors.New("invalid game ID")
	ErrEmptyGameName = errors.New("game name cannot be empty")
	ErrInvalidRating = errors.New("rating must be between 0 and 100")

	// Scored result errors
	ErrMissingGame      = errors.New("scored result requires a game")
	ErrInvalidBatchRank = errors.New("batch rank must be >= 0")
	ErrNegativeScore    = errors.New("total score must be >= 0")
)
