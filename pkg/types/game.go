package types

import (
	"strings"
	"time"
)

// Category classifies a catalog entry by its content type.
// The zero value is CategoryUnknown.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryMain
	CategoryDLCAddon
	CategoryExpansion
	CategoryBundle
	CategoryModFork
	CategoryEpisodic
	CategoryEnhanced // remake, remaster, expanded edition
	CategoryPortUpdate
)

// Remote catalog category codes. These codes form a fixed contract with the
// catalog service: they determine which content classes are eligible before
// any downstream filtering, so they must not drift.
const (
	CodeMainGame            = 0
	CodeDLCAddon            = 1
	CodeExpansion           = 2
	CodeBundle              = 3
	CodeStandaloneExpansion = 4
	CodeMod                 = 5
	CodeEpisode             = 6
	CodeSeason              = 7
	CodeRemake              = 8
	CodeRemaster            = 9
	CodeExpandedGame        = 10
	CodePort                = 11
	CodeFork                = 12
	CodePack                = 13
	CodeUpdate              = 14
)

// CategoryFromCode maps a remote catalog category code to a Category.
// Unrecognized codes map to CategoryUnknown.
func CategoryFromCode(code int) Category {
	switch code {
	case CodeMainGame:
		return CategoryMain
	case CodeDLCAddon, CodePack:
		return CategoryDLCAddon
	case CodeExpansion, CodeStandaloneExpansion:
		return CategoryExpansion
	case CodeBundle:
		return CategoryBundle
	case CodeMod, CodeFork:
		return CategoryModFork
	case CodeEpisode, CodeSeason:
		return CategoryEpisodic
	case CodeRemake, CodeRemaster, CodeExpandedGame:
		return CategoryEnhanced
	case CodePort, CodeUpdate:
		return CategoryPortUpdate
	default:
		return CategoryUnknown
	}
}

// String returns a stable lowercase name for the category.
func (c Category) String() string {
	switch c {
	case CategoryMain:
		return "main"
	case CategoryDLCAddon:
		return "dlc_addon"
	case CategoryExpansion:
		return "expansion"
	case CategoryBundle:
		return "bundle"
	case CategoryModFork:
		return "mod_fork"
	case CategoryEpisodic:
		return "episodic"
	case CategoryEnhanced:
		return "enhanced"
	case CategoryPortUpdate:
		return "port_update"
	default:
		return "unknown"
	}
}

// Tier is a coarse priority band imposed before fine-grained scoring.
// Lower values sort first; an entry from a lower-valued tier always
// outranks an entry from a higher-valued tier, regardless of score.
type Tier int

const (
	TierMain Tier = iota
	TierEnhanced
	TierPortUpdate
	TierAddOn // DLC and expansions share a band
	TierBundle
	TierModFork
	TierUnknown
)

// Tier resolves the category to exactly one priority tier. Unknown and
// unrecognized categories resolve to TierUnknown (lowest confidence, not
// a special-cased lowest priority).
func (c Category) Tier() Tier {
	switch c {
	case CategoryMain, CategoryEpisodic:
		return TierMain
	case CategoryEnhanced:
		return TierEnhanced
	case CategoryPortUpdate:
		return TierPortUpdate
	case CategoryDLCAddon, CategoryExpansion:
		return TierAddOn
	case CategoryBundle:
		return TierBundle
	case CategoryModFork:
		return TierModFork
	default:
		return TierUnknown
	}
}

// ReleaseStatus describes the release state of a game on one platform.
type ReleaseStatus int

const (
	StatusUnknown ReleaseStatus = iota
	StatusReleased
	StatusAlpha
	StatusBeta
	StatusEarlyAccess
	StatusRumored
	StatusCancelled
	StatusDelayed
)

// Catalog release-status codes, a fixed contract like the category codes.
const (
	CodeStatusReleased    = 0
	CodeStatusAlpha       = 1
	CodeStatusBeta        = 2
	CodeStatusEarlyAccess = 3
	CodeStatusCancelled   = 5
	CodeStatusRumored     = 6
)

// StatusFromCode maps a catalog status code onto the closed enum.
// Unrecognized codes resolve to StatusUnknown.
func StatusFromCode(code int) ReleaseStatus {
	switch code {
	case CodeStatusReleased:
		return StatusReleased
	case CodeStatusAlpha:
		return StatusAlpha
	case CodeStatusBeta:
		return StatusBeta
	case CodeStatusEarlyAccess:
		return StatusEarlyAccess
	case CodeStatusCancelled:
		return StatusCancelled
	case CodeStatusRumored:
		return StatusRumored
	default:
		return StatusUnknown
	}
}

// ReleaseRecord is one platform/status pair for a game.
type ReleaseRecord struct {
	PlatformID int
	Status     ReleaseStatus
	Date       *time.Time // nil when the catalog has no date
}

// GameEntity is the normalized representation of one catalog entry.
// Optional quality metrics are pointers so that absent catalog data is
// distinguishable from zero values; scoring degrades to baselines instead
// of treating nil as zero confidence.
type GameEntity struct {
	ID       int64
	Name     string
	Slug     string
	Summary  string
	Category Category

	Developer string
	Publisher string

	// Quality metrics, all optional.
	Rating      *float64 // aggregate rating, 0-100
	RatingCount *int
	Follows     *int
	Hypes       *int

	Releases []ReleaseRecord
}

// FirstReleaseDate returns the earliest known release date, or the zero
// time when no release record carries a date.
func (g *GameEntity) FirstReleaseDate() time.Time {
	var first time.Time
	for _, r := range g.Releases {
		if r.Date == nil {
			continue
		}
		if first.IsZero() || r.Date.Before(first) {
			first = *r.Date
		}
	}
	return first
}

// NormalizedName returns the lowercased, accent-folded, trimmed name used
// for matching. Normalization happens here, once, rather than in scoring
// code.
func (g *GameEntity) NormalizedName() string {
	return FoldDiacritics(strings.ToLower(strings.TrimSpace(g.Name)))
}

// Validate checks the entity's required fields.
func (g *GameEntity) Validate() error {
	if g.ID == 0 {
		return ErrInvalidGameID
	}
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyGameName
	}
	if g.Rating != nil && (*g.Rating < 0 || *g.Rating > 100) {
		return ErrInvalidRating
	}
	return nil
}
