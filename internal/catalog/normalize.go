package catalog

import (
	"time"

	"github.com/leroysdeath/vgsearch/pkg/types"
)

// remoteGame is the wire shape of one catalog entity. Metric fields are
// pointers because the catalog omits them freely; normalization keeps the
// distinction between absent and zero.
type remoteGame struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Summary     string   `json:"summary"`
	Category    *int     `json:"category"`
	Rating      *float64 `json:"total_rating"`
	RatingCount *int     `json:"total_rating_count"`
	Follows     *int     `json:"follows"`
	Hypes       *int     `json:"hypes"`

	InvolvedCompanies []struct {
		Company struct {
			Name string `json:"name"`
		} `json:"company"`
		Developer bool `json:"developer"`
		Publisher bool `json:"publisher"`
	} `json:"involved_companies"`

	ReleaseDates []struct {
		Platform int    `json:"platform"`
		Date     *int64 `json:"date"` // unix seconds
		Status   *int   `json:"status"`
	} `json:"release_dates"`
}

func statusFromCode(code *int) types.ReleaseStatus {
	if code == nil {
		return types.StatusUnknown
	}
	return types.StatusFromCode(*code)
}

// normalize converts the wire shape to the domain entity. This is the
// single conversion point: downstream code never sees raw catalog rows.
func (rg *remoteGame) normalize() *types.GameEntity {
	game := &types.GameEntity{
		ID:          rg.ID,
		Name:        rg.Name,
		Slug:        rg.Slug,
		Summary:     rg.Summary,
		Category:    types.CategoryUnknown,
		Rating:      rg.Rating,
		RatingCount: rg.RatingCount,
		Follows:     rg.Follows,
		Hypes:       rg.Hypes,
	}

	if rg.Category != nil {
		game.Category = types.CategoryFromCode(*rg.Category)
	}

	for _, ic := range rg.InvolvedCompanies {
		if ic.Developer && game.Developer == "" {
			game.Developer = ic.Company.Name
		}
		if ic.Publisher && game.Publisher == "" {
			game.Publisher = ic.Company.Name
		}
	}

	for _, rd := range rg.ReleaseDates {
		record := types.ReleaseRecord{
			PlatformID: rd.Platform,
			Status:     statusFromCode(rd.Status),
		}
		if rd.Date != nil {
			d := time.Unix(*rd.Date, 0).UTC()
			record.Date = &d
		}
		game.Releases = append(game.Releases, record)
	}

	return game
}
