package integration

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/leroysdeath/vgsearch/internal/catalog"
	"github.com/leroysdeath/vgsearch/internal/coordinator"
	"github.com/leroysdeath/vgsearch/internal/expand"
	"github.com/leroysdeath/vgsearch/internal/localstore"
	"github.com/leroysdeath/vgsearch/internal/protection"
	"github.com/leroysdeath/vgsearch/internal/scoring"
	"github.com/leroysdeath/vgsearch/internal/searcher"
	"github.com/leroysdeath/vgsearch/pkg/types"
)

// SearchPipelineSuite exercises the full pipeline: a seeded SQLite store
// plus a stub remote catalog behind a real coordinator.
type SearchPipelineSuite struct {
	suite.Suite

	store       *localstore.SQLiteStore
	stub        *httptest.Server
	remoteCalls atomic.Int64
	coordinator *coordinator.Coordinator
}

func TestSearchPipelineSuite(t *testing.T) {
	suite.Run(t, new(SearchPipelineSuite))
}

func (s *SearchPipelineSuite) SetupTest() {
	s.remoteCalls.Store(0)

	store, err := localstore.New(filepath.Join(s.T().TempDir(), "catalog.db"))
	s.Require().NoError(err)
	s.store = store

	written, err := store.BulkUpsert(context.Background(), localFixture())
	s.Require().NoError(err)
	s.Require().Equal(len(localFixture()), written)

	s.stub = httptest.NewServer(http.HandlerFunc(s.serveCatalog))

	client, err := catalog.NewClient(catalog.Config{
		BaseURL:  s.stub.URL,
		ClientID: "test-client",
		Token:    "test-token",
	})
	s.Require().NoError(err)

	coord, err := coordinator.New(
		expand.New(),
		searcher.New(store, client),
		protection.New(),
		scoring.New(scoring.DefaultParams()),
	)
	s.Require().NoError(err)
	s.coordinator = coord
}

func (s *SearchPipelineSuite) TearDownTest() {
	s.coordinator.Close()
	s.stub.Close()
	s.Require().NoError(s.store.Close())
}

var termPattern = regexp.MustCompile(`search "([^"]*)"`)

// serveCatalog emulates the remote catalog: fuzzy name matching on the
// search term, accents folded the way the real service folds them.
func (s *SearchPipelineSuite) serveCatalog(w http.ResponseWriter, r *http.Request) {
	s.remoteCalls.Add(1)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	m := termPattern.FindStringSubmatch(string(body))
	if m == nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	term := foldAccents(strings.ToLower(m[1]))

	var matches []map[string]interface{}
	for _, g := range remoteFixture() {
		name := foldAccents(strings.ToLower(g["name"].(string)))
		if strings.Contains(name, term) {
			matches = append(matches, g)
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(matches)
}

func foldAccents(s string) string {
	return strings.ReplaceAll(s, "é", "e")
}

// Query "mario" against a catalog of 40+ official titles returns all of
// them, including the canonical entries.
func (s *SearchPipelineSuite) TestMarioBrowseReturnsFullFranchise() {
	resp, err := s.coordinator.Search(context.Background(), "mario", types.SearchOptions{})
	s.Require().NoError(err)
	s.Require().GreaterOrEqual(len(resp.Results), 40)

	names := map[string]bool{}
	for _, r := range resp.Results {
		names[r.Game.Name] = true
	}
	s.True(names["Super Mario Bros"] || names["Mario Kart"], "canonical titles missing")
	s.Equal(types.IntentFranchiseBrowse, resp.Context.Intent)
}

// Query "pokemon red" returns the red, blue, and yellow sister releases
// even though only red matches the literal query.
func (s *SearchPipelineSuite) TestPokemonSisterReleases() {
	resp, err := s.coordinator.Search(context.Background(), "pokemon red", types.SearchOptions{})
	s.Require().NoError(err)

	names := map[string]bool{}
	for _, r := range resp.Results {
		names[r.Game.Name] = true
	}
	s.True(names["Pokémon Red Version"], "red missing")
	s.True(names["Pokémon Blue Version"], "blue missing")
	s.True(names["Pokémon Yellow Version"], "yellow missing")
}

// Query "ff7" expands to the spelled-out forms.
func (s *SearchPipelineSuite) TestAcronymExpansion() {
	resp, err := s.coordinator.Search(context.Background(), "ff7", types.SearchOptions{})
	s.Require().NoError(err)

	s.Contains(resp.Context.Expanded, "final fantasy vii")
	s.Contains(resp.Context.Expanded, "final fantasy 7")

	found := false
	for _, r := range resp.Results {
		if r.Game.Name == "Final Fantasy VII" {
			found = true
		}
	}
	s.True(found, "expansion did not surface Final Fantasy VII")
}

// No result set ever contains the same entity id twice.
func (s *SearchPipelineSuite) TestDedupInvariant() {
	for _, q := range []string{"mario", "pokemon red", "zelda", "questland"} {
		resp, err := s.coordinator.Search(context.Background(), q, types.SearchOptions{})
		s.Require().NoError(err)

		seen := map[int64]bool{}
		for _, r := range resp.Results {
			s.False(seen[r.Game.ID], "duplicate id %d for query %q", r.Game.ID, q)
			seen[r.Game.ID] = true
		}
	}
}

// Adjacent results never have a lower tier before a higher one, and
// scores are non-increasing within one tier.
func (s *SearchPipelineSuite) TestPriorityInvariant() {
	resp, err := s.coordinator.Search(context.Background(), "questland", types.SearchOptions{})
	s.Require().NoError(err)
	s.Require().NotEmpty(resp.Results)

	for i := 1; i < len(resp.Results); i++ {
		prev, cur := resp.Results[i-1], resp.Results[i]
		pt, ct := prev.Game.Category.Tier(), cur.Game.Category.Tier()
		s.LessOrEqual(pt, ct)
		if pt == ct {
			s.GreaterOrEqual(prev.TotalScore, cur.TotalScore)
		}
	}
}

// A DLC with a perfect rating still ranks below the main game it belongs
// to.
func (s *SearchPipelineSuite) TestMainGameBeatsPerfectDLC() {
	resp, err := s.coordinator.Search(context.Background(), "questland", types.SearchOptions{})
	s.Require().NoError(err)
	s.Require().GreaterOrEqual(len(resp.Results), 2)

	s.Equal("Questland", resp.Results[0].Game.Name)
	for i, r := range resp.Results {
		if r.Game.Name == "Questland Expansion Pass" {
			s.Greater(i, 0, "DLC ranked first")
		}
	}
}

// Empty and sub-minimum queries resolve locally with zero network calls.
func (s *SearchPipelineSuite) TestEmptyQueryNoNetworkCalls() {
	for _, q := range []string{"", "   ", "a"} {
		resp, err := s.coordinator.Search(context.Background(), q, types.SearchOptions{})
		s.Require().NoError(err)
		s.Empty(resp.Results)
	}
	s.Zero(s.remoteCalls.Load())
}

// Two identical queries within TTL: the second is served from cache and
// issues no further catalog calls.
func (s *SearchPipelineSuite) TestCacheServesRepeatQuery() {
	first, err := s.coordinator.Search(context.Background(), "mario", types.SearchOptions{IncludeMetrics: true})
	s.Require().NoError(err)
	callsAfterFirst := s.remoteCalls.Load()

	second, err := s.coordinator.Search(context.Background(), "mario", types.SearchOptions{IncludeMetrics: true})
	s.Require().NoError(err)

	s.Equal(callsAfterFirst, s.remoteCalls.Load())
	s.True(second.Metrics.CacheHit)
	s.Require().Equal(len(first.Results), len(second.Results))
	for i := range first.Results {
		s.Equal(first.Results[i].Game.ID, second.Results[i].Game.ID)
	}
}

// Fan-made franchise titles are filtered out of official results.
func (s *SearchPipelineSuite) TestFanContentFiltered() {
	resp, err := s.coordinator.Search(context.Background(), "mario", types.SearchOptions{})
	s.Require().NoError(err)

	for _, r := range resp.Results {
		s.NotEqual("Super Mario Bros X", r.Game.Name, "fan game survived the filter")
	}
}

// localFixture seeds the store: the Questland family for tier tests plus
// a zelda title for dedup coverage.
func localFixture() []*types.GameEntity {
	f := func(v float64) *float64 { return &v }
	n := func(v int) *int { return &v }

	return []*types.GameEntity{
		{
			ID: 9001, Name: "Questland", Slug: "questland",
			Category: types.CategoryMain, Developer: "Square Enix", Publisher: "Square Enix",
			Rating: f(60), RatingCount: n(1500),
		},
		{
			ID: 9002, Name: "Questland Expansion Pass", Slug: "questland-expansion-pass",
			Category: types.CategoryDLCAddon, Developer: "Square Enix", Publisher: "Square Enix",
			Rating: f(100), RatingCount: n(2000),
		},
		{
			ID: 9003, Name: "The Legend of Zelda", Slug: "the-legend-of-zelda",
			Category: types.CategoryMain, Developer: "Nintendo", Publisher: "Nintendo",
			Rating: f(92), RatingCount: n(3000),
		},
	}
}

// remoteFixture is the stub catalog: 42 official Mario titles, the three
// Pokémon sister versions, Final Fantasy VII, and one fan game that the
// protection filter must remove.
func remoteFixture() []map[string]interface{} {
	nintendo := []map[string]interface{}{{
		"company":   map[string]interface{}{"name": "Nintendo"},
		"developer": true,
		"publisher": true,
	}}
	squareEnix := []map[string]interface{}{{
		"company":   map[string]interface{}{"name": "Square Enix"},
		"developer": true,
		"publisher": true,
	}}

	games := []map[string]interface{}{
		{
			"id": 300, "name": "Pokémon Red Version", "slug": "pokemon-red-version",
			"category": 0, "total_rating": 85.0, "total_rating_count": 2200,
			"involved_companies": nintendo,
		},
		{
			"id": 301, "name": "Pokémon Blue Version", "slug": "pokemon-blue-version",
			"category": 0, "total_rating": 85.0, "total_rating_count": 2100,
			"involved_companies": nintendo,
		},
		{
			"id": 302, "name": "Pokémon Yellow Version", "slug": "pokemon-yellow-version",
			"category": 0, "total_rating": 84.0, "total_rating_count": 1900,
			"involved_companies": nintendo,
		},
		{
			"id": 400, "name": "Final Fantasy VII", "slug": "final-fantasy-vii",
			"category": 0, "total_rating": 92.0, "total_rating_count": 4000,
			"involved_companies": squareEnix,
		},
		{
			"id": 500, "name": "Super Mario Bros X", "slug": "super-mario-bros-x",
			"category": 0, "total_rating": 70.0, "total_rating_count": 50,
			"involved_companies": []map[string]interface{}{{
				"company":   map[string]interface{}{"name": "Redigit"},
				"developer": true,
			}},
		},
	}

	marioTitles := []string{
		"Super Mario Bros", "Super Mario Bros 2", "Super Mario Bros 3",
		"Super Mario World", "Super Mario 64", "Super Mario Sunshine",
		"Super Mario Galaxy", "Super Mario Galaxy 2", "Super Mario Odyssey",
		"New Super Mario Bros", "New Super Mario Bros Wii", "New Super Mario Bros U",
		"Super Mario Land", "Super Mario Land 2", "Super Mario 3D Land",
		"Super Mario 3D World", "Super Mario Maker", "Super Mario Maker 2",
		"Mario Kart", "Mario Kart 64", "Mario Kart 7", "Mario Kart 8",
		"Mario Kart Wii", "Mario Kart DS", "Mario Party", "Mario Party 2",
		"Mario Party 3", "Mario Party 4", "Mario Party Superstars",
		"Mario Tennis", "Mario Tennis Aces", "Mario Golf", "Mario Golf Super Rush",
		"Paper Mario", "Paper Mario The Thousand-Year Door", "Mario & Luigi Superstar Saga",
		"Mario Strikers", "Mario Strikers Charged", "Mario Pinball Land",
		"Mario vs Donkey Kong", "Dr Mario", "Mario Paint",
	}
	for i, name := range marioTitles {
		games = append(games, map[string]interface{}{
			"id":                 int64(1000 + i),
			"name":               name,
			"slug":               slugify(name),
			"category":           0,
			"total_rating":       70.0 + float64(i%25),
			"total_rating_count": 500 + i*40,
			"involved_companies": nintendo,
		})
	}
	return games
}

func slugify(name string) string {
	s := strings.ToLower(name)
	for _, r := range []string{" & ", " ", ".", "'"} {
		s = strings.ReplaceAll(s, r, "-")
	}
	return s
}
