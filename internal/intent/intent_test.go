package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leroysdeath/vgsearch/pkg/types"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  types.SearchIntent
	}{
		{"explicit year", "best games 2023", types.IntentYearSearch},
		{"recency word", "new zelda", types.IntentYearSearch},
		{"latest", "latest rpg releases", types.IntentYearSearch},
		{"platform token", "ps5 exclusives", types.IntentPlatformSearch},
		{"switch games", "switch games", types.IntentPlatformSearch},
		{"developer games", "nintendo games", types.IntentDeveloperSearch},
		{"multi word developer", "square enix games", types.IntentDeveloperSearch},
		{"two genre words", "roguelike metroidvania", types.IntentGenreDiscovery},
		{"genre plus games", "rpg games", types.IntentGenreDiscovery},
		{"subtitled title", "the legend of zelda: breath of the wild", types.IntentSpecificGame},
		{"dash subtitle", "nier - automata", types.IntentSpecificGame},
		{"long query", "super mario bros wonder deluxe", types.IntentSpecificGame},
		{"franchise token", "mario", types.IntentFranchiseBrowse},
		{"franchise alias", "ff", types.IntentFranchiseBrowse},
		{"franchise plus qualifier", "mario kart", types.IntentSpecificGame},
		{"unknown short query", "hollow knight", types.IntentFranchiseBrowse},
		{"unknown long query", "some obscure indie title here", types.IntentSpecificGame},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.query))
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	// Identical input must yield identical output across invocations.
	for i := 0; i < 10; i++ {
		assert.Equal(t, types.IntentFranchiseBrowse, Classify("pokemon"))
	}
}

func TestClassifyEmptyQuery(t *testing.T) {
	// Classification ambiguity never throws; empty falls back to browse.
	assert.Equal(t, types.IntentFranchiseBrowse, Classify(""))
	assert.Equal(t, types.IntentFranchiseBrowse, Classify("   "))
}

func TestQualityThreshold(t *testing.T) {
	assert.InDelta(t, 0.4, QualityThreshold(types.IntentGenreDiscovery), 1e-9)
	assert.InDelta(t, 0.1, QualityThreshold(types.IntentFranchiseBrowse), 1e-9)
	assert.InDelta(t, 0.2, QualityThreshold(types.IntentSpecificGame), 1e-9)
}
