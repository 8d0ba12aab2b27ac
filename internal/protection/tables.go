package protection

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tables holds the externally maintainable filter configuration. Any
// empty section falls back to the compiled-in defaults.
type Tables struct {
	Allowlist         []string `yaml:"allowlist"`
	NamePatterns      []string `yaml:"name_patterns"`
	FanPatterns       []string `yaml:"fan_patterns"`
	FranchiseKeywords []string `yaml:"franchise_keywords"`
}

// LoadTables reads filter tables from a YAML file.
func LoadTables(path string) (Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("failed to read filter config: %w", err)
	}
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tables{}, fmt.Errorf("failed to parse filter config: %w", err)
	}
	return t, nil
}

// Official first-party publishers and developers. Titles credited to any
// of these are never filtered. Matching is on the normalized form, so
// accent and "The ..." variants collapse to one entry.
var defaultAllowlist = []string{
	"Nintendo",
	"Nintendo of America",
	"Nintendo of Europe",
	"The Pokémon Company",
	"Pokemon Company International",
	"Game Freak",
	"HAL Laboratory",
	"Intelligent Systems",
	"Retro Studios",
	"Sony Interactive Entertainment",
	"Sony Computer Entertainment",
	"Naughty Dog",
	"Insomniac Games",
	"Santa Monica Studio",
	"Microsoft",
	"Xbox Game Studios",
	"343 Industries",
	"Square Enix",
	"Square",
	"Enix",
	"Capcom",
	"Konami",
	"Sega",
	"Atlus",
	"Bandai Namco Entertainment",
	"Namco",
	"FromSoftware",
	"Rockstar Games",
	"Rockstar North",
	"Bethesda Softworks",
	"Bethesda Game Studios",
	"id Software",
	"Valve",
	"Blizzard Entertainment",
	"Activision",
	"Electronic Arts",
	"Ubisoft",
	"CD Projekt Red",
	"Larian Studios",
}

// Reissue naming markers. These filter an entry even when its category
// claims MAIN.
var defaultNamePatterns = []string{
	"collection",
	"remaster",
	"remastered",
	"definitive edition",
	"complete edition",
	"game of the year edition",
	"goty edition",
	"all-stars",
	"all stars",
	"anniversary edition",
	"hd edition",
	"trilogy",
	"anthology",
	"compilation",
}

// Fan-content vocabulary checked against developer, publisher, and
// summary fields.
var defaultFanPatterns = []string{
	"fan game",
	"fangame",
	"fan-made",
	"fan made",
	"fan project",
	"rom hack",
	"romhack",
	"rom-hack",
	"homebrew",
	"unofficial",
	"total conversion",
	"mod for",
	"community mod",
	"demake",
}

// Protected franchise keywords. A title whose name contains one of these
// but whose credits name no official publisher is treated as fan content.
var defaultFranchiseKeywords = []string{
	"mario",
	"zelda",
	"pokemon",
	"metroid",
	"kirby",
	"sonic",
	"final fantasy",
	"dragon quest",
	"mega man",
	"castlevania",
	"halo",
	"god of war",
	"uncharted",
	"grand theft auto",
}
