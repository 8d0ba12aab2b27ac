package expand

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// defaultAliases maps short forms to canonical phrases. An abbreviation
// expands to both its spelled-out name and the numeric-sequel variant so
// either catalog spelling matches.
var defaultAliases = map[string][]string{
	"ff":   {"final fantasy"},
	"ff7":  {"final fantasy vii", "final fantasy 7"},
	"ff8":  {"final fantasy viii", "final fantasy 8"},
	"ff9":  {"final fantasy ix", "final fantasy 9"},
	"ff10": {"final fantasy x", "final fantasy 10"},
	"ffx":  {"final fantasy x", "final fantasy 10"},
	"gta":  {"grand theft auto"},
	"gta5": {"grand theft auto v", "grand theft auto 5"},
	"botw": {"the legend of zelda: breath of the wild", "breath of the wild"},
	"totk": {"the legend of zelda: tears of the kingdom", "tears of the kingdom"},
	"dq":   {"dragon quest"},
	"mgs":  {"metal gear solid"},
	"re4":  {"resident evil 4"},
	"sf6":  {"street fighter 6", "street fighter vi"},
	"cod":  {"call of duty"},
	"ac":   {"assassin's creed", "animal crossing"},
	"kh":   {"kingdom hearts"},
	"oot":  {"the legend of zelda: ocarina of time", "ocarina of time"},
	"smb":  {"super mario bros"},
	"tf2":  {"team fortress 2"},
	"wow":  {"world of warcraft"},
	"p5":   {"persona 5"},
	"dmc":  {"devil may cry"},
	"nier": {"nier: automata", "nier replicant"},
}

// defaultSisterGroups lists known paired releases issued in parallel.
// A query matching one member appends the others as separate queries.
var defaultSisterGroups = [][]string{
	{"pokemon red", "pokemon blue", "pokemon yellow"},
	{"pokemon gold", "pokemon silver", "pokemon crystal"},
	{"pokemon ruby", "pokemon sapphire", "pokemon emerald"},
	{"pokemon diamond", "pokemon pearl", "pokemon platinum"},
	{"pokemon black", "pokemon white"},
	{"pokemon sword", "pokemon shield"},
	{"pokemon scarlet", "pokemon violet"},
	{"pokemon sun", "pokemon moon"},
	{"pokemon x", "pokemon y"},
	{"fire emblem birthright", "fire emblem conquest"},
	{"oracle of ages", "oracle of seasons"},
	{"mega man battle network 3 blue", "mega man battle network 3 white"},
}

// indexSisterGroups builds a member -> other-members lookup.
func indexSisterGroups(groups [][]string) map[string][]string {
	idx := make(map[string][]string)
	for _, group := range groups {
		for i, member := range group {
			others := make([]string, 0, len(group)-1)
			for j, other := range group {
				if i != j {
					others = append(others, other)
				}
			}
			idx[member] = others
		}
	}
	return idx
}

// tableFile is the on-disk form of the expansion tables. Both sections are
// optional; an absent section keeps the compiled-in default.
type tableFile struct {
	Aliases map[string][]string `yaml:"aliases"`
	Sisters [][]string          `yaml:"sister_releases"`
}

// LoadTables reads an alias/sister table file and returns the matching
// Expander options. The file format:
//
//	aliases:
//	  ff7: ["final fantasy vii", "final fantasy 7"]
//	sister_releases:
//	  - ["pokemon red", "pokemon blue", "pokemon yellow"]
func LoadTables(path string) ([]Option, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read expansion tables: %w", err)
	}

	var tf tableFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parse expansion tables: %w", err)
	}

	var opts []Option
	if tf.Aliases != nil {
		opts = append(opts, WithAliasTable(tf.Aliases))
	}
	if tf.Sisters != nil {
		opts = append(opts, WithSisterTable(tf.Sisters))
	}
	return opts, nil
}
