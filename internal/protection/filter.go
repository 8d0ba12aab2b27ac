// Package protection decides which catalog entries are non-canonical
// content (ROM hacks, fan games, mods, reissued bundles, ports) and must
// be removed before scoring, so filtered content never competes for rank.
//
// The decision tables (official publisher allowlist, name-pattern markers,
// fan-content vocabulary, protected franchise keywords) are configuration
// data, replaceable from an external file without touching scoring code.
package protection

import (
	"log/slog"
	"strings"

	"github.com/leroysdeath/vgsearch/pkg/types"
)

// Filter classifies entities as canonical or filtered.
type Filter struct {
	allowlist    map[string]bool
	namePatterns []string
	fanPatterns  []string
	franchises   []string
	logger       *slog.Logger
}

// Option configures a Filter.
type Option func(*Filter)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(f *Filter) {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger
	}
}

// WithTables replaces the compiled-in decision tables.
func WithTables(t Tables) Option {
	return func(f *Filter) {
		if len(t.Allowlist) > 0 {
			f.allowlist = normalizeSet(t.Allowlist)
		}
		if len(t.NamePatterns) > 0 {
			f.namePatterns = lowerAll(t.NamePatterns)
		}
		if len(t.FanPatterns) > 0 {
			f.fanPatterns = lowerAll(t.FanPatterns)
		}
		if len(t.FranchiseKeywords) > 0 {
			f.franchises = lowerAll(t.FranchiseKeywords)
		}
	}
}

// New creates a Filter with the compiled-in tables.
func New(opts ...Option) *Filter {
	f := &Filter{
		allowlist:    normalizeSet(defaultAllowlist),
		namePatterns: lowerAll(defaultNamePatterns),
		fanPatterns:  lowerAll(defaultFanPatterns),
		franchises:   lowerAll(defaultFranchiseKeywords),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ShouldFilter reports whether the entity is non-canonical content.
//
// Signal order matters: the official publisher/developer allowlist
// overrides every other signal, so first-party titles are never filtered
// regardless of category quirks or reissue naming.
func (f *Filter) ShouldFilter(g *types.GameEntity) bool {
	if g == nil {
		return true
	}

	if f.isOfficial(g) {
		return false
	}

	name := g.NormalizedName()

	// Franchise keywords in the name without a recognized official
	// publisher: almost certainly fan content or a ROM hack.
	for _, fr := range f.franchises {
		if strings.Contains(name, fr) {
			f.logger.Debug("filtered unofficial franchise title", "game", g.Name)
			return true
		}
	}

	// Fan/mod/homebrew vocabulary anywhere in the credits or summary
	// filters even nominally MAIN entries.
	if f.matchesFanVocabulary(g) {
		return true
	}

	// Reissue categories are filtered by default.
	switch g.Category {
	case types.CategoryBundle, types.CategoryPortUpdate,
		types.CategoryEnhanced, types.CategoryModFork,
		types.CategoryDLCAddon:
		return true
	}

	// Collection/remaster naming filters even when the category claims
	// MAIN.
	for _, p := range f.namePatterns {
		if strings.Contains(name, p) {
			return true
		}
	}

	// Missing-metadata policy: nothing known about the entry and no
	// franchise claim, let it through.
	return false
}

// Apply returns the entities that survive the filter, preserving order,
// plus the number removed.
func (f *Filter) Apply(games []*types.GameEntity) ([]*types.GameEntity, int) {
	kept := games[:0:0]
	for _, g := range games {
		if !f.ShouldFilter(g) {
			kept = append(kept, g)
		}
	}
	return kept, len(games) - len(kept)
}

func (f *Filter) isOfficial(g *types.GameEntity) bool {
	return f.allowlist[normalizeCompany(g.Publisher)] ||
		f.allowlist[normalizeCompany(g.Developer)]
}

func (f *Filter) matchesFanVocabulary(g *types.GameEntity) bool {
	fields := []string{
		strings.ToLower(g.Developer),
		strings.ToLower(g.Publisher),
		strings.ToLower(g.Summary),
	}
	for _, field := range fields {
		if field == "" {
			continue
		}
		for _, p := range f.fanPatterns {
			if strings.Contains(field, p) {
				return true
			}
		}
	}
	return false
}

// normalizeCompany folds case, accents we care about, and punctuation so
// that "Pokémon Company" and "pokemon company, the" collide.
func normalizeCompany(name string) string {
	s := types.FoldDiacritics(strings.ToLower(strings.TrimSpace(name)))
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.TrimPrefix(s, "the ")
	s = strings.Join(strings.Fields(s), " ")
	for _, suffix := range []string{" inc", " llc", " ltd", " co", " corp", " entertainment"} {
		s = strings.TrimSuffix(s, suffix)
	}
	return s
}

func normalizeSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[normalizeCompany(n)] = true
	}
	return set
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}
