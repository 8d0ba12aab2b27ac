// Package expand generates bounded alternative query strings for a search:
// acronym/alias expansion, roman and arabic numeral sequel variants,
// subtitle stripping, and known sister-release pairs.
//
// The output list is deduplicated and order-preserving, the original query
// is always first, and the list is capped to bound fan-out cost.
package expand

import (
	"log/slog"
	"strings"

	"github.com/leroysdeath/vgsearch/pkg/types"
)

const (
	// DefaultCap bounds the expansion list.
	DefaultCap = 6
	// AggressiveCap applies when SearchOptions.UseAggressive is set.
	AggressiveCap = 8

	// Numeral window on each side of a detected sequel number.
	defaultNumeralWindow    = 2
	aggressiveNumeralWindow = 4
)

// Expander produces alternative query strings from fixed lookup tables.
// The tables are data, not logic: they can be replaced wholesale from an
// external file without touching the expansion code.
type Expander struct {
	aliases map[string][]string
	sisters map[string][]string
	logger  *slog.Logger
}

// Option configures an Expander.
type Option func(*Expander)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Expander) {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
	}
}

// WithAliasTable replaces the built-in alias table.
func WithAliasTable(aliases map[string][]string) Option {
	return func(e *Expander) {
		if aliases != nil {
			e.aliases = aliases
		}
	}
}

// WithSisterTable replaces the built-in sister-release table.
func WithSisterTable(groups [][]string) Option {
	return func(e *Expander) {
		e.sisters = indexSisterGroups(groups)
	}
}

// New creates an Expander with the compiled-in tables.
func New(opts ...Option) *Expander {
	e := &Expander{
		aliases: defaultAliases,
		sisters: indexSisterGroups(defaultSisterGroups),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand returns the expanded query list for q. The first element is always
// the normalized original query. When aggressive is set the numeral window
// widens and the cap rises.
func (e *Expander) Expand(q string, aggressive bool) []string {
	norm := types.NormalizeQuery(q)
	if norm == "" {
		return nil
	}

	limit := DefaultCap
	window := defaultNumeralWindow
	if aggressive {
		limit = AggressiveCap
		window = aggressiveNumeralWindow
	}

	out := []string{norm}
	add := func(candidates ...string) {
		for _, c := range candidates {
			c = types.NormalizeQuery(c)
			if c == "" {
				continue
			}
			if !contains(out, c) {
				out = append(out, c)
			}
		}
	}

	// Acronym / franchise alias expansion.
	if expansions, ok := e.aliases[norm]; ok {
		add(expansions...)
	}

	// Subtitle stripping: also search the base franchise name.
	if base, ok := stripSubtitle(norm); ok {
		add(base)
	}

	// Sister releases: each member is an independent query, so a failure
	// of one sister search never fails the whole expansion.
	if members, ok := e.sisters[norm]; ok {
		add(members...)
	}

	// Sequel variants in both numeral systems.
	add(numeralVariants(norm, window)...)

	if len(out) > limit {
		out = out[:limit]
	}
	e.logger.Debug("expanded query", "query", norm, "expansions", len(out))
	return out
}

// stripSubtitle returns the prefix before a colon or " - " separator.
func stripSubtitle(q string) (string, bool) {
	for _, sep := range []string{":", " - "} {
		if idx := strings.Index(q, sep); idx > 0 {
			base := strings.TrimSpace(q[:idx])
			if base != "" && base != q {
				return base, true
			}
		}
	}
	return "", false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
