// Package searcher executes a descriptor set concurrently against the
// local store and the remote catalog, then merges the per-query batches
// in strict priority order.
//
// Partial failures are tolerated: a single source call failing or timing
// out is logged and treated as an empty batch. Only when every call for
// every descriptor fails does the search itself fail.
package searcher

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leroysdeath/vgsearch/internal/query"
	"github.com/leroysdeath/vgsearch/pkg/types"
)

// ErrAllSourcesFailed indicates every source call for every descriptor
// failed, so there is nothing to merge.
var ErrAllSourcesFailed = errors.New("all search sources failed")

const (
	// DefaultCallTimeout bounds each individual source call,
	// independent of the coordinator's debounce timer.
	DefaultCallTimeout = 8 * time.Second

	// DefaultConcurrency bounds the fan-out across all descriptors.
	DefaultConcurrency = 8
)

// LocalSource is the consumed slice of the local store.
type LocalSource interface {
	SearchGames(ctx context.Context, terms []string, limit int) ([]*types.GameEntity, error)
}

// RemoteSource is the consumed slice of the remote catalog client.
type RemoteSource interface {
	Search(ctx context.Context, rq query.RemoteQuery) ([]*types.GameEntity, error)
}

// Searcher fans a descriptor set out across both sources.
type Searcher struct {
	local       LocalSource
	remote      RemoteSource
	callTimeout time.Duration
	concurrency int
	logger      *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// WithCallTimeout overrides the per-call timeout.
func WithCallTimeout(d time.Duration) Option {
	return func(s *Searcher) {
		if d > 0 {
			s.callTimeout = d
		}
	}
}

// WithConcurrency overrides the fan-out bound.
func WithConcurrency(n int) Option {
	return func(s *Searcher) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// New creates a Searcher. remote may be nil, in which case every search
// behaves as if fastMode were set.
func New(local LocalSource, remote RemoteSource, opts ...Option) *Searcher {
	s := &Searcher{
		local:       local,
		remote:      remote,
		callTimeout: DefaultCallTimeout,
		concurrency: DefaultConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stats counts raw per-source hits and failed calls for one execution,
// before dedup.
type Stats struct {
	LocalHits  int
	RemoteHits int
	Failures   int
}

// Execute runs every descriptor against both sources concurrently and
// returns the merged, deduplicated results tagged with their batch rank.
// Merge order is determined by descriptor priority, never by which call
// returned first. fastMode skips the remote catalog entirely.
func (s *Searcher) Execute(ctx context.Context, descriptors []query.Descriptor, fastMode bool) ([]*types.ScoredResult, Stats, error) {
	if len(descriptors) == 0 {
		return nil, Stats{}, nil
	}

	useRemote := !fastMode && s.remote != nil

	// One slot per call, written only by its own goroutine. Failed calls
	// leave their slot nil.
	localBatches := make([][]*types.GameEntity, len(descriptors))
	remoteBatches := make([][]*types.GameEntity, len(descriptors))

	var calls, failures atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, d := range descriptors {
		i, d := i, d

		calls.Add(1)
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, s.callTimeout)
			defer cancel()

			games, err := s.local.SearchGames(callCtx, d.Local.Terms, d.Local.Limit)
			if err != nil {
				failures.Add(1)
				s.logger.Warn("local search failed", "query", d.Query, "error", err)
				return nil
			}
			localBatches[i] = games
			return nil
		})

		if !useRemote {
			continue
		}
		calls.Add(1)
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, s.callTimeout)
			defer cancel()

			games, err := s.remote.Search(callCtx, d.Remote)
			if err != nil {
				failures.Add(1)
				s.logger.Warn("remote search failed", "query", d.Query, "error", err)
				return nil
			}
			remoteBatches[i] = games
			return nil
		})
	}

	// Workers never return errors, so Wait only reflects ctx cancellation.
	if err := g.Wait(); err != nil {
		return nil, Stats{}, err
	}
	if err := ctx.Err(); err != nil {
		return nil, Stats{}, err
	}

	stats := Stats{Failures: int(failures.Load())}
	for i := range descriptors {
		stats.LocalHits += len(localBatches[i])
		stats.RemoteHits += len(remoteBatches[i])
	}
	if failures.Load() == calls.Load() {
		return nil, stats, ErrAllSourcesFailed
	}

	return merge(descriptors, localBatches, remoteBatches), stats, nil
}

// merge concatenates batches in descriptor priority order, local before
// remote within a descriptor, and removes duplicates keeping the first
// occurrence. An entity seen from both sources is kept once, tagged
// hybrid.
func merge(descriptors []query.Descriptor, localBatches, remoteBatches [][]*types.GameEntity) []*types.ScoredResult {
	var merged []*types.ScoredResult
	seenID := make(map[int64]*types.ScoredResult)
	seenName := make(map[string]*types.ScoredResult)

	add := func(g *types.GameEntity, source types.ResultSource, priority int) {
		if g == nil {
			return
		}
		// The local store is seeded from the catalog, so ids are one
		// namespace. The first (highest-priority) occurrence wins; a
		// second sighting from the other backend tags it hybrid.
		if prev, ok := seenID[g.ID]; ok {
			if prev.Source != source {
				prev.Source = types.SourceHybrid
			}
			return
		}

		// Same title under a different id still collapses to one entry.
		nameKey := g.Slug
		if nameKey == "" {
			nameKey = g.NormalizedName()
		}
		if prev, ok := seenName[nameKey]; ok {
			if prev.Source != source {
				prev.Source = types.SourceHybrid
			}
			seenID[g.ID] = prev
			return
		}

		r := &types.ScoredResult{Game: g, Source: source, BatchRank: priority}
		seenID[g.ID] = r
		seenName[nameKey] = r
		merged = append(merged, r)
	}

	for i, d := range descriptors {
		for _, g := range localBatches[i] {
			add(g, types.SourceLocal, d.Priority)
		}
		for _, g := range remoteBatches[i] {
			add(g, types.SourceRemote, d.Priority)
		}
	}
	return merged
}
