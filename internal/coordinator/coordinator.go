// Package coordinator is the orchestration façade over the search
// pipeline: it owns the result cache keyed by normalized query, debounces
// and cancels superseded search requests, and exposes the single entry
// point consumers call.
//
// The cache is the only mutable shared state. Writes are all-or-nothing
// per entry, and a search that has been superseded never touches the
// cache or invokes its callback, no matter when its calls complete.
package coordinator

import (
	"context"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/leroysdeath/vgsearch/internal/expand"
	"github.com/leroysdeath/vgsearch/internal/intent"
	"github.com/leroysdeath/vgsearch/internal/protection"
	"github.com/leroysdeath/vgsearch/internal/query"
	"github.com/leroysdeath/vgsearch/internal/ranking"
	"github.com/leroysdeath/vgsearch/internal/scoring"
	"github.com/leroysdeath/vgsearch/internal/searcher"
	"github.com/leroysdeath/vgsearch/pkg/types"
)

const (
	// DefaultCacheSize is the LRU entry limit.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is how long a cached response stays valid.
	DefaultCacheTTL = 5 * time.Minute

	// DefaultMaxResults caps the final result list when the caller does
	// not ask for a specific cap.
	DefaultMaxResults = 50
)

// Response is what a coordinated search returns to the consumer.
type Response struct {
	Results []*types.ScoredResult
	Context *types.SearchContext
	Metrics *types.SearchMetrics
}

// ActiveSearch describes the search currently holding the slot. Source is
// the caller-supplied label identifying which surface requested it.
type ActiveSearch struct {
	ID        string
	Source    string
	Query     string
	StartedAt time.Time
}

// token tracks one scheduled or running search. Completions check the
// token before touching shared state; a cancelled token makes the whole
// search a silent no-op.
type token struct {
	id        string
	source    string
	query     string
	startedAt time.Time
	cancelled bool // guarded by the coordinator mutex
	timer     *time.Timer
	cancel    context.CancelFunc
}

// Coordinator owns the cache and the single logical search slot.
type Coordinator struct {
	expander *expand.Expander
	searcher *searcher.Searcher
	filter   *protection.Filter
	scorer   *scoring.Scorer

	cache      *lru.Cache[[32]byte, *cacheEntry]
	cacheMu    sync.RWMutex
	cacheTTL   time.Duration
	maxResults int
	logger     *slog.Logger

	mu      sync.Mutex
	current *token
	closed  bool
	wg      sync.WaitGroup
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
	}
}

// WithCacheTTL overrides the cache entry lifetime.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Coordinator) {
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

// WithMaxResults overrides the default result cap.
func WithMaxResults(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.maxResults = n
		}
	}
}

// New creates a Coordinator over the given pipeline stages.
func New(exp *expand.Expander, s *searcher.Searcher, filter *protection.Filter, scorer *scoring.Scorer, opts ...Option) (*Coordinator, error) {
	cache, err := lru.New[[32]byte, *cacheEntry](DefaultCacheSize)
	if err != nil {
		return nil, err
	}
	c := &Coordinator{
		expander:   exp,
		searcher:   s,
		filter:     filter,
		scorer:     scorer,
		cache:      cache,
		cacheTTL:   DefaultCacheTTL,
		maxResults: DefaultMaxResults,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Search runs the full pipeline synchronously: a cache hit within TTL
// returns immediately unless bypass is requested; a miss runs
// classification, expansion, fan-out, filtering, scoring, and ranking,
// then writes the result atomically into the cache.
//
// Empty or sub-minimum-length queries return an empty successful
// response without issuing any source calls.
func (c *Coordinator) Search(ctx context.Context, rawQuery string, opts types.SearchOptions) (*Response, error) {
	return c.search(ctx, rawQuery, opts, nil)
}

// RequestSearch schedules a search after delay, or runs it synchronously
// when immediate is true or delay is zero. Scheduling cancels and
// replaces any pending or in-flight search: only the most recent request
// per coordinator survives. The callback fires exactly once for a
// request that stays current, and never for a superseded one.
//
// source labels which surface asked for the search and is reported back
// through ActiveSearchInfo. The returned id identifies the scheduled
// search.
func (c *Coordinator) RequestSearch(source, rawQuery string, opts types.SearchOptions, delay time.Duration, immediate bool, fn func(*Response, error)) string {
	tok := &token{
		id:        uuid.NewString(),
		source:    source,
		query:     types.NormalizeQuery(rawQuery),
		startedAt: time.Now(),
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ""
	}
	c.supersedeLocked()
	c.current = tok

	if immediate || delay <= 0 {
		ctx, cancel := context.WithCancel(context.Background())
		tok.cancel = cancel
		c.mu.Unlock()

		resp, err := c.search(ctx, rawQuery, opts, tok)
		c.finish(tok, resp, err, fn)
		return tok.id
	}

	tok.timer = time.AfterFunc(delay, func() {
		c.mu.Lock()
		if tok.cancelled || c.closed {
			c.mu.Unlock()
			return
		}
		ctx, cancel := context.WithCancel(context.Background())
		tok.cancel = cancel
		c.wg.Add(1)
		c.mu.Unlock()

		defer c.wg.Done()
		resp, err := c.search(ctx, rawQuery, opts, tok)
		c.finish(tok, resp, err, fn)
	})
	c.mu.Unlock()
	return tok.id
}

// IsSearchActive reports whether a search is pending or in flight.
func (c *Coordinator) IsSearchActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil && !c.current.cancelled
}

// ActiveSearchInfo describes the current search, or nil when idle.
func (c *Coordinator) ActiveSearchInfo() *ActiveSearch {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil || c.current.cancelled {
		return nil
	}
	return &ActiveSearch{
		ID:        c.current.id,
		Source:    c.current.source,
		Query:     c.current.query,
		StartedAt: c.current.startedAt,
	}
}

// CancelActiveSearch cancels the pending or in-flight search, if any.
// The cancelled search resolves as a no-op, not an error.
func (c *Coordinator) CancelActiveSearch() {
	c.mu.Lock()
	c.supersedeLocked()
	c.mu.Unlock()
}

// ClearCache drops every cached response.
func (c *Coordinator) ClearCache() {
	c.cacheMu.Lock()
	c.cache.Purge()
	c.cacheMu.Unlock()
}

// CacheLen returns the number of live cache entries.
func (c *Coordinator) CacheLen() int {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()
	return c.cache.Len()
}

// Close cancels any pending search and waits for in-flight work to
// drain. No callback fires after Close returns.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	c.supersedeLocked()
	c.mu.Unlock()
	c.wg.Wait()
}

// supersedeLocked invalidates the current token. Callers hold c.mu.
func (c *Coordinator) supersedeLocked() {
	if c.current == nil {
		return
	}
	c.current.cancelled = true
	if c.current.timer != nil {
		c.current.timer.Stop()
	}
	if c.current.cancel != nil {
		c.current.cancel()
	}
	c.current = nil
}

// stillCurrent reports whether the token survived to completion, and
// releases the slot if it did.
func (c *Coordinator) stillCurrent(tok *token) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if tok.cancelled || c.closed {
		return false
	}
	if c.current == tok {
		c.current = nil
	}
	return true
}

func (c *Coordinator) finish(tok *token, resp *Response, err error, fn func(*Response, error)) {
	if !c.stillCurrent(tok) {
		return
	}
	if fn != nil {
		fn(resp, err)
	}
}

func (c *Coordinator) search(ctx context.Context, rawQuery string, opts types.SearchOptions, tok *token) (*Response, error) {
	start := time.Now()

	normalized := types.NormalizeQuery(rawQuery)
	if utf8.RuneCountInString(normalized) < types.MinQueryLength {
		return emptyResponse(normalized, opts, start), nil
	}

	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = c.maxResults
	}
	key := cacheKey(normalized, opts, maxResults)

	if !opts.BypassCache {
		if cached := c.checkCache(key); cached != nil {
			if cached.Metrics != nil {
				cached.Metrics.CacheHit = true
				cached.Metrics.Duration = time.Since(start)
			}
			if !opts.IncludeMetrics {
				cached.Metrics = nil
			}
			return cached, nil
		}
	}

	queryIntent := intent.Classify(normalized)
	sctx := &types.SearchContext{
		Query:            normalized,
		Expanded:         c.expander.Expand(normalized, opts.UseAggressive),
		Intent:           queryIntent,
		QualityThreshold: intent.QualityThreshold(queryIntent),
		MaxResults:       maxResults,
	}

	descriptors := query.Build(sctx)
	merged, stats, err := c.searcher.Execute(ctx, descriptors, opts.FastMode)
	if err != nil {
		return nil, err
	}

	filtered := 0
	scored := merged[:0:0]
	for _, r := range merged {
		if c.filter.ShouldFilter(r.Game) {
			filtered++
			continue
		}
		if c.scorer.Score(r, sctx) {
			scored = append(scored, r)
		}
	}
	ranking.Rank(scored)
	scored = ranking.Truncate(scored, maxResults)

	resp := &Response{
		Results: scored,
		Context: sctx,
		Metrics: &types.SearchMetrics{
			ExpandedQueries: len(sctx.Expanded),
			LocalHits:       stats.LocalHits,
			RemoteHits:      stats.RemoteHits,
			Merged:          len(merged),
			Filtered:        filtered,
			SourceFailures:  stats.Failures,
			Duration:        time.Since(start),
		},
	}

	// A superseded search must not write the cache.
	if tok == nil || !c.isCancelled(tok) {
		c.storeInCache(key, resp)
	}

	if !opts.IncludeMetrics {
		resp.Metrics = nil
	}
	c.logger.Debug("search completed",
		"query", normalized,
		"intent", string(queryIntent),
		"results", len(scored),
		"duration", time.Since(start))
	return resp, nil
}

func (c *Coordinator) isCancelled(tok *token) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return tok.cancelled
}

func emptyResponse(normalized string, opts types.SearchOptions, start time.Time) *Response {
	resp := &Response{
		Results: []*types.ScoredResult{},
		Context: &types.SearchContext{
			Query:    normalized,
			Expanded: []string{normalized},
			Intent:   types.IntentSpecificGame,
		},
	}
	if opts.IncludeMetrics {
		resp.Metrics = &types.SearchMetrics{Duration: time.Since(start)}
	}
	return resp
}
