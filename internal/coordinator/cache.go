package coordinator

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/leroysdeath/vgsearch/pkg/types"
)

// cacheEntry is one cached search response with its expiration time.
type cacheEntry struct {
	response  *Response
	expiresAt time.Time
}

// cacheKey hashes the normalized query together with every option that
// changes the result set. Options that only change the response envelope
// (IncludeMetrics, BypassCache) stay out of the key.
func cacheKey(normalized string, opts types.SearchOptions, maxResults int) [32]byte {
	return sha256.Sum256([]byte(fmt.Sprintf("%s|%t|%t|%d",
		normalized, opts.FastMode, opts.UseAggressive, maxResults)))
}

// checkCache returns a deep copy of a live cached response, or nil on a
// miss. Expired entries are evicted on sight.
func (c *Coordinator) checkCache(key [32]byte) *Response {
	now := time.Now()

	c.cacheMu.RLock()
	entry, found := c.cache.Get(key)
	if !found {
		c.cacheMu.RUnlock()
		return nil
	}
	if now.After(entry.expiresAt) {
		c.cacheMu.RUnlock()
		c.cacheMu.Lock()
		c.cache.Remove(key)
		c.cacheMu.Unlock()
		return nil
	}
	// Copy while still holding the read lock so the entry cannot change
	// mid-copy.
	response := copyResponse(entry.response)
	c.cacheMu.RUnlock()

	return response
}

// storeInCache writes a deep copy of the response as one atomic entry.
func (c *Coordinator) storeInCache(key [32]byte, response *Response) {
	entry := &cacheEntry{
		response:  copyResponse(response),
		expiresAt: time.Now().Add(c.cacheTTL),
	}
	c.cacheMu.Lock()
	c.cache.Add(key, entry)
	c.cacheMu.Unlock()
}

// copyResponse deep-copies a response so cached state can never be
// mutated through a returned slice or pointer.
func copyResponse(src *Response) *Response {
	if src == nil {
		return nil
	}
	dst := &Response{
		Results: make([]*types.ScoredResult, len(src.Results)),
	}
	if src.Context != nil {
		sctx := *src.Context
		sctx.Expanded = append([]string(nil), src.Context.Expanded...)
		dst.Context = &sctx
	}
	if src.Metrics != nil {
		m := *src.Metrics
		dst.Metrics = &m
	}
	for i, r := range src.Results {
		cp := *r
		cp.Game = copyGame(r.Game)
		dst.Results[i] = &cp
	}
	return dst
}

func copyGame(src *types.GameEntity) *types.GameEntity {
	if src == nil {
		return nil
	}
	dst := *src
	dst.Rating = copyPtr(src.Rating)
	dst.RatingCount = copyPtr(src.RatingCount)
	dst.Follows = copyPtr(src.Follows)
	dst.Hypes = copyPtr(src.Hypes)
	if src.Releases != nil {
		dst.Releases = make([]types.ReleaseRecord, len(src.Releases))
		for i, rel := range src.Releases {
			cp := rel
			cp.Date = copyPtr(rel.Date)
			dst.Releases[i] = cp
		}
	}
	return &dst
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
