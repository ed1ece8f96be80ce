package quotecache

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/lifedash/portfolio-engine/internal/apperrors"
	"github.com/lifedash/portfolio-engine/internal/model"
)

// Fetcher retrieves market data from the upstream provider.
// *finnhub.Client satisfies this interface; tests substitute a stub.
type Fetcher interface {
	Quote(ctx context.Context, symbol string) (model.Quote, error)
	HistoricalClose(ctx context.Context, symbol string, date time.Time) (decimal.Decimal, error)
}

// QuoteStore persists quotes so the cache survives restarts.
// *repository.QuoteRepository satisfies this interface.
type QuoteStore interface {
	Upsert(q model.Quote) error
	All() ([]model.Quote, error)
	Delete(symbols ...string) error
}

// Result is the per-symbol outcome of a batch lookup. Unavailable means no
// price is known at all: the upstream could not be reached (or refused the
// symbol) and nothing was cached.
type Result struct {
	Quote       model.Quote
	Stale       bool
	Unavailable bool
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits            uint64 `json:"hits"`
	Misses          uint64 `json:"misses"`
	Evictions       uint64 `json:"evictions"`
	Size            int    `json:"size"`
	BudgetRemaining int    `json:"budgetRemaining"`
}

// Cache is an in-memory quote cache with TTL expiry, per-symbol fetch
// coalescing and an upstream call budget. Entries are written through to the
// cached_quote table so a restart resumes with the last known prices.
//
// The cache never discards a price just because it expired: an expired entry
// is re-fetched when possible and served stale when the budget is exhausted
// or the upstream fails.
type Cache struct {
	fetcher Fetcher
	store   QuoteStore
	limiter *Limiter

	ttl          time.Duration
	fetchTimeout time.Duration

	mu      sync.RWMutex
	entries map[string]model.Quote

	group singleflight.Group

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// New creates a Cache and warms it from the store. A store read failure is
// logged, not fatal: the cache simply starts cold.
func New(fetcher Fetcher, store QuoteStore, limiter *Limiter, ttl, fetchTimeout time.Duration) *Cache {
	c := &Cache{
		fetcher:      fetcher,
		store:        store,
		limiter:      limiter,
		ttl:          ttl,
		fetchTimeout: fetchTimeout,
		entries:      make(map[string]model.Quote),
	}

	persisted, err := store.All()
	if err != nil {
		log.Printf("quotecache: failed to warm cache from store: %v", err)
		return c
	}
	for _, q := range persisted {
		c.entries[q.Symbol] = q
	}
	return c
}

// fetchResult carries a singleflight outcome to every waiting caller.
type fetchResult struct {
	quote model.Quote
	stale bool
}

// Get returns the quote for a symbol. The boolean reports staleness: a fresh
// quote is younger than the TTL; a stale one is served when the call budget
// is exhausted or the upstream fetch fails but a cached value exists.
//
// Concurrent callers for the same expired symbol share one upstream fetch.
func (c *Cache) Get(ctx context.Context, symbol string) (model.Quote, bool, error) {
	if q, ok := c.fresh(symbol); ok {
		c.hits.Add(1)
		return q, false, nil
	}
	c.misses.Add(1)

	v, err, _ := c.group.Do(symbol, func() (any, error) {
		// Re-check after winning the flight: another caller may have
		// refreshed the entry while this one waited.
		if q, ok := c.fresh(symbol); ok {
			return fetchResult{quote: q}, nil
		}
		return c.refresh(ctx, symbol)
	})
	if err != nil {
		return model.Quote{}, false, err
	}

	res := v.(fetchResult)
	return res.quote, res.stale, nil
}

// GetBatch looks up every symbol with the same discipline as Get. The result
// map always contains one entry per requested symbol; symbols with no known
// price are marked Unavailable rather than dropped.
func (c *Cache) GetBatch(ctx context.Context, symbols []string) map[string]Result {
	results := make(map[string]Result, len(symbols))
	for _, symbol := range symbols {
		q, stale, err := c.Get(ctx, symbol)
		if err != nil {
			results[symbol] = Result{Unavailable: true}
			continue
		}
		results[symbol] = Result{Quote: q, Stale: stale}
	}
	return results
}

// refresh fetches a symbol from upstream and stores the result. It is always
// called inside the singleflight group.
func (c *Cache) refresh(ctx context.Context, symbol string) (fetchResult, error) {
	cached, hasCached := c.lookup(symbol)

	if !c.limiter.Allow() {
		if hasCached {
			return fetchResult{quote: cached, stale: true}, nil
		}
		return fetchResult{}, apperrors.ErrQuoteUnavailable
	}

	fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	q, err := c.fetcher.Quote(fetchCtx, symbol)
	if err != nil {
		if hasCached {
			log.Printf("quotecache: fetch failed for %s, serving stale quote: %v", symbol, err)
			return fetchResult{quote: cached, stale: true}, nil
		}
		// Upstream failures are absorbed here: callers only ever see the
		// unavailable sentinel, never a transport error.
		log.Printf("quotecache: fetch failed for %s with nothing cached: %v", symbol, err)
		return fetchResult{}, fmt.Errorf("no quote for %s: %w", symbol, apperrors.ErrQuoteUnavailable)
	}

	c.set(q)
	return fetchResult{quote: q}, nil
}

// HistoricalClose resolves the closing price for a symbol on a past date,
// consuming one call from the budget. Historical closes are not cached: they
// are immutable and only requested for back-dated trades.
func (c *Cache) HistoricalClose(ctx context.Context, symbol string, date time.Time) (decimal.Decimal, error) {
	if !c.limiter.Allow() {
		return decimal.Zero, apperrors.ErrRateLimited
	}
	fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()
	return c.fetcher.HistoricalClose(fetchCtx, symbol, date)
}

// Invalidate removes symbols from the cache and the backing store. The next
// lookup for each symbol goes straight to the upstream provider.
func (c *Cache) Invalidate(symbols ...string) {
	if len(symbols) == 0 {
		return
	}
	c.mu.Lock()
	for _, s := range symbols {
		delete(c.entries, s)
	}
	c.mu.Unlock()

	if err := c.store.Delete(symbols...); err != nil {
		log.Printf("quotecache: failed to delete persisted quotes: %v", err)
	}
}

// Cleanup evicts entries whose last fetch is older than maxAge. The expired
// set is collected under the read lock and deleted afterwards so slow store
// I/O never blocks readers. Returns the number of evicted entries.
func (c *Cache) Cleanup(maxAge time.Duration) int {
	cutoff := time.Now().UTC().Add(-maxAge)

	c.mu.RLock()
	var expired []string
	for symbol, q := range c.entries {
		if q.FetchedAt.Before(cutoff) {
			expired = append(expired, symbol)
		}
	}
	c.mu.RUnlock()

	if len(expired) == 0 {
		return 0
	}

	c.mu.Lock()
	for _, s := range expired {
		// Re-check under the write lock; the entry may have been
		// refreshed since the scan.
		if q, ok := c.entries[s]; ok && q.FetchedAt.Before(cutoff) {
			delete(c.entries, s)
		}
	}
	c.mu.Unlock()

	if err := c.store.Delete(expired...); err != nil {
		log.Printf("quotecache: failed to delete expired quotes: %v", err)
	}

	c.evictions.Add(uint64(len(expired)))
	return len(expired)
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	size := len(c.entries)
	c.mu.RUnlock()

	return Stats{
		Hits:            c.hits.Load(),
		Misses:          c.misses.Load(),
		Evictions:       c.evictions.Load(),
		Size:            size,
		BudgetRemaining: c.limiter.Remaining(),
	}
}

// fresh returns the cached quote when it is younger than the TTL.
func (c *Cache) fresh(symbol string) (model.Quote, bool) {
	q, ok := c.lookup(symbol)
	if !ok {
		return model.Quote{}, false
	}
	if time.Since(q.FetchedAt) >= c.ttl {
		return model.Quote{}, false
	}
	return q, true
}

func (c *Cache) lookup(symbol string) (model.Quote, bool) {
	c.mu.RLock()
	q, ok := c.entries[symbol]
	c.mu.RUnlock()
	return q, ok
}

// set stores a freshly fetched quote, enforcing that fetched_at never moves
// backwards for a symbol, and writes it through to the store.
func (c *Cache) set(q model.Quote) {
	c.mu.Lock()
	if existing, ok := c.entries[q.Symbol]; ok && existing.FetchedAt.After(q.FetchedAt) {
		c.mu.Unlock()
		return
	}
	c.entries[q.Symbol] = q
	c.mu.Unlock()

	if err := c.store.Upsert(q); err != nil {
		log.Printf("quotecache: failed to persist quote for %s: %v", q.Symbol, err)
	}
}
