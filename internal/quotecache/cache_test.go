package quotecache_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lifedash/portfolio-engine/internal/apperrors"
	"github.com/lifedash/portfolio-engine/internal/model"
	"github.com/lifedash/portfolio-engine/internal/quotecache"
)

// stubFetcher is a controllable Fetcher implementation for cache tests.
type stubFetcher struct {
	mu    sync.Mutex
	calls int
	delay time.Duration
	err   error
	price decimal.Decimal
}

func (f *stubFetcher) Quote(_ context.Context, symbol string) (model.Quote, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return model.Quote{}, f.err
	}
	return model.Quote{
		Symbol:    symbol,
		Price:     f.price,
		FetchedAt: time.Now().UTC(),
	}, nil
}

func (f *stubFetcher) HistoricalClose(_ context.Context, _ string, _ time.Time) (decimal.Decimal, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return decimal.Zero, f.err
	}
	return f.price, nil
}

func (f *stubFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// stubStore is an in-memory QuoteStore.
type stubStore struct {
	mu     sync.Mutex
	quotes map[string]model.Quote
}

func newStubStore() *stubStore {
	return &stubStore{quotes: make(map[string]model.Quote)}
}

func (s *stubStore) Upsert(q model.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes[q.Symbol] = q
	return nil
}

func (s *stubStore) All() ([]model.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Quote, 0, len(s.quotes))
	for _, q := range s.quotes {
		out = append(out, q)
	}
	return out, nil
}

func (s *stubStore) Delete(symbols ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sym := range symbols {
		delete(s.quotes, sym)
	}
	return nil
}

func TestGetCachesWithinTTL(t *testing.T) {
	fetcher := &stubFetcher{price: decimal.NewFromInt(100)}
	cache := quotecache.New(fetcher, newStubStore(), quotecache.NewLimiter(60), 5*time.Minute, time.Second)

	for i := 0; i < 5; i++ {
		q, stale, err := cache.Get(context.Background(), "AAPL")
		if err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
		if stale {
			t.Error("Expected fresh quote")
		}
		if !q.Price.Equal(decimal.NewFromInt(100)) {
			t.Errorf("Expected price 100, got %s", q.Price)
		}
	}

	if got := fetcher.callCount(); got != 1 {
		t.Errorf("Expected 1 upstream call for 5 lookups within TTL, got %d", got)
	}

	stats := cache.Stats()
	if stats.Hits != 4 || stats.Misses != 1 {
		t.Errorf("Expected 4 hits / 1 miss, got %d / %d", stats.Hits, stats.Misses)
	}
}

func TestGetRefetchesAfterTTL(t *testing.T) {
	fetcher := &stubFetcher{price: decimal.NewFromInt(100)}
	cache := quotecache.New(fetcher, newStubStore(), quotecache.NewLimiter(60), 10*time.Millisecond, time.Second)

	if _, _, err := cache.Get(context.Background(), "AAPL"); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, _, err := cache.Get(context.Background(), "AAPL"); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}

	if got := fetcher.callCount(); got != 2 {
		t.Errorf("Expected 2 upstream calls after TTL expiry, got %d", got)
	}
}

func TestConcurrentGetsShareOneFetch(t *testing.T) {
	fetcher := &stubFetcher{price: decimal.NewFromInt(100), delay: 50 * time.Millisecond}
	cache := quotecache.New(fetcher, newStubStore(), quotecache.NewLimiter(60), 5*time.Minute, time.Second)

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := cache.Get(context.Background(), "AAPL"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("Get returned error: %v", err)
	}

	if got := fetcher.callCount(); got != 1 {
		t.Errorf("Expected %d concurrent lookups to share 1 upstream call, got %d", n, got)
	}
}

func TestBudgetExhaustion(t *testing.T) {
	t.Run("serves stale cached quote", func(t *testing.T) {
		fetcher := &stubFetcher{price: decimal.NewFromInt(100)}
		limiter := quotecache.NewLimiter(1)
		cache := quotecache.New(fetcher, newStubStore(), limiter, 10*time.Millisecond, time.Second)

		if _, _, err := cache.Get(context.Background(), "AAPL"); err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
		time.Sleep(20 * time.Millisecond)

		q, stale, err := cache.Get(context.Background(), "AAPL")
		if err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
		if !stale {
			t.Error("Expected stale quote when budget is exhausted")
		}
		if !q.Price.Equal(decimal.NewFromInt(100)) {
			t.Errorf("Expected cached price 100, got %s", q.Price)
		}
		if got := fetcher.callCount(); got != 1 {
			t.Errorf("Expected no upstream call past the budget, got %d total", got)
		}
	})

	t.Run("uncached symbol is unavailable", func(t *testing.T) {
		fetcher := &stubFetcher{price: decimal.NewFromInt(100)}
		limiter := quotecache.NewLimiter(1)
		cache := quotecache.New(fetcher, newStubStore(), limiter, 5*time.Minute, time.Second)

		if _, _, err := cache.Get(context.Background(), "AAPL"); err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
		_, _, err := cache.Get(context.Background(), "MSFT")
		if !errors.Is(err, apperrors.ErrQuoteUnavailable) {
			t.Errorf("Expected ErrQuoteUnavailable, got %v", err)
		}
	})

	t.Run("reset restores the budget", func(t *testing.T) {
		fetcher := &stubFetcher{price: decimal.NewFromInt(100)}
		limiter := quotecache.NewLimiter(1)
		cache := quotecache.New(fetcher, newStubStore(), limiter, 5*time.Minute, time.Second)

		if _, _, err := cache.Get(context.Background(), "AAPL"); err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
		limiter.Reset()
		if _, _, err := cache.Get(context.Background(), "MSFT"); err != nil {
			t.Fatalf("Get returned error after reset: %v", err)
		}
	})
}

func TestUpstreamFailureKeepsCachedQuote(t *testing.T) {
	fetcher := &stubFetcher{price: decimal.NewFromInt(100)}
	cache := quotecache.New(fetcher, newStubStore(), quotecache.NewLimiter(60), 10*time.Millisecond, time.Second)

	if _, _, err := cache.Get(context.Background(), "AAPL"); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	fetcher.err = errors.New("upstream down")
	q, stale, err := cache.Get(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Expected cached fallback, got error: %v", err)
	}
	if !stale {
		t.Error("Expected quote to be flagged stale after a failed refresh")
	}
	if !q.Price.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected cached price 100, got %s", q.Price)
	}
}

func TestUpstreamFailureWithoutCacheReturnsUnavailable(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("dial tcp: connection refused")}
	cache := quotecache.New(fetcher, newStubStore(), quotecache.NewLimiter(60), 5*time.Minute, time.Second)

	_, _, err := cache.Get(context.Background(), "AAPL")
	if !errors.Is(err, apperrors.ErrQuoteUnavailable) {
		t.Fatalf("Expected ErrQuoteUnavailable for uncached symbol with upstream down, got %v", err)
	}
}

func TestGetBatchMarksUnavailable(t *testing.T) {
	fetcher := &stubFetcher{price: decimal.NewFromInt(50)}
	limiter := quotecache.NewLimiter(1)
	cache := quotecache.New(fetcher, newStubStore(), limiter, 5*time.Minute, time.Second)

	results := cache.GetBatch(context.Background(), []string{"AAPL", "MSFT"})
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}

	available := 0
	unavailable := 0
	for _, res := range results {
		if res.Unavailable {
			unavailable++
		} else {
			available++
		}
	}
	if available != 1 || unavailable != 1 {
		t.Errorf("Expected 1 available and 1 unavailable with budget 1, got %d / %d", available, unavailable)
	}
}

func TestWarmStart(t *testing.T) {
	store := newStubStore()
	if err := store.Upsert(model.Quote{
		Symbol:    "AAPL",
		Price:     decimal.NewFromInt(90),
		FetchedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatal(err)
	}

	fetcher := &stubFetcher{price: decimal.NewFromInt(100)}
	cache := quotecache.New(fetcher, store, quotecache.NewLimiter(60), 5*time.Minute, time.Second)

	q, stale, err := cache.Get(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if stale {
		t.Error("Expected warm-started quote within TTL to be fresh")
	}
	if !q.Price.Equal(decimal.NewFromInt(90)) {
		t.Errorf("Expected persisted price 90, got %s", q.Price)
	}
	if got := fetcher.callCount(); got != 0 {
		t.Errorf("Expected no upstream call for warm-started symbol, got %d", got)
	}
}

func TestCleanup(t *testing.T) {
	store := newStubStore()
	old := model.Quote{Symbol: "OLD", Price: decimal.NewFromInt(1), FetchedAt: time.Now().UTC().Add(-48 * time.Hour)}
	recent := model.Quote{Symbol: "NEW", Price: decimal.NewFromInt(2), FetchedAt: time.Now().UTC()}
	for _, q := range []model.Quote{old, recent} {
		if err := store.Upsert(q); err != nil {
			t.Fatal(err)
		}
	}

	fetcher := &stubFetcher{price: decimal.NewFromInt(100)}
	cache := quotecache.New(fetcher, store, quotecache.NewLimiter(60), 5*time.Minute, time.Second)

	if evicted := cache.Cleanup(24 * time.Hour); evicted != 1 {
		t.Errorf("Expected 1 eviction, got %d", evicted)
	}

	stats := cache.Stats()
	if stats.Evictions != 1 {
		t.Errorf("Expected eviction counter 1, got %d", stats.Evictions)
	}
	if stats.Size != 1 {
		t.Errorf("Expected 1 remaining entry, got %d", stats.Size)
	}

	persisted, err := store.All()
	if err != nil {
		t.Fatal(err)
	}
	if len(persisted) != 1 || persisted[0].Symbol != "NEW" {
		t.Errorf("Expected only NEW to remain persisted, got %v", persisted)
	}
}

func TestHistoricalCloseConsumesBudget(t *testing.T) {
	fetcher := &stubFetcher{price: decimal.NewFromInt(123)}
	limiter := quotecache.NewLimiter(1)
	cache := quotecache.New(fetcher, newStubStore(), limiter, 5*time.Minute, time.Second)

	price, err := cache.HistoricalClose(context.Background(), "AAPL", time.Now().AddDate(0, 0, -7))
	if err != nil {
		t.Fatalf("HistoricalClose returned error: %v", err)
	}
	if !price.Equal(decimal.NewFromInt(123)) {
		t.Errorf("Expected close 123, got %s", price)
	}

	_, err = cache.HistoricalClose(context.Background(), "AAPL", time.Now().AddDate(0, 0, -7))
	if !errors.Is(err, apperrors.ErrRateLimited) {
		t.Errorf("Expected ErrRateLimited, got %v", err)
	}
}
