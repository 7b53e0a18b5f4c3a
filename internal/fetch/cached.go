package fetch

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wakti/wakti-nlp/internal/cache"
)

// maxParallelFetches bounds FetchMultiple.
const maxParallelFetches = 4

// CachedFetcher wraps URL fetching with a response cache.
type CachedFetcher struct {
	cache     cache.Cache
	options   *Options
	logger    *zap.Logger
	skipCache bool // For testing or forcing fresh fetches
}

// CachedFetcherConfig holds configuration for the cached fetcher.
type CachedFetcherConfig struct {
	SkipCache bool
	Options   *Options
	Logger    *zap.Logger
}

// NewCachedFetcher creates a new cached fetcher. A nil store disables caching.
func NewCachedFetcher(store cache.Cache, config *CachedFetcherConfig) *CachedFetcher {
	if config == nil {
		config = &CachedFetcherConfig{}
	}
	if config.Options == nil {
		config.Options = DefaultOptions()
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if store == nil {
		store = cache.Nop{}
	}
	return &CachedFetcher{
		cache:     store,
		options:   config.Options,
		logger:    config.Logger,
		skipCache: config.SkipCache,
	}
}

// CachedPage is a results page together with where it came from.
type CachedPage struct {
	*Page
	FromCache bool
}

func pageKey(urlStr string) string {
	return cache.Key("page", []byte(urlStr))
}

// Fetch retrieves a results page, using the cache when it holds a fresh copy.
// For HTML pages the result-list text is filled in before the page is stored.
func (f *CachedFetcher) Fetch(ctx context.Context, urlStr string) (*CachedPage, error) {
	key := pageKey(urlStr)

	if !f.skipCache {
		var cached Page
		ok, err := f.cache.Get(ctx, key, &cached)
		if err != nil {
			// A broken cache degrades to a live fetch.
			f.logger.Warn("page cache read failed", zap.String("url", urlStr), zap.Error(err))
		} else if ok {
			return &CachedPage{Page: &cached, FromCache: true}, nil
		}
	}

	page, err := Get(ctx, urlStr, f.options)
	if err != nil {
		return nil, err
	}

	if !page.IsJSON() {
		text, err := ResultsText(page.Body, DetectEngine(urlStr))
		if err != nil {
			return nil, &Error{URL: urlStr, Err: err}
		}
		page.Text = text
	}

	if err := f.cache.Set(ctx, key, page); err != nil {
		f.logger.Warn("page cache write failed", zap.String("url", urlStr), zap.Error(err))
	}

	return &CachedPage{Page: page, FromCache: false}, nil
}

// FetchMultiple fetches multiple URLs concurrently with caching.
// Returns results in the same order as input URLs. Failed fetches are nil in the result slice.
func (f *CachedFetcher) FetchMultiple(ctx context.Context, urls []string) ([]*CachedPage, []error) {
	results := make([]*CachedPage, len(urls))
	errs := make([]error, len(urls))

	var g errgroup.Group
	g.SetLimit(maxParallelFetches)
	for i, u := range urls {
		g.Go(func() error {
			results[i], errs[i] = f.Fetch(ctx, u)
			return nil
		})
	}
	_ = g.Wait()

	return results, errs
}

// InvalidateCache drops the cached copy of a URL, forcing a re-fetch on next request.
func (f *CachedFetcher) InvalidateCache(ctx context.Context, urlStr string) error {
	if err := f.cache.Delete(ctx, pageKey(urlStr)); err != nil {
		return fmt.Errorf("failed to invalidate %s: %w", urlStr, err)
	}
	return nil
}
