package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/outreach-agent/internal/db"
)

// CachedFetcher layers the crawled-page cache over plain URL fetching.
// Research sessions hit the same company sites across campaigns, so a
// fresh cache entry saves both the request and a re-parse.
type CachedFetcher struct {
	db        *db.DB
	options   *Options
	cacheTTL  time.Duration
	skipCache bool // bypass reads, used to force live fetches
}

// CachedFetcherConfig tunes cache behavior per fetcher.
type CachedFetcherConfig struct {
	CacheTTL  time.Duration
	SkipCache bool
	Options   *Options
}

// DefaultCachedFetcherConfig is the standard research configuration.
func DefaultCachedFetcherConfig() *CachedFetcherConfig {
	return &CachedFetcherConfig{
		CacheTTL: db.DefaultPageCacheTTL,
		Options:  DefaultOptions(),
	}
}

// NewCachedFetcher creates a cached fetcher. A nil config, or a config
// with zero values, is filled in from the defaults. A nil database is
// allowed and degrades the fetcher to plain uncached fetching.
func NewCachedFetcher(database *db.DB, config *CachedFetcherConfig) *CachedFetcher {
	if config == nil {
		config = DefaultCachedFetcherConfig()
	}
	f := &CachedFetcher{
		db:        database,
		options:   config.Options,
		cacheTTL:  config.CacheTTL,
		skipCache: config.SkipCache,
	}
	if f.options == nil {
		f.options = DefaultOptions()
	}
	if f.cacheTTL == 0 {
		f.cacheTTL = db.DefaultPageCacheTTL
	}
	return f
}

// CachedResult is a Result plus where it came from.
type CachedResult struct {
	*Result
	FromCache bool
	PageID    uuid.UUID // row ID in the crawled-page cache, Nil if not stored
}

// Fetch retrieves a URL, serving a fresh cache entry when one exists.
func (f *CachedFetcher) Fetch(ctx context.Context, urlStr string) (*CachedResult, error) {
	return f.FetchWithDomain(ctx, urlStr, nil)
}

// FetchWithDomain retrieves a URL and, on a cache miss, stores the page
// under the given company domain so later research on the same prospect
// finds it. Fetch failures are recorded for backoff; a URL that has
// failed permanently or is still backing off is refused outright.
func (f *CachedFetcher) FetchWithDomain(ctx context.Context, urlStr string, companyDomain *string) (*CachedResult, error) {
	if cached, err := f.fromCache(ctx, urlStr); cached != nil || err != nil {
		return cached, err
	}

	result, err := URL(ctx, urlStr, f.options)
	if err != nil {
		if f.db != nil {
			status := 0
			if result != nil {
				status = result.StatusCode
			}
			_ = f.db.RecordFailedFetch(ctx, urlStr, status, err.Error())
		}
		return nil, err
	}

	kind := ClassifyPageKind(urlStr)
	result.Text, _ = ExtractMainText(result.HTML, KindContentSelectors(kind), CompanyNoiseSelectors()...)

	return &CachedResult{
		Result: result,
		PageID: f.cachePage(ctx, urlStr, companyDomain, kind, result),
	}, nil
}

// fromCache consults the skip list and then the page cache. It reports
// (nil, nil) on a plain miss so the caller falls through to a live fetch.
func (f *CachedFetcher) fromCache(ctx context.Context, urlStr string) (*CachedResult, error) {
	if f.skipCache || f.db == nil {
		return nil, nil
	}

	shouldSkip, reason, err := f.db.ShouldSkipURL(ctx, urlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to check skip status: %w", err)
	}
	if shouldSkip {
		return nil, &Error{URL: urlStr, Message: fmt.Sprintf("URL skipped: %s", reason)}
	}

	cached, err := f.db.GetFreshCrawledPage(ctx, urlStr, f.cacheTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to check cache: %w", err)
	}
	if cached == nil {
		return nil, nil
	}

	return &CachedResult{
		Result: &Result{
			URL:        cached.URL,
			HTML:       deref(cached.RawHTML),
			Text:       deref(cached.ParsedText),
			StatusCode: deref(cached.HTTPStatus),
		},
		FromCache: true,
		PageID:    cached.ID,
	}, nil
}

// cachePage writes a successful fetch into the page cache and returns the
// stored row's ID. A cache write failure is swallowed: the caller already
// has the content, so losing the cache entry only costs a future re-fetch.
func (f *CachedFetcher) cachePage(ctx context.Context, urlStr string, companyDomain *string, kind PageKind, result *Result) uuid.UUID {
	if f.db == nil {
		return uuid.Nil
	}

	pageKind := string(kind)
	page := &db.CrawledPage{
		CompanyDomain: companyDomain,
		URL:           urlStr,
		PageKind:      &pageKind,
		RawHTML:       &result.HTML,
		ParsedText:    &result.Text,
		HTTPStatus:    &result.StatusCode,
		FetchStatus:   db.FetchStatusSuccess,
	}
	if err := f.db.UpsertCrawledPage(ctx, page); err != nil {
		return uuid.Nil
	}
	return page.ID
}

// FetchMultiple fetches URLs concurrently, a few at a time so a long
// research target list does not hammer one small company site. Results
// and errors are parallel slices in input order; a failed fetch leaves a
// nil result and its error at the matching index.
func (f *CachedFetcher) FetchMultiple(ctx context.Context, urls []string) ([]*CachedResult, []error) {
	results := make([]*CachedResult, len(urls))
	errs := make([]error, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, u := range urls {
		g.Go(func() error {
			results[i], errs[i] = f.Fetch(gctx, u)
			return nil
		})
	}
	_ = g.Wait()

	return results, errs
}

// InvalidateCache backdates a cached page's expiry so the next fetch goes
// to the live site.
func (f *CachedFetcher) InvalidateCache(ctx context.Context, urlStr string) error {
	if f.db == nil {
		return nil
	}

	page, err := f.db.GetCrawledPageByURL(ctx, urlStr)
	if err != nil || page == nil {
		return err
	}

	past := time.Now().Add(-time.Hour)
	page.ExpiresAt = &past
	return f.db.UpsertCrawledPage(ctx, page)
}

// deref reads an optional database column, yielding the zero value for
// NULL.
func deref[T any](p *T) (v T) {
	if p != nil {
		v = *p
	}
	return v
}
