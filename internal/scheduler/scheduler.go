package scheduler

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danisworo/estate-scraper/internal/cache"
	"github.com/danisworo/estate-scraper/internal/config"
	"github.com/danisworo/estate-scraper/internal/extractor"
	"github.com/danisworo/estate-scraper/internal/fetcher"
	"github.com/danisworo/estate-scraper/internal/frontier"
	"github.com/danisworo/estate-scraper/internal/metadata"
	"github.com/danisworo/estate-scraper/internal/model"
	"github.com/danisworo/estate-scraper/internal/storage"
	"github.com/danisworo/estate-scraper/pkg/failure"
	"github.com/danisworo/estate-scraper/pkg/fileutil"
	"github.com/danisworo/estate-scraper/pkg/hashutil"
	"github.com/danisworo/estate-scraper/pkg/limiter"
	"github.com/danisworo/estate-scraper/pkg/retry"
	"github.com/danisworo/estate-scraper/pkg/timeutil"
)

/*
 Scheduler is the sole control-plane authority of the scrape.

 Determinism and admission guarantees:
 - Scheduler is the ONLY component allowed to decide whether a page
   enters a site's frontier.
 - Cache lookups, fetches and extraction may detect and classify
   failure, but must never decide retry, continuation, or abortion.
 - The cache store treats payloads as opaque bytes; the scheduler owns
   the page snapshot codec.

 Stale-reuse policy:
 - A stale cache entry is a miss for the store, but the scheduler keeps
   its payload as a fallback: when the refetch of that page fails, the
   stale snapshot is used instead of dropping the page.

 Metadata emission is observational only and MUST NOT influence
 scheduling, retries, or scrape termination.

 Scheduler Responsibilities:
 - Coordinate scrape lifecycle across sites
 - Enforce the per-site page cap through the frontier
 - Aggregate scrape statistics
 - The sole authority on:
	- retry
	- continue
	- abort
*/

type Scheduler struct {
	cfg             config.Config
	metadataSink    metadata.MetadataSink
	scrapeFinalizer metadata.ScrapeFinalizer
	store           cache.Store
	pageFetcher     fetcher.Fetcher
	siteExtractor   extractor.SiteExtractor
	storageSink     storage.Sink
	rateLimiter     limiter.RateLimiter

	mu           sync.Mutex
	listings     []model.Listing
	writeResults []storage.WriteResult

	totalPages  atomic.Int64
	totalErrors atomic.Int64
}

func NewScheduler(cfg config.Config) (*Scheduler, error) {
	recorder := metadata.NewRecorder(metadata.NewRunID(), "scheduler")

	if err := fileutil.EnsureDir(cfg.CacheDir()); err != nil {
		return nil, err
	}
	store, err := cache.NewSQLiteStore(
		filepath.Join(cfg.CacheDir(), "cache.db"),
		cfg.CacheTTL(),
		&recorder,
	)
	if err != nil {
		return nil, err
	}

	pageFetcher := fetcher.NewPageFetcher(&recorder, cfg.Timeout())
	siteExtractor := extractor.NewListingExtractor(&recorder)

	rateLimiter := limiter.NewConcurrentRateLimiter(timeutil.NewBackoffParam(
		cfg.BackoffInitialDuration(),
		cfg.BackoffMultiplier(),
		cfg.BackoffMaxDuration(),
	))
	rateLimiter.SetBaseDelay(cfg.BaseDelay())
	rateLimiter.SetJitter(cfg.Jitter())
	rateLimiter.SetRandomSeed(cfg.RandomSeed())

	return &Scheduler{
		cfg:             cfg,
		metadataSink:    &recorder,
		scrapeFinalizer: &recorder,
		store:           store,
		pageFetcher:     &pageFetcher,
		siteExtractor:   &siteExtractor,
		storageSink:     newSinkForFormat(cfg.OutputFormat(), &recorder),
		rateLimiter:     rateLimiter,
	}, nil
}

// NewSchedulerWithDeps creates a Scheduler with injected dependencies for testing.
// This constructor allows tests to provide mock implementations of every port
// to verify behavior without relying on real infrastructure.
func NewSchedulerWithDeps(
	cfg config.Config,
	scrapeFinalizer metadata.ScrapeFinalizer,
	metadataSink metadata.MetadataSink,
	store cache.Store,
	pageFetcher fetcher.Fetcher,
	siteExtractor extractor.SiteExtractor,
	storageSink storage.Sink,
	rateLimiter limiter.RateLimiter,
) *Scheduler {
	return &Scheduler{
		cfg:             cfg,
		metadataSink:    metadataSink,
		scrapeFinalizer: scrapeFinalizer,
		store:           store,
		pageFetcher:     pageFetcher,
		siteExtractor:   siteExtractor,
		storageSink:     storageSink,
		rateLimiter:     rateLimiter,
	}
}

func newSinkForFormat(format string, metadataSink metadata.MetadataSink) storage.Sink {
	switch format {
	case "json":
		sink := storage.NewJSONSink(metadataSink)
		return &sink
	case "sqlite":
		sink := storage.NewSQLiteSink(metadataSink)
		return &sink
	default:
		sink := storage.NewCSVSink(metadataSink)
		return &sink
	}
}

// ExecuteScrape runs the full scrape: every configured site, page by
// page, through cache, fetch, extraction and export.
func (s *Scheduler) ExecuteScrape(ctx context.Context) (ScrapeExecution, error) {
	scrapeStartTime := time.Now()

	// Ensure final stats are recorded even if errors occur
	defer func() {
		scrapeDuration := time.Since(scrapeStartTime)
		var cacheHits, cacheMisses int
		if stats, statsErr := s.store.Stats(); statsErr == nil {
			cacheHits = int(stats.Hits())
			cacheMisses = int(stats.Misses())
		}
		s.mu.Lock()
		totalListings := len(s.listings)
		s.mu.Unlock()
		s.scrapeFinalizer.RecordFinalScrapeStats(
			int(s.totalPages.Load()),
			totalListings,
			int(s.totalErrors.Load()),
			cacheHits,
			cacheMisses,
			scrapeDuration,
		)
	}()

	criteria := s.cfg.Criteria()
	if err := criteria.Validate(); err != nil {
		s.metadataSink.RecordError(
			time.Now(),
			"scheduler",
			"Scheduler.ExecuteScrape",
			metadata.CauseInvalidInput,
			err.Error(),
			nil,
		)
		return ScrapeExecution{}, err
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.cfg.Concurrency())
	for _, site := range s.cfg.Sites() {
		group.Go(func() error {
			return s.scrapeSite(groupCtx, criteria, site)
		})
	}
	if err := group.Wait(); err != nil {
		return ScrapeExecution{}, err
	}

	// eviction runs after scraping so stale payloads stay available as
	// fetch-failure fallbacks during the run
	if s.cfg.EvictStale() {
		if _, evictErr := s.store.EvictStale(); evictErr != nil {
			s.totalErrors.Add(1)
		}
	}

	s.mu.Lock()
	listings := make([]model.Listing, len(s.listings))
	copy(listings, s.listings)
	s.mu.Unlock()

	// worker completion order is nondeterministic; the export is not
	sort.Slice(listings, func(i, j int) bool {
		if listings[i].SourceSite != listings[j].SourceSite {
			return listings[i].SourceSite < listings[j].SourceSite
		}
		return listings[i].ID < listings[j].ID
	})

	execution := ScrapeExecution{
		Listings:    listings,
		TotalPages:  int(s.totalPages.Load()),
		TotalErrors: int(s.totalErrors.Load()),
	}

	if s.cfg.DryRun() {
		return execution, nil
	}

	writeResult, writeErr := s.storageSink.Write(
		s.cfg.OutputDir(),
		criteria,
		listings,
		hashutil.HashAlgoBLAKE3,
	)
	if writeErr != nil {
		s.totalErrors.Add(1)
		execution.TotalErrors = int(s.totalErrors.Load())
		return execution, writeErr
	}

	s.mu.Lock()
	s.writeResults = append(s.writeResults, writeResult)
	execution.WriteResults = make([]storage.WriteResult, len(s.writeResults))
	copy(execution.WriteResults, s.writeResults)
	s.mu.Unlock()

	return execution, nil
}

// Store exposes the cache store for observability surfaces that read
// its statistics.
func (s *Scheduler) Store() cache.Store {
	return s.store
}

// Close releases the cache store's backing database.
func (s *Scheduler) Close() error {
	type closer interface {
		Close() failure.ClassifiedError
	}
	if c, ok := s.store.(closer); ok {
		if err := c.Close(); err != nil {
			return err
		}
	}
	return nil
}

// scrapeSite walks one portal's result pages in order. A page failure
// without a stale fallback ends that site's pagination; other sites
// are unaffected.
func (s *Scheduler) scrapeSite(ctx context.Context, criteria model.SearchCriteria, site string) error {
	siteFrontier := frontier.NewPageFrontier(s.cfg.MaxPages())

	if _, err := siteFrontier.Admit(criteria, site, 1); err != nil {
		s.recordSchedulerError(metadata.CauseInvalidInput, err.Error(), site)
		s.totalErrors.Add(1)
		return nil
	}

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		request, ok := siteFrontier.Next()
		if !ok {
			return nil
		}

		snapshot, ok := s.processPage(ctx, request)
		if !ok {
			return nil
		}

		s.totalPages.Add(1)
		s.appendListings(snapshot.Listings)

		if snapshot.HasNextPage {
			if _, err := siteFrontier.Admit(criteria, site, request.Page()+1); err != nil {
				s.recordSchedulerError(metadata.CauseInvalidInput, err.Error(), site)
				s.totalErrors.Add(1)
				return nil
			}
		}
	}
}

// processPage resolves one page request: fresh cache hit, refetch, or
// stale fallback. The second return value reports whether a usable
// snapshot was produced.
func (s *Scheduler) processPage(ctx context.Context, request frontier.PageRequest) (pageSnapshot, bool) {
	key := request.Fingerprint()

	var stalePayload []byte
	lookup, lookupErr := s.store.Get(key)
	if lookupErr != nil {
		// store persistence failure degrades to a plain miss
		s.totalErrors.Add(1)
	} else {
		s.metadataSink.RecordCacheLookup(key, lookup.Found() && !lookup.Stale(), lookup.Stale())

		if lookup.Found() && !lookup.Stale() {
			snapshot, decodeErr := decodePage(lookup.Payload())
			if decodeErr == nil {
				return snapshot, true
			}
			// poisoned payload: drop it and refetch
			s.recordSchedulerError(metadata.CauseCacheFailure, decodeErr.Error(), request.Site())
			s.totalErrors.Add(1)
			if _, invalidateErr := s.store.Invalidate(key); invalidateErr != nil {
				s.totalErrors.Add(1)
			}
		}
		if lookup.Found() && lookup.Stale() {
			stalePayload = lookup.Payload()
		}
	}

	snapshot, fetchErr := s.fetchPage(ctx, request)
	if fetchErr == nil {
		return snapshot, true
	}
	s.totalErrors.Add(1)

	// the fetch failed; a stale snapshot beats no snapshot
	if stalePayload != nil {
		staleSnapshot, decodeErr := decodePage(stalePayload)
		if decodeErr == nil {
			return staleSnapshot, true
		}
		s.recordSchedulerError(metadata.CauseCacheFailure, decodeErr.Error(), request.Site())
		s.totalErrors.Add(1)
	}

	return pageSnapshot{}, false
}

// fetchPage performs the paced fetch-extract-store path for a page.
func (s *Scheduler) fetchPage(ctx context.Context, request frontier.PageRequest) (pageSnapshot, failure.ClassifiedError) {
	pageURL := request.PageURL()
	host := pageURL.Host

	if err := s.waitForHost(ctx, host); err != nil {
		return pageSnapshot{}, err
	}
	s.rateLimiter.MarkLastFetchAsNow(host)

	fetchResult, fetchErr := s.pageFetcher.Fetch(
		ctx,
		request.Page(),
		fetcher.NewFetchParam(pageURL, s.cfg.UserAgent()),
		s.retryParam(),
	)
	if fetchErr != nil {
		s.rateLimiter.Backoff(host)
		return pageSnapshot{}, fetchErr
	}
	s.rateLimiter.ResetBackoff(host)

	extraction, extractErr := s.siteExtractor.Extract(pageURL, request.Site(), fetchResult.Body())
	if extractErr != nil {
		return pageSnapshot{}, extractErr
	}

	snapshot := pageSnapshot{
		Listings:    extraction.Listings,
		HasNextPage: extraction.HasNextPage,
	}

	payload, encodeErr := encodePage(snapshot.Listings, snapshot.HasNextPage)
	if encodeErr != nil {
		// the page is still usable even if it cannot be cached
		s.recordSchedulerError(metadata.CauseCacheFailure, encodeErr.Error(), request.Site())
		s.totalErrors.Add(1)
		return snapshot, nil
	}
	if putErr := s.store.Put(request.Fingerprint(), payload); putErr != nil {
		s.totalErrors.Add(1)
	}

	return snapshot, nil
}

// waitForHost blocks for the limiter-resolved delay, honoring
// cancellation.
func (s *Scheduler) waitForHost(ctx context.Context, host string) failure.ClassifiedError {
	delay := s.rateLimiter.ResolveDelay(host)
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return &fetcher.FetchError{
			Message:   ctx.Err().Error(),
			Retryable: false,
			Cause:     fetcher.ErrCauseTimeout,
		}
	case <-timer.C:
		return nil
	}
}

func (s *Scheduler) retryParam() retry.RetryParam {
	return retry.NewRetryParam(
		s.cfg.BaseDelay(),
		s.cfg.Jitter(),
		s.cfg.RandomSeed(),
		s.cfg.MaxAttempt(),
		timeutil.NewBackoffParam(
			s.cfg.BackoffInitialDuration(),
			s.cfg.BackoffMultiplier(),
			s.cfg.BackoffMaxDuration(),
		),
	)
}

func (s *Scheduler) appendListings(listings []model.Listing) {
	if len(listings) == 0 {
		return
	}
	s.mu.Lock()
	s.listings = append(s.listings, listings...)
	s.mu.Unlock()
}

func (s *Scheduler) recordSchedulerError(cause metadata.ErrorCause, details string, site string) {
	s.metadataSink.RecordError(
		time.Now(),
		"scheduler",
		"Scheduler.ExecuteScrape",
		cause,
		details,
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrSite, site),
		},
	)
}
