package scheduler_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/danisworo/estate-scraper/internal/config"
	"github.com/danisworo/estate-scraper/internal/metadata"
	"github.com/danisworo/estate-scraper/internal/model"
	"github.com/danisworo/estate-scraper/internal/scheduler"
)

// createSchedulerForTest creates a scheduler with test-specific initialization
// that allows testing scheduler in isolation
func createSchedulerForTest(
	t *testing.T,
	cfg config.Config,
	mockFinalizer *mockFinalizer,
	metadataSink metadata.MetadataSink,
	mockStore *storeMock,
	mockFetcher *fetcherMock,
	mockExtractor *extractorMock,
	mockStorage *storageSinkMock,
	mockLimiter *rateLimiterMock,
) *scheduler.Scheduler {
	t.Helper()
	return scheduler.NewSchedulerWithDeps(
		cfg,
		mockFinalizer,
		metadataSink,
		mockStore,
		mockFetcher,
		mockExtractor,
		mockStorage,
		mockLimiter,
	)
}

// buildConfigForTest returns a built config with politeness delays zeroed
// so tests never sleep.
func buildConfigForTest(t *testing.T, sites []string) config.Config {
	t.Helper()
	cfg, err := config.WithDefault("Austin, TX").
		WithSites(sites).
		WithMaxPages(5).
		WithBaseDelay(0).
		WithJitter(0).
		WithBackoffInitialDuration(time.Millisecond).
		WithOutputDir(t.TempDir()).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return cfg
}

// encodeSnapshotForTest produces a cache payload in the scheduler's page
// snapshot wire format.
func encodeSnapshotForTest(t *testing.T, listings []model.Listing, hasNextPage bool) []byte {
	t.Helper()
	payload, err := json.Marshal(struct {
		Listings    []model.Listing `json:"listings"`
		HasNextPage bool            `json:"hasNextPage"`
	}{Listings: listings, HasNextPage: hasNextPage})
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	return payload
}

// mockFinalizer is a test double that captures final scrape statistics
type mockFinalizer struct {
	recordedStats *capturedStats
	callCount     int
}

type capturedStats struct {
	totalPages    int
	totalListings int
	totalErrors   int
	cacheHits     int
	cacheMisses   int
	duration      time.Duration
}

func newMockFinalizer(t *testing.T) *mockFinalizer {
	t.Helper()
	return &mockFinalizer{}
}

func (m *mockFinalizer) RecordFinalScrapeStats(
	totalPages int,
	totalListings int,
	totalErrors int,
	cacheHits int,
	cacheMisses int,
	duration time.Duration,
) {
	m.callCount++
	m.recordedStats = &capturedStats{
		totalPages:    totalPages,
		totalListings: totalListings,
		totalErrors:   totalErrors,
		cacheHits:     cacheHits,
		cacheMisses:   cacheMisses,
		duration:      duration,
	}
}

// listingForTest builds a minimal listing with a stable identity.
func listingForTest(id string, site string, address string) model.Listing {
	return model.Listing{
		ID:         id,
		Address:    address,
		City:       "Austin",
		State:      "TX",
		Price:      450000,
		SourceSite: site,
	}
}
