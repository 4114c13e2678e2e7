package metadata

import (
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
)

/*
Metadata Collected
- Fetch timestamps and HTTP status codes
- Cache lookup outcomes (hit / miss / stale)
- Exported artifact paths
- Scrape run summary

Determinism guarantees:
 - Metadata does not affect control flow
 - Errors do not reorder page scheduling
 - Output is stable given identical inputs

Metadata is write-only.
No component may read metadata to influence scrape decisions.
*/

/*
Recorder captures structured scrape events and emits them as JSON log
lines via log/slog.

It must not:
- perform I/O decisions
- affect control flow

Ordering guarantees:
- Events are recorded synchronously in the order they are received by a single worker.
- No global ordering across workers is guaranteed.
- Ordering is provided for debuggability, not causality.
*/
type Recorder struct {
	runId    string
	workerId string
	logger   *slog.Logger
}

// NewRecorder creates a recorder for one worker within a run.
// runId ties events from all workers of the same invocation together.
func NewRecorder(runId string, workerId string) Recorder {
	return Recorder{
		runId:    runId,
		workerId: workerId,
		logger:   slog.New(slog.NewJSONHandler(os.Stderr, nil)),
	}
}

// NewRunID returns a fresh identifier for a scrape invocation.
func NewRunID() string {
	return uuid.NewString()
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
	args := []any{
		slog.String("run_id", r.runId),
		slog.String("worker_id", r.workerId),
		slog.Time("observed_at", observedAt),
		slog.String("package", packageName),
		slog.String("action", action),
		slog.String("cause", cause.String()),
		slog.String("error", errorString),
	}
	for _, a := range attrs {
		args = append(args, slog.String(string(a.Key()), a.Value()))
	}
	r.logger.Error("scrape_error", args...)
}

func (r *Recorder) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	retryCount int,
	page int,
) {
	r.logger.Info("fetch",
		slog.String("run_id", r.runId),
		slog.String("worker_id", r.workerId),
		slog.String("url", fetchUrl),
		slog.Int("status", httpStatus),
		slog.Duration("duration", duration),
		slog.String("content_type", contentType),
		slog.Int("retries", retryCount),
		slog.Int("page", page),
	)
}

// RecordCacheLookup records the outcome of one cache store lookup.
// hit and stale mirror the store's Lookup result; a stale hit is a
// logical miss for hit-rate purposes, which is the store's concern,
// not the recorder's.
func (r *Recorder) RecordCacheLookup(key string, hit bool, stale bool) {
	r.logger.Debug("cache_lookup",
		slog.String("run_id", r.runId),
		slog.String("worker_id", r.workerId),
		slog.String("cache_key", key),
		slog.Bool("hit", hit),
		slog.Bool("stale", stale),
	)
}

func (r *Recorder) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {
	args := []any{
		slog.String("run_id", r.runId),
		slog.String("worker_id", r.workerId),
		slog.String("kind", string(kind)),
		slog.String("path", path),
	}
	for _, a := range attrs {
		args = append(args, slog.String(string(a.Key()), a.Value()))
	}
	r.logger.Info("artifact", args...)
}

/*
RecordFinalScrapeStats records a terminal, derived summary of a completed run.

Contract:
  - MUST be called exactly once per scrape execution.
  - MUST be called only after run termination
    (frontier exhausted or scheduler abort).
  - The provided stats MUST be derived from scheduler state,
    not accumulated incrementally via the recorder.
  - Recorded stats MUST NOT influence control flow or scheduling.
*/
func (r *Recorder) RecordFinalScrapeStats(
	totalPages int,
	totalListings int,
	totalErrors int,
	cacheHits int,
	cacheMisses int,
	duration time.Duration,
) {
	stats := scrapeStats{
		totalPages:    totalPages,
		totalListings: totalListings,
		totalErrors:   totalErrors,
		cacheHits:     cacheHits,
		cacheMisses:   cacheMisses,
		durationMs:    duration.Milliseconds(),
	}

	r.logger.Info("scrape_complete",
		slog.String("run_id", r.runId),
		slog.Int("total_pages", stats.totalPages),
		slog.Int("total_listings", stats.totalListings),
		slog.Int("total_errors", stats.totalErrors),
		slog.Int("cache_hits", stats.cacheHits),
		slog.Int("cache_misses", stats.cacheMisses),
		slog.Int64("duration_ms", stats.durationMs),
	)
}

type MetadataSink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)

	RecordFetch(
		fetchUrl string,
		httpStatus int,
		duration time.Duration,
		contentType string,
		retryCount int,
		page int,
	)

	RecordCacheLookup(key string, hit bool, stale bool)

	RecordArtifact(kind ArtifactKind, path string, attrs []Attribute)
}

type ScrapeFinalizer interface {
	RecordFinalScrapeStats(
		totalPages int,
		totalListings int,
		totalErrors int,
		cacheHits int,
		cacheMisses int,
		duration time.Duration,
	)
}

// NoopSink implements MetadataSink but does nothing.
// Scheduler (or tests) can decide whether to inject Recorder or NoopSink.
// Purpose is to keep metadata orthogonal.
type NoopSink struct{}

func (n *NoopSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
}

func (n *NoopSink) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	retryCount int,
	page int,
) {
}

func (n *NoopSink) RecordCacheLookup(key string, hit bool, stale bool) {}

func (n *NoopSink) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {}
