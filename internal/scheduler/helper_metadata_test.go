package scheduler_test

import (
	"sync"
	"testing"
	"time"

	"github.com/danisworo/estate-scraper/internal/metadata"
)

// recordingSink captures cache lookup and error events for assertions.
// The remaining sink methods are accepted and dropped.
type recordingSink struct {
	mu      sync.Mutex
	lookups []recordedLookup
	errors  []recordedError
}

type recordedLookup struct {
	key   string
	hit   bool
	stale bool
}

type recordedError struct {
	packageName string
	cause       metadata.ErrorCause
	details     string
}

func newRecordingSink(t *testing.T) *recordingSink {
	t.Helper()
	return &recordingSink{}
}

func (r *recordingSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, recordedError{
		packageName: packageName,
		cause:       cause,
		details:     details,
	})
}

func (r *recordingSink) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	retryCount int,
	page int,
) {
}

func (r *recordingSink) RecordCacheLookup(key string, hit bool, stale bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups = append(r.lookups, recordedLookup{key: key, hit: hit, stale: stale})
}

func (r *recordingSink) RecordArtifact(kind metadata.ArtifactKind, path string, attrs []metadata.Attribute) {
}

func (r *recordingSink) recordedLookups() []recordedLookup {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]recordedLookup, len(r.lookups))
	copy(out, r.lookups)
	return out
}
