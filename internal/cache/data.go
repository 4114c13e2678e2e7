package cache

import "time"

// Entry is one persisted cache row. Entries are two-state: live until
// expiresAt, stale afterwards. The transition is one-directional and only
// a fresh Put reverses it.
type Entry struct {
	key       string
	payload   []byte
	createdAt time.Time
	expiresAt time.Time
	hitCount  int64
}

func (e *Entry) Key() string {
	return e.key
}

func (e *Entry) Payload() []byte {
	return e.payload
}

func (e *Entry) CreatedAt() time.Time {
	return e.createdAt
}

func (e *Entry) ExpiresAt() time.Time {
	return e.expiresAt
}

func (e *Entry) HitCount() int64 {
	return e.hitCount
}

// Lookup is the outcome of a single Get.
//
// found=false means no entry exists for the key.
// found=true, stale=true means an entry exists but its TTL elapsed; the
// payload is still returned so callers may opt into stale reuse, but the
// lookup counts as a miss.
type Lookup struct {
	payload []byte
	found   bool
	stale   bool
}

func (l *Lookup) Payload() []byte {
	return l.payload
}

func (l *Lookup) Found() bool {
	return l.found
}

func (l *Lookup) Stale() bool {
	return l.stale
}

// NewLookupForTest constructs a Lookup value for test packages that mock
// the store without access to unexported fields.
func NewLookupForTest(payload []byte, found bool, stale bool) Lookup {
	return Lookup{payload: payload, found: found, stale: stale}
}

// NewStatisticsForTest constructs a Statistics snapshot for test packages
// that mock the store without access to unexported fields.
func NewStatisticsForTest(entries int64, hits int64, misses int64, evicted int64) Statistics {
	return Statistics{entries: entries, hits: hits, misses: misses, evicted: evicted}
}

// Statistics is a point-in-time snapshot of store utilization.
// Entries is derived from the backing table at snapshot time; the counters
// run since store open (or the last ResetStats) and are not persisted.
type Statistics struct {
	entries int64
	hits    int64
	misses  int64
	evicted int64
}

func (s Statistics) Entries() int64 {
	return s.entries
}

func (s Statistics) Hits() int64 {
	return s.hits
}

func (s Statistics) Misses() int64 {
	return s.misses
}

func (s Statistics) Evicted() int64 {
	return s.evicted
}

// HitRatio returns hits/(hits+misses), or 0 when no lookups happened yet.
func (s Statistics) HitRatio() float64 {
	total := s.hits + s.misses
	if total == 0 {
		return 0
	}
	return float64(s.hits) / float64(total)
}
