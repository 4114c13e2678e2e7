package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danisworo/estate-scraper/internal/metadata"
	"github.com/danisworo/estate-scraper/pkg/failure"
)

/*
Responsibilities
- Keep at most one persisted copy of a fetched result per fingerprint
- Hide staleness from readers (a stale entry is never a hit)
- Report utilization metrics

Staleness Semantics
- An entry is stale iff now >= expires_at
- Staleness is detected lazily at read time; there is no background sweeper
- EvictStale is the only operation that physically deletes non-replaced entries
- A stale lookup still returns the payload so callers can opt into stale
  reuse when a live fetch fails; that policy belongs to the caller, not here

The store never inspects payload contents; payloads are opaque bytes whose
serialization contract is owned by the caller.
*/

// Store is the port the scraping orchestration consumes.
// Operations carry no context or timeout parameter; callers that need a
// bound apply their own around the call.
type Store interface {
	Get(key string) (Lookup, failure.ClassifiedError)
	Put(key string, payload []byte) failure.ClassifiedError
	PutTTL(key string, payload []byte, ttl time.Duration) failure.ClassifiedError
	EvictStale() (int64, failure.ClassifiedError)
	Invalidate(key string) (bool, failure.ClassifiedError)
	Stats() (Statistics, failure.ClassifiedError)
	ResetStats()
}

// SQLiteStore persists entries in a single-file embedded database.
// Safe for concurrent use: per-key linearizability comes from
// single-statement writes, the running counters from atomics.
type SQLiteStore struct {
	db           *sql.DB
	defaultTTL   time.Duration
	metadataSink metadata.MetadataSink
	clock        func() time.Time

	// running counters, owned by this instance; reset on process restart
	hits    atomic.Int64
	misses  atomic.Int64
	evicted atomic.Int64
}

const schema = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key        TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	created_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL,
	hit_count  INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_cache_entries_expires_at ON cache_entries(expires_at);
`

// NewSQLiteStore opens (creating if needed) the cache database at dbPath.
// defaultTTL applies to Put; it must be strictly positive.
//
// Counters start at zero on every open: statistics are recomputed from the
// entry table, not persisted across restarts.
func NewSQLiteStore(
	dbPath string,
	defaultTTL time.Duration,
	metadataSink metadata.MetadataSink,
) (*SQLiteStore, failure.ClassifiedError) {
	if defaultTTL <= 0 {
		return nil, &CacheError{
			Message:   fmt.Sprintf("default TTL must be positive, got %v", defaultTTL),
			Retryable: false,
			Kind:      ErrKindInvalidArgument,
		}
	}

	dsn := fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		dbPath,
	)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, &CacheError{
			Message:   fmt.Sprintf("failed to open cache database: %v", err),
			Retryable: false,
			Kind:      ErrKindIOFailure,
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, &CacheError{
			Message:   fmt.Sprintf("failed to initialize cache schema: %v", err),
			Retryable: false,
			Kind:      ErrKindIOFailure,
		}
	}

	return &SQLiteStore{
		db:           db,
		defaultTTL:   defaultTTL,
		metadataSink: metadataSink,
		clock:        time.Now,
	}, nil
}

// Get looks up the entry for key.
//
// Exactly one running counter moves per call: a fresh hit increments the
// hit counter (and the row's hit_count, in the same statement); a missing
// or stale entry increments the miss counter. Stale lookups still carry
// the payload.
func (s *SQLiteStore) Get(key string) (Lookup, failure.ClassifiedError) {
	if err := validateKey(key); err != nil {
		return Lookup{}, err
	}

	for {
		now := s.clock().UnixNano()

		// Fresh path: bump the row's hit_count and read the payload in one
		// statement so a concurrent Put can never interleave between them.
		var payload []byte
		err := s.db.QueryRow(
			`UPDATE cache_entries SET hit_count = hit_count + 1
			 WHERE key = ? AND expires_at > ?
			 RETURNING payload`,
			key, now,
		).Scan(&payload)
		if err == nil {
			s.hits.Add(1)
			return Lookup{payload: payload, found: true, stale: false}, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return Lookup{}, s.ioError("SQLiteStore.Get", err)
		}

		// No fresh row: distinguish absent from stale.
		var expiresAt int64
		err = s.db.QueryRow(
			`SELECT payload, expires_at FROM cache_entries WHERE key = ?`,
			key,
		).Scan(&payload, &expiresAt)
		if errors.Is(err, sql.ErrNoRows) {
			s.misses.Add(1)
			return Lookup{found: false}, nil
		}
		if err != nil {
			return Lookup{}, s.ioError("SQLiteStore.Get", err)
		}

		if expiresAt <= now {
			s.misses.Add(1)
			return Lookup{payload: payload, found: true, stale: true}, nil
		}

		// A concurrent Put landed between the two statements and the entry
		// is fresh again; take the fresh path on the next iteration.
	}
}

// Put creates or replaces the entry for key using the store-wide TTL.
func (s *SQLiteStore) Put(key string, payload []byte) failure.ClassifiedError {
	return s.PutTTL(key, payload, s.defaultTTL)
}

// PutTTL creates or replaces the entry for key with an explicit TTL.
// Replacement resets created_at and hit_count. The upsert is a single
// statement: a failed write leaves any prior entry unchanged.
func (s *SQLiteStore) PutTTL(key string, payload []byte, ttl time.Duration) failure.ClassifiedError {
	if err := validateKey(key); err != nil {
		return err
	}
	if ttl <= 0 {
		return &CacheError{
			Message:   fmt.Sprintf("TTL must be positive, got %v", ttl),
			Retryable: false,
			Kind:      ErrKindInvalidArgument,
		}
	}

	now := s.clock()
	_, err := s.db.Exec(
		`INSERT INTO cache_entries (key, payload, created_at, expires_at, hit_count)
		 VALUES (?, ?, ?, ?, 0)
		 ON CONFLICT(key) DO UPDATE SET
			payload    = excluded.payload,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at,
			hit_count  = 0`,
		key, payload, now.UnixNano(), now.Add(ttl).UnixNano(),
	)
	if err != nil {
		return s.ioError("SQLiteStore.PutTTL", err)
	}
	return nil
}

// EvictStale removes every entry whose TTL elapsed at call time and
// returns the number removed. The evicted counter moves only on full
// success; a failed delete leaves it untouched.
func (s *SQLiteStore) EvictStale() (int64, failure.ClassifiedError) {
	now := s.clock().UnixNano()

	result, err := s.db.Exec(
		`DELETE FROM cache_entries WHERE expires_at <= ?`, now,
	)
	if err != nil {
		return 0, s.ioError("SQLiteStore.EvictStale", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, s.ioError("SQLiteStore.EvictStale", err)
	}

	s.evicted.Add(removed)
	return removed, nil
}

// Invalidate removes the entry for key regardless of staleness and
// reports whether one existed. Used when the caller knows the underlying
// source changed.
func (s *SQLiteStore) Invalidate(key string) (bool, failure.ClassifiedError) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	result, err := s.db.Exec(`DELETE FROM cache_entries WHERE key = ?`, key)
	if err != nil {
		return false, s.ioError("SQLiteStore.Invalidate", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return false, s.ioError("SQLiteStore.Invalidate", err)
	}
	return removed > 0, nil
}

// Inspect returns the persisted entry for key as stored, with its raw
// creation and expiry times, and reports whether one exists. Unlike Get
// it never moves a counter or the row's hit_count, and it returns stale
// rows as-is. Get is the operational read path; Inspect is for cache
// maintenance tooling and tests asserting on row state.
func (s *SQLiteStore) Inspect(key string) (Entry, bool, failure.ClassifiedError) {
	if err := validateKey(key); err != nil {
		return Entry{}, false, err
	}

	var payload []byte
	var createdAt, expiresAt, hitCount int64
	err := s.db.QueryRow(
		`SELECT payload, created_at, expires_at, hit_count
		 FROM cache_entries WHERE key = ?`,
		key,
	).Scan(&payload, &createdAt, &expiresAt, &hitCount)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, s.ioError("SQLiteStore.Inspect", err)
	}

	return Entry{
		key:       key,
		payload:   payload,
		createdAt: time.Unix(0, createdAt),
		expiresAt: time.Unix(0, expiresAt),
		hitCount:  hitCount,
	}, true, nil
}

// Stats returns a point-in-time snapshot: the live entry count from the
// table plus the running counters. It does not mutate state.
func (s *SQLiteStore) Stats() (Statistics, failure.ClassifiedError) {
	var entries int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM cache_entries`).Scan(&entries); err != nil {
		return Statistics{}, s.ioError("SQLiteStore.Stats", err)
	}

	return Statistics{
		entries: entries,
		hits:    s.hits.Load(),
		misses:  s.misses.Load(),
		evicted: s.evicted.Load(),
	}, nil
}

// ResetStats zeroes the running hit/miss/eviction counters without
// touching entries.
func (s *SQLiteStore) ResetStats() {
	s.hits.Store(0)
	s.misses.Store(0)
	s.evicted.Store(0)
}

// Close releases the backing database. The store must not be used after.
func (s *SQLiteStore) Close() failure.ClassifiedError {
	if err := s.db.Close(); err != nil {
		return &CacheError{
			Message:   fmt.Sprintf("failed to close cache database: %v", err),
			Retryable: false,
			Kind:      ErrKindIOFailure,
		}
	}
	return nil
}

// SetClockForTest replaces the store's time source so tests can simulate
// TTL expiry without sleeping.
func (s *SQLiteStore) SetClockForTest(clock func() time.Time) {
	s.clock = clock
}

func (s *SQLiteStore) ioError(action string, err error) *CacheError {
	cacheErr := &CacheError{
		Message:   err.Error(),
		Retryable: true,
		Kind:      ErrKindIOFailure,
	}
	s.metadataSink.RecordError(
		time.Now(),
		"cache",
		action,
		mapCacheErrorToMetadataCause(cacheErr),
		cacheErr.Error(),
		nil,
	)
	return cacheErr
}

func validateKey(key string) failure.ClassifiedError {
	if key == "" {
		return &CacheError{
			Message:   "key must not be empty",
			Retryable: false,
			Kind:      ErrKindInvalidArgument,
		}
	}
	return nil
}
