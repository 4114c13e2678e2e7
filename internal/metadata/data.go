package metadata

/*
scrapeStats
  - Represents a terminal, derived summary of a completed scrape run
  - Contains only aggregate counts and durations
  - Is computed by the scheduler after run termination
  - Is recorded exactly once
  - Must not influence scheduling, retries, or run termination
*/
type scrapeStats struct {
	totalPages    int
	totalListings int
	totalErrors   int
	cacheHits     int
	cacheMisses   int
	durationMs    int64
}

type ArtifactKind string

const (
	ArtifactCSV    ArtifactKind = "csv"
	ArtifactJSON   ArtifactKind = "json"
	ArtifactSQLite ArtifactKind = "sqlite"
)

type AttrKey string

const (
	AttrURL       AttrKey = "url"
	AttrCacheKey  AttrKey = "cache_key"
	AttrWritePath AttrKey = "write_path"
	AttrSite      AttrKey = "site"
	AttrMessage   AttrKey = "message"
	AttrField     AttrKey = "field"
)

type Attribute struct {
	key   AttrKey
	value string
}

func NewAttr(key AttrKey, value string) Attribute {
	return Attribute{key: key, value: value}
}

func (a Attribute) Key() AttrKey {
	return a.key
}

func (a Attribute) Value() string {
	return a.value
}

/*
ErrorCause is a closed, canonical classification used exclusively for
observability (logging, metrics, reporting).

Rules:
  - ErrorCause is for observability only.
  - It MUST NOT be used to derive retry, continuation, or abort decisions.
  - ErrorCause values MUST have stable, package-agnostic semantics.
  - Pipeline packages MAY map their local errors to ErrorCause,
    but MUST NOT invent new meanings.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

const (
	// CauseUnknown: the failure does not map cleanly to any known category.
	CauseUnknown ErrorCause = iota
	// CauseNetworkFailure: transport-level failure or remote unavailability.
	CauseNetworkFailure
	// CausePolicyDisallow: the remote signalled we should not be fetching
	// (429, repeated 403).
	CausePolicyDisallow
	// CauseExtractionFailure: page fetched but fields could not be extracted.
	CauseExtractionFailure
	// CauseCacheFailure: the cache store's backing persistence failed.
	CauseCacheFailure
	// CauseStorageFailure: export sink could not persist results.
	CauseStorageFailure
	// CauseRetryFailure: all retry attempts exhausted.
	CauseRetryFailure
	// CauseInvalidInput: malformed input rejected before any I/O.
	CauseInvalidInput
)

func (c ErrorCause) String() string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CausePolicyDisallow:
		return "policy_disallow"
	case CauseExtractionFailure:
		return "extraction_failure"
	case CauseCacheFailure:
		return "cache_failure"
	case CauseStorageFailure:
		return "storage_failure"
	case CauseRetryFailure:
		return "retry_failure"
	case CauseInvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}
