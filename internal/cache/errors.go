package cache

import (
	"fmt"

	"github.com/danisworo/estate-scraper/internal/metadata"
	"github.com/danisworo/estate-scraper/pkg/failure"
)

type CacheErrorKind string

const (
	// ErrKindInvalidArgument: malformed input (empty key, non-positive TTL)
	// rejected before any persistence access.
	ErrKindInvalidArgument CacheErrorKind = "invalid argument"
	// ErrKindIOFailure: the backing persistence is unreachable or corrupt.
	ErrKindIOFailure CacheErrorKind = "io failure"
	// ErrKindSerializationFailure: a payload could not be encoded or decoded.
	// The store never inspects payloads; this kind is produced by the
	// caller-owned codec layered on top of the store.
	ErrKindSerializationFailure CacheErrorKind = "serialization failure"
)

type CacheError struct {
	Message   string
	Retryable bool
	Kind      CacheErrorKind
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache error: %s: %s", e.Kind, e.Message)
}

func (e *CacheError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *CacheError) IsRetryable() bool {
	return e.Retryable
}

// mapCacheErrorToMetadataCause maps cache-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapCacheErrorToMetadataCause(err *CacheError) metadata.ErrorCause {
	switch err.Kind {
	case ErrKindInvalidArgument:
		return metadata.CauseInvalidInput
	case ErrKindIOFailure:
		return metadata.CauseCacheFailure
	case ErrKindSerializationFailure:
		return metadata.CauseCacheFailure
	default:
		return metadata.CauseUnknown
	}
}
