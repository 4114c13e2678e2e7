package extractor

import (
	"fmt"

	"github.com/danisworo/estate-scraper/internal/metadata"
	"github.com/danisworo/estate-scraper/pkg/failure"
)

type ExtractionErrorCause string

const (
	ErrCauseNotHTML        = "not html"
	ErrCauseNoListings     = "no listings"
	ErrCauseUnknownSite    = "unknown site"
	ErrCauseMalformedField = "malformed field"
)

type ExtractionError struct {
	Message   string
	Retryable bool
	Cause     ExtractionErrorCause
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction error: %s", e.Cause)
}

func (e *ExtractionError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// mapExtractionErrorToMetadataCause maps extractor-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapExtractionErrorToMetadataCause(err *ExtractionError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseNotHTML:
		return metadata.CauseExtractionFailure
	case ErrCauseNoListings:
		return metadata.CauseExtractionFailure
	case ErrCauseMalformedField:
		return metadata.CauseExtractionFailure
	case ErrCauseUnknownSite:
		return metadata.CauseInvalidInput
	default:
		return metadata.CauseUnknown
	}
}
