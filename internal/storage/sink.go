package storage

import (
	"errors"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/danisworo/estate-scraper/internal/metadata"
	"github.com/danisworo/estate-scraper/internal/model"
	"github.com/danisworo/estate-scraper/pkg/failure"
	"github.com/danisworo/estate-scraper/pkg/fileutil"
	"github.com/danisworo/estate-scraper/pkg/hashutil"
)

/*
Responsibilities
- Persist extracted listings as export artifacts
- Support CSV, JSON and SQLite output formats
- Ensure deterministic filenames

Output Characteristics
- Stable directory layout
- Filenames derived from the canonical search criteria, so a rerun of
  the same search overwrites its own artifact
- Overwrite-safe reruns
*/

type Sink interface {
	Write(
		outputDir string,
		criteria model.SearchCriteria,
		listings []model.Listing,
		hashAlgo hashutil.HashAlgo,
	) (WriteResult, failure.ClassifiedError)
}

// criteriaHash derives the filename stem for a search. The first 12
// hex characters of the canonical criteria hash are enough to keep
// distinct searches apart in one output directory.
func criteriaHash(criteria model.SearchCriteria, hashAlgo hashutil.HashAlgo) (string, failure.ClassifiedError) {
	params := criteria.CanonicalParams()
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var canonical strings.Builder
	for _, key := range keys {
		canonical.WriteString(key)
		canonical.WriteByte('=')
		canonical.WriteString(params[key])
		canonical.WriteByte('|')
	}

	full, err := hashutil.HashBytes([]byte(canonical.String()), hashAlgo)
	if err != nil {
		return "", &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseHashComputationFailed,
		}
	}
	return full[:12], nil
}

// prepareDir ensures the output directory exists, classifying
// failures the way every sink needs.
func prepareDir(outputDir string) failure.ClassifiedError {
	if err := fileutil.EnsureDir(outputDir); err != nil {
		var fileErr *fileutil.FileError
		if errors.As(err, &fileErr) && fileErr.Cause == fileutil.ErrCausePathError {
			return &StorageError{
				Message:   err.Error(),
				Retryable: true,
				Cause:     ErrCausePathError,
				Path:      outputDir,
			}
		}
		return &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseWriteFailure,
			Path:      outputDir,
		}
	}
	return nil
}

// classifyWriteError wraps a raw file write failure, promoting ENOSPC
// to the retryable disk-full cause.
func classifyWriteError(err error, path string) *StorageError {
	cause := StorageErrorCause(ErrCauseWriteFailure)
	retryable := false
	if errors.Is(err, syscall.ENOSPC) {
		cause = ErrCauseDiskFull
		retryable = true
	}
	return &StorageError{
		Message:   err.Error(),
		Retryable: retryable,
		Cause:     cause,
		Path:      path,
	}
}

// recordWriteError emits the observational error event for a failed
// sink write.
func recordWriteError(
	sink metadata.MetadataSink,
	action string,
	err failure.ClassifiedError,
) {
	var storageError *StorageError
	if !errors.As(err, &storageError) {
		return
	}
	sink.RecordError(
		time.Now(),
		"storage",
		action,
		mapStorageErrorToMetadataCause(storageError),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrWritePath, storageError.Path),
		},
	)
}

// recordArtifact emits the artifact event for a completed sink write.
func recordArtifact(
	sink metadata.MetadataSink,
	kind metadata.ArtifactKind,
	result WriteResult,
) {
	sink.RecordArtifact(
		kind,
		result.Path(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrWritePath, result.Path()),
			metadata.NewAttr(metadata.AttrField, result.CriteriaHash()),
		},
	)
}
