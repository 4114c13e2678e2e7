package storage

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/danisworo/estate-scraper/internal/metadata"
	"github.com/danisworo/estate-scraper/internal/model"
	"github.com/danisworo/estate-scraper/pkg/failure"
	"github.com/danisworo/estate-scraper/pkg/hashutil"
)

type JSONSink struct {
	metadataSink metadata.MetadataSink
}

func NewJSONSink(
	metadataSink metadata.MetadataSink,
) JSONSink {
	return JSONSink{
		metadataSink: metadataSink,
	}
}

func (s *JSONSink) Write(
	outputDir string,
	criteria model.SearchCriteria,
	listings []model.Listing,
	hashAlgo hashutil.HashAlgo,
) (WriteResult, failure.ClassifiedError) {
	writeResult, err := s.write(outputDir, criteria, listings, hashAlgo)
	if err != nil {
		recordWriteError(s.metadataSink, "JSONSink.Write", err)
		return WriteResult{}, err
	}
	recordArtifact(s.metadataSink, metadata.ArtifactJSON, writeResult)
	return writeResult, nil
}

func (s *JSONSink) write(
	outputDir string,
	criteria model.SearchCriteria,
	listings []model.Listing,
	hashAlgo hashutil.HashAlgo,
) (WriteResult, failure.ClassifiedError) {
	hash, err := criteriaHash(criteria, hashAlgo)
	if err != nil {
		return WriteResult{}, err
	}

	if err := prepareDir(outputDir); err != nil {
		return WriteResult{}, err
	}

	// empty result still produces a valid artifact
	if listings == nil {
		listings = []model.Listing{}
	}

	encoded, encodeErr := json.MarshalIndent(listings, "", "  ")
	if encodeErr != nil {
		return WriteResult{}, &StorageError{
			Message:   encodeErr.Error(),
			Retryable: false,
			Cause:     ErrCauseEncodingFailed,
		}
	}
	encoded = append(encoded, '\n')

	fullPath := filepath.Join(outputDir, "listings_"+hash+".json")
	if writeErr := os.WriteFile(fullPath, encoded, 0644); writeErr != nil {
		return WriteResult{}, classifyWriteError(writeErr, fullPath)
	}

	return NewWriteResult(hash, fullPath, len(listings)), nil
}
