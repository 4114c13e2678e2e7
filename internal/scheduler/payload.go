package scheduler

import (
	"encoding/json"
	"fmt"

	"github.com/danisworo/estate-scraper/internal/cache"
	"github.com/danisworo/estate-scraper/internal/model"
	"github.com/danisworo/estate-scraper/pkg/failure"
)

// The cache store treats payloads as opaque bytes; the scheduler owns
// the codec. A cached page carries both its listings and whether the
// page linked onward, so pagination can continue from cache without
// refetching.

type pageSnapshot struct {
	Listings    []model.Listing `json:"listings"`
	HasNextPage bool            `json:"hasNextPage"`
}

func encodePage(listings []model.Listing, hasNextPage bool) ([]byte, failure.ClassifiedError) {
	payload, err := json.Marshal(pageSnapshot{
		Listings:    listings,
		HasNextPage: hasNextPage,
	})
	if err != nil {
		return nil, &cache.CacheError{
			Message:   fmt.Sprintf("failed to encode page snapshot: %v", err),
			Retryable: false,
			Kind:      cache.ErrKindSerializationFailure,
		}
	}
	return payload, nil
}

func decodePage(payload []byte) (pageSnapshot, failure.ClassifiedError) {
	var snapshot pageSnapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return pageSnapshot{}, &cache.CacheError{
			Message:   fmt.Sprintf("failed to decode page snapshot: %v", err),
			Retryable: false,
			Kind:      cache.ErrKindSerializationFailure,
		}
	}
	return snapshot, nil
}
