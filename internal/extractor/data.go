package extractor

import "github.com/danisworo/estate-scraper/internal/model"

// ExtractionResult holds the extraction outcome for one search page.
// Listings are the fully parsed listing records found on the page.
// HasNextPage reports whether the page links to a further results page.
type ExtractionResult struct {
	Listings    []model.Listing
	HasNextPage bool
}
