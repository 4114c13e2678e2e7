package scheduler_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/danisworo/estate-scraper/internal/extractor"
	"github.com/danisworo/estate-scraper/internal/model"
	"github.com/danisworo/estate-scraper/pkg/failure"
)

// extractorMock is a testify mock for the SiteExtractor
type extractorMock struct {
	mock.Mock
}

func (e *extractorMock) Extract(
	sourceUrl url.URL,
	site string,
	htmlByte []byte,
) (extractor.ExtractionResult, failure.ClassifiedError) {
	args := e.Called(sourceUrl, site, htmlByte)
	result := args.Get(0).(extractor.ExtractionResult)
	var err failure.ClassifiedError
	if args.Get(1) != nil {
		err = args.Get(1).(failure.ClassifiedError)
	}
	return result, err
}

func newExtractorMockForTest(t *testing.T) *extractorMock {
	t.Helper()
	return new(extractorMock)
}

// extractionResultForTest wraps listings in a page result.
func extractionResultForTest(listings []model.Listing, hasNextPage bool) extractor.ExtractionResult {
	return extractor.ExtractionResult{
		Listings:    listings,
		HasNextPage: hasNextPage,
	}
}
