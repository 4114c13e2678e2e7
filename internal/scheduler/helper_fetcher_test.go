package scheduler_test

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/danisworo/estate-scraper/internal/fetcher"
	"github.com/danisworo/estate-scraper/pkg/failure"
	"github.com/danisworo/estate-scraper/pkg/retry"
)

// fetcherMock is a testify mock for the Fetcher
type fetcherMock struct {
	mock.Mock
}

func (f *fetcherMock) Fetch(
	ctx context.Context,
	pageNumber int,
	fetchParam fetcher.FetchParam,
	retryParam retry.RetryParam,
) (fetcher.FetchResult, failure.ClassifiedError) {
	args := f.Called(ctx, pageNumber, fetchParam, retryParam)
	result := args.Get(0).(fetcher.FetchResult)
	var err failure.ClassifiedError
	if args.Get(1) != nil {
		err = args.Get(1).(failure.ClassifiedError)
	}
	return result, err
}

const searchPageHTML = `<!DOCTYPE html>
<html>
<head><title>Austin TX Real Estate</title></head>
<body>
<article class="list-card"><address>1200 Barton Hills Dr, Austin, TX 78704</address></article>
</body>
</html>`

// fetchResultForTest builds a successful HTML response for the given page.
func fetchResultForTest(t *testing.T, page int) fetcher.FetchResult {
	t.Helper()
	pageURL, err := url.Parse("https://www.zillow.com/homes/austin-tx_rb/")
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	return fetcher.NewFetchResultForTest(
		*pageURL,
		[]byte(searchPageHTML),
		200,
		uint64(len(searchPageHTML)),
		map[string]string{"Content-Type": "text/html; charset=utf-8"},
	)
}

func newFetcherMockForTest(t *testing.T) *fetcherMock {
	t.Helper()
	return new(fetcherMock)
}

// fetchErrorForTest is the canonical live-fetch failure used by fallback
// scenarios.
func fetchErrorForTest() failure.ClassifiedError {
	return &fetcher.FetchError{
		Message:   "server returned 503",
		Retryable: true,
		Cause:     fetcher.ErrCauseRequest5xx,
	}
}
