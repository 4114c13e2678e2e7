package fetcher

import (
	"context"

	"github.com/danisworo/estate-scraper/pkg/failure"
	"github.com/danisworo/estate-scraper/pkg/retry"
)

type Fetcher interface {
	Fetch(
		ctx context.Context,
		pageNumber int,
		fetchParam FetchParam,
		retryParam retry.RetryParam,
	) (FetchResult, failure.ClassifiedError)
}
