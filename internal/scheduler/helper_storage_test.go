package scheduler_test

import (
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/danisworo/estate-scraper/internal/model"
	"github.com/danisworo/estate-scraper/internal/storage"
	"github.com/danisworo/estate-scraper/pkg/failure"
	"github.com/danisworo/estate-scraper/pkg/hashutil"
)

// storageSinkMock is a testify mock for the storage Sink
type storageSinkMock struct {
	mock.Mock
}

func (s *storageSinkMock) Write(
	outputDir string,
	criteria model.SearchCriteria,
	listings []model.Listing,
	hashAlgo hashutil.HashAlgo,
) (storage.WriteResult, failure.ClassifiedError) {
	args := s.Called(outputDir, criteria, listings, hashAlgo)
	result := args.Get(0).(storage.WriteResult)
	var err failure.ClassifiedError
	if args.Get(1) != nil {
		err = args.Get(1).(failure.ClassifiedError)
	}
	return result, err
}

// newStorageSinkMockForTest creates a sink mock that accepts any write and
// reports one artifact. Tests that must not write assert zero calls instead.
func newStorageSinkMockForTest(t *testing.T) *storageSinkMock {
	t.Helper()
	m := new(storageSinkMock)
	m.On("Write", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(storage.NewWriteResult("abc123def456", "output/listings_abc123def456.csv", 1), nil).
		Maybe()
	return m
}
