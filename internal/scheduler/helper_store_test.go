package scheduler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/danisworo/estate-scraper/internal/cache"
	"github.com/danisworo/estate-scraper/pkg/failure"
)

// storeMock is a testify mock for the cache Store
type storeMock struct {
	mock.Mock
}

func (s *storeMock) Get(key string) (cache.Lookup, failure.ClassifiedError) {
	args := s.Called(key)
	lookup := args.Get(0).(cache.Lookup)
	var err failure.ClassifiedError
	if args.Get(1) != nil {
		err = args.Get(1).(failure.ClassifiedError)
	}
	return lookup, err
}

func (s *storeMock) Put(key string, payload []byte) failure.ClassifiedError {
	args := s.Called(key, payload)
	if args.Get(0) != nil {
		return args.Get(0).(failure.ClassifiedError)
	}
	return nil
}

func (s *storeMock) PutTTL(key string, payload []byte, ttl time.Duration) failure.ClassifiedError {
	args := s.Called(key, payload, ttl)
	if args.Get(0) != nil {
		return args.Get(0).(failure.ClassifiedError)
	}
	return nil
}

func (s *storeMock) EvictStale() (int64, failure.ClassifiedError) {
	args := s.Called()
	var err failure.ClassifiedError
	if args.Get(1) != nil {
		err = args.Get(1).(failure.ClassifiedError)
	}
	return args.Get(0).(int64), err
}

func (s *storeMock) Invalidate(key string) (bool, failure.ClassifiedError) {
	args := s.Called(key)
	var err failure.ClassifiedError
	if args.Get(1) != nil {
		err = args.Get(1).(failure.ClassifiedError)
	}
	return args.Bool(0), err
}

func (s *storeMock) Stats() (cache.Statistics, failure.ClassifiedError) {
	args := s.Called()
	var err failure.ClassifiedError
	if args.Get(1) != nil {
		err = args.Get(1).(failure.ClassifiedError)
	}
	return args.Get(0).(cache.Statistics), err
}

func (s *storeMock) ResetStats() {
	s.Called()
}

// newStoreMockForTest creates a store mock whose statistics calls succeed
// with zeroed counters. Tests override Get/Put expectations per scenario.
func newStoreMockForTest(t *testing.T) *storeMock {
	t.Helper()
	m := new(storeMock)
	m.On("Stats").Return(cache.NewStatisticsForTest(0, 0, 0, 0), nil).Maybe()
	return m
}
