package scheduler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
)

// rateLimiterMock is a testify mock for the RateLimiter
type rateLimiterMock struct {
	mock.Mock
}

func (r *rateLimiterMock) SetBaseDelay(delay time.Duration) {
	r.Called(delay)
}

func (r *rateLimiterMock) SetJitter(jitter time.Duration) {
	r.Called(jitter)
}

func (r *rateLimiterMock) SetRandomSeed(seed int64) {
	r.Called(seed)
}

func (r *rateLimiterMock) Backoff(host string) {
	r.Called(host)
}

func (r *rateLimiterMock) ResetBackoff(host string) {
	r.Called(host)
}

func (r *rateLimiterMock) MarkLastFetchAsNow(host string) {
	r.Called(host)
}

func (r *rateLimiterMock) ResolveDelay(host string) time.Duration {
	args := r.Called(host)
	return args.Get(0).(time.Duration)
}

// newRateLimiterMockForTest creates a limiter mock that never delays, so
// scrape tests run without sleeping.
func newRateLimiterMockForTest(t *testing.T) *rateLimiterMock {
	t.Helper()
	m := new(rateLimiterMock)
	m.On("ResolveDelay", mock.Anything).Return(time.Duration(0)).Maybe()
	m.On("MarkLastFetchAsNow", mock.Anything).Return().Maybe()
	m.On("Backoff", mock.Anything).Return().Maybe()
	m.On("ResetBackoff", mock.Anything).Return().Maybe()
	return m
}
