package limiter

import (
	"sync"
	"testing"
	"time"

	"github.com/danisworo/estate-scraper/pkg/timeutil"
)

func newTestLimiter() *ConcurrentRateLimiter {
	l := NewConcurrentRateLimiter(timeutil.NewBackoffParam(time.Second, 2.0, 30*time.Second))
	l.SetRandomSeed(42)
	return l
}

func TestResolveDelay_UnknownHostHasNoDelay(t *testing.T) {
	l := newTestLimiter()
	l.SetBaseDelay(2 * time.Second)

	if got := l.ResolveDelay("www.example.com"); got != 0 {
		t.Errorf("expected zero delay for unfetched host, got %v", got)
	}
}

func TestResolveDelay_AfterFetchAppliesBaseDelay(t *testing.T) {
	l := newTestLimiter()
	l.SetBaseDelay(500 * time.Millisecond)

	l.MarkLastFetchAsNow("www.example.com")

	got := l.ResolveDelay("www.example.com")
	if got <= 0 || got > 500*time.Millisecond {
		t.Errorf("expected delay in (0, 500ms], got %v", got)
	}
}

func TestResolveDelay_ElapsedHostHasNoDelay(t *testing.T) {
	l := newTestLimiter()
	l.SetBaseDelay(time.Millisecond)

	l.MarkLastFetchAsNow("www.example.com")
	time.Sleep(5 * time.Millisecond)

	if got := l.ResolveDelay("www.example.com"); got != 0 {
		t.Errorf("expected zero delay after base delay elapsed, got %v", got)
	}
}

func TestResolveDelay_BackoffDominatesBase(t *testing.T) {
	l := newTestLimiter()
	l.SetBaseDelay(10 * time.Millisecond)

	l.MarkLastFetchAsNow("www.example.com")
	l.Backoff("www.example.com") // penalty starts at 1s, far above base

	got := l.ResolveDelay("www.example.com")
	if got <= 10*time.Millisecond {
		t.Errorf("expected backoff-dominated delay above 10ms, got %v", got)
	}
}

func TestBackoff_GrowsAndResets(t *testing.T) {
	l := newTestLimiter()

	l.Backoff("www.example.com")
	first := l.GetHostTimings()["www.example.com"]
	if first.BackoffCount() != 1 {
		t.Fatalf("expected backoff count 1, got %d", first.BackoffCount())
	}
	if first.BackOffDelay() < time.Second {
		t.Errorf("expected first backoff >= 1s, got %v", first.BackOffDelay())
	}

	l.Backoff("www.example.com")
	second := l.GetHostTimings()["www.example.com"]
	if second.BackoffCount() != 2 {
		t.Fatalf("expected backoff count 2, got %d", second.BackoffCount())
	}
	if second.BackOffDelay() < 2*time.Second {
		t.Errorf("expected second backoff >= 2s, got %v", second.BackOffDelay())
	}

	l.ResetBackoff("www.example.com")
	reset := l.GetHostTimings()["www.example.com"]
	if reset.BackoffCount() != 0 || reset.BackOffDelay() != 0 {
		t.Errorf("expected backoff cleared, got count=%d delay=%v", reset.BackoffCount(), reset.BackOffDelay())
	}
}

func TestLimiter_ConcurrentAccess(t *testing.T) {
	l := newTestLimiter()
	l.SetBaseDelay(time.Millisecond)
	l.SetJitter(time.Millisecond)

	var wg sync.WaitGroup
	hosts := []string{"a.example.com", "b.example.com", "c.example.com"}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			host := hosts[n%len(hosts)]
			for j := 0; j < 100; j++ {
				l.MarkLastFetchAsNow(host)
				l.Backoff(host)
				l.ResolveDelay(host)
				l.ResetBackoff(host)
			}
		}(i)
	}
	wg.Wait()

	if len(l.GetHostTimings()) != len(hosts) {
		t.Errorf("expected %d hosts tracked, got %d", len(hosts), len(l.GetHostTimings()))
	}
}
