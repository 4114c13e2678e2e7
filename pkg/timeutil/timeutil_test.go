package timeutil

import (
	"math/rand"
	"testing"
	"time"
)

func TestMaxDuration(t *testing.T) {
	tests := []struct {
		name      string
		durations []time.Duration
		want      time.Duration
	}{
		{
			name:      "multiple values returns maximum",
			durations: []time.Duration{100 * time.Millisecond, 500 * time.Millisecond, 200 * time.Millisecond},
			want:      500 * time.Millisecond,
		},
		{
			name:      "single value returns that value",
			durations: []time.Duration{300 * time.Millisecond},
			want:      300 * time.Millisecond,
		},
		{
			name:      "empty slice returns zero",
			durations: []time.Duration{},
			want:      0,
		},
		{
			name:      "negative durations handled correctly",
			durations: []time.Duration{-100 * time.Millisecond, 50 * time.Millisecond, -200 * time.Millisecond},
			want:      50 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaxDuration(tt.durations)
			if got != tt.want {
				t.Errorf("MaxDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeJitter(t *testing.T) {
	tests := []struct {
		name string
		max  time.Duration
		rng  rand.Rand
	}{
		{
			name: "zero max returns 0",
			max:  0,
			rng:  *rand.New(rand.NewSource(1)),
		},
		{
			name: "negative max returns 0",
			max:  -100 * time.Millisecond,
			rng:  *rand.New(rand.NewSource(1)),
		},
		{
			name: "positive max returns value within range",
			max:  1000 * time.Millisecond,
			rng:  *rand.New(rand.NewSource(42)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeJitter(tt.max, tt.rng)

			if tt.max <= 0 {
				if got != 0 {
					t.Errorf("ComputeJitter() = %v, want 0", got)
				}
				return
			}

			if got < 0 || got > tt.max {
				t.Errorf("ComputeJitter() = %v, want between 0 and %v", got, tt.max)
			}
		})
	}
}

func TestExponentialBackoffDelay(t *testing.T) {
	tests := []struct {
		name         string
		backoffCount int
		jitter       time.Duration
		backoffParam BackoffParam
		rng          rand.Rand
		wantMin      time.Duration
		wantMax      time.Duration
	}{
		{
			name:         "first backoff with no jitter",
			backoffCount: 1,
			jitter:       0,
			backoffParam: NewBackoffParam(1*time.Second, 2.0, 30*time.Second),
			rng:          *rand.New(rand.NewSource(1)),
			wantMin:      1 * time.Second,
			wantMax:      1 * time.Second,
		},
		{
			name:         "second backoff doubles",
			backoffCount: 2,
			jitter:       0,
			backoffParam: NewBackoffParam(1*time.Second, 2.0, 30*time.Second),
			rng:          *rand.New(rand.NewSource(1)),
			wantMin:      2 * time.Second,
			wantMax:      2 * time.Second,
		},
		{
			name:         "backoff hits max cap",
			backoffCount: 10,
			jitter:       0,
			backoffParam: NewBackoffParam(1*time.Second, 2.0, 10*time.Second),
			rng:          *rand.New(rand.NewSource(1)),
			wantMin:      10 * time.Second,
			wantMax:      10 * time.Second,
		},
		{
			name:         "jitter adds positive variance",
			backoffCount: 2,
			jitter:       100 * time.Millisecond,
			backoffParam: NewBackoffParam(1*time.Second, 2.0, 30*time.Second),
			rng:          *rand.New(rand.NewSource(42)),
			wantMin:      2 * time.Second,
			wantMax:      2*time.Second + 100*time.Millisecond,
		},
		{
			name:         "multiplier of 1 means no growth",
			backoffCount: 5,
			jitter:       0,
			backoffParam: NewBackoffParam(1*time.Second, 1.0, 30*time.Second),
			rng:          *rand.New(rand.NewSource(1)),
			wantMin:      1 * time.Second,
			wantMax:      1 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExponentialBackoffDelay(tt.backoffCount, tt.jitter, tt.rng, tt.backoffParam)

			if got < tt.wantMin || got > tt.wantMax {
				t.Errorf("ExponentialBackoffDelay() = %v, want between %v and %v", got, tt.wantMin, tt.wantMax)
			}
		})
	}
}
