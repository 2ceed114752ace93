package asyncx

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMapKeepsOrder(t *testing.T) {
	items := []int{5, 1, 4, 2, 3}
	results := Map(context.Background(), items, 2, func(_ context.Context, n int) (int, error) {
		time.Sleep(time.Duration(n) * time.Millisecond)
		return n * 10, nil
	})

	got := make([]int, 0, len(results))
	for _, r := range results {
		assert.NoError(t, r.Err)
		got = append(got, r.Value)
	}
	assert.Equal(t, []int{50, 10, 40, 20, 30}, got)
}

func TestMapRespectsLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	Map(context.Background(), make([]struct{}, 20), 3, func(context.Context, struct{}) (struct{}, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		inFlight.Add(-1)
		return struct{}{}, nil
	})
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestMapCollectsEveryError(t *testing.T) {
	boom := errors.New("boom")
	results := Map(context.Background(), []string{"ok", "bad", "ok", "bad"}, 0, func(_ context.Context, s string) (string, error) {
		if s == "bad" {
			return "", boom
		}
		return s, nil
	})
	assert.Equal(t, []int{1, 3}, Errors(results))
}

func TestMapStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	results := Map(ctx, []int{1, 2, 3}, 1, func(context.Context, int) (int, error) {
		calls.Add(1)
		return 0, nil
	})
	assert.Zero(t, calls.Load())
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}

func TestMapEmpty(t *testing.T) {
	assert.Empty(t, Map(context.Background(), nil, 4, func(context.Context, int) (int, error) { return 0, nil }))
}
