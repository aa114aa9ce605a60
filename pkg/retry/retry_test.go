package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fast(attempts int) Policy {
	return Policy{Attempts: attempts, Base: time.Millisecond, Cap: 4 * time.Millisecond}
}

func TestRun_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := fast(3).Run(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRun_PermanentStopsImmediately(t *testing.T) {
	sentinel := errors.New("WRONGPASS")
	calls := 0
	err := fast(5).Run(context.Background(), func(ctx context.Context) error {
		calls++
		return Permanent(sentinel)
	})

	assert.ErrorIs(t, err, sentinel)
	assert.False(t, IsPermanent(err), "wrapper is removed")
	assert.Equal(t, 1, calls)
}

func TestRun_ReturnsLastErrorAndNotifies(t *testing.T) {
	var notified []int
	p := fast(2)
	p.Notify = func(attempt int, err error, wait time.Duration) { notified = append(notified, attempt) }

	err := p.Run(context.Background(), func(ctx context.Context) error {
		return errors.New("down")
	})

	assert.EqualError(t, err, "down")
	assert.Equal(t, []int{1}, notified)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := fast(3).Run(ctx, func(ctx context.Context) error { calls++; return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestWait_DoublesUpToCap(t *testing.T) {
	p := Policy{Base: 100 * time.Millisecond, Cap: 300 * time.Millisecond}

	assert.Equal(t, 100*time.Millisecond, p.Wait(1))
	assert.Equal(t, 200*time.Millisecond, p.Wait(2))
	assert.Equal(t, 300*time.Millisecond, p.Wait(3))
	assert.Equal(t, 300*time.Millisecond, p.Wait(10))
}

func TestWait_JitterStaysInRange(t *testing.T) {
	p := CacheConnect(nil)
	for i := 0; i < 50; i++ {
		w := p.Wait(1)
		assert.GreaterOrEqual(t, w, 160*time.Millisecond)
		assert.LessOrEqual(t, w, 240*time.Millisecond)
	}
}
