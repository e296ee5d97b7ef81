package behavior_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/unfold/behavior"
	"github.com/stretchr/testify/assert"
)

func TestSystemClock_Sleep(t *testing.T) {
	t.Parallel()

	t.Run("returns after duration", func(t *testing.T) {
		var c behavior.SystemClock
		start := c.Now()

		err := c.Sleep(context.Background(), 10*time.Millisecond)

		assert.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
	})

	t.Run("returns context error when canceled", func(t *testing.T) {
		var c behavior.SystemClock
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
		defer cancel()

		err := c.Sleep(ctx, time.Hour)

		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("non-positive duration only checks context", func(t *testing.T) {
		var c behavior.SystemClock
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.NoError(t, c.Sleep(context.Background(), 0))
		assert.ErrorIs(t, c.Sleep(ctx, 0), context.Canceled)
	})
}

func TestVirtualClock(t *testing.T) {
	t.Parallel()

	t.Run("sleep advances time", func(t *testing.T) {
		t.Parallel()

		c := behavior.NewVirtualClock(epoch)

		assert.NoError(t, c.Sleep(context.Background(), 1500*time.Millisecond))
		c.Advance(500 * time.Millisecond)
		c.Advance(-time.Hour)

		assert.Equal(t, epoch.Add(2*time.Second), c.Now())
	})

	t.Run("sleep with done context does not advance", func(t *testing.T) {
		t.Parallel()

		c := behavior.NewVirtualClock(epoch)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := c.Sleep(ctx, time.Second)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, epoch, c.Now())
	})
}
