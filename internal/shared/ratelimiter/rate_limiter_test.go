package ratelimiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocalLimiter_DisabledWhenNonPositive(t *testing.T) {
	t.Parallel()

	assert.IsType(t, Unlimited{}, NewLocalLimiter(0, 5))
	assert.IsType(t, Unlimited{}, NewLocalLimiter(-1, 5))
	assert.IsType(t, &LocalLimiter{}, NewLocalLimiter(60, 0))
}

func TestUnlimited_Wait(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Unlimited{}.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Unlimited{}.Wait(ctx), context.Canceled)
}

func TestLocalLimiter_BurstThenBlocks(t *testing.T) {
	t.Parallel()

	l := NewLocalLimiter(60, 2)

	require.NoError(t, l.Wait(context.Background()))
	require.NoError(t, l.Wait(context.Background()))

	// 3回目は約1秒待つ必要があるため、短いデッドラインでは失敗する
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(ctx))
}

func TestLocalLimiter_RefillsOverTime(t *testing.T) {
	t.Parallel()

	l := NewLocalLimiter(6000, 1) // 10msごとに1トークン

	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	start := time.Now()
	require.NoError(t, l.Wait(ctx))
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}
