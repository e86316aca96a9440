// Package ratelimiter bounds the rate of outbound calls to the market data provider.
package ratelimiter

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter blocks until the caller may make one outbound call.
// Wait returns the context error when ctx ends first.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Unlimited never blocks.
type Unlimited struct{}

// Wait implements Limiter.
func (Unlimited) Wait(ctx context.Context) error { return ctx.Err() }

// LocalLimiter はプロセス内のトークンバケットで呼び出し頻度を制限します。
type LocalLimiter struct {
	limiter *rate.Limiter
}

// NewLocalLimiter は1分あたりperMinute回、最大burst回の連続呼び出しを許すLimiterを生成します。
// perMinuteが0以下の場合は制限しません。
func NewLocalLimiter(perMinute, burst int) Limiter {
	if perMinute <= 0 {
		return Unlimited{}
	}
	if burst <= 0 {
		burst = 1
	}
	every := time.Minute / time.Duration(perMinute)
	return &LocalLimiter{limiter: rate.NewLimiter(rate.Every(every), burst)}
}

// Wait implements Limiter.
func (l *LocalLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
