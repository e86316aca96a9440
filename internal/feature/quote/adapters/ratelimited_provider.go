// Package adapters provides decorators shared by the market data provider implementations.
package adapters

import (
	"context"
	"fmt"

	"quote_backend/internal/feature/quote/domain/entity"
	"quote_backend/internal/feature/quote/usecase"
	"quote_backend/internal/shared/ratelimiter"
)

// RateLimitedProvider decorates a MarketDataProvider so that every outbound
// lookup first waits on a shared Limiter.
type RateLimitedProvider struct {
	inner   usecase.MarketDataProvider
	limiter ratelimiter.Limiter
}

var _ usecase.MarketDataProvider = (*RateLimitedProvider)(nil)

// NewRateLimitedProvider wraps inner. A nil limiter disables limiting.
func NewRateLimitedProvider(inner usecase.MarketDataProvider, limiter ratelimiter.Limiter) *RateLimitedProvider {
	if limiter == nil {
		limiter = ratelimiter.Unlimited{}
	}
	return &RateLimitedProvider{inner: inner, limiter: limiter}
}

// LookupMetadata waits for a slot and then delegates.
func (p *RateLimitedProvider) LookupMetadata(ctx context.Context, symbol string) (entity.Metadata, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return entity.Metadata{}, fmt.Errorf("rate limit wait: %w", err)
	}
	return p.inner.LookupMetadata(ctx, symbol)
}

// LookupFastQuote waits for a slot and then delegates.
func (p *RateLimitedProvider) LookupFastQuote(ctx context.Context, symbol string) (entity.FastQuote, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return entity.FastQuote{}, fmt.Errorf("rate limit wait: %w", err)
	}
	return p.inner.LookupFastQuote(ctx, symbol)
}
