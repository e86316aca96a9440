// Package usecase は株価クォート取得のビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"quote_backend/internal/feature/quote/domain"
	"quote_backend/internal/feature/quote/domain/entity"
)

// DefaultLookupTimeout は外部APIへの1回の呼び出しに許される最大時間です。
const DefaultLookupTimeout = 10 * time.Second

// MarketDataProvider は外部のマーケットデータAPIを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type MarketDataProvider interface {
	// LookupMetadata は銘柄の名称などの記述的な情報を取得します。
	LookupMetadata(ctx context.Context, symbol string) (entity.Metadata, error)
	// LookupFastQuote は現在値や日中レンジなどの軽量な価格指標を取得します。
	LookupFastQuote(ctx context.Context, symbol string) (entity.FastQuote, error)
}

// QuoteUsecase はクォート取得のユースケースを定義します。
type QuoteUsecase struct {
	provider MarketDataProvider
	timeout  time.Duration
}

// NewQuoteUsecase はQuoteUsecaseの新しいインスタンスを生成します。
// timeoutが0以下の場合はDefaultLookupTimeoutを使用します。
func NewQuoteUsecase(provider MarketDataProvider, timeout time.Duration) *QuoteUsecase {
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	return &QuoteUsecase{provider: provider, timeout: timeout}
}

// GetQuote は指定された銘柄のメタデータと価格指標を取得し、正規化したQuoteRecordを返します。
//
// メタデータ取得の失敗は握りつぶし、名称はフォールバック値になります。
// 価格指標取得の失敗は domain.ErrUpstreamUnavailable として呼び出し元へ返します。
// 価格指標が1つも無い場合は domain.ErrUnknownTicker を返します。
func (u *QuoteUsecase) GetQuote(ctx context.Context, ticker string) (entity.QuoteRecord, error) {
	symbol := entity.CanonicalTicker(ticker)

	meta := u.metadataOrEmpty(ctx, symbol)

	fast, err := u.fastQuote(ctx, symbol)
	if err != nil {
		return entity.QuoteRecord{}, err
	}
	if fast.IsEmpty() {
		return entity.QuoteRecord{}, fmt.Errorf("%w: %s", domain.ErrUnknownTicker, symbol)
	}

	return Normalize(symbol, meta, fast), nil
}

// metadataOrEmpty は失敗時に空のメタデータを返します。エラーはログにのみ出力します。
func (u *QuoteUsecase) metadataOrEmpty(ctx context.Context, symbol string) entity.Metadata {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	meta, err := u.provider.LookupMetadata(ctx, symbol)
	if err != nil {
		log.Warn().
			Err(fmt.Errorf("%w: %w", domain.ErrMetadataUnavailable, err)).
			Str("symbol", symbol).
			Msg("metadata lookup failed, continuing without name")
		return entity.Metadata{}
	}
	return meta
}

func (u *QuoteUsecase) fastQuote(ctx context.Context, symbol string) (entity.FastQuote, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	fast, err := u.provider.LookupFastQuote(ctx, symbol)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownTicker) {
			return entity.FastQuote{}, err
		}
		return entity.FastQuote{}, fmt.Errorf("%w: fast quote %s: %w", domain.ErrUpstreamUnavailable, symbol, err)
	}
	return fast, nil
}
