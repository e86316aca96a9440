package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quote_backend/internal/feature/quote/domain"
	"quote_backend/internal/feature/quote/domain/entity"
	"quote_backend/internal/feature/quote/usecase"
)

// ErrProvider はモックと期待値の間で共有されるセンチネルエラーです。
var ErrProvider = errors.New("provider exploded")

// mockProvider はMarketDataProviderインターフェースのモック実装です。
type mockProvider struct {
	MetadataFunc  func(ctx context.Context, symbol string) (entity.Metadata, error)
	FastQuoteFunc func(ctx context.Context, symbol string) (entity.FastQuote, error)
	MetadataCalls  int
	FastQuoteCalls int
}

func (m *mockProvider) LookupMetadata(ctx context.Context, symbol string) (entity.Metadata, error) {
	m.MetadataCalls++
	if m.MetadataFunc != nil {
		return m.MetadataFunc(ctx, symbol)
	}
	return entity.Metadata{}, nil
}

func (m *mockProvider) LookupFastQuote(ctx context.Context, symbol string) (entity.FastQuote, error) {
	m.FastQuoteCalls++
	if m.FastQuoteFunc != nil {
		return m.FastQuoteFunc(ctx, symbol)
	}
	return entity.FastQuote{}, errors.New("FastQuoteFunc is not implemented")
}

func ptr[T any](v T) *T { return &v }

func completeQuote() entity.FastQuote {
	return entity.FastQuote{
		LastPrice:            ptr(189.9876),
		Open:                 ptr(188.1),
		PreviousClose:        ptr(187.444),
		DayHigh:              ptr(190.555),
		DayLow:               ptr(187.001),
		FiftyDayAverage:      ptr(180.12345),
		TwoHundredDayAverage: ptr(175.5),
		YearHigh:             ptr(199.62),
		YearLow:              ptr(143.9),
		LastVolume:           ptr(int64(51234567)),
		MarketCap:            ptr(2.95e12),
	}
}

// TestQuoteUsecase_GetQuote はGetQuoteの正規化とエラー伝播をテストします。
func TestQuoteUsecase_GetQuote(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		metadataFunc func(ctx context.Context, symbol string) (entity.Metadata, error)
		fastFunc     func(ctx context.Context, symbol string) (entity.FastQuote, error)
		expected     entity.QuoteRecord
		expectedErr  error
	}{
		{
			name: "success: long name and partial pricing",
			metadataFunc: func(ctx context.Context, symbol string) (entity.Metadata, error) {
				return entity.Metadata{LongName: ptr("Apple Inc."), ShortName: ptr("Apple")}, nil
			},
			fastFunc: func(ctx context.Context, symbol string) (entity.FastQuote, error) {
				return entity.FastQuote{LastPrice: ptr(150.005), Open: ptr(149.0)}, nil
			},
			expected: entity.QuoteRecord{
				Ticker: "AAPL",
				Name:   "Apple Inc.",
				Price:  ptr(150.01),
				Open:   ptr(149.0),
			},
		},
		{
			name: "success: complete data is fully rounded",
			metadataFunc: func(ctx context.Context, symbol string) (entity.Metadata, error) {
				return entity.Metadata{LongName: ptr("Apple Inc.")}, nil
			},
			fastFunc: func(ctx context.Context, symbol string) (entity.FastQuote, error) {
				return completeQuote(), nil
			},
			expected: entity.QuoteRecord{
				Ticker:           "AAPL",
				Name:             "Apple Inc.",
				Price:            ptr(189.99),
				Open:             ptr(188.1),
				PreviousClose:    ptr(187.44),
				DayHigh:          ptr(190.56),
				DayLow:           ptr(187.0),
				FiftyDayAvg:      ptr(180.12),
				TwoHundredDayAvg: ptr(175.5),
				YearHigh:         ptr(199.62),
				YearLow:          ptr(143.9),
				Volume:           ptr(int64(51234567)),
				MarketCap:        ptr(2.95e12),
			},
		},
		{
			name: "success: short name used when long name missing",
			metadataFunc: func(ctx context.Context, symbol string) (entity.Metadata, error) {
				return entity.Metadata{ShortName: ptr("Apple")}, nil
			},
			fastFunc: func(ctx context.Context, symbol string) (entity.FastQuote, error) {
				return entity.FastQuote{LastPrice: ptr(150.0)}, nil
			},
			expected: entity.QuoteRecord{Ticker: "AAPL", Name: "Apple", Price: ptr(150.0)},
		},
		{
			name: "success: metadata failure falls back to sentinel name",
			metadataFunc: func(ctx context.Context, symbol string) (entity.Metadata, error) {
				return entity.Metadata{}, errors.New("429 too many requests")
			},
			fastFunc: func(ctx context.Context, symbol string) (entity.FastQuote, error) {
				return entity.FastQuote{LastPrice: ptr(150.0), DayLow: ptr(148.333)}, nil
			},
			expected: entity.QuoteRecord{
				Ticker: "AAPL",
				Name:   entity.NameNotAvailable,
				Price:  ptr(150.0),
				DayLow: ptr(148.33),
			},
		},
		{
			name: "success: volume alone is a usable quote",
			fastFunc: func(ctx context.Context, symbol string) (entity.FastQuote, error) {
				return entity.FastQuote{LastVolume: ptr(int64(0))}, nil
			},
			expected: entity.QuoteRecord{Ticker: "AAPL", Name: entity.NameNotAvailable, Volume: ptr(int64(0))},
		},
		{
			name: "error: fast quote failure is upstream unavailable",
			metadataFunc: func(ctx context.Context, symbol string) (entity.Metadata, error) {
				return entity.Metadata{LongName: ptr("Apple Inc.")}, nil
			},
			fastFunc: func(ctx context.Context, symbol string) (entity.FastQuote, error) {
				return entity.FastQuote{}, ErrProvider
			},
			expectedErr: domain.ErrUpstreamUnavailable,
		},
		{
			name: "error: provider reports unknown symbol",
			fastFunc: func(ctx context.Context, symbol string) (entity.FastQuote, error) {
				return entity.FastQuote{}, domain.ErrUnknownTicker
			},
			expectedErr: domain.ErrUnknownTicker,
		},
		{
			name: "error: empty fast quote is unknown ticker",
			fastFunc: func(ctx context.Context, symbol string) (entity.FastQuote, error) {
				return entity.FastQuote{}, nil
			},
			expectedErr: domain.ErrUnknownTicker,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mock := &mockProvider{MetadataFunc: tc.metadataFunc, FastQuoteFunc: tc.fastFunc}
			uc := usecase.NewQuoteUsecase(mock, time.Second)

			got, err := uc.GetQuote(context.Background(), "aapl")

			if tc.expectedErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.Equal(t, entity.QuoteRecord{}, got, "no partial record on error")
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expected, got)
			}

			assert.Equal(t, 1, mock.MetadataCalls)
			assert.Equal(t, 1, mock.FastQuoteCalls)
		})
	}
}

func TestQuoteUsecase_GetQuote_WrapsProviderError(t *testing.T) {
	t.Parallel()

	mock := &mockProvider{
		FastQuoteFunc: func(ctx context.Context, symbol string) (entity.FastQuote, error) {
			return entity.FastQuote{}, ErrProvider
		},
	}
	uc := usecase.NewQuoteUsecase(mock, time.Second)

	_, err := uc.GetQuote(context.Background(), "msft")

	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, ErrProvider)
	assert.Contains(t, err.Error(), "MSFT")
}

func TestQuoteUsecase_GetQuote_CanonicalizesTicker(t *testing.T) {
	t.Parallel()

	var seen []string
	mock := &mockProvider{
		MetadataFunc: func(ctx context.Context, symbol string) (entity.Metadata, error) {
			seen = append(seen, symbol)
			return entity.Metadata{LongName: ptr("Apple Inc.")}, nil
		},
		FastQuoteFunc: func(ctx context.Context, symbol string) (entity.FastQuote, error) {
			seen = append(seen, symbol)
			return completeQuote(), nil
		},
	}
	uc := usecase.NewQuoteUsecase(mock, time.Second)

	lower, err := uc.GetQuote(context.Background(), "aapl")
	require.NoError(t, err)
	upper, err := uc.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", lower.Ticker)
	assert.Equal(t, lower, upper)
	assert.Equal(t, []string{"AAPL", "AAPL", "AAPL", "AAPL"}, seen)
}

func TestQuoteUsecase_GetQuote_Idempotent(t *testing.T) {
	t.Parallel()

	mock := &mockProvider{
		FastQuoteFunc: func(ctx context.Context, symbol string) (entity.FastQuote, error) {
			return completeQuote(), nil
		},
	}
	uc := usecase.NewQuoteUsecase(mock, time.Second)

	first, err := uc.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := uc.GetQuote(context.Background(), "AAPL")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	// 毎回プロバイダへ問い合わせること（キャッシュしない）
	assert.Equal(t, 6, mock.FastQuoteCalls)
}

func TestQuoteUsecase_GetQuote_Timeout(t *testing.T) {
	t.Parallel()

	block := func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}
	mock := &mockProvider{
		MetadataFunc: func(ctx context.Context, symbol string) (entity.Metadata, error) {
			return entity.Metadata{}, block(ctx)
		},
		FastQuoteFunc: func(ctx context.Context, symbol string) (entity.FastQuote, error) {
			return entity.FastQuote{}, block(ctx)
		},
	}
	uc := usecase.NewQuoteUsecase(mock, 20*time.Millisecond)

	start := time.Now()
	_, err := uc.GetQuote(context.Background(), "AAPL")

	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestQuoteUsecase_GetQuote_MetadataTimeoutDoesNotFail(t *testing.T) {
	t.Parallel()

	mock := &mockProvider{
		MetadataFunc: func(ctx context.Context, symbol string) (entity.Metadata, error) {
			<-ctx.Done()
			return entity.Metadata{}, ctx.Err()
		},
		FastQuoteFunc: func(ctx context.Context, symbol string) (entity.FastQuote, error) {
			// メタデータ側のタイムアウトが価格取得に持ち越されないこと
			if err := ctx.Err(); err != nil {
				return entity.FastQuote{}, err
			}
			return entity.FastQuote{LastPrice: ptr(42.0)}, nil
		},
	}
	uc := usecase.NewQuoteUsecase(mock, 20*time.Millisecond)

	got, err := uc.GetQuote(context.Background(), "AAPL")

	require.NoError(t, err)
	assert.Equal(t, entity.NameNotAvailable, got.Name)
	assert.Equal(t, ptr(42.0), got.Price)
}

func TestNewQuoteUsecase_DefaultTimeout(t *testing.T) {
	t.Parallel()

	var deadline time.Time
	mock := &mockProvider{
		FastQuoteFunc: func(ctx context.Context, symbol string) (entity.FastQuote, error) {
			deadline, _ = ctx.Deadline()
			return entity.FastQuote{LastPrice: ptr(1.0)}, nil
		},
	}
	uc := usecase.NewQuoteUsecase(mock, 0)

	_, err := uc.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)

	remaining := time.Until(deadline)
	assert.Greater(t, remaining, usecase.DefaultLookupTimeout-time.Second)
	assert.LessOrEqual(t, remaining, usecase.DefaultLookupTimeout)
}
