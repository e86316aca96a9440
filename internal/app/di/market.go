// Package di provides dependency injection factories for creating application components.
package di

import (
	"errors"
	"fmt"
	"time"

	"quote_backend/internal/feature/quote/adapters/twelvedata"
	"quote_backend/internal/feature/quote/adapters/yahoo"
	"quote_backend/internal/feature/quote/usecase"
	"quote_backend/internal/platform/config"
	infrahttp "quote_backend/internal/platform/http"
)

const (
	ProviderYahoo      = "yahoo"
	ProviderTwelveData = "twelvedata"
)

// NewMarket creates the configured MarketDataProvider with its HTTP client.
func NewMarket(cfg config.QuoteConfig) (usecase.MarketDataProvider, error) {
	switch cfg.Provider {
	case ProviderYahoo, "":
		ycfg := yahoo.LoadConfig()
		ycfg.Timeout = clientTimeout(cfg, ycfg.Timeout)
		httpClient := infrahttp.NewHTTPClient(ycfg.Timeout, ycfg.UserAgent)
		return yahoo.NewYahooMarket(ycfg, httpClient), nil
	case ProviderTwelveData:
		tcfg := twelvedata.LoadConfig()
		if tcfg.APIKey == "" {
			return nil, errors.New("TWELVE_DATA_API_KEY is required for the twelvedata provider")
		}
		tcfg.Timeout = clientTimeout(cfg, tcfg.Timeout)
		httpClient := infrahttp.NewHTTPClient(tcfg.Timeout, "")
		return twelvedata.NewTwelveDataMarket(tcfg, httpClient), nil
	default:
		return nil, fmt.Errorf("unknown market data provider %q", cfg.Provider)
	}
}

// clientTimeout はHTTPクライアントのタイムアウトをQUOTE_LOOKUP_TIMEOUTに合わせます。
// 未設定の場合はアダプタの既定値を使います。
func clientTimeout(cfg config.QuoteConfig, fallback time.Duration) time.Duration {
	if cfg.LookupTimeout > 0 {
		return cfg.LookupTimeout
	}
	return fallback
}
