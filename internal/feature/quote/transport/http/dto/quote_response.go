// Package dto defines the HTTP response bodies of the quote feature.
package dto

import "quote_backend/internal/feature/quote/domain/entity"

// QuoteResponse はクォートのレスポンスDTOです。
// 欠損値は0ではなくnullとして出力します。
type QuoteResponse struct {
	Ticker           string   `json:"ticker"`
	Name             string   `json:"name"`
	Price            *float64 `json:"price"`
	Open             *float64 `json:"open"`
	PreviousClose    *float64 `json:"previous_close"`
	DayHigh          *float64 `json:"day_high"`
	DayLow           *float64 `json:"day_low"`
	FiftyDayAvg      *float64 `json:"fifty_day_avg"`
	TwoHundredDayAvg *float64 `json:"two_hundred_day_avg"`
	YearHigh         *float64 `json:"year_high"`
	YearLow          *float64 `json:"year_low"`
	Volume           *int64   `json:"volume"`
	MarketCap        *float64 `json:"market_cap"`
}

// NewQuoteResponse converts a domain record into its wire form.
func NewQuoteResponse(q entity.QuoteRecord) QuoteResponse {
	return QuoteResponse{
		Ticker:           q.Ticker,
		Name:             q.Name,
		Price:            q.Price,
		Open:             q.Open,
		PreviousClose:    q.PreviousClose,
		DayHigh:          q.DayHigh,
		DayLow:           q.DayLow,
		FiftyDayAvg:      q.FiftyDayAvg,
		TwoHundredDayAvg: q.TwoHundredDayAvg,
		YearHigh:         q.YearHigh,
		YearLow:          q.YearLow,
		Volume:           q.Volume,
		MarketCap:        q.MarketCap,
	}
}

// ErrorResponse はエラー時のレスポンスDTOです。
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// Error codes
const (
	CodeUnknownTicker       = "UNKNOWN_TICKER"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeInternal            = "INTERNAL_SERVER_ERROR"
)
