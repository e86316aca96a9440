// Package dto defines data transfer objects for the Yahoo Finance API responses.
package dto

// APIError is the error object Yahoo embeds in otherwise successful responses.
type APIError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// QuoteSummaryResponse represents the JSON response from /v10/finance/quoteSummary/{symbol}?modules=price.
type QuoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price struct {
				LongName  *string `json:"longName"`
				ShortName *string `json:"shortName"`
			} `json:"price"`
		} `json:"result"`
		Error *APIError `json:"error"`
	} `json:"quoteSummary"`
}

// QuoteResponse represents the JSON response from /v7/finance/quote?symbols={symbol}.
// Every metric is optional.
type QuoteResponse struct {
	QuoteResponse struct {
		Result []QuoteResult `json:"result"`
		Error  *APIError     `json:"error"`
	} `json:"quoteResponse"`
}

// QuoteResult is one instrument in a QuoteResponse.
type QuoteResult struct {
	Symbol                     string   `json:"symbol"`
	RegularMarketPrice         *float64 `json:"regularMarketPrice"`
	RegularMarketOpen          *float64 `json:"regularMarketOpen"`
	RegularMarketPreviousClose *float64 `json:"regularMarketPreviousClose"`
	RegularMarketDayHigh       *float64 `json:"regularMarketDayHigh"`
	RegularMarketDayLow        *float64 `json:"regularMarketDayLow"`
	FiftyDayAverage            *float64 `json:"fiftyDayAverage"`
	TwoHundredDayAverage       *float64 `json:"twoHundredDayAverage"`
	FiftyTwoWeekHigh           *float64 `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow            *float64 `json:"fiftyTwoWeekLow"`
	RegularMarketVolume        *int64   `json:"regularMarketVolume"`
	MarketCap                  *float64 `json:"marketCap"`
}
