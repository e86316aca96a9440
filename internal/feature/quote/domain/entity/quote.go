// Package entity defines the domain models for the quote feature.
package entity

import "strings"

// NameNotAvailable is returned as the display name when the provider reports neither
// a long name nor a short name for the instrument.
const NameNotAvailable = "Name Not Available"

// CanonicalTicker returns the canonical (trimmed, uppercase) form of a ticker symbol.
func CanonicalTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// Metadata holds descriptive, slow-changing information about an instrument.
// A zero Metadata means the provider reported nothing (or the lookup failed).
type Metadata struct {
	LongName  *string
	ShortName *string
}

// FastQuote is the provider's bundle of lightweight pricing metrics.
// Every field is independently optional; nil means the provider did not report it.
type FastQuote struct {
	LastPrice            *float64
	Open                 *float64
	PreviousClose        *float64
	DayHigh              *float64
	DayLow               *float64
	FiftyDayAverage      *float64
	TwoHundredDayAverage *float64
	YearHigh             *float64
	YearLow              *float64
	LastVolume           *int64
	MarketCap            *float64
}

// IsEmpty reports whether the quote carries no pricing metric at all.
func (q FastQuote) IsEmpty() bool {
	for _, v := range []*float64{
		q.LastPrice, q.Open, q.PreviousClose, q.DayHigh, q.DayLow,
		q.FiftyDayAverage, q.TwoHundredDayAverage, q.YearHigh, q.YearLow, q.MarketCap,
	} {
		if v != nil {
			return false
		}
	}
	return q.LastVolume == nil
}

// QuoteRecord is the normalized quote returned to callers.
// Monetary fields are rounded to 2 decimal places; nil means "not reported".
type QuoteRecord struct {
	Ticker           string
	Name             string
	Price            *float64
	Open             *float64
	PreviousClose    *float64
	DayHigh          *float64
	DayLow           *float64
	FiftyDayAvg      *float64
	TwoHundredDayAvg *float64
	YearHigh         *float64
	YearLow          *float64
	Volume           *int64
	MarketCap        *float64
}
