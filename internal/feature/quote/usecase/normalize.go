package usecase

import (
	"math"

	"github.com/shopspring/decimal"

	"quote_backend/internal/feature/quote/domain/entity"
)

// Normalize はプロバイダの生データを1件のQuoteRecordにまとめます。
// 金額フィールドは小数点以下2桁に丸め、欠損値は欠損のまま残します。
func Normalize(symbol string, meta entity.Metadata, fast entity.FastQuote) entity.QuoteRecord {
	return entity.QuoteRecord{
		Ticker:           symbol,
		Name:             displayName(meta),
		Price:            Round2(fast.LastPrice),
		Open:             Round2(fast.Open),
		PreviousClose:    Round2(fast.PreviousClose),
		DayHigh:          Round2(fast.DayHigh),
		DayLow:           Round2(fast.DayLow),
		FiftyDayAvg:      Round2(fast.FiftyDayAverage),
		TwoHundredDayAvg: Round2(fast.TwoHundredDayAverage),
		YearHigh:         Round2(fast.YearHigh),
		YearLow:          Round2(fast.YearLow),
		Volume:           fast.LastVolume,
		MarketCap:        fast.MarketCap,
	}
}

// Round2 は値を小数点以下2桁に丸めます（0.5は0から遠い方へ）。
// nil、NaN、Infは欠損として扱いnilを返します。
func Round2(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	r, _ := decimal.NewFromFloat(*v).Round(2).Float64()
	return &r
}

// displayName は longName → shortName → NameNotAvailable の順に名称を決定します。
func displayName(meta entity.Metadata) string {
	if meta.LongName != nil && *meta.LongName != "" {
		return *meta.LongName
	}
	if meta.ShortName != nil && *meta.ShortName != "" {
		return *meta.ShortName
	}
	return entity.NameNotAvailable
}
