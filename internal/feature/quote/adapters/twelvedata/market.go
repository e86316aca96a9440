package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"quote_backend/internal/feature/quote/adapters/twelvedata/dto"
	"quote_backend/internal/feature/quote/domain"
	"quote_backend/internal/feature/quote/domain/entity"
	"quote_backend/internal/feature/quote/usecase"
)

// TwelveDataMarket はTwelve Data外部APIから銘柄情報と価格指標を取得するMarketDataProvider実装です。
type TwelveDataMarket struct {
	cfg    Config
	client *http.Client
}

// TwelveDataMarketがMarketDataProviderを実装していることをコンパイル時に検証します。
var _ usecase.MarketDataProvider = (*TwelveDataMarket)(nil)

// NewTwelveDataMarket は指定された設定とHTTPクライアントでTwelveDataMarketの新しいインスタンスを生成します。
func NewTwelveDataMarket(cfg Config, client *http.Client) *TwelveDataMarket {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &TwelveDataMarket{cfg: cfg, client: client}
}

// LookupMetadata は /profile から銘柄名を取得します。
// Twelve Dataは正式名称のみを返すため LongName に格納します。
func (t *TwelveDataMarket) LookupMetadata(ctx context.Context, symbol string) (entity.Metadata, error) {
	var body dto.ProfileResponse
	if err := t.get(ctx, "profile", symbol, &body); err != nil {
		return entity.Metadata{}, err
	}
	if err := statusError(body.Status, symbol); err != nil {
		return entity.Metadata{}, err
	}

	var meta entity.Metadata
	if body.Name != "" {
		name := body.Name
		meta.LongName = &name
	}
	return meta, nil
}

// LookupFastQuote は /quote から価格指標を取得します。
// 移動平均と時価総額は提供されないため常に nil です。
func (t *TwelveDataMarket) LookupFastQuote(ctx context.Context, symbol string) (entity.FastQuote, error) {
	var body dto.QuoteResponse
	if err := t.get(ctx, "quote", symbol, &body); err != nil {
		return entity.FastQuote{}, err
	}
	if err := statusError(body.Status, symbol); err != nil {
		return entity.FastQuote{}, err
	}

	var (
		q   entity.FastQuote
		err error
	)
	// 終値をパース
	if q.LastPrice, err = parseFloat("close", body.Close); err != nil {
		return entity.FastQuote{}, err
	}
	// 始値をパース
	if q.Open, err = parseFloat("open", body.Open); err != nil {
		return entity.FastQuote{}, err
	}
	if q.PreviousClose, err = parseFloat("previous_close", body.PreviousClose); err != nil {
		return entity.FastQuote{}, err
	}
	// 高値・安値をパース
	if q.DayHigh, err = parseFloat("high", body.High); err != nil {
		return entity.FastQuote{}, err
	}
	if q.DayLow, err = parseFloat("low", body.Low); err != nil {
		return entity.FastQuote{}, err
	}
	if q.YearHigh, err = parseFloat("fifty_two_week.high", body.FiftyTwoWeek.High); err != nil {
		return entity.FastQuote{}, err
	}
	if q.YearLow, err = parseFloat("fifty_two_week.low", body.FiftyTwoWeek.Low); err != nil {
		return entity.FastQuote{}, err
	}
	// 出来高をパース
	if q.LastVolume, err = parseInt("volume", body.Volume); err != nil {
		return entity.FastQuote{}, err
	}
	return q, nil
}

func (t *TwelveDataMarket) get(ctx context.Context, endpoint, symbol string, out any) error {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("apikey", t.cfg.APIKey)

	u := fmt.Sprintf("%s/%s?%s", t.cfg.BaseURL, endpoint, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	res, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close response body")
		}
	}()

	if res.StatusCode >= 400 {
		return fmt.Errorf("twelvedata http %d", res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("twelvedata: decode %s: %w", endpoint, err)
	}
	return nil
}

// statusError はエンベロープのエラーをドメインエラーに変換します。
func statusError(s dto.Status, symbol string) error {
	if s.Status != "error" {
		return nil
	}
	if s.Code == http.StatusNotFound {
		return fmt.Errorf("%w: %s: twelvedata: %s", domain.ErrUnknownTicker, symbol, s.Message)
	}
	return fmt.Errorf("twelvedata: %s", s.Message)
}

// parseFloat は空文字列を欠損として扱います。
func parseFloat(field, s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("parse %s %q: %w", field, s, err)
	}
	return &v, nil
}

func parseInt(field, s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse %s %q: %w", field, s, err)
	}
	return &v, nil
}
