package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"quote_backend/internal/feature/quote/adapters/yahoo/dto"
	"quote_backend/internal/feature/quote/domain"
	"quote_backend/internal/feature/quote/domain/entity"
	"quote_backend/internal/feature/quote/usecase"
)

// errUnauthorized はcrumbが無効になったことを示します。crumbを取り直して1度だけ再試行します。
var errUnauthorized = errors.New("yahoo http 401")

// YahooMarket はYahoo Financeからメタデータと価格指標を取得するMarketDataProvider実装です。
//
// quoteSummary / v7 quote はセッションCookieとcrumbが必要なため、
// 初回呼び出し時（および401受信時）にハンドシェイクを行います。
type YahooMarket struct {
	cfg    Config
	client *http.Client

	mu    sync.Mutex
	crumb string
}

// YahooMarketがMarketDataProviderを実装していることをコンパイル時に検証します。
var _ usecase.MarketDataProvider = (*YahooMarket)(nil)

// NewYahooMarket は指定された設定とHTTPクライアントでYahooMarketの新しいインスタンスを生成します。
// clientにCookieJarが無い場合は、Jarを持つコピーを使います。
func NewYahooMarket(cfg Config, client *http.Client) *YahooMarket {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.CookieURL == "" {
		cfg.CookieURL = DefaultCookieURL
	}
	if client == nil {
		client = &http.Client{}
	}
	if client.Jar == nil {
		jar, _ := cookiejar.New(nil) // nilオプションではエラーにならない
		c := *client
		c.Jar = jar
		client = &c
	}
	return &YahooMarket{cfg: cfg, client: client}
}

// LookupMetadata は quoteSummary の price モジュールから銘柄名を取得します。
func (y *YahooMarket) LookupMetadata(ctx context.Context, symbol string) (entity.Metadata, error) {
	q := url.Values{}
	q.Set("modules", "price")
	path := "/v10/finance/quoteSummary/" + url.PathEscape(symbol)

	var body dto.QuoteSummaryResponse
	if err := y.getJSON(ctx, path, q, &body); err != nil {
		return entity.Metadata{}, err
	}
	if e := body.QuoteSummary.Error; e != nil {
		return entity.Metadata{}, apiError(e)
	}
	if len(body.QuoteSummary.Result) == 0 {
		return entity.Metadata{}, fmt.Errorf("%w: %s", domain.ErrUnknownTicker, symbol)
	}

	p := body.QuoteSummary.Result[0].Price
	return entity.Metadata{LongName: p.LongName, ShortName: p.ShortName}, nil
}

// LookupFastQuote は v7 quote エンドポイントから価格指標を取得します。
func (y *YahooMarket) LookupFastQuote(ctx context.Context, symbol string) (entity.FastQuote, error) {
	q := url.Values{}
	q.Set("symbols", symbol)

	var body dto.QuoteResponse
	if err := y.getJSON(ctx, "/v7/finance/quote", q, &body); err != nil {
		return entity.FastQuote{}, err
	}
	if e := body.QuoteResponse.Error; e != nil {
		return entity.FastQuote{}, apiError(e)
	}

	r, ok := findResult(body.QuoteResponse.Result, symbol)
	if !ok {
		return entity.FastQuote{}, fmt.Errorf("%w: %s", domain.ErrUnknownTicker, symbol)
	}

	return entity.FastQuote{
		LastPrice:            r.RegularMarketPrice,
		Open:                 r.RegularMarketOpen,
		PreviousClose:        r.RegularMarketPreviousClose,
		DayHigh:              r.RegularMarketDayHigh,
		DayLow:               r.RegularMarketDayLow,
		FiftyDayAverage:      r.FiftyDayAverage,
		TwoHundredDayAverage: r.TwoHundredDayAverage,
		YearHigh:             r.FiftyTwoWeekHigh,
		YearLow:              r.FiftyTwoWeekLow,
		LastVolume:           r.RegularMarketVolume,
		MarketCap:            r.MarketCap,
	}, nil
}

// getJSON はcrumb付きでGETリクエストを実行し、レスポンスをoutにデコードします。
// 401を受けた場合はcrumbを取り直して1度だけ再試行します。
func (y *YahooMarket) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	crumb, err := y.currentCrumb(ctx, "")
	if err != nil {
		return err
	}

	err = y.doGet(ctx, path, q, crumb, out)
	if !errors.Is(err, errUnauthorized) {
		return err
	}

	log.Debug().Str("path", path).Msg("yahoo crumb rejected, refreshing session")
	if crumb, err = y.currentCrumb(ctx, crumb); err != nil {
		return err
	}
	return y.doGet(ctx, path, q, crumb, out)
}

func (y *YahooMarket) doGet(ctx context.Context, path string, q url.Values, crumb string, out any) error {
	params := url.Values{}
	for k, v := range q {
		params[k] = v
	}
	params.Set("crumb", crumb)
	u := fmt.Sprintf("%s%s?%s", y.cfg.BaseURL, path, params.Encode())

	res, err := y.get(ctx, u, "application/json")
	if err != nil {
		return err
	}
	defer closeBody(res)

	switch {
	case res.StatusCode == http.StatusUnauthorized:
		return errUnauthorized
	case res.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: yahoo http %d", domain.ErrUnknownTicker, res.StatusCode)
	case res.StatusCode >= 400:
		return fmt.Errorf("yahoo http %d", res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("yahoo: decode response: %w", err)
	}
	return nil
}

// currentCrumb はキャッシュ済みのcrumbを返します。
// staleが現在のcrumbと一致する場合（=拒否された場合）はハンドシェイクをやり直します。
func (y *YahooMarket) currentCrumb(ctx context.Context, stale string) (string, error) {
	y.mu.Lock()
	defer y.mu.Unlock()

	if y.crumb != "" && y.crumb != stale {
		return y.crumb, nil
	}
	crumb, err := y.handshake(ctx)
	if err != nil {
		return "", err
	}
	y.crumb = crumb
	return crumb, nil
}

// handshake はセッションCookieを取得し、続けてcrumbを取得します。
func (y *YahooMarket) handshake(ctx context.Context) (string, error) {
	// Cookie取得用のホストは404を返すがSet-Cookieは付与される
	res, err := y.get(ctx, y.cfg.CookieURL, "text/html")
	if err != nil {
		return "", fmt.Errorf("yahoo: session cookie: %w", err)
	}
	closeBody(res)

	res, err = y.get(ctx, y.cfg.BaseURL+"/v1/test/getcrumb", "text/plain")
	if err != nil {
		return "", fmt.Errorf("yahoo: crumb: %w", err)
	}
	defer closeBody(res)

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("yahoo: crumb: http %d", res.StatusCode)
	}
	b, err := io.ReadAll(io.LimitReader(res.Body, 256))
	if err != nil {
		return "", fmt.Errorf("yahoo: crumb: %w", err)
	}
	crumb := strings.TrimSpace(string(b))
	if crumb == "" || strings.ContainsAny(crumb, "<{") {
		return "", errors.New("yahoo: crumb: unexpected response")
	}
	return crumb, nil
}

func (y *YahooMarket) get(ctx context.Context, u, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", accept)
	if y.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", y.cfg.UserAgent)
	}
	return y.client.Do(req)
}

func closeBody(res *http.Response) {
	_, _ = io.Copy(io.Discard, res.Body)
	if err := res.Body.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close response body")
	}
}

// findResult はシンボルが一致する結果を探します。
// Yahooはクラス株の区切りに "-" を使うため "BRK.B" と "BRK-B" は同一視します。
func findResult(results []dto.QuoteResult, symbol string) (dto.QuoteResult, bool) {
	want := normalizeSymbol(symbol)
	for _, r := range results {
		if normalizeSymbol(r.Symbol) == want {
			return r, true
		}
	}
	return dto.QuoteResult{}, false
}

func normalizeSymbol(s string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), ".", "-")
}

func apiError(e *dto.APIError) error {
	if strings.EqualFold(e.Code, "Not Found") {
		return fmt.Errorf("%w: yahoo: %s", domain.ErrUnknownTicker, e.Description)
	}
	return fmt.Errorf("yahoo: %s: %s", e.Code, e.Description)
}
