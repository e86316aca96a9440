// Package http provides the outbound HTTP client used by market data adapters.
package http

import (
	"net"
	"net/http"
	"time"
)

// DefaultUserAgent is sent when the caller does not set one. Some providers
// reject requests without a browser-like User-Agent.
const DefaultUserAgent = "Mozilla/5.0 (compatible; quote-backend/1.0)"

// NewHTTPClient は外部API呼び出し用に設定されたHTTPクライアントを作成します。
//
// 設定:
//   - Dialer.Timeout / TLSHandshakeTimeout / ResponseHeaderTimeout: 接続の各段階の上限
//   - MaxIdleConnsPerHost: 同一プロバイダへの接続再利用
//   - Client.Timeout: リクエスト全体のタイムアウト（呼び出し元から渡される）
//   - User-Agent: 未設定のリクエストにのみ付与
//
// 注意:
//   - http.DefaultClientにはタイムアウトがないため、常にこのクライアントを使用すること
func NewHTTPClient(timeout time.Duration, userAgent string) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: timeout,
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &userAgentTransport{base: t, userAgent: userAgent},
	}
}

// userAgentTransport sets User-Agent on requests that do not carry one.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (u *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return u.base.RoundTrip(req)
	}
	// RoundTripperはリクエストを書き換えてはならないためクローンする
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", u.userAgent)
	return u.base.RoundTrip(r)
}
