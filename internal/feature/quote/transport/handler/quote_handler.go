// Package handler はquoteフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"quote_backend/internal/feature/quote/domain"
	"quote_backend/internal/feature/quote/domain/entity"
	"quote_backend/internal/feature/quote/transport/http/dto"
	"quote_backend/internal/platform/http/middleware"
)

// QuoteUsecase はクォート取得のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type QuoteUsecase interface {
	GetQuote(ctx context.Context, ticker string) (entity.QuoteRecord, error)
}

// QuoteHandler はクォートのHTTPリクエストを処理します。
type QuoteHandler struct {
	uc QuoteUsecase
}

// NewQuoteHandler は指定されたusecaseでQuoteHandlerの新しいインスタンスを生成します。
func NewQuoteHandler(uc QuoteUsecase) *QuoteHandler {
	return &QuoteHandler{uc: uc}
}

// GetQuote は銘柄コードを受け取り、正規化されたクォートをJSONで返します。
//
// エンドポイント例:
// GET /stocks/:ticker
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	ticker := c.Param("ticker")

	q, err := h.uc.GetQuote(c.Request.Context(), ticker)
	if err != nil {
		h.writeError(c, ticker, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteResponse(q))
}

// writeError はエラー種別をHTTPステータスに対応付けて返します。
func (h *QuoteHandler) writeError(c *gin.Context, ticker string, err error) {
	_ = c.Error(err)

	status, code, msg := http.StatusInternalServerError, dto.CodeInternal, "internal server error"
	switch {
	case errors.Is(err, domain.ErrUnknownTicker):
		status, code, msg = http.StatusNotFound, dto.CodeUnknownTicker, "ticker not found"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		status, code, msg = http.StatusBadGateway, dto.CodeUpstreamUnavailable, domain.ErrUpstreamUnavailable.Error()
	}

	requestID := middleware.GetRequestID(c)
	event := log.Error()
	if status < http.StatusInternalServerError {
		event = log.Warn()
	}
	event.
		Err(err).
		Str("request_id", requestID).
		Str("ticker", entity.CanonicalTicker(ticker)).
		Int("status", status).
		Msg("quote lookup failed")

	c.JSON(status, dto.ErrorResponse{Error: msg, Code: code, RequestID: requestID})
}
