package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "stockpulse/internal/errors"
	"stockpulse/internal/logger"
	"stockpulse/internal/models"
	"stockpulse/internal/pagination"
	"stockpulse/internal/services"
)

// StockCache is the cache surface the handler needs: read-through on GET
// and write-through refresh on POST.
type StockCache interface {
	ReadThrough(ctx context.Context, key string, compute func(context.Context) ([]byte, error)) ([]byte, error)
	Put(ctx context.Context, key string, payload []byte) error
}

// StockHandler handles stock-related requests.
type StockHandler struct {
	stockService services.StockServicer
	cache        StockCache
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(stockService services.StockServicer, cache StockCache) *StockHandler {
	return &StockHandler{stockService: stockService, cache: cache}
}

// stockURI binds the symbol path parameter.
type stockURI struct {
	Symbol string `uri:"symbol" binding:"required,ticker"`
}

// getStockQuery binds the optional quote date. Defaults to yesterday when
// absent.
type getStockQuery struct {
	Date string `form:"date" binding:"omitempty,iso_date"`
}

// UpdateStockRequest is the request payload for the purchase update. A
// pointer keeps zero a valid amount.
type UpdateStockRequest struct {
	PurchasedAmount *int `json:"purchased_amount" binding:"required,gte=0"`
}

// GetStock serves a stock record, read-through cached by symbol. On a
// cache miss the record is reconciled from the upstreams and persisted
// before being returned; within the TTL the exact cached payload is
// replayed without touching the upstreams.
func (h *StockHandler) GetStock(c *gin.Context) {
	var uri stockURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var query getStockQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	date := models.NewDate(time.Now().AddDate(0, 0, -1))
	if query.Date != "" {
		parsed, err := models.ParseDate(query.Date)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid date, expected YYYY-MM-DD"))
			return
		}
		date = parsed
	}

	key := strings.ToUpper(uri.Symbol)

	payload, err := h.cache.ReadThrough(c.Request.Context(), key, func(ctx context.Context) ([]byte, error) {
		stock, err := h.stockService.GetOrRefreshStock(ctx, uri.Symbol, date)
		if err != nil {
			return nil, err
		}
		return json.Marshal(stock)
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

// UpdateStock updates the purchased amount for a stored stock and
// refreshes its cache entry.
func (h *StockHandler) UpdateStock(c *gin.Context) {
	var uri stockURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var req UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	stock, err := h.stockService.UpdatePurchasedAmount(c.Request.Context(), uri.Symbol, *req.PurchasedAmount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	payload, err := json.Marshal(stock)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	key := strings.ToUpper(uri.Symbol)
	if err := h.cache.Put(c.Request.Context(), key, payload); err != nil {
		logger.Get().Warnw("cache refresh failed", "key", key, "error", err)
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

// ListStocks serves a paginated list of stored stock records straight from
// storage; no upstream fetch and no cache involvement.
func (h *StockHandler) ListStocks(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.stockService.ListStocks(c.Request.Context(), page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
