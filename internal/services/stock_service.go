package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "stockpulse/internal/errors"
	"stockpulse/internal/logger"
	"stockpulse/internal/models"
	"stockpulse/internal/pagination"
	"stockpulse/internal/providers"
)

// stockService reconciles upstream data into the stocks table.
type stockService struct {
	db       *gorm.DB
	quotes   QuoteProvider
	profiles ProfileProvider
}

// NewStockService creates a new StockServicer.
func NewStockService(db *gorm.DB, quotes QuoteProvider, profiles ProfileProvider) StockServicer {
	return &stockService{db: db, quotes: quotes, profiles: profiles}
}

// GetOrRefreshStock runs the fetch-merge-persist workflow for one symbol.
// Quotes are fetched first, then the profile scrape; both are awaited
// sequentially. A record already stored for the symbol is overwritten in
// full, including a reset of the purchase tracking fields.
func (s *stockService) GetOrRefreshStock(ctx context.Context, symbol string, date models.Date) (*models.Stock, error) {
	code := strings.ToUpper(symbol)

	quote, err := s.quotes.FetchDailyQuote(ctx, code, date.String())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrQuoteDataUnavailable, err)
	}
	if quote == nil {
		// The upstream answered but had no data. Fail the reconciliation
		// rather than store a record with undefined OHLC fields.
		return nil, apperrors.ErrQuoteDataUnavailable
	}

	profile, err := s.profiles.FetchProfile(ctx, code)
	if err != nil {
		logger.Get().Errorw("profile scrape failed, continuing with defaults", "symbol", code, "error", err)
		profile = nil
	}
	if profile == nil {
		profile = &providers.CompanyProfile{}
	}
	if profile.Competitors == nil {
		profile.Competitors = []models.Competitor{}
	}

	stock := models.Stock{
		Status:          models.StockStatusActive,
		PurchasedAmount: 0,
		PurchasedStatus: models.PurchaseStatusNotPurchased,
		RequestDate:     date,
		CompanyCode:     code,
		CompanyName:     profile.CompanyName,
		StockValues:     *quote,
		PerformanceData: profile.Performance,
		Competitors:     profile.Competitors,
	}

	var existing models.Stock
	err = s.db.WithContext(ctx).Where("company_code = ?", code).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		result := s.db.WithContext(ctx).Create(&stock)
		if result.Error != nil {
			return nil, apperrors.Wrap(apperrors.ErrStockStorage, result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, apperrors.ErrStockStorage
		}
		return &stock, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// Overwrite every fetched field for the existing row. A map is used so
	// zero values (purchased_amount in particular) are written as well.
	result := s.db.WithContext(ctx).Model(&models.Stock{}).
		Where("company_code = ?", code).
		Updates(map[string]interface{}{
			"status":           stock.Status,
			"purchased_amount": stock.PurchasedAmount,
			"purchased_status": stock.PurchasedStatus,
			"request_date":     stock.RequestDate,
			"company_name":     stock.CompanyName,
			"stock_values":     stock.StockValues,
			"performance_data": stock.PerformanceData,
			"competitors":      stock.Competitors,
		})
	if result.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrStockStorage, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.ErrStockStorage
	}

	stock.ID = existing.ID
	return &stock, nil
}

// UpdatePurchasedAmount updates only purchased_amount for the stored record.
func (s *stockService) UpdatePurchasedAmount(ctx context.Context, symbol string, amount int) (*models.Stock, error) {
	code := strings.ToUpper(symbol)

	var stock models.Stock
	err := s.db.WithContext(ctx).Where("company_code = ?", code).First(&stock).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrStockNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := s.db.WithContext(ctx).Model(&stock).Update("purchased_amount", amount)
	if result.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrStockStorage, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.ErrStockStorage
	}

	return &stock, nil
}

// ListStocks returns a paginated list of stored records ordered by symbol.
func (s *stockService) ListStocks(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.Stock], error) {
	page.Defaults()

	var totalItems int64
	if err := s.db.WithContext(ctx).Model(&models.Stock{}).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var stocks []models.Stock
	if err := s.db.WithContext(ctx).Order("company_code ASC").Scopes(pagination.Paginate(page)).Find(&stocks).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(stocks, page.Page, page.PageSize, totalItems)
	return &result, nil
}
