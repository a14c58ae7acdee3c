// Package services contains the business logic between the HTTP handlers
// and storage.
package services

import (
	"context"

	"stockpulse/internal/models"
	"stockpulse/internal/pagination"
	"stockpulse/internal/providers"
)

// QuoteProvider fetches daily OHLC values for a symbol and ISO date.
// A nil quote with a nil error means the upstream had no data.
type QuoteProvider interface {
	FetchDailyQuote(ctx context.Context, symbol, date string) (*models.QuoteValues, error)
}

// ProfileProvider scrapes company profile data for a symbol.
// A nil profile with a nil error means the page could not be fetched.
type ProfileProvider interface {
	FetchProfile(ctx context.Context, symbol string) (*providers.CompanyProfile, error)
}

// StockServicer defines the stock reconciliation and update operations.
type StockServicer interface {
	// GetOrRefreshStock fetches quote and profile data for symbol on the
	// given date, merges them, and inserts or fully overwrites the stored
	// record for that symbol.
	GetOrRefreshStock(ctx context.Context, symbol string, date models.Date) (*models.Stock, error)

	// UpdatePurchasedAmount sets purchased_amount on an existing record,
	// leaving every other field untouched.
	UpdatePurchasedAmount(ctx context.Context, symbol string, amount int) (*models.Stock, error)

	// ListStocks returns stored records ordered by symbol, paginated.
	ListStocks(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.Stock], error)
}
