// Package testutil provides test helpers for setting up in-memory
// databases, creating fixtures, and making assertions.
package testutil

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	apperrors "stockpulse/internal/errors"
	"stockpulse/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

// SetupTestDB creates an isolated in-memory SQLite database with the stock
// schema migrated.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&models.Stock{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// TeardownTestDB closes the underlying database connection.
func TeardownTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	sqlDB, err := db.DB()
	if err != nil {
		t.Errorf("failed to get underlying DB for teardown: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		t.Errorf("failed to close test database: %v", err)
	}
}

// SeedStock inserts a stored stock record for code with representative
// fetched data, returning the persisted row.
func SeedStock(t *testing.T, db *gorm.DB, code string) *models.Stock {
	t.Helper()

	stock := &models.Stock{
		Status:          models.StockStatusActive,
		PurchasedAmount: 0,
		PurchasedStatus: models.PurchaseStatusNotPurchased,
		RequestDate:     models.MustParseDate("2024-03-01"),
		CompanyCode:     code,
		CompanyName:     code + " Inc.",
		StockValues:     models.QuoteValues{Open: 10, High: 12, Low: 9, Close: 11},
		PerformanceData: models.PerformanceData{FiveDays: 1.5, OneYear: 20.1},
		Competitors: models.CompetitorList{
			{Name: "Rival Corp.", MarketCap: models.MarketCap{Value: 3.33, Currency: "$"}},
		},
	}
	if err := db.Create(stock).Error; err != nil {
		t.Fatalf("failed to seed stock %s: %v", code, err)
	}
	return stock
}

// AssertAppError checks that err is an *AppError with the expected error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
