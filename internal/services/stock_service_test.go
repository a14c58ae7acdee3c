package services

import (
	"context"
	"errors"
	"testing"

	"stockpulse/internal/models"
	"stockpulse/internal/pagination"
	"stockpulse/internal/providers"
	"stockpulse/internal/testutil"
)

// --- stub providers ---

type stubQuoteProvider struct {
	quote *models.QuoteValues
	err   error
	calls int
}

func (s *stubQuoteProvider) FetchDailyQuote(_ context.Context, _, _ string) (*models.QuoteValues, error) {
	s.calls++
	return s.quote, s.err
}

type stubProfileProvider struct {
	profile *providers.CompanyProfile
	err     error
	calls   int
}

func (s *stubProfileProvider) FetchProfile(_ context.Context, _ string) (*providers.CompanyProfile, error) {
	s.calls++
	return s.profile, s.err
}

func defaultQuote() *models.QuoteValues {
	return &models.QuoteValues{Open: 189.33, High: 191.95, Low: 188.82, Close: 191.56}
}

func defaultProfile() *providers.CompanyProfile {
	return &providers.CompanyProfile{
		CompanyName: "Apple Inc.",
		Performance: models.PerformanceData{FiveDays: 1.2, OneYear: 25.5},
		Competitors: []models.Competitor{
			{Name: "Microsoft Corp.", MarketCap: models.MarketCap{Value: 3.33, Currency: "$"}},
		},
	}
}

func TestGetOrRefreshStock_CreatesRecord(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	quotes := &stubQuoteProvider{quote: defaultQuote()}
	profiles := &stubProfileProvider{profile: defaultProfile()}
	svc := NewStockService(db, quotes, profiles)

	date := models.MustParseDate("2024-03-01")
	stock, err := svc.GetOrRefreshStock(context.Background(), "aapl", date)
	testutil.AssertNoError(t, err)

	if stock.ID == 0 {
		t.Fatal("expected non-zero stock ID")
	}
	if stock.CompanyCode != "AAPL" {
		t.Errorf("expected upper-cased company code, got %q", stock.CompanyCode)
	}
	if stock.Status != models.StockStatusActive {
		t.Errorf("expected status active, got %q", stock.Status)
	}
	if stock.PurchasedAmount != 0 {
		t.Errorf("expected purchased amount 0, got %d", stock.PurchasedAmount)
	}
	if stock.PurchasedStatus != models.PurchaseStatusNotPurchased {
		t.Errorf("expected purchase status %q, got %q", models.PurchaseStatusNotPurchased, stock.PurchasedStatus)
	}
	if !stock.RequestDate.Equal(date) {
		t.Errorf("expected request date %s, got %s", date, stock.RequestDate)
	}
	if stock.StockValues != *defaultQuote() {
		t.Errorf("unexpected stock values: %+v", stock.StockValues)
	}
	if stock.CompanyName != "Apple Inc." {
		t.Errorf("unexpected company name: %q", stock.CompanyName)
	}
	if len(stock.Competitors) != 1 {
		t.Errorf("unexpected competitors: %+v", stock.Competitors)
	}

	var stored models.Stock
	testutil.AssertNoError(t, db.Where("company_code = ?", "AAPL").First(&stored).Error)
	if stored.StockValues != *defaultQuote() {
		t.Errorf("stored stock values do not round-trip: %+v", stored.StockValues)
	}
	if stored.PerformanceData != stock.PerformanceData {
		t.Errorf("stored performance data does not round-trip: %+v", stored.PerformanceData)
	}
}

func TestGetOrRefreshStock_OverwritesExistingRecord(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	quotes := &stubQuoteProvider{quote: defaultQuote()}
	profiles := &stubProfileProvider{profile: defaultProfile()}
	svc := NewStockService(db, quotes, profiles)

	first, err := svc.GetOrRefreshStock(context.Background(), "AAPL", models.MustParseDate("2024-03-01"))
	testutil.AssertNoError(t, err)

	// Simulate a purchase between reconciliations.
	_, err = svc.UpdatePurchasedAmount(context.Background(), "AAPL", 160)
	testutil.AssertNoError(t, err)

	// Upstream data changed for the second read-through.
	quotes.quote = &models.QuoteValues{Open: 200, High: 205, Low: 199, Close: 204}
	profiles.profile = &providers.CompanyProfile{
		CompanyName: "Apple Incorporated",
		Performance: models.PerformanceData{OneMonth: 9.9},
		Competitors: []models.Competitor{},
	}

	second, err := svc.GetOrRefreshStock(context.Background(), "AAPL", models.MustParseDate("2024-03-02"))
	testutil.AssertNoError(t, err)

	if second.ID != first.ID {
		t.Errorf("expected record to be overwritten, not recreated: %d vs %d", second.ID, first.ID)
	}

	var stored models.Stock
	testutil.AssertNoError(t, db.Where("company_code = ?", "AAPL").First(&stored).Error)

	if stored.StockValues.Open != 200 {
		t.Errorf("expected refreshed stock values, got %+v", stored.StockValues)
	}
	if stored.CompanyName != "Apple Incorporated" {
		t.Errorf("expected refreshed company name, got %q", stored.CompanyName)
	}
	if stored.PerformanceData.OneMonth != 9.9 || stored.PerformanceData.FiveDays != 0 {
		t.Errorf("expected refreshed performance data, got %+v", stored.PerformanceData)
	}
	if len(stored.Competitors) != 0 {
		t.Errorf("expected refreshed competitors, got %+v", stored.Competitors)
	}
	if !stored.RequestDate.Equal(models.MustParseDate("2024-03-02")) {
		t.Errorf("expected refreshed request date, got %s", stored.RequestDate)
	}

	// Reconciliation resets purchase tracking.
	if stored.PurchasedAmount != 0 {
		t.Errorf("expected purchased amount reset to 0, got %d", stored.PurchasedAmount)
	}
	if stored.PurchasedStatus != models.PurchaseStatusNotPurchased {
		t.Errorf("expected purchase status reset, got %q", stored.PurchasedStatus)
	}

	var count int64
	testutil.AssertNoError(t, db.Model(&models.Stock{}).Count(&count).Error)
	if count != 1 {
		t.Errorf("expected exactly one record per symbol, got %d", count)
	}
}

func TestGetOrRefreshStock_QuoteUnavailable(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	t.Run("no_data", func(t *testing.T) {
		svc := NewStockService(db, &stubQuoteProvider{quote: nil}, &stubProfileProvider{profile: defaultProfile()})

		_, err := svc.GetOrRefreshStock(context.Background(), "AAPL", models.MustParseDate("2024-03-01"))
		testutil.AssertAppError(t, err, "QUOTE_DATA_UNAVAILABLE")
	})

	t.Run("transport_error", func(t *testing.T) {
		svc := NewStockService(db, &stubQuoteProvider{err: errors.New("boom")}, &stubProfileProvider{profile: defaultProfile()})

		_, err := svc.GetOrRefreshStock(context.Background(), "AAPL", models.MustParseDate("2024-03-01"))
		testutil.AssertAppError(t, err, "QUOTE_DATA_UNAVAILABLE")
	})

	var count int64
	testutil.AssertNoError(t, db.Model(&models.Stock{}).Count(&count).Error)
	if count != 0 {
		t.Errorf("expected nothing persisted on quote failure, got %d records", count)
	}
}

func TestGetOrRefreshStock_ScrapeFailureDegradesToDefaults(t *testing.T) {
	cases := []struct {
		name     string
		profiles *stubProfileProvider
	}{
		{"no_profile", &stubProfileProvider{profile: nil}},
		{"scrape_error", &stubProfileProvider{err: errors.New("parse failed")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			defer testutil.TeardownTestDB(t, db)

			svc := NewStockService(db, &stubQuoteProvider{quote: defaultQuote()}, tc.profiles)

			stock, err := svc.GetOrRefreshStock(context.Background(), "AAPL", models.MustParseDate("2024-03-01"))
			testutil.AssertNoError(t, err)

			if stock.CompanyName != "" {
				t.Errorf("expected empty company name, got %q", stock.CompanyName)
			}
			if stock.PerformanceData != (models.PerformanceData{}) {
				t.Errorf("expected zero performance data, got %+v", stock.PerformanceData)
			}
			if stock.Competitors == nil {
				t.Fatal("expected empty competitor list, got nil")
			}
			if len(stock.Competitors) != 0 {
				t.Errorf("expected no competitors, got %+v", stock.Competitors)
			}
			// Quote data is still stored.
			if stock.StockValues != *defaultQuote() {
				t.Errorf("unexpected stock values: %+v", stock.StockValues)
			}
		})
	}
}

func TestUpdatePurchasedAmount(t *testing.T) {
	t.Run("updates_only_purchased_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		seeded := testutil.SeedStock(t, db, "AAPL")
		svc := NewStockService(db, &stubQuoteProvider{}, &stubProfileProvider{})

		updated, err := svc.UpdatePurchasedAmount(context.Background(), "aapl", 160)
		testutil.AssertNoError(t, err)

		if updated.PurchasedAmount != 160 {
			t.Errorf("expected purchased amount 160, got %d", updated.PurchasedAmount)
		}

		var stored models.Stock
		testutil.AssertNoError(t, db.First(&stored, seeded.ID).Error)
		if stored.PurchasedAmount != 160 {
			t.Errorf("expected stored purchased amount 160, got %d", stored.PurchasedAmount)
		}
		if stored.CompanyName != seeded.CompanyName {
			t.Errorf("company name changed: %q vs %q", stored.CompanyName, seeded.CompanyName)
		}
		if stored.PurchasedStatus != seeded.PurchasedStatus {
			t.Errorf("purchased status changed: %q vs %q", stored.PurchasedStatus, seeded.PurchasedStatus)
		}
		if stored.StockValues != seeded.StockValues {
			t.Errorf("stock values changed: %+v vs %+v", stored.StockValues, seeded.StockValues)
		}
		if stored.PerformanceData != seeded.PerformanceData {
			t.Errorf("performance data changed: %+v vs %+v", stored.PerformanceData, seeded.PerformanceData)
		}
		if len(stored.Competitors) != len(seeded.Competitors) {
			t.Errorf("competitors changed: %+v vs %+v", stored.Competitors, seeded.Competitors)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		svc := NewStockService(db, &stubQuoteProvider{}, &stubProfileProvider{})

		_, err := svc.UpdatePurchasedAmount(context.Background(), "MISSING", 10)
		testutil.AssertAppError(t, err, "STOCK_NOT_FOUND")
	})
}

func TestListStocks(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	testutil.SeedStock(t, db, "MSFT")
	testutil.SeedStock(t, db, "AAPL")
	testutil.SeedStock(t, db, "GOOG")

	svc := NewStockService(db, &stubQuoteProvider{}, &stubProfileProvider{})

	result, err := svc.ListStocks(context.Background(), pagination.PageRequest{Page: 1, PageSize: 2})
	testutil.AssertNoError(t, err)

	if result.TotalItems != 3 {
		t.Errorf("expected 3 total items, got %d", result.TotalItems)
	}
	if result.TotalPages != 2 {
		t.Errorf("expected 2 total pages, got %d", result.TotalPages)
	}
	if len(result.Data) != 2 {
		t.Fatalf("expected 2 items on page, got %d", len(result.Data))
	}
	if result.Data[0].CompanyCode != "AAPL" || result.Data[1].CompanyCode != "GOOG" {
		t.Errorf("expected symbol ordering, got %s, %s", result.Data[0].CompanyCode, result.Data[1].CompanyCode)
	}
}
