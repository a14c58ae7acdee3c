package integration

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"stockpulse/internal/handlers"
	"stockpulse/internal/logger"
	"stockpulse/internal/middleware"
	"stockpulse/internal/models"
	"stockpulse/internal/providers"
	"stockpulse/internal/services"
	"stockpulse/internal/validator"
)

// testApp holds the full application stack for integration tests, with
// counting fake upstreams in place of Polygon and MarketWatch.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
	Cache  *memoryCache

	QuoteCalls  *atomic.Int64
	ScrapeCalls *atomic.Int64

	polygonServer     *httptest.Server
	marketWatchServer *httptest.Server
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// memoryCache is an in-memory StockCache standing in for Redis.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (m *memoryCache) ReadThrough(ctx context.Context, key string, compute func(context.Context) ([]byte, error)) ([]byte, error) {
	m.mu.Lock()
	payload, ok := m.entries[key]
	m.mu.Unlock()
	if ok {
		return payload, nil
	}

	payload, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.entries[key] = payload
	m.mu.Unlock()
	return payload, nil
}

func (m *memoryCache) Put(_ context.Context, key string, payload []byte) error {
	m.mu.Lock()
	m.entries[key] = payload
	m.mu.Unlock()
	return nil
}

func (m *memoryCache) get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	payload, ok := m.entries[key]
	return payload, ok
}

var _ handlers.StockCache = (*memoryCache)(nil)

const profilePage = `<html><body>
<h1 class="company__name">Apple Inc.</h1>
<div class="element element--table performance">
  <table><tbody>
    <tr class="table__row">
      <td class="table__cell">5 Day</td>
      <td class="table__cell"><ul><li class="content__item value ignore-color">1.20%</li></ul></td>
    </tr>
    <tr class="table__row">
      <td class="table__cell">1 Year</td>
      <td class="table__cell"><ul><li class="content__item value ignore-color">25.50%</li></ul></td>
    </tr>
  </tbody></table>
</div>
<table aria-label="Competitors data table">
  <tbody>
    <tr class="table__row"><td>Microsoft Corp.</td><td>0.5%</td><td>$3.33</td></tr>
  </tbody>
</table>
</body></html>`

// setupIsolatedDB creates an isolated in-memory SQLite database.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:integrationdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&models.Stock{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp wires the full stack against fake upstreams. polygonStatus lets
// a test force an upstream failure mode.
func setupApp(t *testing.T, polygonStatus int) *testApp {
	t.Helper()

	app := &testApp{
		DB:          setupIsolatedDB(t),
		Cache:       newMemoryCache(),
		QuoteCalls:  &atomic.Int64{},
		ScrapeCalls: &atomic.Int64{},
	}

	app.polygonServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.QuoteCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if polygonStatus != http.StatusOK {
			w.WriteHeader(polygonStatus)
			_, _ = w.Write([]byte(`{"error":"denied"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"OK","symbol":"AAPL","open":189.33,"high":191.95,"low":188.82,"close":191.56}`))
	}))
	t.Cleanup(app.polygonServer.Close)

	app.marketWatchServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.ScrapeCalls.Add(1)
		_, _ = w.Write([]byte(profilePage))
	}))
	t.Cleanup(app.marketWatchServer.Close)

	quotes := providers.NewPolygonProviderWithBaseURL(http.DefaultClient, "test-key", app.polygonServer.URL)
	profiles := providers.NewMarketWatchProviderWithBaseURL(http.DefaultClient, app.marketWatchServer.URL)

	stockService := services.NewStockService(app.DB, quotes, profiles)
	stockHandler := handlers.NewStockHandler(stockService, app.Cache)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	stock := router.Group("/stock")
	stock.GET("", stockHandler.ListStocks)
	stock.GET("/:symbol", stockHandler.GetStock)
	stock.POST("/:symbol", stockHandler.UpdateStock)

	app.Router = router
	return app
}
