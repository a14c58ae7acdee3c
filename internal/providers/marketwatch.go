package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"stockpulse/internal/logger"
	"stockpulse/internal/models"

	"golang.org/x/net/html"
)

const marketWatchBaseURL = "https://www.marketwatch.com"

// browserHeaders are required on profile-page requests; MarketWatch rejects
// default Go client headers. Accept-Encoding is left to the transport so
// response bodies arrive decompressed.
var browserHeaders = map[string]string{
	"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3",
	"Accept-Language":           "pt-BR,en;q=0.9",
	"Connection":                "keep-alive",
	"Upgrade-Insecure-Requests": "1",
	"Cache-Control":             "max-age=0",
}

// CompanyProfile is the scraped profile-page data. CompanyName may be empty
// and Performance may be all zeros when the corresponding page sections are
// missing or malformed; Competitors is never nil.
type CompanyProfile struct {
	CompanyName string
	Performance models.PerformanceData
	Competitors []models.Competitor
}

// MarketWatchProvider scrapes company profile pages from MarketWatch.
type MarketWatchProvider struct {
	httpClient *http.Client
	baseURL    string // overridable for tests
}

// NewMarketWatchProvider creates a new MarketWatch profile scraper.
func NewMarketWatchProvider(httpClient *http.Client) *MarketWatchProvider {
	return &MarketWatchProvider{httpClient: httpClient, baseURL: marketWatchBaseURL}
}

// NewMarketWatchProviderWithBaseURL creates a scraper pointed at a custom
// base URL. Used for tests.
func NewMarketWatchProviderWithBaseURL(httpClient *http.Client, baseURL string) *MarketWatchProvider {
	return &MarketWatchProvider{httpClient: httpClient, baseURL: baseURL}
}

// FetchProfile fetches and parses the profile page for symbol. The three
// page sections (company name, performance table, competitors table) are
// extracted independently: a malformed or missing section is logged and
// leaves its fields at their defaults without affecting the others. A 401
// from the page fetch itself is the one distinct failure mode that yields
// no profile at all.
func (p *MarketWatchProvider) FetchProfile(ctx context.Context, symbol string) (*CompanyProfile, error) {
	url := fmt.Sprintf("%s/investing/stock/%s?mod=search_symbol", p.baseURL, strings.ToLower(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	for key, value := range browserHeaders {
		req.Header.Set(key, value)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		logger.Get().Errorw("marketwatch rejected request as unauthorized, additional headers or cookies may be needed",
			"symbol", symbol)
		return nil, nil
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}

	return &CompanyProfile{
		CompanyName: extractCompanyName(doc),
		Performance: extractPerformance(doc),
		Competitors: extractCompetitors(doc),
	}, nil
}
