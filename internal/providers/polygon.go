package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"stockpulse/internal/logger"
	"stockpulse/internal/models"
)

const polygonBaseURL = "https://api.polygon.io"

// polygonOpenCloseResponse is the payload of the v1 open-close endpoint.
// Only the OHLC fields are consumed.
type polygonOpenCloseResponse struct {
	Status string  `json:"status"`
	Symbol string  `json:"symbol"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
}

// PolygonProvider fetches daily OHLC quotes from the Polygon open-close API.
type PolygonProvider struct {
	httpClient *http.Client
	baseURL    string // overridable for tests
	apiKey     string
}

// NewPolygonProvider creates a new Polygon quotes provider.
func NewPolygonProvider(httpClient *http.Client, apiKey string) *PolygonProvider {
	return &PolygonProvider{httpClient: httpClient, baseURL: polygonBaseURL, apiKey: apiKey}
}

// NewPolygonProviderWithBaseURL creates a provider pointed at a custom base
// URL. Used for tests and non-default deployments.
func NewPolygonProviderWithBaseURL(httpClient *http.Client, apiKey, baseURL string) *PolygonProvider {
	return &PolygonProvider{httpClient: httpClient, baseURL: baseURL, apiKey: apiKey}
}

// FetchDailyQuote fetches OHLC values for symbol on the given ISO date
// (YYYY-MM-DD). Unauthorized, forbidden, and other non-200 responses are
// logged and yield a nil quote with no error: the upstream simply has no
// data for the caller. Transport-level failures return an error.
func (p *PolygonProvider) FetchDailyQuote(ctx context.Context, symbol, date string) (*models.QuoteValues, error) {
	url := fmt.Sprintf("%s/v1/open-close/%s/%s?apiKey=%s", p.baseURL, strings.ToUpper(symbol), date, p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		// Parsed below.
	case http.StatusUnauthorized:
		logger.Get().Errorw("polygon rejected request as unauthorized", "symbol", symbol)
		return nil, nil
	case http.StatusForbidden:
		logger.Get().Errorw("polygon rejected request as forbidden, check the API key", "symbol", symbol)
		return nil, nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		logger.Get().Errorw("polygon request failed",
			"symbol", symbol,
			"status", resp.StatusCode,
			"body", string(body),
		)
		return nil, nil
	}

	var payload polygonOpenCloseResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &models.QuoteValues{
		Open:  payload.Open,
		High:  payload.High,
		Low:   payload.Low,
		Close: payload.Close,
	}, nil
}
