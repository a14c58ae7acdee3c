package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// QuoteValues holds the four OHLC floats from the quotes upstream.
type QuoteValues struct {
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// PerformanceData holds trailing performance percentages for the five fixed
// periods. The zero value is the documented default: every period 0.0.
type PerformanceData struct {
	FiveDays    float64 `json:"five_days"`
	OneMonth    float64 `json:"one_month"`
	ThreeMonths float64 `json:"three_months"`
	YearToDate  float64 `json:"year_to_date"`
	OneYear     float64 `json:"one_year"`
}

// MarketCap is a scraped market capitalization with its currency marker.
type MarketCap struct {
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
}

// Competitor is one row of the scraped competitors table.
type Competitor struct {
	Name      string    `json:"name"`
	MarketCap MarketCap `json:"market_cap"`
}

// CompetitorList is stored as a JSON column. It marshals as [] rather than
// null when empty so clients always receive a list.
type CompetitorList []Competitor

// MarshalJSON renders a nil list as an empty JSON array.
func (l CompetitorList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Competitor(l))
}

// Value implements driver.Valuer for JSON column storage.
func (l CompetitorList) Value() (driver.Value, error) {
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for JSON column storage.
func (l *CompetitorList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// Value implements driver.Valuer for JSON column storage.
func (v QuoteValues) Value() (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for JSON column storage.
func (v *QuoteValues) Scan(value interface{}) error {
	return scanJSON(value, v)
}

// Value implements driver.Valuer for JSON column storage.
func (p PerformanceData) Value() (driver.Value, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for JSON column storage.
func (p *PerformanceData) Scan(value interface{}) error {
	return scanJSON(value, p)
}

// scanJSON unmarshals a JSON column value that drivers may hand back as
// either bytes or a string. NULL leaves the destination zero-valued.
func scanJSON(value interface{}, dest interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported JSON column type %T", value)
	}
}
