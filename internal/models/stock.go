package models

// Stock is the single authoritative record kept per ticker symbol. It merges
// the Polygon open-close quote with the scraped MarketWatch profile data and
// tracks the purchase fields mutable through the update endpoint.
type Stock struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Status          string          `gorm:"not null" json:"status"`
	PurchasedAmount int             `gorm:"not null;default:0" json:"purchased_amount"`
	PurchasedStatus string          `gorm:"not null" json:"purchased_status"`
	RequestDate     Date            `gorm:"type:date" json:"request_date"`
	CompanyCode     string          `gorm:"not null;uniqueIndex:uq_stocks_company_code" json:"company_code"`
	CompanyName     string          `json:"company_name"`
	StockValues     QuoteValues     `gorm:"type:jsonb" json:"stock_values"`
	PerformanceData PerformanceData `gorm:"type:jsonb" json:"performance_data"`
	Competitors     CompetitorList  `gorm:"type:jsonb" json:"competitors"`
}

// Stock status and purchase status values set by reconciliation.
const (
	StockStatusActive          = "active"
	PurchaseStatusNotPurchased = "not purchased"
)
