package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// RecordSaleRequest is the body of POST /api/sales. Quantity is a pointer so a
// missing field can be told apart from an explicit zero.
type RecordSaleRequest struct {
	ProductID   string  `json:"product_id"`
	Quantity    *int    `json:"quantity"`
	Description *string `json:"description"`
}

type SaleFilter struct {
	ProductID string `form:"product_id" validate:"omitempty,uuid"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	Description *string         `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

type RecordSaleResponse struct {
	Sale            SaleResponse    `json:"sale"`
	Message         string          `json:"message"`
	IncomeGenerated decimal.Decimal `json:"income_generated"`
	CostRecorded    decimal.Decimal `json:"cost_recorded"`
	ProfitGenerated decimal.Decimal `json:"profit_generated"`
	StockRemaining  int             `json:"stock_remaining"`
}

type SaleDetailResponse struct {
	Sale SaleResponse `json:"sale"`
}

type SaleListResponse struct {
	Sales []SaleResponse `json:"sales"`
}

// SalesStatsResponse keeps the camelCase names the dashboard reads.
type SalesStatsResponse struct {
	TotalSales           int64           `json:"totalSales"`
	TotalQuantitySold    int64           `json:"totalQuantitySold"`
	TotalRevenue         decimal.Decimal `json:"totalRevenue"`
	DistinctProductsSold int64           `json:"distinctProductsSold"`
	RecentSales          []SaleResponse  `json:"recentSales"`
}
