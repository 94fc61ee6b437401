package dto

import "github.com/shopspring/decimal"

type ProductForSale struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Quantity     int             `json:"quantity"`
}

type ProductsForSaleResponse struct {
	Products []ProductForSale `json:"products"`
}
