package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is owned by the catalog. Sales only touch it through the stock
// deduction step, and quantity may never go below zero.
type Product struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name           string    `gorm:"index;not null"`
	Description    *string
	Category       *string
	SellingPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CostPrice      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	QuantityOnHand int             `gorm:"column:quantity;not null;default:0;check:chk_products_quantity,quantity >= 0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
