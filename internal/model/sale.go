package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is an append-only ledger entry. ProductName and UnitPrice are
// snapshots taken at sale time and never follow later catalog edits.
type Sale struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ProductID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductName string          `gorm:"not null"`
	Quantity    int             `gorm:"not null;check:chk_sales_quantity,quantity > 0"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Description *string
	CreatedAt   time.Time `gorm:"index;not null"`
}

func (Sale) TableName() string { return "sales" }
