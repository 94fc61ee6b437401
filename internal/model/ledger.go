package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Entry types and categories written by the sale workflow.
const (
	EntryTypeAuto       = "auto"
	CategoryProductCost = "Product Cost"
)

// IncomeEntry records money received. ProductID is a lookup link only.
type IncomeEntry struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Description string          `gorm:"not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Type        string          `gorm:"type:varchar(20);not null;default:'manual'"`
	ProductID   *uuid.UUID      `gorm:"type:uuid;index"`
	CreatedAt   time.Time
}

func (IncomeEntry) TableName() string { return "income" }

// ExpenseEntry records money spent, including the cost of goods sold.
type ExpenseEntry struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Description string          `gorm:"not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Category    string          `gorm:"not null"`
	Type        string          `gorm:"type:varchar(20);not null;default:'manual'"`
	ProductID   *uuid.UUID      `gorm:"type:uuid;index"`
	CreatedAt   time.Time
}

func (ExpenseEntry) TableName() string { return "expenses" }
