package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/GymAurCode/in-ven-tory/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerTx is the set of writes a sale may perform inside one unit of work.
// Every call made through a LedgerTx commits together or not at all.
type LedgerTx interface {
	InsertSale(ctx context.Context, s *model.Sale) error
	// DeductStock locks the product row and removes qty units from it. It
	// returns *ShortfallError if the row holds fewer than qty units and
	// ErrNotFound if the product no longer exists.
	DeductStock(ctx context.Context, productID uuid.UUID, qty int) error
	InsertIncome(ctx context.Context, e *model.IncomeEntry) error
	InsertExpense(ctx context.Context, e *model.ExpenseEntry) error
}

// SaleQuery narrows ListSales. A nil ProductID lists every sale.
type SaleQuery struct {
	ProductID *uuid.UUID
}

// SalesAggregate is a consistent snapshot of the sales ledger.
type SalesAggregate struct {
	Count            int64
	Quantity         int64
	Revenue          decimal.Decimal
	DistinctProducts int64
	Recent           []model.Sale // created at or after the requested instant, newest first
}

// LedgerStore owns the sales, income and expenses tables.
type LedgerStore interface {
	// RunAtomic runs fn inside a single transaction. Any error returned by fn
	// (or a panic) rolls back every write fn made.
	RunAtomic(ctx context.Context, fn func(tx LedgerTx) error) error
	ListSales(ctx context.Context, q SaleQuery) ([]model.Sale, error)
	FindSaleByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	Aggregate(ctx context.Context, recentSince time.Time) (*SalesAggregate, error)
	// Reset clears the sales, income and expenses ledgers together, and the
	// products table too when includeProducts is set.
	Reset(ctx context.Context, includeProducts bool) error
	Counts(ctx context.Context) (map[string]int64, error)
}

type ledgerStore struct{ db *gorm.DB }

func NewLedgerStore(db *gorm.DB) LedgerStore { return &ledgerStore{db: db} }

func (s *ledgerStore) RunAtomic(ctx context.Context, fn func(tx LedgerTx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormLedgerTx{tx: tx})
	})
}

func (s *ledgerStore) ListSales(ctx context.Context, q SaleQuery) ([]model.Sale, error) {
	var sales []model.Sale
	db := s.db.WithContext(ctx).Model(&model.Sale{})
	if q.ProductID != nil {
		db = db.Where("product_id = ?", *q.ProductID)
	}
	err := db.Order("created_at DESC").Find(&sales).Error
	return sales, err
}

func (s *ledgerStore) FindSaleByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	if err := s.db.WithContext(ctx).First(&sale, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &sale, nil
}

// Aggregate reads totals and the recent window in one read-only repeatable
// read transaction so both halves describe the same committed state.
func (s *ledgerStore) Aggregate(ctx context.Context, recentSince time.Time) (*SalesAggregate, error) {
	agg := &SalesAggregate{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row struct {
			Count            int64
			Quantity         int64
			Revenue          decimal.Decimal
			DistinctProducts int64
		}
		if err := tx.Model(&model.Sale{}).
			Select(`COUNT(*) AS count,
				COALESCE(SUM(quantity), 0) AS quantity,
				COALESCE(SUM(total_price), 0) AS revenue,
				COUNT(DISTINCT product_id) AS distinct_products`).
			Scan(&row).Error; err != nil {
			return err
		}
		agg.Count = row.Count
		agg.Quantity = row.Quantity
		agg.Revenue = row.Revenue
		agg.DistinctProducts = row.DistinctProducts

		return tx.Where("created_at >= ?", recentSince).
			Order("created_at DESC").
			Find(&agg.Recent).Error
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, err
	}
	return agg, nil
}

func (s *ledgerStore) Reset(ctx context.Context, includeProducts bool) error {
	targets := []interface{}{&model.Sale{}, &model.IncomeEntry{}, &model.ExpenseEntry{}}
	if includeProducts {
		targets = append(targets, &model.Product{})
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, t := range targets {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(t).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *ledgerStore) Counts(ctx context.Context) (map[string]int64, error) {
	tables := map[string]interface{}{
		"products": &model.Product{},
		"sales":    &model.Sale{},
		"income":   &model.IncomeEntry{},
		"expenses": &model.ExpenseEntry{},
	}
	counts := make(map[string]int64, len(tables))
	for name, m := range tables {
		var n int64
		if err := s.db.WithContext(ctx).Model(m).Count(&n).Error; err != nil {
			return nil, err
		}
		counts[name] = n
	}
	return counts, nil
}

// ── Transaction-scoped writes ────────────────────────────────────────────────

type gormLedgerTx struct{ tx *gorm.DB }

func (t *gormLedgerTx) InsertSale(ctx context.Context, s *model.Sale) error {
	return t.tx.WithContext(ctx).Create(s).Error
}

func (t *gormLedgerTx) DeductStock(ctx context.Context, productID uuid.UUID, qty int) error {
	// Lock the row first so concurrent sales of the same product queue here
	// and each one sees the stock left by the previous commit.
	var p model.Product
	err := t.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "quantity").
		First(&p, "id = ?", productID).Error
	if err != nil {
		return notFound(err)
	}
	if p.QuantityOnHand < qty {
		return &ShortfallError{ProductID: productID, Available: p.QuantityOnHand, Requested: qty}
	}

	res := t.tx.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ? AND quantity >= ?", productID, qty).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity - ?", qty),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		if IsCheckViolation(res.Error) {
			return &ShortfallError{ProductID: productID, Available: p.QuantityOnHand, Requested: qty}
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &ShortfallError{ProductID: productID, Available: p.QuantityOnHand, Requested: qty}
	}
	return nil
}

func (t *gormLedgerTx) InsertIncome(ctx context.Context, e *model.IncomeEntry) error {
	return t.tx.WithContext(ctx).Create(e).Error
}

func (t *gormLedgerTx) InsertExpense(ctx context.Context, e *model.ExpenseEntry) error {
	return t.tx.WithContext(ctx).Create(e).Error
}
