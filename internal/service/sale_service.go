package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GymAurCode/in-ven-tory/internal/dto"
	"github.com/GymAurCode/in-ven-tory/internal/model"
	"github.com/GymAurCode/in-ven-tory/internal/repository"
	"github.com/GymAurCode/in-ven-tory/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	saleCompletedMessage = "Sale completed successfully"
	postCommitTimeout    = 2 * time.Second
)

// maxLedgerAmount is the first value a decimal(18,2) money column cannot hold.
var maxLedgerAmount = decimal.New(1, 16)

// SaleNotifier receives committed sales. *worker.Dispatcher implements it.
type SaleNotifier interface {
	NotifySaleRecorded(ctx context.Context, job worker.SaleRecordedJob) error
}

type SaleService interface {
	// RecordSale validates the request, then writes the sale, the stock
	// deduction, the income entry and the cost-of-goods expense as one unit.
	RecordSale(ctx context.Context, req dto.RecordSaleRequest) (*dto.RecordSaleResponse, error)
}

type saleService struct {
	catalog  repository.ProductCatalogReader
	ledger   repository.LedgerStore
	notifier SaleNotifier
	cache    StatsCache
}

// NewSaleService wires the sale workflow. notifier and cache may be nil.
func NewSaleService(
	catalog repository.ProductCatalogReader,
	ledger repository.LedgerStore,
	notifier SaleNotifier,
	cache StatsCache,
) SaleService {
	return &saleService{catalog: catalog, ledger: ledger, notifier: notifier, cache: cache}
}

// saleFigures are derived from the product snapshot before anything is written.
type saleFigures struct {
	unitPrice  decimal.Decimal
	totalPrice decimal.Decimal
	totalCost  decimal.Decimal
	profit     decimal.Decimal
}

func computeFigures(p *model.Product, qty int) saleFigures {
	q := decimal.NewFromInt(int64(qty))
	total := p.SellingPrice.Mul(q)
	cost := p.CostPrice.Mul(q)
	return saleFigures{
		unitPrice:  p.SellingPrice,
		totalPrice: total,
		totalCost:  cost,
		profit:     total.Sub(cost),
	}
}

// ── RecordSale ────────────────────────────────────────────────────────────────
//   1. product_id and quantity present, quantity > 0
//   2. product exists, stock >= quantity (snapshot, outside the unit),
//      totals fit the money columns
//   3. RunAtomic: insert sale, deduct stock (row lock + guarded update),
//      insert income, insert expense
//   4. after commit: invalidate cached stats, notify workers (best effort)

func (s *saleService) RecordSale(ctx context.Context, req dto.RecordSaleRequest) (*dto.RecordSaleResponse, error) {
	if strings.TrimSpace(req.ProductID) == "" || req.Quantity == nil {
		return nil, invalidRequest("Product ID and quantity are required")
	}
	qty := *req.Quantity
	if qty <= 0 {
		return nil, invalidRequest("Quantity must be greater than 0")
	}
	productID, err := uuid.Parse(strings.TrimSpace(req.ProductID))
	if err != nil {
		return nil, invalidRequest("Product ID is not a valid identifier")
	}

	product, err := s.catalog.FindByID(ctx, productID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("Product not found")
	}
	if err != nil {
		return nil, &StorageError{Op: "find product", Err: err}
	}
	if product.QuantityOnHand < qty {
		return nil, &InsufficientStockError{ProductID: productID, Available: product.QuantityOnHand, Requested: qty}
	}

	fig := computeFigures(product, qty)
	if fig.totalPrice.GreaterThanOrEqual(maxLedgerAmount) || fig.totalCost.GreaterThanOrEqual(maxLedgerAmount) {
		return nil, invalidRequest("Sale total exceeds the largest amount the ledger can record")
	}

	var note *string
	if req.Description != nil && *req.Description != "" {
		note = req.Description
	}
	sale := model.Sale{
		ID:          uuid.New(),
		ProductID:   productID,
		ProductName: product.Name,
		Quantity:    qty,
		UnitPrice:   fig.unitPrice,
		TotalPrice:  fig.totalPrice,
		Description: note,
		CreatedAt:   time.Now().UTC(),
	}

	err = s.ledger.RunAtomic(ctx, func(tx repository.LedgerTx) error {
		if err := tx.InsertSale(ctx, &sale); err != nil {
			return fmt.Errorf("insert sale: %w", err)
		}
		if err := tx.DeductStock(ctx, productID, qty); err != nil {
			return fmt.Errorf("deduct stock: %w", err)
		}
		if err := tx.InsertIncome(ctx, &model.IncomeEntry{
			ID:          uuid.New(),
			Description: fmt.Sprintf("Sale of %s (%d units)", product.Name, qty),
			Amount:      fig.totalPrice,
			Type:        model.EntryTypeAuto,
			ProductID:   &productID,
			CreatedAt:   sale.CreatedAt,
		}); err != nil {
			return fmt.Errorf("insert income: %w", err)
		}
		if err := tx.InsertExpense(ctx, &model.ExpenseEntry{
			ID:          uuid.New(),
			Description: fmt.Sprintf("Cost of %s (%d units)", product.Name, qty),
			Amount:      fig.totalCost,
			Category:    model.CategoryProductCost,
			Type:        model.EntryTypeAuto,
			ProductID:   &productID,
			CreatedAt:   sale.CreatedAt,
		}); err != nil {
			return fmt.Errorf("insert expense: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.classifyTxError(err, productID, qty)
	}

	// Informational: computed from the pre-transaction snapshot, not re-read.
	stockRemaining := product.QuantityOnHand - qty

	log.Info().
		Str("sale_id", sale.ID.String()).
		Str("product_id", productID.String()).
		Int("quantity", qty).
		Str("total", fig.totalPrice.String()).
		Msg("sale recorded")

	s.afterCommit(ctx, &sale, stockRemaining)

	return &dto.RecordSaleResponse{
		Sale:            saleToResponse(&sale),
		Message:         saleCompletedMessage,
		IncomeGenerated: fig.totalPrice,
		CostRecorded:    fig.totalCost,
		ProfitGenerated: fig.profit,
		StockRemaining:  stockRemaining,
	}, nil
}

func (s *saleService) classifyTxError(err error, productID uuid.UUID, qty int) error {
	var shortfall *repository.ShortfallError
	if errors.As(err, &shortfall) {
		return &InsufficientStockError{ProductID: productID, Available: shortfall.Available, Requested: qty}
	}
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("Product not found")
	}
	log.Error().
		Err(err).
		Str("product_id", productID.String()).
		Str("pg_code", repository.PgCode(err)).
		Bool("transient", repository.IsTransient(err)).
		Msg("sale transaction rolled back")
	return &StorageError{Op: "record sale", Err: err}
}

// afterCommit runs side effects that must never change the sale's outcome.
func (s *saleService) afterCommit(ctx context.Context, sale *model.Sale, stockRemaining int) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), postCommitTimeout)
	defer cancel()

	if s.cache != nil {
		s.cache.Delete(ctx, StatsCacheKey)
	}
	if s.notifier != nil {
		if err := s.notifier.NotifySaleRecorded(ctx, worker.NewSaleRecordedJob(sale, stockRemaining)); err != nil {
			log.Warn().Err(err).Str("sale_id", sale.ID.String()).Msg("sale notification not queued")
		}
	}
}

func saleToResponse(s *model.Sale) dto.SaleResponse {
	return dto.SaleResponse{
		ID:          s.ID.String(),
		ProductID:   s.ProductID.String(),
		ProductName: s.ProductName,
		Quantity:    s.Quantity,
		UnitPrice:   s.UnitPrice,
		TotalPrice:  s.TotalPrice,
		Description: s.Description,
		CreatedAt:   s.CreatedAt,
	}
}

func salesToResponse(sales []model.Sale) []dto.SaleResponse {
	out := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		out = append(out, saleToResponse(&sales[i]))
	}
	return out
}
