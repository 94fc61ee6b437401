package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/GymAurCode/in-ven-tory/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger steps that can be made to fail with MemoryStore.FailOn.
const (
	StepInsertSale    = "insert_sale"
	StepDeductStock   = "deduct_stock"
	StepInsertIncome  = "insert_income"
	StepInsertExpense = "insert_expense"
)

// MemoryStore is an in-process ProductCatalogReader and LedgerStore.
// Units of work run one at a time; their writes are staged and applied only
// when the unit returns nil, so a failed unit leaves no trace.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[uuid.UUID]model.Product
	sales    []model.Sale
	income   []model.IncomeEntry
	expenses []model.ExpenseEntry
	faults   map[string]error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[uuid.UUID]model.Product),
		faults:   make(map[string]error),
	}
}

var (
	_ ProductCatalogReader = (*MemoryStore)(nil)
	_ LedgerStore          = (*MemoryStore)(nil)
)

// PutProduct inserts or replaces a catalog row. A nil ID is assigned.
func (m *MemoryStore) PutProduct(p model.Product) model.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.products[p.ID] = p
	return p
}

// PutSale appends a sale directly to the ledger, bypassing the workflow.
func (m *MemoryStore) PutSale(s model.Sale) model.Sale {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	m.sales = append(m.sales, s)
	return s
}

// FailOn makes the given step return err inside every later unit of work.
// A nil err clears the fault.
func (m *MemoryStore) FailOn(step string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.faults, step)
		return
	}
	m.faults[step] = err
}

func (m *MemoryStore) Income() []model.IncomeEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.IncomeEntry(nil), m.income...)
}

func (m *MemoryStore) Expenses() []model.ExpenseEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.ExpenseEntry(nil), m.expenses...)
}

// ── ProductCatalogReader ─────────────────────────────────────────────────────

func (m *MemoryStore) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *MemoryStore) ListAvailable(_ context.Context) ([]model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Product
	for _, p := range m.products {
		if p.QuantityOnHand > 0 {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ── LedgerStore ──────────────────────────────────────────────────────────────

func (m *MemoryStore) RunAtomic(ctx context.Context, fn func(tx LedgerTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memoryTx{store: m, deducted: make(map[uuid.UUID]int)}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for id, qty := range tx.deducted {
		p := m.products[id]
		p.QuantityOnHand -= qty
		p.UpdatedAt = time.Now()
		m.products[id] = p
	}
	m.sales = append(m.sales, tx.sales...)
	m.income = append(m.income, tx.income...)
	m.expenses = append(m.expenses, tx.expenses...)
	return nil
}

func (m *MemoryStore) ListSales(_ context.Context, q SaleQuery) ([]model.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Sale
	for _, s := range m.sales {
		if q.ProductID != nil && s.ProductID != *q.ProductID {
			continue
		}
		out = append(out, s)
	}
	sortNewestFirst(out)
	return out, nil
}

func (m *MemoryStore) FindSaleByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sales {
		if s.ID == id {
			found := s
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) Aggregate(_ context.Context, recentSince time.Time) (*SalesAggregate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	agg := &SalesAggregate{Revenue: decimal.Zero}
	distinct := make(map[uuid.UUID]struct{})
	for _, s := range m.sales {
		agg.Count++
		agg.Quantity += int64(s.Quantity)
		agg.Revenue = agg.Revenue.Add(s.TotalPrice)
		distinct[s.ProductID] = struct{}{}
		if !s.CreatedAt.Before(recentSince) {
			agg.Recent = append(agg.Recent, s)
		}
	}
	agg.DistinctProducts = int64(len(distinct))
	sortNewestFirst(agg.Recent)
	return agg, nil
}

func (m *MemoryStore) Reset(_ context.Context, includeProducts bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sales = nil
	m.income = nil
	m.expenses = nil
	if includeProducts {
		m.products = make(map[uuid.UUID]model.Product)
	}
	return nil
}

func (m *MemoryStore) Counts(_ context.Context) (map[string]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return map[string]int64{
		"products": int64(len(m.products)),
		"sales":    int64(len(m.sales)),
		"income":   int64(len(m.income)),
		"expenses": int64(len(m.expenses)),
	}, nil
}

func sortNewestFirst(sales []model.Sale) {
	sort.SliceStable(sales, func(i, j int) bool { return sales[i].CreatedAt.After(sales[j].CreatedAt) })
}

// memoryTx stages writes; the caller already holds store.mu.
type memoryTx struct {
	store    *MemoryStore
	deducted map[uuid.UUID]int
	sales    []model.Sale
	income   []model.IncomeEntry
	expenses []model.ExpenseEntry
}

func (t *memoryTx) InsertSale(_ context.Context, s *model.Sale) error {
	if err := t.store.faults[StepInsertSale]; err != nil {
		return err
	}
	t.sales = append(t.sales, *s)
	return nil
}

func (t *memoryTx) DeductStock(_ context.Context, productID uuid.UUID, qty int) error {
	if err := t.store.faults[StepDeductStock]; err != nil {
		return err
	}
	p, ok := t.store.products[productID]
	if !ok {
		return ErrNotFound
	}
	available := p.QuantityOnHand - t.deducted[productID]
	if available < qty {
		return &ShortfallError{ProductID: productID, Available: available, Requested: qty}
	}
	t.deducted[productID] += qty
	return nil
}

func (t *memoryTx) InsertIncome(_ context.Context, e *model.IncomeEntry) error {
	if err := t.store.faults[StepInsertIncome]; err != nil {
		return err
	}
	t.income = append(t.income, *e)
	return nil
}

func (t *memoryTx) InsertExpense(_ context.Context, e *model.ExpenseEntry) error {
	if err := t.store.faults[StepInsertExpense]; err != nil {
		return err
	}
	t.expenses = append(t.expenses, *e)
	return nil
}
