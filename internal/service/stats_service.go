package service

import (
	"context"
	"errors"
	"time"

	"github.com/GymAurCode/in-ven-tory/internal/dto"
	"github.com/GymAurCode/in-ven-tory/internal/model"
	"github.com/GymAurCode/in-ven-tory/internal/repository"

	"github.com/google/uuid"
)

const (
	StatsCacheKey = "stats:sales"
	recentWindow  = 7 * 24 * time.Hour
)

// StatsCache is the read-through cache in front of GetSalesStats.
// *infra.ViewCache[dto.SalesStatsResponse] implements it.
type StatsCache interface {
	Get(ctx context.Context, key string) (*dto.SalesStatsResponse, bool)
	Set(ctx context.Context, key string, value *dto.SalesStatsResponse)
	Delete(ctx context.Context, key string)
}

// StatsService answers the read-only questions about the sales ledger.
type StatsService interface {
	GetSalesStats(ctx context.Context) (*dto.SalesStatsResponse, error)
	ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
	GetSale(ctx context.Context, id string) (*dto.SaleDetailResponse, error)
	FindSale(ctx context.Context, id string) (*model.Sale, error)
	ListProductsForSale(ctx context.Context) (*dto.ProductsForSaleResponse, error)
}

type statsService struct {
	catalog repository.ProductCatalogReader
	ledger  repository.LedgerStore
	cache   StatsCache
	now     func() time.Time
}

func NewStatsService(catalog repository.ProductCatalogReader, ledger repository.LedgerStore, cache StatsCache) StatsService {
	return &statsService{catalog: catalog, ledger: ledger, cache: cache, now: time.Now}
}

func (s *statsService) GetSalesStats(ctx context.Context) (*dto.SalesStatsResponse, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, StatsCacheKey); ok {
			return cached, nil
		}
	}

	agg, err := s.ledger.Aggregate(ctx, s.now().Add(-recentWindow))
	if err != nil {
		return nil, &StorageError{Op: "aggregate sales", Err: err}
	}
	resp := &dto.SalesStatsResponse{
		TotalSales:           agg.Count,
		TotalQuantitySold:    agg.Quantity,
		TotalRevenue:         agg.Revenue,
		DistinctProductsSold: agg.DistinctProducts,
		RecentSales:          salesToResponse(agg.Recent),
	}

	if s.cache != nil {
		s.cache.Set(ctx, StatsCacheKey, resp)
	}
	return resp, nil
}

func (s *statsService) ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	var q repository.SaleQuery
	if filter.ProductID != "" {
		pid, err := uuid.Parse(filter.ProductID)
		if err != nil {
			return nil, invalidRequest("Product ID is not a valid identifier")
		}
		q.ProductID = &pid
	}
	sales, err := s.ledger.ListSales(ctx, q)
	if err != nil {
		return nil, &StorageError{Op: "list sales", Err: err}
	}
	return &dto.SaleListResponse{Sales: salesToResponse(sales)}, nil
}

func (s *statsService) FindSale(ctx context.Context, id string) (*model.Sale, error) {
	saleID, err := uuid.Parse(id)
	if err != nil {
		return nil, invalidRequest("Sale ID is not a valid identifier")
	}
	sale, err := s.ledger.FindSaleByID(ctx, saleID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("Sale not found")
	}
	if err != nil {
		return nil, &StorageError{Op: "find sale", Err: err}
	}
	return sale, nil
}

func (s *statsService) GetSale(ctx context.Context, id string) (*dto.SaleDetailResponse, error) {
	sale, err := s.FindSale(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.SaleDetailResponse{Sale: saleToResponse(sale)}, nil
}

func (s *statsService) ListProductsForSale(ctx context.Context) (*dto.ProductsForSaleResponse, error) {
	products, err := s.catalog.ListAvailable(ctx)
	if err != nil {
		return nil, &StorageError{Op: "list products", Err: err}
	}
	out := make([]dto.ProductForSale, 0, len(products))
	for _, p := range products {
		out = append(out, dto.ProductForSale{
			ID:           p.ID.String(),
			Name:         p.Name,
			SellingPrice: p.SellingPrice,
			Quantity:     p.QuantityOnHand,
		})
	}
	return &dto.ProductsForSaleResponse{Products: out}, nil
}
