package repository

import (
	"context"

	"github.com/GymAurCode/in-ven-tory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductCatalogReader is the read-only view of the catalog used by sales.
type ProductCatalogReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	// ListAvailable returns products with stock left, ordered by name.
	ListAvailable(ctx context.Context) ([]model.Product, error)
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductCatalogReader { return &productRepo{db: db} }

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *productRepo) ListAvailable(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("quantity > 0").
		Order("name").
		Find(&products).Error
	return products, err
}
