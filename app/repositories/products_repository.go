package repositories

import (
	"context"

	"github.com/rvishwa/go-storefront/app/models"
	"gorm.io/gorm"
)

type ProductRepositoryImpl interface {
	GetProducts(ctx context.Context) ([]models.Product, error)
	GetByCategory(ctx context.Context, category string) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	DecrementStock(ctx context.Context, tx *gorm.DB, productID string, qty int) (bool, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepositoryImpl {
	return &productRepository{db}
}

func (p *productRepository) GetProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := p.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&products).Error
	return products, err
}

func (p *productRepository) GetByCategory(ctx context.Context, category string) ([]models.Product, error) {
	var products []models.Product
	err := p.db.WithContext(ctx).
		Where("category = ?", category).
		Order("created_at DESC").
		Find(&products).Error
	return products, err
}

func (p *productRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := p.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// GetByIDs resolves a batch of product ids in one query. Callers inside a
// transaction pass it as tx so the read shares the transaction's view.
func (p *productRepository) GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]models.Product, error) {
	db := p.db
	if tx != nil {
		db = tx
	}
	var products []models.Product
	err := db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	return products, err
}

func (p *productRepository) Create(ctx context.Context, product *models.Product) error {
	return p.db.WithContext(ctx).Create(product).Error
}

func (p *productRepository) Update(ctx context.Context, product *models.Product) error {
	return p.db.WithContext(ctx).Save(product).Error
}

func (p *productRepository) Delete(ctx context.Context, id string) error {
	result := p.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (p *productRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := p.db.WithContext(ctx).Model(&models.Product{}).Count(&total).Error
	return total, err
}

// DecrementStock performs an atomic check-and-decrement. It returns
// false when the row exists but stock is insufficient, without touching
// the row.
func (p *productRepository) DecrementStock(ctx context.Context, tx *gorm.DB, productID string, qty int) (bool, error) {
	db := p.db
	if tx != nil {
		db = tx
	}
	result := db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
