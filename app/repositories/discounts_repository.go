package repositories

import (
	"context"

	"github.com/rvishwa/go-storefront/app/models"
	"gorm.io/gorm"
)

type DiscountRepositoryImpl interface {
	GetAll(ctx context.Context) ([]models.Discount, error)
	FindByCode(ctx context.Context, tx *gorm.DB, code string) (*models.Discount, error)
	Create(ctx context.Context, discount *models.Discount) error
	Delete(ctx context.Context, id string) error
}

type discountRepository struct {
	db *gorm.DB
}

func NewDiscountRepository(db *gorm.DB) DiscountRepositoryImpl {
	return &discountRepository{db}
}

func (r *discountRepository) GetAll(ctx context.Context) ([]models.Discount, error) {
	var discounts []models.Discount
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&discounts).Error
	return discounts, err
}

func (r *discountRepository) FindByCode(ctx context.Context, tx *gorm.DB, code string) (*models.Discount, error) {
	db := r.db
	if tx != nil {
		db = tx
	}
	var discount models.Discount
	err := db.WithContext(ctx).Where("code = ?", code).First(&discount).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &discount, nil
}

func (r *discountRepository) Create(ctx context.Context, discount *models.Discount) error {
	return r.db.WithContext(ctx).Create(discount).Error
}

func (r *discountRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Discount{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
