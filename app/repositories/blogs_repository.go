package repositories

import (
	"context"

	"github.com/rvishwa/go-storefront/app/models"
	"gorm.io/gorm"
)

type BlogRepositoryImpl interface {
	GetAll(ctx context.Context, category string) ([]models.Blog, error)
	GetBySlug(ctx context.Context, slug string) (*models.Blog, error)
	Create(ctx context.Context, blog *models.Blog) error
	Update(ctx context.Context, blog *models.Blog) error
	GetByID(ctx context.Context, id string) (*models.Blog, error)
	Delete(ctx context.Context, id string) error
}

type blogRepository struct {
	db *gorm.DB
}

func NewBlogRepository(db *gorm.DB) BlogRepositoryImpl {
	return &blogRepository{db}
}

func (r *blogRepository) GetAll(ctx context.Context, category string) ([]models.Blog, error) {
	var blogs []models.Blog
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if category != "" {
		query = query.Where("category = ?", category)
	}
	err := query.Find(&blogs).Error
	return blogs, err
}

func (r *blogRepository) GetBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	var blog models.Blog
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&blog).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &blog, nil
}

func (r *blogRepository) GetByID(ctx context.Context, id string) (*models.Blog, error) {
	var blog models.Blog
	err := r.db.WithContext(ctx).First(&blog, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &blog, nil
}

func (r *blogRepository) Create(ctx context.Context, blog *models.Blog) error {
	return r.db.WithContext(ctx).Create(blog).Error
}

func (r *blogRepository) Update(ctx context.Context, blog *models.Blog) error {
	return r.db.WithContext(ctx).Save(blog).Error
}

func (r *blogRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Blog{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
