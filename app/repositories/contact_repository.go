package repositories

import (
	"context"

	"github.com/rvishwa/go-storefront/app/models"
	"gorm.io/gorm"
)

type ContactRepositoryImpl interface {
	Create(ctx context.Context, msg *models.ContactMessage) error
}

type contactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) ContactRepositoryImpl {
	return &contactRepository{db}
}

func (r *contactRepository) Create(ctx context.Context, msg *models.ContactMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}
