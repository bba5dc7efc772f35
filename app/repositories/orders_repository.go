package repositories

import (
	"context"
	"time"

	"github.com/rvishwa/go-storefront/app/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderSummary is the admin list row, with the owner's contact joined in.
type OrderSummary struct {
	ID        string          `json:"id"`
	Total     decimal.Decimal `json:"total"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	FullName  string          `json:"full_name"`
	Phone     string          `json:"phone"`
	Email     string          `json:"email"`
}

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *models.Order) error
	BulkCreateItems(ctx context.Context, tx *gorm.DB, items []models.OrderItem) error
	FindByUserID(ctx context.Context, userID string) ([]models.Order, error)
	GetByIDForUser(ctx context.Context, orderID, userID string) (*models.Order, error)
	GetByIDWithItems(ctx context.Context, orderID string) (*models.Order, error)
	GetAllPaginated(ctx context.Context, limit, offset int) ([]OrderSummary, int64, error)
	GetAll(ctx context.Context) ([]OrderSummary, error)
	UpdateStatus(ctx context.Context, orderID, status string) error
	OwnerContact(ctx context.Context, orderID string) (*models.User, error)
	Count(ctx context.Context) (int64, error)
}

type gormOrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &gormOrderRepository{db: db}
}

func (r *gormOrderRepository) Create(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	return tx.WithContext(ctx).Create(order).Error
}

func (r *gormOrderRepository) BulkCreateItems(ctx context.Context, tx *gorm.DB, items []models.OrderItem) error {
	return tx.WithContext(ctx).Create(&items).Error
}

func (r *gormOrderRepository) FindByUserID(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// GetByIDForUser returns nil when the order does not exist or belongs to
// a different user. Callers must not distinguish the two cases.
func (r *gormOrderRepository) GetByIDForUser(ctx context.Context, orderID, userID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("OrderItems").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *gormOrderRepository) GetByIDWithItems(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("OrderItems").
		First(&order, "id = ?", orderID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

const orderSummarySelect = `orders.id, orders.total, orders.status, orders.created_at,
users.full_name, users.phone, users.email`

func (r *gormOrderRepository) GetAllPaginated(ctx context.Context, limit, offset int) ([]OrderSummary, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var summaries []OrderSummary
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select(orderSummarySelect).
		Joins("JOIN users ON users.id = orders.user_id").
		Order("orders.created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(&summaries).Error

	return summaries, total, err
}

func (r *gormOrderRepository) GetAll(ctx context.Context) ([]OrderSummary, error) {
	var summaries []OrderSummary
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select(orderSummarySelect).
		Joins("JOIN users ON users.id = orders.user_id").
		Order("orders.created_at DESC").
		Scan(&summaries).Error
	return summaries, err
}

func (r *gormOrderRepository) UpdateStatus(ctx context.Context, orderID, status string) error {
	result := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// OwnerContact resolves the owning user of an order, for notifications.
func (r *gormOrderRepository) OwnerContact(ctx context.Context, orderID string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN orders ON orders.user_id = users.id").
		Where("orders.id = ?", orderID).
		First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *gormOrderRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Count(&total).Error
	return total, err
}
