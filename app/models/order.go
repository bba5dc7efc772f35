package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

type Order struct {
	ID     string `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	UserID string `gorm:"size:36;not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"-"`

	OrderItems []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`

	Total decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"total"`

	// DiscountCode and DiscountPercent are snapshots taken at creation
	// time. Deleting the discount later must not change this order.
	DiscountCode    *string         `gorm:"size:50;null" json:"discount_code"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(10,2);default:0.00" json:"discount_percent"`

	Status    string    `gorm:"size:50;not null;default:'pending'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return
}
