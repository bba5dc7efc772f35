package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderItem struct {
	ID        string  `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	OrderID   string  `gorm:"size:36;not null;index" json:"order_id"`
	ProductID string  `gorm:"size:36;not null;index" json:"product_id"`
	Product   Product `gorm:"foreignKey:ProductID" json:"-"`

	ProductName string `gorm:"size:255;not null" json:"product_name"`
	Quantity    int    `gorm:"not null" json:"quantity"`

	// UnitPrice is the catalog price at order time. Later catalog price
	// changes must not alter past orders.
	UnitPrice decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"unit_price"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"subtotal"`

	CreatedAt time.Time `json:"-"`
}

func (oi *OrderItem) BeforeCreate(tx *gorm.DB) (err error) {
	if oi.ID == "" {
		oi.ID = uuid.New().String()
	}
	return
}
