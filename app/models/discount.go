package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Discount struct {
	ID         string          `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	Code       string          `gorm:"size:50;not null;uniqueIndex" json:"code"`
	PercentOff decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"percent_off"`
	ExpiresAt  *time.Time      `gorm:"null" json:"expires_at"`
	CreatedAt  time.Time       `json:"created_at"`
}

func (d *Discount) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return
}

// Expired reports whether the code can no longer be applied. A nil
// ExpiresAt means the code never expires.
func (d *Discount) Expired(now time.Time) bool {
	return d.ExpiresAt != nil && d.ExpiresAt.Before(now)
}
