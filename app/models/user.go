package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID                   string     `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	FullName             string     `gorm:"size:100;not null" json:"full_name"`
	Email                string     `gorm:"size:100;not null;uniqueIndex" json:"email"`
	Password             string     `gorm:"size:255;not null" json:"-"`
	Phone                string     `gorm:"size:20" json:"phone"`
	Role                 string     `gorm:"size:20;default:'customer';not null" json:"role"`
	PasswordResetToken   *string    `gorm:"size:255;uniqueIndex;null" json:"-"`
	PasswordResetExpires *time.Time `gorm:"null" json:"-"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"-"`
}

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}
