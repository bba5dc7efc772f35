package migrations

import (
	"github.com/rvishwa/go-storefront/app/models"
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Discount{},
		&models.Order{},
		&models.OrderItem{},
		&models.ContactMessage{},
		&models.Blog{},
	)
}
