package repositories

import (
	"context"

	"github.com/rvishwa/go-storefront/app/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DashboardStats struct {
	TotalOrders   int64           `json:"totalOrders"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalUsers    int64           `json:"totalUsers"`
	TotalProducts int64           `json:"totalProducts"`
}

type MonthlyBucket struct {
	Month string          `json:"month"`
	Value decimal.Decimal `json:"value"`
}

type TopProduct struct {
	Name      string `json:"name"`
	UnitsSold int64  `json:"units_sold"`
}

type StatsRepositoryImpl interface {
	Dashboard(ctx context.Context) (*DashboardStats, error)
	MonthlyRevenue(ctx context.Context) ([]MonthlyBucket, error)
	MonthlyOrderCounts(ctx context.Context) ([]MonthlyBucket, error)
	TopProducts(ctx context.Context, limit int) ([]TopProduct, error)
}

type statsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) StatsRepositoryImpl {
	return &statsRepository{db}
}

func (r *statsRepository) Dashboard(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats

	if err := r.db.WithContext(ctx).Model(&models.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return nil, err
	}

	var revenue *string
	if err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("SUM(total)").Scan(&revenue).Error; err != nil {
		return nil, err
	}
	if revenue != nil {
		d, err := decimal.NewFromString(*revenue)
		if err != nil {
			return nil, err
		}
		stats.TotalRevenue = d
	}

	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}

// monthExpr buckets created_at into YYYY-MM for the active dialect, so
// the aggregations run on MySQL in production and SQLite in tests.
func (r *statsRepository) monthExpr() string {
	if r.db.Dialector.Name() == "mysql" {
		return "DATE_FORMAT(created_at, '%Y-%m')"
	}
	return "strftime('%Y-%m', created_at)"
}

func (r *statsRepository) MonthlyRevenue(ctx context.Context) ([]MonthlyBucket, error) {
	var buckets []MonthlyBucket
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select(r.monthExpr() + " AS month, SUM(total) AS value").
		Group("month").
		Order("month").
		Scan(&buckets).Error
	return buckets, err
}

func (r *statsRepository) MonthlyOrderCounts(ctx context.Context) ([]MonthlyBucket, error) {
	var buckets []MonthlyBucket
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select(r.monthExpr() + " AS month, COUNT(*) AS value").
		Group("month").
		Order("month").
		Scan(&buckets).Error
	return buckets, err
}

func (r *statsRepository) TopProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	var top []TopProduct
	err := r.db.WithContext(ctx).Model(&models.OrderItem{}).
		Select("order_items.product_name AS name, SUM(order_items.quantity) AS units_sold").
		Group("order_items.product_name").
		Order("units_sold DESC").
		Limit(limit).
		Scan(&top).Error
	return top, err
}
