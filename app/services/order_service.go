package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/rvishwa/go-storefront/app/helpers"
	"github.com/rvishwa/go-storefront/app/models"
	"github.com/rvishwa/go-storefront/app/repositories"
	"github.com/rvishwa/go-storefront/app/utils/calc"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrEmptyOrder        = errors.New("order must contain at least one item")
	ErrInvalidQuantity   = errors.New("quantity must be a positive integer")
	ErrProductNotFound   = errors.New("product not found")
	ErrInvalidDiscount   = errors.New("invalid or expired discount code")
	ErrInsufficientStock = errors.New("insufficient product stock")
	ErrOrderNotFound     = errors.New("order not found")
)

type OrderLine struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required"`
}

type OrderService struct {
	db           *gorm.DB
	productRepo  repositories.ProductRepositoryImpl
	discountRepo repositories.DiscountRepositoryImpl
	orderRepo    repositories.OrderRepository
	mailer       MailSender
}

func NewOrderService(
	db *gorm.DB,
	productRepo repositories.ProductRepositoryImpl,
	discountRepo repositories.DiscountRepositoryImpl,
	orderRepo repositories.OrderRepository,
	mailer MailSender,
) *OrderService {
	return &OrderService{
		db:           db,
		productRepo:  productRepo,
		discountRepo: discountRepo,
		orderRepo:    orderRepo,
		mailer:       mailer,
	}
}

// CreateOrder resolves current prices for every requested product,
// applies the optional discount code, and persists the order header with
// its line items inside one transaction. Either the whole order exists
// after a successful return, or nothing was written.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, lines []OrderLine, discountCode string) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: product %s", ErrInvalidQuantity, line.ProductID)
		}
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC: rolling back order transaction: %v", r)
			tx.Rollback()
		}
	}()

	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}

	products, err := s.productRepo.GetByIDs(ctx, tx, ids)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to resolve products: %w", err)
	}
	prices := make(map[string]decimal.Decimal, len(products))
	names := make(map[string]string, len(products))
	for _, p := range products {
		prices[p.ID] = p.Price
		names[p.ID] = p.Name
	}

	rawTotal := decimal.Zero
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		unitPrice, ok := prices[line.ProductID]
		if !ok {
			tx.Rollback()
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, line.ProductID)
		}

		ok, err := s.productRepo.DecrementStock(ctx, tx, line.ProductID, line.Quantity)
		if err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to reserve stock for product %s: %w", line.ProductID, err)
		}
		if !ok {
			tx.Rollback()
			return nil, fmt.Errorf("%w: product %s", ErrInsufficientStock, line.ProductID)
		}

		subtotal := calc.LineSubtotal(unitPrice, line.Quantity)
		rawTotal = rawTotal.Add(subtotal)
		items = append(items, models.OrderItem{
			ProductID:   line.ProductID,
			ProductName: names[line.ProductID],
			Quantity:    line.Quantity,
			UnitPrice:   unitPrice,
			Subtotal:    subtotal,
		})
	}

	percentOff := decimal.Zero
	var appliedCode *string
	if discountCode != "" {
		code := helpers.NormalizeDiscountCode(discountCode)
		discount, err := s.discountRepo.FindByCode(ctx, tx, code)
		if err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to look up discount: %w", err)
		}
		if discount == nil || discount.Expired(time.Now()) {
			tx.Rollback()
			return nil, fmt.Errorf("%w: %s", ErrInvalidDiscount, code)
		}
		percentOff = discount.PercentOff
		appliedCode = &code
	}

	order := &models.Order{
		UserID:          userID,
		Total:           calc.ApplyDiscount(rawTotal, percentOff),
		DiscountCode:    appliedCode,
		DiscountPercent: percentOff,
		Status:          models.OrderStatusPending,
	}

	if err := s.orderRepo.Create(ctx, tx, order); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for i := range items {
		items[i].OrderID = order.ID
	}
	if err := s.orderRepo.BulkCreateItems(ctx, tx, items); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	order.OrderItems = items
	return order, nil
}

// UpdateStatus mutates the order status and then notifies the owner.
// The notification is fire-and-forget: a mail failure is logged and
// never rolls back or fails the status change.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, status string) error {
	if err := s.orderRepo.UpdateStatus(ctx, orderID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
		}
		return fmt.Errorf("failed to update order status: %w", err)
	}

	go s.notifyOwner(orderID, status)

	return nil
}

func (s *OrderService) notifyOwner(orderID, status string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	owner, err := s.orderRepo.OwnerContact(ctx, orderID)
	if err != nil || owner == nil {
		log.Error().Err(err).Str("order_id", orderID).Msg("could not resolve order owner for notification")
		return
	}

	order, err := s.orderRepo.GetByIDWithItems(ctx, orderID)
	if err != nil || order == nil {
		log.Error().Err(err).Str("order_id", orderID).Msg("could not load order for notification")
		return
	}

	subject := fmt.Sprintf("Your order #%s is now %q", orderID, status)
	body := BuildOrderStatusEmailBody(owner.FullName, orderID, status, order.Total)
	if err := s.mailer.SendHTMLEmail(owner.Email, subject, body); err != nil {
		log.Error().Err(err).Str("order_id", orderID).Msg("order status notification failed")
	}
}
