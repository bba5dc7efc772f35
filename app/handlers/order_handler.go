package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rvishwa/go-storefront/app/helpers"
	"github.com/rvishwa/go-storefront/app/middlewares"
	"github.com/rvishwa/go-storefront/app/repositories"
	"github.com/rvishwa/go-storefront/app/services"
	"github.com/rvishwa/go-storefront/app/utils/apierr"
	"github.com/shopspring/decimal"
	"github.com/unrolled/render"
)

type OrderHandler struct {
	render    *render.Render
	validator *validator.Validate
	orderSvc  *services.OrderService
	orderRepo repositories.OrderRepository
}

func NewOrderHandler(r *render.Render, v *validator.Validate, orderSvc *services.OrderService, orderRepo repositories.OrderRepository) *OrderHandler {
	return &OrderHandler{
		render:    r,
		validator: v,
		orderSvc:  orderSvc,
		orderRepo: orderRepo,
	}
}

type CreateOrderForm struct {
	Items        []services.OrderLine `json:"items" validate:"required,min=1,dive"`
	DiscountCode string               `json:"discount_code"`
}

type createOrderResponse struct {
	OrderID         string          `json:"order_id"`
	Total           decimal.Decimal `json:"total"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Status          string          `json:"status"`
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var form CreateOrderForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		apierr.Write(h.render, w, fmt.Errorf("%w: invalid JSON body", apierr.ErrValidation))
		return
	}
	if err := h.validator.Struct(form); err != nil {
		apierr.WriteFields(h.render, w, helpers.FormatValidationErrors(err.(validator.ValidationErrors)))
		return
	}

	order, err := h.orderSvc.CreateOrder(r.Context(), middlewares.UserID(r), form.Items, form.DiscountCode)
	if err != nil {
		middlewares.RecordOrderOperation("create", false)
		apierr.Write(h.render, w, mapOrderError(err))
		return
	}
	middlewares.RecordOrderOperation("create", true)

	_ = h.render.JSON(w, http.StatusCreated, createOrderResponse{
		OrderID:         order.ID,
		Total:           order.Total,
		DiscountPercent: order.DiscountPercent,
		Status:          order.Status,
	})
}

func (h *OrderHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderRepo.FindByUserID(r.Context(), middlewares.UserID(r))
	if err != nil {
		apierr.Write(h.render, w, err)
		return
	}

	_ = h.render.JSON(w, http.StatusOK, orders)
}

// GetOwn returns 404 for both unknown orders and orders owned by someone
// else, so order ids cannot be probed.
func (h *OrderHandler) GetOwn(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	order, err := h.orderRepo.GetByIDForUser(r.Context(), orderID, middlewares.UserID(r))
	if err != nil {
		apierr.Write(h.render, w, err)
		return
	}
	if order == nil {
		apierr.Write(h.render, w, fmt.Errorf("%w: order", apierr.ErrNotFound))
		return
	}

	_ = h.render.JSON(w, http.StatusOK, order)
}

func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	page, pageErr := strconv.Atoi(r.URL.Query().Get("page"))
	limit, limitErr := strconv.Atoi(r.URL.Query().Get("limit"))

	if pageErr == nil && limitErr == nil && page > 0 && limit > 0 {
		offset := (page - 1) * limit
		orders, total, err := h.orderRepo.GetAllPaginated(r.Context(), limit, offset)
		if err != nil {
			apierr.Write(h.render, w, err)
			return
		}
		_ = h.render.JSON(w, http.StatusOK, map[string]interface{}{
			"total":  total,
			"orders": orders,
		})
		return
	}

	orders, err := h.orderRepo.GetAll(r.Context())
	if err != nil {
		apierr.Write(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) GetAdmin(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	order, err := h.orderRepo.GetByIDWithItems(r.Context(), orderID)
	if err != nil {
		apierr.Write(h.render, w, err)
		return
	}
	if order == nil {
		apierr.Write(h.render, w, fmt.Errorf("%w: order", apierr.ErrNotFound))
		return
	}

	_ = h.render.JSON(w, http.StatusOK, order)
}

type UpdateStatusForm struct {
	Status string `json:"status" validate:"required"`
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	var form UpdateStatusForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		apierr.Write(h.render, w, fmt.Errorf("%w: invalid JSON body", apierr.ErrValidation))
		return
	}
	if form.Status == "" {
		apierr.Write(h.render, w, fmt.Errorf("%w: status is required", apierr.ErrValidation))
		return
	}

	if err := h.orderSvc.UpdateStatus(r.Context(), orderID, form.Status); err != nil {
		middlewares.RecordOrderOperation("update_status", false)
		apierr.Write(h.render, w, mapOrderError(err))
		return
	}
	middlewares.RecordOrderOperation("update_status", true)

	_ = h.render.JSON(w, http.StatusOK, map[string]string{"message": "Status updated and notification queued"})
}

// mapOrderError translates order-service sentinels into the boundary
// taxonomy; anything unrecognized stays a 500.
func mapOrderError(err error) error {
	switch {
	case errors.Is(err, services.ErrEmptyOrder),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrInvalidDiscount):
		return fmt.Errorf("%w: %v", apierr.ErrValidation, err)
	case errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrOrderNotFound):
		return fmt.Errorf("%w: %v", apierr.ErrNotFound, err)
	case errors.Is(err, services.ErrInsufficientStock):
		return fmt.Errorf("%w: %v", apierr.ErrConflict, err)
	default:
		return err
	}
}
