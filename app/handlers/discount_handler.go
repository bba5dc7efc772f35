package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rvishwa/go-storefront/app/helpers"
	"github.com/rvishwa/go-storefront/app/models"
	"github.com/rvishwa/go-storefront/app/repositories"
	"github.com/rvishwa/go-storefront/app/utils/apierr"
	"github.com/shopspring/decimal"
	"github.com/unrolled/render"
	"gorm.io/gorm"
)

type DiscountHandler struct {
	render       *render.Render
	validator    *validator.Validate
	discountRepo repositories.DiscountRepositoryImpl
}

func NewDiscountHandler(r *render.Render, v *validator.Validate, discountRepo repositories.DiscountRepositoryImpl) *DiscountHandler {
	return &DiscountHandler{
		render:       r,
		validator:    v,
		discountRepo: discountRepo,
	}
}

func (h *DiscountHandler) List(w http.ResponseWriter, r *http.Request) {
	discounts, err := h.discountRepo.GetAll(r.Context())
	if err != nil {
		apierr.Write(h.render, w, err)
		return
	}

	_ = h.render.JSON(w, http.StatusOK, discounts)
}

type DiscountForm struct {
	Code       string          `json:"code" validate:"required,min=1,max=50"`
	PercentOff decimal.Decimal `json:"percent_off"`
	ExpiresAt  *time.Time      `json:"expires_at"`
}

func (h *DiscountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var form DiscountForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		apierr.Write(h.render, w, fmt.Errorf("%w: invalid JSON body", apierr.ErrValidation))
		return
	}
	if err := h.validator.Struct(form); err != nil {
		apierr.WriteFields(h.render, w, helpers.FormatValidationErrors(err.(validator.ValidationErrors)))
		return
	}

	// percent_off must land in (0, 100].
	if !form.PercentOff.IsPositive() || form.PercentOff.GreaterThan(decimal.NewFromInt(100)) {
		apierr.Write(h.render, w, fmt.Errorf("%w: percent_off must be greater than 0 and at most 100", apierr.ErrValidation))
		return
	}

	code := helpers.NormalizeDiscountCode(form.Code)

	existing, err := h.discountRepo.FindByCode(r.Context(), nil, code)
	if err != nil {
		apierr.Write(h.render, w, err)
		return
	}
	if existing != nil {
		apierr.Write(h.render, w, fmt.Errorf("%w: code already exists", apierr.ErrConflict))
		return
	}

	discount := &models.Discount{
		Code:       code,
		PercentOff: form.PercentOff,
		ExpiresAt:  form.ExpiresAt,
	}
	if err := h.discountRepo.Create(r.Context(), discount); err != nil {
		apierr.Write(h.render, w, err)
		return
	}

	_ = h.render.JSON(w, http.StatusCreated, discount)
}

func (h *DiscountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.discountRepo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierr.Write(h.render, w, fmt.Errorf("%w: discount", apierr.ErrNotFound))
			return
		}
		apierr.Write(h.render, w, err)
		return
	}

	_ = h.render.JSON(w, http.StatusOK, map[string]string{"message": "Deleted"})
}
