package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

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

type ProductHandler struct {
	render      *render.Render
	validator   *validator.Validate
	productRepo repositories.ProductRepositoryImpl
}

func NewProductHandler(r *render.Render, v *validator.Validate, productRepo repositories.ProductRepositoryImpl) *ProductHandler {
	return &ProductHandler{
		render:      r,
		validator:   v,
		productRepo: productRepo,
	}
}

type ProductForm struct {
	Name        string          `json:"name" validate:"required,min=1,max=255"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"gte=0"`
	ImageURL    string          `json:"image_url"`
	Category    string          `json:"category"`
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	var (
		products []models.Product
		err      error
	)
	if category != "" {
		products, err = h.productRepo.GetByCategory(r.Context(), category)
	} else {
		products, err = h.productRepo.GetProducts(r.Context())
	}
	if err != nil {
		apierr.Write(h.render, w, err)
		return
	}

	_ = h.render.JSON(w, http.StatusOK, products)
}

func (h *ProductHandler) decodeForm(r *http.Request, w http.ResponseWriter) (*ProductForm, bool) {
	var form ProductForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		apierr.Write(h.render, w, fmt.Errorf("%w: invalid JSON body", apierr.ErrValidation))
		return nil, false
	}
	if err := h.validator.Struct(form); err != nil {
		apierr.WriteFields(h.render, w, helpers.FormatValidationErrors(err.(validator.ValidationErrors)))
		return nil, false
	}
	if form.Price.IsNegative() {
		apierr.Write(h.render, w, fmt.Errorf("%w: price must not be negative", apierr.ErrValidation))
		return nil, false
	}
	return &form, true
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	form, ok := h.decodeForm(r, w)
	if !ok {
		return
	}

	product := &models.Product{
		Name:        form.Name,
		Description: form.Description,
		Price:       form.Price,
		Stock:       form.Stock,
		ImageURL:    form.ImageURL,
		Category:    form.Category,
	}

	if err := h.productRepo.Create(r.Context(), product); err != nil {
		apierr.Write(h.render, w, err)
		return
	}

	_ = h.render.JSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	form, ok := h.decodeForm(r, w)
	if !ok {
		return
	}

	product, err := h.productRepo.GetByID(r.Context(), id)
	if err != nil {
		apierr.Write(h.render, w, err)
		return
	}
	if product == nil {
		apierr.Write(h.render, w, fmt.Errorf("%w: product", apierr.ErrNotFound))
		return
	}

	product.Name = form.Name
	product.Description = form.Description
	product.Price = form.Price
	product.Stock = form.Stock
	product.ImageURL = form.ImageURL
	product.Category = form.Category

	if err := h.productRepo.Update(r.Context(), product); err != nil {
		apierr.Write(h.render, w, err)
		return
	}

	_ = h.render.JSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.productRepo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierr.Write(h.render, w, fmt.Errorf("%w: product", apierr.ErrNotFound))
			return
		}
		apierr.Write(h.render, w, err)
		return
	}

	_ = h.render.JSON(w, http.StatusOK, map[string]string{"message": "Product deleted"})
}
