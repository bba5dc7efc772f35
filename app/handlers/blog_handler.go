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
	"github.com/unrolled/render"
	"gorm.io/gorm"
)

type BlogHandler struct {
	render    *render.Render
	validator *validator.Validate
	blogRepo  repositories.BlogRepositoryImpl
}

func NewBlogHandler(r *render.Render, v *validator.Validate, blogRepo repositories.BlogRepositoryImpl) *BlogHandler {
	return &BlogHandler{
		render:    r,
		validator: v,
		blogRepo:  blogRepo,
	}
}

type BlogForm struct {
	Title    string `json:"title" validate:"required,min=1,max=255"`
	Content  string `json:"content" validate:"required"`
	Category string `json:"category"`
	ImageURL string `json:"image_url"`
}

func (h *BlogHandler) List(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.blogRepo.GetAll(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		apierr.Write(h.render, w, err)
		return
	}

	_ = h.render.JSON(w, http.StatusOK, blogs)
}

func (h *BlogHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	blog, err := h.blogRepo.GetBySlug(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		apierr.Write(h.render, w, err)
		return
	}
	if blog == nil {
		apierr.Write(h.render, w, fmt.Errorf("%w: blog", apierr.ErrNotFound))
		return
	}

	_ = h.render.JSON(w, http.StatusOK, blog)
}

func (h *BlogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var form BlogForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		apierr.Write(h.render, w, fmt.Errorf("%w: invalid JSON body", apierr.ErrValidation))
		return
	}
	if err := h.validator.Struct(form); err != nil {
		apierr.WriteFields(h.render, w, helpers.FormatValidationErrors(err.(validator.ValidationErrors)))
		return
	}

	blog := &models.Blog{
		Title:    form.Title,
		Slug:     helpers.GenerateSlug(form.Title),
		Content:  form.Content,
		Category: form.Category,
		ImageURL: form.ImageURL,
	}
	if err := h.blogRepo.Create(r.Context(), blog); err != nil {
		if isDuplicateKey(err) {
			apierr.Write(h.render, w, fmt.Errorf("%w: a blog with that title already exists", apierr.ErrConflict))
			return
		}
		apierr.Write(h.render, w, err)
		return
	}

	_ = h.render.JSON(w, http.StatusCreated, blog)
}

func (h *BlogHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var form BlogForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		apierr.Write(h.render, w, fmt.Errorf("%w: invalid JSON body", apierr.ErrValidation))
		return
	}
	if err := h.validator.Struct(form); err != nil {
		apierr.WriteFields(h.render, w, helpers.FormatValidationErrors(err.(validator.ValidationErrors)))
		return
	}

	blog, err := h.blogRepo.GetByID(r.Context(), id)
	if err != nil {
		apierr.Write(h.render, w, err)
		return
	}
	if blog == nil {
		apierr.Write(h.render, w, fmt.Errorf("%w: blog", apierr.ErrNotFound))
		return
	}

	blog.Title = form.Title
	blog.Content = form.Content
	blog.Category = form.Category
	blog.ImageURL = form.ImageURL

	if err := h.blogRepo.Update(r.Context(), blog); err != nil {
		apierr.Write(h.render, w, err)
		return
	}

	_ = h.render.JSON(w, http.StatusOK, blog)
}

func (h *BlogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.blogRepo.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierr.Write(h.render, w, fmt.Errorf("%w: blog", apierr.ErrNotFound))
			return
		}
		apierr.Write(h.render, w, err)
		return
	}

	_ = h.render.JSON(w, http.StatusOK, map[string]string{"message": "Blog deleted"})
}
