package admin

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rvishwa/go-storefront/app/helpers"
	"github.com/rvishwa/go-storefront/app/models"
	"github.com/rvishwa/go-storefront/app/repositories"
	"github.com/rvishwa/go-storefront/app/utils/apierr"
	"github.com/unrolled/render"
	"gorm.io/gorm"
)

type UserAdminHandler struct {
	render    *render.Render
	validator *validator.Validate
	userRepo  repositories.UserRepositoryImpl
}

func NewUserAdminHandler(r *render.Render, v *validator.Validate, userRepo repositories.UserRepositoryImpl) *UserAdminHandler {
	return &UserAdminHandler{
		render:    r,
		validator: v,
		userRepo:  userRepo,
	}
}

func (h *UserAdminHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageErr := strconv.Atoi(r.URL.Query().Get("page"))
	limit, limitErr := strconv.Atoi(r.URL.Query().Get("limit"))

	if pageErr == nil && limitErr == nil && page > 0 && limit > 0 {
		offset := (page - 1) * limit
		users, total, err := h.userRepo.GetPaginated(r.Context(), limit, offset)
		if err != nil {
			apierr.Write(h.render, w, err)
			return
		}
		_ = h.render.JSON(w, http.StatusOK, map[string]interface{}{
			"total": total,
			"users": users,
		})
		return
	}

	users, err := h.userRepo.GetAll(r.Context())
	if err != nil {
		apierr.Write(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, users)
}

type CreateUserForm struct {
	FullName string `json:"full_name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=customer admin"`
}

func (h *UserAdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	var form CreateUserForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		apierr.Write(h.render, w, fmt.Errorf("%w: invalid JSON body", apierr.ErrValidation))
		return
	}
	if err := h.validator.Struct(form); err != nil {
		apierr.WriteFields(h.render, w, helpers.FormatValidationErrors(err.(validator.ValidationErrors)))
		return
	}

	hash, err := helpers.HashPassword(form.Password)
	if err != nil {
		apierr.Write(h.render, w, err)
		return
	}

	user := &models.User{
		FullName: form.FullName,
		Email:    strings.ToLower(strings.TrimSpace(form.Email)),
		Phone:    form.Phone,
		Password: hash,
		Role:     form.Role,
	}
	if err := h.userRepo.Create(r.Context(), user); err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") || strings.Contains(err.Error(), "UNIQUE constraint failed") {
			apierr.Write(h.render, w, fmt.Errorf("%w: email already in use", apierr.ErrConflict))
			return
		}
		apierr.Write(h.render, w, err)
		return
	}

	_ = h.render.JSON(w, http.StatusCreated, user)
}

type UpdateUserForm struct {
	FullName string `json:"full_name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=customer admin"`
}

func (h *UserAdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var form UpdateUserForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		apierr.Write(h.render, w, fmt.Errorf("%w: invalid JSON body", apierr.ErrValidation))
		return
	}
	if err := h.validator.Struct(form); err != nil {
		apierr.WriteFields(h.render, w, helpers.FormatValidationErrors(err.(validator.ValidationErrors)))
		return
	}

	user, err := h.userRepo.FindByID(r.Context(), id)
	if err != nil {
		apierr.Write(h.render, w, err)
		return
	}
	if user == nil {
		apierr.Write(h.render, w, fmt.Errorf("%w: user", apierr.ErrNotFound))
		return
	}

	user.FullName = form.FullName
	user.Email = strings.ToLower(strings.TrimSpace(form.Email))
	user.Phone = form.Phone
	user.Role = form.Role

	if err := h.userRepo.Update(r.Context(), user); err != nil {
		apierr.Write(h.render, w, err)
		return
	}

	_ = h.render.JSON(w, http.StatusOK, map[string]string{"message": "User updated"})
}

func (h *UserAdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.userRepo.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierr.Write(h.render, w, fmt.Errorf("%w: user", apierr.ErrNotFound))
			return
		}
		apierr.Write(h.render, w, err)
		return
	}

	_ = h.render.JSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}

type AdminResetPasswordForm struct {
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

func (h *UserAdminHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var form AdminResetPasswordForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		apierr.Write(h.render, w, fmt.Errorf("%w: invalid JSON body", apierr.ErrValidation))
		return
	}
	if err := h.validator.Struct(form); err != nil {
		apierr.WriteFields(h.render, w, helpers.FormatValidationErrors(err.(validator.ValidationErrors)))
		return
	}

	user, err := h.userRepo.FindByID(r.Context(), id)
	if err != nil {
		apierr.Write(h.render, w, err)
		return
	}
	if user == nil {
		apierr.Write(h.render, w, fmt.Errorf("%w: user", apierr.ErrNotFound))
		return
	}

	hash, err := helpers.HashPassword(form.NewPassword)
	if err != nil {
		apierr.Write(h.render, w, err)
		return
	}
	if err := h.userRepo.UpdatePassword(r.Context(), user.ID, hash); err != nil {
		apierr.Write(h.render, w, err)
		return
	}

	_ = h.render.JSON(w, http.StatusOK, map[string]string{"message": "Password reset successfully"})
}
