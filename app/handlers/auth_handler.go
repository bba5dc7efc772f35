package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/rvishwa/go-storefront/app/configs"
	"github.com/rvishwa/go-storefront/app/helpers"
	"github.com/rvishwa/go-storefront/app/middlewares"
	"github.com/rvishwa/go-storefront/app/models"
	"github.com/rvishwa/go-storefront/app/repositories"
	"github.com/rvishwa/go-storefront/app/services"
	"github.com/rvishwa/go-storefront/app/utils/apierr"
	"github.com/unrolled/render"
	"gorm.io/gorm"
)

// forgotPasswordMessage is the same for existing and unknown accounts,
// so the endpoint cannot be used to enumerate emails.
const forgotPasswordMessage = "If that account exists, an email has been sent."

type AuthHandler struct {
	render    *render.Render
	validator *validator.Validate
	userRepo  repositories.UserRepositoryImpl
	tokens    *services.TokenService
	mailer    services.MailSender
	env       configs.ENV
}

func NewAuthHandler(r *render.Render, v *validator.Validate, userRepo repositories.UserRepositoryImpl, tokens *services.TokenService, mailer services.MailSender, env configs.ENV) *AuthHandler {
	return &AuthHandler{
		render:    r,
		validator: v,
		userRepo:  userRepo,
		tokens:    tokens,
		mailer:    mailer,
		env:       env,
	}
}

type SignupForm struct {
	FullName string `json:"full_name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone" validate:"required"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var form SignupForm
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
		Password: hash,
		Phone:    form.Phone,
	}

	if err := h.userRepo.Create(r.Context(), user); err != nil {
		if isDuplicateKey(err) {
			apierr.Write(h.render, w, fmt.Errorf("%w: email already in use", apierr.ErrConflict))
			return
		}
		apierr.Write(h.render, w, err)
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Role)
	if err != nil {
		apierr.Write(h.render, w, err)
		return
	}

	_ = h.render.JSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var form LoginForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		apierr.Write(h.render, w, fmt.Errorf("%w: invalid JSON body", apierr.ErrValidation))
		return
	}
	if err := h.validator.Struct(form); err != nil {
		apierr.WriteFields(h.render, w, helpers.FormatValidationErrors(err.(validator.ValidationErrors)))
		return
	}

	user, err := h.userRepo.FindByEmail(r.Context(), strings.ToLower(strings.TrimSpace(form.Email)))
	if err != nil {
		apierr.Write(h.render, w, err)
		return
	}
	// Same response for unknown email and wrong password.
	if user == nil || !helpers.PasswordCompare(user.Password, []byte(form.Password)) {
		apierr.Write(h.render, w, fmt.Errorf("%w: invalid credentials", apierr.ErrUnauthenticated))
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Role)
	if err != nil {
		apierr.Write(h.render, w, err)
		return
	}

	_ = h.render.JSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

type ForgotPasswordForm struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var form ForgotPasswordForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		apierr.Write(h.render, w, fmt.Errorf("%w: invalid JSON body", apierr.ErrValidation))
		return
	}
	if err := h.validator.Struct(form); err != nil {
		apierr.WriteFields(h.render, w, helpers.FormatValidationErrors(err.(validator.ValidationErrors)))
		return
	}

	user, err := h.userRepo.FindByEmail(r.Context(), strings.ToLower(strings.TrimSpace(form.Email)))
	if err != nil {
		apierr.Write(h.render, w, err)
		return
	}

	if user != nil {
		token, expiresAt, err := helpers.GenerateResetToken()
		if err != nil {
			apierr.Write(h.render, w, err)
			return
		}
		if err := h.userRepo.SavePasswordResetToken(r.Context(), user.ID, &token, &expiresAt); err != nil {
			apierr.Write(h.render, w, err)
			return
		}

		link := fmt.Sprintf("%s/reset-password.html?token=%s", h.env.ClientURL, token)
		go func(to string) {
			if err := h.mailer.SendHTMLEmail(to, "Password Reset", services.BuildPasswordResetEmailBody(link)); err != nil {
				log.Error().Err(err).Msg("password reset email failed")
			}
		}(user.Email)
	}

	_ = h.render.JSON(w, http.StatusOK, map[string]string{"message": forgotPasswordMessage})
}

type ResetPasswordForm struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var form ResetPasswordForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		apierr.Write(h.render, w, fmt.Errorf("%w: invalid JSON body", apierr.ErrValidation))
		return
	}
	if err := h.validator.Struct(form); err != nil {
		apierr.WriteFields(h.render, w, helpers.FormatValidationErrors(err.(validator.ValidationErrors)))
		return
	}

	user, err := h.userRepo.FindByPasswordResetToken(r.Context(), form.Token)
	if err != nil {
		apierr.Write(h.render, w, err)
		return
	}
	if user == nil {
		apierr.Write(h.render, w, fmt.Errorf("%w: invalid or expired token", apierr.ErrValidation))
		return
	}

	hash, err := helpers.HashPassword(form.Password)
	if err != nil {
		apierr.Write(h.render, w, err)
		return
	}
	if err := h.userRepo.UpdatePassword(r.Context(), user.ID, hash); err != nil {
		apierr.Write(h.render, w, err)
		return
	}

	_ = h.render.JSON(w, http.StatusOK, map[string]string{"message": "Password has been reset."})
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.userRepo.FindByID(r.Context(), middlewares.UserID(r))
	if err != nil {
		apierr.Write(h.render, w, err)
		return
	}
	if user == nil {
		apierr.Write(h.render, w, fmt.Errorf("%w: user", apierr.ErrNotFound))
		return
	}

	_ = h.render.JSON(w, http.StatusOK, user)
}

type UpdateProfileForm struct {
	Phone string `json:"phone" validate:"required"`
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var form UpdateProfileForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		apierr.Write(h.render, w, fmt.Errorf("%w: invalid JSON body", apierr.ErrValidation))
		return
	}
	if err := h.validator.Struct(form); err != nil {
		apierr.WriteFields(h.render, w, helpers.FormatValidationErrors(err.(validator.ValidationErrors)))
		return
	}

	if err := h.userRepo.UpdatePhone(r.Context(), middlewares.UserID(r), form.Phone); err != nil {
		apierr.Write(h.render, w, err)
		return
	}

	_ = h.render.JSON(w, http.StatusOK, map[string]string{"message": "Profile updated."})
}

type ChangePasswordForm struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var form ChangePasswordForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		apierr.Write(h.render, w, fmt.Errorf("%w: invalid JSON body", apierr.ErrValidation))
		return
	}
	if err := h.validator.Struct(form); err != nil {
		apierr.WriteFields(h.render, w, helpers.FormatValidationErrors(err.(validator.ValidationErrors)))
		return
	}

	user, err := h.userRepo.FindByID(r.Context(), middlewares.UserID(r))
	if err != nil {
		apierr.Write(h.render, w, err)
		return
	}
	if user == nil {
		apierr.Write(h.render, w, fmt.Errorf("%w: user", apierr.ErrNotFound))
		return
	}
	if !helpers.PasswordCompare(user.Password, []byte(form.CurrentPassword)) {
		apierr.Write(h.render, w, fmt.Errorf("%w: current password incorrect", apierr.ErrUnauthenticated))
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

	_ = h.render.JSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully."})
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// MySQL 1062 / SQLite UNIQUE violations surface as plain errors.
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}
