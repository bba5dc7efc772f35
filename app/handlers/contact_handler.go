package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/rvishwa/go-storefront/app/configs"
	"github.com/rvishwa/go-storefront/app/helpers"
	"github.com/rvishwa/go-storefront/app/models"
	"github.com/rvishwa/go-storefront/app/repositories"
	"github.com/rvishwa/go-storefront/app/services"
	"github.com/rvishwa/go-storefront/app/utils/apierr"
	"github.com/unrolled/render"
)

type ContactHandler struct {
	render      *render.Render
	validator   *validator.Validate
	contactRepo repositories.ContactRepositoryImpl
	mailer      services.MailSender
	env         configs.ENV
}

func NewContactHandler(r *render.Render, v *validator.Validate, contactRepo repositories.ContactRepositoryImpl, mailer services.MailSender, env configs.ENV) *ContactHandler {
	return &ContactHandler{
		render:      r,
		validator:   v,
		contactRepo: contactRepo,
		mailer:      mailer,
		env:         env,
	}
}

type ContactForm struct {
	Name    string `json:"name" validate:"required,min=1,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
	Message string `json:"message" validate:"required"`
}

// Submit persists the message, then best-effort emails the configured
// recipient. The response only depends on the persisted row.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var form ContactForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		apierr.Write(h.render, w, fmt.Errorf("%w: invalid JSON body", apierr.ErrValidation))
		return
	}
	if err := h.validator.Struct(form); err != nil {
		apierr.WriteFields(h.render, w, helpers.FormatValidationErrors(err.(validator.ValidationErrors)))
		return
	}

	msg := &models.ContactMessage{
		Name:    form.Name,
		Email:   form.Email,
		Phone:   form.Phone,
		Message: form.Message,
	}
	if err := h.contactRepo.Create(r.Context(), msg); err != nil {
		apierr.Write(h.render, w, err)
		return
	}

	if h.env.MailConfigured() && h.env.ContactRecipient != "" {
		body := services.BuildContactEmailBody(form.Name, form.Email, form.Phone, form.Message)
		go func() {
			if err := h.mailer.SendHTMLEmail(h.env.ContactRecipient, "New Contact Request", body); err != nil {
				log.Error().Err(err).Msg("contact notification email failed")
			}
		}()
	}

	_ = h.render.JSON(w, http.StatusOK, map[string]string{"message": "Your message has been received."})
}
