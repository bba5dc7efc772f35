// Package apierr defines the error taxonomy shared by all handlers and
// its mapping onto HTTP status codes. Handlers wrap these sentinels with
// fmt.Errorf("...: %w", ...) and hand the result to Write, which never
// leaks internal detail for unexpected errors.
package apierr

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/unrolled/render"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
)

func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func Write(r *render.Render, w http.ResponseWriter, err error) {
	status := StatusCode(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("unexpected error")
		msg = "internal server error"
	}
	_ = r.JSON(w, status, errorBody{Error: msg})
}

// WriteFields is Write for validation failures carrying a per-field
// message map.
func WriteFields(r *render.Render, w http.ResponseWriter, fields map[string]string) {
	_ = r.JSON(w, http.StatusBadRequest, errorBody{Error: ErrValidation.Error(), Fields: fields})
}
