package middlewares

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/rvishwa/go-storefront/app/helpers"
	"github.com/rvishwa/go-storefront/app/services"
	"github.com/rvishwa/go-storefront/app/utils/apierr"
	"github.com/unrolled/render"
)

// AuthMiddleware validates the bearer token and attaches the decoded
// identity to the request context. It must run before any handler that
// reads the caller identity.
func AuthMiddleware(tokens *services.TokenService, r *render.Render) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			authHeader := req.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				apierr.Write(r, w, fmt.Errorf("%w: missing or invalid Authorization header", apierr.ErrUnauthenticated))
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := tokens.Parse(tokenString)
			if err != nil {
				log.Printf("AuthMiddleware: token rejected: %v", err)
				apierr.Write(r, w, fmt.Errorf("%w: invalid or expired token", apierr.ErrUnauthenticated))
				return
			}

			ctx := context.WithValue(req.Context(), helpers.ContextKeyUserID, claims.UserID)
			ctx = context.WithValue(ctx, helpers.ContextKeyRole, claims.Role)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}

// UserID reads the authenticated caller id attached by AuthMiddleware.
func UserID(req *http.Request) string {
	id, _ := req.Context().Value(helpers.ContextKeyUserID).(string)
	return id
}

func Role(req *http.Request) string {
	role, _ := req.Context().Value(helpers.ContextKeyRole).(string)
	return role
}
