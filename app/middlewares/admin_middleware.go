package middlewares

import (
	"fmt"
	"net/http"

	"github.com/rvishwa/go-storefront/app/models"
	"github.com/rvishwa/go-storefront/app/utils/apierr"
	"github.com/unrolled/render"
)

// AdminMiddleware permits continuation only for admin identities. It
// assumes AuthMiddleware already ran.
func AdminMiddleware(r *render.Render) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if Role(req) != models.RoleAdmin {
				apierr.Write(r, w, fmt.Errorf("%w: admin access required", apierr.ErrForbidden))
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}
