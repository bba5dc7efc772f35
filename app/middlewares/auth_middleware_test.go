package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rvishwa/go-storefront/app/models"
	"github.com/rvishwa/go-storefront/app/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unrolled/render"
)

func authStack(t *testing.T, adminOnly bool) (http.Handler, *services.TokenService, *struct {
	userID string
	role   string
	called bool
}) {
	t.Helper()

	tokens := services.NewTokenService("test-secret")
	rnd := render.New()

	captured := &struct {
		userID string
		role   string
		called bool
	}{}

	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.called = true
		captured.userID = UserID(r)
		captured.role = Role(r)
		w.WriteHeader(http.StatusOK)
	})

	if adminOnly {
		handler = AdminMiddleware(rnd)(handler)
	}
	handler = AuthMiddleware(tokens, rnd)(handler)

	return handler, tokens, captured
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	handler, _, captured := authStack(t, false)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/orders", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, captured.called)
}

func TestAuthMiddlewareMalformedHeader(t *testing.T) {
	handler, _, captured := authStack(t, false)

	req := httptest.NewRequest("GET", "/api/orders", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, captured.called)
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	handler, _, captured := authStack(t, false)

	req := httptest.NewRequest("GET", "/api/orders", nil)
	req.Header.Set("Authorization", "Bearer bogus.token.value")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, captured.called)
}

func TestAuthMiddlewareAttachesIdentity(t *testing.T) {
	handler, tokens, captured := authStack(t, false)

	token, err := tokens.Issue("user-42", models.RoleCustomer)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, captured.called)
	assert.Equal(t, "user-42", captured.userID)
	assert.Equal(t, models.RoleCustomer, captured.role)
}

func TestAdminMiddlewareRejectsCustomer(t *testing.T) {
	handler, tokens, captured := authStack(t, true)

	token, err := tokens.Issue("user-42", models.RoleCustomer)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, captured.called)
}

func TestAdminMiddlewareAllowsAdmin(t *testing.T) {
	handler, tokens, captured := authStack(t, true)

	token, err := tokens.Issue("admin-1", models.RoleAdmin)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, captured.called)
	assert.Equal(t, models.RoleAdmin, captured.role)
}
