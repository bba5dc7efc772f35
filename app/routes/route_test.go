package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/rvishwa/go-storefront/app/configs"
	"github.com/rvishwa/go-storefront/app/helpers"
	"github.com/rvishwa/go-storefront/app/models"
	"github.com/rvishwa/go-storefront/app/models/migrations"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRouter(t *testing.T) (*mux.Router, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, migrations.AutoMigrate(db))

	env := configs.ENV{
		Port:      ":0",
		JWTSecret: "test-secret",
	}
	return NewRouter(db, env), db
}

func doJSON(t *testing.T, router *mux.Router, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func signup(t *testing.T, router *mux.Router, email string) string {
	t.Helper()
	rec := doJSON(t, router, "POST", "/api/auth/signup", "", map[string]string{
		"full_name": "Test User",
		"email":     email,
		"password":  "password1",
		"phone":     "555-0100",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody(t, rec)["token"].(string)
}

func seedAdmin(t *testing.T, router *mux.Router, db *gorm.DB) string {
	t.Helper()
	hash, err := helpers.HashPassword("admin-pass")
	require.NoError(t, err)
	admin := &models.User{FullName: "Admin", Email: "admin@example.com", Password: hash, Role: models.RoleAdmin}
	require.NoError(t, db.Create(admin).Error)

	rec := doJSON(t, router, "POST", "/api/auth/login", "", map[string]string{
		"email":    "admin@example.com",
		"password": "admin-pass",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeBody(t, rec)["token"].(string)
}

func seedProduct(t *testing.T, db *gorm.DB, name, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: decimal.RequireFromString(price), Stock: stock}
	require.NoError(t, db.Create(p).Error)
	return p
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := setupRouter(t)
	rec := doJSON(t, router, "GET", "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSignupLoginFlow(t *testing.T) {
	router, _ := setupRouter(t)

	token := signup(t, router, "alice@example.com")
	require.NotEmpty(t, token)

	// Duplicate email conflicts.
	rec := doJSON(t, router, "POST", "/api/auth/signup", "", map[string]string{
		"full_name": "Alice Again",
		"email":     "alice@example.com",
		"password":  "password1",
		"phone":     "555-0100",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Wrong password is a 401, unknown email too.
	rec = doJSON(t, router, "POST", "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, "POST", "/api/auth/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "password1",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, "POST", "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "password1",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	// Profile requires a token.
	rec = doJSON(t, router, "GET", "/api/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, "GET", "/api/auth/profile", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice@example.com", decodeBody(t, rec)["email"])
}

func TestSignupValidation(t *testing.T) {
	router, _ := setupRouter(t)

	rec := doJSON(t, router, "POST", "/api/auth/signup", "", map[string]string{
		"email": "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func resetTokenOf(t *testing.T, db *gorm.DB, email string) *string {
	t.Helper()
	var user models.User
	require.NoError(t, db.Where("email = ?", email).First(&user).Error)
	return user.PasswordResetToken
}

func TestForgotPasswordDoesNotRevealAccounts(t *testing.T) {
	router, db := setupRouter(t)
	signup(t, router, "alice@example.com")

	known := doJSON(t, router, "POST", "/api/auth/forgot-password", "", map[string]string{
		"email": "alice@example.com",
	})
	unknown := doJSON(t, router, "POST", "/api/auth/forgot-password", "", map[string]string{
		"email": "ghost@example.com",
	})

	// Same status and same body regardless of account existence.
	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, http.StatusOK, unknown.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String())

	// Only the existing account got a reset token.
	require.NotNil(t, resetTokenOf(t, db, "alice@example.com"))
	var withToken int64
	require.NoError(t, db.Model(&models.User{}).
		Where("password_reset_token IS NOT NULL").Count(&withToken).Error)
	assert.EqualValues(t, 1, withToken)
}

func TestResetPasswordRoundTrip(t *testing.T) {
	router, db := setupRouter(t)
	signup(t, router, "alice@example.com")

	rec := doJSON(t, router, "POST", "/api/auth/forgot-password", "", map[string]string{
		"email": "alice@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	token := resetTokenOf(t, db, "alice@example.com")
	require.NotNil(t, token)

	rec = doJSON(t, router, "POST", "/api/auth/reset-password", "", map[string]string{
		"token":    *token,
		"password": "brand-new-pass",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Old credentials no longer work, new ones do.
	rec = doJSON(t, router, "POST", "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "password1",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, "POST", "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "brand-new-pass",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	// The token is single-use: cleared on success, rejected on replay.
	assert.Nil(t, resetTokenOf(t, db, "alice@example.com"))
	rec = doJSON(t, router, "POST", "/api/auth/reset-password", "", map[string]string{
		"token":    *token,
		"password": "another-pass",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	router, db := setupRouter(t)
	signup(t, router, "alice@example.com")

	rec := doJSON(t, router, "POST", "/api/auth/forgot-password", "", map[string]string{
		"email": "alice@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	token := resetTokenOf(t, db, "alice@example.com")
	require.NotNil(t, token)

	expired := time.Now().Add(-time.Minute)
	require.NoError(t, db.Model(&models.User{}).
		Where("email = ?", "alice@example.com").
		Update("password_reset_expires", expired).Error)

	rec = doJSON(t, router, "POST", "/api/auth/reset-password", "", map[string]string{
		"token":    *token,
		"password": "brand-new-pass",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// The stale token must not have changed the password.
	rec = doJSON(t, router, "POST", "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "password1",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUnknownResetToken(t *testing.T) {
	router, _ := setupRouter(t)

	rec := doJSON(t, router, "POST", "/api/auth/reset-password", "", map[string]string{
		"token":    "no-such-token",
		"password": "brand-new-pass",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductAdminGating(t *testing.T) {
	router, db := setupRouter(t)
	customerToken := signup(t, router, "bob@example.com")
	adminToken := seedAdmin(t, router, db)

	body := map[string]interface{}{
		"name":  "Widget",
		"price": "19.99",
		"stock": 5,
	}

	rec := doJSON(t, router, "POST", "/api/products", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, "POST", "/api/products", customerToken, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, router, "POST", "/api/products", adminToken, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	productID := decodeBody(t, rec)["id"].(string)

	// Public listing needs no token.
	rec = doJSON(t, router, "GET", "/api/products", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Widget")

	rec = doJSON(t, router, "DELETE", "/api/products/"+productID, adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, "DELETE", "/api/products/"+productID, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductValidation(t *testing.T) {
	router, db := setupRouter(t)
	adminToken := seedAdmin(t, router, db)

	rec := doJSON(t, router, "POST", "/api/products", adminToken, map[string]interface{}{
		"name":  "Bad Widget",
		"price": "-1.00",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderLifecycle(t *testing.T) {
	router, db := setupRouter(t)
	token := signup(t, router, "carol@example.com")
	a := seedProduct(t, db, "Product A", "10.00", 10)
	b := seedProduct(t, db, "Product B", "5.00", 10)

	rec := doJSON(t, router, "POST", "/api/orders", token, map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": a.ID, "quantity": 2},
			{"product_id": b.ID, "quantity": 1},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody(t, rec)
	orderID := created["order_id"].(string)
	assert.Equal(t, "pending", created["status"])
	assert.True(t, decimal.RequireFromString(created["total"].(string)).Equal(decimal.NewFromFloat(25.00)))

	rec = doJSON(t, router, "GET", "/api/orders", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), orderID)

	rec = doJSON(t, router, "GET", "/api/orders/"+orderID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// A different authenticated user cannot see it.
	otherToken := signup(t, router, "mallory@example.com")
	rec = doJSON(t, router, "GET", "/api/orders/"+orderID, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderWithDiscountCode(t *testing.T) {
	router, db := setupRouter(t)
	token := signup(t, router, "dave@example.com")
	adminToken := seedAdmin(t, router, db)
	a := seedProduct(t, db, "Product A", "10.00", 10)

	rec := doJSON(t, router, "POST", "/api/discounts", adminToken, map[string]interface{}{
		"code":        "save10",
		"percent_off": "10",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "SAVE10", decodeBody(t, rec)["code"])

	rec = doJSON(t, router, "POST", "/api/orders", token, map[string]interface{}{
		"items":         []map[string]interface{}{{"product_id": a.ID, "quantity": 2}},
		"discount_code": "SAVE10",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	total := decimal.RequireFromString(decodeBody(t, rec)["total"].(string))
	assert.True(t, total.Equal(decimal.NewFromFloat(18.00)), "got total %s", total)

	rec = doJSON(t, router, "POST", "/api/orders", token, map[string]interface{}{
		"items":         []map[string]interface{}{{"product_id": a.ID, "quantity": 1}},
		"discount_code": "BOGUS",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminOrderSurface(t *testing.T) {
	router, db := setupRouter(t)
	token := signup(t, router, "erin@example.com")
	adminToken := seedAdmin(t, router, db)
	a := seedProduct(t, db, "Product A", "10.00", 10)

	rec := doJSON(t, router, "POST", "/api/orders", token, map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": a.ID, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	orderID := decodeBody(t, rec)["order_id"].(string)

	rec = doJSON(t, router, "GET", "/api/orders/all", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, router, "GET", "/api/orders/all", adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "erin@example.com")

	rec = doJSON(t, router, "GET", "/api/orders/"+orderID+"/admin", adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, "PUT", "/api/orders/"+orderID+"/status", adminToken, map[string]string{
		"status": "shipped",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, "PUT", "/api/orders/no-such-order/status", adminToken, map[string]string{
		"status": "shipped",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContactFormValidation(t *testing.T) {
	router, _ := setupRouter(t)

	rec := doJSON(t, router, "POST", "/api/contact", "", map[string]string{
		"name":  "Visitor",
		"email": "visitor@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, "POST", "/api/contact", "", map[string]string{
		"name":    "Visitor",
		"email":   "visitor@example.com",
		"message": "Hello there",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminStats(t *testing.T) {
	router, db := setupRouter(t)
	adminToken := seedAdmin(t, router, db)
	seedProduct(t, db, "Product A", "10.00", 10)

	rec := doJSON(t, router, "GET", "/api/admin/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	stats := decodeBody(t, rec)["stats"].(map[string]interface{})
	assert.EqualValues(t, 1, stats["totalProducts"])
	assert.EqualValues(t, 1, stats["totalUsers"])
}

func TestAdminRevenueAndAnalytics(t *testing.T) {
	router, db := setupRouter(t)
	token := signup(t, router, "frank@example.com")
	adminToken := seedAdmin(t, router, db)
	a := seedProduct(t, db, "Product A", "10.00", 10)

	rec := doJSON(t, router, "POST", "/api/orders", token, map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": a.ID, "quantity": 3}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	thisMonth := time.Now().Format("2006-01")

	rec = doJSON(t, router, "GET", "/api/admin/revenue", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	revenue := decodeBody(t, rec)
	labels := revenue["labels"].([]interface{})
	require.Len(t, labels, 1)
	assert.Equal(t, thisMonth, labels[0])
	values := revenue["values"].([]interface{})
	require.Len(t, values, 1)
	assert.True(t, decimal.RequireFromString(values[0].(string)).Equal(decimal.NewFromInt(30)))

	rec = doJSON(t, router, "GET", "/api/admin/analytics", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	analytics := decodeBody(t, rec)
	top := analytics["topProducts"].(map[string]interface{})
	assert.Contains(t, top["labels"].([]interface{}), "Product A")
	trends := analytics["orderTrends"].(map[string]interface{})
	assert.Contains(t, trends["labels"].([]interface{}), thisMonth)
}

func TestBlogPublicAndAdmin(t *testing.T) {
	router, db := setupRouter(t)
	adminToken := seedAdmin(t, router, db)

	rec := doJSON(t, router, "POST", "/api/blogs", adminToken, map[string]string{
		"title":   "Launch Announcement",
		"content": "We are live.",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "launch-announcement", decodeBody(t, rec)["slug"])

	rec = doJSON(t, router, "GET", "/api/public/blogs", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Launch Announcement")

	rec = doJSON(t, router, "GET", "/api/public/blogs/slug/launch-announcement", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, "GET", "/api/public/blogs/slug/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
