package routes

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rvishwa/go-storefront/app/configs"
	"github.com/rvishwa/go-storefront/app/handlers"
	"github.com/rvishwa/go-storefront/app/handlers/admin"
	"github.com/rvishwa/go-storefront/app/middlewares"
	"github.com/rvishwa/go-storefront/app/repositories"
	"github.com/rvishwa/go-storefront/app/services"
	"github.com/unrolled/render"
	"gorm.io/gorm"
)

func NewRouter(db *gorm.DB, env configs.ENV) *mux.Router {
	rnd := render.New()
	validate := validator.New()

	userRepo := repositories.NewUserRepository(db)
	productRepo := repositories.NewProductRepository(db)
	discountRepo := repositories.NewDiscountRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	contactRepo := repositories.NewContactRepository(db)
	blogRepo := repositories.NewBlogRepository(db)
	statsRepo := repositories.NewStatsRepository(db)

	tokens := services.NewTokenService(env.JWTSecret)
	mailer := services.NewMailer(services.MailConfig{
		Host:     env.EmailHost,
		Port:     env.EmailPort,
		Username: env.EmailUsername,
		Password: env.EmailPassword,
		From:     env.EmailFrom,
	})
	orderSvc := services.NewOrderService(db, productRepo, discountRepo, orderRepo, mailer)

	authHandler := handlers.NewAuthHandler(rnd, validate, userRepo, tokens, mailer, env)
	productHandler := handlers.NewProductHandler(rnd, validate, productRepo)
	orderHandler := handlers.NewOrderHandler(rnd, validate, orderSvc, orderRepo)
	discountHandler := handlers.NewDiscountHandler(rnd, validate, discountRepo)
	contactHandler := handlers.NewContactHandler(rnd, validate, contactRepo, mailer, env)
	blogHandler := handlers.NewBlogHandler(rnd, validate, blogRepo)
	dashboardHandler := admin.NewDashboardHandler(rnd, statsRepo)
	userAdminHandler := admin.NewUserAdminHandler(rnd, validate, userRepo)

	authMw := middlewares.AuthMiddleware(tokens, rnd)
	adminMw := middlewares.AdminMiddleware(rnd)

	router := mux.NewRouter()
	router.Use(middlewares.PrometheusMiddleware)

	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_ = rnd.JSON(w, http.StatusOK, map[string]string{"message": "Storefront backend is up and running."})
	}).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	auth := router.PathPrefix("/api/auth").Subrouter()
	auth.HandleFunc("/signup", authHandler.Signup).Methods("POST")
	auth.HandleFunc("/login", authHandler.Login).Methods("POST")
	auth.HandleFunc("/forgot-password", authHandler.ForgotPassword).Methods("POST")
	auth.HandleFunc("/reset-password", authHandler.ResetPassword).Methods("POST")

	profile := router.PathPrefix("/api/auth").Subrouter()
	profile.Use(authMw)
	profile.HandleFunc("/profile", authHandler.Profile).Methods("GET")
	profile.HandleFunc("/profile", authHandler.UpdateProfile).Methods("PUT")
	profile.HandleFunc("/password", authHandler.ChangePassword).Methods("PUT")

	router.HandleFunc("/api/products", productHandler.List).Methods("GET")

	productsAdmin := router.PathPrefix("/api/products").Subrouter()
	productsAdmin.Use(authMw, adminMw)
	productsAdmin.HandleFunc("", productHandler.Create).Methods("POST")
	productsAdmin.HandleFunc("/{id}", productHandler.Update).Methods("PUT")
	productsAdmin.HandleFunc("/{id}", productHandler.Delete).Methods("DELETE")

	orders := router.PathPrefix("/api/orders").Subrouter()
	orders.Use(authMw)
	orders.HandleFunc("", orderHandler.Create).Methods("POST")
	orders.HandleFunc("", orderHandler.ListOwn).Methods("GET")

	ordersAdmin := router.PathPrefix("/api/orders").Subrouter()
	ordersAdmin.Use(authMw, adminMw)
	// Registered before the owner-scoped /{id} so "all" is not taken for
	// an order id.
	ordersAdmin.HandleFunc("/all", orderHandler.ListAll).Methods("GET")
	ordersAdmin.HandleFunc("/{id}/admin", orderHandler.GetAdmin).Methods("GET")
	ordersAdmin.HandleFunc("/{id}/status", orderHandler.UpdateStatus).Methods("PUT")

	ordersOwn := router.PathPrefix("/api/orders").Subrouter()
	ordersOwn.Use(authMw)
	ordersOwn.HandleFunc("/{id}", orderHandler.GetOwn).Methods("GET")

	discounts := router.PathPrefix("/api/discounts").Subrouter()
	discounts.Use(authMw, adminMw)
	discounts.HandleFunc("", discountHandler.List).Methods("GET")
	discounts.HandleFunc("", discountHandler.Create).Methods("POST")
	discounts.HandleFunc("/{id}", discountHandler.Delete).Methods("DELETE")

	adminRoutes := router.PathPrefix("/api/admin").Subrouter()
	adminRoutes.Use(authMw, adminMw)
	adminRoutes.HandleFunc("/stats", dashboardHandler.Stats).Methods("GET")
	adminRoutes.HandleFunc("/revenue", dashboardHandler.Revenue).Methods("GET")
	adminRoutes.HandleFunc("/analytics", dashboardHandler.Analytics).Methods("GET")

	users := router.PathPrefix("/api/users").Subrouter()
	users.Use(authMw, adminMw)
	users.HandleFunc("", userAdminHandler.List).Methods("GET")
	users.HandleFunc("", userAdminHandler.Create).Methods("POST")
	users.HandleFunc("/{id}", userAdminHandler.Update).Methods("PUT")
	users.HandleFunc("/{id}", userAdminHandler.Delete).Methods("DELETE")
	users.HandleFunc("/{id}/reset-password", userAdminHandler.ResetPassword).Methods("POST")

	router.HandleFunc("/api/contact", contactHandler.Submit).Methods("POST")

	blogs := router.PathPrefix("/api/blogs").Subrouter()
	blogs.Use(authMw, adminMw)
	blogs.HandleFunc("", blogHandler.List).Methods("GET")
	blogs.HandleFunc("", blogHandler.Create).Methods("POST")
	blogs.HandleFunc("/{id}", blogHandler.Update).Methods("PUT")
	blogs.HandleFunc("/{id}", blogHandler.Delete).Methods("DELETE")

	publicBlogs := router.PathPrefix("/api/public/blogs").Subrouter()
	publicBlogs.HandleFunc("", blogHandler.List).Methods("GET")
	publicBlogs.HandleFunc("/slug/{slug}", blogHandler.GetBySlug).Methods("GET")

	return router
}
