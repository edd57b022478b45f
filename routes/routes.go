package routes

import (
	"net/http"

	"go-ordering/controllers"
	"go-ordering/middleware"
	"go-ordering/models"
	"go-ordering/utils"

	"github.com/gorilla/mux"
)

type Controllers struct {
	Users      *controllers.UserController
	Orders     *controllers.OrderController
	Cart       *controllers.CartController
	Products   *controllers.ProductController
	Businesses *controllers.BusinessController
}

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, tokens *utils.TokenManager, c Controllers) {
	router.Use(middleware.RequestID, middleware.Logging, middleware.IdentifyMiddleware(tokens))
	businessOnly := middleware.RoleMiddleware(models.RoleBusiness, c.Orders.RespondError)

	router.HandleFunc("/health", controllers.Health).Methods(http.MethodGet)
	router.Handle("/", http.RedirectHandler("/businesses/", http.StatusFound)).Methods(http.MethodGet)

	// Public routes
	router.HandleFunc("/signup/", c.Users.SignupForm).Methods(http.MethodGet)
	router.HandleFunc("/signup/", c.Users.Signup).Methods(http.MethodPost)
	router.HandleFunc("/auth/login", c.Users.LoginForm).Methods(http.MethodGet)
	router.HandleFunc("/auth/login", c.Users.Login).Methods(http.MethodPost)
	router.HandleFunc("/auth/logout", c.Users.Logout).Methods(http.MethodPost)

	router.HandleFunc("/businesses/", c.Businesses.ListBusinesses).Methods(http.MethodGet)
	router.HandleFunc("/businesses/{id}", c.Businesses.ShowBusiness).Methods(http.MethodGet)

	// Order routes
	orders := router.PathPrefix("/orders").Subrouter()
	orders.Use(middleware.AuthMiddleware(tokens))
	orders.HandleFunc("/", c.Orders.ListOrders).Methods(http.MethodGet)
	orders.HandleFunc("/", c.Cart.AddToCart).Methods(http.MethodPost)
	orders.HandleFunc("/{id}/details", c.Orders.Details).Methods(http.MethodGet)
	orders.HandleFunc("/{id}/confirm", c.Orders.Confirm).Methods(http.MethodPost)
	orders.Handle("/{id}/delivered", businessOnly(http.HandlerFunc(c.Orders.Delivered))).Methods(http.MethodPost)

	// Business routes
	business := router.PathPrefix("/business").Subrouter()
	business.Use(middleware.AuthMiddleware(tokens), businessOnly)
	business.HandleFunc("/orders", c.Orders.BusinessOrders).Methods(http.MethodGet)
	business.HandleFunc("/products", c.Products.CreateProduct).Methods(http.MethodPost)
}
