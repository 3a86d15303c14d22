package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Pesokrava/point_of_sale/internal/config"
	"github.com/Pesokrava/point_of_sale/internal/delivery/http/handler"
	"github.com/Pesokrava/point_of_sale/internal/delivery/http/middleware"
	"github.com/Pesokrava/point_of_sale/internal/delivery/http/response"
	"github.com/Pesokrava/point_of_sale/internal/pkg/logger"
)

// Handlers groups the HTTP handlers served by the router
type Handlers struct {
	Products  *handler.ProductHandler
	Carts     *handler.CartHandler
	Sales     *handler.SaleHandler
	Dashboard *handler.DashboardHandler
}

// Router holds HTTP handlers and router configuration
type Router struct {
	handlers Handlers
	logger   *logger.Logger
	cfg      *config.Config
}

// NewRouter creates a new HTTP router
func NewRouter(handlers Handlers, cfg *config.Config, log *logger.Logger) *Router {
	return &Router{
		handlers: handlers,
		logger:   log,
		cfg:      cfg,
	}
}

// Setup configures and returns the HTTP router
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logger(rt.logger))
	r.Use(chimw.Timeout(rt.cfg.Server.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", rt.healthCheck)
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	h := rt.handlers
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Post("/", h.Products.Create)
			r.Get("/", h.Products.List)
			r.Get("/low-stock", h.Products.LowStock)
			r.Get("/{id}", h.Products.GetByID)
			r.Patch("/{id}", h.Products.Update)
			r.Put("/{id}/stock", h.Products.SetStock)
			r.Delete("/{id}", h.Products.Delete)
		})

		r.Route("/carts", func(r chi.Router) {
			r.Post("/", h.Carts.Open)
			r.Get("/{id}", h.Carts.Get)
			r.Delete("/{id}", h.Carts.Discard)
			r.Post("/{id}/items", h.Carts.AddItem)
			r.Delete("/{id}/items", h.Carts.Clear)
			r.Put("/{id}/items/{productID}", h.Carts.SetQuantity)
			r.Delete("/{id}/items/{productID}", h.Carts.RemoveItem)
			r.Post("/{id}/checkout", h.Carts.Checkout)
		})

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", h.Sales.List)
			r.Get("/{id}", h.Sales.GetByID)
		})

		r.Get("/dashboard", h.Dashboard.Get)
		r.Get("/alerts/low-stock", h.Dashboard.Alerts)
	})

	return r
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"storage": rt.cfg.Storage.Driver,
	})
}
