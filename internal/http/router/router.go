package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rogerio-castellano/stock-ledger/internal/auth"
	"github.com/rogerio-castellano/stock-ledger/internal/http/handlers"
	"github.com/rogerio-castellano/stock-ledger/internal/http/middleware"
	rl "github.com/rogerio-castellano/stock-ledger/internal/http/rate_limiter"
	"github.com/rogerio-castellano/stock-ledger/internal/logger"
	"github.com/rogerio-castellano/stock-ledger/internal/metrics"
)

type Config struct {
	Server      *handlers.Server
	Tokens      middleware.TokenParser
	Revocations auth.Revocations
	Metrics     *metrics.Metrics
	Limiter     *rl.Limiter
	Log         *logger.Logger
}

func NewRouter(cfg Config) http.Handler {
	s := cfg.Server
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	if cfg.Log != nil {
		r.Use(middleware.Logging(cfg.Log))
	}
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Get("/health", s.Health)

	r.Group(func(r chi.Router) {
		if cfg.Limiter != nil {
			r.Use(cfg.Limiter.Middleware)
		}

		r.Post("/login", s.Login)
		r.Post("/register", s.Register)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.Tokens, cfg.Revocations))

			r.Post("/logout", s.Logout)
			r.Get("/me", s.Me)

			r.Get("/products", s.ListProducts)
			r.Get("/products/{id}", s.GetProduct)
			r.Get("/products/barcode/{code}", s.GetProductByBarcode)
			r.Get("/products/{id}/movements", s.GetProductMovements)

			r.Get("/catalog/categories", s.ListCategories)
			r.Get("/catalog/brands", s.ListBrands)
			r.Get("/catalog/warehouses", s.ListWarehouses)
			r.Get("/catalog/products", s.ListProductNames)

			r.Get("/reports/movements", s.QueryMovements)
			r.Get("/reports/movements/export", s.ExportMovements)
			r.Get("/reports/dashboard", s.GetDashboard)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Post("/products", s.CreateProduct)
				r.Post("/products/import", s.ImportProducts)
				r.Put("/products/{id}", s.UpdateProduct)
				r.Put("/products/{id}/stock", s.UpdateStock)
				r.Post("/products/{id}/adjust", s.AdjustStock)
				r.Delete("/products/{id}", s.RetireProduct)
				r.Post("/sync", s.SyncProducts)
				r.Get("/alerts/low-stock", s.RecentAlerts)
			})
		})
	})

	return r
}
