package http

import (
	"net/http"

	_ "github.com/DRSN-tech/inventory-backend/docs" // Импорт сгенерированных файлов
	"github.com/DRSN-tech/inventory-backend/internal/cfg"
	"github.com/DRSN-tech/inventory-backend/internal/usecase"
	"github.com/DRSN-tech/inventory-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router *chi.Mux
	cfg    *cfg.HTTPConfig
	logger logger.Logger
}

func NewRouter(router *chi.Mux, cfg *cfg.HTTPConfig, logger logger.Logger) *Router {
	return &Router{router: router, cfg: cfg, logger: logger}
}

// Init регистрирует маршруты. limiter может быть nil: тогда ограничение частоты выключено.
func (r *Router) Init(invUC usecase.InventoryUC, storage Pinger, limiter RateLimiter) {
	r.router.Use(
		RequestID,
		middleware.RealIP,
		Logging(r.logger),
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins: r.cfg.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", requestIDHeader, clientIDHeader},
			ExposedHeaders: []string{"Location", requestIDHeader},
			MaxAge:         300,
		}),
	)

	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.router.Get("/healthz", NewHealthHandler(storage, r.logger).healthz)

	r.router.Route("/v1", func(v1 chi.Router) {
		if limiter != nil {
			v1.Use(RateLimit(limiter, r.logger))
		}

		registerStockRoutes(v1, NewStockHandler(invUC, r.logger))
		registerSaleRoutes(v1, NewSaleHandler(invUC, r.logger))
	})

	r.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteSuccess(w, http.StatusNotFound, NewErrorResponse("ERROR"))
	})
	r.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		WriteSuccess(w, http.StatusMethodNotAllowed, NewErrorResponse("ERROR"))
	})
}

func registerStockRoutes(router chi.Router, h *StockHandler) {
	router.Route("/stocks", func(st chi.Router) {
		st.Post("/", h.restock)
		st.Get("/", h.listStock)
		st.Delete("/", h.resetAll)
		st.Get("/{name}", h.getStock)
	})
}

func registerSaleRoutes(router chi.Router, h *SaleHandler) {
	router.Route("/sales", func(sl chi.Router) {
		sl.Post("/", h.sell)
		sl.Get("/", h.totalSales)
		sl.Get("/records", h.listRecords)
	})
}
