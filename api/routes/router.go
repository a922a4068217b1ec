package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/vineinventory-viewer/api/controllers"
	"github.com/angelmondragon/vineinventory-viewer/api/middleware"
	"github.com/angelmondragon/vineinventory-viewer/internal/inventory"
	"github.com/angelmondragon/vineinventory-viewer/internal/viewer"
	"github.com/angelmondragon/vineinventory-viewer/pkg/config"
	"github.com/angelmondragon/vineinventory-viewer/pkg/logger"
	"github.com/angelmondragon/vineinventory-viewer/pkg/metrics"
)

// Dependencies are the collaborators the HTTP surface needs.
type Dependencies struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          controllers.Pinger
	Redis       controllers.Pinger
	Tokens      middleware.TokenValidator
	Inventory   inventory.Service
	Viewer      viewer.Service
	RateLimiter *middleware.RateLimiter
	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	if cfg.RateLimit.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.Services.ViewerURL),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/", controllers.ViewerIndex(deps.Viewer, logg))
	r.Get("/view/{viewID}", controllers.ViewerPage(deps.Viewer, logg))

	if dir := cfg.Viewer.StaticDir; dir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(dir))))
	}

	r.Route("/api", func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware)
		}

		r.Post("/generate", controllers.GenerateView(deps.Viewer, logg))

		r.Route("/inventory", func(r chi.Router) {
			r.Post("/update-field", controllers.InventoryUpdateField(deps.Inventory, deps.Tokens, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.ViewerAuth(deps.Tokens, logg))
				r.Get("/snapshot", controllers.InventorySnapshot(deps.Inventory, logg))
				r.Get("/export.csv", controllers.InventoryExportCSV(deps.Inventory, logg))
				r.Get("/movements", controllers.InventoryMovements(deps.Inventory, logg))
			})
		})
	})

	return r
}
