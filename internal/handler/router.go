package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/prn-tf/shopcore/internal/metrics"
)

// RouterConfig contains the handlers and middleware the router wires up.
type RouterConfig struct {
	Account *AccountHandler
	Reset   *ResetHandler
	Item    *ItemHandler
	Cart    *CartHandler
	Health  *HealthHandler

	// AuthMiddleware resolves the bearer token into a request session.
	AuthMiddleware func(http.Handler) http.Handler

	Metrics     *metrics.Metrics
	MaxBodySize int64
	Logger      zerolog.Logger
}

// NewRouter builds the HTTP route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	if cfg.MaxBodySize > 0 {
		r.Use(chimiddleware.RequestSize(cfg.MaxBodySize))
	}
	if cfg.Metrics != nil {
		r.Use(httpMetrics(cfg.Metrics))
	}

	r.Get("/health", cfg.Health.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(cfg.AuthMiddleware)

		cfg.Account.RegisterRoutes(r)
		cfg.Reset.RegisterRoutes(r)
		cfg.Item.RegisterRoutes(r)
		cfg.Cart.RegisterRoutes(r)
	})

	return r
}

// httpMetrics records request counts and latency per chi route pattern.
func httpMetrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()
			m.HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		})
	}
}
