package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docgate/internal/platform/middleware"
)

// RouterConfig carries everything the router wires together.
type RouterConfig struct {
	Users      *UserHandler
	Documents  *DocumentHandler
	UserGuard  func(http.Handler) http.Handler
	AdminGuard func(http.Handler) http.Handler
	Logger     *slog.Logger

	// CORSOrigins lists allowed browser origins. Empty means development:
	// reflect any origin so local frontends on arbitrary ports work.
	CORSOrigins []string

	// Checks are named backend probes for the health endpoint.
	Checks map[string]func(context.Context) error
}

// NewRouter builds the full HTTP surface: the two API subtrees plus health
// and metrics.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Clock)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(corsMiddleware(cfg.CORSOrigins))

	r.Mount("/api/users", cfg.Users.Routes(cfg.UserGuard, cfg.AdminGuard))
	r.Mount("/api/documents", cfg.Documents.Routes(cfg.UserGuard, cfg.AdminGuard))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("Hello World!"))
	})
	r.Get("/health", handleHealth(cfg.Checks))
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if len(origins) == 0 {
		opts.AllowOriginFunc = func(*http.Request, string) bool { return true }
	} else {
		opts.AllowedOrigins = origins
	}
	return cors.Handler(opts)
}

func handleHealth(checks map[string]func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		results := envelope{}
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				status = http.StatusServiceUnavailable
				results[name] = "down"
				continue
			}
			results[name] = "up"
		}
		respond(w, status, envelope{
			"success": status == http.StatusOK,
			"status":  results,
		})
	}
}
