package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/wolfman30/reserva-portal/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/reserva-portal/internal/http/middleware"
	"github.com/wolfman30/reserva-portal/internal/session"
	"github.com/wolfman30/reserva-portal/pkg/logging"
)

// Checker reports whether a dependency is reachable.
type Checker func(ctx context.Context) error

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	PublicBooking      *handlers.PublicBookingHandler
	Auth               *handlers.AuthHandler
	Doctor             *handlers.DoctorHandler
	Sessions           *session.Manager
	MetricsHandler     http.Handler
	HTTPObserver       httpmiddleware.HTTPObserver
	RateLimiter        *httpmiddleware.RateLimiter
	CORSAllowedOrigins []string

	// ReadinessChecks are run by /ready, keyed by dependency name.
	ReadinessChecks map[string]Checker
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger, cfg.HTTPObserver))
	}

	r.Get("/health", health)
	r.Get("/ready", ready(cfg.ReadinessChecks))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.RateLimiter != nil {
			api.Use(httpmiddleware.RateLimit(cfg.RateLimiter))
		}

		api.Get("/site", handlers.GetSite)
		api.Post("/demo/confirm", handlers.ConfirmDemo)

		if cfg.PublicBooking != nil {
			api.Route("/public/{slug}", func(pub chi.Router) {
				pub.Get("/", cfg.PublicBooking.GetDoctor)
				pub.Get("/availability", cfg.PublicBooking.GetAvailability)
				pub.Post("/requests", cfg.PublicBooking.CreateRequest)
			})
		}

		if cfg.Auth != nil {
			api.Route("/auth", func(a chi.Router) {
				a.Post("/login", cfg.Auth.Login)
				a.Post("/signup", cfg.Auth.Signup)
				a.Post("/forgot-password", cfg.Auth.ForgotPassword)
				a.Post("/logout", cfg.Auth.Logout)
			})
		}

		if cfg.Doctor != nil && cfg.Sessions != nil {
			api.Group(func(doc chi.Router) {
				doc.Use(httpmiddleware.RequireSession(cfg.Sessions, cfg.Logger))
				doc.Get("/dashboard", cfg.Doctor.GetDashboard)
				doc.Put("/dashboard/settings", cfg.Doctor.SaveSettings)
				doc.Put("/onboarding/profile", cfg.Doctor.SaveOnboarding)
				if cfg.Doctor.HasAttempts() {
					doc.Get("/dashboard/requests", cfg.Doctor.ListAttempts)
				}
			})
		}
	})

	return r
}

func health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func ready(checks map[string]Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		render.Status(r, status)
		render.JSON(w, r, map[string]any{"ready": status == http.StatusOK, "checks": results})
	}
}
