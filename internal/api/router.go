package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Cachefy/Cachefy-Server-sub000/internal/api/middleware"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/config"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/handlers"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/models"
)

// NewRouter creates and configures the HTTP router. Two independent
// credential schemes gate two route trees: the API-key gate guards
// /callback/* for agents, the bearer gate guards everything else the
// dashboard touches. CORS runs before both so preflight OPTIONS never
// reaches auth.
func NewRouter(logger zerolog.Logger, cfg *config.Config, h *handlers.Handler, apiKeyAuth *middleware.APIKeyAuth, jwtAuth *middleware.JWTAuth, limiter *middleware.RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware (order matters!)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(64 * 1024)) // 64KB max body
	r.Use(middleware.ValidateRequest)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// Rate limiting (only when redis is configured)
	if limiter != nil {
		r.Use(limiter.Middleware)
	}

	// CORS for the dashboard; preflight is answered here, never by
	// relaxing auth on the real verbs.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.APIKeyHeader},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// Public routes (no auth required)
	r.Get("/health", h.Health)
	r.Post("/auth/login", h.Login)

	// Agent callback surface (API-key gate)
	r.Route("/callback", func(r chi.Router) {
		r.Use(apiKeyAuth.RequireAgent)

		r.Get("/health", h.CallbackHealth)
		r.Post("/register-service", h.RegisterService)
	})

	// Dashboard surface (bearer-token gate)
	r.Group(func(r chi.Router) {
		r.Use(jwtAuth.RequireUser)

		r.Route("/agents", func(r chi.Router) {
			r.Get("/", h.ListAgents)
			r.Post("/", h.CreateAgent)
			r.Get("/{id}", h.GetAgent)
			r.Put("/{id}", h.UpdateAgent)
			r.Delete("/{id}", h.DeleteAgent)
			r.Post("/{id}/regenerate-api-key", h.RegenerateAPIKey)
			r.Get("/{id}/ping", h.PingAgent)
		})

		r.Route("/services", func(r chi.Router) {
			r.Get("/", h.ListServices)
			r.Get("/{id}", h.GetService)
			r.Delete("/{id}", h.DeleteService)
		})

		r.Route("/caches", func(r chi.Router) {
			r.Get("/", h.CacheGet)
			r.Get("/keys", h.CacheKeys)
			r.Delete("/flushall", h.CacheFlushAll)
			r.Post("/flushall/{serviceId}", h.CacheFlushAllByPath)
			r.Delete("/clear", h.CacheClear)
		})

		r.Route("/users", func(r chi.Router) {
			// Self-service subset, available to any authenticated user
			r.Get("/me", h.Me)
			r.Put("/me", h.UpdateMe)
			r.Get("/me/services", h.MeServices)
			r.Put("/me/services", h.UpdateMeServices)

			// All-user operations are admin only
			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.RequireRole(models.RoleAdmin))

				r.Get("/", h.ListUsers)
				r.Post("/", h.CreateUser)
				r.Get("/{id}", h.GetUser)
				r.Put("/{id}", h.UpdateUser)
				r.Delete("/{id}", h.DeleteUser)
			})
		})
	})

	return r
}
