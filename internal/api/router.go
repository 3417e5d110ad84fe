package api

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hugh/go-grc/internal/api/handlers"
	"github.com/hugh/go-grc/internal/api/middleware"
	"github.com/hugh/go-grc/internal/auth"
	"github.com/hugh/go-grc/internal/grc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Logger         *slog.Logger
	JWTService     *auth.JWTService
	AuthService    *auth.Service
	GRC            *grc.Service
	Revoker        auth.Revoker // optional; nil disables logout revocation
	Templates      handlers.Renderer
	StaticFS       fs.FS
	AllowedOrigins []string // CORS allowed origins
	RateLimitReqs  int      // Rate limit requests per window
	RateLimitSecs  int      // Rate limit window in seconds
	SecureCookies  bool
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimw.RequestID)
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.Instrument)

	// Rate limiting - applied globally to prevent abuse
	if cfg.RateLimitReqs > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitReqs, cfg.RateLimitSecs))
	}

	// CORS - restrict to configured origins, or allow localhost in development
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Auth-Token"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService, cfg.JWTService, cfg.Revoker, cfg.SecureCookies, cfg.Logger)
	dashboardHandler := handlers.NewDashboardHandler(cfg.GRC, cfg.AuthService, cfg.Templates, cfg.Logger)
	orgHandler := handlers.NewOrganizationHandler(cfg.GRC, cfg.Logger)
	riskHandler := handlers.NewRiskHandler(cfg.GRC, cfg.Logger)
	controlHandler := handlers.NewControlHandler(cfg.GRC, cfg.Logger)
	complianceHandler := handlers.NewComplianceHandler(cfg.GRC, cfg.Logger)
	integrationHandler := handlers.NewIntegrationHandler(cfg.GRC, cfg.Logger)

	requireAuth := middleware.Auth(cfg.JWTService, cfg.Revoker)
	optionalAuth := middleware.OptionalAuth(cfg.JWTService, cfg.Revoker)

	// Health and metrics endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)

		// Anonymous callers get an empty list.
		r.With(optionalAuth).Get("/organizations", orgHandler.List)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			if cfg.RateLimitReqs > 0 {
				r.Use(middleware.RateLimitByUser(cfg.RateLimitReqs, cfg.RateLimitSecs))
			}

			r.Get("/me", authHandler.Me)

			r.Post("/organizations", orgHandler.Create)

			r.Route("/organizations/{orgID}", func(r chi.Router) {
				r.Get("/", orgHandler.Get)
				r.Get("/members", orgHandler.ListMembers)
				r.Post("/members", orgHandler.AddMember)
				r.Get("/dashboard", orgHandler.Dashboard)
				r.Get("/audit-logs", orgHandler.AuditLogs)

				r.Get("/risks", riskHandler.List)
				r.Post("/risks", riskHandler.Create)
				r.Get("/risks/matrix", riskHandler.Matrix)

				r.Get("/controls", controlHandler.List)
				r.Post("/controls", controlHandler.Create)

				r.Get("/frameworks", complianceHandler.ListFrameworks)
				r.Post("/frameworks", complianceHandler.CreateFramework)

				r.Get("/integrations", integrationHandler.List)
				r.Post("/integrations", integrationHandler.Create)
			})

			r.Route("/risks/{riskID}", func(r chi.Router) {
				r.Get("/", riskHandler.Get)
				r.Patch("/", riskHandler.Update)
				r.Get("/controls", riskHandler.ListControls)
				r.Post("/controls", riskHandler.LinkControl)
			})

			r.Post("/controls/{controlID}/test", controlHandler.RecordTest)

			r.Get("/frameworks/{frameworkID}/requirements", complianceHandler.ListRequirements)
			r.Post("/frameworks/{frameworkID}/requirements", complianceHandler.CreateRequirement)
			r.Patch("/requirements/{requirementID}/status", complianceHandler.UpdateRequirementStatus)

			r.Route("/integrations/{integrationID}", func(r chi.Router) {
				r.Get("/", integrationHandler.Get)
				r.Post("/test", integrationHandler.Test)
				r.Post("/sync", integrationHandler.Sync)
				r.Put("/status", integrationHandler.SetStatus)
			})
		})
	})

	// Web dashboard routes
	r.Get("/login", dashboardHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", dashboardHandler.Index)
		r.Get("/dashboard", dashboardHandler.Index)
	})

	// Static files
	if cfg.StaticFS != nil {
		fileServer := http.FileServer(http.FS(cfg.StaticFS))
		r.Handle("/static/*", http.StripPrefix("/static/", fileServer))
	}

	return &Router{r}
}
