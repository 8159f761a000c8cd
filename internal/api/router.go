package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vowsuite/vowsuite/internal/api/handlers"
	mw "github.com/vowsuite/vowsuite/internal/api/middleware"
	"github.com/vowsuite/vowsuite/internal/auth"
	"github.com/vowsuite/vowsuite/internal/buildconfig"
	"github.com/vowsuite/vowsuite/internal/config"
	"github.com/vowsuite/vowsuite/internal/domain"
	"github.com/vowsuite/vowsuite/internal/service"
	"github.com/vowsuite/vowsuite/internal/store"
	"go.uber.org/zap"
)

// App holds the router and request metrics.
type App struct {
	Router       *chi.Mux
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(db *pgxpool.Pool, logger *zap.Logger) *App {
	// Stores
	registry := store.NewOrgRegistry(db)
	admins := store.NewAdminStore(db)
	locator := store.NewLocator(db)
	copier := store.NewCopier(store.DefaultCopyBatchSize)

	// Collaborators
	hasher := auth.NewHasher(0)
	tokens := auth.NewTokenService([]byte(config.JWTSecret()), config.JWTExpiry())

	// Services
	orgSvc := service.NewOrgService(registry, admins, locator, copier, hasher, logger)
	authSvc := service.NewAuthService(admins, hasher, tokens)
	weddingSvc := service.NewWeddingService(locator)

	// Handlers
	orgHandler := handlers.NewOrgHandler(orgSvc)
	adminHandler := handlers.NewAdminHandler(authSvc)
	weddingHandler := handlers.NewWeddingHandler(weddingSvc)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		startTime: time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	// Health (no auth)
	r.Get("/health", healthHandler(db))

	// Metrics (no auth)
	r.Get("/metrics", app.metricsHandler())

	// Admin login, throttled separately against credential guessing
	r.Group(func(r chi.Router) {
		r.Use(mw.LoginRateLimit(config.LoginRateLimit(), config.LoginRateWindow(), logger))
		r.Post("/admin/login", adminHandler.Login)
	})

	// Organization lifecycle
	r.Route("/org", func(r chi.Router) {
		// Creation is the bootstrap endpoint; lookup is public metadata
		r.Post("/create", orgHandler.Create)
		r.Get("/get", orgHandler.Get)

		// Only the organization's own admin may rename or delete it
		r.Group(func(r chi.Router) {
			r.Use(mw.BearerAuth(tokens))
			r.Put("/update", orgHandler.Update)
			r.Delete("/delete", orgHandler.Delete)
		})
	})

	// Wedding records, scoped to the token's organization
	r.Route("/weddings", func(r chi.Router) {
		r.Use(mw.BearerAuth(tokens))
		r.Post("/", weddingHandler.Create)
		r.Get("/", weddingHandler.List)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", weddingHandler.GetByID)
			r.Put("/", weddingHandler.Update)
			r.Delete("/", weddingHandler.Delete)
		})
	})

	return app
}

// NewRouter returns just the chi.Mux.
func NewRouter(db *pgxpool.Pool, logger *zap.Logger) *chi.Mux {
	return NewApp(db, logger).Router
}

func healthHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
			"build":      buildconfig.VersionInfo(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores and collaborators satisfy interfaces at compile time.
var (
	_ domain.OrgRegistry    = (*store.OrgRegistry)(nil)
	_ domain.AdminStore     = (*store.AdminStore)(nil)
	_ domain.StoreLocator   = (*store.Locator)(nil)
	_ domain.PasswordHasher = (*auth.Hasher)(nil)
	_ domain.TokenProvider  = (*auth.TokenService)(nil)
)
