package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ecotrack/backend/internal/metrics"
	mW "github.com/ecotrack/backend/internal/middleware"
	"github.com/ecotrack/backend/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// RequestTimeout bounds each request. The server write deadline must exceed it.
const RequestTimeout = 60 * time.Second

// RouterConfig holds everything the HTTP surface needs.
type RouterConfig struct {
	Accounts *services.AccountService
	Ledger   *services.LedgerService
	Admin    *services.AdminService
	Tokens   *services.TokenManager
	Metrics  *metrics.Metrics
	Log      *zap.SugaredLogger

	// UploadsDir is served under /uploads when set.
	UploadsDir string
	// AuthRPS and AuthBurst size the per-IP bucket on /api/auth.
	AuthRPS   float64
	AuthBurst int
	// TrustProxy lets X-Forwarded-For and X-Real-IP replace the peer
	// address. Without it the limiter keys on the connection itself.
	TrustProxy bool
	// AccessLog enables chi's request logger.
	AccessLog bool
}

func NewRouter(cfg RouterConfig) http.Handler {
	authH := NewAuthHandler(cfg.Accounts, cfg.Log)
	userH := NewUserHandler(cfg.Accounts, cfg.Ledger, cfg.Log)
	entryH := NewEntryHandler(cfg.Ledger, cfg.Log)
	adminH := NewAdminHandler(cfg.Admin, cfg.Log)

	requireAuth := mW.RequireAuth(cfg.Tokens)

	r := chi.NewRouter()

	r.Use(mW.SecurityHeaders)
	if cfg.AccessLog {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	if cfg.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Timeout(RequestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler())
	}

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	if cfg.UploadsDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", mW.StaticFileServer(cfg.UploadsDir)))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			if cfg.AuthRPS > 0 {
				r.Use(mW.NewIPRateLimiter(cfg.AuthRPS, cfg.AuthBurst).Handler)
			}
			r.Post("/register", authH.Register)
			r.Post("/login", authH.Login)
			r.Post("/verify", authH.Verify)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me", authH.Me)
				r.Post("/logout", authH.Logout)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/top-contributors", userH.TopContributors)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me", userH.Me)
				r.Put("/profile", userH.UpdateProfile)
			})
		})

		r.Route("/carbon-entries", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", entryH.Create)
			r.Get("/user", entryH.ListMine)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(mW.RequireAdmin(cfg.Accounts))
			r.Get("/users", adminH.ListUsers)
			r.Get("/dashboard", adminH.Dashboard)
		})
	})

	return r
}
