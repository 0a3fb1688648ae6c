package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"produce-lookup-api/internal/handler"
	"produce-lookup-api/internal/middleware"
	"produce-lookup-api/pkg/response"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler             *handler.Handler
	ProduceHandler      *handler.ProduceHandler
	AdminHandler        *handler.AdminHandler
	AdminProduceHandler *handler.AdminProduceHandler
	RouteTokenGate      func(http.Handler) http.Handler
	SessionAuth         func(http.Handler) http.Handler
	PhotoDir            string
	Logger              *zap.SugaredLogger
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", middleware.SessionTokenHeader},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// PUBLIC routes (no auth required)
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		response.OK(w, map[string]string{
			"service": "produce-lookup-api",
			"docs":    "/api/v1/produce",
		})
	})

	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}

	// Locally stored photos are served directly. With S3 storage the
	// photo URLs point at the bucket and this mount goes unused.
	if cfg.PhotoDir != "" {
		fileServer := http.FileServer(http.Dir(cfg.PhotoDir))
		r.Handle("/photos/*", http.StripPrefix("/photos/", fileServer))
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Handler != nil {
			r.Get("/health", cfg.Handler.Health)
			r.Get("/ready", cfg.Handler.Ready)
		}

		if cfg.ProduceHandler != nil {
			r.Route("/produce", func(r chi.Router) {
				r.Get("/", cfg.ProduceHandler.List)
				r.Get("/search", cfg.ProduceHandler.Search)
				r.Get("/count", cfg.ProduceHandler.Count)
				r.Get("/{id}", cfg.ProduceHandler.Get)
			})
		}
	})

	// ADMIN routes: the dashboard hides behind an unguessable route
	// token, then a passcode session guards everything except login.
	r.Route("/admin/{routeToken}", func(r chi.Router) {
		if cfg.RouteTokenGate != nil {
			r.Use(cfg.RouteTokenGate)
		}

		r.Route("/api", func(r chi.Router) {
			if cfg.AdminHandler != nil {
				r.Post("/login", cfg.AdminHandler.Login)
			}

			r.Group(func(r chi.Router) {
				if cfg.SessionAuth != nil {
					r.Use(cfg.SessionAuth)
				}

				if cfg.AdminHandler != nil {
					r.Post("/logout", cfg.AdminHandler.Logout)
					r.Get("/session", cfg.AdminHandler.Session)
					r.Get("/stats", cfg.AdminHandler.Stats)
				}

				if cfg.AdminProduceHandler != nil {
					r.Route("/produce", func(r chi.Router) {
						r.Post("/", cfg.AdminProduceHandler.Create)
						r.Post("/import", cfg.AdminProduceHandler.ImportCSV)
						r.Get("/export", cfg.AdminProduceHandler.ExportCSV)
						r.Put("/{id}", cfg.AdminProduceHandler.Update)
						r.Delete("/{id}", cfg.AdminProduceHandler.Delete)
					})
				}
			})
		})
	})

	return r
}
