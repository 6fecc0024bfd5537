package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const requestTimeout = 60 * time.Second

// NewRouter creates a new chi router with all endpoints and middleware
func NewRouter(a AnalyzerService, store Store, d Discoverer) http.Handler {
	h := &Handler{analyzer: a, store: store, discoverer: d}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Compress(5))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Heartbeat("/ping"))

	// CORS for the browser extension
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-CSRF-Token")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.handleHealth)
		r.Post("/analyze-policy", h.handleAnalyzePolicy)
		r.Post("/discover-policy", h.handleDiscoverPolicy)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/rules", h.handleGetRules)
			r.Put("/rules", h.handlePutRules)
			r.Get("/violations", h.handleGetViolations)
		})
	})

	return r
}
