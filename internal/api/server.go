package api

import (
	"context"
	_ "embed"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/edvin/keyhub/internal/api/handler"
	mw "github.com/edvin/keyhub/internal/api/middleware"
	"github.com/edvin/keyhub/internal/config"
	"github.com/edvin/keyhub/internal/core"
	"github.com/edvin/keyhub/internal/github"
)

//go:embed docs/openapi.json
var openapiJSON []byte

type Server struct {
	router   chi.Router
	logger   zerolog.Logger
	services *core.Services
	pool     *pgxpool.Pool
	cfg      *config.Config
	plans    []config.Plan
}

// NewServer builds the HTTP API. pool may be nil when no backing store is
// configured; the key endpoints then answer 503.
func NewServer(logger zerolog.Logger, pool *pgxpool.Pool, services *core.Services, cfg *config.Config, plans []config.Plan) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		logger:   logger,
		services: services,
		pool:     pool,
		cfg:      cfg,
		plans:    plans,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(chimw.Recoverer)
	s.router.Use(mw.Metrics)
	s.router.Use(mw.CORS(s.cfg.CORSOrigins))
}

func (s *Server) setupRoutes() {
	// Prometheus metrics
	s.router.Handle("/metrics", promhttp.Handler())

	// Health checks
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	// OpenAPI document and docs UI (public, no auth)
	s.router.Route("/docs", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(scalarHTML))
		})
		r.Get("/openapi.json", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write(openapiJSON)
		})
	})

	// OAuth login (no session required)
	oidc := handler.NewOIDC(s.services.OIDC, s.cfg.OAuthCallbackURL)
	s.router.Route("/auth/oidc", func(r chi.Router) {
		r.Get("/providers", oidc.ListProviders)
		r.Get("/authorize", oidc.Authorize)
		r.Get("/callback", oidc.Callback)
	})

	// Public key validation
	validate := handler.NewValidate(s.services.APIKey)
	s.router.Post("/validate-key", validate.Post)

	// README summarization, authenticated by issued API key
	fetcher := github.NewFetcher(s.cfg.GitHubRawBaseURL)
	summarize := handler.NewSummarize(s.services.APIKey, fetcher, s.services.Summarizer)
	s.router.Post("/summarize", summarize.Post)

	// Dashboard API, JWT session required
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Auth(s.services.Auth))

		me := handler.NewMe(s.services.User)
		r.Get("/me", me.Get)

		plans := handler.NewPlans(s.plans)
		r.Get("/plans", plans.List)

		apiKey := handler.NewAPIKey(s.services.APIKey)
		r.Get("/keys", apiKey.List)
		r.Post("/keys", apiKey.Create)
		r.Put("/keys/{id}", apiKey.Update)
		r.Delete("/keys/{id}", apiKey.Delete)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if s.pool == nil {
		checks["db"] = "not configured"
		healthy = false
	} else if err := s.pool.Ping(ctx); err != nil {
		checks["db"] = err.Error()
		healthy = false
	} else {
		checks["db"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

const scalarHTML = `<!DOCTYPE html>
<html>
<head>
  <title>Keyhub API</title>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
</head>
<body>
  <script id="api-reference" data-url="/docs/openapi.json"></script>
  <script src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"></script>
</body>
</html>`
