// Package server provides the HTTP API for the recipe recommender.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/hyperjump/ryori/internal/config"
	"github.com/hyperjump/ryori/internal/recommend"
	"github.com/hyperjump/ryori/pkg/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server is the HTTP server for the recommendation API.
type Server struct {
	service  *recommend.Service
	config   *config.Config
	version  string
	logger   *zap.Logger
	validate *validator.Validate
	server   *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(service *recommend.Service, cfg *config.Config, version string, logger *zap.Logger) *Server {
	logger = utils.OrNop(logger)
	return &Server{
		service:  service,
		config:   cfg,
		version:  version,
		logger:   logger,
		validate: validator.New(),
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.Server.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleWelcome)
	r.With(s.rateLimit()).Post("/recommend", s.handleRecommend)
	r.Route("/api/v1", func(r chi.Router) {
		r.With(s.rateLimit()).Post("/recommend", s.handleRecommend)
		r.Get("/items/{name}", s.handleGetItem)
		r.Get("/items/{name}/chart.png", s.handleItemChart)
		r.Get("/status", s.handleStatus)
	})
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// rateLimit limits recommendation requests per client IP. A zero limit disables it.
func (s *Server) rateLimit() func(http.Handler) http.Handler {
	limit := s.config.Server.RateLimitPerMinute
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(limit, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			s.respondError(w, http.StatusTooManyRequests, "too many requests")
		}),
	)
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
