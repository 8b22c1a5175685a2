// Package server exposes the lookup and notice operations over HTTP/JSON.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/siren-cli/internal/model"
	"github.com/sells-group/siren-cli/internal/notice"
	"github.com/sells-group/siren-cli/pkg/sirene"
)

// CompanyService is the lookup contract the handlers depend on.
type CompanyService interface {
	GetCompanyData(ctx context.Context, raw string) (*model.CompanyRecord, error)
	TestConnection(ctx context.Context, sample string) *sirene.ConnectionResult
	ClearCache(ctx context.Context) (int, error)
	CacheSize(ctx context.Context) (int, error)
	Invalidate(ctx context.Context, raw string) error
}

// Config holds the HTTP surface settings.
type Config struct {
	AllowedOrigins []string
	// TestSIRET is probed by the registry test endpoint when the request
	// does not name one.
	TestSIRET string
}

// Server holds the handler dependencies.
type Server struct {
	svc       CompanyService
	generator *notice.Generator
	cfg       Config
	logger    *zap.Logger
}

// New creates a Server.
func New(svc CompanyService, generator *notice.Generator, cfg Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if generator == nil {
		generator = notice.NewGenerator(logger)
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	return &Server{svc: svc, generator: generator, cfg: cfg, logger: logger}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(s.accessLog)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/companies/{siret}", s.handleGetCompany)
		r.Post("/notices", s.handleNotice)
		r.Post("/registry/test", s.handleRegistryTest)
		r.Get("/cache/count", s.handleCacheCount)
		r.Delete("/cache", s.handleCacheClear)
		r.Delete("/cache/{siret}", s.handleCacheDelete)
	})

	return r
}

const requestIDHeader = "X-Request-ID"

// requestID echoes a caller-supplied X-Request-ID or assigns a new UUID.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
			r.Header.Set(requestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", r.Header.Get(requestIDHeader)),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
