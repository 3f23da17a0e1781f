// Package server provides the HTTP API behind the tender dashboard.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jonathan/tender-intel/internal/dashboard"
	"github.com/jonathan/tender-intel/internal/fetch"
	"github.com/jonathan/tender-intel/internal/metrics"
	"github.com/jonathan/tender-intel/internal/server/middleware"
	"github.com/jonathan/tender-intel/internal/server/ratelimit"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// PayloadSource supplies the current tender payload. force bypasses the cache.
type PayloadSource interface {
	Load(ctx context.Context, force bool) *fetch.LoadResult
}

// Config holds server configuration
type Config struct {
	Port            int
	StaticDir       string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	HideOutOfScope bool
	ScoreMissing   bool
	Concurrency    int
	RunHour        int
	Location       *time.Location
	// BuildSHA overrides meta.build_sha in summaries.
	BuildSHA string

	RateLimit ratelimit.Config
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	source     PayloadSource
	limiter    *ratelimit.Limiter
	log        *zap.Logger
	cfg        Config
	now        func() time.Time
}

// New creates a new server instance
func New(cfg Config, source PayloadSource, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.FixedZone("SAST", 2*60*60)
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = dashboard.DefaultConcurrency
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		source:  source,
		limiter: ratelimit.NewLimiter(cfg.RateLimit),
		log:     log,
		cfg:     cfg,
		now:     time.Now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/tenders", s.handleTenders)
	mux.HandleFunc("GET /api/tenders/rows", s.handleRows)
	mux.HandleFunc("GET /api/tenders/{ref}", s.handleTender)
	mux.HandleFunc("GET /api/tenders/{ref}/score", s.handleTenderScore)
	mux.HandleFunc("GET /api/calendar", s.handleCalendar)
	mux.HandleFunc("GET /api/calendar/{date}", s.handleCalendarDay)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/weekly", s.handleWeekly)
	mux.HandleFunc("GET /api/scrapers", s.handleScrapers)
	mux.HandleFunc("GET /api/export/email", s.handleEmailExport)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)

	if cfg.StaticDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withCORS(middleware.RequestID(s.withLogging(s.withRateLimit(s.withMetrics(mux))))),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run listens on the configured port until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", zap.String("addr", ln.Addr().String()))
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.limiter.Stop()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.limiter.Stop()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	<-errCh
	s.log.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+middleware.RequestIDHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := middleware.NewStatusWriter(w)
		next.ServeHTTP(sw, r)

		s.log.Info("request",
			zap.String("request_id", middleware.GetRequestID(r)),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.Status),
			zap.Int("bytes", sw.Bytes),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote", r.RemoteAddr),
		)
	})
}

// withMetrics records request durations by route pattern. It must wrap the
// mux directly so the matched pattern is visible afterwards.
func (s *Server) withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := middleware.NewStatusWriter(w)
		next.ServeHTTP(sw, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestDuration.
			WithLabelValues(route, r.Method, strconv.Itoa(sw.Status)).
			Observe(time.Since(start).Seconds())
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.limiter.Allow(clientID(r), r.URL.Path, r.Method)
		if info.Limit > 0 {
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
		}
		if !allowed {
			metrics.RateLimitedRequests.WithLabelValues(info.Scope).Inc()
			retry := int(info.RetryAfter.Round(time.Second) / time.Second)
			if retry < 1 {
				retry = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			s.log.Warn("rate limit exceeded",
				zap.String("request_id", middleware.GetRequestID(r)),
				zap.String("path", r.URL.Path),
				zap.Int("limit", info.Limit))
			s.errorFor(w, &ErrRateLimited{Path: r.URL.Path})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientID is the remote IP, or the whole RemoteAddr when it has no port.
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("error encoding JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// errorFor maps err to its status code and writes it.
func (s *Server) errorFor(w http.ResponseWriter, err error) {
	s.errorResponse(w, HTTPStatus(err), err.Error())
}
