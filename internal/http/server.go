// Package http exposes the query engine over a JSON API. The server is
// a thin shell: handlers parse and validate input, call the engine, and
// map error kinds to status codes. No aggregation or filtering logic
// lives here.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"finsights/internal/ai"
	"finsights/internal/cache"
	"finsights/internal/core"
	"finsights/internal/events"
	"finsights/internal/launch"
	applog "finsights/internal/log"
	"finsights/internal/query"
)

// Store is the read surface the handlers need from the storage layer.
type Store interface {
	Fetch(ctx context.Context, limit int) ([]core.Transaction, error)
	FetchFiltered(ctx context.Context, spec query.Spec) ([]core.Transaction, error)
}

// Request defaults and caps for the API surface.
const (
	defaultListLimit   = 10
	defaultFilterLimit = 50
	defaultReportLimit = 200
	questionFetchLimit = 200

	// insightsWindow is the sample the insights endpoint aggregates
	// over. The store caps every read at core.MaxFetchLimit, so the
	// window is the widest bounded sample available.
	insightsWindow = core.MaxFetchLimit
)

// AI response cache sizing. Prompts are deterministic for identical
// requests, so short-lived reuse is safe; engine results themselves
// are never cached.
const (
	aiCacheSize = 100
	aiCacheTTL  = 5 * time.Minute
)

type Server struct {
	http.Server

	store     Store
	generator ai.TextGenerator
	seq       *launch.Sequencer
	pub       *events.Publisher
	logger    *applog.Logger

	storeTimeout time.Duration
	rateLimiter  *rateLimiter
	aiCache      *cache.ResponseCache

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server. pub may be nil; publishing is then skipped.
func NewServer(addr string, store Store, generator ai.TextGenerator, seq *launch.Sequencer, pub *events.Publisher, storeTimeout time.Duration, logger *applog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		store:            store,
		generator:        generator,
		seq:              seq,
		pub:              pub,
		logger:           logger.WithComponent(applog.ComponentHTTP),
		storeTimeout:     storeTimeout,
		rateLimiter:      newRateLimiter(),
		aiCache:          cache.NewResponseCache(aiCacheSize, aiCacheTTL),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("/", s.withMiddleware(s.handleRoot))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/transactions", s.withMiddleware(s.handleTransactions))
	mux.HandleFunc("/transactions/filter", s.withMiddleware(s.handleTransactionsFilter))
	mux.HandleFunc("/insights", s.withMiddleware(s.handleInsights))
	mux.HandleFunc("/ai/report", s.withMiddleware(s.handleAIReport))
	mux.HandleFunc("/ai/question", s.withMiddleware(s.handleAIQuestion))
	mux.HandleFunc("/launch/state", s.withMiddleware(s.handleLaunchState))
	mux.HandleFunc("/launch/ui-up", s.withMiddleware(s.handleUIUp))

	return s
}

// startCacheCleanup runs periodic cleanup for the AI response cache.
func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cleaned := s.aiCache.CleanExpired(); cleaned > 0 {
				s.logger.InfoContext(context.Background(), "AI cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withMiddleware adds request-id tracing, security and CORS headers,
// rate limiting, and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Extract client IP (considering proxies)
		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		s.logger.InfoContext(ctx, "Request started",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP)

		// Provider calls are the expensive path, so only POSTs are
		// rate limited.
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			s.logger.ErrorContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		// The dashboard is served from a separate origin.
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		s.logger.InfoContext(ctx, "Request completed",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, duration.Milliseconds(),
			applog.FieldClientIP, clientIP)
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
