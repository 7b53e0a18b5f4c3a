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

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/wakti/wakti-nlp/internal/cache"
	"github.com/wakti/wakti-nlp/internal/config"
	"github.com/wakti/wakti-nlp/internal/features"
	"github.com/wakti/wakti-nlp/internal/fetch"
	"github.com/wakti/wakti-nlp/internal/intent"
	"github.com/wakti/wakti-nlp/internal/metrics"
	"github.com/wakti/wakti-nlp/internal/schemas"
	"github.com/wakti/wakti-nlp/internal/server/middleware"
	"github.com/wakti/wakti-nlp/internal/server/ratelimit"
)

// shutdownTimeout bounds how long Start waits for in-flight requests.
const shutdownTimeout = 30 * time.Second

// Pinger is implemented by dependencies that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options wires the server's dependencies. Only Config is required to be
// meaningful; nil detectors and analyzers fall back to the built-in catalogs.
type Options struct {
	Config   *config.Config
	Logger   *zap.Logger
	Detector *intent.Detector
	Analyzer *features.Analyzer
	Cache    cache.Cache
	Metrics  *metrics.Metrics
	// Store and JWT enable the wizard endpoints when both are set.
	Store   WizardStore
	JWT     *JWTService
	Fetcher *fetch.CachedFetcher
}

// Server represents the HTTP server
type Server struct {
	cfg         *config.Config
	logger      *zap.Logger
	detector    *intent.Detector
	analyzer    *features.Analyzer
	cache       cache.Cache
	metrics     *metrics.Metrics
	store       WizardStore
	jwtService  *JWTService
	fetcher     *fetch.CachedFetcher
	rateLimiter *ratelimit.Limiter
	validate    *validator.Validate
	handler     http.Handler
}

// New creates a new server instance
func New(opts Options) *Server {
	s := &Server{
		cfg:        opts.Config,
		logger:     opts.Logger,
		detector:   opts.Detector,
		analyzer:   opts.Analyzer,
		cache:      opts.Cache,
		metrics:    opts.Metrics,
		store:      opts.Store,
		jwtService: opts.JWT,
		fetcher:    opts.Fetcher,
		validate:   newValidator(),
	}
	if s.cfg == nil {
		s.cfg = config.Default()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.detector == nil {
		s.detector = intent.NewDetector(intent.DefaultCatalog())
	}
	if s.analyzer == nil {
		s.analyzer = features.NewAnalyzer(features.DefaultCatalog())
	}
	if s.cache == nil {
		s.cache = cache.Nop{}
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	if s.fetcher == nil {
		fetchOpts := fetch.DefaultOptions()
		fetchOpts.Timeout = s.cfg.Fetch.Timeout
		s.fetcher = fetch.NewCachedFetcher(s.cache, &fetch.CachedFetcherConfig{
			Options: fetchOpts,
			Logger:  s.logger,
		})
	}

	s.rateLimiter = ratelimit.NewLimiter(ratelimit.FromConfig(s.cfg.RateLimit))

	mux := http.NewServeMux()
	s.routes(mux)

	s.handler = middleware.RequestID(
		middleware.AccessLog(s.logger)(
			middleware.CORS(s.cfg.Server.AllowedOrigins)(
				s.withRateLimit(mux),
			),
		),
	)

	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.Handle("GET /metrics", s.metrics.Handler())
	s.handle(mux, "GET /health", s.handleHealth)

	// Result classification
	s.handle(mux, "POST /v1/results/classify", s.handleClassify)
	s.handle(mux, "POST /v1/results/classify/batch", s.handleClassifyBatch)
	s.handle(mux, "POST /v1/results/classify-url", s.handleClassifyURL)

	// Intent detection
	s.handle(mux, "POST /v1/intents/detect", s.handleDetectIntent)
	s.handle(mux, "POST /v1/intents/detect-multiple", s.handleDetectIntents)

	// Feature analysis
	s.handle(mux, "POST /v1/requests/analyze", s.handleAnalyze)
	s.handle(mux, "POST /v1/requests/summary", s.handleSummary)

	// Wizard sessions, scoped to the authenticated user
	s.handleAuth(mux, "POST /v1/wizard/sessions", s.handleCreateWizardSession)
	s.handleAuth(mux, "GET /v1/wizard/sessions", s.handleListWizardSessions)
	s.handleAuth(mux, "GET /v1/wizard/sessions/{id}", s.handleGetWizardSession)
	s.handleAuth(mux, "POST /v1/wizard/sessions/{id}/configs", s.handleSaveWizardConfig)
	s.handleAuth(mux, "GET /v1/wizard/sessions/{id}/prompt", s.handleWizardPrompt)
	s.handleAuth(mux, "DELETE /v1/wizard/sessions/{id}", s.handleDeleteWizardSession)
}

// handle registers h and records its latency under the route pattern.
func (s *Server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.Handle(pattern, s.instrument(pattern, h))
}

// handleAuth registers h behind bearer authentication.
func (s *Server) handleAuth(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	var protected http.Handler
	if s.wizardEnabled() {
		protected = middleware.AuthMiddleware(s.jwtService.AsTokenValidator())(h)
	} else {
		protected = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			s.writeError(w, ErrWizardDisabled)
		})
	}
	mux.Handle(pattern, s.instrument(pattern, protected))
}

func (s *Server) instrument(pattern string, next http.Handler) http.Handler {
	method, route := splitPattern(pattern)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := middleware.NewStatusRecorder(w)
		next.ServeHTTP(rec, r)
		s.metrics.ObserveRequest(method, route, rec.Status, time.Since(start))
	})
}

func splitPattern(pattern string) (method, route string) {
	for i := 0; i < len(pattern); i++ {
		if pattern[i] == ' ' {
			return pattern[:i], pattern[i+1:]
		}
	}
	return "", pattern
}

func (s *Server) wizardEnabled() bool {
	return s.store != nil && s.jwtService != nil
}

// Handler returns the root handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves on the configured port until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:      s.handler,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", httpServer.Addr), zap.Bool("wizard", s.wizardEnabled()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.rateLimiter.Stop()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := httpServer.Shutdown(shutdownCtx)
	s.rateLimiter.Stop()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	s.rateLimiter.Stop()
}

// handleHealth reports the server and its optional dependencies.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{
		"database": check(ctx, s.store),
		"cache":    check(ctx, s.cache),
	}

	status, code := "ok", http.StatusOK
	for _, c := range checks {
		if c == "error" {
			status, code = "degraded", http.StatusServiceUnavailable
		}
	}

	s.jsonResponse(w, code, map[string]any{"status": status, "checks": checks})
}

func check(ctx context.Context, dep any) string {
	if dep == nil {
		return "disabled"
	}
	p, ok := dep.(Pinger)
	if !ok {
		return "disabled"
	}
	if err := p.Ping(ctx); err != nil {
		return "error"
	}
	return "ok"
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

// textResponse writes a rendered document.
func (s *Server) textResponse(w http.ResponseWriter, contentType, body string) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps err to a status. Internal errors are logged and hidden from the client.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
		s.errorResponse(w, status, "internal server error")
		return
	}

	var schemaErr *schemas.ValidationError
	if errors.As(err, &schemaErr) {
		s.jsonResponse(w, status, map[string]any{
			"error":   "validation failed",
			"details": schemaErr.Errors,
		})
		return
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		details := make([]schemas.FieldError, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			details = append(details, schemas.FieldError{
				Field:   fe.Namespace(),
				Message: fmt.Sprintf("failed %q validation", fe.Tag()),
			})
		}
		s.jsonResponse(w, status, map[string]any{
			"error":   "validation failed",
			"details": details,
		})
		return
	}

	s.errorResponse(w, status, err.Error())
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(extractClientID(r), r.URL.Path, r.Method)

		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// extractClientID uses the IP address from RemoteAddr.
func extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds())
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.logger.Debug("rate limit exceeded",
		zap.Int("limit", info.Limit),
		zap.Time("reset_at", info.ResetTime))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
