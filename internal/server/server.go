// Package server provides the JSON HTTP API over résumé sessions.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jonathan/ats-optimizer/internal/config"
	"github.com/jonathan/ats-optimizer/internal/db"
	"github.com/jonathan/ats-optimizer/internal/extract"
	"github.com/jonathan/ats-optimizer/internal/fetch"
	"github.com/jonathan/ats-optimizer/internal/server/middleware"
	"github.com/jonathan/ats-optimizer/internal/server/ratelimit"
	"github.com/jonathan/ats-optimizer/internal/session"
)

// Config holds server configuration and collaborators.
type Config struct {
	Settings  config.ServerConfig
	Namespace string
	Sessions  *session.Manager
	Jobs      fetch.JobFetcher
	Extractor *extract.Extractor
	// JWT enables bearer authentication; each user gets its own session.
	// Without it every request shares the base namespace.
	JWT     *JWTService
	Limiter *ratelimit.Limiter
	Logger  *zap.Logger
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	router      chi.Router
	sessions    *session.Manager
	jobs        fetch.JobFetcher
	extractor   *extract.Extractor
	jwtService  *JWTService
	rateLimiter *ratelimit.Limiter
	validate    *validator.Validate
	namespace   string
	logger      *zap.Logger
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Sessions == nil {
		return nil, errors.New("session manager is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = db.DefaultNamespace
	}
	extractor := cfg.Extractor
	if extractor == nil {
		extractor = extract.NewExtractor(logger)
	}
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = ratelimit.NewLimiter(ratelimit.LoadConfig(cfg.Settings.RateLimit))
	}

	s := &Server{
		sessions:    cfg.Sessions,
		jobs:        cfg.Jobs,
		extractor:   extractor,
		jwtService:  cfg.JWT,
		rateLimiter: limiter,
		validate:    validator.New(),
		namespace:   namespace,
		logger:      logger,
	}
	s.router = s.routes(cfg.Settings.AllowedOrigins)

	port := cfg.Settings.Port
	if port == 0 {
		port = 8080
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // whole-set revisions can take minutes
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(allowedOrigins []string) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(allowedOrigins))

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.jwtService != nil {
			r.Use(middleware.AuthMiddleware(s.jwtService.AsTokenValidator()))
		}

		r.Group(func(r chi.Router) {
			r.Use(s.withRateLimit(ratelimit.CostDefault))
			r.Get("/session", s.handleGetSession)
			r.Delete("/session", s.handleResetSession)
			r.Put("/session/step", s.handleSetStep)
			r.Put("/sections/{id}", s.handleEditSection)
			r.Get("/sections/{id}/proposal", s.handleGetProposal)
			r.Post("/sections/{id}/proposal/apply", s.handleApplyProposal)
			r.Delete("/sections/{id}/proposal", s.handleDiscardProposal)
			r.Post("/tailor/apply", s.handleApplyTailoring)
			r.Delete("/tailor", s.handleDiscardTailoring)
			r.Get("/export/{format}", s.handleExport)
		})

		// Routes that call the content service.
		r.Group(func(r chi.Router) {
			r.Use(s.withRateLimit(ratelimit.CostAnalysis))
			r.Post("/resume", s.handleUploadResume)
			r.Post("/sections/{id}/improve", s.handleImproveSection)
			r.Post("/sections/revise", s.handleReviseAll)
			r.Post("/tailor", s.handleTailor)
		})
	})
	return r
}

// Handler returns the HTTP handler of the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves requests until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.rateLimiter.Stop()
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.rateLimiter.Stop()
	s.logger.Info("server stopped")
	return nil
}

// session returns the session of the caller. Authenticated users each get a
// namespace below the base namespace.
func (s *Server) session(r *http.Request) *session.Session {
	namespace := s.namespace
	if s.jwtService != nil {
		if userID, err := middleware.GetUserID(r); err == nil {
			namespace = s.namespace + "/" + userID.String()
		}
	}
	return s.sessions.Get(r.Context(), namespace)
}

// withRateLimit charges cost tokens per request to the caller's bucket.
func (s *Server) withRateLimit(cost int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, info := s.rateLimiter.Allow(s.extractClientID(r), cost)
			s.setRateLimitHeaders(w, info)
			if !allowed {
				s.rateLimitResponse(w, info)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractClientID identifies the caller: the authenticated user when there is
// one, otherwise the remote IP (already resolved by RealIP).
func (s *Server) extractClientID(r *http.Request) string {
	if userID, err := middleware.GetUserID(r); err == nil {
		return "user:" + userID.String()
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		seconds := int((info.RetryAfter + time.Second - 1) / time.Second)
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	s.logger.Warn("rate limit exceeded",
		zap.Int("limit", info.Limit),
		zap.Duration("retry_after", info.RetryAfter))
	s.jsonResponse(w, http.StatusTooManyRequests, response)
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// fail maps err to a status code and writes it.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
	}
	s.errorResponse(w, status, err.Error())
}
