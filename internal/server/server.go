// Package server provides the HTTP API for the interview assistant.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/interview-assistant/internal/analysis"
	"github.com/jonathan/interview-assistant/internal/config"
	"github.com/jonathan/interview-assistant/internal/db"
	"github.com/jonathan/interview-assistant/internal/feedback"
	"github.com/jonathan/interview-assistant/internal/llm"
	"github.com/jonathan/interview-assistant/internal/questions"
	"github.com/jonathan/interview-assistant/internal/server/middleware"
	"github.com/jonathan/interview-assistant/internal/server/ratelimit"
)

// Options holds the HTTP-level settings of the server
type Options struct {
	Port           int
	FrontendURL    string
	UploadDir      string
	MaxUploadBytes int64
}

// Deps are the collaborators the handlers call into
type Deps struct {
	Store     db.Store
	Analyzer  *analysis.Analyzer
	Questions *questions.Generator
	Feedback  *feedback.Generator
	JWT       *JWTService
	OAuth     *GoogleAuth // nil disables Google login
	Limiter   *ratelimit.Limiter
	LLM       llm.Client // closed with the server when set
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	opts        Options
	store       db.Store
	analyzer    *analysis.Analyzer
	questions   *questions.Generator
	feedback    *feedback.Generator
	jwtService  *JWTService
	oauth       *GoogleAuth
	rateLimiter *ratelimit.Limiter
	llmClient   llm.Client
}

// Build wires a Server from configuration: it opens the store, creates the
// LLM client when a key is present and sets up Google login when configured.
func Build(ctx context.Context, cfg *config.Config) (*Server, error) {
	if err := cfg.ValidateServe(); err != nil {
		return nil, err
	}
	jwtConfig, err := cfg.JWT()
	if err != nil {
		return nil, err
	}

	store, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	client, err := llm.NewClient(ctx, cfg.LLM(), cfg.GeminiAPIKey)
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		slog.Warn("GEMINI_API_KEY is not set; resume extraction uses keyword matching only and question generation is disabled")
	case err != nil:
		_ = store.Close()
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	var oauth *GoogleAuth
	if cfg.OAuthConfigured() {
		oauth = NewGoogleAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI)
	} else {
		slog.Warn("Google OAuth credentials are not set; login is disabled")
	}

	policy := cfg.RetryPolicy()
	return New(Options{
		Port:           cfg.Port,
		FrontendURL:    cfg.FrontendURL,
		UploadDir:      cfg.UploadDir,
		MaxUploadBytes: cfg.MaxUploadBytes(),
	}, Deps{
		Store:     store,
		Analyzer:  analysis.NewAnalyzer(analysis.NewExtractor(client, policy)),
		Questions: questions.NewGenerator(client, policy),
		Feedback:  feedback.NewGenerator(client, policy, cfg.FeedbackPolicy()),
		JWT:       NewJWTService(jwtConfig),
		OAuth:     oauth,
		Limiter:   ratelimit.NewLimiter(ratelimit.LoadConfig()),
		LLM:       client,
	}), nil
}

// New creates a server instance from already-built collaborators
func New(opts Options, deps Deps) *Server {
	s := &Server{
		opts:        opts,
		store:       deps.Store,
		analyzer:    deps.Analyzer,
		questions:   deps.Questions,
		feedback:    deps.Feedback,
		jwtService:  deps.JWT,
		oauth:       deps.OAuth,
		rateLimiter: deps.Limiter,
		llmClient:   deps.LLM,
	}
	if s.analyzer == nil {
		s.analyzer = analysis.NewAnalyzer(nil)
	}
	if s.rateLimiter == nil {
		s.rateLimiter = ratelimit.NewLimiter(&ratelimit.Config{Enabled: false})
	}

	auth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	protected := func(h http.HandlerFunc) http.Handler {
		return auth(h)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)

	// Interview flow
	mux.Handle("POST /api/upload-resume", protected(s.handleUploadResume))
	mux.Handle("POST /api/generate-questions", protected(s.handleGenerateQuestions))
	mux.Handle("POST /api/submit-answer", protected(s.handleSubmitAnswer))
	mux.Handle("POST /api/complete-interview", protected(s.handleCompleteInterview))

	// Account and history
	mux.Handle("GET /api/user-info", protected(s.handleUserInfo))
	mux.Handle("GET /api/sessions", protected(s.handleListSessions))
	mux.Handle("GET /api/sessions/{id}", protected(s.handleGetSession))

	// Google login
	mux.HandleFunc("GET /auth/google", s.handleGoogleLogin)
	mux.HandleFunc("GET /auth/google/callback", s.handleGoogleCallback)
	mux.HandleFunc("GET /logout", s.handleLogout)

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // question generation retries can take a while
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "addr", s.httpServer.Addr, "frontend_url", s.opts.FrontendURL)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.Close()
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.Close()
	slog.Info("Server stopped")
	return nil
}

// Close releases the limiter, store and LLM client
func (s *Server) Close() {
	s.rateLimiter.Stop()
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			slog.Warn("Failed to close store", "error", err)
		}
	}
	if s.llmClient != nil {
		if err := s.llmClient.Close(); err != nil {
			slog.Warn("Failed to close LLM client", "error", err)
		}
	}
}

// withCORS allows the frontend origin to call the API with credentials
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.FrontendURL != "" {
			w.Header().Set("Access-Control-Allow-Origin", s.opts.FrontendURL)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"client", s.extractClientID(r))
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "Interview Assistant Backend Running",
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Error encoding JSON response", "error", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// errorDetails is the body of generation failures
type errorDetails struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// fail writes err with the status from HTTPStatus and a client-safe message.
func (s *Server) fail(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)

	var genErr *llm.GenerationError
	if errors.As(err, &genErr) {
		slog.Error("Generation failed", "error", err, "status", status)
		s.jsonResponse(w, status, errorDetails{Error: genErr.Message, Details: genErr.Details})
		return
	}

	var validationErr *ErrValidation
	var tooLarge *ErrUploadTooLarge
	switch {
	case errors.As(err, &validationErr):
		s.errorResponse(w, status, validationErr.Error())
	case errors.As(err, &tooLarge):
		s.errorResponse(w, status, "File too large. "+tooLarge.Error())
	case errors.Is(err, db.ErrSessionNotFound):
		s.errorResponse(w, status, "Interview session not found")
	case errors.Is(err, db.ErrSessionCompleted):
		s.errorResponse(w, status, "Interview session is already completed")
	case errors.Is(err, db.ErrInvalidQuestionIndex):
		s.errorResponse(w, status, "Invalid question index")
	default:
		slog.Error("Request failed", "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "Internal server error")
	}
}

// extractClientID extracts the client identifier from the request.
// X-Forwarded-For is not trusted; the remote address is used.
func (s *Server) extractClientID(r *http.Request) string {
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
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Round(time.Second).Seconds())
		if seconds < 1 {
			seconds = 1
		}
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	slog.Warn("Rate limit exceeded", "limit", info.Limit, "remaining", info.Remaining, "retry_after", info.RetryAfter)

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}

// userID returns the authenticated user, writing 401 when absent.
func (s *Server) userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	return id, true
}
