// Package api exposes the study session as a small JSON HTTP API.
package api

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"tango/internal/session"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// Dispatcher runs one session action
type Dispatcher interface {
	Dispatch(ctx context.Context, a session.Action) (session.View, error)
}

// Pinger reports whether the database is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Server serves the session over HTTP
type Server struct {
	dispatcher Dispatcher
	db         Pinger
	token      string
	logger     *zap.Logger
}

// NewServer creates a new API server. Every /api request must carry token as
// a bearer credential; an empty token rejects them all. db may be nil, in
// which case the health check only reports the process as up.
func NewServer(dispatcher Dispatcher, db Pinger, token string, logger *zap.Logger) *Server {
	return &Server{
		dispatcher: dispatcher,
		db:         db,
		token:      token,
		logger:     logger,
	}
}

// Routes builds the router with CORS limited to allowedOrigins
func (s *Server) Routes(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(s.logger))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	})
	r.Use(corsHandler.Handler)

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/view", s.handleView)
		r.Post("/actions", s.handleAction)
		r.Get("/export", s.handleExport)
		r.Post("/import", s.handleImport)
	})

	r.Get("/health", s.handleHealth)

	return r
}

// requestLogger logs one line per request with the chi request id
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("Request handled",
				zap.String("req_id", chimiddleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

// authenticate rejects requests without the configured bearer token
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			s.respondJSON(w, http.StatusUnauthorized, errorResponse{Error: ErrorDetail{
				Code:    "UNAUTHORIZED",
				Message: "authorization header required",
			}})
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || s.token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) != 1 {
			s.logger.Warn("Rejected API request",
				zap.String("req_id", chimiddleware.GetReqID(r.Context())),
				zap.String("path", r.URL.Path),
			)
			s.respondJSON(w, http.StatusUnauthorized, errorResponse{Error: ErrorDetail{
				Code:    "UNAUTHORIZED",
				Message: "invalid token",
			}})
			return
		}

		next.ServeHTTP(w, r)
	})
}
