// Package api is the thin HTTP surface in front of the assistant. It owns
// session ids and the caller-side stores; the assistant stays stateless.
package api

import (
	"context"
	"net/http"
	"time"

	"workflowx/src/assistant"
	"workflowx/src/conversation"
	"workflowx/src/logger"
	"workflowx/src/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Assistant is the one call the surface needs
type Assistant interface {
	HandleMessage(ctx context.Context, text string, dialogCtx map[string]any, opts ...assistant.CallOption) (assistant.Reply, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	assistant Assistant
	dialogs   storage.DialogStore
	history   *conversation.Service
	redis     Pinger
	origins   []string
}

type Option func(*Server)

func WithDialogStore(s storage.DialogStore) Option {
	return func(srv *Server) { srv.dialogs = s }
}

// WithHistory enables chat history for general conversation replies
func WithHistory(h *conversation.Service) Option {
	return func(srv *Server) { srv.history = h }
}

// WithRedis reports the Redis connection in /healthz
func WithRedis(p Pinger) Option {
	return func(srv *Server) { srv.redis = p }
}

func WithAllowedOrigins(origins []string) Option {
	return func(srv *Server) { srv.origins = origins }
}

func NewServer(a Assistant, opts ...Option) *Server {
	s := &Server{assistant: a, origins: []string{"*"}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Post("/chat", s.handleChat)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Str("request_id", middleware.GetReqID(r.Context())).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}
