// Package api serves the public route table over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/waypoint/internal/routing"
	"github.com/okian/waypoint/pkg/logger"
)

// Server wires the dispatcher and its middleware chain.
type Server struct {
	dispatcher     *Dispatcher
	logger         logger.Logger
	rateLimitRPS   float64
	rateLimitBurst int
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAppendSlash toggles the redirect from "foo" to "foo/".
func WithAppendSlash(enabled bool) Option {
	return func(s *Server) {
		s.dispatcher.appendSlash = enabled
	}
}

// WithRateLimit enables per-client rate limiting. rps <= 0 disables it.
// A burst below one is raised to one.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		s.rateLimitRPS = rps
		s.rateLimitBurst = max(burst, 1)
	}
}

// NewServer creates a server dispatching through resolver.
func NewServer(resolver routing.Resolver, opts ...Option) *Server {
	s := &Server{
		dispatcher: &Dispatcher{resolver: resolver, appendSlash: true},
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.dispatcher.logger = s.logger
	return s
}

// Handler returns the dispatcher wrapped in the middleware chain. ctx bounds
// background work such as rate limiter eviction.
func (s *Server) Handler(ctx context.Context) http.Handler {
	var h http.Handler = s.dispatcher
	if s.rateLimitRPS > 0 {
		h = RateLimit(ctx, s.rateLimitRPS, s.rateLimitBurst)(h)
	}
	h = MetricsMiddleware(h)
	h = AccessLog(s.logger)(h)
	h = RequestID(h)
	return h
}

// Register attaches the public handler to mux at the root.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/", s.Handler(ctx))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a JSON error body. err supplies the message, falling
// back to the status text.
func WriteError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	WriteJSON(w, status, errorResponse{Code: code, Message: msg})
}

// MethodNotAllowed writes a 405 listing the allowed methods.
func MethodNotAllowed(w http.ResponseWriter, allowed ...string) {
	for _, m := range allowed {
		w.Header().Add("Allow", m)
	}
	WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
}
