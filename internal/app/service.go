// Package service assembles the route table, the public HTTP server and the
// ops server, and owns their lifecycle.
package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/okian/waypoint/internal/adapters/http/api"
	"github.com/okian/waypoint/internal/adapters/http/health"
	"github.com/okian/waypoint/internal/adapters/http/ops"
	"github.com/okian/waypoint/internal/adapters/http/users"
	"github.com/okian/waypoint/internal/routing"
	"github.com/okian/waypoint/internal/urls"
	"github.com/okian/waypoint/pkg/logger"
	"github.com/okian/waypoint/pkg/metrics"
)

const readHeaderTimeout = 5 * time.Second

// Service serves the root route table.
type Service struct {
	mu sync.Mutex

	// Configuration
	addr           string
	opsAddr        string
	appendSlash    bool
	rateLimitRPS   float64
	rateLimitBurst int
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration
	version        string
	users          routing.Resolver
	logger         logger.Logger

	// Built by New
	table   *routing.Table
	handler http.Handler
	opsMux  *http.ServeMux
	cancel  context.CancelFunc

	// State
	started   bool
	stopped   bool
	public    *http.Server
	opsServer *http.Server
	publicLn  net.Listener
	opsLn     net.Listener
	wg        sync.WaitGroup
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAddr sets the public listen address. ":0" picks a free port.
func WithAddr(addr string) Option {
	return func(s *Service) {
		if addr != "" {
			s.addr = addr
		}
	}
}

// WithOpsAddr sets the ops listen address. Empty disables the ops server.
func WithOpsAddr(addr string) Option {
	return func(s *Service) {
		s.opsAddr = addr
	}
}

// WithAppendSlash toggles trailing-slash redirects.
func WithAppendSlash(enabled bool) Option {
	return func(s *Service) {
		s.appendSlash = enabled
	}
}

// WithRateLimit enables per-client rate limiting. rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Service) {
		s.rateLimitRPS = rps
		s.rateLimitBurst = burst
	}
}

// WithTimeouts sets the HTTP server timeouts. Zero values keep the defaults.
func WithTimeouts(read, write, idle time.Duration) Option {
	return func(s *Service) {
		if read > 0 {
			s.readTimeout = read
		}
		if write > 0 {
			s.writeTimeout = write
		}
		if idle > 0 {
			s.idleTimeout = idle
		}
	}
}

// WithVersion sets the version reported by the health view.
func WithVersion(v string) Option {
	return func(s *Service) {
		s.version = v
	}
}

// WithUsersRouter replaces the router mounted under the api namespace.
func WithUsersRouter(r routing.Resolver) Option {
	return func(s *Service) {
		if r != nil {
			s.users = r
		}
	}
}

// New builds the route table and the handlers serving it.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		addr:           ":8000",
		opsAddr:        ":9091",
		appendSlash:    true,
		rateLimitBurst: 40,
		readTimeout:    10 * time.Second,
		writeTimeout:   10 * time.Second,
		idleTimeout:    60 * time.Second,
		logger:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.users == nil {
		s.users = users.NewRouter()
	}

	table, err := urls.Root(s.users, health.NewHealthHandler(s.version, time.Now()))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildRoutes, err)
	}
	s.table = table

	count := 0
	_ = table.Walk(func(routing.Route) error {
		count++
		return nil
	})
	metrics.UpdateRouteCount(count)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	srv := api.NewServer(table,
		api.WithLogger(s.logger.Named("http")),
		api.WithAppendSlash(s.appendSlash),
		api.WithRateLimit(s.rateLimitRPS, s.rateLimitBurst),
	)
	s.handler = srv.Handler(ctx)

	s.opsMux = http.NewServeMux()
	ops.Register(ctx, s.opsMux, table)

	s.logger.Debug(ctx, "route table built", logger.Int("routes", count))
	return s, nil
}

// Table returns the root route table.
func (s *Service) Table() *routing.Table { return s.table }

// Handler returns the public handler with its middleware chain.
func (s *Service) Handler() http.Handler { return s.handler }

// OpsHandler returns the ops handler.
func (s *Service) OpsHandler() http.Handler { return s.opsMux }

// Start binds the listeners and serves in the background.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}
	if s.stopped {
		return ErrStopped
	}

	publicLn, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrListen, s.addr, err)
	}
	var opsLn net.Listener
	if s.opsAddr != "" {
		opsLn, err = net.Listen("tcp", s.opsAddr)
		if err != nil {
			_ = publicLn.Close()
			return fmt.Errorf("%w %s: %w", ErrListen, s.opsAddr, err)
		}
	}

	s.publicLn = publicLn
	s.public = s.newServer(s.handler)
	s.serve(ctx, "public", s.public, publicLn)

	if opsLn != nil {
		s.opsLn = opsLn
		s.opsServer = s.newServer(s.opsMux)
		s.serve(ctx, "ops", s.opsServer, opsLn)
	}

	s.started = true
	return nil
}

func (s *Service) newServer(h http.Handler) *http.Server {
	return &http.Server{
		Handler:           h,
		ReadTimeout:       s.readTimeout,
		WriteTimeout:      s.writeTimeout,
		IdleTimeout:       s.idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

func (s *Service) serve(ctx context.Context, name string, srv *http.Server, ln net.Listener) {
	s.logger.Info(ctx, "starting HTTP server", logger.String("server", name), logger.String("addr", ln.Addr().String()))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(ctx, "HTTP server failed", logger.String("server", name), logger.Error(err))
		}
	}()
}

// Addr returns the bound public address, or the configured one before Start.
func (s *Service) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.publicLn != nil {
		return s.publicLn.Addr().String()
	}
	return s.addr
}

// OpsAddr returns the bound ops address, or the configured one before Start.
func (s *Service) OpsAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opsLn != nil {
		return s.opsLn.Addr().String()
	}
	return s.opsAddr
}

// Stop gracefully shuts down the servers within ctx and releases background
// work. It is safe to call more than once; a stopped service cannot be
// started again.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	if s.started {
		s.logger.Info(ctx, "shutting down HTTP servers")
		if err := s.public.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown public server: %w", err))
		}
		if s.opsServer != nil {
			if err := s.opsServer.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("shutdown ops server: %w", err))
			}
		}
		s.wg.Wait()
		s.started = false
		s.public, s.opsServer = nil, nil
		s.publicLn, s.opsLn = nil, nil
	}
	s.stopped = true
	s.cancel()
	return errors.Join(errs...)
}
