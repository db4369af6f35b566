package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/waypoint/internal/routing"
	"github.com/okian/waypoint/pkg/logger"
	"github.com/okian/waypoint/pkg/metrics"
)

// View labels for requests that did not reach a routed handler.
const (
	viewNotFound    = "not_found"
	viewAppendSlash = "append_slash"
	viewError       = "error"
	viewRateLimited = "rate_limited"
)

var errNoHandler = errors.New("resolved route has no handler")

// Dispatcher resolves each request path against the route table and hands
// the request to the matched handler with the match in its context.
type Dispatcher struct {
	resolver    routing.Resolver
	appendSlash bool
	logger      logger.Logger
}

func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	path := strings.TrimPrefix(r.URL.Path, "/")

	m, err := d.resolver.Resolve(path)
	if err == nil && (m == nil || m.Handler == nil) {
		err = errNoHandler
	}
	if err == nil {
		metrics.RecordResolution(metrics.OutcomeMatched)
		setView(ctx, viewLabel(m))
		m.Handler.ServeHTTP(w, r.WithContext(routing.WithMatch(ctx, m)))
		return
	}

	if !errors.Is(err, routing.ErrNotFound) {
		metrics.RecordResolution(metrics.OutcomeError)
		setView(ctx, viewError)
		d.logger.Error(ctx, "route resolution failed",
			logger.String("path", r.URL.Path),
			logger.String("request_id", RequestIDFromContext(ctx)),
			logger.Error(err))
		WriteError(w, http.StatusInternalServerError, "internal_error", ErrInternal)
		return
	}

	metrics.RecordResolution(metrics.OutcomeNotFound)
	if d.shouldAppendSlash(path) {
		setView(ctx, viewAppendSlash)
		metrics.RecordAppendSlashRedirect()
		redirectWithSlash(w, r)
		return
	}

	setView(ctx, viewNotFound)
	WriteError(w, http.StatusNotFound, "not_found", fmt.Errorf("no route matches %s", r.URL.Path))
}

// shouldAppendSlash reports whether path misses only its trailing slash.
func (d *Dispatcher) shouldAppendSlash(path string) bool {
	if !d.appendSlash || path == "" || strings.HasSuffix(path, "/") || strings.HasPrefix(path, "/") {
		return false
	}
	_, err := d.resolver.Resolve(path + "/")
	return err == nil
}

// redirectWithSlash keeps the query string. Methods other than GET and HEAD
// get 308 so clients resend the body.
func redirectWithSlash(w http.ResponseWriter, r *http.Request) {
	target := r.URL.EscapedPath() + "/"
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	code := http.StatusMovedPermanently
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		code = http.StatusPermanentRedirect
	}
	http.Redirect(w, r, target, code)
}

func viewLabel(m *routing.Match) string {
	if v := m.ViewName(); v != "" {
		return v
	}
	return m.Route
}
