// Package health serves the liveness endpoint.
package health

import (
	"net/http"
	"time"

	"github.com/okian/waypoint/internal/adapters/http/api"
)

// Response is the body of a health check.
type Response struct {
	Status        string  `json:"status"`
	Version       string  `json:"version,omitempty"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	version string
	started time.Time
	now     func() time.Time
}

// NewHealthHandler creates a health handler reporting version and uptime
// measured from started.
func NewHealthHandler(version string, started time.Time) *HealthHandler {
	return &HealthHandler{version: version, started: started, now: time.Now}
}

// HandleHealth handles GET /health/ requests.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		api.MethodNotAllowed(w, http.MethodGet, http.MethodHead)
		return
	}
	api.WriteJSON(w, http.StatusOK, Response{
		Status:        "ok",
		Version:       h.version,
		UptimeSeconds: h.now().Sub(h.started).Seconds(),
	})
}

// ServeHTTP makes HealthHandler an http.Handler.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.HandleHealth(w, r)
}
