// Package ops serves operational endpoints on a listener separate from the
// public route table.
package ops

import (
	"context"
	"net/http"

	"github.com/okian/waypoint/internal/adapters/http/api"
	"github.com/okian/waypoint/internal/routing"
	"github.com/okian/waypoint/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Route paths.
const (
	MetricsPath = "/metrics"
	RoutesPath  = "/routes"
	OpenAPIPath = "/openapi.yaml"
)

// routeView is the JSON shape of one entry in GET /routes.
type routeView struct {
	Pattern string `json:"pattern"`
	Kind    string `json:"kind"`
	Name    string `json:"name,omitempty"`
}

// Register attaches the ops routes to mux:
//
//	GET /metrics       -> Prometheus exposition from the custom registry
//	GET /routes        -> the route table, depth-first
//	GET /openapi.yaml  -> embedded OpenAPI document of the public routes
func Register(_ context.Context, mux *http.ServeMux, table routing.Walker) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.Handle("GET "+MetricsPath, promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	mux.HandleFunc("GET "+RoutesPath, func(w http.ResponseWriter, r *http.Request) {
		routes := make([]routeView, 0)
		err := table.Walk(func(rt routing.Route) error {
			routes = append(routes, routeView{Pattern: "/" + rt.Pattern, Kind: rt.Kind.String(), Name: rt.ViewName()})
			return nil
		})
		if err != nil {
			api.WriteError(w, http.StatusInternalServerError, "internal_error", err)
			return
		}
		api.WriteJSON(w, http.StatusOK, routes)
	})

	mux.HandleFunc("GET "+OpenAPIPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write(OpenAPI)
	})
}
