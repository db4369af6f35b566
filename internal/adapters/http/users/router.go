// Package users provides the router mounted under the api namespace.
//
// Only the router's root view is served here: it indexes the router's named
// views by their absolute URLs. Resource views are registered by the users
// service itself and are composed in through the same Resolver contract.
package users

import (
	"net/http"
	"strings"

	"github.com/okian/waypoint/internal/adapters/http/api"
	"github.com/okian/waypoint/internal/routing"
)

// RootName is the view name of the router's index.
const RootName = "api-root"

// Router is the users API route table.
type Router struct {
	table *routing.Table
}

// NewRouter builds the users router.
func NewRouter() *Router {
	r := &Router{}
	r.table = routing.MustNew(
		routing.Path("", http.HandlerFunc(r.HandleRoot), RootName),
	)
	return r
}

// Resolve implements routing.Resolver.
func (r *Router) Resolve(path string) (*routing.Match, error) { return r.table.Resolve(path) }

// Reverse implements routing.Reverser.
func (r *Router) Reverse(name string, params map[string]string) (string, error) {
	return r.table.Reverse(name, params)
}

// Walk implements routing.Walker.
func (r *Router) Walk(fn func(routing.Route) error) error { return r.table.Walk(fn) }

// HandleRoot lists every parameterless view of this router, keyed by its
// namespaced name, with the URL it is reachable at.
func (r *Router) HandleRoot(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		api.MethodNotAllowed(w, http.MethodGet, http.MethodHead)
		return
	}

	base := "/"
	var namespaces []string
	if m, ok := routing.MatchFromContext(req.Context()); ok {
		base = strings.TrimSuffix(req.URL.Path, m.Remainder)
		namespaces = m.Namespaces
	}

	index := make(map[string]string)
	_ = r.table.Walk(func(route routing.Route) error {
		if route.Kind != routing.KindExact || route.Name == "" {
			return nil
		}
		rel, err := r.table.Reverse(route.ViewName(), nil)
		if err != nil {
			return nil
		}
		name := strings.Join(append(append([]string(nil), namespaces...), route.ViewName()), ":")
		index[name] = strings.TrimSuffix(base, "/") + rel
		return nil
	})
	api.WriteJSON(w, http.StatusOK, index)
}
