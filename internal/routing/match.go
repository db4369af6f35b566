package routing

import (
	"context"
	"net/http"
	"strings"
)

// Match is the result of a successful Resolve.
type Match struct {
	// Handler serves the matched route.
	Handler http.Handler
	// Route is the full pattern that matched, e.g. "api/users/".
	Route string
	// Name is the view name of the matched exact entry.
	Name string
	// Namespaces lists the namespaces crossed, outermost first.
	Namespaces []string
	// Params holds converter captures from every level.
	Params map[string]string
	// Remainder is the part of the path forwarded by the outermost prefix
	// entry. Empty for a direct match.
	Remainder string
}

// ViewName returns the namespaced view name, e.g. "api:api-root".
func (m *Match) ViewName() string { return joinViewName(m.Namespaces, m.Name) }

// under lifts a sub-router match into the scope of prefix entry e.
func (m *Match) under(e *Entry, rest string, params map[string]string) *Match {
	out := &Match{
		Handler:   m.Handler,
		Route:     e.raw + m.Route,
		Name:      m.Name,
		Remainder: rest,
	}
	if e.namespace != "" {
		out.Namespaces = append(out.Namespaces, e.namespace)
	}
	out.Namespaces = append(out.Namespaces, m.Namespaces...)
	if len(params)+len(m.Params) > 0 {
		out.Params = make(map[string]string, len(params)+len(m.Params))
		for k, v := range params {
			out.Params[k] = v
		}
		for k, v := range m.Params {
			out.Params[k] = v
		}
	}
	return out
}

func joinViewName(namespaces []string, name string) string {
	if name == "" || len(namespaces) == 0 {
		return name
	}
	parts := append(append(make([]string, 0, len(namespaces)+1), namespaces...), name)
	return strings.Join(parts, ":")
}

type matchKey struct{}

// WithMatch returns a copy of ctx carrying m.
func WithMatch(ctx context.Context, m *Match) context.Context {
	return context.WithValue(ctx, matchKey{}, m)
}

// MatchFromContext returns the match stored by the dispatcher, if any.
func MatchFromContext(ctx context.Context) (*Match, bool) {
	m, ok := ctx.Value(matchKey{}).(*Match)
	return m, ok && m != nil
}
