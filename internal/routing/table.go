// Package routing implements an ordered, immutable URL route table.
//
// A Table is a sequence of entries scanned in declaration order; the first
// entry whose pattern matches wins. Exact entries bind a path to a handler.
// Prefix entries strip their pattern and delegate the remainder to a nested
// Resolver, tagging the result with the entry's namespace. Paths are given
// without a leading slash.
package routing

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind distinguishes how an entry's pattern is matched.
type Kind int

const (
	// KindExact matches only when the pattern consumes the whole path.
	KindExact Kind = iota
	// KindPrefix matches a leading part of the path and forwards the rest.
	KindPrefix
)

func (k Kind) String() string {
	switch k {
	case KindExact:
		return "exact"
	case KindPrefix:
		return "prefix"
	default:
		return "unknown"
	}
}

// Resolver maps a path to a Match. *Table implements it, and so can any
// externally defined router delegated to through Include.
type Resolver interface {
	Resolve(path string) (*Match, error)
}

// Reverser builds a path from a view name and parameters.
type Reverser interface {
	Reverse(name string, params map[string]string) (string, error)
}

// Walker enumerates routes for introspection.
type Walker interface {
	Walk(fn func(Route) error) error
}

// Entry is a single (pattern, target) pair.
type Entry struct {
	raw       string
	pattern   Pattern
	kind      Kind
	handler   http.Handler
	include   Resolver
	name      string
	namespace string
}

// Path declares an exact entry bound to handler. name is used for reverse
// lookups and may be empty.
func Path(pattern string, handler http.Handler, name string) Entry {
	return Entry{raw: pattern, kind: KindExact, handler: handler, name: name}
}

// Include declares a prefix entry that delegates the rest of the path to sub.
func Include(pattern string, sub Resolver, namespace string) Entry {
	return Entry{raw: pattern, kind: KindPrefix, include: sub, namespace: namespace}
}

// Pattern returns the compiled pattern. It is only set on entries read back
// from a Table.
func (e Entry) Pattern() Pattern { return e.pattern }

// Kind reports whether the entry is exact or prefix.
func (e Entry) Kind() Kind { return e.kind }

// Name is the view name of an exact entry.
func (e Entry) Name() string { return e.name }

// Namespace is the namespace of a prefix entry.
func (e Entry) Namespace() string { return e.namespace }

// Handler is the target of an exact entry.
func (e Entry) Handler() http.Handler { return e.handler }

// Sub is the delegated router of a prefix entry.
func (e Entry) Sub() Resolver { return e.include }

// Table is an ordered route table. It has no mutation API and is safe for
// concurrent use once built.
type Table struct {
	entries []Entry
}

// New validates entries and returns a table holding a private copy of them.
func New(entries ...Entry) (*Table, error) {
	t := &Table{entries: make([]Entry, len(entries))}
	for i, e := range entries {
		p, err := Compile(e.raw)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		e.pattern = p
		switch e.kind {
		case KindExact:
			if e.handler == nil {
				return nil, fmt.Errorf("%w: entry %d (%q) has no handler", ErrInvalidEntry, i, e.raw)
			}
		case KindPrefix:
			if e.include == nil {
				return nil, fmt.Errorf("%w: entry %d (%q) has no sub-router", ErrInvalidEntry, i, e.raw)
			}
		default:
			return nil, fmt.Errorf("%w: entry %d (%q) has unknown kind", ErrInvalidEntry, i, e.raw)
		}
		t.entries[i] = e
	}
	return t, nil
}

// MustNew is like New but panics on error. Meant for static declarations.
func MustNew(entries ...Entry) *Table {
	t, err := New(entries...)
	if err != nil {
		panic(err)
	}
	return t
}

// Len returns the number of top-level entries.
func (t *Table) Len() int { return len(t.entries) }

// Entries returns a copy of the entries in declaration order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Resolve finds the first entry matching path. When nothing matches the
// returned error is a *NotFoundError. A prefix entry whose sub-router does
// not match does not end the scan.
func (t *Table) Resolve(path string) (*Match, error) {
	var tried []string
	for i := range t.entries {
		e := &t.entries[i]
		if e.kind == KindExact {
			if _, params, ok := e.pattern.match(path, true); ok {
				return &Match{
					Handler: e.handler,
					Route:   e.raw,
					Name:    e.name,
					Params:  params,
				}, nil
			}
			tried = append(tried, e.raw)
			continue
		}

		rest, params, ok := e.pattern.match(path, false)
		if !ok {
			tried = append(tried, e.raw)
			continue
		}
		sub, err := e.include.Resolve(rest)
		if err != nil {
			var nf *NotFoundError
			switch {
			case errors.As(err, &nf):
				for _, p := range nf.Tried {
					tried = append(tried, e.raw+p)
				}
				if len(nf.Tried) == 0 {
					tried = append(tried, e.raw)
				}
				continue
			case errors.Is(err, ErrNotFound):
				tried = append(tried, e.raw)
				continue
			}
			return nil, err
		}
		if sub == nil {
			// A sub-router answering neither a match nor an error has no match.
			tried = append(tried, e.raw)
			continue
		}
		return sub.under(e, rest, params), nil
	}
	return nil, &NotFoundError{Path: path, Tried: tried}
}

// Reverse builds the absolute path of the named view. Namespaced names use
// colons, e.g. "api:api-root". Includes without a namespace are transparent.
func (t *Table) Reverse(name string, params map[string]string) (string, error) {
	if params == nil {
		params = map[string]string{}
	}
	if p, ok := t.reverse(name, params); ok {
		return "/" + p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrNoReverseMatch, name)
}

func (t *Table) reverse(name string, params map[string]string) (string, bool) {
	ns, view := splitNamespace(name)
	for i := range t.entries {
		e := &t.entries[i]
		switch {
		case e.kind == KindExact && ns == "" && e.name != "" && e.name == view:
			path, rest, err := e.pattern.expand(params)
			if err == nil && len(rest) == 0 {
				return path, true
			}
		case e.kind == KindPrefix && (e.namespace == ns || e.namespace == ""):
			rv, ok := e.include.(Reverser)
			if !ok {
				continue
			}
			prefix, rest, err := e.pattern.expand(params)
			if err != nil {
				continue
			}
			inner := name
			if e.namespace != "" {
				inner = view
			}
			sub, err := rv.Reverse(inner, rest)
			if err != nil {
				continue
			}
			return prefix + strings.TrimPrefix(sub, "/"), true
		}
	}
	return "", false
}

// splitNamespace splits "a:b:c" into ("a", "b:c"); a plain name has no namespace.
func splitNamespace(name string) (string, string) {
	if ns, view, ok := strings.Cut(name, ":"); ok {
		return ns, view
	}
	return "", name
}

// Route describes one entry as seen from the root table.
type Route struct {
	Pattern    string
	Kind       Kind
	Name       string
	Namespaces []string
}

// ViewName joins the namespaces and name with colons.
func (r Route) ViewName() string { return joinViewName(r.Namespaces, r.Name) }

// Walk visits every entry depth-first in declaration order. Entries of
// sub-routers that implement Walker are visited with their full pattern.
func (t *Table) Walk(fn func(Route) error) error {
	return t.walk("", nil, fn)
}

func (t *Table) walk(prefix string, namespaces []string, fn func(Route) error) error {
	for i := range t.entries {
		e := &t.entries[i]
		r := Route{Pattern: prefix + e.raw, Kind: e.kind, Name: e.name, Namespaces: namespaces}
		if err := fn(r); err != nil {
			return err
		}
		if e.kind != KindPrefix {
			continue
		}
		ns := namespaces
		if e.namespace != "" {
			ns = append(append([]string(nil), namespaces...), e.namespace)
		}
		switch sub := e.include.(type) {
		case *Table:
			if err := sub.walk(r.Pattern, ns, fn); err != nil {
				return err
			}
		case Walker:
			err := sub.Walk(func(child Route) error {
				child.Pattern = r.Pattern + child.Pattern
				child.Namespaces = append(append([]string(nil), ns...), child.Namespaces...)
				return fn(child)
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}
