package routing_test

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/okian/waypoint/internal/routing"
	. "github.com/smartystreets/goconvey/convey"
)

type namedHandler string

func (h namedHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte(h))
}

// recordingResolver captures the paths it is asked to resolve.
type recordingResolver struct {
	mu     sync.Mutex
	seen   []string
	answer *routing.Match
	err    error
}

func (r *recordingResolver) Resolve(path string) (*routing.Match, error) {
	r.mu.Lock()
	r.seen = append(r.seen, path)
	r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return r.answer, nil
}

func TestTable_Resolve(t *testing.T) {
	Convey("Given the root table with an api include and a health path", t, func() {
		sub := &recordingResolver{answer: &routing.Match{Handler: namedHandler("users"), Name: "user-list", Route: "list/"}}
		health := namedHandler("health")
		table := routing.MustNew(
			routing.Include("api/users/", sub, "api"),
			routing.Path("health/", health, "health"),
		)

		Convey("When resolving a path under the api prefix", func() {
			m, err := table.Resolve("api/users/list/")

			Convey("Then the remainder is forwarded to the sub-router", func() {
				So(err, ShouldBeNil)
				So(sub.seen, ShouldResemble, []string{"list/"})
			})

			Convey("And the match is tagged with the api namespace", func() {
				So(m.Namespaces, ShouldResemble, []string{"api"})
				So(m.ViewName(), ShouldEqual, "api:user-list")
				So(m.Route, ShouldEqual, "api/users/list/")
				So(m.Remainder, ShouldEqual, "list/")
				So(m.Handler, ShouldEqual, namedHandler("users"))
			})
		})

		Convey("When resolving the bare api prefix", func() {
			_, err := table.Resolve("api/users/")

			Convey("Then the sub-router receives an empty path", func() {
				So(err, ShouldBeNil)
				So(sub.seen, ShouldResemble, []string{""})
			})
		})

		Convey("When resolving health/", func() {
			m, err := table.Resolve("health/")

			Convey("Then the health handler is returned with no remainder", func() {
				So(err, ShouldBeNil)
				So(m.Handler, ShouldEqual, health)
				So(m.Name, ShouldEqual, "health")
				So(m.Remainder, ShouldBeEmpty)
				So(m.Params, ShouldBeEmpty)
				So(m.Namespaces, ShouldBeEmpty)
			})
		})

		Convey("When resolving near misses of health/", func() {
			for _, p := range []string{"health/x", "healthx", "health", "/health/", "Health/"} {
				_, err := table.Resolve(p)
				So(errors.Is(err, routing.ErrNotFound), ShouldBeTrue)
			}
		})

		Convey("When resolving an unknown path", func() {
			_, err := table.Resolve("unknown/")

			Convey("Then NotFound is reported with the patterns tried", func() {
				So(errors.Is(err, routing.ErrNotFound), ShouldBeTrue)
				var nf *routing.NotFoundError
				So(errors.As(err, &nf), ShouldBeTrue)
				So(nf.Path, ShouldEqual, "unknown/")
				So(nf.Tried, ShouldResemble, []string{"api/users/", "health/"})
			})

			Convey("And the sub-router is never consulted", func() {
				So(sub.seen, ShouldBeEmpty)
			})
		})

		Convey("When resolving the same path repeatedly", func() {
			first, err1 := table.Resolve("health/")
			second, err2 := table.Resolve("health/")

			Convey("Then the results are identical", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(second, ShouldResemble, first)
			})
		})
	})
}

func TestTable_FirstMatchWins(t *testing.T) {
	Convey("Given a prefix and an exact entry that both match the same path", t, func() {
		sub := &recordingResolver{answer: &routing.Match{Handler: namedHandler("sub"), Name: "index"}}

		Convey("When the prefix entry is declared first", func() {
			table := routing.MustNew(
				routing.Include("health/", sub, "ns"),
				routing.Path("health/", namedHandler("direct"), "health"),
			)
			m, err := table.Resolve("health/")

			Convey("Then the prefix entry wins", func() {
				So(err, ShouldBeNil)
				So(m.Handler, ShouldEqual, namedHandler("sub"))
				So(m.ViewName(), ShouldEqual, "ns:index")
			})
		})

		Convey("When the exact entry is declared first", func() {
			table := routing.MustNew(
				routing.Path("health/", namedHandler("direct"), "health"),
				routing.Include("health/", sub, "ns"),
			)
			m, err := table.Resolve("health/")

			Convey("Then the exact entry wins", func() {
				So(err, ShouldBeNil)
				So(m.Handler, ShouldEqual, namedHandler("direct"))
				So(sub.seen, ShouldBeEmpty)
			})
		})
	})
}

func TestTable_SubRouterMisses(t *testing.T) {
	Convey("Given an include whose sub-router does not match", t, func() {
		inner := routing.MustNew(routing.Path("", namedHandler("root"), "root"))
		table := routing.MustNew(
			routing.Include("api/", inner, "api"),
			routing.Path("api/other/", namedHandler("other"), "other"),
		)

		Convey("When the path falls through the include", func() {
			m, err := table.Resolve("api/other/")

			Convey("Then later entries are still tried", func() {
				So(err, ShouldBeNil)
				So(m.Name, ShouldEqual, "other")
			})
		})

		Convey("When nothing matches at any level", func() {
			_, err := table.Resolve("api/missing/")

			Convey("Then the tried list includes the nested patterns", func() {
				var nf *routing.NotFoundError
				So(errors.As(err, &nf), ShouldBeTrue)
				So(nf.Tried, ShouldResemble, []string{"api/", "api/other/"})
			})
		})
	})

	Convey("Given a sub-router failing with a non-routing error", t, func() {
		boom := errors.New("boom")
		table := routing.MustNew(
			routing.Include("api/", &recordingResolver{err: boom}, "api"),
			routing.Path("api/x", namedHandler("x"), "x"),
		)

		Convey("Then the error propagates unchanged", func() {
			_, err := table.Resolve("api/x")
			So(err, ShouldEqual, boom)
		})
	})

	Convey("Given a sub-router reporting a bare ErrNotFound", t, func() {
		table := routing.MustNew(
			routing.Include("api/", &recordingResolver{err: fmt.Errorf("lookup: %w", routing.ErrNotFound)}, "api"),
		)

		Convey("Then it is treated as a miss", func() {
			_, err := table.Resolve("api/x")
			var nf *routing.NotFoundError
			So(errors.As(err, &nf), ShouldBeTrue)
			So(nf.Tried, ShouldResemble, []string{"api/"})
		})
	})
}

func TestTable_Params(t *testing.T) {
	Convey("Given nested tables with converters", t, func() {
		detail := namedHandler("detail")
		users := routing.MustNew(
			routing.Path("", namedHandler("list"), "user-list"),
			routing.Path("<int:pk>/", detail, "user-detail"),
			routing.Path("<slug:handle>/profile/", namedHandler("profile"), "user-profile"),
		)
		table := routing.MustNew(routing.Include("<str:tenant>/users/", users, "api"))

		Convey("When resolving a detail path", func() {
			m, err := table.Resolve("acme/users/42/")

			Convey("Then params from every level are merged", func() {
				So(err, ShouldBeNil)
				So(m.Handler, ShouldEqual, detail)
				So(m.Params, ShouldResemble, map[string]string{"tenant": "acme", "pk": "42"})
				So(m.Route, ShouldEqual, "<str:tenant>/users/<int:pk>/")
				So(m.Remainder, ShouldEqual, "42/")
			})
		})

		Convey("When a converter rejects the segment", func() {
			_, err := table.Resolve("acme/users/abc/")
			So(errors.Is(err, routing.ErrNotFound), ShouldBeTrue)
		})

		Convey("When resolving a slug path", func() {
			m, err := table.Resolve("acme/users/jane_doe-2/profile/")
			So(err, ShouldBeNil)
			So(m.Params["handle"], ShouldEqual, "jane_doe-2")
		})
	})
}

func TestTable_New(t *testing.T) {
	Convey("Given invalid declarations", t, func() {
		Convey("When a path has no handler", func() {
			_, err := routing.New(routing.Path("health/", nil, "health"))
			So(errors.Is(err, routing.ErrInvalidEntry), ShouldBeTrue)
		})

		Convey("When an include has no sub-router", func() {
			_, err := routing.New(routing.Include("api/", nil, "api"))
			So(errors.Is(err, routing.ErrInvalidEntry), ShouldBeTrue)
		})

		Convey("When a pattern does not compile", func() {
			_, err := routing.New(routing.Path("users/<bogus:id>/", namedHandler("x"), "x"))
			So(errors.Is(err, routing.ErrInvalidPattern), ShouldBeTrue)
		})

		Convey("When MustNew is given an invalid entry", func() {
			So(func() { routing.MustNew(routing.Path("/health/", namedHandler("x"), "x")) }, ShouldPanic)
		})
	})

	Convey("Given a slice of entries", t, func() {
		entries := []routing.Entry{
			routing.Path("a/", namedHandler("a"), "a"),
			routing.Path("b/", namedHandler("b"), "b"),
		}
		table := routing.MustNew(entries...)

		Convey("When the caller modifies its slice afterwards", func() {
			entries[0] = routing.Path("z/", namedHandler("z"), "z")

			Convey("Then the table is unaffected", func() {
				_, err := table.Resolve("a/")
				So(err, ShouldBeNil)
				So(table.Len(), ShouldEqual, 2)
			})
		})

		Convey("When the caller modifies the returned entries", func() {
			got := table.Entries()
			got[0] = routing.Path("z/", namedHandler("z"), "z")

			Convey("Then the table is unaffected", func() {
				So(table.Entries()[0].Name(), ShouldEqual, "a")
				So(table.Entries()[0].Pattern().String(), ShouldEqual, "a/")
			})
		})
	})
}

func TestTable_ConcurrentResolve(t *testing.T) {
	Convey("Given a shared table", t, func() {
		table := routing.MustNew(
			routing.Include("api/users/", routing.MustNew(routing.Path("<int:pk>/", namedHandler("u"), "detail")), "api"),
			routing.Path("health/", namedHandler("health"), "health"),
		)

		Convey("When many goroutines resolve at once", func() {
			const goroutines = 32
			var wg sync.WaitGroup
			results := make([]string, goroutines)
			for i := 0; i < goroutines; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					if i%2 == 0 {
						m, err := table.Resolve("api/users/7/")
						if err == nil {
							results[i] = m.ViewName() + "=" + m.Params["pk"]
						}
						return
					}
					m, err := table.Resolve("health/")
					if err == nil {
						results[i] = m.ViewName()
					}
				}(i)
			}
			wg.Wait()

			Convey("Then every goroutine sees the same answer", func() {
				for i, r := range results {
					if i%2 == 0 {
						So(r, ShouldEqual, "api:detail=7")
					} else {
						So(r, ShouldEqual, "health")
					}
				}
			})
		})
	})
}

func TestKind_String(t *testing.T) {
	Convey("Kinds have readable names", t, func() {
		So(routing.KindExact.String(), ShouldEqual, "exact")
		So(routing.KindPrefix.String(), ShouldEqual, "prefix")
		So(routing.Kind(9).String(), ShouldEqual, "unknown")
	})
}

func TestTable_ResolveEmptySubMatch(t *testing.T) {
	Convey("Given an include whose sub-router answers neither a match nor an error", t, func() {
		empty := &recordingResolver{}
		health := namedHandler("health")
		table := routing.MustNew(
			routing.Include("api/users/", empty, "api"),
			routing.Path("api/users/x", health, "fallback"),
		)

		Convey("When resolving under its prefix", func() {
			m, err := table.Resolve("api/users/x")

			Convey("Then the entry counts as a miss and the scan continues", func() {
				So(err, ShouldBeNil)
				So(m.Name, ShouldEqual, "fallback")
				So(empty.seen, ShouldResemble, []string{"x"})
			})
		})

		Convey("When nothing after it matches", func() {
			_, err := table.Resolve("api/users/y")

			Convey("Then NotFound lists the include as tried", func() {
				var nf *routing.NotFoundError
				So(errors.As(err, &nf), ShouldBeTrue)
				So(nf.Tried, ShouldResemble, []string{"api/users/", "api/users/x"})
			})
		})
	})
}
