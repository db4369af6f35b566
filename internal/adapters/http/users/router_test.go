package users_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/waypoint/internal/adapters/http/api"
	"github.com/okian/waypoint/internal/adapters/http/users"
	"github.com/okian/waypoint/internal/routing"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRouter_Resolve(t *testing.T) {
	Convey("Given the users router", t, func() {
		r := users.NewRouter()

		Convey("When resolving the empty remainder", func() {
			m, err := r.Resolve("")

			Convey("Then the root view matches", func() {
				So(err, ShouldBeNil)
				So(m.Name, ShouldEqual, users.RootName)
			})
		})

		Convey("When resolving anything else", func() {
			_, err := r.Resolve("42/")
			So(errors.Is(err, routing.ErrNotFound), ShouldBeTrue)
		})

		Convey("When reversing the root", func() {
			p, err := r.Reverse(users.RootName, nil)
			So(err, ShouldBeNil)
			So(p, ShouldEqual, "/")
		})

		Convey("When walking", func() {
			var names []string
			So(r.Walk(func(rt routing.Route) error {
				names = append(names, rt.Name)
				return nil
			}), ShouldBeNil)
			So(names, ShouldResemble, []string{users.RootName})
		})
	})
}

func TestRouter_HandleRoot(t *testing.T) {
	Convey("Given the router mounted under api/users/ in namespace api", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		table := routing.MustNew(routing.Include("api/users/", users.NewRouter(), "api"))
		h := api.NewServer(table).Handler(ctx)

		Convey("When the index is requested", func() {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/", nil))

			Convey("Then it maps namespaced names to absolute URLs", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var index map[string]string
				So(json.Unmarshal(rec.Body.Bytes(), &index), ShouldBeNil)
				So(index, ShouldResemble, map[string]string{"api:api-root": "/api/users/"})
			})
		})

		Convey("When the index is posted to", func() {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/users/", nil))
			So(rec.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})

	Convey("Given the handler called without a match in context", t, func() {
		rec := httptest.NewRecorder()
		users.NewRouter().HandleRoot(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		Convey("Then URLs are relative to the site root", func() {
			var index map[string]string
			So(json.Unmarshal(rec.Body.Bytes(), &index), ShouldBeNil)
			So(index["api-root"], ShouldEqual, "/")
		})
	})
}
