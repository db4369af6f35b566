package routecheck_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	service "github.com/okian/waypoint/internal/app"
	"github.com/okian/waypoint/internal/routecheck"
	"github.com/okian/waypoint/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

func newServer(appendSlash bool) (*httptest.Server, func()) {
	svc, err := service.New(service.WithAppendSlash(appendSlash))
	if err != nil {
		panic(err)
	}
	ts := httptest.NewServer(svc.Handler())
	return ts, func() {
		ts.Close()
		_ = svc.Stop(context.Background())
	}
}

func TestRun(t *testing.T) {
	Convey("Given a server with append-slash enabled", t, func() {
		ts, stop := newServer(true)
		defer stop()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		Convey("When the default checks run concurrently", func() {
			cfg := &routecheck.Config{BaseURL: ts.URL, Workers: 4, Rounds: 5, AppendSlash: true}
			checks := routecheck.DefaultChecks(cfg.AppendSlash)
			stats, err := routecheck.Run(ctx, cfg, checks)

			Convey("Then every request passes", func() {
				So(err, ShouldBeNil)
				So(stats.Requests, ShouldEqual, len(checks)*5)
				So(stats.Passed, ShouldEqual, stats.Requests)
				So(stats.Failures, ShouldBeEmpty)
			})
		})

		Convey("When the checks expect no redirects", func() {
			cfg := &routecheck.Config{BaseURL: ts.URL}
			stats, err := routecheck.Run(ctx, cfg, routecheck.DefaultChecks(false))

			Convey("Then the redirect check fails", func() {
				So(errors.Is(err, routecheck.ErrChecksFailed), ShouldBeTrue)
				So(stats.Failed, ShouldEqual, 1)
				So(stats.Failures[0].Status, ShouldEqual, http.StatusMovedPermanently)
				So(stats.Failures[0].Location, ShouldEqual, "/health/")
			})
		})
	})

	Convey("Given a server with append-slash disabled", t, func() {
		ts, stop := newServer(false)
		defer stop()

		Convey("Then the matching checks pass", func() {
			cfg := &routecheck.Config{BaseURL: ts.URL + "/"}
			_, err := routecheck.Run(context.Background(), cfg, routecheck.DefaultChecks(false))
			So(err, ShouldBeNil)
		})
	})

	Convey("Given an unreachable server", t, func() {
		ts := httptest.NewServer(http.NotFoundHandler())
		url := ts.URL
		ts.Close()

		Convey("Then every check fails with a transport error", func() {
			cfg := &routecheck.Config{BaseURL: url, Timeout: time.Second}
			stats, err := routecheck.Run(context.Background(), cfg, routecheck.DefaultChecks(true))
			So(errors.Is(err, routecheck.ErrChecksFailed), ShouldBeTrue)
			So(stats.Passed, ShouldEqual, 0)
			So(stats.Failures[0].Err, ShouldNotBeNil)
		})
	})

	Convey("Given no checks", t, func() {
		_, err := routecheck.Run(context.Background(), &routecheck.Config{}, nil)
		So(errors.Is(err, routecheck.ErrNoChecks), ShouldBeTrue)
	})
}

func TestResult_OK(t *testing.T) {
	Convey("Given results", t, func() {
		check := routecheck.Check{WantStatus: http.StatusMovedPermanently, WantLocation: "/health/"}

		So(routecheck.Result{Check: check, Status: 301, Location: "/health/"}.OK(), ShouldBeTrue)
		So(routecheck.Result{Check: check, Status: 301, Location: "/other/"}.OK(), ShouldBeFalse)
		So(routecheck.Result{Check: check, Status: 404}.OK(), ShouldBeFalse)
		So(routecheck.Result{Check: check, Status: 301, Location: "/health/", Err: errors.New("x")}.OK(), ShouldBeFalse)
	})
}
