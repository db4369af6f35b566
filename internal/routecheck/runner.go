// Package routecheck probes a running server's routes and reports which
// responses diverge from the expected ones.
package routecheck

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/waypoint/pkg/logger"
)

// Run executes checks Rounds times across Workers goroutines. It returns
// ErrChecksFailed when any result misses its expectation.
func Run(ctx context.Context, config *Config, checks []Check) (*Stats, error) {
	if len(checks) == 0 {
		return nil, ErrNoChecks
	}
	cfg := withDefaults(config)
	log := logger.Named("routecheck")

	log.Info(ctx, "starting route check",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("checks", len(checks)),
		logger.Int("rounds", cfg.Rounds),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout))

	stats := &Stats{StartTime: time.Now()}
	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	jobs := make(chan Check, cfg.Workers*WorkerChannelMultiplier)
	results := make(chan Result, cfg.Workers*WorkerChannelMultiplier)

	var wg sync.WaitGroup
	for range cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				results <- client.Do(ctx, c)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for range cfg.Rounds {
			for _, c := range checks {
				select {
				case <-ctx.Done():
					return
				case jobs <- c:
				}
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		stats.Requests++
		if r.OK() {
			stats.Passed++
		} else {
			stats.Failed++
			stats.Failures = append(stats.Failures, r)
		}
		if cfg.Verbose || !r.OK() {
			logResult(ctx, log, r)
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("route check interrupted: %w", err)
	}
	if stats.Failed > 0 {
		return stats, fmt.Errorf("%w: %d of %d", ErrChecksFailed, stats.Failed, stats.Requests)
	}
	return stats, nil
}

func withDefaults(c *Config) Config {
	cfg := *c
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Rounds <= 0 {
		cfg.Rounds = DefaultRounds
	}
	return cfg
}

func logResult(ctx context.Context, log logger.Logger, r Result) {
	fields := []logger.Field{
		logger.String("check", r.Check.Name),
		logger.String("method", r.Check.Method),
		logger.String("path", r.Check.Path),
		logger.Int("want", r.Check.WantStatus),
		logger.Int("got", r.Status),
		logger.Duration("duration", r.Duration),
	}
	if r.Location != "" {
		fields = append(fields, logger.String("location", r.Location))
	}
	if r.Err != nil {
		fields = append(fields, logger.Error(r.Err))
	}
	if r.OK() {
		log.Info(ctx, "check passed", fields...)
		return
	}
	log.Error(ctx, "check failed", fields...)
}

// displayFinalStats logs the run summary.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var passRate, requestsPerSecond float64
	if stats.Requests > 0 {
		passRate = float64(stats.Passed) / float64(stats.Requests) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		requestsPerSecond = float64(stats.Requests) / stats.Duration.Seconds()
	}

	log.Info(ctx, "final statistics",
		logger.Int("requests", stats.Requests),
		logger.Int("passed", stats.Passed),
		logger.Int("failed", stats.Failed),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("passRate", passRate),
		logger.Float64("requestsPerSecond", requestsPerSecond))
}
