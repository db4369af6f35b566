package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/waypoint/internal/routecheck"
)

const defaultRunTimeout = 5 * time.Minute

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:8000", "Base URL of the service")
		appendSlash = flag.Bool("append-slash", true, "Expect trailing-slash redirects")
		rounds      = flag.Int("rounds", routecheck.DefaultRounds, "Times each check is repeated")
		workers     = flag.Int("workers", routecheck.DefaultWorkers, "Number of concurrent workers")
		timeout     = flag.Duration("timeout", routecheck.DefaultTimeout, "HTTP request timeout")
		logFile     = flag.String("log", "", `Also write output to this file ("auto" for a timestamped name)`)
		verbose     = flag.Bool("verbose", false, "Log every result")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		routecheck.ShowHelp()
		return
	}

	closer, err := routecheck.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	config := &routecheck.Config{
		BaseURL:     *baseURL,
		Timeout:     *timeout,
		Workers:     *workers,
		Rounds:      *rounds,
		AppendSlash: *appendSlash,
		LogFile:     *logFile,
		Verbose:     *verbose,
	}

	if _, err := routecheck.Run(ctx, config, routecheck.DefaultChecks(config.AppendSlash)); err != nil {
		os.Stderr.WriteString("Route check failed: " + err.Error() + "\n")
		closer.Close()
		os.Exit(1)
	}
}
