package routecheck

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/waypoint/pkg/logger"
)

const logFilePermission = 0600

// SetupLogging initializes the global logger writing to stdout and, when
// logFile is set, to that file too. The returned closer releases the file.
func SetupLogging(logFile string, verbose bool) (io.Closer, error) {
	var out io.Writer = os.Stdout
	var closer io.Closer = io.NopCloser(nil)
	if logFile != "" {
		if logFile == "auto" {
			logFile = "routecheck_" + time.Now().Format("20060102_150405") + ".log"
		}
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, file)
		closer = file
	}

	if err := logger.Init(logger.WithOutput(out)); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	level := "info"
	if verbose {
		level = "debug"
	}
	_ = logger.SetLevelString(level)
	return closer, nil
}

// ShowHelp prints usage information.
func ShowHelp() {
	os.Stdout.WriteString(`waypoint route check
====================

Probes a running waypoint server and verifies each public route answers as
expected: health 200, api root 200, unknown paths 404 and trailing-slash
redirects.

Usage:
  go run ./cmd/routecheck [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8000")
  -append-slash
        Expect trailing-slash redirects (default true)
  -rounds int
        Times each check is repeated (default 1)
  -workers int
        Number of concurrent workers (default 4)
  -timeout duration
        HTTP request timeout (default 5s)
  -log string
        Also write output to this file ("auto" for a timestamped name)
  -verbose
        Log every result
  -help
        Show this help message

Examples:
  # Check a local server
  go run ./cmd/routecheck

  # Hammer a server with append-slash disabled
  go run ./cmd/routecheck -url http://localhost:8080 -append-slash=false -rounds 500 -workers 16
`)
}
