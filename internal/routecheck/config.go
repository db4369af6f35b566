package routecheck

import "time"

// Config holds configuration for a route check run.
type Config struct {
	BaseURL     string        // Base URL of the service
	Timeout     time.Duration // HTTP request timeout
	Workers     int           // Number of concurrent workers
	Rounds      int           // Times each check is repeated
	AppendSlash bool          // Expect trailing-slash redirects
	LogFile     string        // Log file for check output
	Verbose     bool          // Log every result
}

// Check is one request and the response it must produce.
type Check struct {
	Name         string
	Method       string
	Path         string
	WantStatus   int
	WantLocation string // compared only when set
}

// Result is the outcome of one Check.
type Result struct {
	Check    Check
	Status   int
	Location string
	Duration time.Duration
	Err      error
}

// OK reports whether the response met the check.
func (r Result) OK() bool {
	if r.Err != nil || r.Status != r.Check.WantStatus {
		return false
	}
	return r.Check.WantLocation == "" || r.Location == r.Check.WantLocation
}

// Stats summarizes a run.
type Stats struct {
	Requests  int
	Passed    int
	Failed    int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Failures  []Result
}
