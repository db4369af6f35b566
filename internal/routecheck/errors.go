package routecheck

import "errors"

// Sentinel errors for route checks.
var (
	ErrChecksFailed = errors.New("route checks failed")
	ErrNoChecks     = errors.New("no checks to run")
)
