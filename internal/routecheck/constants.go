package routecheck

import "time"

// Defaults for Config fields left at zero.
const (
	DefaultTimeout = 5 * time.Second
	DefaultWorkers = 4
	DefaultRounds  = 1

	WorkerChannelMultiplier = 2
	PercentageMultiplier    = 100
)

// missingPath is a path no route table entry should match.
const missingPath = "/__routecheck_missing__/"
