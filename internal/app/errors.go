package service

import "errors"

// Sentinel errors for service lifecycle.
var (
	ErrAlreadyStarted = errors.New("service already started")
	ErrStopped        = errors.New("service stopped")
	ErrBuildRoutes    = errors.New("build route table")
	ErrListen         = errors.New("listen")
)
