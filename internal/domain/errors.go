package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrJobNotFound    = errors.New("validation job not found")
	ErrReportNotReady = errors.New("report not available yet")
	ErrNoValidFiles   = errors.New("no valid pdf files in batch")
)
