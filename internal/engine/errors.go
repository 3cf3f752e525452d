package engine

import "errors"

// ErrStopped is returned by Do once the loop has exited.
var ErrStopped = errors.New("engine: stopped")
