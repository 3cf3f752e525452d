package render

import "errors"

var (
	// ErrNoFrame indicates an export before anything was presented.
	ErrNoFrame = errors.New("render: nothing presented yet")
)
