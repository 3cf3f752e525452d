package capture

import "errors"

var (
	// ErrDevice wraps failures reported by the audio device layer.
	ErrDevice = errors.New("capture: device failure")

	// ErrUnknownSource indicates a source name with no registered constructor.
	ErrUnknownSource = errors.New("capture: unknown source")

	// ErrStarted indicates Start was called twice.
	ErrStarted = errors.New("capture: already started")

	// ErrStopped indicates Start was called on a source that was stopped.
	ErrStopped = errors.New("capture: stopped")
)
