package extract

import "errors"

var (
	// ErrUnknownHash indicates a whitening hash name with no registered constructor.
	ErrUnknownHash = errors.New("extract: unknown hash")
)
