package pool

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientEntropy is the normal status for a read the pool cannot
	// satisfy yet.
	ErrInsufficientEntropy = errors.New("pool: insufficient entropy")

	// ErrReset is delivered to waiters registered before a reset.
	ErrReset = errors.New("pool: reset while waiting")

	// ErrCanceled is delivered to waiters detached with Cancel.
	ErrCanceled = errors.New("pool: wait canceled")
)

// InsufficientError reports how far the pool is from satisfying a read.
type InsufficientError struct {
	Want int
	Have int
}

func (e *InsufficientError) Error() string {
	return fmt.Sprintf("pool: insufficient entropy: have %d of %d bytes", e.Have, e.Want)
}

func (e *InsufficientError) Is(target error) bool {
	return target == ErrInsufficientEntropy
}
