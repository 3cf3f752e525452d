package config

import "errors"

// ErrUnsatisfiable marks a configuration that cannot be clamped into a
// usable state.
var ErrUnsatisfiable = errors.New("config: unsatisfiable")
