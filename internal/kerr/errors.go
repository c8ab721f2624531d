package kerr

import (
	"errors"
	"fmt"
)

// Configuration errors. Every failure of Config.Validate wraps one of these
// inside a ConfigError.
var (
	// ErrInvalidConfig indicates a value outside its documented range.
	ErrInvalidConfig = errors.New("kerr: invalid configuration")

	// ErrSpinBounds indicates a spin outside [0, 1).
	ErrSpinBounds = errors.New("kerr: spin outside [0, 1)")

	// ErrSingularObserver indicates time delays requested for an observer
	// at infinity.
	ErrSingularObserver = errors.New("kerr: non-stationary run needs a finite observer distance")

	// ErrEmptyGrid indicates a screen grid without pixels.
	ErrEmptyGrid = errors.New("kerr: empty screen grid")
)

// ConfigError names the offending field.
type ConfigError struct {
	Field   string
	Value   any
	Wrapped error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s (%s = %v)", e.Wrapped.Error(), e.Field, e.Value)
}

func (e *ConfigError) Unwrap() error {
	return e.Wrapped
}
