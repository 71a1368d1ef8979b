package difficulty

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is returned when a controller is configured with
	// impossible bounds, thresholds or step.
	ErrInvalidConfig = errors.New("invalid difficulty config")

	// ErrIllegalState is returned when an operation is not allowed in the
	// current state, such as using a controller before Initialize.
	ErrIllegalState = errors.New("illegal state")

	// ErrInvalidArgument is returned for malformed runtime inputs such as a
	// block accuracy outside [0,1].
	ErrInvalidArgument = errors.New("invalid argument")
)

// ConfigError describes which part of a Config is invalid.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidConfig, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

var errNotInitialized = fmt.Errorf("controller not initialized: %w", ErrIllegalState)
