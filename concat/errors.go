package concat

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is matched by every ConfigurationError.
	ErrConfiguration = errors.New("concat: invalid configuration")
	// ErrStreamingNotSupported is matched by every UnsupportedInputError.
	ErrStreamingNotSupported = errors.New("concat: streaming not supported")
)

// ConfigurationError reports a missing or invalid construction argument.
type ConfigurationError struct {
	Field string
	Msg   string
}

func (e *ConfigurationError) Error() string { return "concat: " + e.Msg }
func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// UnsupportedInputError reports a unit whose contents are streamed.
type UnsupportedInputError struct {
	Path string
}

func (e *UnsupportedInputError) Error() string { return ErrStreamingNotSupported.Error() }
func (e *UnsupportedInputError) Unwrap() error { return ErrStreamingNotSupported }

// TransformError wraps a failure returned by the transform function.
type TransformError struct {
	Path string
	Err  error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("concat: transform %s: %v", e.Path, e.Err)
}
func (e *TransformError) Unwrap() error { return e.Err }
