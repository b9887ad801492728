package engine

import "errors"

// ErrClosed is returned for jobs submitted to, or still queued on, a closed Bridge.
var ErrClosed = errors.New("engine bridge closed")

// initFailedError signals native init returned failure. The bridge stays
// uninitialized and retries lazily on the next generation.
type initFailedError struct{ msg string }

func (e initFailedError) Error() string { return e.msg }

// ErrInitFailed constructs an initFailedError.
func ErrInitFailed(msg string) error { return initFailedError{msg: msg} }

// IsInitFailed reports whether err indicates a native init failure.
func IsInitFailed(err error) bool {
	var e initFailedError
	return errors.As(err, &e)
}

// unavailableError is returned by a generation whose implicit init failed.
// It carries the recorded last error and wraps the cause (locator or init).
type unavailableError struct {
	lastErr string
	cause   error
}

func (e unavailableError) Error() string { return "engine unavailable: " + e.lastErr }
func (e unavailableError) Unwrap() error { return e.cause }

// ErrUnavailable constructs an unavailableError.
func ErrUnavailable(lastErr string, cause error) error {
	return unavailableError{lastErr: lastErr, cause: cause}
}

// IsUnavailable reports whether err indicates the engine could not be made ready.
func IsUnavailable(err error) bool {
	var e unavailableError
	return errors.As(err, &e)
}

// generationFailedError signals the native call failed or produced no output.
// The engine stays ready.
type generationFailedError struct{ msg string }

func (e generationFailedError) Error() string { return "generation failed: " + e.msg }

// ErrGenerationFailed constructs a generationFailedError.
func ErrGenerationFailed(msg string) error { return generationFailedError{msg: msg} }

// IsGenerationFailed reports whether err indicates a failed native generation.
func IsGenerationFailed(err error) bool {
	var e generationFailedError
	return errors.As(err, &e)
}

// dependencyUnavailableError signals a missing native dependency (library not
// built in or not loadable).
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing native dependency.
func IsDependencyUnavailable(err error) bool {
	var e dependencyUnavailableError
	return errors.As(err, &e)
}
