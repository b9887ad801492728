package router

import "errors"

// InstallHint tells the user how to get the on-device model working.
const InstallHint = "Open KeyboardAI once to finish installing the on-device model, or enable remote fallback in Settings."

// ErrRemoteNotConfigured is returned when a request must go remote but the
// router has no remote capability.
var ErrRemoteNotConfigured = errors.New("remote transform not configured")

// localUnavailableError is returned when local generation failed and remote
// fallback is disabled. It wraps the local cause.
type localUnavailableError struct{ cause error }

func (e localUnavailableError) Error() string {
	if e.cause == nil {
		return "local model unavailable"
	}
	return "local model unavailable: " + e.cause.Error()
}

func (e localUnavailableError) Unwrap() error { return e.cause }

// Hint returns user guidance for resolving the failure.
func (e localUnavailableError) Hint() string { return InstallHint }

// ErrLocalModelUnavailable constructs a localUnavailableError.
func ErrLocalModelUnavailable(cause error) error { return localUnavailableError{cause: cause} }

// IsLocalModelUnavailable reports whether err means local generation failed
// with no fallback allowed.
func IsLocalModelUnavailable(err error) bool {
	var e localUnavailableError
	return errors.As(err, &e)
}
