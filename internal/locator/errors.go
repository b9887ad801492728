package locator

import "errors"

// containerUnavailableError signals the shared store is not provisioned.
// Non-fatal: local generation may continue from a bundle path.
type containerUnavailableError struct{ dir string }

func (e containerUnavailableError) Error() string {
	if e.dir == "" {
		return "shared store unavailable: not configured"
	}
	return "shared store unavailable: " + e.dir
}

// ErrContainerUnavailable constructs a containerUnavailableError.
func ErrContainerUnavailable(dir string) error { return containerUnavailableError{dir: dir} }

// IsContainerUnavailable reports whether err indicates a missing shared store.
func IsContainerUnavailable(err error) bool {
	var e containerUnavailableError
	return errors.As(err, &e)
}

// modelNotFoundError signals no model asset is reachable anywhere.
type modelNotFoundError struct{ searched int }

func (e modelNotFoundError) Error() string {
	return "model not found in shared store or bundle roots"
}

// ErrModelNotFound constructs a modelNotFoundError.
func ErrModelNotFound(searchedRoots int) error { return modelNotFoundError{searched: searchedRoots} }

// IsModelNotFound reports whether err indicates that no model was found.
func IsModelNotFound(err error) bool {
	var e modelNotFoundError
	return errors.As(err, &e)
}
