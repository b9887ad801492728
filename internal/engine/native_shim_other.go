//go:build !darwin && !linux

package engine

// OpenShim is unavailable on this platform.
func OpenShim(libPath string) (Native, error) {
	return nil, ErrDependencyUnavailable("shim backend requires darwin or linux")
}
