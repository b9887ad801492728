//go:build !linux && !darwin

package cli

import "context"

// memoryWarnings has no signal source on this platform; unload through
// POST /engine/unload instead.
func memoryWarnings(ctx context.Context) <-chan struct{} {
	out := make(chan struct{})
	go func() {
		<-ctx.Done()
		close(out)
	}()
	return out
}
