//go:build linux || darwin

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// memoryWarnings delivers one value per SIGUSR1, the memory-pressure signal
// a supervisor sends to the daemon. The channel closes when ctx ends.
func memoryWarnings(ctx context.Context) <-chan struct{} {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGUSR1)
	out := make(chan struct{})
	go func() {
		defer close(out)
		defer signal.Stop(sig)
		for {
			select {
			case <-ctx.Done():
				return
			case <-sig:
				select {
				case out <- struct{}{}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
