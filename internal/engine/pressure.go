package engine

import "context"

// WatchMemoryPressure unloads the engine every time a signal arrives on
// warnings, until ctx ends or warnings is closed. The next generation
// reloads the model lazily.
func (b *Bridge) WatchMemoryPressure(ctx context.Context, warnings <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-warnings:
			if !ok {
				return
			}
			b.log.Warn().Msg("memory pressure, unloading engine")
			b.Unload()
		}
	}
}
