package locator

import (
	"context"
	"errors"
	"fmt"
	"os"

	"keyboardai/internal/common/fsutil"
	"keyboardai/internal/events"
	"keyboardai/internal/registry"
	"keyboardai/pkg/types"
)

// Install is the host-side variant of Locate: it provisions the shared store
// and requires the model to end up there. Copy failures are returned instead
// of degrading to the bundle path.
func (l *Locator) Install(ctx context.Context) (types.ModelAsset, error) {
	if err := ctx.Err(); err != nil {
		return types.ModelAsset{}, err
	}
	if l.cfg.SharedDir == "" {
		return types.ModelAsset{}, ErrContainerUnavailable("")
	}
	if err := fsutil.ProvisionDir(l.cfg.SharedDir); err != nil {
		return types.ModelAsset{}, fmt.Errorf("%w: %v", ErrContainerUnavailable(l.cfg.SharedDir), err)
	}
	v, err, _ := l.sf.Do("install", func() (any, error) {
		return l.locate(true)
	})
	if err != nil {
		return types.ModelAsset{}, err
	}
	m := v.(types.ModelAsset)
	l.log.Info().Str("model", m.Name).Str("size", FileSize(m.Path)).Msg("model installed")
	return m, nil
}

// Reset removes every model file from the shared store so the next Locate or
// Install starts from a clean slate.
func (l *Locator) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !l.SharedReachable() {
		return ErrContainerUnavailable(l.cfg.SharedDir)
	}
	models, err := registry.ScanDir(l.cfg.SharedDir, l.cfg.Ext)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrContainerUnavailable(l.cfg.SharedDir), err)
	}
	var errs []error
	removed := 0
	for _, m := range models {
		if err := os.Remove(m.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			l.log.Error().Err(err).Str("path", m.Path).Msg("remove model failed")
			errs = append(errs, err)
			continue
		}
		removed++
	}
	l.log.Info().Int("removed", removed).Msg("shared store reset")
	l.pub.Publish(events.Event{Name: "reset_done", Fields: map[string]any{"removed": removed}})
	return errors.Join(errs...)
}
