// Package locator finds the model asset and materializes it into the shared
// store so every process of the application family can load it.
package locator

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"keyboardai/internal/common/fsutil"
	"keyboardai/internal/events"
	"keyboardai/internal/registry"
	"keyboardai/pkg/types"
)

// Locator guarantees, when asked, a usable model path, preferring the shared store.
type Locator struct {
	cfg Config
	log zerolog.Logger
	pub events.Publisher
	sf  singleflight.Group
}

// New constructs a Locator from cfg, applying defaults.
func New(cfg Config) *Locator {
	cfg = cfg.withDefaults()
	return &Locator{
		cfg: cfg,
		log: cfg.Logger.With().Str("component", "locator").Logger(),
		pub: cfg.Publisher,
	}
}

// SharedDir returns the configured shared store path (may be empty).
func (l *Locator) SharedDir() string { return l.cfg.SharedDir }

// SharedReachable reports whether the shared store is provisioned.
func (l *Locator) SharedReachable() bool {
	return l.cfg.SharedDir != "" && fsutil.IsDir(l.cfg.SharedDir)
}

// Installed returns the model currently in the shared store, if any.
func (l *Locator) Installed() (types.ModelAsset, bool) {
	if !l.SharedReachable() {
		return types.ModelAsset{}, false
	}
	models, err := registry.ScanDir(l.cfg.SharedDir, l.cfg.Ext)
	if err != nil || len(models) == 0 {
		return types.ModelAsset{}, false
	}
	return models[0], true
}

// Bundled returns the bundle candidate this process would install.
func (l *Locator) Bundled() (types.ModelAsset, bool) {
	return registry.FindBundled(l.cfg.BundleRoots, l.cfg.CanonicalName, l.cfg.Ext)
}

// Locate returns a usable model. Order: shared store hit, then a bundle
// candidate copied into the shared store (copy failures degrade to the bundle
// path), then the bundle path itself when the shared store is unreachable.
// Concurrent calls within the process share one search.
func (l *Locator) Locate(ctx context.Context) (types.ModelAsset, error) {
	if err := ctx.Err(); err != nil {
		return types.ModelAsset{}, err
	}
	v, err, _ := l.sf.Do("locate", func() (any, error) {
		return l.locate(false)
	})
	if err != nil {
		return types.ModelAsset{}, err
	}
	return v.(types.ModelAsset), nil
}

func (l *Locator) locate(strict bool) (types.ModelAsset, error) {
	reachable := l.SharedReachable()
	if reachable {
		if m, ok := l.Installed(); ok {
			l.log.Debug().Str("model", m.Name).Msg("model found in shared store")
			l.pub.Publish(events.Event{Name: "locate_shared_hit", Subject: m.Name, Fields: map[string]any{"path": m.Path}})
			return m, nil
		}
	}

	cand, ok := l.Bundled()
	if !ok {
		l.log.Error().Int("roots", len(l.cfg.BundleRoots)).Msg("no model found in shared store or bundle")
		l.pub.Publish(events.Event{Name: "locate_not_found", Fields: map[string]any{"roots": len(l.cfg.BundleRoots)}})
		return types.ModelAsset{}, ErrModelNotFound(len(l.cfg.BundleRoots))
	}
	l.pub.Publish(events.Event{Name: "locate_bundle_hit", Subject: cand.Name, Fields: map[string]any{"path": cand.Path}})

	if !reachable {
		if strict {
			return types.ModelAsset{}, ErrContainerUnavailable(l.cfg.SharedDir)
		}
		l.log.Warn().Str("shared_dir", l.cfg.SharedDir).Str("model", cand.Path).
			Msg("shared store unavailable, using bundled model directly")
		return cand, nil
	}

	dst := filepath.Join(l.cfg.SharedDir, cand.Name)
	l.pub.Publish(events.Event{Name: "copy_start", Subject: cand.Name, Fields: map[string]any{"src": cand.Path, "dst": dst}})
	copied, err := fsutil.CopyIfAbsent(cand.Path, dst)
	if err != nil {
		l.pub.Publish(events.Event{Name: "copy_failed", Subject: cand.Name, Fields: map[string]any{"error": err.Error()}})
		if strict {
			return types.ModelAsset{}, fmt.Errorf("install %s: %w", cand.Name, err)
		}
		l.log.Error().Err(err).Str("model", cand.Name).Msg("copy to shared store failed, falling back to bundled model")
		return cand, nil
	}
	if err := fsutil.ExcludeFromBackup(dst); err != nil {
		l.log.Debug().Err(err).Str("path", dst).Msg("backup exclusion not applied")
	}
	if copied {
		l.log.Info().Str("model", cand.Name).Str("size", FileSize(dst)).Msg("model copied to shared store")
		l.pub.Publish(events.Event{Name: "copy_done", Subject: cand.Name, Fields: map[string]any{"dst": dst}})
	} else {
		l.pub.Publish(events.Event{Name: "copy_skipped_exists", Subject: cand.Name, Fields: map[string]any{"dst": dst}})
	}
	m := cand
	m.Path = dst
	m.Location = types.LocationShared
	return m, nil
}

// FileSize renders the size of the file at path, e.g. "50.0 MB", or "-".
func FileSize(path string) string { return fsutil.FileSizeMB(path) }
