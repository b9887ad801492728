// Package app wires the locator, engine bridge, router, remote client and
// preference store of one process together.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"keyboardai/internal/config"
	"keyboardai/internal/engine"
	"keyboardai/internal/events"
	"keyboardai/internal/locator"
	"keyboardai/internal/prefs"
	"keyboardai/internal/prompt"
	"keyboardai/internal/remote"
	"keyboardai/internal/router"
	"keyboardai/pkg/types"
)

// App is the per-process composition of the subsystem.
type App struct {
	cfg      config.Config
	log      zerolog.Logger
	store    prefs.Store
	settings *prefs.Settings
	locator  *locator.Locator
	engine   *engine.Bridge
	router   *router.Router
	started  time.Time
}

// Options overrides pieces of the wiring, mostly for tests.
type Options struct {
	// Native replaces the backend selected by cfg.Backend.
	Native engine.Native
	// Store replaces the preference store opened from cfg.PrefsPath.
	Store prefs.Store
	// Publisher receives lifecycle events in addition to the metrics counter.
	Publisher events.Publisher
	Logger    *zerolog.Logger
}

// NativeFor builds the native backend named by cfg.Backend.
func NativeFor(cfg config.Config) (engine.Native, error) {
	switch cfg.Backend {
	case config.BackendLlama, "":
		return engine.NewLlamaNative(), nil
	case config.BackendShim:
		return engine.OpenShim(cfg.ShimLibrary)
	case config.BackendStub:
		return engine.NewStubNative("stub", "no native engine configured"), nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

// New validates cfg and builds an App. Callers must Close it.
func New(cfg config.Config, opts Options) (*App, error) {
	cfg, err := cfg.ExpandPaths()
	if err != nil {
		return nil, err
	}
	if opts.Native == nil {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	l := zerolog.Nop()
	if opts.Logger != nil {
		l = *opts.Logger
	}

	native := opts.Native
	if native == nil {
		if native, err = NativeFor(cfg); err != nil {
			return nil, err
		}
	}
	store := opts.Store
	if store == nil {
		if cfg.PrefsPath == "" {
			store = prefs.NewMemory()
		} else if store, err = prefs.Open(cfg.PrefsPath); err != nil {
			return nil, err
		}
	}
	pub := events.Multi{events.Metrics{}, opts.Publisher}

	a := &App{cfg: cfg, log: l, store: store, started: time.Now()}
	a.settings = prefs.NewSettings(store, &l)
	a.locator = locator.New(locator.Config{
		SharedDir:     cfg.SharedDir,
		BundleRoots:   cfg.BundleRoots,
		CanonicalName: cfg.ModelName,
		Publisher:     pub,
		Logger:        &l,
	})
	a.engine = engine.New(engine.Config{
		Native:      native,
		Locator:     a.locator,
		ContextSize: cfg.ContextSize,
		Threads:     cfg.Threads,
		Publisher:   pub,
		Logger:      &l,
	})
	rc := remote.New(remote.Config{
		Settings: a.settings,
		Timeout:  time.Duration(cfg.RemoteTimeoutSec) * time.Second,
		Logger:   &l,
	})
	a.router = router.New(router.Config{
		Local:       a.engine,
		Remote:      rc,
		Policy:      a.settings,
		OfflineOnly: cfg.OfflineOnly,
		Logger:      &l,
	})
	return a, nil
}

// Config returns the effective configuration with paths expanded.
func (a *App) Config() config.Config { return a.cfg }

// Engine returns the engine bridge.
func (a *App) Engine() *engine.Bridge { return a.engine }

// Locator returns the model locator.
func (a *App) Locator() *locator.Locator { return a.locator }

// Prefs returns the typed preference accessors.
func (a *App) Prefs() *prefs.Settings { return a.settings }

// Transform routes one request.
func (a *App) Transform(ctx context.Context, text string, mode prompt.Mode, style prompt.Style) (string, error) {
	return a.router.Transform(ctx, text, mode, style)
}

// Ready reports whether the engine has a model loaded.
func (a *App) Ready() bool { return a.engine.Ready() }

// Status reports engine, installed model and routing policy.
func (a *App) Status() types.StatusResponse {
	st := types.StatusResponse{
		Engine:         a.engine.Status(),
		Policy:         a.router.Policy(),
		UptimeSeconds:  int64(time.Since(a.started).Seconds()),
		ServerTimeUnix: time.Now().Unix(),
	}
	if m, ok := a.locator.Installed(); ok {
		st.Installed = &m
		st.InstalledSize = locator.FileSize(m.Path)
	}
	return st
}

// InstallModel provisions the shared store and copies the bundled model into it.
func (a *App) InstallModel(ctx context.Context) (types.ModelAsset, error) {
	return a.locator.Install(ctx)
}

// ResetModel unloads the engine, then removes installed models.
func (a *App) ResetModel(ctx context.Context) error {
	a.engine.Unload()
	return a.locator.Reset(ctx)
}

// UnloadEngine releases the native engine. The next generation reloads it.
func (a *App) UnloadEngine() { a.engine.Unload() }

// Settings reports the user-editable settings.
func (a *App) Settings() types.Settings { return a.settings.Snapshot() }

// ApplySettings writes in and returns the resulting settings.
func (a *App) ApplySettings(in types.Settings) (types.Settings, error) {
	if err := a.settings.Apply(in); err != nil {
		return types.Settings{}, err
	}
	return a.settings.Snapshot(), nil
}

// Close stops the engine worker, unloads the engine and closes the store.
func (a *App) Close() error {
	_ = a.engine.Close()
	return a.store.Close()
}
