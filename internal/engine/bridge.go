package engine

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"keyboardai/internal/events"
	"keyboardai/pkg/types"
)

// State is the lifecycle state of a Bridge.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateReady         State = "ready"
)

// Bridge wraps one native engine behind an idempotent lifecycle and a serial
// worker. One Bridge per process is the convention; it is not enforced.
type Bridge struct {
	cfg    Config
	native Native
	log    zerolog.Logger
	pub    events.Publisher

	// nativeMu serializes every native call: init, generate and unload.
	nativeMu sync.Mutex

	mu        sync.RWMutex
	state     State
	modelPath string
	lastErr   string

	jobs chan job
	quit chan struct{}
	// submitMu orders enqueues before close(quit) so drain sees every queued job.
	submitMu  sync.RWMutex
	closeOnce sync.Once
	wg        sync.WaitGroup

	queued   atomic.Int64
	inflight atomic.Int64
	total    atomic.Uint64
}

// New constructs a Bridge and starts its serial worker.
func New(cfg Config) *Bridge {
	cfg = cfg.withDefaults()
	b := &Bridge{
		cfg:    cfg,
		native: cfg.Native,
		log:    cfg.Logger.With().Str("component", "engine").Str("backend", cfg.Native.Name()).Logger(),
		pub:    cfg.Publisher,
		state:  StateUninitialized,
		jobs:   make(chan job, cfg.QueueDepth),
		quit:   make(chan struct{}),
	}
	b.wg.Add(1)
	go b.run()
	return b
}

// State returns the current lifecycle state.
func (b *Bridge) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// Ready reports whether the native engine is loaded.
func (b *Bridge) Ready() bool { return b.State() == StateReady }

// LastError returns the last init failure recorded for diagnostics.
func (b *Bridge) LastError() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastErr
}

// Init loads the model at path. It is a no-op when already ready. On failure
// the bridge stays uninitialized and records LastError; it does not retry.
func (b *Bridge) Init(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.nativeMu.Lock()
	defer b.nativeMu.Unlock()
	return b.initLocked(path)
}

// EnsureReady locates the model and initializes the engine if needed.
func (b *Bridge) EnsureReady(ctx context.Context) error {
	b.nativeMu.Lock()
	defer b.nativeMu.Unlock()
	return b.ensureReadyLocked(ctx)
}

func (b *Bridge) ensureReadyLocked(ctx context.Context) error {
	if b.Ready() {
		return nil
	}
	if b.cfg.Locator == nil {
		err := errors.New("no model locator configured")
		b.recordErr(err.Error())
		return err
	}
	m, err := b.cfg.Locator.Locate(ctx)
	if err != nil {
		b.recordErr(err.Error())
		b.log.Error().Err(err).Msg("locate model failed")
		return err
	}
	return b.initLocked(m.Path)
}

func (b *Bridge) initLocked(path string) error {
	if b.Ready() {
		return nil
	}
	name := filepath.Base(path)
	if path == "" {
		b.recordErr("init failed: empty model path")
		return ErrInitFailed(b.LastError())
	}
	b.log.Info().Str("model", path).Int("n_ctx", b.cfg.ContextSize).Int("n_threads", b.cfg.Threads).Msg("initializing engine")
	b.pub.Publish(events.Event{Name: "init_start", Subject: name, Fields: map[string]any{"n_ctx": b.cfg.ContextSize, "n_threads": b.cfg.Threads}})
	if !b.native.Init(path, int32(b.cfg.ContextSize), int32(b.cfg.Threads)) {
		msg := "init failed for " + name
		if d, ok := b.native.(Diagnoser); ok {
			if detail := d.LastError(); detail != "" {
				msg += ": " + detail
			}
		}
		b.recordErr(msg)
		b.log.Error().Str("model", path).Msg(msg)
		b.pub.Publish(events.Event{Name: "init_failed", Subject: name, Fields: map[string]any{"error": msg}})
		return ErrInitFailed(msg)
	}
	b.mu.Lock()
	b.state = StateReady
	b.modelPath = path
	b.lastErr = ""
	b.mu.Unlock()
	b.log.Info().Str("model", path).Msg("engine ready")
	b.pub.Publish(events.Event{Name: "init_ready", Subject: name})
	return nil
}

func (b *Bridge) recordErr(msg string) {
	b.mu.Lock()
	b.lastErr = msg
	b.mu.Unlock()
}

// Unload releases native resources synchronously. An in-flight native call
// finishes first. The bridge always ends uninitialized, whatever the native
// teardown reports.
func (b *Bridge) Unload() {
	b.nativeMu.Lock()
	defer b.nativeMu.Unlock()
	b.mu.RLock()
	wasReady, path := b.state == StateReady, b.modelPath
	b.mu.RUnlock()
	if wasReady && !b.native.Unload() {
		b.log.Warn().Str("model", path).Msg("native unload reported failure")
	}
	b.mu.Lock()
	b.state = StateUninitialized
	b.modelPath = ""
	b.mu.Unlock()
	if wasReady {
		b.log.Info().Str("model", path).Msg("engine unloaded")
		b.pub.Publish(events.Event{Name: "unload_done", Subject: filepath.Base(path)})
	}
}

// Close stops the worker, fails queued jobs with ErrClosed and unloads.
func (b *Bridge) Close() error {
	b.closeOnce.Do(func() {
		b.submitMu.Lock()
		close(b.quit)
		b.submitMu.Unlock()
		b.wg.Wait()
		b.Unload()
	})
	return nil
}

// Status builds a snapshot for status reporting.
func (b *Bridge) Status() types.EngineStatus {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return types.EngineStatus{
		Backend:          b.native.Name(),
		State:            string(b.state),
		ModelPath:        b.modelPath,
		ContextSize:      b.cfg.ContextSize,
		Threads:          b.cfg.Threads,
		QueueLen:         int(b.queued.Load()),
		Inflight:         int(b.inflight.Load()),
		GenerationsTotal: b.total.Load(),
		LastError:        b.lastErr,
	}
}
