package config

import (
	"fmt"

	"keyboardai/internal/common/fsutil"
)

// Config holds runtime parameters shared by the daemon and one-shot commands.
// Zero values mean "unspecified".
type Config struct {
	// Addr the HTTP daemon listens on.
	Addr string `json:"addr" yaml:"addr" toml:"addr"`
	// SharedDir is the store every process can read. Empty means not provisioned.
	SharedDir string `json:"shared_dir" yaml:"shared_dir" toml:"shared_dir"`
	// BundleRoots are searched for a bundled model, in priority order.
	BundleRoots []string `json:"bundle_roots" yaml:"bundle_roots" toml:"bundle_roots"`
	ModelName   string   `json:"model_name" yaml:"model_name" toml:"model_name"`
	PrefsPath   string   `json:"prefs_path" yaml:"prefs_path" toml:"prefs_path"`
	// Backend selects the native engine: llama, shim or stub.
	Backend     string `json:"backend" yaml:"backend" toml:"backend"`
	ShimLibrary string `json:"shim_library" yaml:"shim_library" toml:"shim_library"`
	ContextSize int    `json:"context_size" yaml:"context_size" toml:"context_size"`
	Threads     int    `json:"threads" yaml:"threads" toml:"threads"`
	OfflineOnly bool   `json:"offline_only" yaml:"offline_only" toml:"offline_only"`
	// RemoteTimeoutSec bounds one remote call.
	RemoteTimeoutSec int    `json:"remote_timeout_sec" yaml:"remote_timeout_sec" toml:"remote_timeout_sec"`
	LogLevel         string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFile          string `json:"log_file" yaml:"log_file" toml:"log_file"`
	// MaxBodyBytes caps JSON request bodies of the HTTP daemon.
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	// TransformTimeoutSec bounds one POST /transform, local or remote. 0 disables.
	TransformTimeoutSec int      `json:"transform_timeout_sec" yaml:"transform_timeout_sec" toml:"transform_timeout_sec"`
	CORSEnabled         bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins         []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
}

// Backend names.
const (
	BackendLlama = "llama"
	BackendShim  = "shim"
	BackendStub  = "stub"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:                "127.0.0.1:8088",
		SharedDir:           "~/.local/share/keyboardai/shared",
		BundleRoots:         []string{"~/.local/share/keyboardai/bundle"},
		ModelName:           "gemma-3-270m-it.gguf",
		PrefsPath:           "~/.local/share/keyboardai/prefs.db",
		Backend:             BackendLlama,
		ContextSize:         512,
		RemoteTimeoutSec:    30,
		MaxBodyBytes:        1 << 20,
		TransformTimeoutSec: 60,
		LogLevel:            "info",
	}
}

// Merge returns c with every non-zero field of over applied on top.
func (c Config) Merge(over Config) Config {
	setStr := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, v int) {
		if v != 0 {
			*dst = v
		}
	}
	setStr(&c.Addr, over.Addr)
	setStr(&c.SharedDir, over.SharedDir)
	if len(over.BundleRoots) > 0 {
		c.BundleRoots = append([]string(nil), over.BundleRoots...)
	}
	setStr(&c.ModelName, over.ModelName)
	setStr(&c.PrefsPath, over.PrefsPath)
	setStr(&c.Backend, over.Backend)
	setStr(&c.ShimLibrary, over.ShimLibrary)
	setInt(&c.ContextSize, over.ContextSize)
	setInt(&c.Threads, over.Threads)
	setInt(&c.RemoteTimeoutSec, over.RemoteTimeoutSec)
	setInt(&c.TransformTimeoutSec, over.TransformTimeoutSec)
	if over.MaxBodyBytes != 0 {
		c.MaxBodyBytes = over.MaxBodyBytes
	}
	setStr(&c.LogLevel, over.LogLevel)
	setStr(&c.LogFile, over.LogFile)
	c.OfflineOnly = c.OfflineOnly || over.OfflineOnly
	c.CORSEnabled = c.CORSEnabled || over.CORSEnabled
	if len(over.CORSOrigins) > 0 {
		c.CORSOrigins = append([]string(nil), over.CORSOrigins...)
	}
	return c
}

// ExpandPaths expands a leading '~' in every path field.
func (c Config) ExpandPaths() (Config, error) {
	var err error
	for _, p := range []*string{&c.SharedDir, &c.PrefsPath, &c.ShimLibrary, &c.LogFile} {
		if *p, err = fsutil.ExpandHome(*p); err != nil {
			return c, err
		}
	}
	roots := make([]string, 0, len(c.BundleRoots))
	for _, r := range c.BundleRoots {
		e, err := fsutil.ExpandHome(r)
		if err != nil {
			return c, err
		}
		roots = append(roots, e)
	}
	c.BundleRoots = roots
	return c, nil
}

// Validate checks values that have a fixed set of choices.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendLlama, BackendShim, BackendStub:
	default:
		return fmt.Errorf("unknown backend %q (want llama, shim or stub)", c.Backend)
	}
	if c.Backend == BackendShim && c.ShimLibrary == "" {
		return fmt.Errorf("backend shim requires shim_library")
	}
	if c.ContextSize < 0 || c.Threads < 0 || c.RemoteTimeoutSec < 0 || c.TransformTimeoutSec < 0 || c.MaxBodyBytes < 0 {
		return fmt.Errorf("context_size, threads, timeouts and max_body_bytes must not be negative")
	}
	return nil
}
