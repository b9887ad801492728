// Package cli implements the keyboardai command tree.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"keyboardai/internal/app"
	"keyboardai/internal/config"
)

// options holds persistent flag values.
type options struct {
	configPath  string
	logLevel    string
	logFile     string
	sharedDir   string
	bundleRoots []string
	prefsPath   string
	backend     string
	shimLib     string
	offlineOnly bool
}

// state is shared by every command of one invocation.
type state struct {
	opts   options
	cfg    config.Config
	log    zerolog.Logger
	stderr io.Writer
	// logFile is the rotated log file opened by newLogger, if any.
	logFile io.Closer
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Execute runs the command tree with args.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	st := &state{stderr: stderr}
	root := buildRootCmd(st)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	defer st.close()
	return root.ExecuteContext(ctx)
}

func (st *state) close() {
	if st.logFile != nil {
		_ = st.logFile.Close()
		st.logFile = nil
	}
}

func buildRootCmd(st *state) *cobra.Command {
	root := &cobra.Command{
		Use:           "keyboardai",
		Short:         "On-device text enhancement and replies with optional remote fallback",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&st.opts.configPath, "config", envStr("KEYBOARDAI_CONFIG", ""), "Config file (.yaml, .json or .toml)")
	pf.StringVar(&st.opts.logLevel, "log-level", envStr("KEYBOARDAI_LOG_LEVEL", ""), "Log level: debug|info|warn|error")
	pf.StringVar(&st.opts.logFile, "log-file", "", "Also write JSON logs to this rotated file")
	pf.StringVar(&st.opts.sharedDir, "shared-dir", "", "Shared asset store directory")
	pf.StringArrayVar(&st.opts.bundleRoots, "bundle-root", nil, "Directory searched for a bundled model (repeatable, in priority order)")
	pf.StringVar(&st.opts.prefsPath, "prefs", "", "Preference database file")
	pf.StringVar(&st.opts.backend, "backend", "", "Native backend: llama|shim|stub")
	pf.StringVar(&st.opts.shimLib, "shim-lib", "", "Shared library for the shim backend")
	pf.BoolVar(&st.opts.offlineOnly, "offline-only", false, "Never fall back to the remote service")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd, st.opts)
		if err != nil {
			return err
		}
		st.cfg = cfg
		st.log, st.logFile = newLogger(cfg.LogLevel, cfg.LogFile, st.stderr)
		return nil
	}

	root.AddCommand(
		newServeCmd(st),
		newTransformCmd(st),
		newReplyCmd(st),
		newModelCmd(st),
		newSettingsCmd(st),
		newDoctorCmd(st),
	)
	return root
}

// resolveConfig layers defaults, the config file and explicitly set flags.
func resolveConfig(cmd *cobra.Command, o options) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		fc, err := config.Load(o.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = cfg.Merge(fc)
	}
	f := cmd.Flags()
	if f.Changed("log-level") || o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if f.Changed("log-file") {
		cfg.LogFile = o.logFile
	}
	if f.Changed("shared-dir") {
		cfg.SharedDir = o.sharedDir
	}
	if f.Changed("bundle-root") {
		cfg.BundleRoots = o.bundleRoots
	}
	if f.Changed("prefs") {
		cfg.PrefsPath = o.prefsPath
	}
	if f.Changed("backend") {
		cfg.Backend = o.backend
	}
	if f.Changed("shim-lib") {
		cfg.ShimLibrary = o.shimLib
	}
	if f.Changed("offline-only") {
		cfg.OfflineOnly = o.offlineOnly
	}
	return cfg, cfg.Validate()
}

// openApp builds the App for one command. Callers must Close it.
func (st *state) openApp() (*app.App, error) {
	return app.New(st.cfg, app.Options{Logger: &st.log})
}
