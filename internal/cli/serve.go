package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"keyboardai/internal/config"
	"keyboardai/internal/httpapi"
)

func newServeCmd(st *state) *cobra.Command {
	var (
		addr         string
		httpLogLevel string
		preload      bool
		cors         bool
		corsOrigins  string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local HTTP daemon",
		Long: "Run the local HTTP daemon. The engine loads on the first transform (or at start with --preload)\n" +
			"and is unloaded on SIGUSR1 or POST /engine/unload.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				st.cfg.Addr = addr
			}
			if cmd.Flags().Changed("cors") {
				st.cfg.CORSEnabled = cors
			}
			if origins := splitCSV(corsOrigins); len(origins) > 0 {
				st.cfg.CORSOrigins = origins
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := st.openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			configureHTTP(ctx, st.cfg, st.log, httpLogLevel)

			go a.Engine().WatchMemoryPressure(ctx, memoryWarnings(ctx))
			if preload {
				go func() {
					if err := a.Engine().EnsureReady(ctx); err != nil {
						st.log.Warn().Err(err).Msg("preload failed, will retry on first transform")
					}
				}()
			}

			srv := &http.Server{
				Addr:              st.cfg.Addr,
				Handler:           httpapi.NewMux(a),
				ReadHeaderTimeout: 10 * time.Second,
			}
			errc := make(chan error, 1)
			go func() {
				st.log.Info().Str("addr", st.cfg.Addr).Str("shared_dir", st.cfg.SharedDir).Str("backend", a.Engine().Status().Backend).Msg("keyboardai listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errc <- err
				}
				close(errc)
			}()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				st.log.Warn().Err(err).Msg("graceful shutdown error")
			}
			st.log.Info().Msg("keyboardai stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (default from config, 127.0.0.1:8088)")
	cmd.Flags().StringVar(&httpLogLevel, "http-log-level", envStr("KEYBOARDAI_HTTP_LOG_LEVEL", "error"), "Per-request log level: off|error|info|debug")
	cmd.Flags().BoolVar(&cors, "cors", false, "Enable CORS for browser clients")
	cmd.Flags().StringVar(&corsOrigins, "cors-origins", envStr("KEYBOARDAI_CORS_ORIGINS", ""), "Comma-separated allowed origins (default *)")
	cmd.Flags().BoolVar(&preload, "preload", false, "Load the engine at startup instead of on first use")
	return cmd
}

// configureHTTP applies cfg to the httpapi package settings.
func configureHTTP(ctx context.Context, cfg config.Config, log zerolog.Logger, httpLogLevel string) {
	httpapi.SetLogger(log)
	httpapi.SetDefaultLogLevel(httpLogLevel)
	httpapi.SetBaseContext(ctx)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetTransformTimeoutSeconds(int64(cfg.TransformTimeoutSec))
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSOrigins, nil, nil)
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
