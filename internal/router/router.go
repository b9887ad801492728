// Package router decides, per request, whether text is transformed by the
// on-device engine or the remote service.
//
// Routing flags are read from the preference store on every call so a change
// made by another process applies to the next request. Local is tried first
// when preferred; a failed local attempt goes remote only when fallback is
// allowed, with the caller's original text, mode and style.
package router

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"keyboardai/internal/engine"
	"keyboardai/internal/prompt"
	"keyboardai/pkg/types"
)

// Sampling parameters for local generation.
const (
	ReplyMaxTokens   = 160
	EnhanceMaxTokens = 100
	Temperature      = 0.6
	TopK             = 40
	TopP             = 0.9
)

// Generator is the local engine.
type Generator interface {
	Generate(ctx context.Context, req engine.Request) (string, error)
}

// Remote is the remote transform capability.
type Remote interface {
	Transform(ctx context.Context, text, mode, style string) (string, error)
}

// Policy supplies the routing flags.
type Policy interface {
	PreferLocal() bool
	AllowFallback() bool
}

// Config configures a Router.
type Config struct {
	Local  Generator
	Remote Remote
	Policy Policy
	// OfflineOnly forces fallback off regardless of the stored flag.
	OfflineOnly bool
	// Prompt builds the engine prompt. Defaults to prompt.Build.
	Prompt func(text string, mode prompt.Mode, style prompt.Style) string
	Logger *zerolog.Logger
}

// Router routes transform requests.
type Router struct {
	cfg Config
	log zerolog.Logger
}

// New constructs a Router.
func New(cfg Config) *Router {
	if cfg.Prompt == nil {
		cfg.Prompt = prompt.Build
	}
	l := zerolog.Nop()
	if cfg.Logger != nil {
		l = cfg.Logger.With().Str("component", "router").Logger()
	}
	return &Router{cfg: cfg, log: l}
}

// MaxTokens is the generation budget for mode.
func MaxTokens(mode prompt.Mode) int {
	if mode == prompt.ModeReply {
		return ReplyMaxTokens
	}
	return EnhanceMaxTokens
}

func (r *Router) preferLocal() bool {
	return r.cfg.Policy == nil || r.cfg.Policy.PreferLocal()
}

func (r *Router) allowFallback() bool {
	if r.cfg.OfflineOnly || r.cfg.Policy == nil {
		return false
	}
	return r.cfg.Policy.AllowFallback()
}

// Policy reports the routing flags as they read right now.
func (r *Router) Policy() types.PolicyStatus {
	return types.PolicyStatus{
		PreferLocal:   r.preferLocal(),
		AllowFallback: r.allowFallback(),
		OfflineOnly:   r.cfg.OfflineOnly,
	}
}

// Transform turns text into enhanced text or a reply.
func (r *Router) Transform(ctx context.Context, text string, mode prompt.Mode, style prompt.Style) (string, error) {
	if !r.preferLocal() {
		return r.remote(ctx, pathRemote, text, mode, style)
	}

	start := time.Now()
	out, err := r.local(ctx, text, mode, style)
	transformDuration.WithLabelValues(pathLocal).Observe(time.Since(start).Seconds())
	transformsTotal.WithLabelValues(pathLocal, outcome(err)).Inc()
	if err == nil {
		return out, nil
	}
	// fallback is read independently of the first flag
	if !r.allowFallback() {
		r.log.Warn().Err(err).Msg("local generation failed, fallback disabled")
		return "", ErrLocalModelUnavailable(err)
	}
	r.log.Info().Err(err).Msg("local generation failed, falling back to remote")
	return r.remote(ctx, pathFallback, text, mode, style)
}

func (r *Router) local(ctx context.Context, text string, mode prompt.Mode, style prompt.Style) (string, error) {
	if r.cfg.Local == nil {
		return "", engine.ErrUnavailable("no local engine", nil)
	}
	return r.cfg.Local.Generate(ctx, engine.Request{
		Prompt:      r.cfg.Prompt(text, mode, style),
		MaxTokens:   MaxTokens(mode),
		Temperature: Temperature,
		TopK:        TopK,
		TopP:        TopP,
	})
}

// remote returns the remote result or error unchanged.
func (r *Router) remote(ctx context.Context, path, text string, mode prompt.Mode, style prompt.Style) (string, error) {
	start := time.Now()
	var out string
	err := ErrRemoteNotConfigured
	if r.cfg.Remote != nil {
		out, err = r.cfg.Remote.Transform(ctx, text, string(mode), string(style))
	}
	transformDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	transformsTotal.WithLabelValues(path, outcome(err)).Inc()
	if err != nil {
		r.log.Warn().Err(err).Str("path", path).Msg("remote transform failed")
	}
	return out, err
}
