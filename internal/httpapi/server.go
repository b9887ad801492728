// Package httpapi exposes the transform router and the model lifecycle over a
// local HTTP API for host surfaces that are not linked against the module.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"keyboardai/internal/prompt"
	"keyboardai/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Transform(ctx context.Context, text string, mode prompt.Mode, style prompt.Style) (string, error)
	Status() types.StatusResponse
	Ready() bool
	InstallModel(ctx context.Context) (types.ModelAsset, error)
	ResetModel(ctx context.Context) error
	UnloadEngine()
	Settings() types.Settings
	ApplySettings(in types.Settings) (types.Settings, error)
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: orDefault(corsAllowedOrigins, []string{"*"}),
			AllowedMethods: orDefault(corsAllowedMethods, []string{"GET", "POST", "PUT", "OPTIONS"}),
			AllowedHeaders: orDefault(corsAllowedHeaders, []string{"Content-Type", "X-Log-Level"}),
			MaxAge:         300,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	})

	r.Post("/transform", func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lvl := requestLogLevel(r)
		fail := func(resp types.ErrorResponse, err error) {
			incrementRejected(rejectReason(resp.Code))
			writeErrorResponse(w, resp)
			logEnd(r, lvl, resp.Code, start, err)
		}
		var req types.TransformRequest
		if resp, ok := decodeJSON(w, r, &req); !ok {
			fail(resp, nil)
			return
		}
		// Basic validation
		if strings.TrimSpace(req.Text) == "" {
			fail(types.ErrorResponse{Error: "text is required", Code: http.StatusBadRequest}, nil)
			return
		}
		mode, err := prompt.ParseMode(req.Mode)
		if err != nil {
			fail(types.ErrorResponse{Error: err.Error(), Code: http.StatusBadRequest}, nil)
			return
		}
		style := prompt.StyleFormal
		if req.Style != "" {
			if style, err = prompt.ParseStyle(req.Style); err != nil {
				fail(types.ErrorResponse{Error: err.Error(), Code: http.StatusBadRequest}, nil)
				return
			}
		}
		if lvl >= LevelDebug {
			zlog.Debug().Str("mode", string(mode)).Str("style", string(style)).Int("chars", len(req.Text)).Msg("transform start")
		}

		// Join server base context with request context so shutdown cancels work too.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		if transformTimeout > 0 {
			var tcancel context.CancelFunc
			ctx, tcancel = context.WithTimeout(ctx, time.Duration(transformTimeout)*time.Second)
			defer tcancel()
		}
		out, err := svc.Transform(ctx, req.Text, mode, style)
		if err != nil {
			// If context was canceled (client disconnect), just return.
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			fail(errorResponse(err), err)
			return
		}
		writeJSON(w, http.StatusOK, types.TransformResponse{Text: out})
		logEnd(r, lvl, http.StatusOK, start, nil)
	})

	r.Post("/model/install", func(w http.ResponseWriter, r *http.Request) {
		m, err := svc.InstallModel(r.Context())
		if err != nil {
			writeErrorResponse(w, errorResponse(err))
			return
		}
		zlog.Info().Str("model", m.Path).Msg("model installed")
		writeJSON(w, http.StatusOK, m)
	})

	r.Post("/model/reset", func(w http.ResponseWriter, r *http.Request) {
		if err := svc.ResetModel(r.Context()); err != nil {
			writeErrorResponse(w, errorResponse(err))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.Post("/engine/unload", func(w http.ResponseWriter, r *http.Request) {
		svc.UnloadEngine()
		w.WriteHeader(http.StatusNoContent)
	})

	r.Get("/settings", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Settings())
	})

	r.Put("/settings", func(w http.ResponseWriter, r *http.Request) {
		var in types.Settings
		if resp, ok := decodeJSON(w, r, &in); !ok {
			writeErrorResponse(w, resp)
			return
		}
		out, err := svc.ApplySettings(in)
		if err != nil {
			writeErrorResponse(w, errorResponse(err))
			return
		}
		writeJSON(w, http.StatusOK, out)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		// the engine loads lazily on the first transform
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("not loaded"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

// decodeJSON checks the content type and decodes a size-limited body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) (types.ErrorResponse, bool) {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		return types.ErrorResponse{Error: "Content-Type must be application/json", Code: http.StatusUnsupportedMediaType}, false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return types.ErrorResponse{Error: "request body too large", Code: http.StatusRequestEntityTooLarge}, false
		}
		return types.ErrorResponse{Error: "invalid JSON body", Code: http.StatusBadRequest}, false
	}
	return types.ErrorResponse{}, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func orDefault(v, def []string) []string {
	if len(v) == 0 {
		return def
	}
	return v
}
