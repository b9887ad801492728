// Package remote calls the remote transform service: POST {text, mode,
// style} and read back {"text": ...}.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"keyboardai/internal/prefs"
	"keyboardai/pkg/types"
)

// DefaultTimeout bounds one remote call when the caller's context has no
// earlier deadline.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of a failed response is kept in ServerError.
const maxErrorBody = 512

// Source supplies the endpoint and API key at call time.
type Source interface {
	Endpoint() string
	APIKey() string
}

// Config configures a Client.
type Config struct {
	Settings   Source
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *zerolog.Logger
}

// Client is the remote transform capability.
type Client struct {
	src     Source
	hc      *http.Client
	timeout time.Duration
	log     zerolog.Logger
}

// New constructs a Client.
func New(cfg Config) *Client {
	c := &Client{src: cfg.Settings, hc: cfg.HTTPClient, timeout: cfg.Timeout, log: zerolog.Nop()}
	if c.hc == nil {
		c.hc = http.DefaultClient
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if cfg.Logger != nil {
		c.log = cfg.Logger.With().Str("component", "remote").Logger()
	}
	return c
}

// endpointURL validates the configured endpoint. Only http and https with a
// host are accepted.
func endpointURL(raw string) (string, error) {
	e, ok := prefs.NormalizeEndpoint(raw)
	if !ok {
		return "", ErrBadResponse("no endpoint configured")
	}
	u, err := url.Parse(e)
	if err != nil {
		return "", ErrBadResponse("invalid endpoint: " + err.Error())
	}
	if s := strings.ToLower(u.Scheme); s != "http" && s != "https" {
		return "", ErrBadResponse("unsupported endpoint scheme " + u.Scheme)
	}
	if u.Host == "" {
		return "", ErrBadResponse("endpoint has no host")
	}
	return u.String(), nil
}

// Transform sends text to the remote service. Transport errors are returned
// as is.
func (c *Client) Transform(ctx context.Context, text, mode, style string) (string, error) {
	if c.src == nil {
		return "", ErrBadResponse("no endpoint configured")
	}
	endpoint, err := endpointURL(c.src.Endpoint())
	if err != nil {
		return "", err
	}
	body, err := json.Marshal(types.TransformRequest{Text: text, Mode: mode, Style: style})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", ErrBadResponse("build request: " + err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	if key := c.src.APIKey(); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("endpoint", endpoint).Msg("remote transform failed")
		return "", err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	c.log.Debug().Str("endpoint", endpoint).Int("status", resp.StatusCode).Dur("dur", time.Since(start)).Msg("remote transform")

	// a body carrying a string "text" is the answer, whatever the status
	var out gjson.Result
	if gjson.ValidBytes(data) {
		out = gjson.GetBytes(data, "text")
	}
	if out.Type == gjson.String {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			c.log.Debug().Int("status", resp.StatusCode).Msg("accepting text from non-2xx response")
		}
		return out.String(), nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b := string(data)
		if len(b) > maxErrorBody {
			b = b[:maxErrorBody]
		}
		return "", &ServerError{Status: resp.StatusCode, Body: strings.TrimSpace(b)}
	}
	if !gjson.ValidBytes(data) {
		return "", ErrBadResponse("response is not JSON")
	}
	return "", ErrBadResponse(`response has no string "text" field`)
}
