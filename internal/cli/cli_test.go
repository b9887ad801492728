package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"keyboardai/internal/app"
	"keyboardai/internal/config"
	"keyboardai/internal/httpapi"
	"keyboardai/internal/router"
	"keyboardai/pkg/types"
)

type env struct {
	root   string
	shared string
	bundle string
	base   []string
}

func newEnv(t *testing.T) env {
	t.Helper()
	root := t.TempDir()
	e := env{
		root:   root,
		shared: filepath.Join(root, "shared"),
		bundle: filepath.Join(root, "bundle"),
	}
	if err := os.MkdirAll(e.bundle, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(e.bundle, "gemma-3-270m-it.gguf"), make([]byte, 2048), 0o644); err != nil {
		t.Fatal(err)
	}
	e.base = []string{
		"--backend", "stub",
		"--log-level", "error",
		"--shared-dir", e.shared,
		"--bundle-root", e.bundle,
		"--prefs", filepath.Join(root, "prefs.db"),
	}
	return e
}

func (e env) run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	return e.runIn(t, nil, args...)
}

func (e env) runIn(t *testing.T, stdin io.Reader, args ...string) (string, string, error) {
	t.Helper()
	var out, errb bytes.Buffer
	root := buildRootCmd(&state{stderr: &errb})
	root.SetArgs(append(append([]string{}, e.base...), args...))
	root.SetOut(&out)
	root.SetErr(&errb)
	if stdin != nil {
		root.SetIn(stdin)
	}
	err := root.ExecuteContext(context.Background())
	return out.String(), errb.String(), err
}

func TestModel_InstallLocateReset(t *testing.T) {
	e := newEnv(t)
	out, _, err := e.run(t, "model", "install")
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	want := filepath.Join(e.shared, "gemma-3-270m-it.gguf")
	if !strings.Contains(out, want) {
		t.Fatalf("install output %q", out)
	}
	out, _, err = e.run(t, "model", "locate")
	if err != nil || strings.TrimSpace(out) != want {
		t.Fatalf("locate=%q,%v", out, err)
	}
	if _, _, err := e.run(t, "model", "reset"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := os.Stat(want); !os.IsNotExist(err) {
		t.Fatalf("model should be gone, stat err=%v", err)
	}
	// locate materializes the bundled model again
	out, _, err = e.run(t, "model", "locate")
	if err != nil || strings.TrimSpace(out) != want {
		t.Fatalf("locate after reset=%q,%v", out, err)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("model not copied back: %v", err)
	}
}

func TestModel_Info(t *testing.T) {
	e := newEnv(t)
	out, _, err := e.run(t, "model", "info")
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	var st types.StatusResponse
	if err := json.Unmarshal([]byte(out), &st); err != nil {
		t.Fatalf("decode: %v (%q)", err, out)
	}
	if st.Engine.Backend != "stub" || st.Engine.State != "uninitialized" || st.Installed != nil {
		t.Fatalf("status=%+v", st)
	}
}

func TestSettings_SetOnlyChangedFlags(t *testing.T) {
	e := newEnv(t)
	if _, _, err := e.run(t, "settings", "set", "--endpoint", "api.example.com", "--api-key", "k1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, _, err := e.run(t, "settings", "set", "--allow-fallback"); err != nil {
		t.Fatalf("set: %v", err)
	}
	out, _, err := e.run(t, "settings", "get")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if strings.Contains(out, "k1") {
		t.Fatalf("api key leaked: %s", out)
	}
	var s types.Settings
	if err := json.Unmarshal([]byte(out), &s); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.Endpoint == nil || *s.Endpoint != "https://api.example.com" || !s.APIKeySet {
		t.Fatalf("endpoint/key not kept: %s", out)
	}
	if s.AllowFallback == nil || !*s.AllowFallback || s.PreferLocal == nil || !*s.PreferLocal {
		t.Fatalf("flags: %s", out)
	}

	if _, _, err := e.run(t, "settings", "set", "--api-key", ""); err != nil {
		t.Fatalf("clear: %v", err)
	}
	out, _, _ = e.run(t, "settings", "get")
	if err := json.Unmarshal([]byte(out), &s); err != nil || s.APIKeySet {
		t.Fatalf("key should be cleared: %s", out)
	}
}

func TestTransform_NoFallbackPrintsInstallHint(t *testing.T) {
	e := newEnv(t)
	_, stderr, err := e.run(t, "transform", "--mode", "enhance", "hello there")
	if !router.IsLocalModelUnavailable(err) {
		t.Fatalf("got %v", err)
	}
	if !strings.Contains(stderr, router.InstallHint) {
		t.Fatalf("stderr=%q", stderr)
	}
}

func TestTransform_FallbackSaveReplyAndReplyLast(t *testing.T) {
	var got types.TransformRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"text":"Sounds good, see you then!"}`)
	}))
	defer srv.Close()

	e := newEnv(t)
	if _, _, err := e.run(t, "settings", "set", "--endpoint", srv.URL, "--allow-fallback"); err != nil {
		t.Fatalf("set: %v", err)
	}
	out, _, err := e.run(t, "transform", "--mode", "reply", "--style", "friendly", "--save-reply", "lunch at noon?")
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if strings.TrimSpace(out) != "Sounds good, see you then!" {
		t.Fatalf("out=%q", out)
	}
	if got.Text != "lunch at noon?" || got.Mode != "reply" || got.Style != "friendly" {
		t.Fatalf("remote saw %+v", got)
	}

	out, _, err = e.run(t, "reply", "last")
	if err != nil || strings.TrimSpace(out) != "Sounds good, see you then!" {
		t.Fatalf("reply last=%q,%v", out, err)
	}
	if _, _, err := e.run(t, "reply", "last"); err == nil {
		t.Fatalf("reply should be cleared after reading")
	}
}

func TestTransform_StickyModeAndStyle(t *testing.T) {
	var got types.TransformRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = io.WriteString(w, `{"text":"ok"}`)
	}))
	defer srv.Close()

	e := newEnv(t)
	if _, _, err := e.run(t, "settings", "set", "--endpoint", srv.URL, "--prefer-local=false"); err != nil {
		t.Fatalf("set: %v", err)
	}
	// send fields default to reply
	if _, _, err := e.run(t, "transform", "--return-key", "send", "x"); err != nil {
		t.Fatalf("transform: %v", err)
	}
	if got.Mode != "reply" || got.Style != "formal" {
		t.Fatalf("default sticky=%+v", got)
	}
	if _, _, err := e.run(t, "transform", "--return-key", "send", "--style", "concise", "x"); err != nil {
		t.Fatalf("transform: %v", err)
	}
	if _, _, err := e.run(t, "transform", "--return-key", "send", "x"); err != nil {
		t.Fatalf("transform: %v", err)
	}
	if got.Mode != "reply" || got.Style != "concise" {
		t.Fatalf("style not remembered: %+v", got)
	}
	// a different field keeps its own default
	if _, _, err := e.run(t, "transform", "x"); err != nil {
		t.Fatalf("transform: %v", err)
	}
	if got.Mode != "enhance" || got.Style != "formal" {
		t.Fatalf("other field=%+v", got)
	}
}

func TestTransform_StdinContext(t *testing.T) {
	var got types.TransformRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = io.WriteString(w, `{"text":"ok"}`)
	}))
	defer srv.Close()

	e := newEnv(t)
	if _, _, err := e.run(t, "settings", "set", "--endpoint", srv.URL, "--prefer-local=false"); err != nil {
		t.Fatalf("set: %v", err)
	}
	in := strings.NewReader("are we still on?\n> old quoted line\n--\nAlex\n")
	if _, _, err := e.runIn(t, in, "transform", "--mode", "reply", "--context", "-"); err != nil {
		t.Fatalf("transform: %v", err)
	}
	if got.Text != "are we still on?" {
		t.Fatalf("context not stripped: %q", got.Text)
	}
}

func TestTransform_InvalidMode(t *testing.T) {
	e := newEnv(t)
	if _, _, err := e.run(t, "transform", "--mode", "shout", "x"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestTransform_HintCountsDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"text":"ok"}`)
	}))
	defer srv.Close()

	e := newEnv(t)
	if _, _, err := e.run(t, "settings", "set", "--endpoint", srv.URL, "--prefer-local=false"); err != nil {
		t.Fatalf("set: %v", err)
	}
	tips := 0
	for i := 0; i < 7; i++ {
		_, stderr, err := e.run(t, "transform", "x")
		if err != nil {
			t.Fatalf("transform: %v", err)
		}
		if strings.Contains(stderr, "Tip:") {
			tips++
		}
	}
	if tips != 5 {
		t.Fatalf("tips shown %d times", tips)
	}
}

func TestDoctor(t *testing.T) {
	e := newEnv(t)
	out, _, err := e.run(t, "doctor")
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if !strings.Contains(out, "[ok] bundled model") || !strings.Contains(out, "[!!] native backend") {
		t.Fatalf("doctor output:\n%s", out)
	}
}

func TestResolveConfig_FileAndFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keyboardai.yaml")
	body := "addr: 127.0.0.1:9999\nbackend: stub\nmodel_name: other.gguf\nshared_dir: " + filepath.Join(dir, "s") + "\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	st := &state{stderr: io.Discard}
	root := buildRootCmd(st)
	root.SetArgs([]string{"--config", path, "--shared-dir", filepath.Join(dir, "flag"), "--prefs", filepath.Join(dir, "prefs.db"), "model", "locate"})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	_ = root.ExecuteContext(context.Background())
	if st.cfg.Addr != "127.0.0.1:9999" || st.cfg.ModelName != "other.gguf" {
		t.Fatalf("file not applied: %+v", st.cfg)
	}
	if st.cfg.SharedDir != filepath.Join(dir, "flag") {
		t.Fatalf("flag should win: %s", st.cfg.SharedDir)
	}
}

func TestExecute_UnknownBackend(t *testing.T) {
	err := Execute(context.Background(), []string{"--backend", "gpu", "doctor"}, io.Discard, io.Discard)
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestSplitCSV(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"a,,c", []string{"a", "c"}},
		{"", nil},
	}
	for _, c := range cases {
		got := splitCSV(c.in)
		if len(got) != len(c.want) {
			t.Fatalf("%q -> %v, want %v", c.in, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("%q -> %v, want %v", c.in, got, c.want)
			}
		}
	}
}

func TestConfigureHTTP_AppliesBodyLimitAndTransformTimeout(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer remote.Close()

	e := newEnv(t)
	if _, _, err := e.run(t, "settings", "set", "--endpoint", remote.URL, "--prefer-local=false"); err != nil {
		t.Fatalf("set: %v", err)
	}
	cfg := config.Default()
	cfg.Backend = config.BackendStub
	cfg.SharedDir = e.shared
	cfg.BundleRoots = []string{e.bundle}
	cfg.PrefsPath = filepath.Join(e.root, "prefs.db")
	cfg.MaxBodyBytes = 64
	cfg.TransformTimeoutSec = 1

	configureHTTP(context.Background(), cfg, zerolog.Nop(), "off")
	t.Cleanup(func() { configureHTTP(context.Background(), config.Default(), zerolog.Nop(), "error") })

	a, err := app.New(cfg, app.Options{})
	if err != nil {
		t.Fatalf("app: %v", err)
	}
	defer a.Close()
	srv := httptest.NewServer(httpapi.NewMux(a))
	defer srv.Close()

	post := func(body string) int {
		resp, err := http.Post(srv.URL+"/transform", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}
	big := `{"mode":"enhance","text":"` + strings.Repeat("x", 128) + `"}`
	if code := post(big); code != http.StatusRequestEntityTooLarge {
		t.Fatalf("oversized body: got %d", code)
	}
	if code := post(`{"mode":"enhance","text":"hi"}`); code != http.StatusGatewayTimeout {
		t.Fatalf("slow remote: got %d", code)
	}
}

func TestNewLogger_FileIsClosable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "keyboardai.log")
	log, closer := newLogger("info", path, io.Discard)
	if closer == nil {
		t.Fatalf("expected a closer for the log file")
	}
	log.Info().Msg("hello file")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil || !strings.Contains(string(b), "hello file") {
		t.Fatalf("log file=%q err=%v", b, err)
	}
	if _, c := newLogger("info", "", io.Discard); c != nil {
		t.Fatalf("no closer expected without a log file")
	}
}

func TestExecute_WritesAndReleasesLogFile(t *testing.T) {
	e := newEnv(t)
	path := filepath.Join(e.root, "keyboardai.log")
	args := append(append([]string{}, e.base...), "--log-level", "warn", "--log-file", path, "transform", "x")
	if err := Execute(context.Background(), args, io.Discard, io.Discard); !router.IsLocalModelUnavailable(err) {
		t.Fatalf("got %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil || !strings.Contains(string(b), "fallback disabled") {
		t.Fatalf("log file=%q err=%v", b, err)
	}
	// the handle is released, so the file can be removed and recreated freely
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
}
