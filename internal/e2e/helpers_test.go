package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"keyboardai/internal/app"
	"keyboardai/internal/config"
	"keyboardai/internal/engine"
	"keyboardai/internal/httpapi"
)

// cannedNative answers every prompt with the same text.
type cannedNative struct{ reply string }

func (n *cannedNative) Name() string                   { return "canned" }
func (n *cannedNative) Init(string, int32, int32) bool { return true }
func (n *cannedNative) Unload() bool                   { return true }
func (n *cannedNative) Generate(string, int32, float32, int32, float32) (bool, engine.Output) {
	return true, cannedOutput(n.reply)
}

type cannedOutput string

func (o cannedOutput) String() string { return string(o) }
func (o cannedOutput) Release()       {}

// createBundle writes a fake model file into a fresh bundle root and returns a
// config pointing at it with an empty shared store.
func createBundle(t *testing.T) config.Config {
	t.Helper()
	root := t.TempDir()
	bundle := filepath.Join(root, "bundle")
	if err := os.MkdirAll(bundle, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(bundle, "gemma-3-270m-it.gguf"), make([]byte, 4096), 0o644); err != nil {
		t.Fatalf("write temp model: %v", err)
	}
	cfg := config.Default()
	cfg.SharedDir = filepath.Join(root, "shared")
	cfg.BundleRoots = []string{bundle}
	cfg.PrefsPath = filepath.Join(root, "prefs.db")
	cfg.Backend = config.BackendStub
	return cfg
}

func newServer(t *testing.T, cfg config.Config, native engine.Native) (*httptest.Server, *app.App) {
	t.Helper()
	a, err := app.New(cfg, app.Options{Native: native})
	if err != nil {
		t.Fatalf("app: %v", err)
	}
	srv := httptest.NewServer(httpapi.NewMux(a))
	t.Cleanup(func() {
		srv.Close()
		_ = a.Close()
	})
	return srv, a
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, b
}

func httpDo(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, b
}
