package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"keyboardai/internal/config"
	"keyboardai/internal/engine"
	"keyboardai/internal/events"
	"keyboardai/internal/prefs"
	"keyboardai/internal/prompt"
	"keyboardai/internal/router"
	"keyboardai/pkg/types"
)

// echoNative returns a fixed reply once initialized.
type echoNative struct{ reply string }

func (n *echoNative) Name() string                      { return "echo" }
func (n *echoNative) Init(string, int32, int32) bool    { return true }
func (n *echoNative) Unload() bool                      { return true }
func (n *echoNative) Generate(string, int32, float32, int32, float32) (bool, engine.Output) {
	return true, echoOutput(n.reply)
}

type echoOutput string

func (o echoOutput) String() string { return string(o) }
func (o echoOutput) Release()       {}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	root := t.TempDir()
	bundle := filepath.Join(root, "bundle")
	if err := os.MkdirAll(bundle, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(bundle, "gemma-3-270m-it.gguf"), make([]byte, 1024), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.SharedDir = filepath.Join(root, "shared")
	cfg.BundleRoots = []string{bundle}
	cfg.PrefsPath = ""
	cfg.Backend = config.BackendStub
	return cfg
}

func newTestApp(t *testing.T, cfg config.Config, opts Options) *App {
	t.Helper()
	a, err := New(cfg, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestApp_InstallTransformReset(t *testing.T) {
	pub := events.NewMemory()
	a := newTestApp(t, testConfig(t), Options{Native: &echoNative{reply: "Yes! See you at noon."}, Publisher: pub})

	if a.Status().Installed != nil {
		t.Fatalf("nothing installed yet")
	}
	m, err := a.InstallModel(context.Background())
	if err != nil {
		t.Fatalf("InstallModel: %v", err)
	}
	if m.Location != types.LocationShared || filepath.Dir(m.Path) != a.Config().SharedDir {
		t.Fatalf("installed=%+v", m)
	}

	out, err := a.Transform(context.Background(), "hey are we still on for lunch", prompt.ModeReply, prompt.StyleFriendly)
	if err != nil || out != "Yes! See you at noon." {
		t.Fatalf("Transform=%q,%v", out, err)
	}
	st := a.Status()
	if !a.Ready() || st.Engine.ModelPath != m.Path || st.Installed == nil || st.InstalledSize != "0.0 MB" {
		t.Fatalf("status=%+v", st)
	}
	if pub.Count("init_ready") != 1 {
		t.Fatalf("events=%+v", pub.Events())
	}

	if err := a.ResetModel(context.Background()); err != nil {
		t.Fatalf("ResetModel: %v", err)
	}
	if a.Ready() || a.Status().Installed != nil {
		t.Fatalf("reset should unload and remove the model")
	}
}

func TestApp_StubBackendFailsLocally(t *testing.T) {
	a := newTestApp(t, testConfig(t), Options{})
	_, err := a.Transform(context.Background(), "hi", prompt.ModeEnhance, prompt.StyleFormal)
	if !router.IsLocalModelUnavailable(err) {
		t.Fatalf("got %v", err)
	}
	if a.Status().Engine.LastError == "" {
		t.Fatalf("last error should be recorded")
	}
}

func TestApp_Settings(t *testing.T) {
	store := prefs.NewMemory()
	a := newTestApp(t, testConfig(t), Options{Store: store})
	ep, f := "api.example.com", false
	got, err := a.ApplySettings(types.Settings{Endpoint: &ep, PreferLocal: &f})
	if err != nil {
		t.Fatalf("ApplySettings: %v", err)
	}
	if *got.Endpoint != "https://api.example.com" || *got.PreferLocal {
		t.Fatalf("settings=%+v", got)
	}
	if a.Status().Policy.PreferLocal {
		t.Fatalf("policy should reflect stored flag")
	}
}

func TestApp_OfflineOnly(t *testing.T) {
	cfg := testConfig(t)
	cfg.OfflineOnly = true
	a := newTestApp(t, cfg, Options{})
	if err := a.Prefs().SetAllowFallback(true); err != nil {
		t.Fatal(err)
	}
	if p := a.Status().Policy; p.AllowFallback || !p.OfflineOnly {
		t.Fatalf("policy=%+v", p)
	}
}

func TestApp_SQLitePrefs(t *testing.T) {
	cfg := testConfig(t)
	cfg.PrefsPath = filepath.Join(t.TempDir(), "prefs.db")
	a := newTestApp(t, cfg, Options{})
	if err := a.Prefs().SetAPIKey("k"); err != nil {
		t.Fatal(err)
	}
	if !a.Settings().APIKeySet {
		t.Fatalf("api key should be reported as set")
	}
}

func TestApp_Doctor(t *testing.T) {
	a := newTestApp(t, testConfig(t), Options{})
	var report []string
	for _, c := range a.Doctor() {
		report = append(report, c.Name+"="+c.Detail)
	}
	joined := strings.Join(report, "\n")
	for _, want := range []string{"not provisioned", "installed model=none", "gemma-3-270m-it.gguf", "stub"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("doctor report missing %q:\n%s", want, joined)
		}
	}
}

func TestNew_RejectsUnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Backend = "onnx"
	if _, err := New(cfg, Options{}); err == nil {
		t.Fatalf("expected error")
	}
}
