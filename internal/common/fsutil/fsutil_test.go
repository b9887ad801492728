package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
)

func TestExpandHome(t *testing.T) {
	// Set a deterministic HOME for the duration of this test so we never skip.
	origHome, hadHome := os.LookupEnv("HOME")
	origUserProfile, hadUserProfile := os.LookupEnv("USERPROFILE")
	t.Cleanup(func() {
		if hadHome {
			_ = os.Setenv("HOME", origHome)
		} else {
			_ = os.Unsetenv("HOME")
		}
		if hadUserProfile {
			_ = os.Setenv("USERPROFILE", origUserProfile)
		} else {
			_ = os.Unsetenv("USERPROFILE")
		}
	})

	home := t.TempDir()
	// Configure both env vars for cross-platform behavior of os.UserHomeDir.
	_ = os.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		_ = os.Setenv("USERPROFILE", home)
	}
	// raw path unaffected
	if got, err := ExpandHome("/tmp"); err != nil || got != "/tmp" {
		t.Fatalf("got %q err=%v", got, err)
	}
	// empty path
	if got, err := ExpandHome(""); err != nil || got != "" {
		t.Fatalf("got %q err=%v", got, err)
	}
	// ~ expansion
	p, err := ExpandHome("~")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if p != home {
		t.Fatalf("expected %q, got %q", home, p)
	}
	// ~/subdir
	sub := "test-sub"
	exp, err := ExpandHome("~/" + sub)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if runtime.GOOS == "windows" {
		if filepath.Base(exp) != sub {
			t.Fatalf("unexpected expanded path: %q", exp)
		}
	} else {
		expected := filepath.Join(home, sub)
		if exp != expected {
			t.Fatalf("expected %q, got %q", expected, exp)
		}
	}
}

func TestCopyIfAbsent_CopiesOnce(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.gguf")
	if err := os.WriteFile(src, []byte("weights"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	dstDir := filepath.Join(dir, "shared")
	if err := ProvisionDir(dstDir); err != nil {
		t.Fatalf("provision: %v", err)
	}
	dst := filepath.Join(dstDir, "src.gguf")
	copied, err := CopyIfAbsent(src, dst)
	if err != nil || !copied {
		t.Fatalf("first copy: copied=%v err=%v", copied, err)
	}
	b, err := os.ReadFile(dst)
	if err != nil || string(b) != "weights" {
		t.Fatalf("dst content=%q err=%v", b, err)
	}
	copied, err = CopyIfAbsent(src, dst)
	if err != nil || copied {
		t.Fatalf("second copy should be a no-op: copied=%v err=%v", copied, err)
	}
	// no temp leftovers
	entries, _ := os.ReadDir(dstDir)
	if len(entries) != 1 {
		t.Fatalf("expected only dst in store, got %d entries", len(entries))
	}
}

func TestCopyIfAbsent_ConcurrentWritersInOneProcess(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.gguf")
	if err := os.WriteFile(src, make([]byte, 1<<20), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	dstDir := filepath.Join(dir, "shared")
	if err := ProvisionDir(dstDir); err != nil {
		t.Fatalf("provision: %v", err)
	}
	dst := filepath.Join(dstDir, "src.gguf")

	const writers = 8
	var wg sync.WaitGroup
	copied := make(chan bool, writers)
	errs := make(chan error, writers)
	start := make(chan struct{})
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			ok, err := CopyIfAbsent(src, dst)
			if err != nil {
				errs <- err
				return
			}
			copied <- ok
		}()
	}
	close(start)
	wg.Wait()
	close(errs)
	close(copied)
	for err := range errs {
		t.Fatalf("CopyIfAbsent: %v", err)
	}
	n := 0
	for ok := range copied {
		if ok {
			n++
		}
	}
	if n != 1 {
		t.Fatalf("exactly one writer should link dst, got %d", n)
	}
	entries, _ := os.ReadDir(dstDir)
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %d entries", len(entries))
	}
	fi, err := os.Stat(dst)
	if err != nil || fi.Size() != 1<<20 {
		t.Fatalf("dst incomplete: %v", err)
	}
}

func TestCopyIfAbsent_NeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.gguf")
	dst := filepath.Join(dir, "b.gguf")
	_ = os.WriteFile(src, []byte("new"), 0o644)
	_ = os.WriteFile(dst, []byte("old"), 0o644)
	copied, err := CopyIfAbsent(src, dst)
	if err != nil || copied {
		t.Fatalf("copied=%v err=%v", copied, err)
	}
	if b, _ := os.ReadFile(dst); string(b) != "old" {
		t.Fatalf("dst overwritten: %q", b)
	}
}

func TestCopyIfAbsent_MissingSource(t *testing.T) {
	dir := t.TempDir()
	if _, err := CopyIfAbsent(filepath.Join(dir, "nope"), filepath.Join(dir, "x")); err == nil {
		t.Fatalf("expected error for missing source")
	}
}

func TestFileSizeMB(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "m.gguf")
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// sparse 50 MiB file
	if err := f.Truncate(50 * 1024 * 1024); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	f.Close()
	if got := FileSizeMB(p); got != "50.0 MB" {
		t.Fatalf("got %q", got)
	}
	if got := FileSizeMB(filepath.Join(dir, "missing")); got != "-" {
		t.Fatalf("missing file got %q", got)
	}
}

func TestHasExtAndHidden(t *testing.T) {
	if !HasExt("Model.GGUF", ".gguf") || HasExt("model.bin", ".gguf") {
		t.Fatalf("HasExt mismatch")
	}
	if !IsHidden(".model.gguf") || IsHidden("model.gguf") {
		t.Fatalf("IsHidden mismatch")
	}
}
