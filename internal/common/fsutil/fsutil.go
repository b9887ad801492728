package fsutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome expands a leading '~' to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" {
		return path, nil
	}
	if path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	// handle cases like ~/models/llm
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}

// PathExists checks if the given path exists.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// IsHidden reports whether a directory entry name is hidden.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// HasExt reports whether name ends with ext, ignoring case. ext includes the dot.
func HasExt(name, ext string) bool {
	return strings.EqualFold(filepath.Ext(name), ext)
}

// StoreDirMode is applied to the shared store so every process of the
// application family (same user/group) can read and write it.
const StoreDirMode os.FileMode = 0o770

// ProvisionDir creates dir if needed and applies StoreDirMode.
func ProvisionDir(dir string) error {
	if err := os.MkdirAll(dir, StoreDirMode); err != nil {
		return fmt.Errorf("provision %s: %w", dir, err)
	}
	if err := os.Chmod(dir, StoreDirMode); err != nil {
		return fmt.Errorf("chmod %s: %w", dir, err)
	}
	return nil
}

// CopyIfAbsent copies src to dst unless dst already exists. The data is first
// written to a hidden temp file next to dst and then linked into place, so
// readers never observe a partial dst and a concurrent writer can never be
// overwritten. copied is false when dst was already present.
func CopyIfAbsent(src, dst string) (copied bool, err error) {
	if _, err := os.Lstat(dst); err == nil {
		return false, nil
	}
	in, err := os.Open(src)
	if err != nil {
		return false, fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	dir := filepath.Dir(dst)
	out, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".partial-*")
	if err != nil {
		return false, fmt.Errorf("create temp: %w", err)
	}
	tmp := out.Name()
	defer os.Remove(tmp)
	if err := out.Chmod(0o660); err != nil {
		_ = out.Close()
		return false, fmt.Errorf("chmod temp: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return false, fmt.Errorf("copy: %w", err)
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return false, fmt.Errorf("sync: %w", err)
	}
	if err := out.Close(); err != nil {
		return false, fmt.Errorf("close temp: %w", err)
	}
	if err := os.Link(tmp, dst); err != nil {
		if errors.Is(err, os.ErrExist) {
			// lost the race against another installer
			return false, nil
		}
		return false, fmt.Errorf("link into place: %w", err)
	}
	return true, nil
}

// FileSizeMB renders the size of the file at path as "%.1f MB" (base 1024),
// or "-" when it cannot be stat'ed.
func FileSizeMB(path string) string {
	fi, err := os.Stat(path)
	if err != nil {
		return "-"
	}
	return fmt.Sprintf("%.1f MB", float64(fi.Size())/(1024.0*1024.0))
}
