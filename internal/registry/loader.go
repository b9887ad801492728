package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"keyboardai/internal/common/fsutil"
	"keyboardai/pkg/types"
)

// DefaultExt is the model file extension.
const DefaultExt = ".gguf"

// ScanDir lists model files in the top level of dir (non-recursive, hidden
// entries skipped, extension matched case-insensitively). Results are ordered
// by filename.
func ScanDir(dir, ext string) ([]types.ModelAsset, error) {
	if ext == "" {
		ext = DefaultExt
	}
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var models []types.ModelAsset
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || fsutil.IsHidden(name) {
			continue
		}
		if !fsutil.HasExt(name, ext) {
			continue
		}
		p := filepath.Join(abs, name)
		models = append(models, types.ModelAsset{
			Name:      name,
			Path:      p,
			SizeBytes: sizeOf(p),
			Location:  types.LocationShared,
		})
	}
	return models, nil
}

// FindBundled searches roots in priority order. Within each root the walk is
// recursive. A file named canonical wins over any other file with ext, across
// all roots; otherwise the first file with ext is returned.
func FindBundled(roots []string, canonical, ext string) (types.ModelAsset, bool) {
	if ext == "" {
		ext = DefaultExt
	}
	var fallback string
	for _, root := range roots {
		r, err := fsutil.ExpandHome(root)
		if err != nil || !fsutil.IsDir(r) {
			continue
		}
		exact, first := walkRoot(r, canonical, ext)
		if exact != "" {
			return bundled(exact), true
		}
		if fallback == "" {
			fallback = first
		}
	}
	if fallback != "" {
		return bundled(fallback), true
	}
	return types.ModelAsset{}, false
}

var errStopWalk = errors.New("stop walk")

func walkRoot(root, canonical, ext string) (exact, first string) {
	_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable subtree: keep walking the rest
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if canonical != "" && name == canonical {
			exact = p
			return errStopWalk
		}
		if first == "" && fsutil.HasExt(name, ext) {
			first = p
		}
		return nil
	})
	return exact, first
}

func bundled(p string) types.ModelAsset {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return types.ModelAsset{
		Name:      filepath.Base(p),
		Path:      p,
		SizeBytes: sizeOf(p),
		Location:  types.LocationBundle,
	}
}

func sizeOf(p string) int64 {
	fi, err := os.Stat(p)
	if err != nil {
		return 0
	}
	return fi.Size()
}
