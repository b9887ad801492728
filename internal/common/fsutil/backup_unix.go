//go:build linux || darwin

package fsutil

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// BackupExclusionAttr marks a file as excluded from user backups.
const BackupExclusionAttr = "user.keyboardai.exclude_from_backup"

// ExcludeFromBackup tags path with BackupExclusionAttr. Filesystems without
// user xattr support return an error; callers treat it as best effort.
func ExcludeFromBackup(path string) error {
	if err := unix.Setxattr(path, BackupExclusionAttr, []byte("1"), 0); err != nil {
		return fmt.Errorf("set %s on %s: %w", BackupExclusionAttr, path, err)
	}
	return nil
}

// ExcludedFromBackup reports whether path carries BackupExclusionAttr.
func ExcludedFromBackup(path string) bool {
	buf := make([]byte, 8)
	n, err := unix.Getxattr(path, BackupExclusionAttr, buf)
	return err == nil && n > 0 && buf[0] == '1'
}
