//go:build !linux && !darwin

package fsutil

import "errors"

// BackupExclusionAttr marks a file as excluded from user backups.
const BackupExclusionAttr = "user.keyboardai.exclude_from_backup"

// ExcludeFromBackup is unsupported on this platform.
func ExcludeFromBackup(path string) error {
	return errors.New("backup exclusion not supported on this platform")
}

// ExcludedFromBackup always reports false on this platform.
func ExcludedFromBackup(path string) bool { return false }
