//go:build !windows

package extractor

import "os"

// applyMode sets the permission bits recorded in the archive. setuid, setgid
// and sticky bits are dropped.
func applyMode(path string, mode os.FileMode) error {
	return os.Chmod(path, mode.Perm())
}
