//go:build windows

package extractor

import "os"

// Unix permission bits have no meaning here.
func applyMode(path string, mode os.FileMode) error {
	return nil
}
