//go:build windows

package fsutil

import (
	"os"

	"github.com/rotisserie/eris"
)

// WriteFile replaces path with data. renameio has no Windows support so this falls back to a plain write.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	if err := os.WriteFile(path, data, perm); err != nil {
		return eris.Wrapf(err, "failed to write %s", path)
	}

	return nil
}
