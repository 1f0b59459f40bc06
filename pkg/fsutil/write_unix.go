//go:build !windows

package fsutil

import (
	"os"

	"github.com/google/renameio/v2"
	"github.com/rotisserie/eris"
)

// WriteFile replaces path with data. Readers either see the old or the new content, never a partial write.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(perm))
	if err != nil {
		return eris.Wrapf(err, "failed to create pending file for %s", path)
	}
	defer pendingFile.Cleanup()

	if _, err = pendingFile.Write(data); err != nil {
		return eris.Wrapf(err, "failed to write %s", path)
	}

	if err = pendingFile.CloseAtomicallyReplace(); err != nil {
		return eris.Wrapf(err, "failed to replace %s", path)
	}

	return nil
}
