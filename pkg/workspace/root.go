package workspace

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// ConfigFile is the name of the workspace configuration file.
const ConfigFile = "pyproject.toml"

// FindRoot searches start and its parents for the next pyproject.toml and returns the directory
// containing it. If there is none, start itself is the root.
func FindRoot(start string) (string, error) {
	start, err := filepath.Abs(start)
	if err != nil {
		return "", eris.Wrapf(err, "failed to resolve %s", start)
	}

	path := start
	for {
		cfgPath := filepath.Join(path, ConfigFile)
		_, err := os.Stat(cfgPath)
		if err == nil {
			return path, nil
		}

		if !eris.Is(err, os.ErrNotExist) {
			return "", eris.Wrapf(err, "failed to check %s", cfgPath)
		}

		parent := filepath.Dir(path)
		if parent == path {
			return start, nil
		}

		path = parent
	}
}
