package workspace

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rotisserie/eris"

	"github.com/OMUAPPS/omuchat-python/pkg/fsutil"
)

var (
	tableHeader = regexp.MustCompile(`^\s*\[\s*([^\[\]]+?)\s*\]\s*(#.*)?$`)
	versionLine = regexp.MustCompile(`^(\s*version\s*=\s*)(["'])([^"']*)(["'])(.*)$`)
)

// VersionChange describes the rewrite of a single pyproject.toml
type VersionChange struct {
	Path string
	Old  string
	New  string
}

// NextVersion increments current according to bump (major, minor or patch).
func NextVersion(current, bump string) (string, error) {
	version, err := semver.NewVersion(current)
	if err != nil {
		return "", eris.Wrapf(err, "current version %q is not a valid version", current)
	}

	var next semver.Version
	switch bump {
	case "major":
		next = version.IncMajor()
	case "minor":
		next = version.IncMinor()
	case "patch":
		next = version.IncPatch()
	default:
		return "", eris.Errorf("unknown version part %s (must be one of major, minor or patch)", bump)
	}

	return next.String(), nil
}

// ValidateVersion checks that version can be parsed.
func ValidateVersion(version string) error {
	if _, err := semver.NewVersion(version); err != nil {
		return eris.Wrapf(err, "%q is not a valid version", version)
	}

	return nil
}

// replaceVersion rewrites the version key of the [project] table. It returns the old version and
// false if the table has no static version.
func replaceVersion(content, version string) (string, string, bool) {
	lines := strings.Split(content, "\n")
	table := ""

	for idx, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "[[") {
			// array of tables
			table = ""
			continue
		}

		if m := tableHeader.FindStringSubmatch(line); m != nil {
			table = m[1]
			continue
		}

		if table != "project" {
			continue
		}

		m := versionLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		lines[idx] = m[1] + m[2] + version + m[4] + m[5]
		return strings.Join(lines, "\n"), m[3], true
	}

	return content, "", false
}

// PlanVersion computes the changes needed to set version in the root pyproject.toml and in every
// member that has one. Files with a dynamic version are left out.
func (p *Project) PlanVersion(members []Member, version string) ([]VersionChange, error) {
	paths := []string{filepath.Join(p.Root, ConfigFile)}
	for _, member := range members {
		paths = append(paths, filepath.Join(member.Dir, ConfigFile))
	}

	changes := make([]VersionChange, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if eris.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, eris.Wrapf(err, "failed to read %s", path)
		}

		_, old, found := replaceVersion(string(data), version)
		if found {
			changes = append(changes, VersionChange{Path: path, Old: old, New: version})
		}
	}

	return changes, nil
}

// ApplyVersion writes the planned changes. Each file is replaced atomically.
func ApplyVersion(changes []VersionChange) error {
	for _, change := range changes {
		info, err := os.Stat(change.Path)
		if err != nil {
			return eris.Wrapf(err, "failed to check %s", change.Path)
		}

		data, err := os.ReadFile(change.Path)
		if err != nil {
			return eris.Wrapf(err, "failed to read %s", change.Path)
		}

		content, _, found := replaceVersion(string(data), change.New)
		if !found {
			return eris.Errorf("%s no longer contains a version", change.Path)
		}

		if err = fsutil.WriteFile(change.Path, []byte(content), info.Mode().Perm()); err != nil {
			return err
		}
	}

	return nil
}
