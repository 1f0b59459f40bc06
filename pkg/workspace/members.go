package workspace

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rotisserie/eris"

	"github.com/OMUAPPS/omuchat-python/pkg/shell"
)

// Member is a package directory inside the workspace.
type Member struct {
	// Name is the directory name
	Name string
	// Dir is the absolute path
	Dir string
	// Path is relative to the workspace root and always uses forward slashes
	Path string
}

func newMember(root, dir string) Member {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		rel = dir
	}

	return Member{
		Name: filepath.Base(dir),
		Dir:  dir,
		Path: filepath.ToSlash(rel),
	}
}

// Metadata reads the [project] table of the member's own pyproject.toml. Members without one return nil.
func (m Member) Metadata() (*Metadata, error) {
	cfgPath := filepath.Join(m.Dir, ConfigFile)
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		if eris.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "failed to read %s", cfgPath)
	}

	var doc struct {
		Project Metadata `toml:"project"`
	}
	if _, err = toml.Decode(string(data), &doc); err != nil {
		return nil, eris.Wrapf(err, "failed to parse %s", cfgPath)
	}

	return &doc.Project, nil
}

func isDir(path string, entry os.DirEntry) bool {
	if entry.Type()&os.ModeSymlink != 0 {
		info, err := os.Stat(path)
		return err == nil && info.IsDir()
	}

	return entry.IsDir()
}

// ListDir returns the direct child directories of dir (relative to root unless absolute) in lexical
// order. Files and hidden entries are skipped. If dir doesn't exist or isn't a directory, the result is
// empty.
func ListDir(root, dir string) ([]Member, error) {
	base := dir
	if !filepath.IsAbs(base) {
		base = filepath.Join(root, dir)
	}

	info, err := os.Stat(base)
	if err != nil {
		if eris.Is(err, os.ErrNotExist) {
			return []Member{}, nil
		}
		return nil, eris.Wrapf(err, "failed to check %s", base)
	}

	if !info.IsDir() {
		return []Member{}, nil
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to list %s", base)
	}

	members := make([]Member, 0, len(entries))
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		path := filepath.Join(base, entry.Name())
		if isDir(path, entry) {
			members = append(members, newMember(root, path))
		}
	}

	return members, nil
}

// Members resolves the member globs of the project. Matches that aren't directories or that match an
// exclude pattern are dropped.
func (p *Project) Members() ([]Member, error) {
	matches, err := shell.ExpandPatterns(p.Root, p.MemberGlobs())
	if err != nil {
		return nil, eris.Wrap(err, "failed to resolve workspace members")
	}

	excludes, err := shell.ExpandPatterns(p.Root, p.ExcludeGlobs())
	if err != nil {
		return nil, eris.Wrap(err, "failed to resolve workspace excludes")
	}

	excluded := make(map[string]bool, len(excludes))
	for _, item := range excludes {
		excluded[filepath.Clean(item)] = true
	}

	seen := make(map[string]bool, len(matches))
	members := make([]Member, 0, len(matches))
	for _, item := range matches {
		item = filepath.Clean(item)
		if seen[item] || excluded[item] || strings.HasPrefix(filepath.Base(item), ".") {
			continue
		}
		seen[item] = true

		info, err := os.Stat(item)
		if err != nil || !info.IsDir() {
			continue
		}

		members = append(members, newMember(p.Root, item))
	}

	sort.Slice(members, func(i, j int) bool {
		return members[i].Path < members[j].Path
	})

	return members, nil
}

// FilterMembers keeps the members whose name matches at least one of the shell patterns. Without
// patterns all members are returned.
func FilterMembers(members []Member, patterns []string) ([]Member, error) {
	if len(patterns) == 0 {
		return members, nil
	}

	result := make([]Member, 0, len(members))
	for _, member := range members {
		for _, pat := range patterns {
			ok, err := shell.MatchName(pat, member.Name)
			if err != nil {
				return nil, err
			}

			if ok {
				result = append(result, member)
				break
			}
		}
	}

	return result, nil
}
