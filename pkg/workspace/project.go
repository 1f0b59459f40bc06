// Package workspace reads the workspace layout: the root pyproject.toml with its metadata and script
// aliases, and the member packages below it.
package workspace

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/rotisserie/eris"
)

// ErrNoProject is returned by Load if the root has no pyproject.toml.
var ErrNoProject = eris.New("no " + ConfigFile + " found")

// DefaultMembers is used when the configuration doesn't declare any member globs.
var DefaultMembers = []string{"packages/*"}

type Person struct {
	Name  string `toml:"name"`
	Email string `toml:"email"`
}

// Metadata is the [project] table
type Metadata struct {
	Name                 string              `toml:"name"`
	Version              string              `toml:"version"`
	Description          string              `toml:"description"`
	Authors              []Person            `toml:"authors"`
	RequiresPython       string              `toml:"requires-python"`
	Dependencies         []string            `toml:"dependencies"`
	OptionalDependencies map[string][]string `toml:"optional-dependencies"`
	Dynamic              []string            `toml:"dynamic"`
}

type BuildSystem struct {
	Requires []string `toml:"requires"`
	Backend  string   `toml:"build-backend"`
}

type WorkspaceTable struct {
	Members []string `toml:"members"`
	Exclude []string `toml:"exclude"`
}

type RyeTool struct {
	Managed         bool                   `toml:"managed"`
	Virtual         bool                   `toml:"virtual"`
	DevDependencies []string               `toml:"dev-dependencies"`
	Workspace       *WorkspaceTable        `toml:"workspace"`
	Scripts         map[string]interface{} `toml:"scripts"`
}

type UVTool struct {
	Workspace *WorkspaceTable `toml:"workspace"`
}

type RuffLint struct {
	Select []string `toml:"select"`
	Ignore []string `toml:"ignore"`
}

type RuffTool struct {
	LineLength int      `toml:"line-length"`
	Select     []string `toml:"select"`
	Ignore     []string `toml:"ignore"`
	Lint       RuffLint `toml:"lint"`
}

type OmuwsTool struct {
	Scripts map[string]interface{} `toml:"scripts"`
}

type Tools struct {
	Rye   RyeTool   `toml:"rye"`
	UV    UVTool    `toml:"uv"`
	Ruff  RuffTool  `toml:"ruff"`
	Omuws OmuwsTool `toml:"omuws"`
}

// Project is the decoded content of a pyproject.toml
type Project struct {
	// Root is the absolute path of the directory containing the file
	Root string `toml:"-"`

	Metadata         Metadata                 `toml:"project"`
	BuildSystem      BuildSystem              `toml:"build-system"`
	DependencyGroups map[string][]interface{} `toml:"dependency-groups"`
	Tool             Tools                    `toml:"tool"`

	scripts map[string]*Script
}

// Load reads <root>/pyproject.toml. Missing files are reported as ErrNoProject.
func Load(root string) (*Project, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to resolve %s", root)
	}

	cfgPath := filepath.Join(root, ConfigFile)
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		if eris.Is(err, os.ErrNotExist) {
			return nil, eris.Wrapf(ErrNoProject, "in %s", root)
		}
		return nil, eris.Wrapf(err, "failed to read %s", cfgPath)
	}

	project := &Project{Root: root}
	if _, err = toml.Decode(string(data), project); err != nil {
		return nil, eris.Wrapf(err, "failed to parse %s", cfgPath)
	}

	project.scripts, err = parseScripts(project.Tool.Rye.Scripts, project.Tool.Omuws.Scripts)
	if err != nil {
		return nil, eris.Wrapf(err, "invalid scripts in %s", cfgPath)
	}

	return project, nil
}

// Empty returns a project without any configuration rooted at root.
func Empty(root string) *Project {
	return &Project{Root: root, scripts: map[string]*Script{}}
}

func (p *Project) workspaceTable() *WorkspaceTable {
	if p.Tool.Rye.Workspace != nil {
		return p.Tool.Rye.Workspace
	}

	return p.Tool.UV.Workspace
}

// MemberGlobs returns the member patterns declared by the project or DefaultMembers.
func (p *Project) MemberGlobs() []string {
	ws := p.workspaceTable()
	if ws == nil || len(ws.Members) == 0 {
		return DefaultMembers
	}

	return ws.Members
}

// ExcludeGlobs returns the patterns of directories that are never members.
func (p *Project) ExcludeGlobs() []string {
	ws := p.workspaceTable()
	if ws == nil {
		return nil
	}

	return ws.Exclude
}

// LintSelect returns the selected ruff rule codes. The [tool.ruff.lint] table wins over the legacy
// top-level keys.
func (p *Project) LintSelect() []string {
	if len(p.Tool.Ruff.Lint.Select) > 0 {
		return p.Tool.Ruff.Lint.Select
	}

	return p.Tool.Ruff.Select
}

// LintIgnore returns the ignored ruff rule codes.
func (p *Project) LintIgnore() []string {
	if len(p.Tool.Ruff.Lint.Ignore) > 0 {
		return p.Tool.Ruff.Lint.Ignore
	}

	return p.Tool.Ruff.Ignore
}

// DependencyGroupNames lists the declared dependency groups in lexical order.
func (p *Project) DependencyGroupNames() []string {
	names := make([]string, 0, len(p.DependencyGroups))
	for name := range p.DependencyGroups {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
