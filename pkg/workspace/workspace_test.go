package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rootConfig = `[project]
name = "omuchat-python"
version = "0.1.0"
description = "Workspace for the omuchat packages"
authors = [{ name = "omu", email = "dev@example.com" }]
dependencies = []
requires-python = ">= 3.12"

[build-system]
requires = ["hatchling"]
build-backend = "hatchling.build"

[tool.rye]
managed = true
virtual = true
dev-dependencies = []

[tool.rye.workspace]
members = ["packages/*"]

[tool.rye.scripts]
clean = "python scripts/clean.py"
version = { cmd = ["python", "scripts/version.py"], env = { MODE = "bump" } }
gen_version = { chain = ["version", "clean"] }
start = { call = "omuserver:main" }

[tool.ruff.lint]
select = ["E", "F", "I"]
ignore = ["E501"]
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ConfigFile), rootConfig)
	writeFile(t, filepath.Join(root, "packages", "omu", ConfigFile), "[project]\nname = \"omu\"\nversion = \"0.1.0\"\n")
	writeFile(t, filepath.Join(root, "packages", "server", ConfigFile), "[project]\nname = \"omuserver\"\nversion = \"0.1.0\"\n")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "packages", "plugin-provider", "src"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "packages", ".cache"), 0o755))
	writeFile(t, filepath.Join(root, "packages", "README.md"), "not a package")
	return root
}

func memberNames(members []Member) []string {
	names := make([]string, len(members))
	for idx, member := range members {
		names[idx] = member.Name
	}
	return names
}

func TestFindRoot(t *testing.T) {
	root := newWorkspace(t)

	found, err := FindRoot(filepath.Join(root, "packages", "plugin-provider", "src"))
	require.NoError(t, err)
	assert.Equal(t, root, found)

	bare := t.TempDir()
	found, err = FindRoot(bare)
	require.NoError(t, err)
	// without any pyproject.toml above it, the start directory is the root
	if _, statErr := os.Stat(filepath.Join(filepath.Dir(bare), ConfigFile)); eris.Is(statErr, os.ErrNotExist) {
		assert.Equal(t, bare, found)
	}
}

func TestLoad(t *testing.T) {
	root := newWorkspace(t)

	project, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, root, project.Root)
	assert.Equal(t, "omuchat-python", project.Metadata.Name)
	assert.Equal(t, "0.1.0", project.Metadata.Version)
	assert.Equal(t, ">= 3.12", project.Metadata.RequiresPython)
	assert.Equal(t, []Person{{Name: "omu", Email: "dev@example.com"}}, project.Metadata.Authors)
	assert.Empty(t, project.Metadata.Dependencies)
	assert.Equal(t, "hatchling.build", project.BuildSystem.Backend)
	assert.True(t, project.Tool.Rye.Virtual)
	assert.Equal(t, []string{"packages/*"}, project.MemberGlobs())
	assert.Equal(t, []string{"E", "F", "I"}, project.LintSelect())
	assert.Equal(t, []string{"E501"}, project.LintIgnore())
	assert.Equal(t, []string{"clean", "gen_version", "start", "version"}, project.ScriptNames())
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.True(t, eris.Is(err, ErrNoProject))
}

func TestLoadInvalidScript(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ConfigFile), "[tool.rye.scripts]\nbroken = { nope = 1 }\n")

	_, err := Load(root)
	assert.Error(t, err)
}

func TestScripts(t *testing.T) {
	project, err := Load(newWorkspace(t))
	require.NoError(t, err)

	clean, err := project.Script("clean")
	require.NoError(t, err)
	assert.Equal(t, "python scripts/clean.py", clean.Line)

	version, err := project.Script("version")
	require.NoError(t, err)
	assert.Equal(t, []string{"python", "scripts/version.py"}, version.Args)
	assert.Equal(t, map[string]string{"MODE": "bump"}, version.Env)

	genVersion, err := project.Script("gen_version")
	require.NoError(t, err)
	assert.Equal(t, []string{"version", "clean"}, genVersion.Chain)

	start, err := project.Script("start")
	require.NoError(t, err)
	assert.Equal(t, []string{"python", "-c", "import sys, omuserver; sys.exit(omuserver.main())"}, start.Args)

	_, err = project.Script("deploy")
	assert.True(t, eris.Is(err, ErrUnknownScript))
}

func TestOmuwsScriptsOverrideRye(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ConfigFile), `[tool.rye.scripts]
clean = "python scripts/clean.py"

[tool.omuws.scripts]
clean = ["rm", "-rf", "dist"]
`)

	project, err := Load(root)
	require.NoError(t, err)

	clean, err := project.Script("clean")
	require.NoError(t, err)
	assert.Equal(t, []string{"rm", "-rf", "dist"}, clean.Args)
	assert.Empty(t, clean.Line)
}

func TestListDir(t *testing.T) {
	root := newWorkspace(t)

	members, err := ListDir(root, "packages")
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"omu", "plugin-provider", "server"}, memberNames(members)); diff != "" {
		t.Errorf("unexpected members (-want +got):\n%s", diff)
	}

	assert.Equal(t, filepath.Join(root, "packages", "omu"), members[0].Dir)
	assert.Equal(t, "packages/omu", members[0].Path)
}

func TestListDirFollowsSymlinks(t *testing.T) {
	root := newWorkspace(t)
	target := t.TempDir()
	if err := os.Symlink(target, filepath.Join(root, "packages", "linked")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	members, err := ListDir(root, "packages")
	require.NoError(t, err)
	assert.Contains(t, memberNames(members), "linked")
}

func TestListDirEmptyOrMissing(t *testing.T) {
	root := t.TempDir()

	members, err := ListDir(root, "packages")
	require.NoError(t, err)
	assert.Empty(t, members)

	writeFile(t, filepath.Join(root, "packages"), "a file, not a directory")
	members, err = ListDir(root, "packages")
	require.NoError(t, err)
	assert.Empty(t, members)

	empty := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(empty, "packages"), 0o755))
	writeFile(t, filepath.Join(empty, "packages", "stray.txt"), "")
	members, err = ListDir(empty, "packages")
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestMembers(t *testing.T) {
	root := newWorkspace(t)
	writeFile(t, filepath.Join(root, ConfigFile), `[tool.uv.workspace]
members = ["packages/*", "packages/omu"]
exclude = ["packages/server"]
`)

	project, err := Load(root)
	require.NoError(t, err)

	members, err := project.Members()
	require.NoError(t, err)
	assert.Equal(t, []string{"omu", "plugin-provider"}, memberNames(members))
}

func TestMembersDefaultGlob(t *testing.T) {
	root := newWorkspace(t)

	members, err := Empty(root).Members()
	require.NoError(t, err)
	assert.Equal(t, []string{"omu", "plugin-provider", "server"}, memberNames(members))
}

func TestMemberMetadata(t *testing.T) {
	root := newWorkspace(t)
	members, err := ListDir(root, "packages")
	require.NoError(t, err)

	meta, err := members[0].Metadata()
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, "omu", meta.Name)

	// plugin-provider has no pyproject.toml
	meta, err = members[1].Metadata()
	require.NoError(t, err)
	assert.Nil(t, meta)
}

func TestFilterMembers(t *testing.T) {
	members, err := ListDir(newWorkspace(t), "packages")
	require.NoError(t, err)

	filtered, err := FilterMembers(members, []string{"plugin-*", "omu"})
	require.NoError(t, err)
	assert.Equal(t, []string{"omu", "plugin-provider"}, memberNames(filtered))

	all, err := FilterMembers(members, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
