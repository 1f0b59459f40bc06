package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextVersion(t *testing.T) {
	cases := map[string]string{
		"major": "1.0.0",
		"minor": "0.2.0",
		"patch": "0.1.1",
	}

	for bump, want := range cases {
		got, err := NextVersion("0.1.0", bump)
		require.NoError(t, err)
		assert.Equal(t, want, got, bump)
	}

	_, err := NextVersion("0.1.0", "build")
	assert.Error(t, err)

	_, err = NextVersion("not-a-version", "patch")
	assert.Error(t, err)
}

func TestReplaceVersion(t *testing.T) {
	content := `[tool.other]
version = "9.9.9"

[project]
name = "omu"
version = '0.1.0'  # keep me

[[tool.hatch.envs]]
version = "1.1.1"
`

	updated, old, found := replaceVersion(content, "0.2.0")
	require.True(t, found)
	assert.Equal(t, "0.1.0", old)
	assert.Contains(t, updated, `version = '0.2.0'  # keep me`)
	assert.Contains(t, updated, `version = "9.9.9"`)
	assert.Contains(t, updated, `version = "1.1.1"`)

	_, _, found = replaceVersion("[project]\nname = \"x\"\ndynamic = [\"version\"]\n", "0.2.0")
	assert.False(t, found)
}

func TestPlanAndApplyVersion(t *testing.T) {
	root := newWorkspace(t)
	project, err := Load(root)
	require.NoError(t, err)

	members, err := project.Members()
	require.NoError(t, err)

	changes, err := project.PlanVersion(members, "0.2.0")
	require.NoError(t, err)
	require.Len(t, changes, 3)
	assert.Equal(t, filepath.Join(root, ConfigFile), changes[0].Path)
	for _, change := range changes {
		assert.Equal(t, "0.1.0", change.Old)
	}

	require.NoError(t, ApplyVersion(changes))

	reloaded, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, "0.2.0", reloaded.Metadata.Version)
	assert.Equal(t, "omuchat-python", reloaded.Metadata.Name)

	data, err := os.ReadFile(filepath.Join(root, "packages", "server", ConfigFile))
	require.NoError(t, err)
	assert.Equal(t, "[project]\nname = \"omuserver\"\nversion = \"0.2.0\"\n", string(data))
}
