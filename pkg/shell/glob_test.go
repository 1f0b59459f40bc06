package shell

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPatterns(t *testing.T) {
	root := filepath.Join(t.TempDir(), "with space")
	for _, dir := range []string{"packages/omu", "packages/server", "plugins/a/nested"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	}

	matches, err := ExpandPatterns(root, []string{"packages/*", "plugins/**/nested", "missing/*", "literal"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "packages", "omu"),
		filepath.Join(root, "packages", "server"),
		filepath.Join(root, "plugins", "a", "nested"),
		filepath.Join(root, "literal"),
	}, matches)
}

func TestMatchName(t *testing.T) {
	cases := []struct {
		pattern string
		name    string
		match   bool
	}{
		{"omu", "omu", true},
		{"plugin-*", "plugin-provider", true},
		{"plugin-*", "server", false},
		{"s?rver", "server", true},
		{"omu", "omuchat", false},
	}

	for _, c := range cases {
		ok, err := MatchName(c.pattern, c.name)
		require.NoError(t, err)
		assert.Equal(t, c.match, ok, "%s vs %s", c.pattern, c.name)
	}
}
