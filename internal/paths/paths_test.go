package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/abs/path", "/abs/path"},
		{"relative", "relative"},
		{"~", home},
		{"~/profile", filepath.Join(home, "profile")},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ExpandTilde(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigPathPrefersLocalFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "trailmcp.toml"), []byte("# empty\n"), 0600))

	got, err := ConfigPath()
	require.NoError(t, err)
	assert.Equal(t, "trailmcp.toml", filepath.Base(got))
	assert.True(t, filepath.IsAbs(got))
}

