package promptdir

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDir_PathAccessors(t *testing.T) {
	d := New("/project/.promptly")

	assert.Equal(t, "/project/.promptly", d.Root())
	assert.Equal(t, "/project/.promptly/config.yaml", d.ConfigPath())
	assert.Equal(t, "/project/.promptly/config.toml", d.TOMLConfigPath())
	assert.Equal(t, "/project/.promptly/local", d.LocalDir())
	assert.Equal(t, "/project/.promptly/local/state.db", d.SQLitePath())
	assert.Equal(t, "/project/.promptly/local/state.json", d.JSONStatePath())
	assert.Equal(t, "/project/.promptly/local/promptly.log", d.LogPath())
	assert.Equal(t, "/project/.promptly/.gitignore", d.GitignorePath())
}

func TestDir_Exists(t *testing.T) {
	tmp := t.TempDir()

	d := New(filepath.Join(tmp, "missing"))
	assert.False(t, d.Exists())

	d = New(tmp)
	assert.True(t, d.Exists())
}

func TestDir_FindConfig(t *testing.T) {
	d := New(t.TempDir())
	assert.Empty(t, d.FindConfig())

	require.NoError(t, os.WriteFile(d.TOMLConfigPath(), []byte("model = 'x'"), 0o600))
	assert.Equal(t, d.TOMLConfigPath(), d.FindConfig())

	require.NoError(t, os.WriteFile(d.ConfigPath(), []byte("model: x"), 0o600))
	assert.Equal(t, d.ConfigPath(), d.FindConfig())
}

func TestEnsureStructure(t *testing.T) {
	d := New(filepath.Join(t.TempDir(), DefaultName))
	require.NoError(t, EnsureStructure(d))

	info, err := os.Stat(d.LocalDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	data, err := os.ReadFile(d.GitignorePath())
	require.NoError(t, err)
	assert.Equal(t, "local/\n", string(data))
}

func TestEnsureStructure_Idempotent(t *testing.T) {
	d := New(t.TempDir())
	require.NoError(t, EnsureStructure(d))

	require.NoError(t, os.WriteFile(d.GitignorePath(), []byte("custom\n"), 0o600))
	require.NoError(t, EnsureStructure(d))

	data, err := os.ReadFile(d.GitignorePath())
	require.NoError(t, err)
	assert.Equal(t, "custom\n", string(data))
}

func TestWriteConfig(t *testing.T) {
	d := New(filepath.Join(t.TempDir(), DefaultName))

	wrote, err := WriteConfig(d, []byte("model: a\n"))
	require.NoError(t, err)
	assert.True(t, wrote)

	wrote, err = WriteConfig(d, []byte("model: b\n"))
	require.NoError(t, err)
	assert.False(t, wrote)

	data, err := os.ReadFile(d.ConfigPath())
	require.NoError(t, err)
	assert.Equal(t, "model: a\n", string(data))
}
