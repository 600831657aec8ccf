package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamcutter/midna/internal/domain"
)

func TestDataDirHonoursXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)

	got, err := DataDir()
	require.NoError(t, err)
	assert.Equal(t, dir, got)
}

func TestDataDirIgnoresRelativeXDG(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_DATA_HOME", "relative/path")
	t.Setenv("HOME", home)

	got, err := DataDir()
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
	assert.NotEqual(t, "relative/path", got)
}

func TestLoadWritesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	_, err = os.Stat(filepath.Join(dir, DefaultStoreName, "config.toml"))
	assert.NoError(t, err)
}

func TestLoadMergesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
index_url = "http://localhost:1234/packages.gz"
build_args = ["-s"]
http_timeout = "5s"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:1234/packages.gz", cfg.IndexURL)
	assert.Equal(t, []string{"-s"}, cfg.BuildArgs)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "https://aur.archlinux.org", cfg.CloneURL)
	assert.Equal(t, "sudo", cfg.ElevateCommand)
	assert.Equal(t, DefaultStoreName, cfg.StoreName)
}

func TestLoadMissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("index_url = ["), 0644))

	_, err := Load(path)
	assert.ErrorIs(t, err, domain.ErrParse)
}

func TestLoadKeepsExplicitEmptyValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
elevate_command = ""
noconfirm_flag = ""
install_args = []
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Empty(t, cfg.ElevateCommand)
	assert.Empty(t, cfg.NoConfirmFlag)
	assert.Empty(t, cfg.InstallArgs)
	assert.Equal(t, "pacman", cfg.InstallCommand)
	assert.Equal(t, []string{"-s", "--noconfirm"}, cfg.BuildArgs)
}

func TestLoadRejectsUnusableValues(t *testing.T) {
	for _, content := range []string{
		`store_name = ""`,
		`build_command = ""`,
		`artifact_exts = []`,
		`max_parallel = 0`,
	} {
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		_, err := Load(path)
		assert.ErrorIs(t, err, domain.ErrParse, content)
	}
}
