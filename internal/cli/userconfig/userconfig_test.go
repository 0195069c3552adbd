package userconfig

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, &UserConfig{}, cfg)
}

func TestRememberLogin(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")

	require.NoError(t, RememberLogin("https://api.campus.edu", "asha@campus.edu", "student"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://api.campus.edu", cfg.APIBaseURL)
	assert.Equal(t, "asha@campus.edu", cfg.Email)
	assert.Equal(t, "student", cfg.Role)

	path, err := Path()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, home))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoad_CorruptFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")

	path, err := Path()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, []byte("{"), 0600))

	_, err = Load()
	assert.ErrorContains(t, err, "failed to parse user config file")
}

func TestEmailFor(t *testing.T) {
	cfg := &UserConfig{APIBaseURL: "https://api.campus.edu", Email: "asha@campus.edu"}

	assert.Equal(t, "asha@campus.edu", cfg.EmailFor("https://api.campus.edu"))
	assert.Empty(t, cfg.EmailFor("https://staging.campus.edu"))
}

func TestPath_HonoursXDGConfigHome(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on linux")
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path, err := Path()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, appDir, "config.json"), path)
}
