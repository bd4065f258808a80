package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	c, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Config{LogLevel: "warn"}, c)
}

func TestLoadUnderRegularFileReturnsDefaults(t *testing.T) {
	parent := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(parent, []byte("x"), 0o600))

	c, err := Load(filepath.Join(parent, "home"))
	require.NoError(t, err)
	assert.Equal(t, Config{LogLevel: "warn"}, c)
}

func TestSaveThenLoad(t *testing.T) {
	dir := t.TempDir()
	want := Config{
		LoginURL:            "https://auth.example.com/login",
		LogoutURL:           "https://auth.example.com/logout",
		Proxy:               "http://proxy.local:3128",
		LogLevel:            "debug",
		RememberCredentials: true,
	}
	require.NoError(t, Save(dir, want))

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(Path(dir), []byte("login_url: [unterminated"), 0o600))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestWithEnvOverridesFile(t *testing.T) {
	t.Setenv(EnvLoginURL, "https://env.example.com/login")
	t.Setenv(EnvProxy, "")

	c := Config{LoginURL: "https://file.example.com/login", Proxy: "http://file-proxy"}.WithEnv()
	assert.Equal(t, "https://env.example.com/login", c.LoginURL)
	assert.Equal(t, "http://file-proxy", c.Proxy)
}

func TestGetSet(t *testing.T) {
	var c Config
	require.NoError(t, c.Set("proxy", "http://p:1"))
	require.NoError(t, c.Set("remember_credentials", "true"))

	v, err := c.Get("proxy")
	require.NoError(t, err)
	assert.Equal(t, "http://p:1", v)
	assert.True(t, c.RememberCredentials)

	assert.Error(t, c.Set("remember_credentials", "maybe"))
	assert.Error(t, c.Set("nope", "x"))
	_, err = c.Get("nope")
	assert.Error(t, err)
}
