package config_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brogergvhs/mangascout/internal/config"
)

func isolate(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("APPDATA", "")
	t.Setenv("XDG_CONFIG_HOME", dir)

	return filepath.Join(dir, "mangascout")
}

func TestLoadMergedWithoutConfig(t *testing.T) {
	isolate(t)

	cfg, used, err := config.LoadMerged(config.Options{Workers: 9})
	require.NoError(t, err)
	assert.Contains(t, used, "default config in memory")

	assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 1, cfg.FetchAttempts)
	assert.Equal(t, 9, cfg.Workers)
	assert.True(t, cfg.Headless)
}

func TestLoadMergedFromActiveConfig(t *testing.T) {
	root := isolate(t)

	path, err := config.InitDefaultConfig()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "configs", "Default.yaml"), path)

	require.NoError(t, os.WriteFile(path, []byte(
		"fetch_timeout: 5s\ncloudflare_bypass: true\nheadless: false\nuser_agent: test-agent\n"), 0644))

	cfg, used, err := config.LoadMerged(config.Options{UserAgent: "flag-agent", FetchTimeout: 2 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, path, used)

	assert.Equal(t, 2*time.Second, cfg.FetchTimeout)
	assert.True(t, cfg.CloudflareBypass)
	assert.False(t, cfg.Headless)
	assert.Equal(t, "flag-agent", cfg.UserAgent)
	// missing keys keep defaults
	assert.Equal(t, config.DefaultRenderTimeout, cfg.RenderTimeout)
	assert.Equal(t, config.DefaultWorkers, cfg.Workers)
}

func TestLoadMergedIgnoreConfig(t *testing.T) {
	isolate(t)

	path, err := config.InitDefaultConfig()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("workers: 12\n"), 0644))

	cfg, used, err := config.LoadMerged(config.Options{IgnoreConfig: true, Headful: true})
	require.NoError(t, err)
	assert.Equal(t, "(ignored config)", used)
	assert.Equal(t, config.DefaultWorkers, cfg.Workers)
	assert.False(t, cfg.Headless)
}

func TestSaveYAMLWritesDurationsAsText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, config.SaveYAML(config.DefaultConfig(), path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "fetch_timeout: 15s")
}

func TestMultiConfigLifecycle(t *testing.T) {
	isolate(t)

	_, err := config.CurrentLabel()
	assert.True(t, errors.Is(err, config.ErrNoConfig))

	_, err = config.InitDefaultConfig()
	require.NoError(t, err)

	_, err = config.InitDefaultConfig()
	assert.ErrorIs(t, err, os.ErrExist)

	_, err = config.CreateEmptyConfig("work")
	require.NoError(t, err)
	_, err = config.CreateEmptyConfig("work")
	assert.Error(t, err)
	_, err = config.CreateEmptyConfig("../escape")
	assert.Error(t, err)

	require.NoError(t, config.SwitchConfig("work"))
	label, err := config.CurrentLabel()
	require.NoError(t, err)
	assert.Equal(t, "work", label)

	require.NoError(t, config.RenameConfig("work", "job"))
	label, _ = config.CurrentLabel()
	assert.Equal(t, "job", label)

	p, err := config.ConfigPathByLabel("job")
	require.NoError(t, err)
	assert.FileExists(t, p)

	list, err := config.ListConfigs()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Default", list[0].Label)
	assert.True(t, list[1].Active)

	switched, err := config.RemoveConfig("job")
	require.NoError(t, err)
	assert.True(t, switched)

	_, err = config.RemoveConfig("Default")
	assert.Error(t, err)
}

func TestAddConfigRejectsInvalidYAML(t *testing.T) {
	isolate(t)

	src := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(src, []byte("workers: [1, 2"), 0644))
	assert.Error(t, config.AddConfig("bad", src))

	good := filepath.Join(t.TempDir(), "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("workers: 2\n"), 0644))
	assert.NoError(t, config.AddConfig("good", good))
}

func TestProfilesPath(t *testing.T) {
	root := isolate(t)

	assert.Equal(t, filepath.Join(root, "profiles.yaml"), config.ProfilesPath(nil))
	assert.Equal(t, filepath.Join("/srv/p", "profiles.yaml"), config.ProfilesPath(&config.Config{ProfilesDir: "/srv/p"}))
}

func TestPrint(t *testing.T) {
	isolate(t)

	var buf bytes.Buffer
	cfg := config.DefaultConfig()
	cfg.ChromePath = "/usr/bin/chromium"
	cfg.Print(&buf)

	assert.Contains(t, buf.String(), " -fetch_timeout: 15s")
	assert.Contains(t, buf.String(), " -chrome_path: /usr/bin/chromium")
}
