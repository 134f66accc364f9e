package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigWithBaseDir(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.BaseDir)
	assert.Equal(t, filepath.Join(dir, "export"), cfg.ExportDir)
	assert.False(t, cfg.Debug)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	dir := t.TempDir()
	exports := filepath.Join(t.TempDir(), "out")
	t.Setenv("AUTOMATE_HOME", dir)
	t.Setenv("AUTOMATE_DEBUG", "true")
	t.Setenv("AUTOMATE_EXPORT_DIR", exports)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.BaseDir)
	assert.Equal(t, exports, cfg.ExportDir)
	assert.True(t, cfg.Debug)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	contents := "debug: true\nlog_level: info\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "automate.yaml"), []byte(contents), 0644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfigRejectsBrokenFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "automate.yaml"), []byte("debug: [\n"), 0644))

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.Validate())

	cfg = &Config{BaseDir: "relative", ExportDir: "exports"}
	require.NoError(t, cfg.Validate())
	assert.True(t, filepath.IsAbs(cfg.BaseDir))
	assert.True(t, filepath.IsAbs(cfg.ExportDir))
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	require.NoError(t, cfg.EnsureDirectories())
	for _, sub := range []string{"patterns", "toolkits", "drafts", "codetemplates", "export"} {
		info, err := os.Stat(filepath.Join(dir, sub))
		require.NoError(t, err, sub)
		assert.True(t, info.IsDir())
	}
}

func TestMetadata(t *testing.T) {
	cfg := &Config{BaseDir: "/tmp/a", ExportDir: "/tmp/b"}
	meta := cfg.Metadata()
	assert.Equal(t, "automate", meta.ProductName)
	assert.Equal(t, RuntimeVersion, meta.RuntimeVersion)
	assert.Equal(t, "/tmp/b", meta.ExportDir)
}
