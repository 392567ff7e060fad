package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ".", cfg.SourceDir)
	assert.Equal(t, "./...", cfg.Packages)
	assert.Equal(t, "go", cfg.GoBinary)
	assert.Equal(t, "atomic", cfg.CoverMode)
	assert.Equal(t, "go mod download", cfg.Bootstrap)
	assert.Equal(t, []string{"xdg-open", "open"}, cfg.Viewers)
	assert.True(t, cfg.OpenReport)
	assert.NoError(t, cfg.validate())
}

func TestLoadConfigFileOverlaysBase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cover.yaml")
	content := `
packages: ./internal/...
covermode: count
bootstrap: go mod download
viewers:
  - firefox
env:
  CGO_ENABLED: "0"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfigFile(path, DefaultConfig())
	require.NoError(t, err)

	// Overridden by the file.
	assert.Equal(t, "./internal/...", cfg.Packages)
	assert.Equal(t, "count", cfg.CoverMode)
	assert.Equal(t, "go mod download", cfg.Bootstrap)
	assert.Equal(t, []string{"firefox"}, cfg.Viewers)
	assert.Equal(t, map[string]string{"CGO_ENABLED": "0"}, cfg.Env)

	// Untouched by the file.
	assert.Equal(t, ".", cfg.SourceDir)
	assert.Equal(t, "go", cfg.GoBinary)
	assert.Equal(t, "coverage", cfg.CoverageDir)
}

func TestLoadConfigFileErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "absent.yaml"), DefaultConfig())
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cover.yaml")
		require.NoError(t, os.WriteFile(path, []byte("packages: [unclosed"), 0644))
		_, err := LoadConfigFile(path, DefaultConfig())
		assert.Error(t, err)
	})
}

func TestFindViewer(t *testing.T) {
	lookPath := lookPathWith("open")

	viewer, ok := findViewer(lookPath, []string{"xdg-open", "open"})
	require.True(t, ok)
	assert.Equal(t, "/usr/bin/open", viewer)

	_, ok = findViewer(lookPath, []string{"xdg-open"})
	assert.False(t, ok)
}

func TestModulePath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"),
		[]byte("module example.com/project\n\ngo 1.23\n"), 0644))

	path, err := ModulePath(dir)
	require.NoError(t, err)
	assert.Equal(t, "example.com/project", path)

	t.Run("missing go.mod", func(t *testing.T) {
		_, err := ModulePath(t.TempDir())
		assert.Error(t, err)
	})
}
