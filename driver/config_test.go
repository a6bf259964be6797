package driver

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/colorfulnotion/sh4core/backend"
	"github.com/colorfulnotion/sh4core/sh4errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sh4.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, backend.Threaded, cfg.Backend)
	assert.Equal(t, 1, cfg.CompileThreshold)
	assert.True(t, cfg.Optimize)
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `{"backend":"none","compileThreshold":8,"blockCheck":true}`))
	require.NoError(t, err)
	assert.Equal(t, backend.None, cfg.Backend)
	assert.Equal(t, 8, cfg.CompileThreshold)
	assert.True(t, cfg.BlockCheck)
	// Fields absent from the file keep their defaults.
	assert.Equal(t, DefaultConfig().MaxBlockOps, cfg.MaxBlockOps)
	assert.True(t, cfg.Optimize)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
	}{
		{"unknown backend", `{"backend":"llvm"}`, sh4errors.ErrDUnknownBack},
		{"bad json", `{"backend":`, sh4errors.ErrDBadConfig},
		{"zero block ops", `{"maxBlockOps":0}`, sh4errors.ErrDBadConfig},
		{"negative threshold", `{"compileThreshold":-1}`, sh4errors.ErrDBadConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.True(t, errors.Is(err, tt.err), "got %v", err)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
