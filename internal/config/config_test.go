package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "automata.yaml")
	content := `
store:
  backend: redis
  redis:
    addr: redis:6379
    db: 2
turing:
  step_limit: 500
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, BackendRedis, config.Store.Backend)
	assert.Equal(t, "redis:6379", config.Store.Redis.Addr)
	assert.Equal(t, 2, config.Store.Redis.DB)
	assert.Equal(t, "automata:log:", config.Store.Redis.Prefix)
	assert.Equal(t, 500, config.Turing.StepLimit)
	assert.Equal(t, ":8080", config.Server.Addr)
	assert.Equal(t, 50, config.Equivalence.Samples)
	assert.Equal(t, 1000, config.Equivalence.SampleLimit)
	assert.Equal(t, 10000, config.Determinize.WorkLimit)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "missing.yaml"))
		assert.True(t, errors.Is(err, fs.ErrNotExist), "got %v", err)
	})

	tests := []struct {
		name    string
		content string
		invalid bool
	}{
		{name: "unknown key", content: "stor:\n  backend: file\n"},
		{name: "unknown backend", content: "store:\n  backend: etcd\n", invalid: true},
		{name: "zero step limit", content: "turing:\n  step_limit: 0\n", invalid: true},
		{name: "negative samples", content: "equivalence:\n  samples: -1\n", invalid: true},
		{name: "samples above limit", content: "equivalence:\n  samples: 80\n  sample_limit: 60\n", invalid: true},
		{name: "sample limit too large", content: "equivalence:\n  sample_limit: 100000\n", invalid: true},
		{name: "length limit too large", content: "equivalence:\n  length_limit: 1000000\n", invalid: true},
		{name: "zero work limit", content: "determinize:\n  work_limit: 0\n", invalid: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
			assert.Equal(t, tt.invalid, errors.Is(err, ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	config, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), config)
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultPath)

	config := Default()
	config.Store.Backend = BackendMemory
	config.Server.Addr = "127.0.0.1:9000"
	require.NoError(t, Write(path, config))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, config, loaded)
}
