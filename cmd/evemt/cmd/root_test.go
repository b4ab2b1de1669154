package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Embers-of-the-Fire/evemt/internal/errors"
	"github.com/Embers-of-the-Fire/evemt/internal/testutil"
	"github.com/Embers-of-the-Fire/evemt/pkg/version"
)

type env struct {
	dataDir    string
	configPath string
}

func newEnv(t *testing.T) env {
	t.Helper()
	for _, key := range []string{"EVEMT_DATA_DIR", "EVEMT_LOG_LEVEL", "EVEMT_IMPORT_WORKERS", "EVEMT_SEARCH_CACHE_SIZE"} {
		t.Setenv(key, "")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("NO_COLOR", "1")
	return env{
		dataDir:    t.TempDir(),
		configPath: filepath.Join(t.TempDir(), "config.yaml"),
	}
}

// run executes the CLI with args against the env's data directory.
func (e env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(append([]string{"--data-dir", e.dataDir, "--config", e.configPath}, args...))
	err := root.Execute()
	_ = stopLogging(nil, nil)
	return buf.String(), err
}

func (e env) archive(t *testing.T, name, id string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	testutil.Minerals(id).WriteArchive(t, path)
	return path
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"pack", "search", "loc", "settings", "config", "logs", "version"} {
		sub, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
}

func TestRootCmd_InvalidConfigFails(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.WriteFile(e.configPath, []byte("import:\n  workers: -1\n"), 0o644))

	_, err := e.run(t, "pack", "list")

	assert.ErrorIs(t, err, apperrors.ErrConfigInvalid)
}

func TestRootCmd_WritesLogFile(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "--debug", "pack", "list")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(e.dataDir, "logs", "evemt.log"))
}

func TestVersionCmd(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "evemt")
	assert.Contains(t, out, version.Version)

	out, err = e.run(t, "version", "--json")
	require.NoError(t, err)
	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, version.Version, info["version"])
}
