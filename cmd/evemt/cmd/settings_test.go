package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Embers-of-the-Fire/evemt/internal/errors"
)

func TestSettingsCmd(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "theme:        dark")
	assert.Contains(t, out, "language:     zh")
	assert.Contains(t, out, "(none)")

	_, err = e.run(t, "settings", "theme", "LIGHT")
	require.NoError(t, err)
	_, err = e.run(t, "settings", "language", "en")
	require.NoError(t, err)

	out, err = e.run(t, "settings", "show", "--json")
	require.NoError(t, err)
	var st map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, "light", st["theme"])
	assert.Equal(t, "en", st["language"])
	assert.Nil(t, st["enabled_pack_id"])

	out, err = e.run(t, "settings", "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "theme:        dark")

	_, err = e.run(t, "settings", "theme", "neon")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestLogsCmd(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, "pack", "import", "--plain", e.archive(t, "tq.zip", "tranquility"))
	require.NoError(t, err)

	out, err := e.run(t, "logs", "-n", "200", "--filter", "pack_registered")
	require.NoError(t, err)
	assert.Contains(t, out, "pack_registered")

	_, err = e.run(t, "logs", "--level", "loud")
	assert.Error(t, err)
}
