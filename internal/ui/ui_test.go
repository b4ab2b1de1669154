package ui

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Embers-of-the-Fire/evemt/internal/catalog"
	"github.com/Embers-of-the-Fire/evemt/internal/importer"
	"github.com/Embers-of-the-Fire/evemt/internal/testutil"
)

func TestIsTTY_WithBuffer_ReturnsFalse(t *testing.T) {
	assert.False(t, IsTTY(&bytes.Buffer{}))
}

func TestIsTTY_WithNil_ReturnsFalse(t *testing.T) {
	assert.False(t, IsTTY(nil))
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig(&bytes.Buffer{})

	assert.NotNil(t, cfg.Output)
	assert.False(t, cfg.ForcePlain)
	assert.False(t, cfg.NoColor)
	assert.Equal(t, "en", cfg.Language)
}

func TestNewConfig_Options(t *testing.T) {
	cfg := NewConfig(&bytes.Buffer{}, WithForcePlain(true), WithNoColor(true), WithLanguage("zh"))

	assert.True(t, cfg.ForcePlain)
	assert.True(t, cfg.NoColor)
	assert.Equal(t, "zh", cfg.Language)
}

func TestNewRenderer_NonTTYIsPlain(t *testing.T) {
	r := NewRenderer(NewConfig(&bytes.Buffer{}))
	_, ok := r.(*PlainRenderer)
	assert.True(t, ok)
}

func TestDetectCI(t *testing.T) {
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"} {
		t.Setenv(v, "")
	}
	t.Setenv("CI", "true")
	assert.True(t, DetectCI())
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		params map[string]string
		lang   string
		want   string
	}{
		{"english with params", importer.KeyExtractingFile, map[string]string{"current": "3", "total": "7"}, "en", "Extracting file 3 of 7"},
		{"chinese", importer.KeyComplete, nil, "zh", "导入完成"},
		{"unknown language falls back", importer.KeyStart, nil, "fr", "Starting import"},
		{"unknown key", "pack.progress.mystery", nil, "en", "pack.progress.mystery"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Message(tt.key, tt.params, tt.lang))
		})
	}
}

func TestPlay_RendersWholeStream(t *testing.T) {
	// Given: a running import
	packs := filepath.Join(t.TempDir(), "packs")
	archivePath := filepath.Join(t.TempDir(), "tq.zip")
	testutil.Minerals("tranquility").WriteArchive(t, archivePath)
	p := importer.New(catalog.New(catalog.PackLoader{}, nil), importer.Config{PacksRoot: packs})
	task := p.Import(context.Background(), archivePath)

	// When: playing it through a plain renderer
	buf := &bytes.Buffer{}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	res, err := Play(ctx, NewPlainRenderer(NewConfig(buf)), task)

	// Then: the result is returned and every stage was printed
	require.NoError(t, err)
	assert.True(t, res.Success)
	out := buf.String()
	assert.Contains(t, out, "[START]")
	assert.Contains(t, out, "[EXTRACT]")
	assert.Contains(t, out, "[DONE] 100% - Import complete")
	assert.Contains(t, out, "Imported tranquility (tq)")
}
