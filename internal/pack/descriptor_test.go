package pack

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Embers-of-the-Fire/evemt/internal/errors"
	"github.com/Embers-of-the-Fire/evemt/internal/testutil"
)

func TestLoad_ReadsManifest(t *testing.T) {
	// Given: a pack directory with a manifest
	root := t.TempDir()
	testutil.Minerals("tranquility").WriteManifest(t, root)

	// When: loading the descriptor
	d, err := Load(root)

	// Then: all metadata is decoded and the root is recorded
	require.NoError(t, err)
	assert.Equal(t, "tranquility", d.ID)
	assert.Equal(t, LocalizedName{En: "Tranquility", Zh: "晨曦"}, d.Name)
	assert.True(t, d.Created.Equal(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, GameInfo{Version: "22.01", Build: "2904123"}, d.Game)
	assert.Equal(t, root, d.Root)
	assert.Equal(t, "tranquility (22.01 build 2904123)", d.String())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		manifest *string
		want     error
	}{
		{"missing", nil, apperrors.ErrManifestMissing},
		{"not json", ptr("{"), apperrors.ErrManifestParse},
		{"bad timestamp", ptr(`{"server":"tq","created":"yesterday"}`), apperrors.ErrManifestParse},
		{"empty id", ptr(`{"server":" ","created":"2025-01-01T00:00:00Z"}`), apperrors.ErrManifestParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			if tt.manifest != nil {
				require.NoError(t, os.WriteFile(filepath.Join(root, ManifestName), []byte(*tt.manifest), 0o644))
			}

			_, err := Load(root)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDescriptor_DisplayName(t *testing.T) {
	d := &Descriptor{Metadata: Metadata{ID: "tq", Name: LocalizedName{En: "Tranquility", Zh: "晨曦"}}}
	assert.Equal(t, "Tranquility", d.DisplayName("en"))
	assert.Equal(t, "晨曦", d.DisplayName("zh"))

	d.Name.Zh = ""
	assert.Equal(t, "Tranquility", d.DisplayName("zh"))

	d.Name.En = ""
	assert.Equal(t, "tq", d.DisplayName("en"))
}

func TestDirName(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"/downloads/tranquility.zip", "tranquility", false},
		{"serenity.2025.zip", "serenity.2025", false},
		{"noext", "noext", false},
		{"/downloads/.zip", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := DirName(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrInvalidFileName)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func ptr(s string) *string { return &s }
