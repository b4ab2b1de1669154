package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Embers-of-the-Fire/evemt/internal/importer"
)

func TestPlainRenderer_Progress_OutputFormat(t *testing.T) {
	// Given: a plain renderer
	buf := &bytes.Buffer{}
	r := NewPlainRenderer(NewConfig(buf))

	// When: reporting an extraction step
	r.Progress(importer.Progress{
		Stage:         importer.StageExtracting,
		Current:       55,
		Total:         100,
		MessageKey:    importer.KeyExtractingFile,
		MessageParams: map[string]string{"current": "4", "total": "8"},
	})

	// Then: output is one formatted line
	assert.Equal(t, "[EXTRACT]  55% - Extracting file 4 of 8\n", buf.String())
}

func TestPlainRenderer_NoANSICodes(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewPlainRenderer(NewConfig(buf))

	for _, stage := range []importer.Stage{importer.StageStart, importer.StageExtracting, importer.StageComplete, importer.StageError} {
		r.Progress(importer.Progress{Stage: stage, Current: 50, Total: 100, MessageKey: importer.KeyStart})
	}
	r.Result(importer.Result{Success: false, ErrorKind: importer.ErrorIO, ErrorParams: map[string]string{"error": "disk full"}})

	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestPlainRenderer_Result(t *testing.T) {
	tests := []struct {
		name string
		res  importer.Result
		want string
	}{
		{
			name: "success",
			res:  importer.Result{Success: true, PackID: "tranquility", PackName: "tq"},
			want: "Imported tranquility (tq)\n",
		},
		{
			name: "failure",
			res: importer.Result{
				ErrorKind:   importer.ErrorDirectoryExists,
				ErrorParams: map[string]string{"error": "pack directory \"tq\" already exists"},
			},
			want: "ERROR: DirectoryExists: pack directory \"tq\" already exists\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			NewPlainRenderer(NewConfig(buf)).Result(tt.res)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestPercent_Clamps(t *testing.T) {
	assert.Equal(t, 0, percent(5, 0))
	assert.Equal(t, 100, percent(150, 100))
	assert.Equal(t, 0, percent(-1, 100))
	assert.Equal(t, 30, percent(30, 100))
}
