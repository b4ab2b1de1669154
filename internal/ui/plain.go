package ui

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/Embers-of-the-Fire/evemt/internal/importer"
)

// PlainRenderer outputs one line per event (for CI/pipes).
type PlainRenderer struct {
	mu   sync.Mutex
	out  io.Writer
	lang string
}

// NewPlainRenderer creates a plain text renderer.
func NewPlainRenderer(cfg Config) *PlainRenderer {
	return &PlainRenderer{
		out:  cfg.Output,
		lang: cfg.Language,
	}
}

// Start implements Renderer.
func (r *PlainRenderer) Start(ctx context.Context) error {
	return nil
}

// Progress implements Renderer.
// Format: [STAGE] pct% - message
func (r *PlainRenderer) Progress(p importer.Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintf(r.out, "[%s] %3d%% - %s\n",
		stageIcon(p.Stage), percent(p.Current, p.Total), Message(p.MessageKey, p.MessageParams, r.lang))
}

// Result implements Renderer.
func (r *PlainRenderer) Result(res importer.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if res.Success {
		_, _ = fmt.Fprintf(r.out, "Imported %s (%s)\n", res.PackID, res.PackName)
		return
	}
	_, _ = fmt.Fprintf(r.out, "ERROR: %s: %s\n", res.ErrorKind, res.ErrorParams["error"])
}

// Stop implements Renderer.
func (r *PlainRenderer) Stop() error {
	return nil
}

func stageIcon(s importer.Stage) string {
	switch s {
	case importer.StageStart:
		return "START"
	case importer.StageExtracting:
		return "EXTRACT"
	case importer.StageComplete:
		return "DONE"
	case importer.StageError:
		return "ERROR"
	default:
		return "???"
	}
}

func percent(current, total int) int {
	if total <= 0 {
		return 0
	}
	pct := current * 100 / total
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	return pct
}
