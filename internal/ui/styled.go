package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/Embers-of-the-Fire/evemt/internal/importer"
)

const barWidth = 30

// StyledRenderer redraws a single progress line in place on a terminal.
type StyledRenderer struct {
	mu     sync.Mutex
	out    io.Writer
	lang   string
	styles Styles
	// open is set while a progress line is drawn without its newline.
	open bool
}

// NewStyledRenderer creates a renderer using lipgloss styles.
func NewStyledRenderer(cfg Config) *StyledRenderer {
	return &StyledRenderer{
		out:    cfg.Output,
		lang:   cfg.Language,
		styles: GetStyles(cfg.NoColor || DetectNoColor()),
	}
}

// Start implements Renderer.
func (r *StyledRenderer) Start(ctx context.Context) error {
	return nil
}

// Progress implements Renderer.
func (r *StyledRenderer) Progress(p importer.Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg := Message(p.MessageKey, p.MessageParams, r.lang)
	stage := r.styles.Stage.Render(fmt.Sprintf("%-8s", p.Stage))
	line := fmt.Sprintf("%s %s %3d%% %s", stage, r.bar(p.Current, p.Total), percent(p.Current, p.Total), msg)
	if p.Stage == importer.StageError {
		line = fmt.Sprintf("%s %s", stage, r.styles.Error.Render(msg))
	}

	// \r plus erase-to-end-of-line redraws the current line.
	_, _ = fmt.Fprintf(r.out, "\r\x1b[K%s", line)
	r.open = true
	if p.Stage.Terminal() {
		_, _ = fmt.Fprintln(r.out)
		r.open = false
	}
}

// Result implements Renderer.
func (r *StyledRenderer) Result(res importer.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.open {
		_, _ = fmt.Fprintln(r.out)
		r.open = false
	}
	if res.Success {
		_, _ = fmt.Fprintln(r.out, r.styles.Success.Render(
			fmt.Sprintf("✓ Imported %s", res.PackID))+r.styles.Label.Render(" ("+res.PackName+")"))
		return
	}
	_, _ = fmt.Fprintln(r.out, r.styles.Error.Render(
		fmt.Sprintf("✗ %s: %s", res.ErrorKind, res.ErrorParams["error"])))
}

// Stop implements Renderer.
func (r *StyledRenderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.open {
		_, _ = fmt.Fprintln(r.out)
		r.open = false
	}
	return nil
}

func (r *StyledRenderer) bar(current, total int) string {
	filled := percent(current, total) * barWidth / 100
	return r.styles.Progress.Render(strings.Repeat("█", filled)) +
		r.styles.Dim.Render(strings.Repeat("░", barWidth-filled))
}
