// Package ui renders import progress, pack listings, and search results on
// the terminal.
package ui

import (
	"context"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/Embers-of-the-Fire/evemt/internal/importer"
)

// Renderer displays one import task's event stream.
type Renderer interface {
	// Start initializes the renderer.
	Start(ctx context.Context) error

	// Progress displays a progress event.
	Progress(p importer.Progress)

	// Result displays the terminal result.
	Result(r importer.Result)

	// Stop flushes and cleans up.
	Stop() error
}

// Config configures the UI renderer.
type Config struct {
	Output     io.Writer
	ForcePlain bool
	NoColor    bool
	// Language selects message text: "en" or "zh".
	Language string
}

// ConfigOption is a function that modifies Config.
type ConfigOption func(*Config)

// WithForcePlain forces plain text output.
func WithForcePlain(force bool) ConfigOption {
	return func(c *Config) {
		c.ForcePlain = force
	}
}

// WithNoColor disables color output.
func WithNoColor(noColor bool) ConfigOption {
	return func(c *Config) {
		c.NoColor = noColor
	}
}

// WithLanguage sets the message language.
func WithLanguage(lang string) ConfigOption {
	return func(c *Config) {
		c.Language = lang
	}
}

// NewConfig creates a new Config with the given output and options.
func NewConfig(output io.Writer, opts ...ConfigOption) Config {
	cfg := Config{
		Output:   output,
		Language: "en",
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// NewRenderer returns a styled renderer for interactive terminals and a
// plain one for CI, pipes, or when plain output is forced.
func NewRenderer(cfg Config) Renderer {
	if cfg.ForcePlain || !IsTTY(cfg.Output) || DetectCI() {
		return NewPlainRenderer(cfg)
	}
	return NewStyledRenderer(cfg)
}

// Play feeds every event of task to r until the stream closes or ctx is
// done, and returns the task result.
func Play(ctx context.Context, r Renderer, task *importer.Task) (importer.Result, error) {
	if err := r.Start(ctx); err != nil {
		return importer.Result{}, err
	}
	defer func() { _ = r.Stop() }()

	for {
		select {
		case <-ctx.Done():
			task.Detach()
			return importer.Result{}, ctx.Err()
		case ev, ok := <-task.Events():
			if !ok {
				return task.Wait(ctx)
			}
			switch {
			case ev.Progress != nil:
				r.Progress(*ev.Progress)
			case ev.Result != nil:
				r.Result(*ev.Result)
			}
		}
	}
}

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}

	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	return false
}

// DetectNoColor checks if NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// DetectCI checks if running in a CI environment.
func DetectCI() bool {
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"}
	for _, v := range ciVars {
		if _, exists := os.LookupEnv(v); exists {
			return true
		}
	}
	return false
}
