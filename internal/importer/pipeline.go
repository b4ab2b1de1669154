// Package importer turns pack archives into registered catalog entries in
// the background.
//
// Each import is a Task that moves Start -> Extracting -> Complete, or to
// Error from any stage, and reports through an unbounded per-task event
// queue. Imports of different archives run in parallel, bounded by the
// worker count. Two imports deriving the same directory name race on
// os.Mkdir: exactly one wins and the other fails with DirectoryExists.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/Embers-of-the-Fire/evemt/internal/archive"
	"github.com/Embers-of-the-Fire/evemt/internal/catalog"
	apperrors "github.com/Embers-of-the-Fire/evemt/internal/errors"
	"github.com/Embers-of-the-Fire/evemt/internal/pack"
)

// RegisteredFunc runs on the task goroutine after a successful
// registration and before the terminal events. It must not fail the import.
type RegisteredFunc func(ctx context.Context, reg catalog.Registration)

// Config configures a Pipeline.
type Config struct {
	// PacksRoot is the directory new packs are extracted into.
	PacksRoot string
	// Workers bounds concurrent extractions. Defaults to 2.
	Workers int
	// OnRegistered is optional.
	OnRegistered RegisteredFunc
	Logger       *slog.Logger
}

// Pipeline starts and tracks import tasks.
type Pipeline struct {
	cfg     Config
	catalog *catalog.Catalog
	sem     *semaphore.Weighted
	logger  *slog.Logger

	wg    sync.WaitGroup
	mu    sync.Mutex
	tasks map[string]*Task
}

// New creates a pipeline registering into cat.
func New(cat *catalog.Catalog, cfg Config) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		cfg:     cfg,
		catalog: cat,
		sem:     semaphore.NewWeighted(int64(cfg.Workers)),
		logger:  logger,
		tasks:   make(map[string]*Task),
	}
}

// Import starts importing the archive at archivePath and returns at once.
// Failures are reported through the task, never as a return value.
// Cancelling ctx after Import returns does not stop the task.
func (p *Pipeline) Import(ctx context.Context, archivePath string) *Task {
	task := newTask(uuid.NewString(), archivePath)

	p.mu.Lock()
	p.tasks[task.ID] = task
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.run(context.WithoutCancel(ctx), task)
	}()
	return task
}

// Task returns a task started by this pipeline.
func (p *Pipeline) Task(id string) (*Task, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.tasks[id]
	return t, ok
}

// Wait blocks until every started task has finished.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

func (p *Pipeline) run(ctx context.Context, task *Task) {
	logger := p.logger.With(
		slog.String("task_id", task.ID),
		slog.String("archive", task.Archive))
	defer func() {
		p.mu.Lock()
		delete(p.tasks, task.ID)
		p.mu.Unlock()
	}()

	task.progress(Progress{Stage: StageStart, Current: 0, MessageKey: KeyStart})

	result, err := p.importArchive(ctx, task)
	if err != nil {
		logger.Warn("import_failed", apperrors.LogAttrs(err)...)
		if kindOf(err) == ErrorDirectoryExists {
			task.progress(Progress{
				Stage:         StageError,
				MessageKey:    KeyDirectoryExists,
				MessageParams: map[string]string{"name": result.PackName},
			})
		} else {
			task.progress(Progress{
				Stage:         StageError,
				MessageKey:    KeyError,
				MessageParams: map[string]string{"error": err.Error()},
			})
		}
		r := failure(err)
		r.PackName = result.PackName
		task.finish(r)
		return
	}

	task.progress(Progress{Stage: StageComplete, Current: ProgressTotal, MessageKey: KeyComplete})
	logger.Info("import_complete",
		slog.String("pack_id", result.PackID),
		slog.Duration("duration", time.Since(task.Started)))
	task.finish(result)
}

// importArchive does the work of one task. The returned Result carries
// PackName whenever the directory name could be derived.
func (p *Pipeline) importArchive(ctx context.Context, task *Task) (Result, error) {
	name, err := pack.DirName(task.Archive)
	if err != nil {
		return Result{}, err
	}
	result := Result{PackName: name}
	target := filepath.Join(p.cfg.PacksRoot, name)

	// Fast path; the authoritative check is the os.Mkdir inside Extract.
	if _, err := os.Stat(target); err == nil {
		return result, directoryExists(name, target, nil)
	}

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return result, apperrors.New(apperrors.ErrCodeIO, "import interrupted", err)
	}
	defer p.sem.Release(1)

	if err := os.MkdirAll(p.cfg.PacksRoot, 0o755); err != nil {
		return result, apperrors.New(apperrors.ErrCodeIO, "failed to create packs directory", err).
			WithDetail("path", p.cfg.PacksRoot)
	}

	task.progress(Progress{Stage: StageExtracting, Current: 10, MessageKey: KeyOpeningFile})
	err = archive.Extract(task.Archive, target, func(ev archive.Progress) {
		switch ev.Phase {
		case archive.PhaseDirectoryCreated:
			task.progress(Progress{Stage: StageExtracting, Current: 20, MessageKey: KeyCreatingDir})
		case archive.PhaseCounted:
			task.progress(Progress{
				Stage:         StageExtracting,
				Current:       30,
				MessageKey:    KeyExtractingFiles,
				MessageParams: map[string]string{"total": strconv.Itoa(ev.Total)},
			})
		case archive.PhaseEntry:
			task.progress(Progress{
				Stage:      StageExtracting,
				Current:    30 + (ev.Index-1)*50/ev.Total,
				MessageKey: KeyExtractingFile,
				MessageParams: map[string]string{
					"current": strconv.Itoa(ev.Index),
					"total":   strconv.Itoa(ev.Total),
				},
			})
		}
	})
	if err != nil {
		if apperrors.Is(err, apperrors.ErrTargetExists) {
			return result, directoryExists(name, target, err)
		}
		return result, err
	}

	reg, err := p.catalog.Register(target)
	if err != nil {
		return result, apperrors.New(apperrors.ErrCodeRegistration, "failed to register imported pack", err).
			WithDetail("path", target).
			WithDetail("reason", apperrors.Kind(err))
	}
	result.Success = true
	result.PackID = reg.Descriptor.ID

	if p.cfg.OnRegistered != nil {
		p.cfg.OnRegistered(ctx, reg)
	}
	return result, nil
}

func directoryExists(name, target string, cause error) error {
	return apperrors.New(apperrors.ErrCodeDirectoryExists,
		fmt.Sprintf("pack directory %q already exists", name), cause).
		WithDetail("name", name).
		WithDetail("path", target)
}
