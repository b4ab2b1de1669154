package importer

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Embers-of-the-Fire/evemt/internal/archive"
	"github.com/Embers-of-the-Fire/evemt/internal/catalog"
	apperrors "github.com/Embers-of-the-Fire/evemt/internal/errors"
	"github.com/Embers-of-the-Fire/evemt/internal/testutil"
)

type fixture struct {
	packs    string
	catalog  *catalog.Catalog
	pipeline *Pipeline

	mu         sync.Mutex
	registered []catalog.Registration
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{packs: filepath.Join(t.TempDir(), "packs")}
	f.catalog = catalog.New(catalog.PackLoader{}, nil)
	f.pipeline = New(f.catalog, Config{
		PacksRoot: f.packs,
		Workers:   2,
		OnRegistered: func(_ context.Context, reg catalog.Registration) {
			f.mu.Lock()
			f.registered = append(f.registered, reg)
			f.mu.Unlock()
		},
	})
	return f
}

func writeArchive(t *testing.T, dir, name, id string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	testutil.Minerals(id).WriteArchive(t, path)
	return path
}

// drain reads the whole event stream, failing the test if it never closes.
func drain(t *testing.T, task *Task) []Event {
	t.Helper()
	var events []Event
	timeout := time.After(10 * time.Second)
	for {
		select {
		case e, ok := <-task.Events():
			if !ok {
				return events
			}
			events = append(events, e)
		case <-timeout:
			t.Fatal("event stream did not close")
			return nil
		}
	}
}

func progressOf(events []Event) []Progress {
	var out []Progress
	for _, e := range events {
		if e.Progress != nil {
			out = append(out, *e.Progress)
		}
	}
	return out
}

func wait(t *testing.T, task *Task) Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	r, err := task.Wait(ctx)
	require.NoError(t, err)
	return r
}

func TestImport_Success(t *testing.T) {
	// Given: a valid archive and an empty catalog
	f := newFixture(t)
	archivePath := writeArchive(t, t.TempDir(), "tq-2025.zip", "tranquility")

	// When: importing it
	task := f.pipeline.Import(context.Background(), archivePath)
	events := drain(t, task)

	// Then: the stream starts with Start, ends with one Result, and Complete is the only terminal progress
	require.NotEmpty(t, events)
	assert.NotEmpty(t, task.ID)
	for _, e := range events {
		assert.Equal(t, task.ID, e.TaskID)
	}
	last := events[len(events)-1]
	require.NotNil(t, last.Result)
	assert.True(t, last.Result.Success)
	assert.Equal(t, "tq-2025", last.Result.PackName)
	assert.Equal(t, "tranquility", last.Result.PackID)

	progress := progressOf(events)
	require.GreaterOrEqual(t, len(progress), 5)
	assert.Equal(t, StageStart, progress[0].Stage)
	assert.Equal(t, KeyStart, progress[0].MessageKey)
	final := progress[len(progress)-1]
	assert.Equal(t, StageComplete, final.Stage)
	assert.Equal(t, 100, final.Current)
	assert.Equal(t, KeyComplete, final.MessageKey)

	terminal := 0
	prev := -1
	for _, p := range progress {
		if p.Stage.Terminal() {
			terminal++
		}
		assert.Equal(t, ProgressTotal, p.Total)
		assert.GreaterOrEqual(t, p.Current, prev)
		prev = p.Current
	}
	assert.Equal(t, 1, terminal)

	keys := map[string]bool{}
	for _, p := range progress {
		keys[p.MessageKey] = true
	}
	for _, k := range []string{KeyOpeningFile, KeyCreatingDir, KeyExtractingFiles, KeyExtractingFile} {
		assert.True(t, keys[k], "missing progress key %s", k)
	}

	// And: the pack is registered under its archive stem, and the hook asked for auto-activation
	d, ok := f.catalog.Get("tranquility")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(f.packs, "tq-2025"), d.Root)
	require.Len(t, f.registered, 1)
	assert.True(t, f.registered[0].AutoActivate)

	r, done := task.Result()
	assert.True(t, done)
	assert.True(t, r.Success)
	assert.Equal(t, StageComplete, task.Stage())
}

func TestImport_SecondPackDoesNotRequestAutoActivate(t *testing.T) {
	f := newFixture(t)
	src := t.TempDir()

	r1 := wait(t, f.pipeline.Import(context.Background(), writeArchive(t, src, "tq.zip", "tranquility")))
	require.True(t, r1.Success)
	_, err := f.catalog.Activate(context.Background(), "tranquility")
	require.NoError(t, err)

	r2 := wait(t, f.pipeline.Import(context.Background(), writeArchive(t, src, "sr.zip", "serenity")))
	require.True(t, r2.Success)

	require.Len(t, f.registered, 2)
	assert.True(t, f.registered[0].AutoActivate)
	assert.False(t, f.registered[1].AutoActivate)
	id, _ := f.catalog.ActiveID()
	assert.Equal(t, "tranquility", id)
}

func TestImport_ExistingDirectory(t *testing.T) {
	// Given: the target directory already exists
	f := newFixture(t)
	require.NoError(t, os.MkdirAll(filepath.Join(f.packs, "tq"), 0o755))
	archivePath := writeArchive(t, t.TempDir(), "tq.zip", "tranquility")

	// When: importing
	task := f.pipeline.Import(context.Background(), archivePath)
	events := drain(t, task)

	// Then: DirectoryExists, with a directory_exists error progress, and no catalog change
	last := events[len(events)-1]
	require.NotNil(t, last.Result)
	assert.False(t, last.Result.Success)
	assert.Equal(t, ErrorDirectoryExists, last.Result.ErrorKind)
	assert.Equal(t, "tq", last.Result.ErrorParams["name"])
	assert.ErrorIs(t, last.Result.Err, apperrors.ErrDirectoryExists)

	progress := progressOf(events)
	final := progress[len(progress)-1]
	assert.Equal(t, StageError, final.Stage)
	assert.Equal(t, KeyDirectoryExists, final.MessageKey)
	assert.Equal(t, map[string]string{"name": "tq"}, final.MessageParams)

	assert.Zero(t, f.catalog.Len())
	assert.Empty(t, f.registered)
}

func TestImport_Failures(t *testing.T) {
	tests := []struct {
		name    string
		archive func(t *testing.T, dir string) string
		kind    ErrorKind
		code    error
	}{
		{
			name: "not a zip",
			archive: func(t *testing.T, dir string) string {
				p := filepath.Join(dir, "junk.zip")
				require.NoError(t, os.WriteFile(p, []byte("not a zip"), 0o644))
				return p
			},
			kind: ErrorArchiveOpen,
			code: apperrors.ErrArchiveOpen,
		},
		{
			name: "missing archive",
			archive: func(t *testing.T, dir string) string {
				return filepath.Join(dir, "absent.zip")
			},
			kind: ErrorArchiveOpen,
			code: apperrors.ErrArchiveOpen,
		},
		{
			name: "no manifest",
			archive: func(t *testing.T, dir string) string {
				p := filepath.Join(dir, "bare.zip")
				testutil.WriteZip(t, p, []testutil.ZipEntry{{Name: "readme.txt", Body: []byte("hi")}})
				return p
			},
			kind: ErrorRegistration,
			code: apperrors.ErrRegistration,
		},
		{
			name: "no file name",
			archive: func(t *testing.T, dir string) string {
				return filepath.Join(dir, ".zip")
			},
			kind: ErrorInvalidFileName,
			code: apperrors.ErrInvalidFileName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			task := f.pipeline.Import(context.Background(), tt.archive(t, t.TempDir()))
			events := drain(t, task)

			last := events[len(events)-1]
			require.NotNil(t, last.Result)
			assert.False(t, last.Result.Success)
			assert.Equal(t, tt.kind, last.Result.ErrorKind)
			assert.ErrorIs(t, last.Result.Err, tt.code)
			assert.NotEmpty(t, last.Result.ErrorParams["error"])

			progress := progressOf(events)
			terminal := 0
			for _, p := range progress {
				if p.Stage.Terminal() {
					terminal++
					assert.Equal(t, StageError, p.Stage)
				}
			}
			assert.Equal(t, 1, terminal)
			assert.Zero(t, f.catalog.Len())
		})
	}
}

func TestImport_RegistrationFailureLeavesDirectory(t *testing.T) {
	// Given: a pack already registered with the same manifest id
	f := newFixture(t)
	src := t.TempDir()
	r := wait(t, f.pipeline.Import(context.Background(), writeArchive(t, src, "tq.zip", "tranquility")))
	require.True(t, r.Success)

	// When: importing a copy under another file name
	r = wait(t, f.pipeline.Import(context.Background(), writeArchive(t, src, "tq-copy.zip", "tranquility")))

	// Then: registration fails with the duplicate reason and the extracted directory stays
	assert.False(t, r.Success)
	assert.Equal(t, ErrorRegistration, r.ErrorKind)
	assert.Equal(t, "DuplicateIdentifier", r.ErrorParams["reason"])
	assert.ErrorIs(t, r.Err, apperrors.ErrDuplicateIdentifier)
	assert.DirExists(t, filepath.Join(f.packs, "tq-copy"))
	assert.Equal(t, 1, f.catalog.Len())
}

func TestImport_FailedExtractionIsNotRegisteredByLaterScan(t *testing.T) {
	// Given: an archive whose manifest extracts before a colliding entry fails
	f := newFixture(t)
	src := t.TempDir()
	testutil.Minerals("tranquility").WriteManifest(t, src)
	manifest, err := os.ReadFile(filepath.Join(src, "bundle.descriptor"))
	require.NoError(t, err)
	archivePath := filepath.Join(src, "tq.zip")
	testutil.WriteZip(t, archivePath, []testutil.ZipEntry{
		{Name: "bundle.descriptor", Body: manifest},
		{Name: "data", Body: []byte("file")},
		{Name: "data/nested.pb", Body: []byte("x")},
	})

	// When: the import fails and a fresh catalog scans the packs directory
	r := wait(t, f.pipeline.Import(context.Background(), archivePath))
	require.False(t, r.Success)
	assert.Equal(t, ErrorIO, r.ErrorKind)

	rescanned := catalog.New(catalog.PackLoader{}, nil)
	regs, err := rescanned.Scan(f.packs)

	// Then: the partial directory stays on disk but is not registered
	require.NoError(t, err)
	assert.Empty(t, regs)
	assert.FileExists(t, filepath.Join(f.packs, "tq", archive.IncompleteMarker))
}

func TestImport_ConcurrentDistinctArchivesBothSucceed(t *testing.T) {
	f := newFixture(t)
	src := t.TempDir()
	a := writeArchive(t, src, "tq.zip", "tranquility")
	b := writeArchive(t, src, "sr.zip", "serenity")

	ta := f.pipeline.Import(context.Background(), a)
	tb := f.pipeline.Import(context.Background(), b)

	assert.True(t, wait(t, ta).Success)
	assert.True(t, wait(t, tb).Success)

	ids := []string{}
	for _, d := range f.catalog.List() {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"serenity", "tranquility"}, ids)

	autos := 0
	for _, reg := range f.registered {
		if reg.AutoActivate {
			autos++
		}
	}
	assert.Equal(t, 1, autos)
}

func TestImport_SameNameRaceHasOneWinner(t *testing.T) {
	// Given: several archives in different folders sharing one file name
	f := newFixture(t)
	const n = 4
	paths := make([]string, n)
	for i := range paths {
		paths[i] = writeArchive(t, t.TempDir(), "tq.zip", "tranquility")
	}

	// When: importing them all at once
	tasks := make([]*Task, n)
	for i, p := range paths {
		tasks[i] = f.pipeline.Import(context.Background(), p)
	}

	// Then: exactly one succeeds and the rest fail with DirectoryExists
	wins := 0
	for _, task := range tasks {
		r := wait(t, task)
		if r.Success {
			wins++
			continue
		}
		assert.Equal(t, ErrorDirectoryExists, r.ErrorKind)
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, f.catalog.Len())
}

func TestImport_NobodyListening(t *testing.T) {
	t.Run("detached consumer", func(t *testing.T) {
		f := newFixture(t)
		task := f.pipeline.Import(context.Background(), writeArchive(t, t.TempDir(), "tq.zip", "tranquility"))
		task.Detach()

		r := wait(t, task)

		assert.True(t, r.Success)
		assert.Equal(t, 1, f.catalog.Len())
		assert.LessOrEqual(t, len(drain(t, task)), 1)
	})

	t.Run("events never read", func(t *testing.T) {
		f := newFixture(t)
		task := f.pipeline.Import(context.Background(), writeArchive(t, t.TempDir(), "tq.zip", "tranquility"))

		r := wait(t, task)

		assert.True(t, r.Success)
		f.pipeline.Wait()
		_, ok := f.pipeline.Task(task.ID)
		assert.False(t, ok)
	})

	t.Run("caller context cancelled", func(t *testing.T) {
		f := newFixture(t)
		ctx, cancel := context.WithCancel(context.Background())
		task := f.pipeline.Import(ctx, writeArchive(t, t.TempDir(), "tq.zip", "tranquility"))
		cancel()

		assert.True(t, wait(t, task).Success)
	})
}

func TestTask_WaitHonoursContext(t *testing.T) {
	task := newTask("t1", "x.zip")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := task.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	task.finish(Result{Success: true})
	task.finish(Result{Success: false})
	r, done := task.Result()
	assert.True(t, done)
	assert.True(t, r.Success)
}

func TestTask_NoProgressAfterTerminal(t *testing.T) {
	task := newTask("t1", "x.zip")
	task.progress(Progress{Stage: StageStart})
	task.progress(Progress{Stage: StageError, MessageKey: KeyError})
	task.progress(Progress{Stage: StageExtracting})
	task.finish(Result{})

	events := drain(t, task)
	require.Len(t, events, 3)
	assert.Equal(t, StageStart, events[0].Progress.Stage)
	assert.Equal(t, StageError, events[1].Progress.Stage)
	assert.NotNil(t, events[2].Result)
}
