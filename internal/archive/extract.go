// Package archive extracts pack archives (zip) into a fresh directory,
// reporting progress as it goes.
package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	apperrors "github.com/Embers-of-the-Fire/evemt/internal/errors"
)

// Phase identifies which step of an extraction a Progress update reports.
type Phase int

const (
	// PhaseOpened follows a successful open of the source archive.
	PhaseOpened Phase = iota
	// PhaseDirectoryCreated follows creation of the target directory.
	PhaseDirectoryCreated
	// PhaseCounted follows enumeration of the entries; Total is set.
	PhaseCounted
	// PhaseEntry follows each extracted entry; Index is 1-based.
	PhaseEntry
)

func (p Phase) String() string {
	switch p {
	case PhaseOpened:
		return "opened"
	case PhaseDirectoryCreated:
		return "directory_created"
	case PhaseCounted:
		return "counted"
	case PhaseEntry:
		return "entry"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Progress is one extraction update.
type Progress struct {
	Phase Phase
	Index int
	Total int
	// Name is the archive-relative entry name for PhaseEntry.
	Name string
}

// ProgressFunc receives updates on the extracting goroutine. It must not block for long.
type ProgressFunc func(Progress)

// IncompleteMarker is the file Extract keeps in dst until every entry is
// written. A directory that still holds it was left by a failed extraction.
const IncompleteMarker = ".extracting"

// Extract unpacks the zip at src into dst, which must not exist yet.
//
// Entries keep their archive-relative paths; parent directories of nested
// files are created on demand. Entries that would land outside dst are
// rejected. On failure the partially extracted directory is left in place
// with IncompleteMarker inside it.
//
// Errors: ErrArchiveOpen if src cannot be opened or parsed, ErrTargetExists
// if dst exists, ErrIO for any other filesystem failure.
func Extract(src, dst string, progress ProgressFunc) (err error) {
	if progress == nil {
		progress = func(Progress) {}
	}

	reader, err := zip.OpenReader(src)
	if err != nil {
		return apperrors.New(apperrors.ErrCodeArchiveOpen, "failed to open archive", err).
			WithDetail("path", src)
	}
	defer func() {
		if closeErr := reader.Close(); closeErr != nil && err == nil {
			err = apperrors.New(apperrors.ErrCodeIO, "failed to close archive", closeErr)
		}
	}()
	progress(Progress{Phase: PhaseOpened})

	absDst, err := filepath.Abs(dst)
	if err != nil {
		return apperrors.New(apperrors.ErrCodeIO, "failed to resolve target directory", err)
	}

	// os.Mkdir fails if absDst exists; it is the linearization point for imports.
	if err := os.Mkdir(absDst, 0o755); err != nil {
		if os.IsExist(err) {
			return apperrors.New(apperrors.ErrCodeTargetExists, "target directory already exists", err).
				WithDetail("path", absDst)
		}
		return apperrors.New(apperrors.ErrCodeIO, "failed to create target directory", err).
			WithDetail("path", absDst)
	}
	marker := filepath.Join(absDst, IncompleteMarker)
	if err := os.WriteFile(marker, nil, 0o644); err != nil {
		return apperrors.New(apperrors.ErrCodeIO, "failed to mark target directory", err).
			WithDetail("path", absDst)
	}
	progress(Progress{Phase: PhaseDirectoryCreated})

	total := len(reader.File)
	progress(Progress{Phase: PhaseCounted, Total: total})

	for i, file := range reader.File {
		if err := extractEntry(file, absDst); err != nil {
			return err
		}
		progress(Progress{Phase: PhaseEntry, Index: i + 1, Total: total, Name: file.Name})
	}

	if err := os.Remove(marker); err != nil {
		return apperrors.New(apperrors.ErrCodeIO, "failed to unmark target directory", err).
			WithDetail("path", absDst)
	}
	return nil
}

func extractEntry(file *zip.File, root string) error {
	destPath, err := entryPath(root, file.Name)
	if err != nil {
		return err
	}

	ioErr := func(msg string, cause error) error {
		return apperrors.New(apperrors.ErrCodeIO, msg, cause).WithDetail("entry", file.Name)
	}

	if file.FileInfo().IsDir() {
		if err := os.MkdirAll(destPath, 0o755); err != nil {
			return ioErr("failed to create directory", err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return ioErr("failed to create parent directory", err)
	}
	if err := copyEntry(file, destPath); err != nil {
		return ioErr("failed to extract entry", err)
	}
	return nil
}

// entryPath maps an archive entry name to a path under root.
func entryPath(root, name string) (string, error) {
	destPath := filepath.Join(root, filepath.FromSlash(name))
	rel, err := filepath.Rel(root, destPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", apperrors.Newf(apperrors.ErrCodeIO, "archive entry escapes target directory: %s", name).
			WithDetail("entry", name)
	}
	return destPath, nil
}

func copyEntry(file *zip.File, destPath string) (err error) {
	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	perm := file.Mode().Perm()
	if perm == 0 {
		perm = 0o644
	}
	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	_, err = io.Copy(out, rc)
	return err
}
