// Package testutil builds pack fixtures for tests: manifests, protobuf-wire
// localization files, and zip archives of them.
package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
)

// ZipEntry is one archive member. A Name ending in "/" is a directory.
type ZipEntry struct {
	Name string
	Body []byte
}

// WriteZip writes entries, in order, to a zip at path.
func WriteZip(t testing.TB, path string, entries []ZipEntry) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()

	zw := zip.NewWriter(f)
	for _, e := range entries {
		if strings.HasSuffix(e.Name, "/") {
			_, err := zw.CreateHeader(&zip.FileHeader{Name: e.Name, Method: zip.Store})
			require.NoError(t, err)
			continue
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.Name, Method: zip.Deflate})
		require.NoError(t, err)
		_, err = w.Write(e.Body)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

// ZipDir archives every file under dir, with slash-separated names relative
// to dir. Directory entries precede the files they contain.
func ZipDir(t testing.TB, dir, path string) {
	t.Helper()

	var entries []ZipEntry
	err := filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil || rel == "." {
			return err
		}
		name := filepath.ToSlash(rel)
		if d.IsDir() {
			entries = append(entries, ZipEntry{Name: name + "/"})
			return nil
		}
		body, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		entries = append(entries, ZipEntry{Name: name, Body: body})
		return nil
	})
	require.NoError(t, err)

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	WriteZip(t, path, entries)
}
