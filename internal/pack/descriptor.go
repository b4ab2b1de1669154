// Package pack reads the manifest that identifies a pack directory.
package pack

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/Embers-of-the-Fire/evemt/internal/errors"
)

// ManifestName is the manifest file at the root of every pack directory.
const ManifestName = "bundle.descriptor"

// LocalizedName is a display name per locale.
type LocalizedName struct {
	En string `json:"en"`
	Zh string `json:"zh"`
}

// GameInfo tags the game release a pack was built from.
type GameInfo struct {
	Version string `json:"version"`
	Build   string `json:"build"`
}

// Metadata is the decoded manifest.
type Metadata struct {
	// ID is the server identifier and the catalog key.
	ID      string        `json:"server"`
	Name    LocalizedName `json:"server-name"`
	Created time.Time     `json:"created"`
	Game    GameInfo      `json:"game"`
}

// Descriptor identifies one pack directory. Immutable once loaded.
type Descriptor struct {
	Metadata
	Root string `json:"root"`
}

// Load reads <root>/bundle.descriptor. It performs no other I/O.
//
// Errors: ErrManifestMissing if the file cannot be read, ErrManifestParse if
// it is not a valid manifest or has an empty identifier.
func Load(root string) (*Descriptor, error) {
	path := filepath.Join(root, ManifestName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeManifestMissing, "pack manifest not readable", err).
			WithDetail("path", path)
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, apperrors.New(apperrors.ErrCodeManifestParse, "pack manifest is malformed", err).
			WithDetail("path", path)
	}
	if strings.TrimSpace(meta.ID) == "" {
		return nil, apperrors.Newf(apperrors.ErrCodeManifestParse, "pack manifest has no server identifier").
			WithDetail("path", path)
	}

	return &Descriptor{Metadata: meta, Root: root}, nil
}

// DisplayName returns the name for lang ("en" or "zh"), falling back to the
// other locale and then to the identifier.
func (d *Descriptor) DisplayName(lang string) string {
	primary, secondary := d.Name.Zh, d.Name.En
	if lang == "en" {
		primary, secondary = d.Name.En, d.Name.Zh
	}
	switch {
	case primary != "":
		return primary
	case secondary != "":
		return secondary
	default:
		return d.ID
	}
}

// String implements fmt.Stringer.
func (d *Descriptor) String() string {
	return fmt.Sprintf("%s (%s build %s)", d.ID, d.Game.Version, d.Game.Build)
}

// DirName derives a pack directory name from an archive path: the base name
// without its final extension. Empty and dot names are rejected with
// ErrInvalidFileName.
func DirName(archivePath string) (string, error) {
	base := filepath.Base(archivePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." || stem == ".." || stem == string(filepath.Separator) {
		return "", apperrors.Newf(apperrors.ErrCodeInvalidFileName, "cannot derive a pack name from %q", archivePath).
			WithDetail("path", archivePath)
	}
	return stem, nil
}
