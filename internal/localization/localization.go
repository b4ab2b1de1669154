// Package localization decodes a pack's localization strings and the
// per-entity lookup tables that point into them.
//
// All files live under <pack>/localizations and are protobuf wire format.
// Everything is decoded fully at activation time and is read-only afterwards.
package localization

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/Embers-of-the-Fire/evemt/internal/errors"
)

// Dir is the pack subdirectory holding localization files.
const Dir = "localizations"

// StoreFile is the localization string table.
const StoreFile = "localizations.pb"

// Language selects a locale string.
type Language string

const (
	English Language = "en"
	Chinese Language = "zh"
)

// ParseLanguage parses "en" or "zh", case-insensitively.
func ParseLanguage(s string) (Language, error) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case English:
		return English, nil
	case Chinese:
		return Chinese, nil
	}
	return "", apperrors.Newf(apperrors.ErrCodeInvalidInput, "unknown language %q (use en or zh)", s)
}

// LocString is one localized string in every supported locale.
type LocString struct {
	En string `json:"en"`
	Zh string `json:"zh"`
}

// In returns the string for lang. Unknown languages yield "".
func (s LocString) In(lang Language) string {
	switch lang {
	case English:
		return s.En
	case Chinese:
		return s.Zh
	}
	return ""
}

// Store maps localization keys to strings. Safe for concurrent reads.
type Store struct {
	strings map[uint32]LocString
}

// NewStore wraps an existing table.
func NewStore(m map[uint32]LocString) *Store {
	if m == nil {
		m = map[uint32]LocString{}
	}
	return &Store{strings: m}
}

// Get returns the string for key. A missing key is not an error.
func (s *Store) Get(key uint32) (LocString, bool) {
	v, ok := s.strings[key]
	return v, ok
}

// Len returns the number of keys.
func (s *Store) Len() int {
	return len(s.strings)
}

// LoadStore decodes <root>/localizations/localizations.pb.
func LoadStore(root string) (*Store, error) {
	path := filepath.Join(root, Dir, StoreFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, indexLoadError(path, err)
	}

	m := make(map[uint32]LocString)
	err = eachRecord(data, func(rec []byte) error {
		key, str, err := decodeLocalization(rec)
		if err != nil {
			return err
		}
		m[key] = str
		return nil
	})
	if err != nil {
		return nil, indexLoadError(path, err)
	}
	return NewStore(m), nil
}

func indexLoadError(path string, cause error) error {
	return apperrors.New(apperrors.ErrCodeIndexLoad,
		fmt.Sprintf("failed to load %s", filepath.Base(path)), cause).
		WithDetail("path", path)
}
