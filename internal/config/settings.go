package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	apperrors "github.com/Embers-of-the-Fire/evemt/internal/errors"
	"github.com/Embers-of-the-Fire/evemt/internal/filelock"
)

// Theme is the UI color theme.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ParseTheme parses a theme name case-insensitively.
func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeDark:
		return ThemeDark, nil
	case ThemeLight:
		return ThemeLight, nil
	}
	return "", apperrors.Newf(apperrors.ErrCodeInvalidInput, "unknown theme %q (use dark or light)", s)
}

// Language is the UI language.
type Language string

const (
	LanguageZh Language = "zh"
	LanguageEn Language = "en"
)

// ParseLanguage parses a language tag case-insensitively.
func ParseLanguage(s string) (Language, error) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case LanguageZh:
		return LanguageZh, nil
	case LanguageEn:
		return LanguageEn, nil
	}
	return "", apperrors.Newf(apperrors.ErrCodeInvalidInput, "unknown language %q (use zh or en)", s)
}

// Settings is the persisted user state.
type Settings struct {
	Theme    Theme    `json:"theme"`
	Language Language `json:"language"`
	// EnabledPackID is the pack re-activated on startup. Nil means none.
	EnabledPackID *string `json:"enabled_pack_id"`
}

// legacySettings is the nested layout written by earlier releases. It is
// read once and rewritten flat on the next save.
type legacySettings struct {
	Global *struct {
		Theme           Theme    `json:"theme"`
		Language        Language `json:"language"`
		EnabledBundleID *string  `json:"enabled_bundle_id"`
	} `json:"global_settings"`
}

// DefaultSettings returns the settings written on first run and on reset.
func DefaultSettings() Settings {
	return Settings{
		Theme:    ThemeDark,
		Language: LanguageZh,
	}
}

// EnabledPack returns the remembered pack id, or "" when none is set.
func (s Settings) EnabledPack() string {
	if s.EnabledPackID == nil {
		return ""
	}
	return *s.EnabledPackID
}

func (s *Settings) normalize() {
	if t, err := ParseTheme(string(s.Theme)); err == nil {
		s.Theme = t
	} else {
		s.Theme = ThemeDark
	}
	if l, err := ParseLanguage(string(s.Language)); err == nil {
		s.Language = l
	} else {
		s.Language = LanguageZh
	}
	if s.EnabledPackID != nil && *s.EnabledPackID == "" {
		s.EnabledPackID = nil
	}
}

// SettingsStore reads and writes the settings file.
// Every mutation is a read-modify-write under a cross-process file lock and
// replaces the file atomically.
type SettingsStore struct {
	path   string
	lock   *filelock.FileLock
	logger *slog.Logger

	mu      sync.Mutex
	current Settings
}

// OpenSettings loads the settings at path. A missing file is created with
// defaults. A corrupt file is backed up, logged, and replaced with defaults.
func OpenSettings(path string, logger *slog.Logger) (*SettingsStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &SettingsStore{
		path:   path,
		lock:   filelock.New(path + ".lock"),
		logger: logger,
	}

	err := s.update(func(*Settings) {})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the settings file path.
func (s *SettingsStore) Path() string {
	return s.path
}

// Get returns a copy of the current settings.
func (s *SettingsStore) Get() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySettings(s.current)
}

// SetTheme persists the theme.
func (s *SettingsStore) SetTheme(theme Theme) error {
	if _, err := ParseTheme(string(theme)); err != nil {
		return err
	}
	return s.update(func(st *Settings) { st.Theme = theme })
}

// SetLanguage persists the language.
func (s *SettingsStore) SetLanguage(lang Language) error {
	if _, err := ParseLanguage(string(lang)); err != nil {
		return err
	}
	return s.update(func(st *Settings) { st.Language = lang })
}

// SetEnabledPackID persists the remembered pack. An empty id clears it.
func (s *SettingsStore) SetEnabledPackID(id string) error {
	return s.update(func(st *Settings) {
		if id == "" {
			st.EnabledPackID = nil
			return
		}
		st.EnabledPackID = &id
	})
}

// ForgetEnabledPackID clears the remembered pack only if it is still id.
func (s *SettingsStore) ForgetEnabledPackID(id string) error {
	return s.update(func(st *Settings) {
		if st.EnabledPack() == id {
			st.EnabledPackID = nil
		}
	})
}

// Reset restores defaults, clearing the remembered pack.
func (s *SettingsStore) Reset() (Settings, error) {
	if err := s.update(func(st *Settings) { *st = DefaultSettings() }); err != nil {
		return Settings{}, err
	}
	return s.Get(), nil
}

// update re-reads the file under the lock, applies fn, and writes the result.
func (s *SettingsStore) update(fn func(*Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return apperrors.New(apperrors.ErrCodeIO, "failed to lock settings", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	st, err := s.read()
	if err != nil {
		return err
	}
	fn(&st)
	st.normalize()

	if err := writeFileAtomic(s.path, st); err != nil {
		return err
	}
	s.current = st
	return nil
}

// read loads the file. Missing or corrupt files yield defaults.
func (s *SettingsStore) read() (Settings, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.logger.Info("settings_created", slog.String("path", s.path))
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, apperrors.New(apperrors.ErrCodeIO, "failed to read settings", err).
			WithDetail("path", s.path)
	}

	st := DefaultSettings()
	if err := json.Unmarshal(data, &st); err != nil {
		backup, bErr := BackupFile(s.path)
		s.logger.Warn("settings_corrupt",
			slog.String("path", s.path),
			slog.String("backup", backup),
			slog.Any("error", err),
			slog.Any("backup_error", bErr))
		return DefaultSettings(), nil
	}

	var legacy legacySettings
	if err := json.Unmarshal(data, &legacy); err == nil && legacy.Global != nil {
		s.logger.Info("settings_migrated", slog.String("path", s.path))
		if legacy.Global.Theme != "" {
			st.Theme = legacy.Global.Theme
		}
		if legacy.Global.Language != "" {
			st.Language = legacy.Global.Language
		}
		st.EnabledPackID = legacy.Global.EnabledBundleID
	}
	return st, nil
}

func writeFileAtomic(path string, st Settings) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return apperrors.New(apperrors.ErrCodeInternal, "failed to encode settings", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.New(apperrors.ErrCodeIO, "failed to create settings directory", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return apperrors.New(apperrors.ErrCodeIO, "failed to write settings", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return apperrors.New(apperrors.ErrCodeIO, "failed to write settings", err)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.New(apperrors.ErrCodeIO, "failed to write settings", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return apperrors.New(apperrors.ErrCodeIO, fmt.Sprintf("failed to replace %s", path), err)
	}
	return nil
}

func copySettings(s Settings) Settings {
	if s.EnabledPackID != nil {
		id := *s.EnabledPackID
		s.EnabledPackID = &id
	}
	return s
}
