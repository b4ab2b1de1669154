package app

import (
	"github.com/Embers-of-the-Fire/evemt/internal/config"
	"github.com/Embers-of-the-Fire/evemt/internal/localization"
)

// Settings returns the persisted settings.
func (s *Service) Settings() config.Settings {
	return s.settings.Get()
}

// SetTheme persists the theme.
func (s *Service) SetTheme(theme config.Theme) error {
	return s.settings.SetTheme(theme)
}

// SetLanguage persists the UI language.
func (s *Service) SetLanguage(lang config.Language) error {
	return s.settings.SetLanguage(lang)
}

// SetEnabledPackID persists the remembered pack without activating it.
// An empty id clears it.
func (s *Service) SetEnabledPackID(id string) error {
	return s.settings.SetEnabledPackID(id)
}

// ResetSettings restores default settings.
func (s *Service) ResetSettings() (config.Settings, error) {
	return s.settings.Reset()
}

// Language returns the search language matching the UI language.
func (s *Service) Language() localization.Language {
	if s.settings.Get().Language == config.LanguageEn {
		return localization.English
	}
	return localization.Chinese
}
