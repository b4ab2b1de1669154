// Package app is the command surface of evemt: every inbound command the UI
// layer can issue is a method on Service.
//
// Service owns the catalog, the import pipeline, the persisted settings,
// and the event bus. It is safe for concurrent use.
package app

import (
	"context"
	"log/slog"

	"github.com/Embers-of-the-Fire/evemt/internal/catalog"
	"github.com/Embers-of-the-Fire/evemt/internal/config"
	apperrors "github.com/Embers-of-the-Fire/evemt/internal/errors"
	"github.com/Embers-of-the-Fire/evemt/internal/events"
	"github.com/Embers-of-the-Fire/evemt/internal/importer"
	"github.com/Embers-of-the-Fire/evemt/internal/localization"
	"github.com/Embers-of-the-Fire/evemt/internal/pack"
	"github.com/Embers-of-the-Fire/evemt/internal/search"
)

// Service wires the core components together.
type Service struct {
	cfg      *config.Config
	logger   *slog.Logger
	bus      *events.Bus
	settings *config.SettingsStore
	catalog  *catalog.Catalog
	importer *importer.Pipeline
}

// Option configures a Service.
type Option func(*options)

type options struct {
	logger *slog.Logger
	bus    *events.Bus
	loader catalog.Loader
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithBus publishes global events on b instead of a private bus.
func WithBus(b *events.Bus) Option {
	return func(o *options) { o.bus = b }
}

// WithLoader replaces the pack loader used for activation.
func WithLoader(l catalog.Loader) Option {
	return func(o *options) { o.loader = l }
}

// New opens the settings file and builds the components. Call Init before
// serving commands.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.bus == nil {
		o.bus = events.NewBus(o.logger)
	}
	if o.loader == nil {
		o.loader = catalog.PackLoader{CacheSize: cfg.Search.CacheSize, Logger: o.logger}
	}

	settings, err := config.OpenSettings(cfg.SettingsPath(), o.logger)
	if err != nil {
		return nil, err
	}

	s := &Service{
		cfg:      cfg,
		logger:   o.logger,
		bus:      o.bus,
		settings: settings,
		catalog:  catalog.New(o.loader, o.logger),
	}
	// The remembered id is written in the same critical section as the swap,
	// so it always names the pack that won.
	s.catalog.OnActiveChanged(s.rememberActive)
	s.importer = importer.New(s.catalog, importer.Config{
		PacksRoot:    cfg.PacksDir(),
		Workers:      cfg.Import.Workers,
		OnRegistered: s.onImported,
		Logger:       o.logger,
	})
	return s, nil
}

// Init scans the packs directory and re-activates the remembered pack.
// A remembered pack that is gone or fails to load is forgotten; that is
// logged, not returned.
func (s *Service) Init(ctx context.Context) error {
	regs, err := s.catalog.Scan(s.cfg.PacksDir())
	if err != nil {
		return err
	}
	if len(regs) > 0 {
		s.bus.Publish(events.Event{Type: events.PacksChanged})
	}

	id := s.settings.Get().EnabledPack()
	if id == "" {
		return nil
	}
	if _, ok := s.catalog.Get(id); !ok {
		s.logger.Warn("remembered_pack_missing", slog.String("pack_id", id))
		s.forgetEnabled(id)
		return nil
	}
	if err := s.ActivatePack(ctx, id); err != nil {
		s.logger.Warn("remembered_pack_activation_failed",
			append([]any{slog.String("pack_id", id)}, apperrors.LogAttrs(err)...)...)
		s.forgetEnabled(id)
	}
	return nil
}

// Close waits for running imports to finish.
func (s *Service) Close() {
	s.importer.Wait()
}

// Events returns the global event bus.
func (s *Service) Events() *events.Bus {
	return s.bus
}

// ImportPack starts a background import and returns its task at once.
// The task id is Task.ID.
func (s *Service) ImportPack(ctx context.Context, archivePath string) *importer.Task {
	return s.importer.Import(ctx, archivePath)
}

// ImportTask returns a running import task.
func (s *Service) ImportTask(id string) (*importer.Task, bool) {
	return s.importer.Task(id)
}

// onImported publishes the membership change and auto-activates the first
// pack. Activation failure leaves the import successful.
func (s *Service) onImported(ctx context.Context, reg catalog.Registration) {
	s.bus.Publish(events.Event{Type: events.PacksChanged, PackID: reg.Descriptor.ID})
	if !reg.AutoActivate {
		return
	}
	if err := s.ActivatePack(ctx, reg.Descriptor.ID); err != nil {
		s.logger.Warn("auto_activation_failed",
			append([]any{slog.String("pack_id", reg.Descriptor.ID)}, apperrors.LogAttrs(err)...)...)
		return
	}
	s.logger.Info("pack_auto_activated", slog.String("pack_id", reg.Descriptor.ID))
}

// ActivatePack makes id the active pack and remembers it.
func (s *Service) ActivatePack(ctx context.Context, id string) error {
	s.bus.Publish(events.Event{Type: events.ActivePackChangeStart, PackID: id})

	if _, err := s.catalog.Activate(ctx, id); err != nil {
		s.bus.Publish(events.Event{Type: events.ActivePackChangeFinished, PackID: id, Error: err.Error()})
		return err
	}

	s.bus.Publish(events.Event{Type: events.ActivePackChangeFinished, PackID: id})
	return nil
}

// RemovePack deletes the pack. Removing the active or remembered pack
// clears it.
func (s *Service) RemovePack(id string) error {
	activeID, _ := s.catalog.ActiveID()
	wasActive := activeID == id

	if wasActive {
		s.bus.Publish(events.Event{Type: events.ActivePackChangeStart})
	}
	err := s.catalog.Remove(id)
	if wasActive {
		finished := events.Event{Type: events.ActivePackChangeFinished}
		if err != nil {
			finished.Error = err.Error()
		}
		s.bus.Publish(finished)
	}
	if err != nil && apperrors.Is(err, apperrors.ErrNotFound) {
		return err
	}

	// The entry is gone even when deleting the directory failed.
	s.forgetEnabled(id)
	s.bus.Publish(events.Event{Type: events.PacksChanged, PackID: id})
	return err
}

// ListPacks returns every registered pack ordered by id.
func (s *Service) ListPacks() []*pack.Descriptor {
	return s.catalog.List()
}

// ActivePackID returns the active pack id, or false if none.
func (s *Service) ActivePackID() (string, bool) {
	return s.catalog.ActiveID()
}

// ActivePack returns the active pack's descriptor, or nil.
func (s *Service) ActivePack() *pack.Descriptor {
	if act := s.catalog.Active(); act != nil {
		return act.Descriptor
	}
	return nil
}

// SearchByName searches entity names of kind in the active pack.
func (s *Service) SearchByName(kind search.Kind, query string, lang localization.Language, limit int) ([]int32, error) {
	return s.search(search.Query{Kind: kind, Field: search.FieldName, Text: query, Lang: lang, Limit: limit})
}

// SearchByDescription searches entity descriptions of kind in the active pack.
func (s *Service) SearchByDescription(kind search.Kind, query string, lang localization.Language, limit int) ([]int32, error) {
	return s.search(search.Query{Kind: kind, Field: search.FieldDescription, Text: query, Lang: lang, Limit: limit})
}

func (s *Service) search(q search.Query) ([]int32, error) {
	var ids []int32
	err := s.catalog.View(func(act *catalog.Activated) error {
		var err error
		ids, err = act.Search.Search(q)
		return err
	})
	return ids, err
}

// EntityName resolves an entity's localized name in the active pack.
func (s *Service) EntityName(kind search.Kind, id int32, lang localization.Language) (string, bool, error) {
	var (
		name string
		ok   bool
	)
	err := s.catalog.View(func(act *catalog.Activated) error {
		name, ok = act.Search.Name(kind, id, lang)
		return nil
	})
	return name, ok, err
}

// GetLocalization looks key up in the active pack's localization store.
// A missing key is not an error.
func (s *Service) GetLocalization(key uint32) (localization.LocString, bool, error) {
	var (
		str localization.LocString
		ok  bool
	)
	err := s.catalog.View(func(act *catalog.Activated) error {
		str, ok = act.Localization.Store.Get(key)
		return nil
	})
	return str, ok, err
}

// rememberActive persists the active pack id. It runs under the catalog's
// write lock.
func (s *Service) rememberActive(id string) {
	if err := s.settings.SetEnabledPackID(id); err != nil {
		s.logger.Warn("settings_save_failed", apperrors.LogAttrs(err)...)
	}
}

func (s *Service) forgetEnabled(id string) {
	if err := s.settings.ForgetEnabledPackID(id); err != nil {
		s.logger.Warn("settings_save_failed", apperrors.LogAttrs(err)...)
	}
}
