package catalog

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/Embers-of-the-Fire/evemt/internal/errors"
	"github.com/Embers-of-the-Fire/evemt/internal/localization"
	"github.com/Embers-of-the-Fire/evemt/internal/pack"
	"github.com/Embers-of-the-Fire/evemt/internal/search"
)

// Activated is the fully loaded runtime state of one pack.
// It is immutable; activation replaces the whole value.
type Activated struct {
	Descriptor   *pack.Descriptor
	Localization *localization.Set
	Search       *search.Engine
	LoadedAt     time.Time
}

// Loader builds an Activated for a descriptor. Implementations must be
// all-or-nothing and must not touch the catalog.
type Loader interface {
	Load(ctx context.Context, d *pack.Descriptor) (*Activated, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, d *pack.Descriptor) (*Activated, error)

// Load implements Loader.
func (f LoaderFunc) Load(ctx context.Context, d *pack.Descriptor) (*Activated, error) {
	return f(ctx, d)
}

// PackLoader decodes localization files and builds a search engine over them.
type PackLoader struct {
	// CacheSize is the per-activation search cache size. Zero disables it.
	CacheSize int
	Logger    *slog.Logger
}

// Load implements Loader.
func (l PackLoader) Load(ctx context.Context, d *pack.Descriptor) (*Activated, error) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	set, err := localization.Load(ctx, d.Root, logger)
	if err != nil {
		if apperrors.GetCode(err) == "" {
			err = apperrors.New(apperrors.ErrCodeIndexLoad, "failed to load pack indexes", err)
		}
		return nil, err
	}

	return &Activated{
		Descriptor:   d,
		Localization: set,
		Search: search.NewEngine(set,
			search.WithCacheSize(l.CacheSize),
			search.WithLogger(logger.With(slog.String("pack_id", d.ID)))),
		LoadedAt: time.Now(),
	}, nil
}
