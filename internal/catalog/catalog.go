// Package catalog is the registry of pack directories and the single
// activated pack.
//
// One RWMutex guards both. Reads (List, View, Active) share it; Register,
// the activation swap, and Remove take it exclusively. Activation loads the
// new pack before taking the lock, so reads of the previous pack are never
// blocked by a load.
package catalog

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/Embers-of-the-Fire/evemt/internal/archive"
	apperrors "github.com/Embers-of-the-Fire/evemt/internal/errors"
	"github.com/Embers-of-the-Fire/evemt/internal/pack"
)

// Catalog owns every registered pack directory.
type Catalog struct {
	loader Loader
	logger *slog.Logger

	mu       sync.RWMutex
	packs    map[string]*pack.Descriptor
	active   *Activated
	onActive func(id string)
}

// New creates an empty catalog.
func New(loader Loader, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		loader: loader,
		logger: logger,
		packs:  make(map[string]*pack.Descriptor),
	}
}

// OnActiveChanged sets fn to run, under the catalog's write lock, every time
// the active pack changes: with the new id after a swap and with "" when
// Remove clears the activation. fn must not call back into the catalog.
// Set it before the catalog is shared.
func (c *Catalog) OnActiveChanged(fn func(id string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onActive = fn
}

// Registration is the outcome of a successful Register.
type Registration struct {
	Descriptor *pack.Descriptor
	// AutoActivate is set when the pack is the only one and none is active.
	AutoActivate bool
}

// Register reads the manifest at root and adds the pack.
// Fails with ErrDuplicateIdentifier if the id is already registered, or
// with the manifest error from pack.Load.
func (c *Catalog) Register(root string) (Registration, error) {
	d, err := pack.Load(root)
	if err != nil {
		return Registration{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.packs[d.ID]; ok {
		return Registration{}, apperrors.Newf(apperrors.ErrCodeDuplicateIdentifier,
			"pack %q is already registered", d.ID).
			WithDetail("id", d.ID).
			WithDetail("existing_root", existing.Root)
	}
	c.packs[d.ID] = d

	c.logger.Info("pack_registered",
		slog.String("pack_id", d.ID),
		slog.String("root", root))

	return Registration{
		Descriptor:   d,
		AutoActivate: len(c.packs) == 1 && c.active == nil,
	}, nil
}

// Activate loads the pack and makes it the active one.
//
// The load runs without holding the catalog lock. On failure the previous
// activation stays. If the pack was removed or replaced while loading,
// Activate fails with ErrNotFound and does not swap.
func (c *Catalog) Activate(ctx context.Context, id string) (*Activated, error) {
	c.mu.RLock()
	d, ok := c.packs[id]
	c.mu.RUnlock()
	if !ok {
		return nil, notFound(id)
	}

	act, err := c.loader.Load(ctx, d)
	if err != nil {
		c.logger.Warn("pack_activation_failed",
			append([]any{slog.String("pack_id", id)}, apperrors.LogAttrs(err)...)...)
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.packs[id] != d {
		return nil, notFound(id)
	}
	c.active = act
	if c.onActive != nil {
		c.onActive(id)
	}

	c.logger.Info("pack_activated", slog.String("pack_id", id))
	return act, nil
}

// Remove deletes the pack directory and its entry. Removing the active pack
// clears the activation in the same critical section.
func (c *Catalog) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	d, ok := c.packs[id]
	if !ok {
		return notFound(id)
	}

	delete(c.packs, id)
	wasActive := c.active != nil && c.active.Descriptor.ID == id
	if wasActive {
		c.active = nil
		if c.onActive != nil {
			c.onActive("")
		}
	}

	c.logger.Info("pack_removed",
		slog.String("pack_id", id),
		slog.Bool("was_active", wasActive))

	if err := os.RemoveAll(d.Root); err != nil {
		return apperrors.New(apperrors.ErrCodeIO, "failed to delete pack directory", err).
			WithDetail("path", d.Root)
	}
	return nil
}

// List returns all descriptors ordered by id.
func (c *Catalog) List() []*pack.Descriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*pack.Descriptor, 0, len(c.packs))
	for _, d := range c.packs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Get returns the descriptor for id.
func (c *Catalog) Get(id string) (*pack.Descriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.packs[id]
	return d, ok
}

// Len returns the number of registered packs.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.packs)
}

// ActiveID returns the active pack id, or "" and false if none.
func (c *Catalog) ActiveID() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.active == nil {
		return "", false
	}
	return c.active.Descriptor.ID, true
}

// Active returns the current activation, or nil. The value is immutable and
// stays usable after a later swap.
func (c *Catalog) Active() *Activated {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// View runs fn with the active pack while holding the shared lock.
// Fails with ErrNoActivePack if none is active.
func (c *Catalog) View(fn func(*Activated) error) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.active == nil {
		return apperrors.Newf(apperrors.ErrCodeNoActivePack, "no pack is active")
	}
	return fn(c.active)
}

// Scan offers every immediate subdirectory of packsRoot to Register.
// Directories left by an unfinished extraction are skipped. Per-directory
// failures are logged and skipped. A missing packsRoot is
// created. Returns the registrations in directory name order.
func (c *Catalog) Scan(packsRoot string) ([]Registration, error) {
	if err := os.MkdirAll(packsRoot, 0o755); err != nil {
		return nil, apperrors.New(apperrors.ErrCodeIO, "failed to create packs directory", err).
			WithDetail("path", packsRoot)
	}
	entries, err := os.ReadDir(packsRoot)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeIO, "failed to list packs directory", err).
			WithDetail("path", packsRoot)
	}

	var regs []Registration
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		root := filepath.Join(packsRoot, entry.Name())
		if _, err := os.Stat(filepath.Join(root, archive.IncompleteMarker)); err == nil {
			c.logger.Warn("pack_scan_skipped_incomplete", slog.String("root", root))
			continue
		}
		reg, err := c.Register(root)
		if err != nil {
			c.logger.Warn("pack_scan_skipped",
				append([]any{slog.String("root", root)}, apperrors.LogAttrs(err)...)...)
			continue
		}
		regs = append(regs, reg)
	}

	c.logger.Info("pack_scan_complete",
		slog.String("root", packsRoot),
		slog.Int("registered", len(regs)))
	return regs, nil
}

func notFound(id string) error {
	return apperrors.Newf(apperrors.ErrCodeNotFound, "pack %q is not registered", id).
		WithDetail("id", id)
}
