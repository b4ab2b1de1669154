package localization

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Set is everything decoded from one pack's localization directory.
type Set struct {
	Store   *Store
	Lookups map[Table]*Lookup
}

// Lookup returns the table, or nil if the set does not carry it.
func (s *Set) Lookup(t Table) *Lookup {
	return s.Lookups[t]
}

// Load decodes the store and every lookup table under root in parallel.
// Loading is all-or-nothing: the first failure cancels the rest and is returned.
func Load(ctx context.Context, root string, logger *slog.Logger) (*Set, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)

	var store *Store
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		s, err := LoadStore(root)
		if err != nil {
			return err
		}
		store = s
		return nil
	})

	lookups := make([]*Lookup, len(Tables))
	for i, table := range Tables {
		i, table := i, table
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			l, err := LoadLookup(root, table)
			if err != nil {
				return err
			}
			lookups[i] = l
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	set := &Set{Store: store, Lookups: make(map[Table]*Lookup, len(Tables))}
	for i, table := range Tables {
		set.Lookups[table] = lookups[i]
	}

	logger.Debug("localization_loaded",
		slog.String("root", root),
		slog.Int("strings", store.Len()),
		slog.Int("types", set.Lookups[TypeTable].Len()),
		slog.Duration("duration", time.Since(start)))
	return set, nil
}
