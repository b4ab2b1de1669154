// Package search answers free-text queries against one pack's localized
// entity names and descriptions.
//
// Matching is a linear scan: a candidate must contain the lower-cased query
// as a substring, and candidates are ranked by a per-kind Scorer. Equal
// scores keep lookup file order.
package search

import (
	"log/slog"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	apperrors "github.com/Embers-of-the-Fire/evemt/internal/errors"
	"github.com/Embers-of-the-Fire/evemt/internal/localization"
)

// Query is one search request.
type Query struct {
	Kind  Kind
	Field Field
	Text  string
	Lang  localization.Language
	Limit int
}

type cacheKey struct {
	kind  Kind
	field Field
	lang  localization.Language
	text  string
	limit int
}

// Engine searches one localization set. Safe for concurrent use.
type Engine struct {
	set     *localization.Set
	scorers map[Kind]Scorer
	cache   *lru.Cache[cacheKey, []int32]
	logger  *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithCacheSize caches up to n result lists. Zero disables caching.
func WithCacheSize(n int) Option {
	return func(e *Engine) {
		if n <= 0 {
			e.cache = nil
			return
		}
		e.cache, _ = lru.New[cacheKey, []int32](n)
	}
}

// WithScorer overrides the ranking policy for one kind.
func WithScorer(kind Kind, s Scorer) Option {
	return func(e *Engine) {
		e.scorers[kind] = s
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// NewEngine creates an engine over set. Results are not cached unless
// WithCacheSize is given.
func NewEngine(set *localization.Set, opts ...Option) *Engine {
	e := &Engine{
		set:     set,
		scorers: make(map[Kind]Scorer, len(Kinds)),
		logger:  slog.Default(),
	}
	for _, k := range Kinds {
		e.scorers[k] = k.DefaultScorer()
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type candidate struct {
	id    int32
	score int
}

// Search returns the ids of matching entities, best first, at most q.Limit.
// An empty query or a non-positive limit yields an empty list.
func (e *Engine) Search(q Query) ([]int32, error) {
	kind, err := ParseKind(string(q.Kind))
	if err != nil {
		return nil, err
	}
	q.Kind = kind
	if q.Lang != localization.English && q.Lang != localization.Chinese {
		return nil, apperrors.Newf(apperrors.ErrCodeInvalidInput, "unknown language %q", q.Lang)
	}

	text := strings.ToLower(strings.TrimSpace(q.Text))
	if text == "" || q.Limit <= 0 {
		return []int32{}, nil
	}

	key := cacheKey{kind: q.Kind, field: q.Field, lang: q.Lang, text: text, limit: q.Limit}
	if e.cache != nil {
		if ids, ok := e.cache.Get(key); ok {
			return append([]int32(nil), ids...), nil
		}
	}

	lookup := e.set.Lookup(q.Kind.Table())
	if lookup == nil {
		return []int32{}, nil
	}
	score := e.scorers[q.Kind]

	var matches []candidate
	for _, entry := range lookup.Entries() {
		locKey := entry.NameKey
		if q.Field == FieldDescription {
			if !entry.HasDesc {
				continue
			}
			locKey = entry.DescKey
		}

		str, ok := e.set.Store.Get(locKey)
		if !ok {
			continue
		}
		lowered := strings.ToLower(str.In(q.Lang))
		if !strings.Contains(lowered, text) {
			continue
		}
		matches = append(matches, candidate{id: entry.ID, score: score(lowered, text)})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score < matches[j].score
	})
	if len(matches) > q.Limit {
		matches = matches[:q.Limit]
	}

	ids := make([]int32, len(matches))
	for i, m := range matches {
		ids[i] = m.id
	}

	e.logger.Debug("search_completed",
		slog.String("kind", string(q.Kind)),
		slog.String("field", q.Field.String()),
		slog.String("lang", string(q.Lang)),
		slog.Int("results", len(ids)))

	if e.cache != nil {
		e.cache.Add(key, append([]int32(nil), ids...))
	}
	return ids, nil
}

// Name returns the localized name of an entity, if it and its string exist.
func (e *Engine) Name(kind Kind, id int32, lang localization.Language) (string, bool) {
	lookup := e.set.Lookup(kind.Table())
	if lookup == nil {
		return "", false
	}
	entry, ok := lookup.Get(id)
	if !ok {
		return "", false
	}
	str, ok := e.set.Store.Get(entry.NameKey)
	if !ok {
		return "", false
	}
	return str.In(lang), true
}
