package search

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Embers-of-the-Fire/evemt/internal/errors"
	"github.com/Embers-of-the-Fire/evemt/internal/localization"
)

// newSet builds a set whose type, region, and system tables share the
// given names. Entity i+1 gets names[i]; descriptions use keys 1000+.
func newSet(names []string, descs map[int32]string) *localization.Set {
	strs := map[uint32]localization.LocString{}
	var entries []localization.Entry
	for i, name := range names {
		id := int32(i + 1)
		strs[uint32(id)] = localization.LocString{En: name, Zh: "zh-" + name}
		e := localization.Entry{ID: id, NameKey: uint32(id)}
		if d, ok := descs[id]; ok {
			e.DescKey = uint32(1000 + id)
			e.HasDesc = true
			strs[e.DescKey] = localization.LocString{En: d}
		}
		entries = append(entries, e)
	}
	lookup := localization.NewLookup(entries)
	return &localization.Set{
		Store: localization.NewStore(strs),
		Lookups: map[localization.Table]*localization.Lookup{
			localization.TypeTable:   lookup,
			localization.RegionTable: lookup,
			localization.SystemTable: lookup,
		},
	}
}

func nameQuery(kind Kind, text string, limit int) Query {
	return Query{Kind: kind, Field: FieldName, Text: text, Lang: localization.English, Limit: limit}
}

func TestSearch_EmptyQueryReturnsEmptyList(t *testing.T) {
	e := NewEngine(newSet([]string{"Tritanium"}, nil))

	for _, kind := range Kinds {
		for _, text := range []string{"", "   ", "\t\n"} {
			ids, err := e.Search(nameQuery(kind, text, 10))
			require.NoError(t, err)
			assert.NotNil(t, ids)
			assert.Empty(t, ids)
		}
	}
}

func TestSearch_ContainmentFilter(t *testing.T) {
	// Given: three minerals
	e := NewEngine(newSet([]string{"Tritanium", "Megacyte", "Pyerite"}, nil))

	// When: searching for a fragment only one of them contains
	ids, err := e.Search(nameQuery(KindType, "ite", 10))

	// Then: only Pyerite matches
	require.NoError(t, err)
	assert.Equal(t, []int32{3}, ids)
}

func TestSearch_ExactMatchRanksFirst(t *testing.T) {
	e := NewEngine(newSet([]string{"Compressed Megacyte", "Megacyte", "Megacyte Batch"}, nil))

	ids, err := e.Search(nameQuery(KindType, "MEGACYTE", 10))

	require.NoError(t, err)
	require.Len(t, ids, 3)
	assert.Equal(t, int32(2), ids[0])
	// "megacyte batch" (distance 6) beats "compressed megacyte" (distance 11)
	assert.Equal(t, []int32{2, 3, 1}, ids)
}

func TestSearch_CaseInsensitiveAndTrimmed(t *testing.T) {
	e := NewEngine(newSet([]string{"Tritanium"}, nil))

	ids, err := e.Search(nameQuery(KindType, "  TRITAN ", 10))
	require.NoError(t, err)
	assert.Equal(t, []int32{1}, ids)
}

func TestSearch_TiesKeepFileOrder(t *testing.T) {
	// Given: names at equal edit distance from the query
	e := NewEngine(newSet([]string{"Veldspar A", "Veldspar B", "Veldspar C"}, nil))

	ids, err := e.Search(nameQuery(KindType, "veldspar", 10))

	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2, 3}, ids)
}

func TestSearch_LimitTruncates(t *testing.T) {
	e := NewEngine(newSet([]string{"Ore 1", "Ore 22", "Ore 333", "Ore 4444"}, nil))

	ids, err := e.Search(nameQuery(KindType, "ore", 2))
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2}, ids)

	ids, err = e.Search(nameQuery(KindType, "ore", 0))
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = e.Search(nameQuery(KindType, "ore", -3))
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSearch_UniverseKindsRankByPosition(t *testing.T) {
	// Given: "jita" appears later in the shorter name
	e := NewEngine(newSet([]string{"New Jita", "Jita Trade Hub Outskirts"}, nil))

	// When: searching systems (position) and types (edit distance)
	byPosition, err := e.Search(nameQuery(KindSystem, "jita", 10))
	require.NoError(t, err)
	byDistance, err := e.Search(nameQuery(KindType, "jita", 10))
	require.NoError(t, err)

	// Then: the policies disagree as expected
	assert.Equal(t, []int32{2, 1}, byPosition)
	assert.Equal(t, []int32{1, 2}, byDistance)
}

func TestSearch_DescriptionField(t *testing.T) {
	e := NewEngine(newSet(
		[]string{"Tritanium", "Pyerite", "Mexallon"},
		map[int32]string{1: "The most common ore mineral.", 3: "A rare mineral."},
	))

	ids, err := e.Search(Query{Kind: KindType, Field: FieldDescription, Text: "mineral", Lang: localization.English, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []int32{3, 1}, ids)

	// Entities without a description string in the requested locale are skipped.
	ids, err = e.Search(Query{Kind: KindType, Field: FieldDescription, Text: "mineral", Lang: localization.Chinese, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSearch_LanguageSelectsLocale(t *testing.T) {
	e := NewEngine(newSet([]string{"Tritanium"}, nil))

	ids, err := e.Search(Query{Kind: KindType, Text: "zh-trit", Lang: localization.Chinese, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, []int32{1}, ids)

	ids, err = e.Search(Query{Kind: KindType, Text: "zh-trit", Lang: localization.English, Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSearch_MissingStringsAndTables(t *testing.T) {
	set := newSet([]string{"Tritanium"}, nil)
	set.Lookups[localization.TypeTable] = localization.NewLookup([]localization.Entry{{ID: 9, NameKey: 424242}})
	e := NewEngine(set)

	ids, err := e.Search(nameQuery(KindType, "t", 5))
	require.NoError(t, err)
	assert.Empty(t, ids)

	// npc_corporation has no table in this set
	ids, err = e.Search(nameQuery(KindNpcCorporation, "t", 5))
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSearch_InvalidInput(t *testing.T) {
	e := NewEngine(newSet([]string{"Tritanium"}, nil))

	_, err := e.Search(nameQuery(Kind("planet"), "x", 5))
	assert.ErrorIs(t, err, apperrors.ErrUnknownEntityKind)

	_, err = e.Search(Query{Kind: KindType, Text: "x", Lang: "fr", Limit: 5})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestSearch_CacheReturnsIndependentCopies(t *testing.T) {
	// Given: a cached engine
	e := NewEngine(newSet([]string{"Pyerite", "Pyerite Ore"}, nil), WithCacheSize(8))

	first, err := e.Search(nameQuery(KindType, "pyerite", 10))
	require.NoError(t, err)

	// When: the caller mutates the result
	first[0] = -1

	// Then: a cached hit is unaffected
	second, err := e.Search(nameQuery(KindType, "pyerite", 10))
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2}, second)
	assert.Equal(t, 1, e.cache.Len())
}

func TestSearch_WithScorerOverridesPolicy(t *testing.T) {
	reverse := func(candidate, query string) int { return -len(candidate) }
	e := NewEngine(newSet([]string{"Ore", "Ore Ore"}, nil), WithScorer(KindType, reverse))

	ids, err := e.Search(nameQuery(KindType, "ore", 10))
	require.NoError(t, err)
	assert.Equal(t, []int32{2, 1}, ids)
}

func TestSearch_ConcurrentReaders(t *testing.T) {
	names := make([]string, 200)
	for i := range names {
		names[i] = fmt.Sprintf("Asteroid %03d", i)
	}
	e := NewEngine(newSet(names, nil), WithCacheSize(4))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids, err := e.Search(nameQuery(KindType, fmt.Sprintf("%03d", i), 5))
			assert.NoError(t, err)
			assert.Equal(t, []int32{int32(i + 1)}, ids)
		}(i)
	}
	wg.Wait()
}

func TestEngine_Name(t *testing.T) {
	e := NewEngine(newSet([]string{"Tritanium"}, nil))

	name, ok := e.Name(KindType, 1, localization.Chinese)
	require.True(t, ok)
	assert.Equal(t, "zh-Tritanium", name)

	_, ok = e.Name(KindType, 99, localization.English)
	assert.False(t, ok)
	_, ok = e.Name(KindNpcCorporation, 1, localization.English)
	assert.False(t, ok)
}
