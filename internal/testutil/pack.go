package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

// Loc is a localized string pair.
type Loc struct {
	En string
	Zh string
}

// Entity is one lookup row. DescID 0 means no description.
type Entity struct {
	ID     int32
	NameID uint32
	DescID uint32
}

// Pack describes a fixture pack directory.
type Pack struct {
	ID            string
	Name          Loc
	Created       time.Time
	GameVersion   string
	GameBuild     string
	Localizations map[uint32]Loc
	// Keys fixes the order localizations are written in. Unset means ascending key order.
	Keys           []uint32
	Types          []Entity
	Regions        []Entity
	Constellations []Entity
	Systems        []Entity
	NpcCorps       []Entity
}

// Minerals returns a small pack with three types, one region, and one corporation.
func Minerals(id string) Pack {
	return Pack{
		ID:          id,
		Name:        Loc{En: "Tranquility", Zh: "晨曦"},
		Created:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		GameVersion: "22.01",
		GameBuild:   "2904123",
		Localizations: map[uint32]Loc{
			100: {En: "Tritanium", Zh: "三钛合金"},
			101: {En: "Megacyte", Zh: "超噬矿"},
			102: {En: "Pyerite", Zh: "类晶体胶矿"},
			103: {En: "The most common ore mineral.", Zh: "最常见的矿物。"},
			200: {En: "The Forge", Zh: "伪造者"},
			201: {En: "Kimotoro", Zh: "木本"},
			202: {En: "Jita", Zh: "吉他"},
			203: {En: "A busy region.", Zh: "繁忙的星域。"},
			300: {En: "Caldari Navy", Zh: "加达里海军"},
		},
		Types: []Entity{
			{ID: 34, NameID: 100, DescID: 103},
			{ID: 11399, NameID: 101},
			{ID: 35, NameID: 102},
		},
		Regions:        []Entity{{ID: 10000002, NameID: 200, DescID: 203}},
		Constellations: []Entity{{ID: 20000020, NameID: 201}},
		Systems:        []Entity{{ID: 30000142, NameID: 202}},
		NpcCorps:       []Entity{{ID: 1000035, NameID: 300}},
	}
}

// WriteDir writes the manifest and all localization files under dir.
func (p Pack) WriteDir(t testing.TB, dir string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "localizations"), 0o755))
	p.WriteManifest(t, dir)

	write := func(name string, data []byte) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "localizations", name), data, 0o644))
	}
	write("localizations.pb", EncodeLocalizations(p.Localizations, p.Keys))
	write("type_localization_lookup.pb", EncodeEntities(p.Types, true))
	write("region_localization_lookup.pb", EncodeEntities(p.Regions, true))
	write("constellation_localization_lookup.pb", EncodeEntities(p.Constellations, false))
	write("system_localization_lookup.pb", EncodeEntities(p.Systems, false))
	write("npc_corporation_localization_lookup.pb", EncodeEntities(p.NpcCorps, true))
}

// WriteManifest writes only bundle.descriptor.
func (p Pack) WriteManifest(t testing.TB, dir string) {
	t.Helper()

	manifest := map[string]any{
		"server":      p.ID,
		"server-name": map[string]string{"en": p.Name.En, "zh": p.Name.Zh},
		"created":     p.Created.Format(time.RFC3339),
		"game":        map[string]string{"version": p.GameVersion, "build": p.GameBuild},
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bundle.descriptor"), data, 0o644))
}

// WriteArchive writes the pack to a scratch directory and zips it to path.
func (p Pack) WriteArchive(t testing.TB, path string) {
	t.Helper()

	dir := t.TempDir()
	p.WriteDir(t, dir)
	ZipDir(t, dir, path)
}

// EncodeLocalizations encodes a LocalizationCollection. Keys fixes the order;
// nil means ascending.
func EncodeLocalizations(locs map[uint32]Loc, keys []uint32) []byte {
	if keys == nil {
		for k := range locs {
			keys = append(keys, k)
		}
		slices.Sort(keys)
	}

	var out []byte
	for _, key := range keys {
		loc := locs[key]

		var str []byte
		str = protowire.AppendTag(str, 1, protowire.BytesType)
		str = protowire.AppendString(str, loc.En)
		str = protowire.AppendTag(str, 2, protowire.BytesType)
		str = protowire.AppendString(str, loc.Zh)

		var rec []byte
		rec = protowire.AppendTag(rec, 1, protowire.VarintType)
		rec = protowire.AppendVarint(rec, uint64(key))
		rec = protowire.AppendTag(rec, 2, protowire.BytesType)
		rec = protowire.AppendBytes(rec, str)

		out = protowire.AppendTag(out, 1, protowire.BytesType)
		out = protowire.AppendBytes(out, rec)
	}
	return out
}

// EncodeEntities encodes a lookup collection. withDesc controls whether
// non-zero DescID values are written as field 3.
func EncodeEntities(entities []Entity, withDesc bool) []byte {
	var out []byte
	for _, e := range entities {
		var rec []byte
		rec = protowire.AppendTag(rec, 1, protowire.VarintType)
		rec = protowire.AppendVarint(rec, uint64(int64(e.ID)))
		rec = protowire.AppendTag(rec, 2, protowire.VarintType)
		rec = protowire.AppendVarint(rec, uint64(e.NameID))
		if withDesc && e.DescID != 0 {
			rec = protowire.AppendTag(rec, 3, protowire.VarintType)
			rec = protowire.AppendVarint(rec, uint64(e.DescID))
		}

		out = protowire.AppendTag(out, 1, protowire.BytesType)
		out = protowire.AppendBytes(out, rec)
	}
	return out
}
