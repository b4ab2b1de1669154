package localization

import (
	"os"
	"path/filepath"
)

// Table names one lookup file.
type Table string

const (
	TypeTable           Table = "type"
	RegionTable         Table = "region"
	ConstellationTable  Table = "constellation"
	SystemTable         Table = "system"
	NpcCorporationTable Table = "npc_corporation"
)

// Tables lists every lookup table a pack carries.
var Tables = []Table{TypeTable, RegionTable, ConstellationTable, SystemTable, NpcCorporationTable}

// File returns the table's file name under Dir.
func (t Table) File() string {
	return string(t) + "_localization_lookup.pb"
}

// Entry is one lookup row: an entity id and its localization keys.
type Entry struct {
	ID      int32
	NameKey uint32
	DescKey uint32
	HasDesc bool
}

// Lookup maps entity ids to localization keys and keeps file order.
// Safe for concurrent reads.
type Lookup struct {
	entries []Entry
	index   map[int32]int
}

// NewLookup builds a lookup from entries in order. A repeated id keeps its
// first position and its last value.
func NewLookup(entries []Entry) *Lookup {
	l := &Lookup{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[int32]int, len(entries)),
	}
	for _, e := range entries {
		if i, ok := l.index[e.ID]; ok {
			l.entries[i] = e
			continue
		}
		l.index[e.ID] = len(l.entries)
		l.entries = append(l.entries, e)
	}
	return l
}

// Get returns the entry for id.
func (l *Lookup) Get(id int32) (Entry, bool) {
	i, ok := l.index[id]
	if !ok {
		return Entry{}, false
	}
	return l.entries[i], true
}

// Entries returns all entries in file order. Callers must not modify the slice.
func (l *Lookup) Entries() []Entry {
	return l.entries
}

// Len returns the number of entries.
func (l *Lookup) Len() int {
	return len(l.entries)
}

// LoadLookup decodes <root>/localizations/<table>_localization_lookup.pb.
func LoadLookup(root string, table Table) (*Lookup, error) {
	path := filepath.Join(root, Dir, table.File())
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, indexLoadError(path, err)
	}

	var entries []Entry
	err = eachRecord(data, func(rec []byte) error {
		e, err := decodeEntry(rec)
		if err != nil {
			return err
		}
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, indexLoadError(path, err)
	}
	return NewLookup(entries), nil
}
