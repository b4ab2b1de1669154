package search

import (
	"strings"

	apperrors "github.com/Embers-of-the-Fire/evemt/internal/errors"
	"github.com/Embers-of-the-Fire/evemt/internal/localization"
)

// Kind is a searchable entity kind. Each kind is backed by one lookup table.
type Kind string

const (
	KindType           Kind = "type"
	KindRegion         Kind = "region"
	KindConstellation  Kind = "constellation"
	KindSystem         Kind = "system"
	KindNpcCorporation Kind = "npc_corporation"
)

// Kinds lists every searchable kind.
var Kinds = []Kind{KindType, KindRegion, KindConstellation, KindSystem, KindNpcCorporation}

// ParseKind parses a kind name. "npc-corporation" and "npccorp" are accepted
// as aliases of npc_corporation.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindType, KindRegion, KindConstellation, KindSystem, KindNpcCorporation:
		return k, nil
	case "npc-corporation", "npccorp":
		return KindNpcCorporation, nil
	}
	return "", apperrors.Newf(apperrors.ErrCodeUnknownEntityKind, "unknown entity kind %q", s).
		WithDetail("kind", s)
}

// Table returns the lookup table that backs k.
func (k Kind) Table() localization.Table {
	switch k {
	case KindRegion:
		return localization.RegionTable
	case KindConstellation:
		return localization.ConstellationTable
	case KindSystem:
		return localization.SystemTable
	case KindNpcCorporation:
		return localization.NpcCorporationTable
	default:
		return localization.TypeTable
	}
}

// HasDescription reports whether entities of kind k carry descriptions.
func (k Kind) HasDescription() bool {
	switch k {
	case KindType, KindRegion, KindNpcCorporation:
		return true
	}
	return false
}

// DefaultScorer returns the ranking policy for k: edit distance for types
// and corporations, first-match position for universe objects.
func (k Kind) DefaultScorer() Scorer {
	switch k {
	case KindRegion, KindConstellation, KindSystem:
		return PositionScore
	default:
		return LevenshteinScore
	}
}

// Field selects which localized string of an entity is searched.
type Field int

const (
	FieldName Field = iota
	FieldDescription
)

func (f Field) String() string {
	if f == FieldDescription {
		return "description"
	}
	return "name"
}
