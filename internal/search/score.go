package search

import (
	"strings"
	"unicode/utf8"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// Scorer ranks a candidate that already contains the query. Both arguments
// are lower-cased. Lower scores rank first.
type Scorer func(candidate, query string) int

// unitCost counts insertions, deletions, and substitutions as 1 each.
var unitCost = levenshtein.Options{
	InsCost: 1,
	DelCost: 1,
	SubCost: 1,
	Matches: levenshtein.IdenticalRunes,
}

// LevenshteinScore is the rune-level edit distance between candidate and query.
func LevenshteinScore(candidate, query string) int {
	return levenshtein.DistanceForStrings([]rune(candidate), []rune(query), unitCost)
}

// PositionScore is the rune offset of the first occurrence of query in candidate.
func PositionScore(candidate, query string) int {
	i := strings.Index(candidate, query)
	if i < 0 {
		return utf8.RuneCountInString(candidate)
	}
	return utf8.RuneCountInString(candidate[:i])
}
