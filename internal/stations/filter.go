package stations

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/rubiojr/gasmap/pkg/api"
)

// Fold returns the case-folded form of s used for matching.
func Fold(s string) string {
	// A Caser keeps state between calls, so each call gets its own.
	return cases.Fold().String(s)
}

// Matches reports whether the folded query is a substring of the station's
// folded name, locality or province. An empty query matches every station.
func Matches(station *api.GasStation, foldedQuery string) bool {
	if foldedQuery == "" {
		return true
	}
	return strings.Contains(Fold(station.Rotulo), foldedQuery) ||
		strings.Contains(Fold(station.Localidad), foldedQuery) ||
		strings.Contains(Fold(station.Provincia), foldedQuery)
}

// Filter returns the stations matching query, in their input order. The
// result never shares memory with all; an empty query returns a copy of it.
func Filter(all []api.GasStation, query string) []api.GasStation {
	if query == "" {
		return slices.Clone(all)
	}
	q := Fold(query)
	filtered := make([]api.GasStation, 0)
	for i := range all {
		if Matches(&all[i], q) {
			filtered = append(filtered, all[i])
		}
	}
	return filtered
}
