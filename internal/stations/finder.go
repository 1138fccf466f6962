package stations

import (
	"fmt"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rubiojr/gasmap/pkg/api"
)

const DefaultFinderCacheSize = 256

// Finder filters a fixed station list. Folded search fields are computed once
// and results are memoized per folded query, which is only correct because the
// list never changes after construction.
type Finder struct {
	all    []api.GasStation
	folded []foldedFields
	memo   *lru.Cache[string, []int]
}

type foldedFields struct {
	name, locality, province string
}

// NewFinder builds a Finder over all. cacheSize bounds the number of memoized
// queries.
func NewFinder(all []api.GasStation, cacheSize int) (*Finder, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultFinderCacheSize
	}
	memo, err := lru.New[string, []int](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating LRU cache: %w", err)
	}

	folded := make([]foldedFields, len(all))
	for i := range all {
		folded[i] = foldedFields{
			name:     Fold(all[i].Rotulo),
			locality: Fold(all[i].Localidad),
			province: Fold(all[i].Provincia),
		}
	}
	return &Finder{all: all, folded: folded, memo: memo}, nil
}

// Find behaves like Filter over the Finder's list. Callers own the returned
// slice.
func (f *Finder) Find(query string) []api.GasStation {
	if query == "" {
		return slices.Clone(f.all)
	}
	idx := f.indexes(Fold(query))
	result := make([]api.GasStation, len(idx))
	for i, j := range idx {
		result[i] = f.all[j]
	}
	return result
}

func (f *Finder) indexes(q string) []int {
	if idx, ok := f.memo.Get(q); ok {
		return idx
	}
	idx := make([]int, 0)
	for i, ff := range f.folded {
		if strings.Contains(ff.name, q) || strings.Contains(ff.locality, q) || strings.Contains(ff.province, q) {
			idx = append(idx, i)
		}
	}
	f.memo.Add(q, idx)
	return idx
}

// Len returns the number of stations the Finder searches.
func (f *Finder) Len() int {
	return len(f.all)
}
