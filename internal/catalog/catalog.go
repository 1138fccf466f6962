// Package catalog owns the station list of a running instance: it performs the
// single upstream fetch and tracks whether the data is loading, ready or
// failed.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rubiojr/gasmap/internal/stations"
	"github.com/rubiojr/gasmap/pkg/api"
)

// Phase is the loading state of a Catalog. Once Ready or Failed it never
// changes again.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseReady
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

var ErrNotReady = errors.New("station data not loaded")

type Catalog struct {
	source Source
	log    *slog.Logger

	once sync.Once

	mu     sync.RWMutex
	phase  Phase
	err    error
	all    []api.GasStation
	byID   map[string]int
	finder *stations.Finder
}

func New(source Source, logger *slog.Logger) *Catalog {
	return &Catalog{
		source: source,
		log:    logger,
		phase:  PhaseLoading,
	}
}

// Load fetches the station list. Only the first call does any work; it blocks
// until the fetch ends. If ctx is cancelled before the fetch returns the
// result is discarded and the catalog fails.
func (c *Catalog) Load(ctx context.Context) {
	c.once.Do(func() {
		c.log.Info("Fetching station data")
		list, err := c.source.Fetch(ctx)
		if err == nil && ctx.Err() != nil {
			err = ctx.Err()
		}
		if err == nil && list == nil {
			err = api.ErrMissingStationList
		}
		if err != nil {
			c.fail(err)
			return
		}
		if err := c.ready(list.ListaEESSPrecio); err != nil {
			c.fail(err)
		}
	})
}

func (c *Catalog) fail(err error) {
	c.log.Error("Error fetching station data", "error", err)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = PhaseFailed
	c.err = err
}

func (c *Catalog) ready(all []api.GasStation) error {
	finder, err := stations.NewFinder(all, stations.DefaultFinderCacheSize)
	if err != nil {
		return err
	}

	byID := make(map[string]int, len(all))
	for i := range all {
		id := all[i].IDEESS
		if _, dup := byID[id]; dup {
			c.log.Warn("Duplicate station id, keeping first", "id", id)
			continue
		}
		byID[id] = i
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.all = all
	c.byID = byID
	c.finder = finder
	c.phase = PhaseReady
	c.log.Info("Station data loaded", "stations", len(all))
	return nil
}

func (c *Catalog) Phase() Phase {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.phase
}

// Err returns the load error of a failed catalog.
func (c *Catalog) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Stations returns the full list. Callers must not modify it.
func (c *Catalog) Stations() []api.GasStation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.all
}

// Station looks a station up by IDEESS.
func (c *Catalog) Station(id string) (*api.GasStation, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return &c.all[i], true
}

// Visible returns the stations matching query in list order.
func (c *Catalog) Visible(query string) ([]api.GasStation, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.phase != PhaseReady {
		return nil, ErrNotReady
	}
	return c.finder.Find(query), nil
}
