// Package viewstate tracks what a browser is looking at: its search text, the
// selected station and the map center.
package viewstate

import (
	"sync"

	"github.com/rubiojr/gasmap/internal/stations"
	"github.com/rubiojr/gasmap/pkg/api"
)

const DefaultZoom = 13

// ErrInvalidCoordinate is returned by Select when the station cannot be
// placed on the map.
var ErrInvalidCoordinate = stations.ErrInvalidCoordinate

// State is safe for concurrent use.
type State struct {
	mu       sync.Mutex
	query    string
	selected *api.GasStation
	center   stations.Coordinate
}

// Snapshot is a copy of a State at one point in time.
type Snapshot struct {
	Query    string
	Selected *api.GasStation
	Center   stations.Coordinate
	Zoom     int
}

// SelectedID returns the IDEESS of the selected station, or "".
func (s Snapshot) SelectedID() string {
	if s.Selected == nil {
		return ""
	}
	return s.Selected.IDEESS
}

func New() *State {
	return &State{center: stations.Madrid}
}

func (s *State) SetQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = q
}

// Select marks station as selected and moves the center to its coordinate.
// When the coordinate does not parse the selection is kept, the center stays
// where it was and an error wrapping ErrInvalidCoordinate is returned.
func (s *State) Select(station *api.GasStation) error {
	pos, err := stations.StationCoordinate(station)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = station
	if err != nil {
		return err
	}
	s.center = pos
	return nil
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Query:    s.query,
		Selected: s.selected,
		Center:   s.center,
		Zoom:     DefaultZoom,
	}
}
