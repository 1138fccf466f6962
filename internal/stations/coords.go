// Package stations holds the station-list logic shared by the web server and
// the CLI: coordinate parsing, the free-text filter and the radius filter.
package stations

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rubiojr/gasmap/pkg/api"
)

var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Coordinate is a WGS84 point in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Madrid is the map center used until a station is selected.
var Madrid = Coordinate{Lat: 40.4168, Lng: -3.7038}

// ParseLatLong parses a latitude or longitude string (with comma or dot) to float64.
func ParseLatLong(s string) (float64, error) {
	s = strings.Replace(strings.TrimSpace(s), ",", ".", 1)
	m, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(m) || math.IsInf(m, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCoordinate, s)
	}

	return m, nil
}

// StationCoordinate returns the parsed position of a station. Stations with a
// missing or malformed coordinate yield an error wrapping ErrInvalidCoordinate.
func StationCoordinate(station *api.GasStation) (Coordinate, error) {
	lat, err := ParseLatLong(station.Latitud)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: station %s latitude %q", ErrInvalidCoordinate, station.IDEESS, station.Latitud)
	}
	lng, err := ParseLatLong(station.Longitud)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: station %s longitude %q", ErrInvalidCoordinate, station.IDEESS, station.Longitud)
	}
	return Coordinate{Lat: lat, Lng: lng}, nil
}
