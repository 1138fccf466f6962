package templates

import (
	"strconv"

	"github.com/rubiojr/gasmap/internal/stations"
	"github.com/rubiojr/gasmap/internal/translations"
)

// Station is the part of a station record the page shows. Lat and Lng are nil
// when the upstream coordinate does not parse; such stations are listed but
// get no marker.
type Station struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Address    string   `json:"address"`
	Locality   string   `json:"locality"`
	Province   string   `json:"province"`
	Lat        *float64 `json:"lat"`
	Lng        *float64 `json:"lng"`
	Gasoline95 string   `json:"gasoline95"`
	DieselA    string   `json:"dieselA"`
}

// View is everything the two-pane layout needs, both for the first render
// and for every later search.
type View struct {
	Query    string              `json:"query"`
	Center   stations.Coordinate `json:"center"`
	Zoom     int                 `json:"zoom"`
	Selected string              `json:"selected,omitempty"`
	Markers  int                 `json:"markers"`
	Stations []Station           `json:"stations"`
}

// labels are the translated strings the browser script needs.
type labels struct {
	Gasoline95        string `json:"gasoline95"`
	DieselA           string `json:"dieselA"`
	Currency          string `json:"currency"`
	StationsShown     string `json:"stationsShown"`
	NoStations        string `json:"noStations"`
	InvalidCoordinate string `json:"invalidCoordinate"`
	Attribution       string `json:"attribution"`
}

func newLabels(t translations.Translations) labels {
	return labels{
		Gasoline95:        t.Gasoline95,
		DieselA:           t.DieselA,
		Currency:          t.Currency,
		StationsShown:     t.StationsShown,
		NoStations:        t.NoStations,
		InvalidCoordinate: t.InvalidCoordinate,
		Attribution:       t.MapAttribution,
	}
}

// countText is the line above the list; the browser script writes the same
// text after every search.
func countText(t translations.Translations, v View) string {
	if len(v.Stations) == 0 {
		return t.NoStations
	}
	return strconv.Itoa(len(v.Stations)) + " " + t.StationsShown
}
