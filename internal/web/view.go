package web

import (
	"github.com/rubiojr/gasmap/internal/stations"
	"github.com/rubiojr/gasmap/internal/viewstate"
	"github.com/rubiojr/gasmap/internal/web/templates"
	"github.com/rubiojr/gasmap/pkg/api"
)

// NewView builds the page model for a session snapshot and the stations
// visible under its query.
func NewView(snap viewstate.Snapshot, visible []api.GasStation) templates.View {
	v := templates.View{
		Query:    snap.Query,
		Center:   snap.Center,
		Zoom:     snap.Zoom,
		Selected: snap.SelectedID(),
		Stations: make([]templates.Station, 0, len(visible)),
	}
	for i := range visible {
		st := stationView(&visible[i])
		if st.Lat != nil {
			v.Markers++
		}
		v.Stations = append(v.Stations, st)
	}
	return v
}

func stationView(s *api.GasStation) templates.Station {
	st := templates.Station{
		ID:         s.IDEESS,
		Name:       s.Rotulo,
		Address:    s.Direccion,
		Locality:   s.Localidad,
		Province:   s.Provincia,
		Gasoline95: s.PrecioGasolina95E5,
		DieselA:    s.PrecioGasoleoA,
	}
	if pos, err := stations.StationCoordinate(s); err == nil {
		st.Lat, st.Lng = &pos.Lat, &pos.Lng
	}
	return st
}
