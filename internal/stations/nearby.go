package stations

import (
	"sort"

	"github.com/tkrajina/gpxgo/gpx"

	"github.com/rubiojr/gasmap/pkg/api"
)

// Nearby returns the stations within distance meters of center, closest
// first. Stations without a valid coordinate are skipped.
func Nearby(all []api.GasStation, center Coordinate, distance float64) []api.StationWithDistance {
	var nearbyStations []api.StationWithDistance
	for i := range all {
		station := &all[i]
		pos, err := StationCoordinate(station)
		if err != nil {
			continue
		}

		calculatedDistance := gpx.Distance2D(center.Lat, center.Lng, pos.Lat, pos.Lng, true)
		if calculatedDistance <= distance {
			nearbyStations = append(nearbyStations, api.StationWithDistance{
				Station:  station,
				Distance: calculatedDistance,
			})
		}
	}

	sort.SliceStable(nearbyStations, func(i, j int) bool {
		return nearbyStations[i].Distance < nearbyStations[j].Distance
	})
	return nearbyStations
}
