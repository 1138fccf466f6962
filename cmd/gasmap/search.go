package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/muesli/gominatim"
	"github.com/urfave/cli/v2"

	"github.com/rubiojr/gasmap/internal/catalog"
	"github.com/rubiojr/gasmap/internal/stations"
	"github.com/rubiojr/gasmap/pkg/api"
)

const metersPerKm = 1000.0

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "List stations whose name, locality or province match QUERY",
		ArgsUsage: "[QUERY]",
		Flags: []cli.Flag{
			dateFlag(),
			dbFlag(""),
			fetchTimeoutFlag(),
			&cli.StringFlag{
				Name:  "location",
				Usage: "Only show stations near this place (geocoded with Nominatim)",
			},
			&cli.Float64Flag{
				Name:  "lat",
				Usage: "Latitude of the location",
			},
			&cli.Float64Flag{
				Name:  "long",
				Usage: "Longitude of the location",
			},
			&cli.Float64Flag{
				Name:    "radius",
				Aliases: []string{"r"},
				Usage:   "Search radius in kilometers",
				Value:   5.0,
			},
			debugFlag(),
		},
		Action: searchAction,
	}
}

func searchAction(c *cli.Context) error {
	logger := newLogger(c)
	query := strings.Join(c.Args().Slice(), " ")

	var center *stations.Coordinate
	switch {
	case c.String("location") != "":
		pos, name, err := geocode(c.String("location"))
		if err != nil {
			return err
		}
		fmt.Println("Location found:", name)
		center = &pos
	case c.IsSet("lat") || c.IsSet("long"):
		if !c.IsSet("lat") || !c.IsSet("long") {
			return errors.New("both --lat and --long are required")
		}
		center = &stations.Coordinate{Lat: c.Float64("lat"), Lng: c.Float64("long")}
	}

	source, closeSource, err := newSource(c.Context, c, logger)
	if err != nil {
		return err
	}
	defer closeSource()

	cat := catalog.New(source, logger)
	cat.Load(c.Context)
	if cat.Phase() != catalog.PhaseReady {
		return fmt.Errorf("error fetching stations: %w", cat.Err())
	}

	visible, err := cat.Visible(query)
	if err != nil {
		return err
	}

	if center == nil {
		printStations(os.Stdout, visible)
		return nil
	}

	radius := c.Float64("radius")
	nearby := stations.Nearby(visible, *center, radius*metersPerKm)
	printNearby(os.Stdout, nearby, radius)
	return nil
}

func printStations(w io.Writer, list []api.GasStation) {
	for i := range list {
		printStation(w, i+1, &list[i])
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Found %d stations\n", len(list))
}

func printNearby(w io.Writer, list []api.StationWithDistance, radius float64) {
	for i, s := range list {
		printStation(w, i+1, s.Station)
		fmt.Fprintf(w, "   Distance: %.2f km\n\n", s.Distance/metersPerKm)
	}
	fmt.Fprintf(w, "Found %d stations within %g km radius\n", len(list), radius)
}

// printStation writes the fields shown in the list pane and the marker popup.
// Prices are printed as published.
func printStation(w io.Writer, n int, station *api.GasStation) {
	fmt.Fprintf(w, "%d. %s (%s, %s)\n", n, station.Rotulo, station.Direccion, station.Localidad)
	fmt.Fprintf(w, "   Provincia: %s\n", station.Provincia)
	fmt.Fprintf(w, "   Gasolina 95: %s €\n", station.PrecioGasolina95E5)
	fmt.Fprintf(w, "   Gasóleo A: %s €\n", station.PrecioGasoleoA)
}

func geocode(name string) (stations.Coordinate, string, error) {
	gominatim.SetServer("https://nominatim.openstreetmap.org/")
	qry := gominatim.SearchQuery{
		Q: name,
	}

	resp, err := qry.Get()
	if err != nil {
		return stations.Coordinate{}, "", fmt.Errorf("geocoding error: %w", err)
	}
	if len(resp) == 0 {
		return stations.Coordinate{}, "", fmt.Errorf("no results found for location: %s", name)
	}

	lat, err := strconv.ParseFloat(resp[0].Lat, 64)
	if err != nil {
		return stations.Coordinate{}, "", fmt.Errorf("error parsing latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(resp[0].Lon, 64)
	if err != nil {
		return stations.Coordinate{}, "", fmt.Errorf("error parsing longitude: %w", err)
	}
	return stations.Coordinate{Lat: lat, Lng: lng}, resp[0].DisplayName, nil
}
