package stations

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubiojr/gasmap/pkg/api"
)

func fixtureStations() []api.GasStation {
	return []api.GasStation{
		{IDEESS: "1", Rotulo: "Repsol Centro", Localidad: "Madrid", Provincia: "Madrid", Latitud: "40,4180", Longitud: "-3,6990"},
		{IDEESS: "2", Rotulo: "Cepsa Norte", Localidad: "Barcelona", Provincia: "Barcelona", Latitud: "41,3874", Longitud: "2,1686"},
		{IDEESS: "3", Rotulo: "BP Sur", Localidad: "Madrid", Provincia: "Madrid", Latitud: "40,3900", Longitud: "-3,7000"},
		{IDEESS: "4", Rotulo: "GALP", Localidad: "ÁVILA", Provincia: "ÁVILA", Latitud: "", Longitud: "-4,70"},
		{IDEESS: "5", Rotulo: "PETRONOR", Localidad: "BILBAO", Provincia: "BIZKAIA", Latitud: "43,26", Longitud: "-2,93"},
	}
}

func ids(list []api.GasStation) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = list[i].IDEESS
	}
	return out
}

func TestParseLatLong(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		hasError bool
	}{
		{"40.4168", 40.4168, false},
		{"40,4168", 40.4168, false},
		{"-3.7038", -3.7038, false},
		{"-3,7038", -3.7038, false},
		{" 43,263012 ", 43.263012, false},
		{"invalid", 0, true},
		{"", 0, true},
		{"NaN", 0, true},
		{"1,2,3", 0, true},
	}

	for _, test := range tests {
		result, err := ParseLatLong(test.input)
		if test.hasError {
			assert.Error(t, err, "ParseLatLong(%q)", test.input)
			continue
		}
		require.NoError(t, err, "ParseLatLong(%q)", test.input)
		assert.Equal(t, test.expected, result, "ParseLatLong(%q)", test.input)
	}
}

func TestStationCoordinate(t *testing.T) {
	pos, err := StationCoordinate(&api.GasStation{Latitud: "40,4168", Longitud: "-3,7038"})
	require.NoError(t, err)
	assert.Equal(t, Coordinate{Lat: 40.4168, Lng: -3.7038}, pos)

	_, err = StationCoordinate(&api.GasStation{IDEESS: "9", Latitud: "", Longitud: "-3,7"})
	assert.ErrorIs(t, err, ErrInvalidCoordinate)

	_, err = StationCoordinate(&api.GasStation{IDEESS: "9", Latitud: "40,1", Longitud: "oeste"})
	assert.ErrorIs(t, err, ErrInvalidCoordinate)
}

func TestFilterMadrid(t *testing.T) {
	all := fixtureStations()[:3]

	got := Filter(all, "madrid")
	assert.Equal(t, []string{"1", "3"}, ids(got))
}

func TestFilterFields(t *testing.T) {
	all := fixtureStations()

	tests := []struct {
		query string
		want  []string
	}{
		{"REPSOL", []string{"1"}},
		{"norte", []string{"2"}},
		{"bizkaia", []string{"5"}},
		{"ávila", []string{"4"}},
		{"Á", []string{"4"}},
		{"r", []string{"1", "2", "3", "5"}},
		{"zzz", []string{}},
	}

	for _, test := range tests {
		t.Run(test.query, func(t *testing.T) {
			if diff := cmp.Diff(test.want, ids(Filter(all, test.query))); diff != "" {
				t.Errorf("Filter(%q) mismatch (-want +got):\n%s", test.query, diff)
			}
		})
	}
}

func TestFilterProperties(t *testing.T) {
	all := fixtureStations()
	queries := []string{"", "madrid", "MAD", "o", "sur", "zzz", "bar", " ", "ávila"}

	for _, q := range queries {
		got := Filter(all, q)

		// subset, in input order
		j := 0
		for _, s := range got {
			for j < len(all) && all[j].IDEESS != s.IDEESS {
				j++
			}
			require.Less(t, j, len(all), "query %q returned %s out of order or not in input", q, s.IDEESS)
			j++
		}

		for i := range got {
			fq := Fold(q)
			ok := strings.Contains(Fold(got[i].Rotulo), fq) ||
				strings.Contains(Fold(got[i].Localidad), fq) ||
				strings.Contains(Fold(got[i].Provincia), fq)
			assert.True(t, ok, "query %q returned non-matching station %s", q, got[i].IDEESS)
		}

		assert.Equal(t, ids(got), ids(Filter(got, q)), "filter is not idempotent for %q", q)
	}
}

func TestFilterEmptyQueryIsIdentity(t *testing.T) {
	all := fixtureStations()
	got := Filter(all, "")
	assert.Equal(t, all, got)

	got[0].Rotulo = "changed"
	assert.Equal(t, "Repsol Centro", all[0].Rotulo)
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	all := fixtureStations()
	before := ids(all)
	Filter(all, "madrid")
	assert.Equal(t, before, ids(all))
}

func TestFinderMatchesFilter(t *testing.T) {
	all := fixtureStations()
	finder, err := NewFinder(all, 2)
	require.NoError(t, err)
	assert.Equal(t, len(all), finder.Len())

	for _, q := range []string{"madrid", "MADRID", "", "zzz", "o", "madrid", "sur"} {
		assert.Equal(t, ids(Filter(all, q)), ids(finder.Find(q)), "query %q", q)
	}
}

func TestFinderResultsAreIndependent(t *testing.T) {
	finder, err := NewFinder(fixtureStations(), 0)
	require.NoError(t, err)

	first := finder.Find("madrid")
	first[0].Rotulo = "changed"
	second := finder.Find("madrid")
	assert.Equal(t, "Repsol Centro", second[0].Rotulo)

	everything := finder.Find("")
	everything[0].Rotulo = "changed"
	assert.Equal(t, "Repsol Centro", finder.Find("")[0].Rotulo)
}

func TestNearby(t *testing.T) {
	all := fixtureStations()

	got := Nearby(all, Madrid, 5000)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].Station.IDEESS)
	assert.Equal(t, "3", got[1].Station.IDEESS)
	assert.LessOrEqual(t, got[0].Distance, got[1].Distance)

	assert.Empty(t, Nearby(all, Coordinate{}, 1000))
}
