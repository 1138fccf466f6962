package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubiojr/gasmap/internal/catalog"
	"github.com/rubiojr/gasmap/internal/stations"
	"github.com/rubiojr/gasmap/internal/translations"
	"github.com/rubiojr/gasmap/internal/viewstate"
	"github.com/rubiojr/gasmap/internal/web/templates"
	"github.com/rubiojr/gasmap/pkg/api"
)

var discard = slog.New(slog.DiscardHandler)

func fixtureList() *api.GasStationList {
	return &api.GasStationList{
		ResultadoConsulta: api.ApiResultOK,
		ListaEESSPrecio: []api.GasStation{
			{IDEESS: "1", Rotulo: "Repsol Centro", Direccion: "CALLE ALCALA, 12", Localidad: "Madrid", Provincia: "Madrid",
				Latitud: "40,4168", Longitud: "-3,7038", PrecioGasolina95E5: "1,659", PrecioGasoleoA: "1,549"},
			{IDEESS: "2", Rotulo: "Cepsa Norte", Direccion: "AVINGUDA DIAGONAL, 1", Localidad: "Barcelona", Provincia: "Barcelona",
				Latitud: "41,3874", Longitud: "2,1686", PrecioGasolina95E5: "1,700", PrecioGasoleoA: ""},
			{IDEESS: "3", Rotulo: "BP Sur", Direccion: "CALLE TOLEDO, 99", Localidad: "Madrid", Provincia: "Madrid",
				Latitud: "40,3900", Longitud: "-3,7000", PrecioGasolina95E5: "1,689", PrecioGasoleoA: "1,569"},
			{IDEESS: "4", Rotulo: "<b>Sin Coordenadas</b>", Direccion: "CARRETERA N-1", Localidad: "Burgos", Provincia: "Burgos",
				Latitud: "", Longitud: "-3,70"},
		},
	}
}

type testEnv struct {
	srv    *httptest.Server
	client *http.Client
}

func newTestEnv(t *testing.T, src catalog.Source, load bool) *testEnv {
	t.Helper()
	cat := catalog.New(src, discard)
	if load {
		cat.Load(context.Background())
	}
	s := New(cat, viewstate.NewStore(0), discard, WithRateLimit(0, 0))
	srv := httptest.NewServer(s.Routes())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testEnv{srv: srv, client: &http.Client{Jar: jar}}
}

func readyEnv(t *testing.T) *testEnv {
	return newTestEnv(t, catalog.SourceFunc(func(context.Context) (*api.GasStationList, error) {
		return fixtureList(), nil
	}), true)
}

func (e *testEnv) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := e.client.Get(e.srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func (e *testEnv) post(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := e.client.Post(e.srv.URL+path, "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func (e *testEnv) view(t *testing.T, path string) templates.View {
	t.Helper()
	status, body := e.get(t, path)
	require.Equal(t, http.StatusOK, status, body)
	var v templates.View
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	return v
}

func viewIDs(v templates.View) []string {
	ids := make([]string, len(v.Stations))
	for i, s := range v.Stations {
		ids[i] = s.ID
	}
	return ids
}

func TestSearchMadrid(t *testing.T) {
	env := readyEnv(t)

	v := env.view(t, "/api/view?q=madrid")
	assert.Equal(t, "madrid", v.Query)
	assert.Equal(t, []string{"1", "3"}, viewIDs(v))
	assert.Equal(t, 2, v.Markers)
}

func TestEmptyQueryShowsEverything(t *testing.T) {
	env := readyEnv(t)

	v := env.view(t, "/api/view")
	assert.Equal(t, []string{"1", "2", "3", "4"}, viewIDs(v))
	assert.Equal(t, 3, v.Markers, "station without coordinates gets no marker")
	assert.Equal(t, stations.Madrid, v.Center)
	assert.Equal(t, viewstate.DefaultZoom, v.Zoom)

	var st templates.Station
	for _, s := range v.Stations {
		if s.ID == "4" {
			st = s
		}
	}
	assert.Nil(t, st.Lat)
	assert.Nil(t, st.Lng)
}

func TestPricesAreVerbatim(t *testing.T) {
	env := readyEnv(t)

	v := env.view(t, "/api/view?q=cepsa")
	require.Len(t, v.Stations, 1)
	assert.Equal(t, "1,700", v.Stations[0].Gasoline95)
	assert.Equal(t, "", v.Stations[0].DieselA)
}

func TestNoMatches(t *testing.T) {
	env := readyEnv(t)

	status, body := env.get(t, "/api/view?q=zzz")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"stations":[]`)

	var v templates.View
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	assert.Empty(t, v.Stations)
	assert.Equal(t, 0, v.Markers)

	status, page := env.get(t, "/?q=zzz")
	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, page, "<li data-id")
	assert.Contains(t, page, `<ul id="station-list"></ul>`)
	assert.Contains(t, page, translations.GetSpanishTranslations().NoStations)
}

func TestFetchFailureShowsOnlyErrorMessage(t *testing.T) {
	env := newTestEnv(t, catalog.SourceFunc(func(context.Context) (*api.GasStationList, error) {
		return nil, errors.New("dial tcp: no route to host")
	}), true)

	status, page := env.get(t, "/")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, page, "Error al cargar los datos de las gasolineras. Por favor, intente de nuevo más tarde.")
	assert.NotContains(t, page, `id="station-list"`)
	assert.NotContains(t, page, `id="map"`)
	assert.NotContains(t, page, `id="search"`)
	assert.NotContains(t, page, "no route to host")

	status, body := env.get(t, "/api/view?q=madrid")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, body, `"phase":"failed"`)

	_, page = env.get(t, "/?lang=en")
	assert.Contains(t, page, translations.GetEnglishTranslations().LoadError)
}

func TestLoadingPage(t *testing.T) {
	env := newTestEnv(t, catalog.SourceFunc(func(context.Context) (*api.GasStationList, error) {
		return fixtureList(), nil
	}), false)

	status, page := env.get(t, "/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, page, "Cargando datos de gasolineras...")
	assert.Contains(t, page, `http-equiv="refresh"`)
	assert.NotContains(t, page, `id="map"`)

	status, _ = env.post(t, "/api/select/1")
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestHomePage(t *testing.T) {
	env := readyEnv(t)

	status, page := env.get(t, "/?q=madrid")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, page, `id="search"`)
	assert.Contains(t, page, `value="madrid"`)
	assert.Contains(t, page, `id="map"`)
	assert.Contains(t, page, `<li data-id="1">`)
	assert.Contains(t, page, `<li data-id="3">`)
	assert.NotContains(t, page, `<li data-id="2">`)
	assert.Contains(t, page, `id="gasmap-view"`)
	assert.Contains(t, page, "leaflet")

	// later searches work on the state this page started
	v := env.view(t, "/api/view")
	assert.Equal(t, "madrid", v.Query)

	_, page = env.get(t, "/")
	assert.Contains(t, page, `value=""`)
	v = env.view(t, "/api/view")
	assert.Equal(t, "", v.Query)
	assert.Len(t, v.Stations, 4)
}

func TestReloadDiscardsViewState(t *testing.T) {
	env := readyEnv(t)

	env.get(t, "/")
	env.view(t, "/api/view?q=madrid")
	status, _ := env.selectStation(t, "3")
	require.Equal(t, http.StatusOK, status)

	status, page := env.get(t, "/")
	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, page, `value="madrid"`)
	assert.NotContains(t, page, `class="selected"`)
	assert.Contains(t, page, `<li data-id="2">`)

	v := env.view(t, "/api/view")
	assert.Equal(t, "", v.Query)
	assert.Equal(t, "", v.Selected)
	assert.Equal(t, stations.Madrid, v.Center)
	assert.Equal(t, viewstate.DefaultZoom, v.Zoom)
	assert.Equal(t, []string{"1", "2", "3", "4"}, viewIDs(v))
}

func TestStaticAssets(t *testing.T) {
	env := readyEnv(t)

	status, body := env.get(t, "/static/gasmap.js")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "map.getZoom()")

	status, body = env.get(t, "/static/gasmap.css")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "#station-list")
}

func TestHomePageEscapesStationText(t *testing.T) {
	env := readyEnv(t)

	_, page := env.get(t, "/?q=burgos")
	assert.NotContains(t, page, "<b>Sin Coordenadas</b>")
	assert.Contains(t, page, "&lt;b&gt;Sin Coordenadas&lt;/b&gt;")
}

type selectResult struct {
	Selected string              `json:"selected"`
	Center   stations.Coordinate `json:"center"`
	Zoom     int                 `json:"zoom"`
	Warning  string              `json:"warning"`
}

func (e *testEnv) selectStation(t *testing.T, id string) (int, selectResult) {
	t.Helper()
	status, body := e.post(t, "/api/select/"+id)
	var res selectResult
	if status == http.StatusOK {
		require.NoError(t, json.Unmarshal([]byte(body), &res))
	}
	return status, res
}

func TestSelectRecentersMap(t *testing.T) {
	env := readyEnv(t)

	status, res := env.selectStation(t, "2")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, stations.Coordinate{Lat: 41.3874, Lng: 2.1686}, res.Center)
	assert.Empty(t, res.Warning)

	status, res = env.selectStation(t, "3")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "3", res.Selected)
	assert.Equal(t, stations.Coordinate{Lat: 40.39, Lng: -3.7}, res.Center)

	v := env.view(t, "/api/view")
	assert.Equal(t, "3", v.Selected)
	assert.Equal(t, stations.Coordinate{Lat: 40.39, Lng: -3.7}, v.Center)
}

func TestSelectInvalidCoordinate(t *testing.T) {
	env := readyEnv(t)

	status, res := env.selectStation(t, "4")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "4", res.Selected)
	assert.NotEmpty(t, res.Warning)
	assert.Equal(t, stations.Madrid, res.Center)
}

func TestSelectUnknownStation(t *testing.T) {
	env := readyEnv(t)

	status, _ := env.selectStation(t, "999")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSessionsAreIndependent(t *testing.T) {
	env := readyEnv(t)
	other := &http.Client{}

	env.view(t, "/api/view?q=bp")

	resp, err := other.Get(env.srv.URL + "/api/view")
	require.NoError(t, err)
	defer resp.Body.Close()
	var v templates.View
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	assert.Equal(t, "", v.Query)
	assert.Len(t, v.Stations, 4)
}

func TestStatusAndHealth(t *testing.T) {
	env := readyEnv(t)

	status, body := env.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", strings.TrimSpace(body))

	status, body = env.get(t, "/api/status")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"phase":"ready"`)
	assert.Contains(t, body, `"stations":4`)
	assert.NotContains(t, body, "lastSnapshot")
}

type snapshotDatesFunc func(context.Context) (*time.Time, error)

func (f snapshotDatesFunc) GetLastUpdateDate(ctx context.Context) (*time.Time, error) {
	return f(ctx)
}

func TestStatusReportsLastSnapshot(t *testing.T) {
	cat := catalog.New(catalog.SourceFunc(func(context.Context) (*api.GasStationList, error) {
		return fixtureList(), nil
	}), discard)
	cat.Load(context.Background())

	tests := []struct {
		name  string
		dates snapshotDatesFunc
		code  int
		want  string
	}{
		{"stored day", func(context.Context) (*time.Time, error) {
			d := time.Date(2024, 10, 15, 0, 0, 0, 0, time.UTC)
			return &d, nil
		}, http.StatusOK, `"lastSnapshot":"2024-10-15"`},
		{"empty store", func(context.Context) (*time.Time, error) {
			return nil, nil
		}, http.StatusOK, `"phase":"ready"`},
		{"store error", func(context.Context) (*time.Time, error) {
			return nil, errors.New("disk I/O error")
		}, http.StatusInternalServerError, "disk I/O error"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := New(cat, viewstate.NewStore(0), discard, WithRateLimit(0, 0), WithSnapshots(test.dates))
			rec := httptest.NewRecorder()
			s.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

			assert.Equal(t, test.code, rec.Code)
			assert.Contains(t, rec.Body.String(), test.want)
		})
	}
}
