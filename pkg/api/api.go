// Package api provides types and functions to interact with the Spanish government
// fuel price API and fetch fuel station data.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	ApiResultOK = "OK"

	// DefaultBaseURL is the historical endpoint; the latest prices live at the
	// same path without the "Hist" suffix.
	DefaultBaseURL = "https://sedeaplicaciones.minetur.gob.es/ServiciosRESTCarburantes/PreciosCarburantes/EstacionesTerrestresHist"

	// DateLayout is the date segment format expected by the historical endpoint.
	DateLayout = "02-01-2006"
)

var (
	ErrUnexpectedStatus   = errors.New("unexpected status code")
	ErrMissingStationList = errors.New("response has no ListaEESSPrecio field")
)

// FuelPriceAPI provides methods to fetch fuel price data from the official API.
type FuelPriceAPI struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// Option configures a FuelPriceAPI.
type Option func(*FuelPriceAPI)

// WithBaseURL points the client at a different historical endpoint.
func WithBaseURL(u string) Option {
	return func(api *FuelPriceAPI) {
		api.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithTimeout bounds every request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(api *FuelPriceAPI) {
		api.timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client. The client is never
// modified; WithTimeout applies to a copy of it.
func WithHTTPClient(c *http.Client) Option {
	return func(api *FuelPriceAPI) {
		api.httpClient = c
	}
}

// NewFuelPriceAPI creates a new FuelPriceAPI client. Without options requests
// go to DefaultBaseURL and are not time bounded.
func NewFuelPriceAPI(opts ...Option) *FuelPriceAPI {
	api := &FuelPriceAPI{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(api)
	}
	if api.timeout > 0 {
		c := *api.httpClient
		c.Timeout = api.timeout
		api.httpClient = &c
	}
	return api
}

// DateURL returns the URL holding the snapshot for the given day.
func (api *FuelPriceAPI) DateURL(date time.Time) string {
	return fmt.Sprintf("%s/%s", api.baseURL, date.Format(DateLayout))
}

// LatestURL returns the URL holding the most recent prices.
func (api *FuelPriceAPI) LatestURL() string {
	return strings.Replace(api.baseURL, "EstacionesTerrestresHist", "EstacionesTerrestres", 1)
}

// FetchPricesForDate fetches fuel station prices for a specific date.
func (api *FuelPriceAPI) FetchPricesForDate(ctx context.Context, date time.Time) (*GasStationList, error) {
	body, err := api.get(ctx, api.DateURL(date))
	if err != nil {
		return nil, err
	}
	return DecodeStationList(body)
}

// FetchPrices fetches the latest available fuel station prices.
func (api *FuelPriceAPI) FetchPrices(ctx context.Context) (*GasStationList, error) {
	body, err := api.get(ctx, api.LatestURL())
	if err != nil {
		return nil, err
	}
	return DecodeStationList(body)
}

// FetchRaw returns the undecoded response body for the given day, or for the
// latest prices when date is zero.
func (api *FuelPriceAPI) FetchRaw(ctx context.Context, date time.Time) ([]byte, error) {
	url := api.LatestURL()
	if !date.IsZero() {
		url = api.DateURL(date)
	}
	return api.get(ctx, url)
}

func (api *FuelPriceAPI) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	resp, err := api.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}
	return body, nil
}

// DecodeStationList parses a response body. A body without a station list is
// rejected with ErrMissingStationList.
func DecodeStationList(data []byte) (*GasStationList, error) {
	var pricesResponse GasStationList
	if err := json.Unmarshal(data, &pricesResponse); err != nil {
		return nil, fmt.Errorf("error unmarshaling JSON: %w", err)
	}
	if pricesResponse.ListaEESSPrecio == nil {
		return nil, ErrMissingStationList
	}
	return &pricesResponse, nil
}
