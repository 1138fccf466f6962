package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rubiojr/gasmap/internal/gasdb"
	"github.com/rubiojr/gasmap/pkg/api"
)

// Source produces the station list for a session.
type Source interface {
	Fetch(ctx context.Context) (*api.GasStationList, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (*api.GasStationList, error)

func (f SourceFunc) Fetch(ctx context.Context) (*api.GasStationList, error) {
	return f(ctx)
}

// APISource fetches from the upstream API. A zero Date asks for the latest
// prices instead of a dated snapshot.
type APISource struct {
	Client *api.FuelPriceAPI
	Date   time.Time
}

func (s *APISource) Fetch(ctx context.Context) (*api.GasStationList, error) {
	if s.Date.IsZero() {
		return s.Client.FetchPrices(ctx)
	}
	return s.Client.FetchPricesForDate(ctx, s.Date)
}

// StoreSource serves a day from the snapshot store and only goes to the
// network when the day is missing, saving what it downloads.
type StoreSource struct {
	Storage *gasdb.Storage
	Client  *api.FuelPriceAPI
	Date    time.Time
	Log     *slog.Logger
}

func (s *StoreSource) Fetch(ctx context.Context) (*api.GasStationList, error) {
	key := s.Date
	if key.IsZero() {
		key = time.Now()
	}

	prices, err := s.Storage.GetPrices(ctx, key)
	if err == nil {
		s.Log.Debug("Loaded stations from snapshot store", "date", key.Format("2006-01-02"))
		return prices, nil
	}
	if !errors.Is(err, gasdb.ErrNoData) {
		s.Log.Warn("Snapshot store unreadable, falling back to network", "error", err)
	}

	raw, err := s.Client.FetchRaw(ctx, s.Date)
	if err != nil {
		return nil, err
	}
	prices, err = api.DecodeStationList(raw)
	if err != nil {
		return nil, err
	}

	if err := s.Storage.SavePrices(ctx, key, raw); err != nil {
		// the session still has its data
		s.Log.Error("Failed to save snapshot", "error", err)
	}
	return prices, nil
}

// ParseDate reads a DD-MM-YYYY date as used by the upstream API. "latest"
// and the empty string yield the zero time.
func ParseDate(s string) (time.Time, error) {
	if s == "" || s == "latest" {
		return time.Time{}, nil
	}
	d, err := time.Parse(api.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want DD-MM-YYYY or latest: %w", s, err)
	}
	return d, nil
}
