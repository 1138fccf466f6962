package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/rubiojr/gasmap/internal/catalog"
	"github.com/rubiojr/gasmap/internal/gasdb"
	"github.com/rubiojr/gasmap/pkg/api"
)

// defaultDate is the snapshot the map shows unless told otherwise.
const defaultDate = "15-10-2024"

func dateFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "date",
		Usage:   "Snapshot date (DD-MM-YYYY) or \"latest\"",
		Value:   defaultDate,
		EnvVars: []string{"GASMAP_DATE"},
	}
}

func dbFlag(value string) cli.Flag {
	return &cli.StringFlag{
		Name:    "db",
		Usage:   "Snapshot database file (empty to always fetch from the network)",
		Value:   value,
		EnvVars: []string{"GASMAP_DB"},
	}
}

func fetchTimeoutFlag() cli.Flag {
	return &cli.DurationFlag{
		Name:    "fetch-timeout",
		Usage:   "Upstream request timeout, 0 waits forever",
		EnvVars: []string{"GASMAP_FETCH_TIMEOUT"},
	}
}

func debugFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "debug",
		Usage:   "Enable debug logging",
		EnvVars: []string{"GASMAP_DEBUG"},
	}
}

func newLogger(c *cli.Context) *slog.Logger {
	if !c.Bool("debug") {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newAPI(c *cli.Context) *api.FuelPriceAPI {
	return api.NewFuelPriceAPI(api.WithTimeout(c.Duration("fetch-timeout")))
}

// newSource builds the station source described by the date, db and
// fetch-timeout flags. The returned func releases the snapshot store.
func newSource(ctx context.Context, c *cli.Context, logger *slog.Logger) (catalog.Source, func(), error) {
	date, err := catalog.ParseDate(c.String("date"))
	if err != nil {
		return nil, nil, err
	}
	client := newAPI(c)

	dbPath := c.String("db")
	if dbPath == "" {
		return &catalog.APISource{Client: client, Date: date}, func() {}, nil
	}

	storage, err := gasdb.NewStorage(ctx, dbPath, logger)
	if err != nil {
		return nil, nil, err
	}
	src := &catalog.StoreSource{Storage: storage, Client: client, Date: date, Log: logger}
	return src, func() { storage.Close() }, nil
}

func parseDay(s string, fallback time.Time) (time.Time, error) {
	if s == "" {
		return fallback, nil
	}
	return time.Parse("2006-01-02", s)
}
