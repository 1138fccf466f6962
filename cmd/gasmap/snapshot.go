package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"

	"github.com/rubiojr/gasmap/internal/gasdb"
	"github.com/rubiojr/gasmap/pkg/api"
)

const snapshotPause = 200 * time.Millisecond

func snapshotCommand() *cli.Command {
	return &cli.Command{
		Name:  "snapshot",
		Usage: "Download daily price snapshots into the database",
		Flags: []cli.Flag{
			dbFlag("fuel_prices.db"),
			fetchTimeoutFlag(),
			&cli.StringFlag{
				Name:  "start",
				Usage: "First day to download (YYYY-MM-DD), defaults to yesterday",
			},
			&cli.StringFlag{
				Name:  "end",
				Usage: "Last day to download (YYYY-MM-DD), defaults to yesterday",
			},
			&cli.BoolFlag{
				Name:  "latest",
				Usage: "Also store today's latest prices",
			},
			&cli.IntFlag{
				Name:  "keep-days",
				Usage: "Delete snapshots older than this many days, 0 keeps everything",
			},
			debugFlag(),
		},
		Action: snapshotAction,
	}
}

func snapshotAction(c *cli.Context) error {
	ctx := c.Context
	logger := newLogger(c)

	yesterday := time.Now().AddDate(0, 0, -1)
	startDate, err := parseDay(c.String("start"), yesterday)
	if err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	endDate, err := parseDay(c.String("end"), yesterday)
	if err != nil {
		return fmt.Errorf("invalid end date: %w", err)
	}
	if endDate.Before(startDate) {
		return fmt.Errorf("end date %s is before start date %s", endDate.Format("2006-01-02"), startDate.Format("2006-01-02"))
	}

	storage, err := gasdb.NewStorage(ctx, c.String("db"), logger)
	if err != nil {
		return err
	}
	defer storage.Close()

	fuelAPI := newAPI(c)
	days := int(endDate.Sub(startDate).Hours()/24) + 1
	bar := newProgressBar(days, "downloading snapshots")

	saved := 0
	for date := startDate; !date.After(endDate); date = date.AddDate(0, 0, 1) {
		ok, err := saveDay(ctx, storage, fuelAPI, date, logger)
		if err != nil {
			return err
		}
		if ok {
			saved++
			time.Sleep(snapshotPause)
		}
		bar.Add(1)
	}
	bar.Finish()

	if c.Bool("latest") {
		ok, err := saveDay(ctx, storage, fuelAPI, time.Time{}, logger)
		if err != nil {
			return err
		}
		if ok {
			saved++
		}
	}
	fmt.Printf("Saved %d snapshots\n", saved)

	if keep := c.Int("keep-days"); keep > 0 {
		deleted, err := storage.DeleteOldRecords(ctx, keep)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d snapshots older than %d days\n", deleted, keep)
	}
	return nil
}

// saveDay stores the snapshot for date (today's latest prices for a zero
// date) unless it is already there. Fetch failures are logged and skipped,
// only storage errors are returned.
func saveDay(ctx context.Context, storage *gasdb.Storage, fuelAPI *api.FuelPriceAPI, date time.Time, logger *slog.Logger) (bool, error) {
	key := date
	if key.IsZero() {
		key = time.Now()
	}
	day := key.Format("2006-01-02")

	hasDate, err := storage.HasDate(ctx, key)
	if err != nil {
		return false, err
	}
	if hasDate {
		return false, nil
	}

	logger.Debug("fetching data for", "date", day)
	raw, err := fuelAPI.FetchRaw(ctx, date)
	if err != nil {
		logger.Debug("Error fetching prices for date", "date", day, "error", err)
		return false, nil
	}
	prices, err := api.DecodeStationList(raw)
	if err != nil {
		logger.Debug("Error decoding prices for date", "date", day, "error", err)
		return false, nil
	}
	if prices.ResultadoConsulta != api.ApiResultOK {
		logger.Debug("API returned non-OK result for", "date", day, "result", prices.ResultadoConsulta)
		return false, nil
	}

	if err := storage.SavePrices(ctx, key, raw); err != nil {
		return false, fmt.Errorf("error saving data for %s: %w", day, err)
	}
	return true, nil
}

func newProgressBar(max int, description string) *progressbar.ProgressBar {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return progressbar.DefaultSilent(int64(max), description)
	}
	return progressbar.Default(int64(max), description)
}
