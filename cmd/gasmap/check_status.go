package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/rubiojr/gasmap/internal/gasdb"
)

func checkStatusCommand() *cli.Command {
	return &cli.Command{
		Name:  "check-status",
		Usage: "Check for days missing from the snapshot database",
		Flags: []cli.Flag{
			dbFlag("fuel_prices.db"),
			&cli.StringFlag{
				Name:  "start",
				Usage: "Start date (YYYY-MM-DD), defaults to the oldest stored day",
			},
			&cli.StringFlag{
				Name:  "end",
				Usage: "End date (YYYY-MM-DD), defaults to today",
			},
			debugFlag(),
		},
		Action: checkStatusAction,
	}
}

func checkStatusAction(c *cli.Context) error {
	ctx := c.Context
	storage, err := gasdb.NewStorage(ctx, c.String("db"), newLogger(c))
	if err != nil {
		return err
	}
	defer storage.Close()

	allDates, err := storage.GetAllDates(ctx)
	if err != nil {
		return err
	}
	if len(allDates) == 0 {
		fmt.Println("No dates found in database.")
		return nil
	}

	startDate, err := parseDay(c.String("start"), allDates[0])
	if err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	endDate, err := parseDay(c.String("end"), time.Now())
	if err != nil {
		return fmt.Errorf("invalid end date: %w", err)
	}

	fmt.Printf("Checking for missing days in range: %s to %s\n", startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))

	missing := missingDays(allDates, startDate, endDate)
	if len(missing) == 0 {
		fmt.Println("No missing days in the given range.")
		return nil
	}
	fmt.Println("Missing days:")
	for _, m := range missing {
		fmt.Println(m)
	}
	return nil
}

func missingDays(have []time.Time, start, end time.Time) []string {
	dateSet := make(map[string]struct{}, len(have))
	for _, d := range have {
		dateSet[d.Format("2006-01-02")] = struct{}{}
	}

	var missing []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		ds := d.Format("2006-01-02")
		if _, ok := dateSet[ds]; !ok {
			missing = append(missing, ds)
		}
	}
	return missing
}
