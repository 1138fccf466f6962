package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httplog/v2"
	"github.com/urfave/cli/v2"

	"github.com/rubiojr/gasmap/internal/catalog"
	"github.com/rubiojr/gasmap/internal/viewstate"
	"github.com/rubiojr/gasmap/internal/web"
)

const shutdownTimeout = 5 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the station list and map",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Usage:   "HTTP listen address",
				Value:   "127.0.0.1:8080",
				EnvVars: []string{"GASMAP_ADDR"},
			},
			dateFlag(),
			dbFlag(""),
			fetchTimeoutFlag(),
			&cli.IntFlag{
				Name:    "rate-limit",
				Usage:   "Requests per minute and client IP, 0 disables",
				Value:   web.DefaultRateLimit,
				EnvVars: []string{"GASMAP_RATE_LIMIT"},
			},
			&cli.DurationFlag{
				Name:    "session-ttl",
				Usage:   "How long an idle browser keeps its search and selection",
				Value:   viewstate.DefaultSessionTTL,
				EnvVars: []string{"GASMAP_SESSION_TTL"},
			},
			debugFlag(),
		},
		Action: serveAction,
	}
}

func serveAction(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	level := slog.LevelInfo
	if c.Bool("debug") {
		level = slog.LevelDebug
	}
	logger := httplog.NewLogger("gasmap", httplog.Options{
		JSON:            false,
		LogLevel:        level,
		Concise:         true,
		QuietDownPeriod: 10 * time.Second,
	})

	source, closeSource, err := newSource(ctx, c, logger.Logger)
	if err != nil {
		return err
	}
	defer closeSource()

	cat := catalog.New(source, logger.Logger)
	go cat.Load(ctx)

	opts := []web.Option{
		web.WithRequestLogger(logger),
		web.WithRateLimit(c.Int("rate-limit"), time.Minute),
	}
	if src, ok := source.(*catalog.StoreSource); ok {
		opts = append(opts, web.WithSnapshots(src.Storage))
	}
	app := web.New(cat, viewstate.NewStore(c.Duration("session-ttl")), logger.Logger, opts...)

	srv := &http.Server{
		Addr:              c.String("addr"),
		Handler:           app.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error shutting down server", "error", err)
		}
	}()

	logger.Info("Starting server", "addr", srv.Addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
