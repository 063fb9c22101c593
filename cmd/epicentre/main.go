package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	_ "net/http/pprof"

	"github.com/ericvolp12/epicentre/pkg/handlers"
	"github.com/ericvolp12/epicentre/pkg/store"
	"github.com/ericvolp12/epicentre/pkg/syncer"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	slogecho "github.com/samber/slog-echo"
	echopprof "github.com/sevenNt/echo-pprof"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.App{
		Name:    "epicentre",
		Usage:   "USGS earthquake feed mirror",
		Version: "0.0.1",
	}

	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    "debug",
			Usage:   "enable debug logging",
			EnvVars: []string{"EPICENTRE_DEBUG"},
		},
		&cli.StringFlag{
			Name:    "listen-addr",
			Usage:   "listen address for http server",
			EnvVars: []string{"EPICENTRE_LISTEN_ADDR"},
			Value:   ":3270",
		},
		&cli.StringFlag{
			Name:    "feed-url",
			Usage:   "URL of the USGS GeoJSON summary feed",
			EnvVars: []string{"EPICENTRE_FEED_URL"},
			Value:   syncer.DefaultFeedURL,
		},
		&cli.StringFlag{
			Name:    "data-dir",
			Usage:   "path to data directory",
			EnvVars: []string{"EPICENTRE_DATA_DIR"},
			Value:   "./data/epicentre",
		},
		&cli.DurationFlag{
			Name:    "refresh-interval",
			Usage:   "interval between automatic refreshes, 0 to disable",
			EnvVars: []string{"EPICENTRE_REFRESH_INTERVAL"},
			Value:   0,
		},
		&cli.BoolFlag{
			Name:    "refresh-on-startup",
			Usage:   "run a refresh once the store is ready",
			EnvVars: []string{"EPICENTRE_REFRESH_ON_STARTUP"},
		},
	}

	app.Action = Epicentre

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func Epicentre(cctx *cli.Context) error {
	ctx, cancel := context.WithCancel(cctx.Context)
	defer cancel()

	// Closed when a critical routine fails and the process should exit
	kill := make(chan struct{})

	logLevel := slog.LevelInfo
	if cctx.Bool("debug") {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel, AddSource: true}))
	slog.SetDefault(logger)

	logger.Info("starting up")

	// Make sure data directory exists
	dataDir := cctx.String("data-dir")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		logger.Error("failed to create data directory", "error", err)
		return err
	}

	st := store.Open(filepath.Join(dataDir, "epicentre.db"), logger)
	sy := syncer.New(logger, cctx.String("feed-url"), st)

	// Watch store initialization; a failed first-run schema creation is fatal
	go func() {
		if err := st.WaitReady(ctx); err != nil {
			logger.Error("store initialization failed", "error", err)
			close(kill)
		}
	}()

	// Refresh loop
	refreshInterval := cctx.Duration("refresh-interval")
	shutdownRefresher := make(chan struct{})
	refresherShutdown := make(chan struct{})
	go func() {
		defer close(refresherShutdown)

		logger := logger.With("source", "refresher")

		runRefresh := func() {
			res := <-sy.Refresh(ctx)
			if res.Err != nil {
				logger.Error("refresh failed", "error", res.Err)
				return
			}
			logger.Info("refresh complete", "collection_id", res.CollectionID, "features", res.FeatureCount)
		}

		if cctx.Bool("refresh-on-startup") {
			runRefresh()
		}

		if refreshInterval <= 0 {
			<-shutdownRefresher
			return
		}

		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-shutdownRefresher:
				logger.Info("shutting down refresh loop")
				return
			case <-ticker.C:
				runRefresh()
			}
		}
	}()

	api := handlers.NewAPI(logger, st, sy)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))
	e.Use(slogecho.New(logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace: "epicentre",
		HistogramOptsFunc: func(opts prometheus.HistogramOpts) prometheus.HistogramOpts {
			opts.Buckets = prometheus.ExponentialBuckets(0.00001, 2, 20)
			return opts
		},
	}))
	e.Use(middleware.Recover())

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Epicentre")
	})
	api.Routes(e)
	echopprof.Wrap(e)

	httpServer := &http.Server{
		Addr:    cctx.String("listen-addr"),
		Handler: e,
	}

	shutdownHTTPServer := make(chan struct{})
	httpServerShutdown := make(chan struct{})
	go func() {
		logger := logger.With("source", "http_server")

		logger.Info("http server listening", "addr", httpServer.Addr)

		go func() {
			if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
				logger.Error("failed to start http server", "error", err)
			}
		}()
		<-shutdownHTTPServer
		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Error("failed to shut down http server", "error", err)
		}
		logger.Info("http server shut down")
		close(httpServerShutdown)
	}()

	// Trap SIGINT to trigger a shutdown.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-signals:
		logger.Info("received signal, shutting down")
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	case <-kill:
		logger.Info("shutting down due to fatal error")
	}

	logger.Info("shutting down, waiting for routines to finish")
	cancel()
	close(shutdownRefresher)
	close(shutdownHTTPServer)

	<-refresherShutdown
	<-httpServerShutdown
	logger.Info("shutdown complete")

	return nil
}
