package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/senthilkr/tamil-news-feed/internal/aggregate"
	"github.com/senthilkr/tamil-news-feed/internal/api"
	"github.com/senthilkr/tamil-news-feed/internal/clock/system"
	"github.com/senthilkr/tamil-news-feed/internal/config"
	"github.com/senthilkr/tamil-news-feed/internal/feed"
	collyfetcher "github.com/senthilkr/tamil-news-feed/internal/fetcher/colly"
	"github.com/senthilkr/tamil-news-feed/internal/logging"
	"github.com/senthilkr/tamil-news-feed/internal/metrics"
	"github.com/senthilkr/tamil-news-feed/internal/progress"
	"github.com/senthilkr/tamil-news-feed/internal/scheduler"
	"github.com/senthilkr/tamil-news-feed/internal/scrape"
	"github.com/senthilkr/tamil-news-feed/internal/store/local"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck
	zap.ReplaceGlobals(logger)

	metrics.Init()

	snapshots, err := local.New(local.Config{BaseDir: cfg.Store.DataDir})
	if err != nil {
		return fmt.Errorf("init snapshot store: %w", err)
	}
	selection := local.NewSelectionStore(cfg.Store.DataDir)

	status := feed.NewCycleStatus()
	tracker := progress.NewTracker(
		progress.NewLogSink(logger),
		progress.NewStatusSink(status),
		progress.NewMetricsSink(),
	)

	fetcher := collyfetcher.New(collyfetcher.Config{Timeout: cfg.FetchTimeout()})
	scraper := scrape.New(fetcher, scrape.Config{
		ListingWorkers: cfg.Scrape.ListingWorkers,
		EnrichWorkers:  cfg.Scrape.EnrichWorkers,
		EnrichCutoff:   cfg.Scrape.EnrichCutoff,
	}, logger.Named("scrape"), tracker)
	clk := system.New()
	pipeline := aggregate.New(scraper, cfg.Scrape.SourceWorkers, clk, logger.Named("aggregate"), tracker)

	sched := scheduler.New(pipeline, selection, snapshots, status, clk, logger.Named("scheduler"), tracker, scheduler.Config{
		Quiet:  cfg.QuietInterval(),
		Settle: cfg.SettleInterval(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go sched.Run(ctx)

	server := api.NewServer(snapshots, selection, status, sched, cfg, logger.Named("api"))
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.Int("port", cfg.Server.Port))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown incomplete", zap.Error(err))
	}
	logger.Info("shutdown complete")
	return nil
}
