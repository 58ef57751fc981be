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

	"github.com/lysyi3m/rss-relay/app/api"
	"github.com/lysyi3m/rss-relay/app/cfg"
	"github.com/lysyi3m/rss-relay/app/config"
	"github.com/lysyi3m/rss-relay/app/delivery"
	"github.com/lysyi3m/rss-relay/app/feed"
	"github.com/lysyi3m/rss-relay/app/poller"
	"golang.org/x/sync/errgroup"
)

func main() {
	appConfig, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appConfig == nil {
		return
	}

	logLevel := slog.LevelInfo
	if appConfig.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	if err := run(appConfig); err != nil {
		slog.Error("RSS Relay stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(appConfig *cfg.Cfg) error {
	slog.Info("Starting RSS Relay", "version", appConfig.Version, "store", appConfig.Store)

	relayConfig, err := config.NewLoader(appConfig.ConfigFile).Load()
	if err != nil {
		return err
	}
	slog.Info("Relay configuration loaded", "path", appConfig.ConfigFile,
		"feeds", len(relayConfig.Feeds), "destinations", len(relayConfig.Destinations))

	seenStore, closeStore, err := openStore(context.Background(), appConfig)
	if err != nil {
		return err
	}
	defer closeStore()

	// Feed requests carry per-source deadlines; sends get a fixed client timeout.
	fetchClient := &http.Client{}
	sendClient := &http.Client{Timeout: 30 * time.Second}

	destinations, closeDestinations, err := buildDestinations(relayConfig, appConfig, sendClient)
	if err != nil {
		return err
	}
	defer closeDestinations()

	registry, err := delivery.NewRegistry(destinations...)
	if err != nil {
		return err
	}

	queue := delivery.NewQueue()
	worker := delivery.NewWorker(queue, registry, delivery.WorkerOptions{
		SendInterval: appConfig.SendInterval,
		MaxRetries:   appConfig.MaxRetries,
		DrainTimeout: appConfig.DrainTimeout,
	})

	fetcher := feed.NewFetcher(fetchClient, feed.NewParser(), feed.NewContentExtractor(), appConfig.UserAgent)
	feedPoller := poller.New(fetcher, seenStore, queue,
		buildSources(relayConfig, appConfig.FetchTimeout), buildProfiles(relayConfig),
		poller.Options{Interval: appConfig.PollInterval, SeenLimit: appConfig.SeenLimit})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return worker.Run(gctx)
	})
	g.Go(func() error {
		return feedPoller.Run(gctx)
	})

	if appConfig.StatusServerEnabled() {
		handler := api.NewHandler(feedPoller, worker, relayConfig.FeedURLs(), describeDestinations(relayConfig), appConfig.Version)
		httpServer := &http.Server{
			Addr:         ":" + appConfig.Port,
			Handler:      api.NewServer(handler),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		}

		g.Go(func() error {
			slog.Info("Starting status server", "port", appConfig.Port)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Warn("Status server shutdown error", "error", err)
			}
			slog.Info("Status server stopped")
			return nil
		})
	}

	slog.Info("RSS Relay started", "poll_interval", appConfig.PollInterval.String(), "send_interval", appConfig.SendInterval.String())

	err = g.Wait()

	stats := worker.Stats()
	slog.Info("RSS Relay shutdown complete",
		"delivered", stats.Delivered, "failed", stats.Failed, "undelivered", stats.Undelivered)

	return err
}
