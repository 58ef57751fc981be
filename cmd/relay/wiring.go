package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/lysyi3m/rss-relay/app/api"
	"github.com/lysyi3m/rss-relay/app/cfg"
	"github.com/lysyi3m/rss-relay/app/config"
	"github.com/lysyi3m/rss-relay/app/database"
	"github.com/lysyi3m/rss-relay/app/delivery"
	"github.com/lysyi3m/rss-relay/app/feed"
	"github.com/lysyi3m/rss-relay/app/store"
)

func buildSources(relayConfig *config.RelayConfig, fetchTimeout time.Duration) []feed.Source {
	sources := make([]feed.Source, 0, len(relayConfig.Feeds))
	for _, f := range relayConfig.Feeds {
		sources = append(sources, feed.Source{
			URL:            f.URL,
			ExtractContent: f.ExtractContent,
			Timeout:        f.GetTimeout(fetchTimeout),
		})
	}
	return sources
}

func buildProfiles(relayConfig *config.RelayConfig) []feed.Profile {
	profiles := make([]feed.Profile, 0, len(relayConfig.Destinations))
	for _, d := range relayConfig.Destinations {
		profiles = append(profiles, feed.NewProfile(d.ID, d.Keywords, d.Format))
	}
	return profiles
}

func describeDestinations(relayConfig *config.RelayConfig) []api.DestinationInfo {
	infos := make([]api.DestinationInfo, 0, len(relayConfig.Destinations))
	for _, d := range relayConfig.Destinations {
		infos = append(infos, api.DestinationInfo{
			ID:        d.ID,
			Transport: d.Transport,
			Format:    d.Format,
			Keywords:  d.Keywords,
		})
	}
	return infos
}

// buildDestinations creates one transport per configured destination. The returned
// func releases shared transport resources.
func buildDestinations(relayConfig *config.RelayConfig, appConfig *cfg.Cfg, httpClient *http.Client) ([]delivery.Destination, func(), error) {
	cleanup := func() {}

	if relayConfig.HasTransport(config.TransportTelegram) && appConfig.TelegramToken == "" {
		return nil, cleanup, fmt.Errorf("TELEGRAM_TOKEN is required for telegram destinations")
	}
	if relayConfig.HasTransport(config.TransportKafka) && len(appConfig.KafkaBrokers) == 0 {
		return nil, cleanup, fmt.Errorf("KAFKA_BROKERS is required for kafka destinations")
	}

	var telegramClient *delivery.TelegramClient
	if relayConfig.HasTransport(config.TransportTelegram) {
		telegramClient = delivery.NewTelegramClient(httpClient, appConfig.TelegramAPIURL, appConfig.TelegramToken, appConfig.TelegramParseMode)
	}

	var automator delivery.Automator
	if relayConfig.HasTransport(config.TransportWhatsApp) {
		automator = delivery.NewChromeAutomator(appConfig.WhatsAppURL, appConfig.ChromeUserDataDir, appConfig.ChromeHeadless)
	}
	pacing := delivery.Pacing{WaitTime: appConfig.WhatsAppWait, CloseAfter: appConfig.WhatsAppCloseAfter}

	var kafkaWriter delivery.MessageWriter
	if relayConfig.HasTransport(config.TransportKafka) {
		writer := delivery.NewKafkaWriter(appConfig.KafkaBrokers)
		kafkaWriter = writer
		cleanup = func() {
			if err := writer.Close(); err != nil {
				slog.Warn("Failed to close kafka writer", "error", err)
			}
		}
	}

	return appendDestinations(relayConfig, appConfig, telegramClient, automator, pacing, kafkaWriter), cleanup, nil
}

func appendDestinations(relayConfig *config.RelayConfig, appConfig *cfg.Cfg, telegramClient *delivery.TelegramClient,
	automator delivery.Automator, pacing delivery.Pacing, kafkaWriter delivery.MessageWriter) []delivery.Destination {
	destinations := make([]delivery.Destination, 0, len(relayConfig.Destinations))

	for _, d := range relayConfig.Destinations {
		switch d.Transport {
		case config.TransportTelegram:
			destinations = append(destinations, delivery.NewTelegramDestination(telegramClient, d.ID, d.Format == config.FormatMarkdown))
		case config.TransportWhatsApp:
			destinations = append(destinations, delivery.NewWhatsAppDestination(d.ID, automator, pacing))
		case config.TransportKafka:
			topic := d.Topic
			if topic == "" {
				topic = appConfig.KafkaTopic
			}
			destinations = append(destinations, delivery.NewKafkaDestination(d.ID, topic, kafkaWriter))
		}
		slog.Debug("Destination configured", "destination", d.ID, "transport", d.Transport, "keywords", len(d.Keywords))
	}

	return destinations
}

// openStore returns the configured seen-link store and a func closing its resources.
func openStore(ctx context.Context, appConfig *cfg.Cfg) (store.Store, func(), error) {
	switch appConfig.Store {
	case cfg.StoreSQLite:
		return openSQLStore(ctx, appConfig)
	case cfg.StoreRedis:
		client, err := store.NewRedisClient(ctx, appConfig.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("Using Redis seen-link store", "addr", appConfig.RedisAddr, "key", appConfig.RedisKey)
		return store.NewRedisStore(client, appConfig.RedisKey), func() { client.Close() }, nil
	default:
		slog.Info("Using JSON seen-link store", "path", appConfig.StateFile)
		return store.NewFileStore(appConfig.StateFile), func() {}, nil
	}
}

func openSQLStore(ctx context.Context, appConfig *cfg.Cfg) (store.Store, func(), error) {

	db, err := database.Open(appConfig.DBPath)
	if err != nil {
		return nil, nil, err
	}

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	slog.Info("Using SQLite seen-link store", "path", appConfig.DBPath, "migration_version", version, "dirty", dirty)

	repo := database.NewSeenLinkRepository(db)
	if count, err := repo.Count(ctx); err == nil {
		slog.Debug("Seen links in database", "count", count)
	}

	return store.NewSQLStore(repo), func() { db.Close() }, nil
}
