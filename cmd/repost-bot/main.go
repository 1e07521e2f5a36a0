package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Temm4ancki/VK-to-TG-post/internal/app"
	"github.com/Temm4ancki/VK-to-TG-post/internal/ledger"
	"github.com/Temm4ancki/VK-to-TG-post/internal/platform/config"
	"github.com/Temm4ancki/VK-to-TG-post/internal/platform/observability"
	"github.com/Temm4ancki/VK-to-TG-post/internal/telegram"
	"github.com/Temm4ancki/VK-to-TG-post/internal/vk"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, pinger, err := newStore(ctx, cfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open ledger store")
	}

	if closer, ok := store.(interface{ Close() }); ok {
		defer closer.Close()
	}

	// A ledger that cannot be loaded intact means dedup guarantees are gone,
	// so refuse to start rather than risk reposting the whole wall.
	led, err := ledger.Open(ctx, store)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load ledger")
	}

	logger.Info().Int("entries", led.Len()).Msg("ledger loaded")

	feed := vk.New(vk.Config{
		Token:      cfg.VKToken,
		APIVersion: cfg.VKAPIVersion,
		Timeout:    cfg.RequestTimeout,
		RateRPS:    cfg.VKRateRPS,
	}, &logger)

	sender, err := telegram.New(telegram.Config{
		Token:   cfg.BotToken,
		ChatID:  cfg.TargetChatID,
		RateRPS: cfg.TGRateRPS,
		Timeout: cfg.RequestTimeout,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create telegram sender")
	}

	health := observability.NewServer(pinger, cfg.HealthPort, &logger)

	go func() {
		if err := health.Start(ctx); err != nil {
			logger.Error().Err(err).Msg("health server error")
		}
	}()

	application := app.New(cfg, led, feed, sender, &logger)

	if err := application.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info().Msg("application stopped")
			return
		}

		logger.Fatal().Err(err).Msg("application error")
	}
}

// newStore picks the ledger backend: postgres when a DSN is configured,
// otherwise the local JSON file.
func newStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (ledger.Store, observability.Pinger, error) {
	if cfg.PostgresDSN != "" {
		pg, err := ledger.NewPGStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}

		logger.Info().Msg("using postgres ledger store")

		return pg, pg, nil
	}

	logger.Info().Str("path", cfg.LedgerPath).Msg("using file ledger store")

	return ledger.NewFileStore(cfg.LedgerPath), nil, nil
}

func newLogger(appEnv string) zerolog.Logger {
	if appEnv == "local" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
