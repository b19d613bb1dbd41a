package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/JamesLuiz/House-me/config"
	"github.com/JamesLuiz/House-me/internal/bot"
	"github.com/JamesLuiz/House-me/internal/chatstate"
	"github.com/JamesLuiz/House-me/internal/listings"
	"github.com/JamesLuiz/House-me/internal/server"
	"github.com/JamesLuiz/House-me/internal/storage"
	"github.com/JamesLuiz/House-me/internal/webhook"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	config.LoadEnvFile()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogging(cfg)

	// Create context that cancels on SIGINT or SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	users, err := storage.Open(ctx, cfg.MongoURI, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open user store")
	}
	defer users.Close(context.Background())

	chats, closeChats, err := openChatState(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open chat state store")
	}
	defer closeChats()
	log.Info().Str("backend", chats.Backend()).Msg("chat state store ready")

	tg, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		if cfg.Mode != "webhook" {
			log.Fatal().Err(err).Msg("failed to initialize telegram bot")
		}
		// Keep serving the status pages so the failure is visible.
		log.Error().Err(err).Msg("failed to initialize telegram bot")
		runUnloaded(ctx, cfg, users, err)
		return
	}
	tg.Debug = false
	log.Info().Str("username", tg.Self.UserName).Msg("authorized on account")

	b := bot.NewBot(tg, users, chats, listings.NewClient(cfg.APIURL), bot.Options{
		WebAppURL:         cfg.WebAppURL,
		SupportURL:        cfg.SupportURL,
		AdminID:           cfg.AdminID,
		ReferralBonus:     cfg.ReferralBonus,
		SessionIdleTTL:    cfg.SessionTTL,
		RefreshDelay:      cfg.RefreshDelay,
		RefreshMaxRuntime: cfg.RefreshMaxRuntime,
	})

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.Run(ctx)
		return nil
	})

	switch cfg.Mode {
	case "polling":
		g.Go(func() error {
			return runPolling(ctx, tg, b)
		})
	default:
		g.Go(func() error {
			return runWebhook(ctx, cfg, tg, b, users)
		})
	}

	err = g.Wait()
	b.Shutdown()
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("shutdown with error")
	} else {
		log.Info().Msg("shutdown complete")
	}
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if strings.EqualFold(cfg.LogFormat, "console") {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func openChatState(cfg *config.Config) (chatstate.Store, func(), error) {
	if cfg.RedisURL != "" {
		store, client, err := chatstate.NewRedisStore(cfg.RedisURL, cfg.SessionTTL)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = client.Close() }, nil
	}

	store, err := chatstate.NewMemoryStore(cfg.SessionCapacity, cfg.SessionTTL)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}

func configPresence(cfg *config.Config) webhook.ConfigPresence {
	return webhook.ConfigPresence{
		BotToken: cfg.BotToken != "",
		MongoURI: cfg.MongoURI != "",
		APIURL:   cfg.APIURL != "",
	}
}

func runWebhook(ctx context.Context, cfg *config.Config, tg *tgbotapi.BotAPI, b *bot.Bot, users storage.UserStore) error {
	if cfg.WebhookURL != "" {
		if err := registerWebhook(tg, cfg.WebhookURL, cfg.WebhookSecret); err != nil {
			return err
		}
	}

	hook := webhook.NewHandler(b, webhook.Options{
		Config: configPresence(cfg),
		Secret: cfg.WebhookSecret,
	})
	srv := server.New(hook, users, server.Options{Addr: cfg.Addr(), BotToken: cfg.BotToken})
	return srv.Run(ctx)
}

func runUnloaded(ctx context.Context, cfg *config.Config, users storage.UserStore, loadErr error) {
	hook := webhook.NewHandler(nil, webhook.Options{
		Config:  configPresence(cfg),
		LoadErr: loadErr,
	})
	srv := server.New(hook, users, server.Options{Addr: cfg.Addr(), BotToken: cfg.BotToken})
	if err := srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("http server stopped")
	}
}

// registerWebhook points Telegram at url. The library's webhook config has no
// secret token field, so the call is made with raw params.
func registerWebhook(tg *tgbotapi.BotAPI, url, secret string) error {
	params := tgbotapi.Params{"url": url}
	if secret != "" {
		params["secret_token"] = secret
	}
	if _, err := tg.MakeRequest("setWebhook", params); err != nil {
		return err
	}
	log.Info().Str("url", url).Bool("secret", secret != "").Msg("webhook registered")
	return nil
}

func runPolling(ctx context.Context, tg *tgbotapi.BotAPI, b *bot.Bot) error {
	if err := b.Init(ctx); err != nil {
		return err
	}
	if _, err := tg.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		log.Warn().Err(err).Msg("failed to delete webhook before polling")
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := tg.GetUpdatesChan(updateConfig)

	err := pollUpdates(ctx, updates, b.HandleUpdate)
	if ctx.Err() != nil {
		tg.StopReceivingUpdates()
	}
	return err
}

// errUpdatesClosed is returned when polling stops without being cancelled,
// so the rest of the process group shuts down with it.
var errUpdatesClosed = errors.New("telegram updates channel closed")

func pollUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel, handle func(context.Context, tgbotapi.Update)) error {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("stopping bot update loop")
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				log.Warn().Msg("updates channel closed")
				return errUpdatesClosed
			}
			handle(ctx, update)
		}
	}
}
