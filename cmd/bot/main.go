package main

import (
	"context"
	"log"
	"os/signal"
	"runtime"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gin-gonic/gin"

	"github.com/anime-shed/ratemylooks/internal/config"
	"github.com/anime-shed/ratemylooks/internal/container"
	"github.com/anime-shed/ratemylooks/internal/logger"
	"github.com/anime-shed/ratemylooks/internal/storage"
	"github.com/anime-shed/ratemylooks/internal/telegram"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.TelegramBotToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is not set")
	}
	gin.SetMode(gin.ReleaseMode)

	c, err := container.NewContainer(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Fatalf("Failed to connect to Telegram: %v", err)
	}
	logger.WithField("bot", api.Self.UserName).Info("Telegram bot authorized")

	bot := telegram.NewBot(api, c.AnalysisService(),
		storage.NewHTTPImageFetcher(cfg.ImageFetchTimeout, cfg.MaxUploadSize),
		telegram.Config{
			Workers:        runtime.NumCPU(),
			QueueSize:      runtime.NumCPU() * 4,
			RequestTimeout: cfg.RequestTimeout,
		})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := api.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		api.StopReceivingUpdates()
	}()

	bot.Run(ctx, updates)
	logger.Info("Telegram bot exited")
}
