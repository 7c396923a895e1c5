// Package telegram adapts the analysis pipeline to a Telegram bot.
package telegram

import (
	"context"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	apperrors "github.com/anime-shed/ratemylooks/internal/errors"
	"github.com/anime-shed/ratemylooks/internal/formatter"
	"github.com/anime-shed/ratemylooks/internal/logger"
	"github.com/anime-shed/ratemylooks/internal/service"
	"github.com/anime-shed/ratemylooks/internal/storage"
	"github.com/anime-shed/ratemylooks/pkg/models"
)

const (
	usageText    = "Send me a clear, front-facing photo and I will rate it and suggest improvements."
	acceptedText = "📸 Got it, analyzing your photo..."
	busyText     = "I am busy with other photos right now. Please try again in a minute."
	failedPrefix = "Sorry, the analysis failed: "
)

// Messenger is the part of tgbotapi.BotAPI the bot needs
type Messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Config tunes the bot's concurrency and deadlines
type Config struct {
	Workers        int
	QueueSize      int
	RequestTimeout time.Duration
}

// Bot answers photo messages with an analysis summary
type Bot struct {
	api     Messenger
	svc     service.AnalysisService
	fetcher storage.ImageFetcher
	pool    *WorkerPool
	timeout time.Duration
}

// NewBot creates a bot and starts its workers
func NewBot(api Messenger, svc service.AnalysisService, fetcher storage.ImageFetcher, cfg Config) *Bot {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 2 * time.Minute
	}
	pool := NewWorkerPool(cfg.Workers, cfg.QueueSize)
	pool.Start()
	return &Bot{
		api:     api,
		svc:     svc,
		fetcher: fetcher,
		pool:    pool,
		timeout: cfg.RequestTimeout,
	}
}

// Run handles updates until ctx is done or the channel closes, then drains queued jobs
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	defer b.pool.Close()
	for {
		select {
		case <-ctx.Done():
			logger.Info("Telegram bot stopping")
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			b.HandleUpdate(ctx, upd)
		}
	}
}

// Close waits for in-flight analyses
func (b *Bot) Close() {
	b.pool.Close()
}

// HandleUpdate routes one update; analyses run on the worker pool
func (b *Bot) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		switch msg.Command() {
		case "start", "help":
			b.reply(chatID, msg.MessageID, usageText)
		default:
			b.reply(chatID, msg.MessageID, "Unknown command. "+usageText)
		}
		return
	}

	fileID, filename, ok := imageFile(msg)
	if !ok {
		b.reply(chatID, msg.MessageID, usageText)
		return
	}

	messageID := msg.MessageID
	accepted := b.pool.TrySubmit(func() {
		b.analyze(ctx, chatID, messageID, fileID, filename)
	})
	if !accepted {
		b.reply(chatID, messageID, busyText)
		return
	}
	b.reply(chatID, messageID, acceptedText)
}

func (b *Bot) analyze(ctx context.Context, chatID int64, messageID int, fileID, filename string) {
	// queued jobs still finish after shutdown starts
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.timeout)
	defer cancel()

	fields := logrus.Fields{"chat_id": chatID, "file_id": fileID}

	fileURL, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		logger.WithError(err).WithFields(fields).Error("Failed to resolve Telegram file")
		b.reply(chatID, messageID, failedPrefix+"the photo could not be downloaded.")
		return
	}

	img, err := b.fetcher.FetchImage(ctx, fileURL)
	if err != nil {
		logger.WithError(err).WithFields(fields).Error("Failed to download Telegram file")
		b.reply(chatID, messageID, failedPrefix+"the photo could not be downloaded.")
		return
	}
	img.Filename = filename
	if img.ContentType == "application/octet-stream" {
		img.ContentType = ""
	}

	result, err := b.svc.AnalyzeUpload(ctx, img, models.DefaultAnalysisOptions())
	if err != nil {
		msg := "unexpected error."
		if appErr, ok := apperrors.As(err); ok {
			msg = appErr.Message
		}
		b.reply(chatID, messageID, failedPrefix+msg)
		return
	}

	logger.WithFields(fields).WithField("analysis_id", result.AnalysisID).Info("Telegram analysis delivered")
	b.reply(chatID, messageID, formatter.PlainSummary(result))
}

func (b *Bot) reply(chatID int64, messageID int, text string) {
	out := tgbotapi.NewMessage(chatID, text)
	out.ReplyToMessageID = messageID
	if _, err := b.api.Send(out); err != nil {
		logger.WithError(err).WithField("chat_id", chatID).Warn("Failed to send Telegram message")
	}
}

// imageFile picks the largest photo size, or an image sent as a document
func imageFile(msg *tgbotapi.Message) (fileID, filename string, ok bool) {
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID, "photo.jpg", true
	}
	if doc := msg.Document; doc != nil && strings.HasPrefix(doc.MimeType, "image/") {
		name := doc.FileName
		if name == "" {
			name = "photo." + strings.TrimPrefix(doc.MimeType, "image/")
		}
		return doc.FileID, name, true
	}
	return "", "", false
}
