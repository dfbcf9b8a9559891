package bot

import (
	"codenames-stats/internal/api"
	"codenames-stats/internal/config"
	"codenames-stats/internal/constants"
	"codenames-stats/internal/domain"
	"codenames-stats/internal/service"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// messenger is the part of *tgbotapi.BotAPI the bot uses.
type messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type extractor interface {
	Download(ctx context.Context, url string) ([]byte, string, error)
	ExtractGame(ctx context.Context, image []byte, mediaType string) (domain.GamePayload, error)
}

const helpText = `Send a screenshot of a finished Codenames game and I will record it.

/stats - refresh the pinned stats message
/delete <id> - delete a recorded game`

// Bot records games from screenshots posted in one chat and keeps a pinned
// stats message up to date.
type Bot struct {
	api      messenger
	chatID   int64
	games    *service.GameService
	stats    *service.StatsService
	vision   extractor
	minGames int
	statsMsg *StatsMessage
	logger   zerolog.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewBot returns nil when no Telegram token is configured.
func NewBot(cfg *config.Config, games *service.GameService, stats *service.StatsService, vision *api.VisionClient, logger zerolog.Logger) (*Bot, error) {
	if cfg.TelegramToken == "" {
		logger.Info().Msg("TELEGRAM_TOKEN not set, chat bot disabled")
		return nil, nil
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}
	logger.Info().Str("username", botAPI.Self.UserName).Int64("chat_id", cfg.TelegramChatID).Msg("telegram bot authorized")

	return newBot(botAPI, cfg.TelegramChatID, games, stats, vision, cfg.StatsMinGames, logger), nil
}

func newBot(m messenger, chatID int64, games *service.GameService, stats *service.StatsService, vision extractor, minGames int, logger zerolog.Logger) *Bot {
	logger = logger.With().Str("component", "bot").Logger()
	return &Bot{
		api:      m,
		chatID:   chatID,
		games:    games,
		stats:    stats,
		vision:   vision,
		minGames: minGames,
		statsMsg: NewStatsMessage(chatID, logger),
		logger:   logger,
	}
}

// Start begins polling for updates in the background.
func (b *Bot) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.done = make(chan struct{})

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	go func() {
		defer close(b.done)
		b.run(ctx, updates)
	}()
	b.logger.Info().Msg("bot started")
}

func (b *Bot) Stop(ctx context.Context) error {
	if b.cancel == nil {
		return nil
	}
	b.cancel()
	b.api.StopReceivingUpdates()

	select {
	case <-b.done:
		b.logger.Info().Msg("bot stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bot) run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || msg.Chat.ID != b.chatID {
		return
	}

	switch {
	case len(msg.Photo) > 0:
		b.handlePhoto(ctx, msg)
	case msg.IsCommand():
		b.handleCommand(ctx, msg)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "stats":
		if err := b.RefreshStats(ctx); err != nil {
			b.reply(msg, fmt.Sprintf("❌ Error fetching stats: %v", err))
		}
	case "delete":
		id, err := strconv.ParseInt(strings.TrimSpace(msg.CommandArguments()), 10, 64)
		if err != nil {
			b.reply(msg, "Usage: /delete <game id>")
			return
		}
		if err := b.games.Delete(ctx, id); err != nil {
			if errors.Is(err, domain.ErrGameNotFound) {
				b.reply(msg, fmt.Sprintf("Game #%d not found", id))
				return
			}
			b.reply(msg, fmt.Sprintf("❌ Error deleting game: %v", err))
			return
		}
		b.reply(msg, fmt.Sprintf("🗑️ Game #%d deleted", id))
		b.refreshQuietly(ctx)
	case "start", "help":
		b.reply(msg, helpText)
	}
}

func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	photo := msg.Photo[len(msg.Photo)-1]
	logger := b.logger.With().Int("message_id", msg.MessageID).Str("file_id", photo.FileID).Logger()
	logger.Info().Msg("screenshot received")

	id, payload, err := b.recordScreenshot(ctx, photo.FileID)
	if err != nil {
		logger.Error().Err(err).Msg("failed to record screenshot")
		b.reply(msg, fmt.Sprintf("❌ Error processing game: %v", err))
		return
	}

	b.reply(msg, FormatGame(id, payload))
	b.refreshQuietly(ctx)
}

func (b *Bot) recordScreenshot(ctx context.Context, fileID string) (int64, domain.GamePayload, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return 0, domain.GamePayload{}, fmt.Errorf("failed to resolve photo: %w", err)
	}

	image, mediaType, err := b.vision.Download(ctx, url)
	if err != nil {
		return 0, domain.GamePayload{}, err
	}
	if !strings.HasPrefix(mediaType, "image/") {
		mediaType = "image/jpeg"
	}

	payload, err := b.vision.ExtractGame(ctx, image, mediaType)
	if err != nil {
		return 0, domain.GamePayload{}, err
	}

	id, err := b.games.Create(ctx, payload)
	if err != nil {
		return 0, domain.GamePayload{}, err
	}
	return id, payload, nil
}

// RefreshStats re-renders the stats overview into the pinned message.
func (b *Bot) RefreshStats(ctx context.Context) error {
	overview, err := b.stats.Overview(ctx, b.minGames)
	if err != nil {
		return err
	}
	return b.statsMsg.Publish(b.api, FormatStats(overview, b.minGames))
}

func (b *Bot) refreshQuietly(ctx context.Context) {
	if err := b.RefreshStats(ctx); err != nil {
		b.logger.Error().Err(err).Msg("failed to refresh stats message")
	}
}

func (b *Bot) reply(to *tgbotapi.Message, text string) {
	msg := tgbotapi.NewMessage(b.chatID, text)
	msg.ReplyToMessageID = to.MessageID
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error().Err(err).Msg("failed to send reply")
	}
}
