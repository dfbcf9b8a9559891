package bot

import (
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// StatsMessage remembers the one pinned stats message in the chat. The bot
// edits it in place and only posts (and pins) a new one when it has none or
// the edit fails.
type StatsMessage struct {
	mu        sync.Mutex
	chatID    int64
	messageID int
	logger    zerolog.Logger
}

func NewStatsMessage(chatID int64, logger zerolog.Logger) *StatsMessage {
	return &StatsMessage{chatID: chatID, logger: logger}
}

func (s *StatsMessage) MessageID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messageID
}

// Publish shows text in the stats message.
func (s *StatsMessage) Publish(api messenger, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.messageID != 0 {
		_, err := api.Send(tgbotapi.NewEditMessageText(s.chatID, s.messageID, text))
		if err == nil || notModified(err) {
			return nil
		}
		s.logger.Warn().Err(err).Int("message_id", s.messageID).Msg("stats message edit failed, posting a new one")
	}

	msg, err := api.Send(tgbotapi.NewMessage(s.chatID, text))
	if err != nil {
		return err
	}
	s.messageID = msg.MessageID

	pin := tgbotapi.PinChatMessageConfig{ChatID: s.chatID, MessageID: msg.MessageID, DisableNotification: true}
	if _, err := api.Request(pin); err != nil {
		s.logger.Warn().Err(err).Int("message_id", msg.MessageID).Msg("failed to pin stats message")
	}
	return nil
}

func notModified(err error) bool {
	return strings.Contains(err.Error(), "message is not modified")
}
