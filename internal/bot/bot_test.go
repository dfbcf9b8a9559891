package bot

import (
	"codenames-stats/internal/api"
	"codenames-stats/internal/config"
	"codenames-stats/internal/database"
	"codenames-stats/internal/db"
	"codenames-stats/internal/domain"
	"codenames-stats/internal/repository"
	"codenames-stats/internal/service"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testChatID int64 = 4242

type fakeMessenger struct {
	mu        sync.Mutex
	sent      []tgbotapi.Chattable
	requests  []tgbotapi.Chattable
	nextID    int
	failEdits bool
	fileBase  string
	updates   chan tgbotapi.Update
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{nextID: 100, fileBase: "https://files.example/", updates: make(chan tgbotapi.Update)}
}

func (f *fakeMessenger) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	if _, ok := c.(tgbotapi.EditMessageTextConfig); ok && f.failEdits {
		return tgbotapi.Message{}, errors.New("Bad Request: message to edit not found")
	}
	f.nextID++
	return tgbotapi.Message{MessageID: f.nextID}, nil
}

func (f *fakeMessenger) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeMessenger) GetFileDirectURL(fileID string) (string, error) {
	return f.fileBase + fileID, nil
}

func (f *fakeMessenger) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeMessenger) StopReceivingUpdates() {}

func (f *fakeMessenger) messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.MessageConfig
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeMessenger) edits() []tgbotapi.EditMessageTextConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.EditMessageTextConfig
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.EditMessageTextConfig); ok {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeMessenger) pins() []tgbotapi.PinChatMessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.PinChatMessageConfig
	for _, c := range f.requests {
		if p, ok := c.(tgbotapi.PinChatMessageConfig); ok {
			out = append(out, p)
		}
	}
	return out
}

type fakeExtractor struct {
	payload   domain.GamePayload
	err       error
	mediaType string
}

func (e *fakeExtractor) Download(ctx context.Context, url string) ([]byte, string, error) {
	return []byte(url), "application/octet-stream", nil
}

func (e *fakeExtractor) ExtractGame(ctx context.Context, image []byte, mediaType string) (domain.GamePayload, error) {
	e.mediaType = mediaType
	return e.payload, e.err
}

type testBot struct {
	*Bot
	api    *fakeMessenger
	vision *fakeExtractor
	games  *service.GameService
	stats  *service.StatsService
}

func newTestBot(t *testing.T) *testBot {
	t.Helper()

	cfg := &config.Config{DBDriver: "sqlite3", DBPath: filepath.Join(t.TempDir(), "codenames.db")}
	logger := zerolog.Nop()

	sqlDB, err := database.New(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	queries := db.New(sqlDB, db.SQLite)
	players := repository.NewPlayerRepository(logger)
	index := repository.NewParticipationIndex(players, logger)
	ledger := repository.NewCombinationLedger(logger)
	games := service.NewGameService(repository.NewGameRepository(sqlDB, queries, index, ledger, logger), logger)
	stats := service.NewStatsService(repository.NewStatsRepository(queries, logger), logger)

	fake := newFakeMessenger()
	vision := &fakeExtractor{payload: domain.GamePayload{
		BlueTeam: domain.TeamRoster{Operatives: []string{"Felix", "Julia"}, Spymasters: []string{"Diana"}},
		RedTeam:  domain.TeamRoster{Operatives: []string{"Nabi"}, Spymasters: []string{"Omar"}},
		Winner:   domain.TeamRed,
	}}

	return &testBot{
		Bot:    newBot(fake, testChatID, games, stats, vision, 1, logger),
		api:    fake,
		vision: vision,
		games:  games,
		stats:  stats,
	}
}

func photoMessage(chatID int64) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 7,
		Chat:      &tgbotapi.Chat{ID: chatID},
		Photo:     []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "large"}},
	}
}

func commandMessage(text string, length int) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 8,
		Chat:      &tgbotapi.Chat{ID: testChatID},
		Text:      text,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
	}
}

func TestBot_PhotoRecordsGameAndPinsStats(t *testing.T) {
	b := newTestBot(t)
	ctx := context.Background()

	b.handleUpdate(ctx, tgbotapi.Update{Message: photoMessage(testChatID)})

	total, err := b.stats.TotalGames(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "image/jpeg", b.vision.mediaType, "non-image content types fall back to jpeg")

	msgs := b.api.messages()
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0].Text, "Game #1 Recorded")
	assert.Contains(t, msgs[0].Text, "Winner: Red Team")
	assert.Equal(t, 7, msgs[0].ReplyToMessageID)
	assert.Contains(t, msgs[1].Text, "Total games played: 1")

	pins := b.api.pins()
	require.Len(t, pins, 1)
	assert.Equal(t, b.statsMsg.MessageID(), pins[0].MessageID)

	b.handleUpdate(ctx, tgbotapi.Update{Message: photoMessage(testChatID)})

	edits := b.api.edits()
	require.Len(t, edits, 1, "second refresh edits the pinned message")
	assert.Equal(t, pins[0].MessageID, edits[0].MessageID)
	assert.Contains(t, edits[0].Text, "Total games played: 2")
	assert.Len(t, b.api.pins(), 1)
}

func TestBot_IgnoresOtherChats(t *testing.T) {
	b := newTestBot(t)

	b.handleUpdate(context.Background(), tgbotapi.Update{Message: photoMessage(1)})
	b.handleUpdate(context.Background(), tgbotapi.Update{})

	assert.Empty(t, b.api.messages())
	total, err := b.stats.TotalGames(context.Background())
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestBot_ExtractionFailureIsReported(t *testing.T) {
	b := newTestBot(t)
	b.vision.err = errors.New("model unavailable")

	b.handleUpdate(context.Background(), tgbotapi.Update{Message: photoMessage(testChatID)})

	msgs := b.api.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Text, "Error processing game")
	assert.Contains(t, msgs[0].Text, "model unavailable")
	assert.Empty(t, b.api.pins())
}

func TestBot_InvalidExtractedGameIsRejected(t *testing.T) {
	b := newTestBot(t)
	b.vision.payload.Winner = "Nobody"

	b.handleUpdate(context.Background(), tgbotapi.Update{Message: photoMessage(testChatID)})

	msgs := b.api.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Text, "Error processing game")
}

func TestBot_ExtractedGameWithoutRostersIsRejected(t *testing.T) {
	b := newTestBot(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write([]byte("jpeg-bytes"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": `{"winner":"Blue"}`}},
		})
	}))
	defer srv.Close()

	b.api.fileBase = srv.URL + "/files/"
	b.Bot.vision = api.NewVisionClient(&config.Config{
		AnthropicAPIKey:  "test-key",
		AnthropicBaseURL: srv.URL,
		AnthropicModel:   "test-model",
	}, zerolog.Nop())

	b.handleUpdate(context.Background(), tgbotapi.Update{Message: photoMessage(testChatID)})

	msgs := b.api.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Text, "Error processing game")
	assert.Contains(t, msgs[0].Text, "blue_team is required")
	assert.Empty(t, b.api.pins())

	total, err := b.stats.TotalGames(context.Background())
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestBot_DeleteCommand(t *testing.T) {
	b := newTestBot(t)
	ctx := context.Background()

	id, err := b.games.Create(ctx, b.vision.payload)
	require.NoError(t, err)
	require.Equal(t, int64(1), id)

	b.handleUpdate(ctx, tgbotapi.Update{Message: commandMessage("/delete 1", 7)})
	b.handleUpdate(ctx, tgbotapi.Update{Message: commandMessage("/delete 1", 7)})
	b.handleUpdate(ctx, tgbotapi.Update{Message: commandMessage("/delete abc", 7)})

	msgs := b.api.messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, "🗑️ Game #1 deleted", msgs[0].Text)
	assert.Contains(t, msgs[1].Text, "Total games played: 0")
	assert.Equal(t, "Game #1 not found", msgs[2].Text)
	assert.Equal(t, "Usage: /delete <game id>", msgs[3].Text)
}

func TestBot_StatsCommand(t *testing.T) {
	b := newTestBot(t)

	b.handleUpdate(context.Background(), tgbotapi.Update{Message: commandMessage("/stats", 6)})

	msgs := b.api.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Text, "Codenames Statistics")
	assert.Len(t, b.api.pins(), 1)
}

func TestBot_StartStop(t *testing.T) {
	b := newTestBot(t)

	b.Start()
	b.api.updates <- tgbotapi.Update{Message: commandMessage("/help", 5)}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, b.Stop(ctx))

	msgs := b.api.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, helpText, msgs[0].Text)
}
