package server

import (
	"bytes"
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
	"testing"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
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
	gameSvc := service.NewGameService(repository.NewGameRepository(sqlDB, queries, index, ledger, logger), logger)
	statsSvc := service.NewStatsService(repository.NewStatsRepository(queries, logger), logger)

	mux := http.NewServeMux()
	path, handler := NewStatsServer(gameSvc, statsSvc, logger).Handler()
	mux.Handle(path, handler)
	mux.Handle("/", SetupRoutes(gameSvc, statsSvc, sqlDB, logger))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

const sampleGame = `{
	"blue_team": {"operatives": ["A", "B"], "spymasters": ["C"]},
	"red_team": {"operatives": ["D", "E"], "spymasters": ["F"]},
	"winner": "Blue"
}`

func doJSON(t *testing.T, method, url, body string) (int, []byte) {
	t.Helper()

	req, err := http.NewRequest(method, url, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, buf.Bytes()
}

func TestREST_GameLifecycle(t *testing.T) {
	srv := newTestServer(t)

	status, body := doJSON(t, http.MethodPost, srv.URL+"/api/games", sampleGame)
	require.Equal(t, http.StatusOK, status, string(body))

	var created GameResponse
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, int64(1), created.GameID)
	assert.Equal(t, "Game #1 created successfully", created.Message)

	status, body = doJSON(t, http.MethodGet, srv.URL+"/api/games/1", "")
	require.Equal(t, http.StatusOK, status)
	var game Game
	require.NoError(t, json.Unmarshal(body, &game))
	assert.Equal(t, "Blue", game.Winner)
	assert.Equal(t, []string{"A", "B"}, game.RawData.BlueTeam.Operatives)
	assert.NotEmpty(t, game.Date)

	status, _ = doJSON(t, http.MethodPut, srv.URL+"/api/games/1", `{
		"blue_team": {"operatives": ["A", "B"], "spymasters": ["C"]},
		"red_team": {"operatives": ["D", "E"], "spymasters": ["F"]},
		"winner": "Red"
	}`)
	require.Equal(t, http.StatusOK, status)

	status, body = doJSON(t, http.MethodGet, srv.URL+"/api/stats/team-combinations?min_games=1", "")
	require.Equal(t, http.StatusOK, status)
	var combos []CombinationStat
	require.NoError(t, json.Unmarshal(body, &combos))
	require.NotEmpty(t, combos)
	for _, c := range combos {
		assert.Equal(t, 1, c.TotalGames)
	}
	assert.Equal(t, 100.0, combos[0].WinRate, "red side won after the update")

	status, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/games/1", "")
	require.Equal(t, http.StatusOK, status)

	status, body = doJSON(t, http.MethodDelete, srv.URL+"/api/games/1", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, string(body), `"detail"`)

	status, body = doJSON(t, http.MethodGet, srv.URL+"/api/stats/total-games", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"total_games":0}`, string(body))
}

func TestREST_StatusMapping(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"bad winner", http.MethodPost, "/api/games", `{"blue_team":{"operatives":["A"],"spymasters":[]},"red_team":{"operatives":["B"],"spymasters":[]},"winner":"Green"}`, http.StatusBadRequest},
		{"missing team", http.MethodPost, "/api/games", `{"blue_team":{"operatives":["A"],"spymasters":[]},"winner":"Blue"}`, http.StatusBadRequest},
		{"missing role list", http.MethodPost, "/api/games", `{"blue_team":{"operatives":["A"]},"red_team":{"operatives":["B"],"spymasters":[]},"winner":"Blue"}`, http.StatusBadRequest},
		{"malformed json", http.MethodPost, "/api/games", `{`, http.StatusBadRequest},
		{"non-numeric id", http.MethodGet, "/api/games/abc", "", http.StatusBadRequest},
		{"unknown game", http.MethodGet, "/api/games/42", "", http.StatusNotFound},
		{"replace unknown game", http.MethodPut, "/api/games/42", sampleGame, http.StatusNotFound},
		{"bad min_games", http.MethodGet, "/api/stats/team-combinations?min_games=x", "", http.StatusBadRequest},
		{"health", http.MethodGet, "/health", "", http.StatusOK},
		{"root", http.MethodGet, "/", "", http.StatusOK},
		{"empty player stats", http.MethodGet, "/api/stats/players", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doJSON(t, tt.method, srv.URL+tt.path, tt.body)
			assert.Equal(t, tt.want, status, string(body))
		})
	}
}

func TestREST_ListGamesNewestFirst(t *testing.T) {
	srv := newTestServer(t)

	for i := 0; i < 3; i++ {
		status, _ := doJSON(t, http.MethodPost, srv.URL+"/api/games", sampleGame)
		require.Equal(t, http.StatusOK, status)
	}

	status, body := doJSON(t, http.MethodGet, srv.URL+"/api/games", "")
	require.Equal(t, http.StatusOK, status)

	var games []Game
	require.NoError(t, json.Unmarshal(body, &games))
	require.Len(t, games, 3)
	assert.Equal(t, int64(3), games[0].ID)
	assert.Equal(t, int64(1), games[2].ID)
}

func TestConnect_Procedures(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	create := connect.NewClient[GameData, GameResponse](srv.Client(), srv.URL+CreateGameProcedure, WithJSONCodec())
	replace := connect.NewClient[ReplaceGameRequest, GameResponse](srv.Client(), srv.URL+ReplaceGameProcedure, WithJSONCodec())
	get := connect.NewClient[GameIDRequest, Game](srv.Client(), srv.URL+GetGameProcedure, WithJSONCodec())
	overview := connect.NewClient[MinGamesRequest, OverviewResponse](srv.Client(), srv.URL+GetOverviewProcedure, WithJSONCodec())
	total := connect.NewClient[Empty, TotalGamesResponse](srv.Client(), srv.URL+GetTotalGamesProcedure, WithJSONCodec())

	payload := domain.GamePayload{
		BlueTeam: domain.TeamRoster{Operatives: []string{"A", "B"}, Spymasters: []string{"C"}},
		RedTeam:  domain.TeamRoster{Operatives: []string{"D"}, Spymasters: []string{"E"}},
		Winner:   domain.TeamBlue,
	}

	resp, err := create.CallUnary(ctx, connect.NewRequest(NewGameData(payload)))
	require.NoError(t, err)
	id := resp.Msg.GameID

	_, err = create.CallUnary(ctx, connect.NewRequest(NewGameData(payload)))
	require.NoError(t, err)

	payload.Winner = domain.TeamRed
	_, err = replace.CallUnary(ctx, connect.NewRequest(&ReplaceGameRequest{GameID: id, Game: NewGameData(payload)}))
	require.NoError(t, err)

	game, err := get.CallUnary(ctx, connect.NewRequest(&GameIDRequest{GameID: id}))
	require.NoError(t, err)
	assert.Equal(t, "Red", game.Msg.Winner)

	totalResp, err := total.CallUnary(ctx, connect.NewRequest(&Empty{}))
	require.NoError(t, err)
	assert.Equal(t, 2, totalResp.Msg.TotalGames)

	minGames := 2
	ov, err := overview.CallUnary(ctx, connect.NewRequest(&MinGamesRequest{MinGames: &minGames}))
	require.NoError(t, err)
	assert.Equal(t, 2, ov.Msg.TotalGames)
	for _, c := range ov.Msg.Combinations {
		assert.Equal(t, 2, c.TotalGames)
		assert.Equal(t, 50.0, c.WinRate)
	}
}

func TestConnect_ErrorCodes(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	create := connect.NewClient[GameData, GameResponse](srv.Client(), srv.URL+CreateGameProcedure, WithJSONCodec())
	del := connect.NewClient[GameIDRequest, GameResponse](srv.Client(), srv.URL+DeleteGameProcedure, WithJSONCodec())

	winner := "Purple"
	_, err := create.CallUnary(ctx, connect.NewRequest(&GameData{Winner: &winner}))
	require.Error(t, err)
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	_, err = del.CallUnary(ctx, connect.NewRequest(&GameIDRequest{GameID: 99}))
	require.Error(t, err)
	var connectErr *connect.Error
	require.True(t, errors.As(err, &connectErr))
	assert.Equal(t, connect.CodeNotFound, connectErr.Code())
}

func TestConnectError_Mapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want connect.Code
	}{
		{"validation", domain.ErrInvalidWinner, connect.CodeInvalidArgument},
		{"payload", domain.ErrInvalidPayload, connect.CodeInvalidArgument},
		{"not found", &domain.GameError{Op: "get", GameID: 1, Err: domain.ErrGameNotFound}, connect.CodeNotFound},
		{"ledger", domain.ErrLedgerInconsistent, connect.CodeInternal},
		{"storage", errors.New("disk full"), connect.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, connectError(tt.err).Code())
		})
	}
}
