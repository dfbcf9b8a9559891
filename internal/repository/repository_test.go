package repository

import (
	"codenames-stats/internal/config"
	"codenames-stats/internal/database"
	"codenames-stats/internal/db"
	"codenames-stats/internal/domain"
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type testStore struct {
	sqlDB   *sql.DB
	queries *db.Queries
	games   *GameRepository
	stats   *StatsRepository
	players *PlayerRepository
}

func newTestStore(t *testing.T) *testStore {
	t.Helper()

	cfg := &config.Config{DBDriver: "sqlite3", DBPath: filepath.Join(t.TempDir(), "codenames.db")}
	logger := zerolog.Nop()

	sqlDB, err := database.New(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	queries := db.New(sqlDB, db.SQLite)
	players := NewPlayerRepository(logger)
	index := NewParticipationIndex(players, logger)
	ledger := NewCombinationLedger(logger)

	games := NewGameRepository(sqlDB, queries, index, ledger, logger)
	clock := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	games.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	return &testStore{
		sqlDB:   sqlDB,
		queries: queries,
		games:   games,
		stats:   NewStatsRepository(queries, logger),
		players: players,
	}
}

func payload(winner domain.Team, blueOps, blueSpy, redOps, redSpy []string) domain.GamePayload {
	return domain.GamePayload{
		BlueTeam: domain.TeamRoster{Operatives: blueOps, Spymasters: blueSpy},
		RedTeam:  domain.TeamRoster{Operatives: redOps, Spymasters: redSpy},
		Winner:   winner,
	}
}

func names(n ...string) []string { return n }

// ledger returns the stored ledger keyed by player names.
func (s *testStore) ledger(t *testing.T) map[string]domain.CombinationEntry {
	t.Helper()
	entries, err := ledgerEntries(context.Background(), s.queries)
	require.NoError(t, err)

	out := make(map[string]domain.CombinationEntry, len(entries))
	for _, e := range entries {
		out[e.PlayerNames] = e
	}
	return out
}

// requireExactLedger asserts the ledger equals a full replay of the stored games.
func (s *testStore) requireExactLedger(t *testing.T) {
	t.Helper()
	drift, err := s.games.VerifyLedger(context.Background())
	require.NoError(t, err)
	require.Empty(t, drift)
}
