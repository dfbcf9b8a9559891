package repository

import (
	"codenames-stats/internal/db"
	"codenames-stats/internal/domain"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// GameRepository is the durable record of every game and the owner of the
// write transaction: each create, replace and delete updates the game row,
// the participation index and the combination ledger atomically.
type GameRepository struct {
	queries *db.Queries
	db      *sql.DB
	index   *ParticipationIndex
	ledger  *CombinationLedger
	logger  zerolog.Logger
	now     func() time.Time
}

func NewGameRepository(sqlDB *sql.DB, queries *db.Queries, index *ParticipationIndex, ledger *CombinationLedger, logger zerolog.Logger) *GameRepository {
	return &GameRepository{
		queries: queries,
		db:      sqlDB,
		index:   index,
		ledger:  ledger,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (r *GameRepository) Create(ctx context.Context, payload domain.GamePayload) (int64, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, &domain.GameError{Op: "create", Err: fmt.Errorf("failed to encode payload: %w", err)}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, &domain.GameError{Op: "create", Err: fmt.Errorf("failed to begin transaction: %w", err)}
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	id, err := qtx.InsertGame(ctx, db.InsertGameParams{
		PlayedAt: r.now(),
		Winner:   string(payload.Winner),
		RawData:  string(raw),
	})
	if err != nil {
		return 0, &domain.GameError{Op: "create", Err: fmt.Errorf("failed to insert game: %w", err)}
	}

	if err := r.index.RebuildFor(ctx, qtx, id, payload); err != nil {
		return 0, &domain.GameError{Op: "create", GameID: id, Err: err}
	}
	if err := r.ledger.ApplyGame(ctx, qtx, payload); err != nil {
		return 0, &domain.GameError{Op: "create", GameID: id, Err: err}
	}

	if err := tx.Commit(); err != nil {
		return 0, &domain.GameError{Op: "create", GameID: id, Err: fmt.Errorf("failed to commit: %w", err)}
	}

	r.logger.Info().Int64("game_id", id).Str("winner", string(payload.Winner)).Msg("game created")
	return id, nil
}

// Replace overwrites a game's winner and rosters. The old contributions are
// reversed from the stored payload before the new payload is written and applied.
func (r *GameRepository) Replace(ctx context.Context, id int64, payload domain.GamePayload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return &domain.GameError{Op: "replace", GameID: id, Err: fmt.Errorf("failed to encode payload: %w", err)}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return &domain.GameError{Op: "replace", GameID: id, Err: fmt.Errorf("failed to begin transaction: %w", err)}
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	old, err := r.lockedGame(ctx, qtx, id)
	if err != nil {
		return &domain.GameError{Op: "replace", GameID: id, Err: err}
	}

	if err := r.ledger.ReverseGame(ctx, qtx, old.Payload); err != nil {
		return &domain.GameError{Op: "replace", GameID: id, Err: err}
	}

	if _, err := qtx.UpdateGame(ctx, db.UpdateGameParams{
		ID:      id,
		Winner:  string(payload.Winner),
		RawData: string(raw),
	}); err != nil {
		return &domain.GameError{Op: "replace", GameID: id, Err: fmt.Errorf("failed to update game: %w", err)}
	}

	if err := r.index.RebuildFor(ctx, qtx, id, payload); err != nil {
		return &domain.GameError{Op: "replace", GameID: id, Err: err}
	}
	if err := r.ledger.ApplyGame(ctx, qtx, payload); err != nil {
		return &domain.GameError{Op: "replace", GameID: id, Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &domain.GameError{Op: "replace", GameID: id, Err: fmt.Errorf("failed to commit: %w", err)}
	}

	r.logger.Info().
		Int64("game_id", id).
		Str("old_winner", string(old.Payload.Winner)).
		Str("winner", string(payload.Winner)).
		Msg("game replaced")
	return nil
}

func (r *GameRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return &domain.GameError{Op: "delete", GameID: id, Err: fmt.Errorf("failed to begin transaction: %w", err)}
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	old, err := r.lockedGame(ctx, qtx, id)
	if err != nil {
		return &domain.GameError{Op: "delete", GameID: id, Err: err}
	}

	if err := r.ledger.ReverseGame(ctx, qtx, old.Payload); err != nil {
		return &domain.GameError{Op: "delete", GameID: id, Err: err}
	}
	if err := r.index.DeleteFor(ctx, qtx, id); err != nil {
		return &domain.GameError{Op: "delete", GameID: id, Err: err}
	}
	if _, err := qtx.DeleteGame(ctx, id); err != nil {
		return &domain.GameError{Op: "delete", GameID: id, Err: fmt.Errorf("failed to delete game: %w", err)}
	}

	if err := tx.Commit(); err != nil {
		return &domain.GameError{Op: "delete", GameID: id, Err: fmt.Errorf("failed to commit: %w", err)}
	}

	r.logger.Info().Int64("game_id", id).Msg("game deleted")
	return nil
}

func (r *GameRepository) Get(ctx context.Context, id int64) (*domain.Game, error) {
	row, err := r.queries.GetGame(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.GameError{Op: "get", GameID: id, Err: domain.ErrGameNotFound}
	}
	if err != nil {
		return nil, &domain.GameError{Op: "get", GameID: id, Err: err}
	}

	game, err := toGame(row)
	if err != nil {
		return nil, &domain.GameError{Op: "get", GameID: id, Err: err}
	}
	return &game, nil
}

// ListAll returns every stored game, most recent first.
func (r *GameRepository) ListAll(ctx context.Context) ([]domain.Game, error) {
	rows, err := r.queries.ListGames(ctx)
	if err != nil {
		return nil, &domain.GameError{Op: "list", Err: err}
	}

	games := make([]domain.Game, len(rows))
	for i, row := range rows {
		g, err := toGame(row)
		if err != nil {
			return nil, &domain.GameError{Op: "list", GameID: row.ID, Err: err}
		}
		games[i] = g
	}
	return games, nil
}

func (r *GameRepository) Count(ctx context.Context) (int, error) {
	n, err := r.queries.CountGames(ctx)
	if err != nil {
		return 0, &domain.GameError{Op: "count", Err: err}
	}
	return int(n), nil
}

// LedgerDrift is a ledger entry whose counters differ from a replay of the stored games.
type LedgerDrift struct {
	PlayerNames string
	Expected    domain.CombinationEntry
	Actual      domain.CombinationEntry
}

// VerifyLedger replays every stored game inside one read transaction and
// compares the result with the stored ledger. Zeroed entries with no stored
// game behind them are not drift.
func (r *GameRepository) VerifyLedger(ctx context.Context) ([]LedgerDrift, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: r.queries.Dialect() == db.Postgres})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	rows, err := qtx.ListGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	games := make([]domain.Game, 0, len(rows))
	for _, row := range rows {
		g, err := toGame(row)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}

	stored, err := ledgerEntries(ctx, qtx)
	if err != nil {
		return nil, err
	}

	expected := Expected(games)
	var drift []LedgerDrift
	for _, actual := range stored {
		want := expected[actual.PlayerNames]
		want.PlayerNames = actual.PlayerNames
		delete(expected, actual.PlayerNames)
		if want != actual {
			drift = append(drift, LedgerDrift{PlayerNames: actual.PlayerNames, Expected: want, Actual: actual})
		}
	}
	for key, want := range expected {
		drift = append(drift, LedgerDrift{PlayerNames: key, Expected: want, Actual: domain.CombinationEntry{PlayerNames: key}})
	}

	if len(drift) > 0 {
		r.logger.Error().Int("entries", len(drift)).Msg("combination ledger drift detected")
	}
	return drift, nil
}

func (r *GameRepository) lockedGame(ctx context.Context, q *db.Queries, id int64) (domain.Game, error) {
	row, err := q.GetGameForUpdate(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Game{}, domain.ErrGameNotFound
	}
	if err != nil {
		return domain.Game{}, fmt.Errorf("failed to read game: %w", err)
	}
	return toGame(row)
}

func toGame(row db.GameRow) (domain.Game, error) {
	var payload domain.GamePayload
	if err := json.Unmarshal([]byte(row.RawData), &payload); err != nil {
		return domain.Game{}, fmt.Errorf("failed to decode stored payload of game %d: %w", row.ID, err)
	}
	return domain.Game{
		ID:       row.ID,
		PlayedAt: row.PlayedAt,
		Winner:   domain.Team(row.Winner),
		Payload:  payload,
	}, nil
}
