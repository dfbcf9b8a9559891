package repository

import (
	"codenames-stats/internal/db"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// PlayerRepository maps player names to stable ids. It only ever runs on the
// queries of the transaction that needs the id, so a new player becomes
// visible together with the participation rows that reference it.
type PlayerRepository struct {
	logger zerolog.Logger
}

func NewPlayerRepository(logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{logger: logger}
}

func (r *PlayerRepository) Resolve(ctx context.Context, q *db.Queries, name string) (int64, error) {
	id, err := q.GetPlayerIDByName(ctx, name)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to look up player %q: %w", name, err)
	}

	if err := q.InsertPlayerIfAbsent(ctx, name); err != nil {
		return 0, fmt.Errorf("failed to insert player %q: %w", name, err)
	}

	id, err = q.GetPlayerIDByName(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("failed to read back player %q: %w", name, err)
	}

	r.logger.Debug().Str("player", name).Int64("player_id", id).Msg("player registered")
	return id, nil
}
