package db

import (
	"context"
	"time"
)

type GameRow struct {
	ID       int64
	PlayedAt time.Time
	Winner   string
	RawData  string
}

type InsertGameParams struct {
	PlayedAt time.Time
	Winner   string
	RawData  string
}

const insertGame = `INSERT INTO games (played_at, winner, raw_data) VALUES (?, ?, ?) RETURNING id`

func (q *Queries) InsertGame(ctx context.Context, arg InsertGameParams) (int64, error) {
	var id int64
	err := q.queryRow(ctx, insertGame, arg.PlayedAt, arg.Winner, arg.RawData).Scan(&id)
	return id, err
}

const getGame = `SELECT id, played_at, winner, raw_data FROM games WHERE id = ?`

func (q *Queries) GetGame(ctx context.Context, id int64) (GameRow, error) {
	var g GameRow
	err := q.queryRow(ctx, getGame, id).Scan(&g.ID, &g.PlayedAt, &g.Winner, &g.RawData)
	return g, err
}

// GetGameForUpdate reads a game inside a write transaction, locking its row where the dialect supports it.
func (q *Queries) GetGameForUpdate(ctx context.Context, id int64) (GameRow, error) {
	var g GameRow
	err := q.queryRow(ctx, getGame+q.lockClause(), id).Scan(&g.ID, &g.PlayedAt, &g.Winner, &g.RawData)
	return g, err
}

type UpdateGameParams struct {
	ID      int64
	Winner  string
	RawData string
}

const updateGame = `UPDATE games SET winner = ?, raw_data = ? WHERE id = ?`

func (q *Queries) UpdateGame(ctx context.Context, arg UpdateGameParams) (int64, error) {
	res, err := q.exec(ctx, updateGame, arg.Winner, arg.RawData, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteGame = `DELETE FROM games WHERE id = ?`

func (q *Queries) DeleteGame(ctx context.Context, id int64) (int64, error) {
	res, err := q.exec(ctx, deleteGame, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listGames = `SELECT id, played_at, winner, raw_data FROM games ORDER BY played_at DESC, id DESC`

func (q *Queries) ListGames(ctx context.Context) ([]GameRow, error) {
	rows, err := q.query(ctx, listGames)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []GameRow
	for rows.Next() {
		var g GameRow
		if err := rows.Scan(&g.ID, &g.PlayedAt, &g.Winner, &g.RawData); err != nil {
			return nil, err
		}
		items = append(items, g)
	}
	return items, rows.Err()
}

const countGames = `SELECT COUNT(*) FROM games`

func (q *Queries) CountGames(ctx context.Context) (int64, error) {
	var count int64
	err := q.queryRow(ctx, countGames).Scan(&count)
	return count, err
}
