package db

import "context"

const getPlayerIDByName = `SELECT id FROM players WHERE name = ?`

func (q *Queries) GetPlayerIDByName(ctx context.Context, name string) (int64, error) {
	var id int64
	err := q.queryRow(ctx, getPlayerIDByName, name).Scan(&id)
	return id, err
}

const insertPlayerIfAbsent = `INSERT INTO players (name) VALUES (?) ON CONFLICT (name) DO NOTHING`

func (q *Queries) InsertPlayerIfAbsent(ctx context.Context, name string) error {
	_, err := q.exec(ctx, insertPlayerIfAbsent, name)
	return err
}

const countPlayers = `SELECT COUNT(*) FROM players`

func (q *Queries) CountPlayers(ctx context.Context) (int64, error) {
	var count int64
	err := q.queryRow(ctx, countPlayers).Scan(&count)
	return count, err
}
