package db

import "context"

type InsertParticipantParams struct {
	ID       string
	GameID   int64
	PlayerID int64
	Team     string
	Role     string
	Won      bool
}

const insertParticipant = `INSERT INTO game_participants (id, game_id, player_id, team, role, won) VALUES (?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertParticipant(ctx context.Context, arg InsertParticipantParams) error {
	_, err := q.exec(ctx, insertParticipant, arg.ID, arg.GameID, arg.PlayerID, arg.Team, arg.Role, arg.Won)
	return err
}

const deleteParticipantsByGame = `DELETE FROM game_participants WHERE game_id = ?`

func (q *Queries) DeleteParticipantsByGame(ctx context.Context, gameID int64) error {
	_, err := q.exec(ctx, deleteParticipantsByGame, gameID)
	return err
}

type ParticipantRow struct {
	ID       string
	GameID   int64
	PlayerID int64
	Name     string
	Team     string
	Role     string
	Won      bool
}

const listParticipants = `
SELECT gp.id, gp.game_id, gp.player_id, p.name, gp.team, gp.role, gp.won
FROM game_participants gp
JOIN players p ON p.id = gp.player_id`

const listParticipantsByGame = listParticipants + `
WHERE gp.game_id = ?
ORDER BY gp.team, gp.role, p.name`

func (q *Queries) ListParticipantsByGame(ctx context.Context, gameID int64) ([]ParticipantRow, error) {
	return q.scanParticipants(ctx, listParticipantsByGame, gameID)
}

const listAllParticipants = listParticipants + `
ORDER BY gp.game_id, gp.team, gp.role, p.name`

// ListAllParticipants returns every participation row with its player name, grouped by game and team.
func (q *Queries) ListAllParticipants(ctx context.Context) ([]ParticipantRow, error) {
	return q.scanParticipants(ctx, listAllParticipants)
}

func (q *Queries) scanParticipants(ctx context.Context, query string, args ...interface{}) ([]ParticipantRow, error) {
	rows, err := q.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ParticipantRow
	for rows.Next() {
		var p ParticipantRow
		if err := rows.Scan(&p.ID, &p.GameID, &p.PlayerID, &p.Name, &p.Team, &p.Role, &p.Won); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

type PlayerTotalsRow struct {
	Name  string
	Role  string
	Total int64
	Wins  int64
}

const playerTotals = `
SELECT p.name, COUNT(*) AS total_games, SUM(CASE WHEN gp.won THEN 1 ELSE 0 END) AS wins
FROM players p
JOIN game_participants gp ON gp.player_id = p.id
GROUP BY p.name`

func (q *Queries) PlayerTotals(ctx context.Context) ([]PlayerTotalsRow, error) {
	rows, err := q.query(ctx, playerTotals)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []PlayerTotalsRow
	for rows.Next() {
		var r PlayerTotalsRow
		if err := rows.Scan(&r.Name, &r.Total, &r.Wins); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const playerRoleTotals = `
SELECT p.name, gp.role, COUNT(*) AS total_games, SUM(CASE WHEN gp.won THEN 1 ELSE 0 END) AS wins
FROM players p
JOIN game_participants gp ON gp.player_id = p.id
GROUP BY p.name, gp.role`

func (q *Queries) PlayerRoleTotals(ctx context.Context) ([]PlayerTotalsRow, error) {
	rows, err := q.query(ctx, playerRoleTotals)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []PlayerTotalsRow
	for rows.Next() {
		var r PlayerTotalsRow
		if err := rows.Scan(&r.Name, &r.Role, &r.Total, &r.Wins); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}
