package db

import "context"

type CombinationRow struct {
	PlayerNames string
	Wins        int64
	Losses      int64
}

const ensureCombination = `INSERT INTO team_combinations (player_names, wins, losses) VALUES (?, 0, 0) ON CONFLICT (player_names) DO NOTHING`

// EnsureCombination creates a zeroed ledger entry; existing counts are left untouched.
func (q *Queries) EnsureCombination(ctx context.Context, playerNames string) error {
	_, err := q.exec(ctx, ensureCombination, playerNames)
	return err
}

const (
	incrementCombinationWins   = `UPDATE team_combinations SET wins = wins + 1 WHERE player_names = ?`
	incrementCombinationLosses = `UPDATE team_combinations SET losses = losses + 1 WHERE player_names = ?`
	decrementCombinationWins   = `UPDATE team_combinations SET wins = wins - 1 WHERE player_names = ? AND wins > 0`
	decrementCombinationLosses = `UPDATE team_combinations SET losses = losses - 1 WHERE player_names = ? AND losses > 0`
)

// AdjustCombination moves wins (won) or losses (!won) by one in the given direction
// and reports how many rows changed. A decrement never takes a counter below zero.
func (q *Queries) AdjustCombination(ctx context.Context, playerNames string, won bool, increment bool) (int64, error) {
	var stmt string
	switch {
	case won && increment:
		stmt = incrementCombinationWins
	case !won && increment:
		stmt = incrementCombinationLosses
	case won:
		stmt = decrementCombinationWins
	default:
		stmt = decrementCombinationLosses
	}

	res, err := q.exec(ctx, stmt, playerNames)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listCombinations = `SELECT player_names, wins, losses FROM team_combinations ORDER BY player_names`

func (q *Queries) ListCombinations(ctx context.Context) ([]CombinationRow, error) {
	return q.scanCombinations(ctx, listCombinations)
}

const listCombinationsWithMinGames = `
SELECT player_names, wins, losses
FROM team_combinations
WHERE wins + losses >= ? AND wins + losses > 0`

func (q *Queries) ListCombinationsWithMinGames(ctx context.Context, minGames int64) ([]CombinationRow, error) {
	return q.scanCombinations(ctx, listCombinationsWithMinGames, minGames)
}

func (q *Queries) scanCombinations(ctx context.Context, query string, args ...interface{}) ([]CombinationRow, error) {
	rows, err := q.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []CombinationRow
	for rows.Next() {
		var c CombinationRow
		if err := rows.Scan(&c.PlayerNames, &c.Wins, &c.Losses); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}
