package repository

import (
	"codenames-stats/internal/combination"
	"codenames-stats/internal/db"
	"codenames-stats/internal/domain"
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
)

// CombinationLedger holds cumulative win/loss counters per player set.
// Apply and Reverse are exact inverses and must always be used in pairs
// inside the transaction that writes or removes the game they account for.
type CombinationLedger struct {
	logger zerolog.Logger
}

func NewCombinationLedger(logger zerolog.Logger) *CombinationLedger {
	return &CombinationLedger{logger: logger}
}

// ledgerStep is one counter move: the key and which counter it touches.
type ledgerStep struct {
	key string
	won bool
}

// gameSteps lists the keys of both teams sorted by key, so concurrent writers
// always lock ledger rows in the same order.
func gameSteps(payload domain.GamePayload) []ledgerStep {
	var steps []ledgerStep
	for _, team := range domain.Teams {
		won := payload.Won(team)
		for _, key := range combination.Generate(payload.Roster(team).Players()) {
			steps = append(steps, ledgerStep{key: key, won: won})
		}
	}
	sort.Slice(steps, func(i, j int) bool {
		if steps[i].key != steps[j].key {
			return steps[i].key < steps[j].key
		}
		return !steps[i].won && steps[j].won
	})
	return steps
}

// ApplyGame credits every combination of both teams with the game's outcome.
func (l *CombinationLedger) ApplyGame(ctx context.Context, q *db.Queries, payload domain.GamePayload) error {
	steps := gameSteps(payload)
	for _, step := range steps {
		if err := q.EnsureCombination(ctx, step.key); err != nil {
			return fmt.Errorf("failed to create combination %q: %w", step.key, err)
		}
		n, err := q.AdjustCombination(ctx, step.key, step.won, true)
		if err != nil {
			return fmt.Errorf("failed to apply combination %q: %w", step.key, err)
		}
		if n != 1 {
			return fmt.Errorf("%w: apply to %q changed %d rows", domain.ErrLedgerInconsistent, step.key, n)
		}
	}

	l.logger.Debug().Int("keys", len(steps)).Msg("combinations applied")
	return nil
}

// ReverseGame undoes a previous ApplyGame with the same payload. A missing
// entry or a counter already at zero means the pairing was broken earlier;
// that is reported as ErrLedgerInconsistent rather than skipped.
func (l *CombinationLedger) ReverseGame(ctx context.Context, q *db.Queries, payload domain.GamePayload) error {
	steps := gameSteps(payload)
	for _, step := range steps {
		n, err := q.AdjustCombination(ctx, step.key, step.won, false)
		if err != nil {
			return fmt.Errorf("failed to reverse combination %q: %w", step.key, err)
		}
		if n == 0 {
			counter := "losses"
			if step.won {
				counter = "wins"
			}
			l.logger.Error().Str("combination", step.key).Str("counter", counter).Msg("ledger entry missing or already zero")
			return fmt.Errorf("%w: no %s to reverse for %q", domain.ErrLedgerInconsistent, counter, step.key)
		}
	}

	l.logger.Debug().Int("keys", len(steps)).Msg("combinations reversed")
	return nil
}

// Expected replays games through the generator and returns the ledger they imply.
func Expected(games []domain.Game) map[string]domain.CombinationEntry {
	expected := make(map[string]domain.CombinationEntry)
	for _, g := range games {
		for _, step := range gameSteps(g.Payload) {
			e := expected[step.key]
			e.PlayerNames = step.key
			if step.won {
				e.Wins++
			} else {
				e.Losses++
			}
			expected[step.key] = e
		}
	}
	return expected
}

// ledgerEntries reads the whole stored ledger, zeroed entries included.
func ledgerEntries(ctx context.Context, q *db.Queries) ([]domain.CombinationEntry, error) {
	rows, err := q.ListCombinations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list combinations: %w", err)
	}

	entries := make([]domain.CombinationEntry, len(rows))
	for i, row := range rows {
		entries[i] = domain.CombinationEntry{PlayerNames: row.PlayerNames, Wins: int(row.Wins), Losses: int(row.Losses)}
	}
	return entries, nil
}
