package repository

import (
	"codenames-stats/internal/db"
	"codenames-stats/internal/domain"
	"context"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

var roles = []domain.Role{domain.RoleOperative, domain.RoleSpymaster}

// ParticipationIndex keeps one row per player per game. Rows are never patched:
// every write discards the game's rows and regenerates them from the payload.
type ParticipationIndex struct {
	players *PlayerRepository
	logger  zerolog.Logger
}

func NewParticipationIndex(players *PlayerRepository, logger zerolog.Logger) *ParticipationIndex {
	return &ParticipationIndex{players: players, logger: logger}
}

func (p *ParticipationIndex) RebuildFor(ctx context.Context, q *db.Queries, gameID int64, payload domain.GamePayload) error {
	if err := p.DeleteFor(ctx, q, gameID); err != nil {
		return err
	}

	count := 0
	for _, team := range domain.Teams {
		roster := payload.Roster(team)
		won := payload.Won(team)

		for _, role := range roles {
			for _, name := range roster.ByRole(role) {
				playerID, err := p.players.Resolve(ctx, q, name)
				if err != nil {
					return err
				}

				id, err := gonanoid.New()
				if err != nil {
					return fmt.Errorf("failed to generate nanoid: %w", err)
				}

				err = q.InsertParticipant(ctx, db.InsertParticipantParams{
					ID:       id,
					GameID:   gameID,
					PlayerID: playerID,
					Team:     string(team),
					Role:     string(role),
					Won:      won,
				})
				if err != nil {
					return fmt.Errorf("failed to insert participant %q: %w", name, err)
				}
				count++
			}
		}
	}

	p.logger.Debug().Int64("game_id", gameID).Int("rows", count).Msg("participation rebuilt")
	return nil
}

func (p *ParticipationIndex) DeleteFor(ctx context.Context, q *db.Queries, gameID int64) error {
	if err := q.DeleteParticipantsByGame(ctx, gameID); err != nil {
		return fmt.Errorf("failed to delete participants: %w", err)
	}
	return nil
}
