package service

import (
	"codenames-stats/internal/constants"
	"codenames-stats/internal/domain"
	"codenames-stats/internal/repository"
	"context"
	"errors"

	"github.com/rs/zerolog"
)

type GameService struct {
	repo   *repository.GameRepository
	logger zerolog.Logger
}

func NewGameService(repo *repository.GameRepository, logger zerolog.Logger) *GameService {
	return &GameService{repo: repo, logger: logger}
}

func (s *GameService) Create(ctx context.Context, payload domain.GamePayload) (int64, error) {
	if err := payload.Validate(); err != nil {
		s.logger.Warn().Err(err).Msg("rejected game")
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, constants.WriteTimeout)
	defer cancel()

	id, err := s.repo.Create(ctx, payload)
	if err != nil {
		s.logWriteError(err, "failed to create game")
		return 0, err
	}
	return id, nil
}

func (s *GameService) Replace(ctx context.Context, id int64, payload domain.GamePayload) error {
	if err := payload.Validate(); err != nil {
		s.logger.Warn().Err(err).Int64("game_id", id).Msg("rejected game update")
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, constants.WriteTimeout)
	defer cancel()

	if err := s.repo.Replace(ctx, id, payload); err != nil {
		s.logWriteError(err, "failed to replace game")
		return err
	}
	return nil
}

func (s *GameService) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, constants.WriteTimeout)
	defer cancel()

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logWriteError(err, "failed to delete game")
		return err
	}
	return nil
}

func (s *GameService) Get(ctx context.Context, id int64) (*domain.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.repo.Get(ctx, id)
}

func (s *GameService) List(ctx context.Context) ([]domain.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	games, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list games")
		return nil, err
	}
	return games, nil
}

func (s *GameService) VerifyLedger(ctx context.Context) ([]repository.LedgerDrift, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	drift, err := s.repo.VerifyLedger(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to verify ledger")
		return nil, err
	}
	s.logger.Info().Int("drift", len(drift)).Msg("ledger verified")
	return drift, nil
}

func (s *GameService) logWriteError(err error, msg string) {
	var gameErr *domain.GameError
	event := s.logger.Error().Err(err)
	switch {
	case errors.Is(err, domain.ErrGameNotFound):
		event = s.logger.Warn().Err(err)
	case errors.Is(err, domain.ErrLedgerInconsistent):
		event = event.Bool("ledger_inconsistent", true)
	}
	if errors.As(err, &gameErr) {
		event = event.Str("op", gameErr.Op).Int64("game_id", gameErr.GameID)
	}
	event.Msg(msg)
}
