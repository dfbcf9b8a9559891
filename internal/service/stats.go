package service

import (
	"codenames-stats/internal/constants"
	"codenames-stats/internal/domain"
	"codenames-stats/internal/repository"
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type StatsService struct {
	repo   *repository.StatsRepository
	logger zerolog.Logger
}

func NewStatsService(repo *repository.StatsRepository, logger zerolog.Logger) *StatsService {
	return &StatsService{repo: repo, logger: logger}
}

func (s *StatsService) PlayerStats(ctx context.Context) ([]domain.PlayerStat, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	stats, err := s.repo.PlayerStats(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get player stats")
		return nil, err
	}
	return stats, nil
}

func (s *StatsService) PlayerStatsByRole(ctx context.Context) ([]domain.PlayerRoleStat, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	stats, err := s.repo.PlayerStatsByRole(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get player stats by role")
		return nil, err
	}
	return stats, nil
}

func (s *StatsService) CombinationStats(ctx context.Context, minGames int) ([]domain.CombinationStat, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	stats, err := s.repo.CombinationStats(ctx, minGames)
	if err != nil {
		s.logger.Error().Err(err).Int("min_games", minGames).Msg("failed to get combination stats")
		return nil, err
	}
	return stats, nil
}

func (s *StatsService) CombinationStatsWithRoles(ctx context.Context, minGames int) ([]domain.TeamShapeStat, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	stats, err := s.repo.CombinationStatsWithRoles(ctx, minGames)
	if err != nil {
		s.logger.Error().Err(err).Int("min_games", minGames).Msg("failed to get team shape stats")
		return nil, err
	}
	return stats, nil
}

func (s *StatsService) TotalGames(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	total, err := s.repo.TotalGames(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to count games")
		return 0, err
	}
	return total, nil
}

// Overview loads every leaderboard at once for the chat presenter.
func (s *StatsService) Overview(ctx context.Context, minGames int) (*domain.StatsOverview, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	var overview domain.StatsOverview
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		overview.TotalGames, err = s.repo.TotalGames(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		overview.Players, err = s.repo.PlayerStats(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		overview.PlayersByRole, err = s.repo.PlayerStatsByRole(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		overview.Combinations, err = s.repo.CombinationStats(gCtx, minGames)
		return err
	})
	g.Go(func() error {
		var err error
		overview.CombinationRoles, err = s.repo.CombinationStatsWithRoles(gCtx, minGames)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Msg("failed to build stats overview")
		return nil, fmt.Errorf("failed to build stats overview: %w", err)
	}

	s.logger.Debug().Int("total_games", overview.TotalGames).Int("players", len(overview.Players)).Msg("stats overview built")
	return &overview, nil
}
