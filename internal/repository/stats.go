package repository

import (
	"codenames-stats/internal/combination"
	"codenames-stats/internal/constants"
	"codenames-stats/internal/db"
	"codenames-stats/internal/domain"
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"
)

// StatsRepository serves the read-only aggregate views.
type StatsRepository struct {
	queries *db.Queries
	logger  zerolog.Logger
}

func NewStatsRepository(queries *db.Queries, logger zerolog.Logger) *StatsRepository {
	return &StatsRepository{queries: queries, logger: logger}
}

// WinRate is 100*wins/total rounded to one decimal.
func WinRate(wins, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(1000*float64(wins)/float64(total)) / 10
}

func (r *StatsRepository) PlayerStats(ctx context.Context) ([]domain.PlayerStat, error) {
	rows, err := r.queries.PlayerTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load player totals: %w", err)
	}

	stats := make([]domain.PlayerStat, 0, len(rows))
	for _, row := range rows {
		total, wins := int(row.Total), int(row.Wins)
		stats = append(stats, domain.PlayerStat{
			Name:       row.Name,
			TotalGames: total,
			Wins:       wins,
			Losses:     total - wins,
			WinRate:    WinRate(wins, total),
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		a, b := stats[i], stats[j]
		if a.WinRate != b.WinRate {
			return a.WinRate > b.WinRate
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		return a.Name < b.Name
	})
	return stats, nil
}

func (r *StatsRepository) PlayerStatsByRole(ctx context.Context) ([]domain.PlayerRoleStat, error) {
	rows, err := r.queries.PlayerRoleTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load player role totals: %w", err)
	}

	stats := make([]domain.PlayerRoleStat, 0, len(rows))
	for _, row := range rows {
		total, wins := int(row.Total), int(row.Wins)
		stats = append(stats, domain.PlayerRoleStat{
			Name:       row.Name,
			Role:       domain.Role(row.Role),
			TotalGames: total,
			Wins:       wins,
			WinRate:    WinRate(wins, total),
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		a, b := stats[i], stats[j]
		if a.Role != b.Role {
			return a.Role < b.Role
		}
		if a.WinRate != b.WinRate {
			return a.WinRate > b.WinRate
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		return a.Name < b.Name
	})
	return stats, nil
}

func (r *StatsRepository) CombinationStats(ctx context.Context, minGames int) ([]domain.CombinationStat, error) {
	rows, err := r.queries.ListCombinationsWithMinGames(ctx, int64(minGames))
	if err != nil {
		return nil, fmt.Errorf("failed to load combinations: %w", err)
	}

	stats := make([]domain.CombinationStat, 0, len(rows))
	for _, row := range rows {
		wins, losses := int(row.Wins), int(row.Losses)
		stats = append(stats, domain.CombinationStat{
			PlayerNames: row.PlayerNames,
			Wins:        wins,
			Losses:      losses,
			TotalGames:  wins + losses,
			WinRate:     WinRate(wins, wins+losses),
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		a, b := stats[i], stats[j]
		if a.WinRate != b.WinRate {
			return a.WinRate > b.WinRate
		}
		if a.TotalGames != b.TotalGames {
			return a.TotalGames > b.TotalGames
		}
		return a.PlayerNames < b.PlayerNames
	})
	return capped(stats), nil
}

// CombinationStatsWithRoles groups every team that played by its exact
// (spymasters, operatives) shape. Teams that merely overlap are different shapes.
func (r *StatsRepository) CombinationStatsWithRoles(ctx context.Context, minGames int) ([]domain.TeamShapeStat, error) {
	rows, err := r.queries.ListAllParticipants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load participants: %w", err)
	}

	type teamKey struct {
		gameID int64
		team   string
	}
	type teamPlay struct {
		spymasters []string
		operatives []string
		won        bool
	}

	plays := make(map[teamKey]*teamPlay)
	var order []teamKey
	for _, row := range rows {
		k := teamKey{gameID: row.GameID, team: row.Team}
		p, ok := plays[k]
		if !ok {
			p = &teamPlay{won: row.Won}
			plays[k] = p
			order = append(order, k)
		}
		if domain.Role(row.Role) == domain.RoleSpymaster {
			p.spymasters = append(p.spymasters, row.Name)
		} else {
			p.operatives = append(p.operatives, row.Name)
		}
	}

	shapes := make(map[string]*domain.TeamShapeStat)
	for _, k := range order {
		p := plays[k]
		sort.Strings(p.spymasters)
		sort.Strings(p.operatives)
		key := joinShape(p.spymasters, p.operatives)

		s, ok := shapes[key]
		if !ok {
			s = &domain.TeamShapeStat{
				Spymasters: append([]string{}, p.spymasters...),
				Operatives: append([]string{}, p.operatives...),
			}
			shapes[key] = s
		}
		if p.won {
			s.Wins++
		} else {
			s.Losses++
		}
	}

	stats := make([]domain.TeamShapeStat, 0, len(shapes))
	for _, s := range shapes {
		s.TotalGames = s.Wins + s.Losses
		if s.TotalGames < minGames {
			continue
		}
		s.WinRate = WinRate(s.Wins, s.TotalGames)
		stats = append(stats, *s)
	}

	sort.Slice(stats, func(i, j int) bool {
		a, b := stats[i], stats[j]
		if a.WinRate != b.WinRate {
			return a.WinRate > b.WinRate
		}
		if a.TotalGames != b.TotalGames {
			return a.TotalGames > b.TotalGames
		}
		return joinShape(a.Spymasters, a.Operatives) < joinShape(b.Spymasters, b.Operatives)
	})
	return capped(stats), nil
}

func (r *StatsRepository) TotalGames(ctx context.Context) (int, error) {
	n, err := r.queries.CountGames(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count games: %w", err)
	}
	return int(n), nil
}

func joinShape(spymasters, operatives []string) string {
	return combination.Key(spymasters) + "|" + combination.Key(operatives)
}

func capped[T any](stats []T) []T {
	if len(stats) > constants.CombinationStatsLimit {
		return stats[:constants.CombinationStatsLimit]
	}
	return stats
}
