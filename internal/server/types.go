package server

import (
	"codenames-stats/internal/domain"
	"fmt"
	"time"
)

type TeamData struct {
	Operatives *[]string `json:"operatives"`
	Spymasters *[]string `json:"spymasters"`
}

// GameData is a submitted game. Every field is required.
type GameData struct {
	BlueTeam *TeamData `json:"blue_team"`
	RedTeam  *TeamData `json:"red_team"`
	Winner   *string   `json:"winner"`
}

func (g *GameData) toPayload() (domain.GamePayload, error) {
	if g == nil {
		return domain.GamePayload{}, fmt.Errorf("%w: game is required", domain.ErrInvalidPayload)
	}
	if g.Winner == nil {
		return domain.GamePayload{}, fmt.Errorf("%w: winner is required", domain.ErrInvalidPayload)
	}
	blue, err := g.BlueTeam.toRoster("blue_team")
	if err != nil {
		return domain.GamePayload{}, err
	}
	red, err := g.RedTeam.toRoster("red_team")
	if err != nil {
		return domain.GamePayload{}, err
	}
	return domain.GamePayload{BlueTeam: blue, RedTeam: red, Winner: domain.Team(*g.Winner)}, nil
}

func (t *TeamData) toRoster(field string) (domain.TeamRoster, error) {
	if t == nil {
		return domain.TeamRoster{}, fmt.Errorf("%w: %s is required", domain.ErrInvalidPayload, field)
	}
	if t.Operatives == nil || t.Spymasters == nil {
		return domain.TeamRoster{}, fmt.Errorf("%w: %s needs operatives and spymasters", domain.ErrInvalidPayload, field)
	}
	return domain.TeamRoster{Operatives: *t.Operatives, Spymasters: *t.Spymasters}, nil
}

// NewGameData builds the wire form of a payload, used by clients.
func NewGameData(p domain.GamePayload) *GameData {
	winner := string(p.Winner)
	return &GameData{
		BlueTeam: newTeamData(p.BlueTeam),
		RedTeam:  newTeamData(p.RedTeam),
		Winner:   &winner,
	}
}

func newTeamData(r domain.TeamRoster) *TeamData {
	ops, spies := nonNil(r.Operatives), nonNil(r.Spymasters)
	return &TeamData{Operatives: &ops, Spymasters: &spies}
}

type GameIDRequest struct {
	GameID int64 `json:"game_id"`
}

type ReplaceGameRequest struct {
	GameID int64     `json:"game_id"`
	Game   *GameData `json:"game"`
}

type MinGamesRequest struct {
	MinGames *int `json:"min_games"`
}

func (r *MinGamesRequest) value(fallback int) int {
	if r == nil || r.MinGames == nil {
		return fallback
	}
	return *r.MinGames
}

type Empty struct{}

type GameResponse struct {
	GameID  int64  `json:"game_id"`
	Message string `json:"message"`
}

type Game struct {
	ID      int64              `json:"id"`
	Date    string             `json:"date"`
	Winner  string             `json:"winner"`
	RawData domain.GamePayload `json:"raw_data"`
}

type GamesResponse struct {
	Games []Game `json:"games"`
}

type PlayerStat struct {
	Name       string  `json:"name"`
	TotalGames int     `json:"total_games"`
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`
	WinRate    float64 `json:"win_rate"`
}

type PlayerRoleStat struct {
	Name       string  `json:"name"`
	Role       string  `json:"role"`
	TotalGames int     `json:"total_games"`
	Wins       int     `json:"wins"`
	WinRate    float64 `json:"win_rate"`
}

type CombinationStat struct {
	PlayerNames string  `json:"player_names"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	TotalGames  int     `json:"total_games"`
	WinRate     float64 `json:"win_rate"`
}

type CombinationWithRoles struct {
	Spymasters []string `json:"spymasters"`
	Operatives []string `json:"operatives"`
	Wins       int      `json:"wins"`
	Losses     int      `json:"losses"`
	TotalGames int      `json:"total_games"`
	WinRate    float64  `json:"win_rate"`
}

type PlayerStatsResponse struct {
	Players []PlayerStat `json:"players"`
}

type PlayerRoleStatsResponse struct {
	Players []PlayerRoleStat `json:"players"`
}

type CombinationStatsResponse struct {
	Combinations []CombinationStat `json:"combinations"`
}

type CombinationWithRolesResponse struct {
	Combinations []CombinationWithRoles `json:"combinations"`
}

type TotalGamesResponse struct {
	TotalGames int `json:"total_games"`
}

type OverviewResponse struct {
	TotalGames       int                    `json:"total_games"`
	Players          []PlayerStat           `json:"players"`
	PlayersByRole    []PlayerRoleStat       `json:"players_by_role"`
	Combinations     []CombinationStat      `json:"combinations"`
	CombinationRoles []CombinationWithRoles `json:"combinations_with_roles"`
}

func toGame(g domain.Game) Game {
	return Game{
		ID:      g.ID,
		Date:    g.PlayedAt.UTC().Format(time.RFC3339),
		Winner:  string(g.Winner),
		RawData: g.Payload,
	}
}

func toGames(games []domain.Game) []Game {
	out := make([]Game, len(games))
	for i, g := range games {
		out[i] = toGame(g)
	}
	return out
}

func toPlayerStats(stats []domain.PlayerStat) []PlayerStat {
	out := make([]PlayerStat, len(stats))
	for i, s := range stats {
		out[i] = PlayerStat{Name: s.Name, TotalGames: s.TotalGames, Wins: s.Wins, Losses: s.Losses, WinRate: s.WinRate}
	}
	return out
}

func toPlayerRoleStats(stats []domain.PlayerRoleStat) []PlayerRoleStat {
	out := make([]PlayerRoleStat, len(stats))
	for i, s := range stats {
		out[i] = PlayerRoleStat{Name: s.Name, Role: string(s.Role), TotalGames: s.TotalGames, Wins: s.Wins, WinRate: s.WinRate}
	}
	return out
}

func toCombinationStats(stats []domain.CombinationStat) []CombinationStat {
	out := make([]CombinationStat, len(stats))
	for i, s := range stats {
		out[i] = CombinationStat{PlayerNames: s.PlayerNames, Wins: s.Wins, Losses: s.Losses, TotalGames: s.TotalGames, WinRate: s.WinRate}
	}
	return out
}

func toCombinationsWithRoles(stats []domain.TeamShapeStat) []CombinationWithRoles {
	out := make([]CombinationWithRoles, len(stats))
	for i, s := range stats {
		out[i] = CombinationWithRoles{
			Spymasters: nonNil(s.Spymasters),
			Operatives: nonNil(s.Operatives),
			Wins:       s.Wins,
			Losses:     s.Losses,
			TotalGames: s.TotalGames,
			WinRate:    s.WinRate,
		}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
