package domain

import (
	"time"
)

type Team string

const (
	TeamBlue Team = "Blue"
	TeamRed  Team = "Red"
)

// Teams is the fixed order in which both sides of a game are processed.
var Teams = []Team{TeamBlue, TeamRed}

type Role string

const (
	RoleOperative Role = "Operative"
	RoleSpymaster Role = "Spymaster"
)

type TeamRoster struct {
	Operatives []string `json:"operatives"`
	Spymasters []string `json:"spymasters"`
}

// Players returns operatives followed by spymasters.
func (r TeamRoster) Players() []string {
	players := make([]string, 0, len(r.Operatives)+len(r.Spymasters))
	players = append(players, r.Operatives...)
	players = append(players, r.Spymasters...)
	return players
}

func (r TeamRoster) ByRole(role Role) []string {
	if role == RoleSpymaster {
		return r.Spymasters
	}
	return r.Operatives
}

// GamePayload is the full submitted game, stored verbatim with every game.
type GamePayload struct {
	BlueTeam TeamRoster `json:"blue_team"`
	RedTeam  TeamRoster `json:"red_team"`
	Winner   Team       `json:"winner"`
}

func (p GamePayload) Roster(team Team) TeamRoster {
	if team == TeamRed {
		return p.RedTeam
	}
	return p.BlueTeam
}

func (p GamePayload) Won(team Team) bool {
	return p.Winner == team
}

type Game struct {
	ID       int64
	PlayedAt time.Time
	Winner   Team
	Payload  GamePayload
}

type CombinationEntry struct {
	PlayerNames string
	Wins        int
	Losses      int
}

type PlayerStat struct {
	Name       string
	TotalGames int
	Wins       int
	Losses     int
	WinRate    float64
}

type PlayerRoleStat struct {
	Name       string
	Role       Role
	TotalGames int
	Wins       int
	WinRate    float64
}

type CombinationStat struct {
	PlayerNames string
	Wins        int
	Losses      int
	TotalGames  int
	WinRate     float64
}

// TeamShapeStat aggregates games by the exact spymaster and operative sets a team played with.
type TeamShapeStat struct {
	Spymasters []string
	Operatives []string
	Wins       int
	Losses     int
	TotalGames int
	WinRate    float64
}

type StatsOverview struct {
	TotalGames       int
	Players          []PlayerStat
	PlayersByRole    []PlayerRoleStat
	Combinations     []CombinationStat
	CombinationRoles []TeamShapeStat
}
