package bot

import (
	"codenames-stats/internal/combination"
	"codenames-stats/internal/constants"
	"codenames-stats/internal/domain"
	"fmt"
	"strings"
)

// FormatStats renders the pinned stats message.
func FormatStats(o *domain.StatsOverview, minGames int) string {
	var b strings.Builder
	b.WriteString("📊 Codenames Statistics\n")
	fmt.Fprintf(&b, "Total games played: %d\n", o.TotalGames)

	if len(o.Players) > 0 {
		b.WriteString("\n🏆 Overall Leaderboard\n")
		for i, s := range limit(o.Players) {
			fmt.Fprintf(&b, "%d. %s: %d-%d (%.1f%%)\n", i+1, s.Name, s.Wins, s.Losses, s.WinRate)
		}
	}

	for _, section := range []struct {
		title string
		role  domain.Role
	}{
		{"🎯 Operative Win Rates", domain.RoleOperative},
		{"🕵️ Spymaster Win Rates", domain.RoleSpymaster},
	} {
		var rows []domain.PlayerRoleStat
		for _, s := range o.PlayersByRole {
			if s.Role == section.role {
				rows = append(rows, s)
			}
		}
		if len(rows) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s\n", section.title)
		for _, s := range limit(rows) {
			fmt.Fprintf(&b, "%s: %d/%d (%.1f%%)\n", s.Name, s.Wins, s.TotalGames, s.WinRate)
		}
	}

	if len(o.Combinations) > 0 {
		fmt.Fprintf(&b, "\n🤝 Best Team Combinations (%d+ games)\n", minGames)
		for _, c := range limit(o.Combinations) {
			fmt.Fprintf(&b, "%s: %d-%d (%.1f%%)\n", strings.Join(combination.Split(c.PlayerNames), " + "), c.Wins, c.Losses, c.WinRate)
		}
	}

	if len(o.CombinationRoles) > 0 {
		fmt.Fprintf(&b, "\n🧩 Best Lineups (%d+ games)\n", minGames)
		for _, s := range limit(o.CombinationRoles) {
			fmt.Fprintf(&b, "🕵️ %s | 🎯 %s: %d-%d (%.1f%%)\n", orNone(s.Spymasters), orNone(s.Operatives), s.Wins, s.Losses, s.WinRate)
		}
	}

	b.WriteString("\nStats update automatically after each game")
	return b.String()
}

// FormatGame renders the reply to a recorded game.
func FormatGame(id int64, p domain.GamePayload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎮 Game #%d Recorded\n", id)
	fmt.Fprintf(&b, "🏆 Winner: %s Team\n\n", p.Winner)
	fmt.Fprintf(&b, "🔵 Blue Team\nOperatives: %s\nSpymasters: %s\n\n", orNone(p.BlueTeam.Operatives), orNone(p.BlueTeam.Spymasters))
	fmt.Fprintf(&b, "🔴 Red Team\nOperatives: %s\nSpymasters: %s", orNone(p.RedTeam.Operatives), orNone(p.RedTeam.Spymasters))
	return b.String()
}

func orNone(names []string) string {
	if len(names) == 0 {
		return "None"
	}
	return strings.Join(names, ", ")
}

func limit[T any](rows []T) []T {
	if len(rows) > constants.LeaderboardSize {
		return rows[:constants.LeaderboardSize]
	}
	return rows
}
