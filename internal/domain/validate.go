package domain

import (
	"fmt"
	"strings"
)

func ParseTeam(s string) (Team, error) {
	switch Team(s) {
	case TeamBlue, TeamRed:
		return Team(s), nil
	}
	return "", fmt.Errorf("%w: got %q", ErrInvalidWinner, s)
}

// Validate checks the winner and that every name is non-empty and used at most once per game.
func (p GamePayload) Validate() error {
	if _, err := ParseTeam(string(p.Winner)); err != nil {
		return err
	}

	seen := make(map[string]string)
	for _, team := range Teams {
		roster := p.Roster(team)
		for _, role := range []Role{RoleOperative, RoleSpymaster} {
			for _, name := range roster.ByRole(role) {
				if strings.TrimSpace(name) == "" {
					return fmt.Errorf("%w: empty %s name on %s team", ErrInvalidPayload, strings.ToLower(string(role)), team)
				}
				slot := fmt.Sprintf("%s %s", team, strings.ToLower(string(role)))
				if prev, ok := seen[name]; ok {
					return fmt.Errorf("%w: %q listed as %s and %s", ErrInvalidPayload, name, prev, slot)
				}
				seen[name] = slot
			}
		}
	}
	return nil
}
