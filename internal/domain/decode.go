package domain

import (
	"encoding/json"
	"fmt"
)

type rosterFields struct {
	Operatives *[]string `json:"operatives"`
	Spymasters *[]string `json:"spymasters"`
}

type payloadFields struct {
	BlueTeam *rosterFields `json:"blue_team"`
	RedTeam  *rosterFields `json:"red_team"`
	Winner   *string       `json:"winner"`
}

// DecodePayload parses a game from JSON. Both teams, all four role lists and
// the winner must be present; an absent field is ErrInvalidPayload rather than
// an empty roster.
func DecodePayload(data []byte) (GamePayload, error) {
	var f payloadFields
	if err := json.Unmarshal(data, &f); err != nil {
		return GamePayload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if f.Winner == nil {
		return GamePayload{}, fmt.Errorf("%w: winner is required", ErrInvalidPayload)
	}
	blue, err := f.BlueTeam.roster("blue_team")
	if err != nil {
		return GamePayload{}, err
	}
	red, err := f.RedTeam.roster("red_team")
	if err != nil {
		return GamePayload{}, err
	}
	return GamePayload{BlueTeam: blue, RedTeam: red, Winner: Team(*f.Winner)}, nil
}

func (r *rosterFields) roster(field string) (TeamRoster, error) {
	if r == nil {
		return TeamRoster{}, fmt.Errorf("%w: %s is required", ErrInvalidPayload, field)
	}
	if r.Operatives == nil || r.Spymasters == nil {
		return TeamRoster{}, fmt.Errorf("%w: %s needs operatives and spymasters", ErrInvalidPayload, field)
	}
	return TeamRoster{Operatives: *r.Operatives, Spymasters: *r.Spymasters}, nil
}
