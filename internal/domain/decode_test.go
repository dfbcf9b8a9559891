package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayload(t *testing.T) {
	p, err := DecodePayload([]byte(`{"blue_team":{"operatives":["A"],"spymasters":[]},"red_team":{"operatives":[],"spymasters":["B"]},"winner":"Red"}`))
	require.NoError(t, err)
	assert.Equal(t, TeamRed, p.Winner)
	assert.Equal(t, []string{"A"}, p.BlueTeam.Operatives)
	assert.Equal(t, []string{"B"}, p.RedTeam.Spymasters)
	assert.Empty(t, p.RedTeam.Operatives)
}

func TestDecodePayload_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"winner only", `{"winner":"Blue"}`},
		{"no winner", `{"blue_team":{"operatives":["A"],"spymasters":[]},"red_team":{"operatives":["B"],"spymasters":[]}}`},
		{"no red team", `{"blue_team":{"operatives":["A"],"spymasters":[]},"winner":"Blue"}`},
		{"no spymasters", `{"blue_team":{"operatives":["A"]},"red_team":{"operatives":["B"],"spymasters":[]},"winner":"Blue"}`},
		{"null operatives", `{"blue_team":{"operatives":["A"],"spymasters":[]},"red_team":{"operatives":null,"spymasters":[]},"winner":"Blue"}`},
		{"not json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePayload([]byte(tt.json))
			assert.ErrorIs(t, err, ErrInvalidPayload)
			assert.True(t, IsValidation(err))
		})
	}
}
