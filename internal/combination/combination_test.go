package combination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIgnoresOrderAndDuplicates(t *testing.T) {
	want := []string{"A,B", "A,C", "B,C", "A,B,C"}

	cases := []struct {
		name   string
		roster []string
	}{
		{name: "sorted", roster: []string{"A", "B", "C"}},
		{name: "shuffled", roster: []string{"C", "A", "B"}},
		{name: "duplicate", roster: []string{"A", "B", "B", "C"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, want, Generate(tc.roster))
		})
	}
}

func TestGenerateSmallRosters(t *testing.T) {
	assert.Empty(t, Generate(nil))
	assert.Empty(t, Generate([]string{"Alice"}))
	assert.Empty(t, Generate([]string{"Alice", "Alice"}))
	assert.Equal(t, []string{"Alice,Bob"}, Generate([]string{"Bob", "Alice"}))
}

func TestGenerateCountMatchesFormula(t *testing.T) {
	roster := []string{"a", "b", "c", "d", "e", "f", "g"}
	for n := 0; n <= len(roster); n++ {
		keys := Generate(roster[:n])
		require.Len(t, keys, Count(n), "roster size %d", n)

		unique := make(map[string]struct{}, len(keys))
		for _, k := range keys {
			unique[k] = struct{}{}
		}
		assert.Len(t, unique, len(keys), "keys must be distinct for size %d", n)
	}
}

func TestGenerateIsCaseSensitive(t *testing.T) {
	assert.Equal(t, []string{"Alice,alice"}, Generate([]string{"alice", "Alice"}))
}

func TestKeyAndSplit(t *testing.T) {
	key := Key([]string{"Carol", "Alice", "Bob", "Alice"})
	assert.Equal(t, "Alice,Bob,Carol", key)
	assert.Equal(t, []string{"Alice", "Bob", "Carol"}, Split(key))
	assert.Nil(t, Split(""))
}
