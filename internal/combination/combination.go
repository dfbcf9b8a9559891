// Package combination enumerates the player sets tracked by the combination ledger.
package combination

import (
	"sort"
	"strings"
)

const Separator = ","

// Key returns the canonical key for a set of names: deduplicated, sorted, comma-joined.
func Key(names []string) string {
	return strings.Join(normalize(names), Separator)
}

// Split is the inverse of Key.
func Split(key string) []string {
	if key == "" {
		return nil
	}
	return strings.Split(key, Separator)
}

// Generate returns the key of every subset of roster with at least two members.
// Input order and duplicate names do not affect the result. Keys are ordered by
// subset size, then by the sorted position of their members.
func Generate(roster []string) []string {
	names := normalize(roster)
	if len(names) < 2 {
		return nil
	}

	keys := make([]string, 0, Count(len(names)))
	subset := make([]string, 0, len(names))

	var walk func(start, size int)
	walk = func(start, size int) {
		if len(subset) == size {
			keys = append(keys, strings.Join(subset, Separator))
			return
		}
		for i := start; i <= len(names)-(size-len(subset)); i++ {
			subset = append(subset, names[i])
			walk(i+1, size)
			subset = subset[:len(subset)-1]
		}
	}

	for size := 2; size <= len(names); size++ {
		walk(0, size)
	}
	return keys
}

// Count is the number of keys Generate yields for n distinct names.
func Count(n int) int {
	if n < 2 {
		return 0
	}
	return 1<<n - n - 1
}

func normalize(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
