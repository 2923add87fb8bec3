/* names.go
 * Contains the logic for resolving names typed by a user into catalog entries or match opponents
 */

package logic

import (
	"e-network/api/shared"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Named is anything with an id and a display name that a user can refer to by name
type Named struct {
	ID   shared.ID `json:"id"`
	Name string    `json:"name"`
}

// ResolveName finds the entry a user most likely meant.
// Preconditions: receives the name typed by the user and the candidates it may refer to
// Postconditions: returns the matched entry and true, or false if nothing matched
func ResolveName(input string, candidates []Named) (Named, bool) {
	lowerInput := strings.ToLower(strings.TrimSpace(input))
	if lowerInput == "" {
		return Named{}, false
	}

	// Lowercase names for better matching, remembering which candidate each came from
	lookup := make(map[string]Named, len(candidates))
	var names []string
	for _, c := range candidates {
		lower := strings.ToLower(c.Name)
		if _, dup := lookup[lower]; dup {
			continue
		}
		lookup[lower] = c
		names = append(names, lower)
	}

	// An exact match always wins, even if fuzzy search ranks something else higher
	if c, ok := lookup[lowerInput]; ok {
		return c, true
	}

	ranks := fuzzy.RankFind(lowerInput, names)
	if len(ranks) == 0 {
		return Named{}, false
	}

	best := ranks[0]
	for _, r := range ranks[1:] {
		if r.Distance < best.Distance {
			best = r
		}
	}
	return lookup[best.Target], true
}

// ResolveNames resolves several names at once
// Postconditions: returns the resolved entries and the inputs that could not be resolved
func ResolveNames(inputs []string, candidates []Named) ([]Named, []string) {
	var resolved []Named
	var invalid []string
	for _, in := range inputs {
		c, ok := ResolveName(in, candidates)
		if !ok {
			invalid = append(invalid, in)
			continue
		}
		resolved = append(resolved, c)
	}
	return resolved, invalid
}

// OpponentCandidates returns the resolved opponents of a match as name candidates
func OpponentCandidates(m shared.Match) []Named {
	var out []Named
	for _, o := range m.Opponents {
		if o.IsTBD() {
			continue
		}
		out = append(out, Named{ID: o.TeamID, Name: o.Name})
	}
	return out
}
