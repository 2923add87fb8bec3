/* feed.go
 * Contains the personalisation filter used to build a user's feed of upcoming matches. The precedence of the
 * filters is fixed: games first, then leagues OR teams, falling back to the game-only list when the narrower
 * filter finds nothing
 */

package logic

import (
	"e-network/api/shared"
	"sort"
)

// SortByBeginAt returns a copy of matches sorted by scheduled start time, oldest first. Matches that start at the
// same time keep their upstream order
func SortByBeginAt(matches []shared.Match) []shared.Match {
	sorted := make([]shared.Match, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BeginAt.Before(sorted[j].BeginAt)
	})
	return sorted
}

// SelectFeed computes the subset of matches relevant to a user.
// Preconditions: Receives every upcoming match and the user's preferences (may be the zero value)
// Postconditions: Returns the feed sorted by start time and whether a broader result set than the user asked for
// was used. The input slice is never modified
func SelectFeed(allMatches []shared.Match, prefs shared.Preferences) ([]shared.Match, bool) {
	ordered := SortByBeginAt(allMatches)

	// No games selected, nothing to personalise on
	if len(prefs.Games) == 0 {
		return ordered, true
	}

	games := shared.IDSet(prefs.Games)
	byGame := make([]shared.Match, 0, len(ordered))
	for _, m := range ordered {
		if games[m.VideogameID] {
			byGame = append(byGame, m)
		}
	}

	if len(prefs.Leagues) == 0 && len(prefs.Teams) == 0 {
		return byGame, true
	}

	leagues := shared.IDSet(prefs.Leagues)
	teams := shared.IDSet(prefs.Teams)
	specific := make([]shared.Match, 0, len(byGame))
	for _, m := range byGame {
		if leagues[m.LeagueID] || playsIn(m, teams) {
			specific = append(specific, m)
		}
	}

	if len(specific) > 0 {
		return specific, false
	}
	return byGame, true
}

// playsIn reports whether any resolved opponent of the match is in the team set. TBD slots never match
func playsIn(m shared.Match, teams map[shared.ID]bool) bool {
	for _, o := range m.Opponents {
		if !o.IsTBD() && teams[o.TeamID] {
			return true
		}
	}
	return false
}

// OpenMatches returns the matches that still accept predictions, preserving order
func OpenMatches(matches []shared.Match) []shared.Match {
	open := make([]shared.Match, 0, len(matches))
	for _, m := range matches {
		if m.IsOpen() {
			open = append(open, m)
		}
	}
	return open
}
