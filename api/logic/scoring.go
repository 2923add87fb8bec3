/* scoring.go
 * Contains the logic used to reconcile a user's prediction ledger against match outcomes
 */

package logic

import (
	"e-network/api/shared"
	"sort"
)

// Classify returns the outcome of a single prediction for a match. A match that is not finished, or finished
// without a winner, is still pending
func Classify(predicted shared.ID, m shared.Match) shared.Outcome {
	if !m.IsResolved() {
		return shared.OutcomePending
	}
	if predicted == m.WinnerID {
		return shared.OutcomeCorrect
	}
	return shared.OutcomeIncorrect
}

// Score calculates a user's prediction statistics
// Preconditions: Receives the user's ledger and the matches it references. Matches without a ledger entry, or
// that are not finished with a winner, are ignored
// Postconditions: Returns the number of evaluated, correct and incorrect predictions
func Score(ledger shared.Ledger, resolvedMatches []shared.Match) shared.PredictionStats {
	var stats shared.PredictionStats
	counted := make(map[shared.ID]bool, len(resolvedMatches))

	for _, m := range resolvedMatches {
		predicted, ok := ledger[m.ID]
		if !ok || !m.IsResolved() || counted[m.ID] {
			continue
		}
		counted[m.ID] = true

		stats.Total++
		switch Classify(predicted, m) {
		case shared.OutcomeCorrect:
			stats.Correct++
		case shared.OutcomeIncorrect:
			stats.Incorrect++
		}
	}
	return stats
}

// History pairs every predicted match with its outcome, most recent match first
// Preconditions: Receives the user's ledger and the matches it references, in any order
// Postconditions: Returns one entry per distinct match that has a ledger entry
func History(ledger shared.Ledger, matches []shared.Match) []shared.HistoryEntry {
	entries := make([]shared.HistoryEntry, 0, len(ledger))
	seen := make(map[shared.ID]bool, len(matches))

	for _, m := range matches {
		predicted, ok := ledger[m.ID]
		if !ok || seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		entries = append(entries, shared.HistoryEntry{
			Match:     m,
			Predicted: predicted,
			Outcome:   Classify(predicted, m),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Match.BeginAt.After(entries[j].Match.BeginAt)
	})
	return entries
}
