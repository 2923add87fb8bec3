/* format.go
 * Contains helpers that render matches, preferences and prediction results as chat messages
 */

package bot

import (
	"errors"
	"fmt"
	"strings"

	"e-network/api/logic"
	"e-network/api/shared"
)

// formatMatch renders one match as a single line. Times use discord timestamp markup so each reader sees their
// own timezone
func formatMatch(m shared.Match) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("`%s` %s vs %s", m.ID, m.Opponents[0].DisplayName(), m.Opponents[1].DisplayName()))
	if m.LeagueName != "" {
		b.WriteString(" | " + m.LeagueName)
	}
	if !m.BeginAt.IsZero() {
		b.WriteString(fmt.Sprintf(" | <t:%d:f>", m.BeginAt.Unix()))
	}
	if m.NumberOfGames > 0 {
		b.WriteString(fmt.Sprintf(" | Bo%d", m.NumberOfGames))
	}
	return b.String()
}

// formatMatches renders at most maxListed matches below a heading
func formatMatches(heading string, matches []shared.Match) string {
	var b strings.Builder
	b.WriteString(heading + "\n")
	for i, m := range matches {
		if i == maxListed {
			b.WriteString(fmt.Sprintf("...and %d more\n", len(matches)-maxListed))
			break
		}
		b.WriteString("- " + formatMatch(m) + "\n")
	}
	return b.String()
}

// teamName returns the display name of one of the match's teams, the id when the team is not an opponent
func teamName(m shared.Match, teamID shared.ID) string {
	for _, o := range m.Opponents {
		if o.TeamID == teamID && o.Name != "" {
			return o.Name
		}
	}
	return teamID.String()
}

func formatHistoryEntry(e shared.HistoryEntry) string {
	return fmt.Sprintf("- %s vs %s: picked %s (%s)",
		e.Match.Opponents[0].DisplayName(), e.Match.Opponents[1].DisplayName(), teamName(e.Match, e.Predicted), e.Outcome)
}

// formatPreferences lists the names of every followed game, league and team
func formatPreferences(username string, prefs shared.Preferences, catalog logic.Catalog) string {
	if len(prefs.Games)+len(prefs.Leagues)+len(prefs.Teams) == 0 {
		return fmt.Sprintf("%s is not following anything yet. Use `$follow <game|league|team> <name>`", username)
	}

	names := func(kind string, ids []shared.ID) string {
		if len(ids) == 0 {
			return "none"
		}
		out := make([]string, 0, len(ids))
		for _, id := range ids {
			out = append(out, catalog.NameOf(kind, id))
		}
		return strings.Join(out, ", ")
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s follows:\n", username))
	b.WriteString("Games: " + names(logic.KindGame, prefs.Games) + "\n")
	b.WriteString("Leagues: " + names(logic.KindLeague, prefs.Leagues) + "\n")
	b.WriteString("Teams: " + names(logic.KindTeam, prefs.Teams) + "\n")
	return b.String()
}

// errorReply maps an error kind to the reply shown to the user
func errorReply(err error, action string) string {
	switch {
	case errors.Is(err, shared.ErrUpstreamUnavailable):
		return fmt.Sprintf("The match provider is unavailable while %s, try again later", action)
	case errors.Is(err, shared.ErrPersistenceFailed):
		return fmt.Sprintf("Could not reach storage while %s, try again later", action)
	case errors.Is(err, shared.ErrAlreadyPredicted):
		return "You have already predicted this match, predictions cannot be changed"
	case errors.Is(err, shared.ErrInvalidPrediction):
		return fmt.Sprintf("Invalid prediction: %s", err)
	case errors.Is(err, shared.ErrNotAuthenticated):
		return "You need to be signed in to do that"
	default:
		return fmt.Sprintf("An unexpected error occurred while %s", action)
	}
}
