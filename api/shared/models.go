/* models.go
 * This file contain the structs shared between sub packages: matches, preferences, the prediction ledger and the
 * statistics derived from it
 */

package shared

import "time"

// Match statuses as reported by the match provider. Only MatchFinished matters for scoring and only
// MatchNotStarted is open for predictions, other upstream values are passed through untouched
const (
	MatchNotStarted = "not_started"
	MatchRunning    = "running"
	MatchFinished   = "finished"
)

type User struct {
	UserID   string `json:"userId"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Opponent is one of the two slots of a match. An empty TeamID means the slot is still TBD
type Opponent struct {
	TeamID   ID     `json:"teamId,omitempty"`
	Name     string `json:"name,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// IsTBD reports whether the slot has not been resolved to a team yet
func (o Opponent) IsTBD() bool {
	return o.TeamID == ""
}

// DisplayName returns the team name, or TBD for an unresolved slot
func (o Opponent) DisplayName() string {
	if o.IsTBD() || o.Name == "" {
		return "TBD"
	}
	return o.Name
}

// Match is an immutable snapshot of a single scheduled or completed match
type Match struct {
	ID            ID          `json:"id"`
	Name          string      `json:"name,omitempty"`
	BeginAt       time.Time   `json:"beginAt"`
	Status        string      `json:"status"`
	LeagueID      ID          `json:"leagueId,omitempty"`
	LeagueName    string      `json:"leagueName,omitempty"`
	VideogameID   ID          `json:"videogameId,omitempty"`
	VideogameName string      `json:"videogameName,omitempty"`
	Opponents     [2]Opponent `json:"opponents"`
	WinnerID      ID          `json:"winnerId,omitempty"`
	NumberOfGames int         `json:"numberOfGames,omitempty"`
	StreamURL     string      `json:"streamUrl,omitempty"`
}

// IsResolved reports whether the match can be scored: it is finished and has a winner
func (m Match) IsResolved() bool {
	return m.Status == MatchFinished && m.WinnerID != ""
}

// IsOpen reports whether the match still accepts predictions
func (m Match) IsOpen() bool {
	return m.Status == MatchNotStarted
}

// HasTeam reports whether one of the resolved opponent slots holds the given team
func (m Match) HasTeam(teamID ID) bool {
	if teamID == "" {
		return false
	}
	for _, o := range m.Opponents {
		if !o.IsTBD() && o.TeamID == teamID {
			return true
		}
	}
	return false
}

// Preferences holds a user's selected videogames, leagues and teams
type Preferences struct {
	Games   []ID `json:"games"`
	Leagues []ID `json:"leagues"`
	Teams   []ID `json:"teams"`
}

// PreferencesUpdate is a partial preferences write. Nil fields are left untouched by the store
type PreferencesUpdate struct {
	Games   *[]ID `json:"games,omitempty"`
	Leagues *[]ID `json:"leagues,omitempty"`
	Teams   *[]ID `json:"teams,omitempty"`
}

// IsEmpty reports whether the update carries no fields
func (u PreferencesUpdate) IsEmpty() bool {
	return u.Games == nil && u.Leagues == nil && u.Teams == nil
}

// Apply returns a copy of prefs with the supplied fields of the update replaced
func (u PreferencesUpdate) Apply(prefs Preferences) Preferences {
	if u.Games != nil {
		prefs.Games = append([]ID(nil), (*u.Games)...)
	}
	if u.Leagues != nil {
		prefs.Leagues = append([]ID(nil), (*u.Leagues)...)
	}
	if u.Teams != nil {
		prefs.Teams = append([]ID(nil), (*u.Teams)...)
	}
	return prefs
}

// Ledger maps a match id to the team id the user predicted to win it
type Ledger map[ID]ID

// Clone returns a copy of the ledger that is safe to hand out
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

// MatchIDs returns the ids of every match with a prediction
func (l Ledger) MatchIDs() []ID {
	ids := make([]ID, 0, len(l))
	for id := range l {
		ids = append(ids, id)
	}
	return ids
}

// PredictionStats is derived from a ledger and the finished matches it references. It is never stored
type PredictionStats struct {
	Total     int `json:"total"`
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
}

type Outcome string

const (
	OutcomePending   Outcome = "pending"
	OutcomeCorrect   Outcome = "correct"
	OutcomeIncorrect Outcome = "incorrect"
)

// HistoryEntry pairs a predicted match with the outcome of the prediction
type HistoryEntry struct {
	Match     Match   `json:"match"`
	Predicted ID      `json:"predicted"`
	Outcome   Outcome `json:"outcome"`
}
