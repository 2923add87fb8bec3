/* catalog.go
 * Contains the curated list of popular games, leagues and organisations users can follow. The ids are the match
 * provider's ids
 */

package logic

import (
	"e-network/api/shared"
	"fmt"
)

// Catalog groups the entries a user can pick preferences from
type Catalog struct {
	Games         []Named `json:"games"`
	Leagues       []Named `json:"leagues"`
	Organisations []Named `json:"organisations"`
}

// Preference kinds accepted by Catalog.Candidates
const (
	KindGame   = "game"
	KindLeague = "league"
	KindTeam   = "team"
)

// DefaultCatalog returns the built in catalog
func DefaultCatalog() Catalog {
	return Catalog{
		Games: []Named{
			{ID: "1", Name: "League of Legends"},
			{ID: "26", Name: "Valorant"},
			{ID: "3", Name: "Dota 2"},
			{ID: "4", Name: "Counter-Strike"},
			{ID: "2", Name: "Overwatch"},
			{ID: "10", Name: "Rocket League"},
			{ID: "14", Name: "Rainbow Six Siege"},
			{ID: "22", Name: "Apex Legends"},
			{ID: "35", Name: "Call of Duty: Modern Warfare"},
			{ID: "29", Name: "StarCraft II"},
			{ID: "9", Name: "Hearthstone"},
			{ID: "13", Name: "PUBG"},
			{ID: "36", Name: "Street Fighter V"},
			{ID: "32", Name: "Tekken 7"},
			{ID: "25", Name: "Super Smash Bros. Ultimate"},
			{ID: "28", Name: "Fortnite"},
			{ID: "23", Name: "Arena of Valor"},
			{ID: "30", Name: "Teamfight Tactics"},
			{ID: "31", Name: "Magic: The Gathering Arena"},
			{ID: "24", Name: "Free Fire"},
		},
		Leagues: []Named{
			{ID: "4198", Name: "LEC"},
			{ID: "4197", Name: "LCS"},
			{ID: "293", Name: "LCK"},
			{ID: "294", Name: "LPL"},
			{ID: "4331", Name: "VCT Americas"},
			{ID: "4332", Name: "VCT EMEA"},
			{ID: "4333", Name: "VCT Pacific"},
			{ID: "4473", Name: "VCT China"},
			{ID: "4259", Name: "The International"},
			{ID: "4260", Name: "ESL One"},
			{ID: "4243", Name: "BLAST Premier"},
			{ID: "4152", Name: "Intel Extreme Masters"},
			{ID: "4208", Name: "Overwatch League"},
			{ID: "4252", Name: "Rocket League Championship Series"},
			{ID: "4248", Name: "Six Invitational"},
			{ID: "4395", Name: "Apex Legends Global Series"},
			{ID: "4209", Name: "Call of Duty League"},
			{ID: "4249", Name: "Evolution Championship Series"},
			{ID: "4160", Name: "PUBG Global Championship"},
			{ID: "4172", Name: "Free Fire World Series"},
		},
		Organisations: []Named{
			{ID: "10", Name: "Team Liquid"},
			{ID: "3", Name: "Fnatic"},
			{ID: "1", Name: "G2 Esports"},
			{ID: "2", Name: "Cloud9"},
			{ID: "7", Name: "T1"},
			{ID: "602", Name: "Natus Vincere"},
			{ID: "8", Name: "Team SoloMid"},
			{ID: "15", Name: "FaZe Clan"},
			{ID: "5", Name: "Evil Geniuses"},
			{ID: "12", Name: "100 Thieves"},
			{ID: "6", Name: "Team Secret"},
			{ID: "4", Name: "Virtus.pro"},
			{ID: "9", Name: "OG"},
			{ID: "16", Name: "Sentinels"},
			{ID: "11", Name: "NRG Esports"},
			{ID: "39", Name: "Gen.G"},
			{ID: "18", Name: "Ninjas in Pyjamas"},
			{ID: "30", Name: "Paper Rex"},
			{ID: "25", Name: "LOUD"},
			{ID: "13", Name: "Astralis"},
		},
	}
}

// Candidates returns the entries for a preference kind
func (c Catalog) Candidates(kind string) ([]Named, error) {
	switch kind {
	case KindGame:
		return c.Games, nil
	case KindLeague:
		return c.Leagues, nil
	case KindTeam:
		return c.Organisations, nil
	default:
		return nil, fmt.Errorf("unknown preference kind: %s", kind)
	}
}

// NameOf looks up the display name of an id for a preference kind, falling back to the id itself
func (c Catalog) NameOf(kind string, id shared.ID) string {
	entries, err := c.Candidates(kind)
	if err != nil {
		return id.String()
	}
	for _, e := range entries {
		if e.ID == id {
			return e.Name
		}
	}
	return id.String()
}
