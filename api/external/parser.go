/* parser.go
 * Contains the functions that turn provider payloads into shared types. Payloads that do not have the expected
 * shape are reported as shared.ErrUpstreamUnavailable
 */

package external

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"e-network/api/shared"
)

// ParseMatches decodes a JSON array of matches.
// Preconditions: Receives the raw response body of a match list endpoint
// Postconditions: Returns the matches in payload order. Entries with no id or no begin time are skipped. Returns
// an error wrapping shared.ErrUpstreamUnavailable if the body is not a JSON array of objects
func ParseMatches(body []byte) ([]shared.Match, error) {
	var raw []rawMatch
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: malformed match list: %v", shared.ErrUpstreamUnavailable, err)
	}

	matches := make([]shared.Match, 0, len(raw))
	for _, r := range raw {
		m, ok := convertMatch(r)
		if !ok {
			continue
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// ParseMatch decodes a single match object
func ParseMatch(body []byte) (*shared.Match, error) {
	var raw rawMatch
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: malformed match: %v", shared.ErrUpstreamUnavailable, err)
	}
	m, ok := convertMatch(raw)
	if !ok {
		return nil, fmt.Errorf("%w: match is missing an id or begin time", shared.ErrUpstreamUnavailable)
	}
	return &m, nil
}

func convertMatch(r rawMatch) (shared.Match, bool) {
	if r.ID == nil || *r.ID == "" {
		return shared.Match{}, false
	}
	begin := r.BeginAt
	if begin == nil {
		begin = r.ScheduledAt
	}
	if begin == nil || begin.IsZero() {
		return shared.Match{}, false
	}

	m := shared.Match{
		ID:            *r.ID,
		Name:          r.Name,
		BeginAt:       begin.UTC(),
		Status:        r.Status,
		LeagueID:      r.LeagueID,
		WinnerID:      r.WinnerID,
		NumberOfGames: r.NumberOfGames,
		StreamURL:     mainStream(r.Streams),
	}
	if r.League != nil {
		if m.LeagueID == "" {
			m.LeagueID = r.League.ID
		}
		m.LeagueName = r.League.Name
	}
	if r.Videogame != nil {
		m.VideogameID = r.Videogame.ID
		m.VideogameName = r.Videogame.Name
	}

	// Slots beyond the first two are ignored, missing ones stay TBD
	for i := 0; i < len(r.Opponents) && i < len(m.Opponents); i++ {
		o := r.Opponents[i].Opponent
		if o == nil {
			continue
		}
		m.Opponents[i] = shared.Opponent{TeamID: o.ID, Name: o.Name, ImageURL: o.ImageURL}
	}
	return m, true
}

func mainStream(streams []rawStream) string {
	for _, s := range streams {
		if s.Main && s.RawURL != "" {
			return s.RawURL
		}
	}
	for _, s := range streams {
		if s.RawURL != "" {
			return s.RawURL
		}
	}
	return ""
}

// ParseLeagues decodes a JSON array of leagues, skipping entries without an id
func ParseLeagues(body []byte) ([]League, error) {
	var raw []rawNamed
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: malformed league list: %v", shared.ErrUpstreamUnavailable, err)
	}
	leagues := make([]League, 0, len(raw))
	for _, r := range raw {
		if r.ID == "" {
			continue
		}
		leagues = append(leagues, League{ID: r.ID, Name: r.Name, Slug: r.Slug, ImageURL: r.ImageURL})
	}
	return leagues, nil
}

// ParseTeams decodes a JSON array of teams, skipping entries without an id
func ParseTeams(body []byte) ([]Team, error) {
	var raw []rawNamed
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: malformed team list: %v", shared.ErrUpstreamUnavailable, err)
	}
	teams := make([]Team, 0, len(raw))
	for _, r := range raw {
		if r.ID == "" {
			continue
		}
		teams = append(teams, Team{ID: r.ID, Name: r.Name, Acronym: r.Acronym, ImageURL: r.ImageURL})
	}
	return teams, nil
}

// ParseArticles decodes the news provider's {"data": [...]} envelope. Articles are returned newest first with
// HTML removed from their summaries
func ParseArticles(body []byte) ([]Article, error) {
	var list rawArticleList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("%w: malformed article list: %v", shared.ErrUpstreamUnavailable, err)
	}

	articles := make([]Article, 0, len(list.Data))
	for _, r := range list.Data {
		if r.ID == nil || *r.ID == "" || r.Title == "" {
			continue
		}
		summary := r.Summary
		if summary == "" {
			summary = r.Content
		}
		a := Article{
			ID:       *r.ID,
			Title:    strings.TrimSpace(r.Title),
			Summary:  StripHTML(summary),
			URL:      r.URL,
			ImageURL: r.ImageURL,
		}
		if r.PublishedAt != nil {
			a.PublishedAt = r.PublishedAt.UTC()
		}
		articles = append(articles, a)
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
	return articles, nil
}

// StripHTML returns the text content of an HTML fragment with whitespace collapsed
func StripHTML(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.Join(strings.Fields(fragment), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
