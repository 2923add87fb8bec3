/* models.go
 * This file contains the models used by the external package when decoding payloads from the match and news
 * providers. They mirror the upstream JSON and are converted into shared types by parser.go
 */

package external

import (
	"time"

	"e-network/api/shared"
)

type rawMatch struct {
	ID            *shared.ID    `json:"id"`
	Name          string        `json:"name"`
	BeginAt       *time.Time    `json:"begin_at"`
	ScheduledAt   *time.Time    `json:"scheduled_at"`
	Status        string        `json:"status"`
	LeagueID      shared.ID     `json:"league_id"`
	League        *rawNamed     `json:"league"`
	Videogame     *rawNamed     `json:"videogame"`
	Opponents     []rawOpponent `json:"opponents"`
	WinnerID      shared.ID     `json:"winner_id"`
	NumberOfGames int           `json:"number_of_games"`
	Streams       []rawStream   `json:"streams_list"`
}

type rawNamed struct {
	ID       shared.ID `json:"id"`
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	Acronym  string    `json:"acronym"`
	ImageURL string    `json:"image_url"`
}

type rawOpponent struct {
	Type     string    `json:"type"`
	Opponent *rawNamed `json:"opponent"`
}

type rawStream struct {
	Main     bool   `json:"main"`
	Language string `json:"language"`
	RawURL   string `json:"raw_url"`
}

type rawArticle struct {
	ID          *shared.ID `json:"id"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	Content     string     `json:"content"`
	URL         string     `json:"url"`
	ImageURL    string     `json:"image_url"`
	PublishedAt *time.Time `json:"published_at"`
}

type rawArticleList struct {
	Data []rawArticle `json:"data"`
}

// League is a competition as listed by the match provider
type League struct {
	ID       shared.ID `json:"id"`
	Name     string    `json:"name"`
	Slug     string    `json:"slug,omitempty"`
	ImageURL string    `json:"imageUrl,omitempty"`
}

// Team is an organisation as listed by the match provider
type Team struct {
	ID       shared.ID `json:"id"`
	Name     string    `json:"name"`
	Acronym  string    `json:"acronym,omitempty"`
	ImageURL string    `json:"imageUrl,omitempty"`
}

// Article is a normalised news item
type Article struct {
	ID          shared.ID `json:"id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
}

// RelayResponse is an upstream response passed through untouched by the proxy
type RelayResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}
