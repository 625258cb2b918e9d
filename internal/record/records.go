package record

import (
	"fmt"
	"strings"
)

// Placeholder is rendered wherever a reference resolves to nothing
const Placeholder = "—"

// Record is implemented by all five record kinds
type Record interface {
	Kind() Kind
	RecordID() ID
}

// GameStatus is the lifecycle state of a game as sent on the wire
type GameStatus string

const (
	StatusScheduled  GameStatus = "Agendado"
	StatusInProgress GameStatus = "Em Andamento"
	StatusFinished   GameStatus = "Finalizado"
)

// Statuses lists the known statuses in lifecycle order
func Statuses() []GameStatus {
	return []GameStatus{StatusScheduled, StatusInProgress, StatusFinished}
}

// Is compares statuses ignoring case and the underscore slug form ("em_andamento")
func (s GameStatus) Is(other GameStatus) bool {
	return statusKey(s) == statusKey(other)
}

func statusKey(s GameStatus) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(string(s))), "_", " ")
}

// SportType classifies a sport as individual or team-based
type SportType string

const (
	SportIndividual SportType = "Individual"
	SportCollective SportType = "Coletiva"
)

// NewsItem is a published news article
type NewsItem struct {
	ID              ID        `json:"news_id"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	Author          string    `json:"author"`
	PublicationDate Timestamp `json:"publication_date"`
	ImageURL        string    `json:"image_url,omitempty"`
	Tags            []string  `json:"tags,omitempty"`
}

func (NewsItem) Kind() Kind     { return KindNews }
func (n NewsItem) RecordID() ID { return n.ID }

// Matches reports whether term occurs in the title or content, ignoring case
func (n NewsItem) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(n.Title), term) ||
		strings.Contains(strings.ToLower(n.Content), term)
}

// Team is a participating team
type Team struct {
	ID      ID     `json:"team_id"`
	Name    string `json:"name"`
	City    string `json:"city,omitempty"`
	LogoURL string `json:"logo_url,omitempty"`
}

func (Team) Kind() Kind     { return KindTeam }
func (t Team) RecordID() ID { return t.ID }

// Sport is a sport modality
type Sport struct {
	ID          ID        `json:"sport_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Type        SportType `json:"type,omitempty"`
}

func (Sport) Kind() Kind     { return KindSport }
func (s Sport) RecordID() ID { return s.ID }

// Game is a match between two teams. SportName and the team names are denormalized by
// the API on read and are not sent back on write.
type Game struct {
	ID           ID         `json:"game_id"`
	SportID      ID         `json:"sport_id"`
	TeamAID      ID         `json:"team_a_id"`
	TeamBID      ID         `json:"team_b_id"`
	GameDate     Timestamp  `json:"game_date"`
	Location     string     `json:"location,omitempty"`
	Status       GameStatus `json:"status"`
	ScoreA       *int       `json:"score_a"`
	ScoreB       *int       `json:"score_b"`
	WinnerTeamID ID         `json:"winner_team_id,omitempty"`
	SportName    string     `json:"sport_name,omitempty"`
	TeamAName    string     `json:"team_a_name,omitempty"`
	TeamBName    string     `json:"team_b_name,omitempty"`
}

func (Game) Kind() Kind     { return KindGame }
func (g Game) RecordID() ID { return g.ID }

// HasScore reports whether the scores are meaningful: the game has started and
// both scores are present.
func (g Game) HasScore() bool {
	return !g.Status.Is(StatusScheduled) && g.ScoreA != nil && g.ScoreB != nil
}

// ScoreLine renders "a x b", with "_" for scores that are not meaningful
func (g Game) ScoreLine() string {
	if !g.HasScore() {
		return "_ x _"
	}
	return fmt.Sprintf("%d x %d", *g.ScoreA, *g.ScoreB)
}

// Matchup renders "A vs B" using the denormalized names or the placeholder
func (g Game) Matchup() string {
	return fmt.Sprintf("%s vs %s", orPlaceholder(g.TeamAName), orPlaceholder(g.TeamBName))
}

// MedalTally is a team's accumulated medal counts. Total is the server's figure and is
// not recomputed from the individual counts.
type MedalTally struct {
	TeamID   ID     `json:"team_id"`
	TeamName string `json:"team_name,omitempty"`
	Gold     int    `json:"gold_medals"`
	Silver   int    `json:"silver_medals"`
	Bronze   int    `json:"bronze_medals"`
	Total    int    `json:"total_medals"`
}

func (MedalTally) Kind() Kind     { return KindMedal }
func (m MedalTally) RecordID() ID { return m.TeamID }

// CountsAgree reports whether Total equals Gold+Silver+Bronze
func (m MedalTally) CountsAgree() bool {
	return m.Total == m.Gold+m.Silver+m.Bronze
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}

// NameOr returns name, or the placeholder when it is empty
func NameOr(name string) string {
	return orPlaceholder(name)
}
