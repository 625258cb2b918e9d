// Package record defines the five JIFMA record kinds and their wire representation
package record

import (
	"fmt"
	"strings"
)

// Kind identifies one of the five resource kinds managed by the API
type Kind int

const (
	// KindNews is a published news item
	KindNews Kind = iota
	// KindGame is a scheduled or played game between two teams
	KindGame
	// KindTeam is a participating team
	KindTeam
	// KindSport is a sport modality
	KindSport
	// KindMedal is a team's medal tally
	KindMedal
)

var allKinds = []Kind{KindNews, KindGame, KindTeam, KindSport, KindMedal}

// Kinds returns every kind in canonical order
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// String returns the singular name of the kind
func (k Kind) String() string {
	switch k {
	case KindNews:
		return "news"
	case KindGame:
		return "game"
	case KindTeam:
		return "team"
	case KindSport:
		return "sport"
	case KindMedal:
		return "medal"
	default:
		return "unknown"
	}
}

// Collection returns the URL path segment used by the API for the kind
func (k Kind) Collection() string {
	switch k {
	case KindNews:
		return "news"
	case KindGame:
		return "games"
	case KindTeam:
		return "teams"
	case KindSport:
		return "sports"
	case KindMedal:
		return "medals"
	default:
		return ""
	}
}

// IDField returns the wire field that identifies a record of this kind.
// Medal tallies are keyed by their team.
func (k Kind) IDField() string {
	switch k {
	case KindNews:
		return "news_id"
	case KindGame:
		return "game_id"
	case KindTeam, KindMedal:
		return "team_id"
	case KindSport:
		return "sport_id"
	default:
		return ""
	}
}

// Label returns a human-readable title for the kind
func (k Kind) Label() string {
	switch k {
	case KindNews:
		return "News"
	case KindGame:
		return "Games"
	case KindTeam:
		return "Teams"
	case KindSport:
		return "Sports"
	case KindMedal:
		return "Medals"
	default:
		return "Unknown"
	}
}

// Valid reports whether k is one of the five known kinds
func (k Kind) Valid() bool {
	return k >= KindNews && k <= KindMedal
}

// ParseKind accepts either the singular or the collection name of a kind
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, k := range allKinds {
		if name == k.String() || name == k.Collection() {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown record kind %q (expected one of news, games, teams, sports, medals)", s)
}

// MarshalText implements encoding.TextMarshaler
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
