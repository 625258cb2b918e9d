package admin

import (
	"fmt"
	"strings"

	"github.com/jifma-project/jifmactl/internal/record"
)

// Section is the administrative view currently selected
type Section int

const (
	SectionDashboard Section = iota
	SectionNews
	SectionGames
	SectionTeams
	SectionSports
	SectionMedals
	SectionSettings
)

var sectionNames = map[Section]string{
	SectionDashboard: "dashboard",
	SectionNews:      "news",
	SectionGames:     "games",
	SectionTeams:     "teams",
	SectionSports:    "sports",
	SectionMedals:    "medals",
	SectionSettings:  "settings",
}

// Sections returns every section in menu order
func Sections() []Section {
	return []Section{
		SectionDashboard, SectionNews, SectionGames, SectionTeams,
		SectionSports, SectionMedals, SectionSettings,
	}
}

func (s Section) String() string {
	if name, ok := sectionNames[s]; ok {
		return name
	}
	return "unknown"
}

// Kinds returns the collections loaded when the section is selected
func (s Section) Kinds() []record.Kind {
	switch s {
	case SectionDashboard:
		return record.Kinds()
	case SectionNews:
		return []record.Kind{record.KindNews}
	case SectionGames:
		return []record.Kind{record.KindGame}
	case SectionTeams:
		return []record.Kind{record.KindTeam}
	case SectionSports:
		return []record.Kind{record.KindSport}
	case SectionMedals:
		return []record.Kind{record.KindMedal}
	default:
		return nil
	}
}

// SectionFor returns the section listing records of kind
func SectionFor(kind record.Kind) Section {
	switch kind {
	case record.KindNews:
		return SectionNews
	case record.KindGame:
		return SectionGames
	case record.KindTeam:
		return SectionTeams
	case record.KindSport:
		return SectionSports
	case record.KindMedal:
		return SectionMedals
	default:
		return SectionDashboard
	}
}

// ParseSection resolves a section name; kind names in either number are accepted too
func ParseSection(s string) (Section, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for sec, n := range sectionNames {
		if n == name {
			return sec, nil
		}
	}
	if kind, err := record.ParseKind(name); err == nil {
		return SectionFor(kind), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSection, s)
}
