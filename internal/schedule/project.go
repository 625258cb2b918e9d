// Package schedule groups games by calendar day and lists finished results
package schedule

import (
	"slices"
	"time"

	"github.com/jifma-project/jifmactl/internal/record"
)

// DefaultTimezone is the zone the tournament takes place in
const DefaultTimezone = "America/Fortaleza"

// Filter selects games by sport name and status; empty or "all" disables a filter
type Filter struct {
	Sport  string
	Status string
}

// Options tune how games are projected
type Options struct {
	// Location is the display zone calendar days are taken in; nil means time.Local
	Location *time.Location
	// SportNames resolves sport ids for games the API returned without a sport_name
	SportNames map[record.ID]string
}

// Day is the games of one calendar date, in input order
type Day struct {
	Date  time.Time
	Games []record.Game
}

// Schedule is the projected game list
type Schedule struct {
	Days []Day
	// FellBack is set when the sport filter matched nothing and was dropped
	FellBack bool
}

// Len returns the number of games across all days
func (s Schedule) Len() int {
	n := 0
	for _, d := range s.Days {
		n += len(d.Games)
	}
	return n
}

// Project filters games and groups them by calendar day, earliest day first. When the
// sport filter matches no game at all it is ignored and FellBack is set.
func Project(games []record.Game, f Filter, opts Options) Schedule {
	bySport, fellBack := filterSport(games, f.Sport, opts.SportNames)

	passing := make([]record.Game, 0, len(bySport))
	for _, g := range bySport {
		if statusMatches(g.Status, f.Status) {
			passing = append(passing, g)
		}
	}

	return Schedule{Days: groupByDay(passing, opts.location()), FellBack: fellBack}
}

// Results returns the finished games, most recent first, with the same sport filter
// fallback as Project.
func Results(games []record.Game, sport string, opts Options) ([]record.Game, bool) {
	finished := make([]record.Game, 0, len(games))
	for _, g := range games {
		if g.Status.Is(record.StatusFinished) {
			finished = append(finished, g)
		}
	}

	out, fellBack := filterSport(finished, sport, opts.SportNames)
	loc := opts.location()
	slices.SortStableFunc(out, func(a, b record.Game) int {
		return b.GameDate.In(loc).Compare(a.GameDate.In(loc))
	})
	return out, fellBack
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.Local
	}
	return o.Location
}

func filterSport(games []record.Game, sport string, names map[record.ID]string) ([]record.Game, bool) {
	if isAll(sport) {
		return slices.Clone(games), false
	}

	matched := make([]record.Game, 0, len(games))
	for _, g := range games {
		if nameMatches(SportName(g, names), sport) {
			matched = append(matched, g)
		}
	}
	if len(matched) == 0 {
		return slices.Clone(games), true
	}
	return matched, false
}

func statusMatches(status record.GameStatus, filter string) bool {
	if isAll(filter) {
		return true
	}
	return fold(string(status)) == fold(filter)
}

// SportName returns the sport of g, preferring the name the API denormalized
func SportName(g record.Game, names map[record.ID]string) string {
	if g.SportName != "" {
		return g.SportName
	}
	return names[g.SportID]
}

func groupByDay(games []record.Game, loc *time.Location) []Day {
	index := make(map[time.Time]int)
	var days []Day
	for _, g := range games {
		date := g.GameDate.Date(loc)
		i, ok := index[date]
		if !ok {
			i = len(days)
			index[date] = i
			days = append(days, Day{Date: date})
		}
		days[i].Games = append(days[i].Games, g)
	}

	slices.SortStableFunc(days, func(a, b Day) int {
		return a.Date.Compare(b.Date)
	})
	return days
}

// FromRecords extracts the games of a mixed record list
func FromRecords(records []record.Record) []record.Game {
	out := make([]record.Game, 0, len(records))
	for _, rec := range records {
		if g, ok := rec.(record.Game); ok {
			out = append(out, g)
		}
	}
	return out
}

// SportIndex maps sport ids to names
func SportIndex(records []record.Record) map[record.ID]string {
	out := make(map[record.ID]string)
	for _, rec := range records {
		if s, ok := rec.(record.Sport); ok {
			out[s.ID] = s.Name
		}
	}
	return out
}
