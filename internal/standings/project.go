// Package standings ranks medal tallies
package standings

import (
	"cmp"
	"slices"

	"github.com/jifma-project/jifmactl/internal/record"
)

// Standing is a tally with its derived position, 1-based
type Standing struct {
	Rank  int
	Tally record.MedalTally
}

// compare orders tallies by gold, then silver, then bronze, all descending
func compare(a, b record.MedalTally) int {
	return cmp.Or(
		cmp.Compare(b.Gold, a.Gold),
		cmp.Compare(b.Silver, a.Silver),
		cmp.Compare(b.Bronze, a.Bronze),
	)
}

// Project ranks tallies. Equal tallies keep their input order and the input slice is
// left untouched.
func Project(tallies []record.MedalTally) []Standing {
	sorted := slices.Clone(tallies)
	slices.SortStableFunc(sorted, compare)

	out := make([]Standing, len(sorted))
	for i, t := range sorted {
		out[i] = Standing{Rank: i + 1, Tally: t}
	}
	return out
}

// podiumOrder is the left-to-right placement of ranks on the podium
var podiumOrder = []int{2, 1, 3}

// Podium arranges the top three of ranked for display: second place on the left, first
// in the centre, third on the right. Ranks missing from ranked are skipped.
func Podium(ranked []Standing) []Standing {
	out := make([]Standing, 0, len(podiumOrder))
	for _, rank := range podiumOrder {
		if rank <= len(ranked) {
			out = append(out, ranked[rank-1])
		}
	}
	return out
}

// FromRecords extracts the medal tallies of a mixed record list
func FromRecords(records []record.Record) []record.MedalTally {
	out := make([]record.MedalTally, 0, len(records))
	for _, rec := range records {
		if t, ok := rec.(record.MedalTally); ok {
			out = append(out, t)
		}
	}
	return out
}
