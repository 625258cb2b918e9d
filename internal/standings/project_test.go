package standings

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jifma-project/jifmactl/internal/record"
)

func tally(id string, gold, silver, bronze int) record.MedalTally {
	return record.MedalTally{
		TeamID: record.ID(id),
		Gold:   gold,
		Silver: silver,
		Bronze: bronze,
		Total:  gold + silver + bronze,
	}
}

func ids(standings []Standing) []record.ID {
	out := make([]record.ID, len(standings))
	for i, s := range standings {
		out[i] = s.Tally.TeamID
	}
	return out
}

func TestProject_SilverBreaksGoldTie(t *testing.T) {
	got := Project([]record.MedalTally{tally("a", 2, 1, 0), tally("b", 2, 2, 0)})

	assert.Equal(t, []record.ID{"b", "a"}, ids(got))
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, 2, got[1].Rank)
}

func TestProject_EqualTalliesKeepInputOrder(t *testing.T) {
	got := Project([]record.MedalTally{
		tally("x", 1, 0, 0),
		tally("y", 3, 0, 0),
		tally("z", 1, 0, 0),
		tally("w", 1, 0, 0),
	})
	assert.Equal(t, []record.ID{"y", "x", "z", "w"}, ids(got))
}

func TestProject_DoesNotMutateInput(t *testing.T) {
	in := []record.MedalTally{tally("a", 0, 0, 1), tally("b", 1, 0, 0)}
	_ = Project(in)
	assert.Equal(t, record.ID("a"), in[0].TeamID)
}

func TestProject_TrustsServerTotal(t *testing.T) {
	odd := record.MedalTally{TeamID: "a", Gold: 1, Total: 7}
	got := Project([]record.MedalTally{odd})
	assert.Equal(t, 7, got[0].Tally.Total)
	assert.False(t, got[0].Tally.CountsAgree())
}

func TestProject_AdjacentPairsOrdered(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for round := 0; round < 200; round++ {
		n := rng.IntN(12)
		in := make([]record.MedalTally, n)
		for i := range in {
			in[i] = tally(string(rune('a'+i)), rng.IntN(3), rng.IntN(3), rng.IntN(3))
		}

		got := Project(in)
		require.Len(t, got, n)
		for i := 1; i < len(got); i++ {
			a, b := got[i-1].Tally, got[i].Tally
			ok := a.Gold > b.Gold ||
				(a.Gold == b.Gold && a.Silver > b.Silver) ||
				(a.Gold == b.Gold && a.Silver == b.Silver && a.Bronze >= b.Bronze)
			assert.True(t, ok, "round %d: %+v before %+v", round, a, b)
			assert.Equal(t, i+1, got[i].Rank)
		}
	}
}

func TestPodium(t *testing.T) {
	ranked := Project([]record.MedalTally{
		tally("third", 1, 0, 0),
		tally("first", 3, 0, 0),
		tally("second", 2, 0, 0),
		tally("fourth", 0, 5, 0),
	})

	podium := Podium(ranked)
	assert.Equal(t, []record.ID{"second", "first", "third"}, ids(podium))
	assert.Equal(t, []int{2, 1, 3}, []int{podium[0].Rank, podium[1].Rank, podium[2].Rank})
}

func TestPodium_ShortInput(t *testing.T) {
	assert.Empty(t, Podium(nil))

	one := Podium(Project([]record.MedalTally{tally("only", 1, 0, 0)}))
	assert.Equal(t, []record.ID{"only"}, ids(one))

	two := Podium(Project([]record.MedalTally{tally("a", 1, 0, 0), tally("b", 2, 0, 0)}))
	assert.Equal(t, []record.ID{"a", "b"}, ids(two))
}

func TestFromRecords(t *testing.T) {
	got := FromRecords([]record.Record{tally("a", 1, 0, 0), record.Team{ID: "t"}})
	assert.Len(t, got, 1)
}
