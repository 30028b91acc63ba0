// internal/engine/fixtures/americano.go
package fixtures

import (
	"fmt"

	"github.com/courtmix/courtmix/internal/models"
)

const (
	americanoMinPlayers = 5
	americanoMaxPlayers = 24
)

// AmericanoGenerator produces the complete rotating-partner schedule up
// front. Fixtures come from a fixed per-count table and are grouped
// into timeslots so no player is double-booked and no timeslot exceeds
// the available courts.
type AmericanoGenerator struct{}

func (g *AmericanoGenerator) Name() string { return "Americano" }

func (g *AmericanoGenerator) GenerateAll(ctx Context) ([]models.Round, error) {
	n := len(ctx.Entrants)
	if n < americanoMinPlayers {
		return nil, fmt.Errorf("%w: americano needs at least %d players, have %d",
			ErrInsufficientEntrants, americanoMinPlayers, n)
	}
	if n > americanoMaxPlayers {
		return nil, fmt.Errorf("%w: americano supports up to %d players, have %d",
			ErrUnsupportedEntrantCount, americanoMaxPlayers, n)
	}

	table := americanoTable(n)
	fixtures := make([]Fixture, len(table))
	for i, entry := range table {
		fixtures[i] = Fixture{
			Team1: []string{ctx.Entrants[entry[0]].ID, ctx.Entrants[entry[1]].ID},
			Team2: []string{ctx.Entrants[entry[2]].ID, ctx.Entrants[entry[3]].ID},
		}
	}

	courts := ctx.Config.CourtCount
	if courts < 1 {
		courts = n / 4
	}
	slots := GroupIntoTimeslots(fixtures, courts)

	rounds := make([]models.Round, len(slots))
	for i, slot := range slots {
		round := models.Round{RoundNumber: i + 1}
		playing := make(map[string]struct{})
		for j, f := range slot {
			round.Matches = append(round.Matches, newMatch(j+1, f.Team1, f.Team2))
			for _, id := range f.entrantIDs() {
				playing[id] = struct{}{}
			}
		}
		for _, e := range ctx.Entrants {
			if _, ok := playing[e.ID]; !ok {
				round.SittingOut = append(round.SittingOut, e.ID)
			}
		}
		rounds[i] = round
	}
	return rounds, nil
}

// GenerateRound returns one round of the up-front schedule. The whole
// americano table is deterministic, so regenerating it to pull a single
// round keeps the generator stateless.
func (g *AmericanoGenerator) GenerateRound(ctx Context) (*models.Round, error) {
	rounds, err := g.GenerateAll(ctx)
	if err != nil {
		return nil, err
	}
	if ctx.RoundNum < 1 || ctx.RoundNum > len(rounds) {
		return nil, fmt.Errorf("%w: round %d of %d", ErrNoSuchRound, ctx.RoundNum, len(rounds))
	}
	return &rounds[ctx.RoundNum-1], nil
}

// americanoTable enumerates the fixture table for n players as
// positions into the roster. Partnerships are drawn from a circle
// rotation so each player partners every other player at most once;
// consecutive partnerships within one rotation step meet as opponents.
func americanoTable(n int) [][4]int {
	slots := make([]int, n)
	for i := range slots {
		slots[i] = i
	}
	const bye = -1
	if n%2 == 1 {
		slots = append(slots, bye)
	}

	var table [][4]int
	size := len(slots)
	for round := 0; round < size-1; round++ {
		var pairs [][2]int
		for i := 0; i < size/2; i++ {
			a, b := slots[i], slots[size-1-i]
			if a == bye || b == bye {
				continue
			}
			pairs = append(pairs, [2]int{a, b})
		}
		for i := 0; i+1 < len(pairs); i += 2 {
			table = append(table, [4]int{
				pairs[i][0], pairs[i][1],
				pairs[i+1][0], pairs[i+1][1],
			})
		}
		rotateSlots(slots)
	}
	return table
}

// rotateSlots advances the circle: the first slot is fixed, the rest
// shift by one.
func rotateSlots(slots []int) {
	if len(slots) <= 2 {
		return
	}
	last := slots[len(slots)-1]
	copy(slots[2:], slots[1:len(slots)-1])
	slots[1] = last
}
