package fixtures

import (
	"fmt"
	"testing"

	"github.com/courtmix/courtmix/internal/models"
)

func rosterOf(n int) []models.Entrant {
	out := make([]models.Entrant, n)
	for i := range out {
		out[i] = models.Entrant{ID: fmt.Sprintf("p%02d", i), Name: fmt.Sprintf("Player %d", i), Ordinal: i}
	}
	return out
}

func TestAmericanoAllSupportedCounts(t *testing.T) {
	gen := &AmericanoGenerator{}
	for n := americanoMinPlayers; n <= americanoMaxPlayers; n++ {
		t.Run(fmt.Sprintf("players_%d", n), func(t *testing.T) {
			ctx := Context{
				Config:   models.TournamentConfig{Format: models.FormatAmericano, CourtCount: n / 4},
				Entrants: rosterOf(n),
			}
			rounds, err := gen.GenerateAll(ctx)
			if err != nil {
				t.Fatalf("GenerateAll(%d): %v", n, err)
			}

			total := 0
			for _, r := range rounds {
				if len(r.Matches) > n/4 {
					t.Fatalf("round %d has %d matches for %d courts", r.RoundNumber, len(r.Matches), n/4)
				}
				seen := make(map[string]struct{})
				for _, m := range r.Matches {
					total++
					for _, id := range append(append([]string(nil), m.Team1...), m.Team2...) {
						if _, dup := seen[id]; dup {
							t.Fatalf("round %d double-books entrant %s", r.RoundNumber, id)
						}
						seen[id] = struct{}{}
					}
				}
				for _, id := range r.SittingOut {
					if _, playing := seen[id]; playing {
						t.Fatalf("round %d lists a playing entrant %s as sitting out", r.RoundNumber, id)
					}
				}
			}

			if want := len(americanoTable(n)); total != want {
				t.Fatalf("rounds cover %d fixtures, table has %d", total, want)
			}
		})
	}
}

func TestAmericanoTablePartnershipsUnique(t *testing.T) {
	for _, n := range []int{8, 11, 16, 24} {
		table := americanoTable(n)
		partners := make(map[[2]int]int)
		for _, f := range table {
			for _, pair := range [][2]int{{f[0], f[1]}, {f[2], f[3]}} {
				if pair[0] > pair[1] {
					pair[0], pair[1] = pair[1], pair[0]
				}
				partners[pair]++
				if partners[pair] > 1 {
					t.Fatalf("n=%d: players %d and %d partner twice", n, pair[0], pair[1])
				}
			}
		}
	}
}

func TestAmericanoRejectsOutOfRangeCounts(t *testing.T) {
	gen := &AmericanoGenerator{}
	if _, err := gen.GenerateAll(Context{Entrants: rosterOf(4)}); err == nil {
		t.Fatalf("expected error for 4 players")
	}
	if _, err := gen.GenerateAll(Context{Entrants: rosterOf(25)}); err == nil {
		t.Fatalf("expected error for 25 players")
	}
}

func TestGroupIntoTimeslotsRespectsCourtLimit(t *testing.T) {
	fixtures := []Fixture{
		{Team1: []string{"a", "b"}, Team2: []string{"c", "d"}},
		{Team1: []string{"e", "f"}, Team2: []string{"g", "h"}},
		{Team1: []string{"a", "e"}, Team2: []string{"b", "f"}},
	}
	slots := GroupIntoTimeslots(fixtures, 1)
	if len(slots) != 3 {
		t.Fatalf("one court forces one match per timeslot, got %d slots", len(slots))
	}

	slots = GroupIntoTimeslots(fixtures, 2)
	if len(slots) != 2 || len(slots[0]) != 2 {
		t.Fatalf("expected the two disjoint fixtures grouped first: %v", slots)
	}
}
