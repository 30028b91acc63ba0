package fixtures

import (
	"testing"

	"github.com/courtmix/courtmix/internal/engine/standings"
	"github.com/courtmix/courtmix/internal/models"
)

func TestMixServesRoundsFromTable(t *testing.T) {
	gen := &MixGenerator{}
	ctx := Context{
		Config:   models.TournamentConfig{Format: models.FormatMix, CourtCount: 2},
		Entrants: rosterOf(8),
	}
	if got := gen.PoolRounds(ctx); got != 3 {
		t.Fatalf("default 8-player table should have 3 pool rounds, got %d", got)
	}

	rounds, err := gen.GenerateAll(ctx)
	if err != nil {
		t.Fatalf("GenerateAll: %v", err)
	}
	for _, r := range rounds {
		if len(r.Matches) != 2 {
			t.Fatalf("round %d: want 2 matches, got %d", r.RoundNumber, len(r.Matches))
		}
		seen := make(map[string]struct{})
		for _, m := range r.Matches {
			for _, id := range append(append([]string(nil), m.Team1...), m.Team2...) {
				if _, dup := seen[id]; dup {
					t.Fatalf("round %d double-books %s", r.RoundNumber, id)
				}
				seen[id] = struct{}{}
			}
		}
		if len(seen) != 8 {
			t.Fatalf("round %d should use all 8 players, used %d", r.RoundNumber, len(seen))
		}
	}

	ctx.RoundNum = 4
	if _, err := gen.GenerateRound(ctx); err == nil {
		t.Fatalf("round past the table should fail")
	}
}

func TestMixRejectsUnknownPlayerCount(t *testing.T) {
	gen := &MixGenerator{}
	_, err := gen.GenerateAll(Context{Entrants: rosterOf(9)})
	if err == nil {
		t.Fatalf("9 players are not in the default table")
	}
}

func TestMixCustomTableWins(t *testing.T) {
	gen := &MixGenerator{}
	custom := MixTable{
		8: {{{Team1: [2]int{0, 1}, Team2: [2]int{2, 3}}}},
	}
	ctx := Context{Entrants: rosterOf(8), MixTable: custom, RoundNum: 1}
	round, err := gen.GenerateRound(ctx)
	if err != nil {
		t.Fatalf("GenerateRound: %v", err)
	}
	if len(round.Matches) != 1 {
		t.Fatalf("custom table should override the default, got %d matches", len(round.Matches))
	}
}

func seededTable(ids ...string) []standings.Standing {
	out := make([]standings.Standing, len(ids))
	for i, id := range ids {
		out[i] = standings.Standing{EntrantID: id, Rank: i + 1}
	}
	return out
}

func TestKnockoutSinglePoolSeeding(t *testing.T) {
	cfg := models.TournamentConfig{CourtCount: 4}
	round, err := SeedSinglePool(seededTable("s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8"), cfg)
	if err != nil {
		t.Fatalf("SeedSinglePool: %v", err)
	}
	want := [][2]string{{"s1", "s8"}, {"s4", "s5"}, {"s2", "s7"}, {"s3", "s6"}}
	for i, m := range round.Matches {
		if m.Team1[0] != want[i][0] || m.Team2[0] != want[i][1] {
			t.Fatalf("match %d: want %v, got %v vs %v", i, want[i], m.Team1, m.Team2)
		}
	}
}

func TestKnockoutCrossPoolSeeding(t *testing.T) {
	cfg := models.TournamentConfig{CourtCount: 4}
	round, err := SeedCrossPool(
		seededTable("a1", "a2", "a3", "a4"),
		seededTable("b1", "b2", "b3", "b4"), cfg)
	if err != nil {
		t.Fatalf("SeedCrossPool: %v", err)
	}
	want := [][2]string{{"a1", "b4"}, {"b1", "a4"}, {"a2", "b3"}, {"b2", "a3"}}
	for i, m := range round.Matches {
		if m.Team1[0] != want[i][0] || m.Team2[0] != want[i][1] {
			t.Fatalf("match %d: want %v, got %v vs %v", i, want[i], m.Team1, m.Team2)
		}
	}
}

func TestKnockoutProgression(t *testing.T) {
	cfg := models.TournamentConfig{FixedPoints: true, PointsPerMatch: 24, CourtCount: 2}
	semis := models.Round{
		RoundNumber: 2,
		Matches: []models.Match{
			played([]string{"s1"}, []string{"s4"}, 16, 8),
			played([]string{"s2"}, []string{"s3"}, 10, 14),
		},
	}

	final, err := NextKnockoutRound(semis, cfg, true)
	if err != nil {
		t.Fatalf("NextKnockoutRound: %v", err)
	}
	if len(final.Matches) != 2 {
		t.Fatalf("expected final plus third-place match, got %d", len(final.Matches))
	}
	if final.Matches[0].Team1[0] != "s1" || final.Matches[0].Team2[0] != "s3" {
		t.Fatalf("final should pair the winners, got %v vs %v",
			final.Matches[0].Team1, final.Matches[0].Team2)
	}
	if final.Matches[1].Team1[0] != "s4" || final.Matches[1].Team2[0] != "s2" {
		t.Fatalf("third place should pair the losers, got %v vs %v",
			final.Matches[1].Team1, final.Matches[1].Team2)
	}
}

func TestKnockoutRefusesIncompleteRound(t *testing.T) {
	cfg := models.TournamentConfig{}
	round := models.Round{Matches: []models.Match{
		{ID: "m1", Team1: []string{"s1"}, Team2: []string{"s2"}},
		{ID: "m2", Team1: []string{"s3"}, Team2: []string{"s4"}},
	}}
	if _, err := NextKnockoutRound(round, cfg, false); err == nil {
		t.Fatalf("unplayed matches cannot progress the bracket")
	}
}
