package fixtures

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/courtmix/courtmix/internal/models"
)

func intp(v int) *int { return &v }

func played(t1, t2 []string, s1, s2 int) models.Match {
	return models.Match{
		ID: models.NewID(), Team1: t1, Team2: t2,
		Score1: intp(s1), Score2: intp(s2), Completed: true,
	}
}

func namedRoster(ids ...string) []models.Entrant {
	out := make([]models.Entrant, len(ids))
	for i, id := range ids {
		out[i] = models.Entrant{ID: id, Name: id, Ordinal: i}
	}
	return out
}

func TestMexicanoFirstRoundShuffles(t *testing.T) {
	gen := &MexicanoGenerator{}
	cfg := models.TournamentConfig{Format: models.FormatMexicano, Mode: models.ModeIndividual, CourtCount: 2}
	roster := namedRoster("a", "b", "c", "d", "e", "f", "g", "h")

	layouts := make(map[string]struct{})
	for seed := int64(0); seed < 10; seed++ {
		round, err := gen.GenerateRound(Context{
			Config: cfg, Entrants: roster, RoundNum: 1,
			Rand: rand.New(rand.NewSource(seed)),
		})
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if len(round.Matches) != 2 {
			t.Fatalf("seed %d: expected 2 matches, got %d", seed, len(round.Matches))
		}
		layout := ""
		for _, m := range round.Matches {
			layout += fmt.Sprintf("%v|%v;", m.Team1, m.Team2)
		}
		layouts[layout] = struct{}{}
	}
	if len(layouts) < 2 {
		t.Fatalf("ten different seeds all produced the same pairing")
	}
}

func TestMexicanoLaterRoundsPairByStandings(t *testing.T) {
	gen := &MexicanoGenerator{}
	cfg := models.TournamentConfig{
		Format: models.FormatMexicano, Mode: models.ModeIndividual,
		CourtCount: 2, FixedPoints: true, PointsPerMatch: 24,
	}
	roster := namedRoster("a", "b", "c", "d", "e", "f", "g", "h")

	// Round 1 results force the standings order a,b,c,d,e,f,g,h.
	prior := []models.Round{{
		RoundNumber: 1,
		Matches: []models.Match{
			played([]string{"a"}, []string{"h"}, 24, 0),
			played([]string{"b"}, []string{"g"}, 23, 1),
			played([]string{"c"}, []string{"f"}, 22, 2),
			played([]string{"d"}, []string{"e"}, 21, 3),
		},
	}}

	round, err := gen.GenerateRound(Context{Config: cfg, Entrants: roster, Rounds: prior, RoundNum: 2})
	if err != nil {
		t.Fatalf("GenerateRound: %v", err)
	}
	if len(round.Matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(round.Matches))
	}

	assertTeams := func(m models.Match, t1, t2 []string) {
		t.Helper()
		if fmt.Sprintf("%v", m.Team1) != fmt.Sprintf("%v", t1) ||
			fmt.Sprintf("%v", m.Team2) != fmt.Sprintf("%v", t2) {
			t.Fatalf("expected %v vs %v, got %v vs %v", t1, t2, m.Team1, m.Team2)
		}
	}
	// Cross pairing within rank blocks: 1&3 v 2&4, then 5&7 v 6&8.
	assertTeams(round.Matches[0], []string{"a", "c"}, []string{"b", "d"})
	assertTeams(round.Matches[1], []string{"e", "g"}, []string{"f", "h"})
}

func TestMexicanoRemainderSitsOut(t *testing.T) {
	gen := &MexicanoGenerator{}
	cfg := models.TournamentConfig{Format: models.FormatMexicano, Mode: models.ModeIndividual, CourtCount: 2}
	roster := namedRoster("a", "b", "c", "d", "e", "f", "g", "h", "i")

	round, err := gen.GenerateRound(Context{
		Config: cfg, Entrants: roster, RoundNum: 1,
		Rand: rand.New(rand.NewSource(42)),
	})
	if err != nil {
		t.Fatalf("GenerateRound: %v", err)
	}
	if len(round.Matches) != 2 || len(round.SittingOut) != 1 {
		t.Fatalf("9 players on 2 courts should play 2 matches with 1 sitting out, got %d/%d",
			len(round.Matches), len(round.SittingOut))
	}
}

func TestMexicanoTeamModePairsAdjacentRanks(t *testing.T) {
	gen := &MexicanoGenerator{}
	cfg := models.TournamentConfig{Format: models.FormatMexicano, Mode: models.ModeTeam, CourtCount: 2}
	roster := namedRoster("t1", "t2", "t3", "t4")

	prior := []models.Round{{
		RoundNumber: 1,
		Matches: []models.Match{
			played([]string{"t1"}, []string{"t4"}, 20, 4),
			played([]string{"t2"}, []string{"t3"}, 18, 6),
		},
	}}
	round, err := gen.GenerateRound(Context{Config: cfg, Entrants: roster, Rounds: prior, RoundNum: 2})
	if err != nil {
		t.Fatalf("GenerateRound: %v", err)
	}
	if round.Matches[0].Team1[0] != "t1" || round.Matches[0].Team2[0] != "t2" {
		t.Fatalf("top block should pair ranks 1 and 2, got %v vs %v",
			round.Matches[0].Team1, round.Matches[0].Team2)
	}
	if round.Matches[1].Team1[0] != "t3" || round.Matches[1].Team2[0] != "t4" {
		t.Fatalf("bottom block should pair ranks 3 and 4, got %v vs %v",
			round.Matches[1].Team1, round.Matches[1].Team2)
	}
}

func TestMexicanoRejectsTooFewEntrants(t *testing.T) {
	gen := &MexicanoGenerator{}
	_, err := gen.GenerateRound(Context{
		Config:   models.TournamentConfig{Mode: models.ModeIndividual},
		Entrants: namedRoster("a", "b", "c"),
		RoundNum: 1,
	})
	if err == nil {
		t.Fatalf("3 individuals cannot form a doubles match")
	}
	_, err = gen.GenerateRound(Context{
		Config:   models.TournamentConfig{Mode: models.ModeTeam},
		Entrants: namedRoster("t1"),
		RoundNum: 1,
	})
	if err == nil {
		t.Fatalf("1 team cannot form a match")
	}
}
