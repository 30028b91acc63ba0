// internal/engine/fixtures/league.go
package fixtures

import (
	"fmt"

	"github.com/courtmix/courtmix/internal/models"
)

// LeagueGenerator builds a classic circle-method round robin over fixed
// teams. With an even team count it yields N-1 rounds; an odd count
// gets a rotating bye and N rounds, each team sitting out exactly once.
type LeagueGenerator struct{}

func (g *LeagueGenerator) Name() string { return "League" }

func (g *LeagueGenerator) GenerateAll(ctx Context) ([]models.Round, error) {
	if len(ctx.Entrants) < 2 {
		return nil, fmt.Errorf("%w: league needs at least 2 teams, have %d",
			ErrInsufficientEntrants, len(ctx.Entrants))
	}

	working := make([]*models.Entrant, 0, len(ctx.Entrants)+1)
	for i := range ctx.Entrants {
		working = append(working, &ctx.Entrants[i])
	}
	if len(working)%2 == 1 {
		working = append(working, nil) // bye slot
	}

	roundCount := len(working) - 1
	rounds := make([]models.Round, 0, roundCount)
	for r := 0; r < roundCount; r++ {
		round := models.Round{RoundNumber: r + 1}
		court := 0
		for i := 0; i < len(working)/2; i++ {
			home := working[i]
			away := working[len(working)-1-i]
			if home == nil || away == nil {
				byed := home
				if byed == nil {
					byed = away
				}
				round.SittingOut = append(round.SittingOut, byed.ID)
				continue
			}
			if i == 0 && r%2 == 1 {
				home, away = away, home
			}
			round.Matches = append(round.Matches,
				newMatch(courtFor(court, ctx.Config.CourtCount), []string{home.ID}, []string{away.ID}))
			court++
		}
		rounds = append(rounds, round)
		rotateEntrants(working)
	}
	return rounds, nil
}

func (g *LeagueGenerator) GenerateRound(ctx Context) (*models.Round, error) {
	rounds, err := g.GenerateAll(ctx)
	if err != nil {
		return nil, err
	}
	if ctx.RoundNum < 1 || ctx.RoundNum > len(rounds) {
		return nil, fmt.Errorf("%w: round %d of %d", ErrNoSuchRound, ctx.RoundNum, len(rounds))
	}
	return &rounds[ctx.RoundNum-1], nil
}

func rotateEntrants(teams []*models.Entrant) {
	if len(teams) <= 2 {
		return
	}
	last := teams[len(teams)-1]
	copy(teams[2:], teams[1:len(teams)-1])
	teams[1] = last
}
