// internal/engine/fixtures/mexicano.go
package fixtures

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/courtmix/courtmix/internal/engine/standings"
	"github.com/courtmix/courtmix/internal/models"
)

// MexicanoGenerator pairs by current rank. Round 1 is a random shuffle;
// every later round re-pairs from the standings so entrants always face
// opponents of similar strength.
type MexicanoGenerator struct{}

func (g *MexicanoGenerator) Name() string { return "Mexicano" }

// blockSize is the number of entrants consumed per match: four
// individuals form one doubles match, two teams form one team match.
func (g *MexicanoGenerator) blockSize(mode models.Mode) int {
	if mode == models.ModeTeam {
		return 2
	}
	return 4
}

func (g *MexicanoGenerator) GenerateRound(ctx Context) (*models.Round, error) {
	block := g.blockSize(ctx.Config.Mode)
	if len(ctx.Entrants) < block {
		return nil, fmt.Errorf("%w: mexicano needs at least %d entrants, have %d",
			ErrInsufficientEntrants, block, len(ctx.Entrants))
	}

	ordered := g.orderFor(ctx)

	playable := len(ordered) - len(ordered)%block
	if ctx.Config.CourtCount > 0 && playable > ctx.Config.CourtCount*block {
		playable = ctx.Config.CourtCount * block
	}

	round := &models.Round{RoundNumber: ctx.RoundNum}
	for i := 0; i < playable; i += block {
		court := courtFor(i/block, ctx.Config.CourtCount)
		if block == 2 {
			round.Matches = append(round.Matches, newMatch(court,
				[]string{ordered[i].ID},
				[]string{ordered[i+1].ID}))
			continue
		}
		// Cross pairing: ranks 1&3 against 2&4 within the block.
		round.Matches = append(round.Matches, newMatch(court,
			[]string{ordered[i].ID, ordered[i+2].ID},
			[]string{ordered[i+1].ID, ordered[i+3].ID}))
	}
	for _, e := range ordered[playable:] {
		round.SittingOut = append(round.SittingOut, e.ID)
	}
	return round, nil
}

// orderFor returns the pairing order for the round: shuffled for round
// 1, standings order afterwards.
func (g *MexicanoGenerator) orderFor(ctx Context) []models.Entrant {
	ordered := append([]models.Entrant(nil), ctx.Entrants...)
	if ctx.RoundNum <= 1 || len(ctx.Rounds) == 0 {
		rng := ctx.Rand
		if rng == nil {
			rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		rng.Shuffle(len(ordered), func(i, j int) {
			ordered[i], ordered[j] = ordered[j], ordered[i]
		})
		return ordered
	}

	byID := make(map[string]models.Entrant, len(ctx.Entrants))
	for _, e := range ctx.Entrants {
		byID[e.ID] = e
	}
	table := standings.Calculate(models.FormatMexicano, ctx.Entrants, ctx.Rounds)
	ordered = ordered[:0]
	for _, row := range table {
		ordered = append(ordered, byID[row.EntrantID])
	}
	return ordered
}

// GenerateAll is not meaningful for mexicano: rounds after the first
// depend on results that do not exist yet.
func (g *MexicanoGenerator) GenerateAll(ctx Context) ([]models.Round, error) {
	ctx.RoundNum = 1
	first, err := g.GenerateRound(ctx)
	if err != nil {
		return nil, err
	}
	return []models.Round{*first}, nil
}
