// internal/engine/fixtures/mix.go
package fixtures

import (
	"fmt"

	"github.com/courtmix/courtmix/internal/models"
)

// Mix tables live in models so a custom one can ride the tournament
// config; the aliases keep this package the home of the table logic.
type (
	MixTable   = models.MixTable
	MixRound   = models.MixRound
	MixFixture = models.MixFixture
)

// DefaultMixTable covers the player counts the stock mix events run
// with. A table on Context.MixTable (normally from the tournament
// config) takes precedence.
var DefaultMixTable = MixTable{
	8: {
		{{Team1: [2]int{0, 1}, Team2: [2]int{2, 3}}, {Team1: [2]int{4, 5}, Team2: [2]int{6, 7}}},
		{{Team1: [2]int{0, 2}, Team2: [2]int{4, 6}}, {Team1: [2]int{1, 3}, Team2: [2]int{5, 7}}},
		{{Team1: [2]int{0, 7}, Team2: [2]int{1, 6}}, {Team1: [2]int{2, 5}, Team2: [2]int{3, 4}}},
	},
	12: {
		{
			{Team1: [2]int{0, 1}, Team2: [2]int{2, 3}},
			{Team1: [2]int{4, 5}, Team2: [2]int{6, 7}},
			{Team1: [2]int{8, 9}, Team2: [2]int{10, 11}},
		},
		{
			{Team1: [2]int{0, 6}, Team2: [2]int{1, 7}},
			{Team1: [2]int{2, 8}, Team2: [2]int{3, 9}},
			{Team1: [2]int{4, 10}, Team2: [2]int{5, 11}},
		},
		{
			{Team1: [2]int{0, 11}, Team2: [2]int{3, 8}},
			{Team1: [2]int{1, 10}, Team2: [2]int{2, 5}},
			{Team1: [2]int{4, 9}, Team2: [2]int{6, 7}},
		},
	},
	16: {
		{
			{Team1: [2]int{0, 1}, Team2: [2]int{2, 3}},
			{Team1: [2]int{4, 5}, Team2: [2]int{6, 7}},
			{Team1: [2]int{8, 9}, Team2: [2]int{10, 11}},
			{Team1: [2]int{12, 13}, Team2: [2]int{14, 15}},
		},
		{
			{Team1: [2]int{0, 4}, Team2: [2]int{8, 12}},
			{Team1: [2]int{1, 5}, Team2: [2]int{9, 13}},
			{Team1: [2]int{2, 6}, Team2: [2]int{10, 14}},
			{Team1: [2]int{3, 7}, Team2: [2]int{11, 15}},
		},
		{
			{Team1: [2]int{0, 5}, Team2: [2]int{10, 15}},
			{Team1: [2]int{1, 4}, Team2: [2]int{11, 14}},
			{Team1: [2]int{2, 7}, Team2: [2]int{8, 13}},
			{Team1: [2]int{3, 6}, Team2: [2]int{9, 12}},
		},
	},
}

// MixGenerator serves rounds straight from the static table; nothing is
// generated on the fly.
type MixGenerator struct{}

func (g *MixGenerator) Name() string { return "Mix" }

// table resolves in precedence order: explicit Context override, table
// stored on the tournament config, stock table.
func (g *MixGenerator) table(ctx Context) MixTable {
	if ctx.MixTable != nil {
		return ctx.MixTable
	}
	if ctx.Config.MixTable != nil {
		return ctx.Config.MixTable
	}
	return DefaultMixTable
}

// PoolRounds reports the pool-stage length for a player count, or 0 if
// the count is not in the table.
func (g *MixGenerator) PoolRounds(ctx Context) int {
	return len(g.table(ctx)[len(ctx.Entrants)])
}

func (g *MixGenerator) GenerateRound(ctx Context) (*models.Round, error) {
	tableRounds, ok := g.table(ctx)[len(ctx.Entrants)]
	if !ok {
		return nil, fmt.Errorf("%w: no mix table for %d players",
			ErrUnsupportedEntrantCount, len(ctx.Entrants))
	}
	if ctx.RoundNum < 1 || ctx.RoundNum > len(tableRounds) {
		return nil, fmt.Errorf("%w: round %d of %d", ErrNoSuchRound, ctx.RoundNum, len(tableRounds))
	}

	round := &models.Round{RoundNumber: ctx.RoundNum}
	for i, f := range tableRounds[ctx.RoundNum-1] {
		round.Matches = append(round.Matches, newMatch(
			courtFor(i, ctx.Config.CourtCount),
			[]string{ctx.Entrants[f.Team1[0]].ID, ctx.Entrants[f.Team1[1]].ID},
			[]string{ctx.Entrants[f.Team2[0]].ID, ctx.Entrants[f.Team2[1]].ID},
		))
	}
	return round, nil
}

func (g *MixGenerator) GenerateAll(ctx Context) ([]models.Round, error) {
	count := g.PoolRounds(ctx)
	if count == 0 {
		return nil, fmt.Errorf("%w: no mix table for %d players",
			ErrUnsupportedEntrantCount, len(ctx.Entrants))
	}
	rounds := make([]models.Round, 0, count)
	for n := 1; n <= count; n++ {
		ctx.RoundNum = n
		round, err := g.GenerateRound(ctx)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, *round)
	}
	return rounds, nil
}
