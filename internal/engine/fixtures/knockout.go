// internal/engine/fixtures/knockout.go
package fixtures

import (
	"errors"
	"fmt"

	"github.com/courtmix/courtmix/internal/engine/scoring"
	"github.com/courtmix/courtmix/internal/engine/standings"
	"github.com/courtmix/courtmix/internal/models"
)

var (
	ErrKnockoutRoundIncomplete = errors.New("knockout round has unplayed matches")
	ErrKnockoutDraw            = errors.New("knockout match cannot end level")
	ErrBracketComplete         = errors.New("bracket is complete")
)

// Seed patterns keep the top seeds apart until the last rounds: for a
// single pool of eight, 1v8 and 4v5 feed one semifinal, 2v7 and 3v6 the
// other. Four seeds collapse to 1v4 and 2v3.
var (
	seedPairsEight = [][2]int{{0, 7}, {3, 4}, {1, 6}, {2, 5}}
	seedPairsFour  = [][2]int{{0, 3}, {1, 2}}
)

// SeedSinglePool builds the opening knockout round from one pool's
// standings order.
func SeedSinglePool(table []standings.Standing, cfg models.TournamentConfig) (*models.Round, error) {
	pattern := seedPairsFour
	if len(table) >= 8 {
		pattern = seedPairsEight
	} else if len(table) < 4 {
		return nil, fmt.Errorf("%w: knockout needs at least 4 seeds, have %d",
			ErrInsufficientEntrants, len(table))
	}

	round := &models.Round{RoundNumber: 1}
	for i, pair := range pattern {
		round.Matches = append(round.Matches, newMatch(
			courtFor(i, cfg.CourtCount),
			[]string{table[pair[0]].EntrantID},
			[]string{table[pair[1]].EntrantID},
		))
	}
	return round, nil
}

// SeedCrossPool pairs the top four of each pool across pools: A1vB4,
// B1vA4, A2vB3, B2vA3.
func SeedCrossPool(poolA, poolB []standings.Standing, cfg models.TournamentConfig) (*models.Round, error) {
	if len(poolA) < 4 || len(poolB) < 4 {
		return nil, fmt.Errorf("%w: cross-pool knockout needs 4 seeds per pool",
			ErrInsufficientEntrants)
	}
	pairs := [][2]string{
		{poolA[0].EntrantID, poolB[3].EntrantID},
		{poolB[0].EntrantID, poolA[3].EntrantID},
		{poolA[1].EntrantID, poolB[2].EntrantID},
		{poolB[1].EntrantID, poolA[2].EntrantID},
	}
	round := &models.Round{RoundNumber: 1}
	for i, p := range pairs {
		round.Matches = append(round.Matches, newMatch(
			courtFor(i, cfg.CourtCount), []string{p[0]}, []string{p[1]}))
	}
	return round, nil
}

// NextKnockoutRound progresses the bracket once every match of prev has
// a winner: winners of adjacent matches meet, and when semifinals
// conclude the losers can feed a third-place match.
func NextKnockoutRound(prev models.Round, cfg models.TournamentConfig, thirdPlace bool) (*models.Round, error) {
	if len(prev.Matches) <= 1 {
		return nil, ErrBracketComplete
	}

	winners := make([][]string, 0, len(prev.Matches))
	losers := make([][]string, 0, len(prev.Matches))
	for _, m := range prev.Matches {
		if !scoring.MatchCompleted(m, cfg) {
			return nil, fmt.Errorf("%w: match %s", ErrKnockoutRoundIncomplete, m.ID)
		}
		switch {
		case *m.Score1 > *m.Score2:
			winners = append(winners, m.Team1)
			losers = append(losers, m.Team2)
		case *m.Score2 > *m.Score1:
			winners = append(winners, m.Team2)
			losers = append(losers, m.Team1)
		default:
			return nil, fmt.Errorf("%w: match %s", ErrKnockoutDraw, m.ID)
		}
	}

	round := &models.Round{RoundNumber: prev.RoundNumber + 1}
	court := 0
	for i := 0; i+1 < len(winners); i += 2 {
		round.Matches = append(round.Matches,
			newMatch(courtFor(court, cfg.CourtCount), winners[i], winners[i+1]))
		court++
	}
	if thirdPlace && len(prev.Matches) == 2 {
		round.Matches = append(round.Matches,
			newMatch(courtFor(court, cfg.CourtCount), losers[0], losers[1]))
	}
	return round, nil
}
