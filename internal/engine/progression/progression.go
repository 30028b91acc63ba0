// internal/engine/progression/progression.go

// Package progression decides when a round is finished and moves the
// tournament to its next round or to completion.
package progression

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/courtmix/courtmix/internal/engine/fixtures"
	"github.com/courtmix/courtmix/internal/engine/scoring"
	"github.com/courtmix/courtmix/internal/models"
)

var (
	ErrRoundIncomplete    = errors.New("current round has unplayed matches")
	ErrTournamentComplete = errors.New("tournament complete")
	ErrNotCompleted       = errors.New("tournament is not completed")
)

// RoundComplete derives completion from the matches. The stored
// Completed flag on the round is a cache and is never trusted here.
func RoundComplete(r models.Round, cfg models.TournamentConfig) bool {
	if len(r.Matches) == 0 {
		return false
	}
	for _, m := range r.Matches {
		if !scoring.MatchCompleted(m, cfg) {
			return false
		}
	}
	return true
}

// Advance moves the document to its next round once the current one is
// complete. Formats whose schedule exists up front (americano, league)
// only move the cursor; mexicano and mix generate the next round from
// the just-updated standings. When no rounds remain the tournament is
// marked completed and further advances fail with
// ErrTournamentComplete.
func Advance(doc *models.TournamentDocument, rng *rand.Rand) error {
	if doc.Meta.Status == models.StatusCompleted {
		return ErrTournamentComplete
	}
	current := doc.Round(doc.CurrentRound)
	if current == nil {
		return fmt.Errorf("current round %d does not exist", doc.CurrentRound)
	}
	if !RoundComplete(*current, doc.Config) {
		return ErrRoundIncomplete
	}
	current.Completed = true

	switch doc.Config.Format {
	case models.FormatAmericano, models.FormatLeague:
		if doc.CurrentRound < len(doc.Rounds) {
			doc.CurrentRound++
			return touch(doc)
		}
		return complete(doc)

	case models.FormatMexicano:
		if doc.Config.RoundCount > 0 && doc.CurrentRound >= doc.Config.RoundCount {
			return complete(doc)
		}
		return appendNext(doc, rng)

	case models.FormatMix:
		gen := &fixtures.MixGenerator{}
		pool := gen.PoolRounds(fixtures.Context{Config: doc.Config, Entrants: doc.Entrants})
		if doc.CurrentRound >= pool {
			return complete(doc)
		}
		return appendNext(doc, rng)

	default:
		return fmt.Errorf("%w: %q", fixtures.ErrUnknownFormat, doc.Config.Format)
	}
}

func appendNext(doc *models.TournamentDocument, rng *rand.Rand) error {
	gen, err := fixtures.ForFormat(doc.Config.Format)
	if err != nil {
		return err
	}
	next, err := gen.GenerateRound(fixtures.Context{
		Config:   doc.Config,
		Entrants: doc.Entrants,
		Rounds:   doc.Rounds,
		RoundNum: doc.CurrentRound + 1,
		Rand:     rng,
	})
	if err != nil {
		return err
	}
	doc.Rounds = append(doc.Rounds, *next)
	doc.CurrentRound++
	return touch(doc)
}

func complete(doc *models.TournamentDocument) error {
	doc.Meta.Status = models.StatusCompleted
	return touch(doc)
}

func touch(doc *models.TournamentDocument) error {
	doc.Meta.UpdatedAt = time.Now().UTC()
	return nil
}

// Reopen lifts the completed state so an organizer can correct a late
// score. It is an explicit override, never automatic.
func Reopen(doc *models.TournamentDocument) error {
	if doc.Meta.Status != models.StatusCompleted {
		return ErrNotCompleted
	}
	doc.Meta.Status = models.StatusActive
	return touch(doc)
}
