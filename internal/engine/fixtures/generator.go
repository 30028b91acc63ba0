// internal/engine/fixtures/generator.go

// Package fixtures produces the match schedule for each tournament
// format. One generator per format, selected through ForFormat.
package fixtures

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/courtmix/courtmix/internal/models"
)

var (
	ErrInsufficientEntrants    = errors.New("not enough entrants")
	ErrUnsupportedEntrantCount = errors.New("unsupported entrant count")
	ErrUnknownFormat           = errors.New("unknown tournament format")
	ErrNoSuchRound             = errors.New("no fixtures for requested round")
)

// Context carries everything a generator may need: the tournament
// configuration, the roster, prior rounds (for standings-driven
// pairing), the 1-based round to produce, and an optional seeded
// source for the formats that shuffle.
type Context struct {
	Config   models.TournamentConfig
	Entrants []models.Entrant
	Rounds   []models.Round
	RoundNum int
	Rand     *rand.Rand
	MixTable MixTable
}

// Generator is the per-format fixture strategy.
type Generator interface {
	Name() string
	// GenerateRound produces the fixtures for ctx.RoundNum.
	GenerateRound(ctx Context) (*models.Round, error)
	// GenerateAll produces the full schedule up front, for formats
	// where later rounds do not depend on earlier results.
	GenerateAll(ctx Context) ([]models.Round, error)
}

// ForFormat selects the generator for a format.
func ForFormat(format models.Format) (Generator, error) {
	switch format {
	case models.FormatAmericano:
		return &AmericanoGenerator{}, nil
	case models.FormatMexicano:
		return &MexicanoGenerator{}, nil
	case models.FormatLeague:
		return &LeagueGenerator{}, nil
	case models.FormatMix:
		return &MixGenerator{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Fixture is one table entry: entrant positions per side, independent
// of who currently holds which rank.
type Fixture struct {
	Team1 []string
	Team2 []string
}

func (f Fixture) entrantIDs() []string {
	return append(append([]string(nil), f.Team1...), f.Team2...)
}

func newMatch(court int, team1, team2 []string) models.Match {
	return models.Match{
		ID:    models.NewID(),
		Court: court,
		Team1: append([]string(nil), team1...),
		Team2: append([]string(nil), team2...),
	}
}

func courtFor(index, courtCount int) int {
	if courtCount < 1 {
		return index + 1
	}
	return index%courtCount + 1
}
