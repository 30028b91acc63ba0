// internal/tournament/session.go

// Package tournament ties the engine together: a Session owns one
// synchronized tournament document and applies organizer mutations to
// it. There is no ambient state; every caller holds a Session value.
package tournament

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/courtmix/courtmix/internal/engine/fixtures"
	"github.com/courtmix/courtmix/internal/engine/progression"
	"github.com/courtmix/courtmix/internal/engine/scoring"
	"github.com/courtmix/courtmix/internal/engine/standings"
	"github.com/courtmix/courtmix/internal/models"
	"github.com/courtmix/courtmix/internal/statesync"
	"github.com/courtmix/courtmix/internal/store"
)

var (
	ErrUnauthorized     = errors.New("organiser key does not match")
	ErrMatchNotFound    = errors.New("match not found")
	ErrEntrantNotFound  = errors.New("entrant not found")
	ErrNameRequired     = errors.New("tournament name is required")
	ErrEntrantsRequired = errors.New("entrant names are required")
	ErrInvalidConfig    = errors.New("invalid tournament configuration")
)

// EntrantInput is the setup-time roster entry. Player1/Player2 are only
// meaningful in team mode.
type EntrantInput struct {
	Name    string `json:"name"`
	Player1 string `json:"player1,omitempty"`
	Player2 string `json:"player2,omitempty"`
}

// Session is the handle through which one organizer (and any number of
// read-only callers) works with a tournament.
type Session struct {
	syncer *statesync.Syncer
	rng    *rand.Rand
}

// Create sets up a new tournament document, generates its initial
// fixtures, persists it, and returns a live session. The organiser key
// is stored as a bcrypt hash; the plaintext never leaves the caller.
func Create(ctx context.Context, st store.Store, name string, cfg models.TournamentConfig,
	entrants []EntrantInput, organiserKey string, opts ...statesync.Option) (*Session, error) {

	if name == "" {
		return nil, ErrNameRequired
	}
	if len(entrants) == 0 {
		return nil, ErrEntrantsRequired
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	keyHash, err := bcrypt.GenerateFromPassword([]byte(organiserKey), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash organiser key: %w", err)
	}

	now := time.Now().UTC()
	doc := &models.TournamentDocument{
		ID: models.NewID(),
		Meta: models.Meta{
			Name:           name,
			Format:         cfg.Format,
			Status:         models.StatusActive,
			PointsPerMatch: cfg.PointsPerMatch,
			FixedPoints:    cfg.FixedPoints,
			OrganiserKey:   string(keyHash),
			CreatedAt:      now,
			UpdatedAt:      now,
		},
		Config: cfg,
	}
	for i, in := range entrants {
		doc.Entrants = append(doc.Entrants, models.Entrant{
			ID:      models.NewID(),
			Name:    in.Name,
			Ordinal: i,
			Player1: in.Player1,
			Player2: in.Player2,
		})
	}

	s := &Session{rng: rand.New(rand.NewSource(now.UnixNano()))}
	if err := s.generateInitialRounds(doc); err != nil {
		return nil, err
	}
	doc.CurrentRound = 1

	if err := st.Put(ctx, doc); err != nil {
		return nil, err
	}
	syncer, err := statesync.New(st, doc, opts...)
	if err != nil {
		return nil, err
	}
	s.syncer = syncer
	log.Info().
		Str("tournament_id", doc.ID).
		Str("format", string(cfg.Format)).
		Int("entrants", len(doc.Entrants)).
		Msg("Tournament created")
	return s, nil
}

// Open loads an existing tournament into a session.
func Open(ctx context.Context, st store.Store, id string, opts ...statesync.Option) (*Session, error) {
	doc, err := st.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("stored document %s is inconsistent: %w", id, err)
	}
	syncer, err := statesync.New(st, doc, opts...)
	if err != nil {
		return nil, err
	}
	return &Session{
		syncer: syncer,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// generateInitialRounds builds the full schedule for formats that are
// fixed up front and just the first round for standings-driven ones.
func (s *Session) generateInitialRounds(doc *models.TournamentDocument) error {
	gen, err := fixtures.ForFormat(doc.Config.Format)
	if err != nil {
		return err
	}
	ctx := fixtures.Context{
		Config:   doc.Config,
		Entrants: doc.Entrants,
		RoundNum: 1,
		Rand:     s.rng,
	}
	switch doc.Config.Format {
	case models.FormatAmericano, models.FormatLeague:
		rounds, err := gen.GenerateAll(ctx)
		if err != nil {
			return err
		}
		doc.Rounds = rounds
	default:
		first, err := gen.GenerateRound(ctx)
		if err != nil {
			return err
		}
		doc.Rounds = []models.Round{*first}
	}
	return nil
}

// Document returns a read-only snapshot.
func (s *Session) Document() *models.TournamentDocument {
	return s.syncer.Document()
}

// Updates exposes the refresh signal for views.
func (s *Session) Updates() <-chan struct{} { return s.syncer.Updates() }

// Run consumes the inbound change stream until ctx ends.
func (s *Session) Run(ctx context.Context) error { return s.syncer.Run(ctx) }

// Flush forces a pending write out, for shutdown paths.
func (s *Session) Flush(ctx context.Context) error { return s.syncer.Flush(ctx) }

// Resync pulls the stored revision in case the watch stream dropped
// one.
func (s *Session) Resync(ctx context.Context) error { return s.syncer.Resync(ctx) }

// Authorize compares a presented organiser key with the stored hash.
func (s *Session) Authorize(organiserKey string) error {
	doc := s.syncer.Document()
	if err := bcrypt.CompareHashAndPassword([]byte(doc.Meta.OrganiserKey), []byte(organiserKey)); err != nil {
		return ErrUnauthorized
	}
	return nil
}

// RecordScore validates and applies a score pair to a match. The edit
// is visible immediately and persisted on the debounce window. Score
// edits on a completed tournament are rejected until Reopen.
func (s *Session) RecordScore(matchID string, score1, score2 *int) error {
	score1 = scoring.Normalize(score1)
	score2 = scoring.Normalize(score2)
	return s.syncer.Apply(func(doc *models.TournamentDocument) error {
		if doc.Meta.Status == models.StatusCompleted {
			return progression.ErrTournamentComplete
		}
		if err := scoring.Validate(score1, score2, doc.Config); err != nil {
			return err
		}
		m, round := doc.FindMatch(matchID)
		if m == nil {
			return fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
		}
		m.Score1 = score1
		m.Score2 = score2
		m.Completed = scoring.MatchCompleted(*m, doc.Config)
		round.Completed = progression.RoundComplete(*round, doc.Config)
		doc.Meta.UpdatedAt = time.Now().UTC()
		return nil
	})
}

// RenameEntrant changes a display name. Identity is immutable once
// matches exist, so only the name field moves.
func (s *Session) RenameEntrant(entrantID, name string) error {
	return s.syncer.Apply(func(doc *models.TournamentDocument) error {
		for i := range doc.Entrants {
			if doc.Entrants[i].ID == entrantID {
				doc.Entrants[i].Name = name
				doc.Meta.UpdatedAt = time.Now().UTC()
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrEntrantNotFound, entrantID)
	})
}

// AdvanceRound runs the progression state machine.
func (s *Session) AdvanceRound() error {
	return s.syncer.Apply(func(doc *models.TournamentDocument) error {
		return progression.Advance(doc, s.rng)
	})
}

// End marks the tournament completed regardless of remaining rounds.
func (s *Session) End() error {
	return s.syncer.Apply(func(doc *models.TournamentDocument) error {
		if doc.Meta.Status == models.StatusCompleted {
			return progression.ErrTournamentComplete
		}
		doc.Meta.Status = models.StatusCompleted
		doc.Meta.UpdatedAt = time.Now().UTC()
		return nil
	})
}

// Reopen lifts a completed state so late corrections can be made.
func (s *Session) Reopen() error {
	return s.syncer.Apply(progression.Reopen)
}

// Standings recomputes the ranking table from scratch.
func (s *Session) Standings() []standings.Standing {
	doc := s.syncer.Document()
	return standings.Calculate(doc.Config.Format, doc.Entrants, doc.Rounds)
}

func validateConfig(cfg models.TournamentConfig) error {
	switch cfg.Format {
	case models.FormatAmericano, models.FormatMexicano, models.FormatMix, models.FormatLeague:
	default:
		return fmt.Errorf("%w: unknown format %q", ErrInvalidConfig, cfg.Format)
	}
	switch cfg.Mode {
	case models.ModeIndividual, models.ModeTeam:
	case "":
		return fmt.Errorf("%w: mode is required", ErrInvalidConfig)
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, cfg.Mode)
	}
	if cfg.FixedPoints && cfg.PointsPerMatch < 1 {
		return fmt.Errorf("%w: fixed points needs a positive points per match", ErrInvalidConfig)
	}
	if cfg.Format == models.FormatMexicano && cfg.RoundCount < 1 {
		return fmt.Errorf("%w: mexicano needs a round count", ErrInvalidConfig)
	}
	return nil
}
