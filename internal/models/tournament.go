// internal/models/tournament.go
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Format identifies how fixtures are produced and standings are ranked.
type Format string

const (
	FormatAmericano Format = "americano"
	FormatMexicano  Format = "mexicano"
	FormatMix       Format = "mix"
	FormatLeague    Format = "league"
)

// Mode distinguishes individual entrants from two-player teams.
type Mode string

const (
	ModeIndividual Mode = "individual"
	ModeTeam       Mode = "team"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// TournamentConfig carries the engine settings recognized across formats.
type TournamentConfig struct {
	Format         Format   `json:"format" yaml:"format"`
	Mode           Mode     `json:"mode" yaml:"mode"`
	PointsPerMatch int      `json:"pointsPerMatch" yaml:"points_per_match"`
	FixedPoints    bool     `json:"fixedPoints" yaml:"fixed_points"`
	CourtCount     int      `json:"courtCount" yaml:"court_count"`
	RoundCount     int      `json:"roundCount,omitempty" yaml:"round_count"`
	MixTable       MixTable `json:"mixTable,omitempty" yaml:"mix_table,omitempty"`
}

// Entrant is a player in individual mode or a team wrapping two player
// names in team mode. Identity is fixed once matches exist; only the
// display name may change.
type Entrant struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Ordinal int    `json:"ordinal"`
	Player1 string `json:"player1,omitempty"`
	Player2 string `json:"player2,omitempty"`
}

// Match pairs one or two entrants per side. Scores are nil until
// recorded; they are always set or cleared together.
type Match struct {
	ID        string   `json:"id"`
	Court     int      `json:"court"`
	Team1     []string `json:"team1"`
	Team2     []string `json:"team2"`
	Score1    *int     `json:"score1"`
	Score2    *int     `json:"score2"`
	Completed bool     `json:"completed"`
}

// Round groups the matches of one playing block. Completed is a cache of
// "all matches completed"; the derivation is authoritative when they
// disagree.
type Round struct {
	RoundNumber int      `json:"roundNumber"`
	Matches     []Match  `json:"matches"`
	SittingOut  []string `json:"sittingOut,omitempty"`
	Completed   bool     `json:"completed"`
}

type Meta struct {
	Name           string    `json:"name"`
	Format         Format    `json:"format"`
	Status         Status    `json:"status"`
	PointsPerMatch int       `json:"pointsPerMatch"`
	FixedPoints    bool      `json:"fixedPoints"`
	OrganiserKey   string    `json:"organiserKey,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// TournamentDocument is the root aggregate shared between the organizer
// session and spectator sessions.
type TournamentDocument struct {
	ID           string           `json:"id"`
	Meta         Meta             `json:"meta"`
	Config       TournamentConfig `json:"config"`
	Entrants     []Entrant        `json:"entrants"`
	Rounds       []Round          `json:"rounds"`
	CurrentRound int              `json:"currentRound"`
}

// NewID returns a fresh document or match identifier.
func NewID() string {
	return uuid.NewString()
}

// Round returns the 1-based round n, or nil if it does not exist.
func (d *TournamentDocument) Round(n int) *Round {
	if n < 1 || n > len(d.Rounds) {
		return nil
	}
	return &d.Rounds[n-1]
}

// FindMatch locates a match by id across all rounds.
func (d *TournamentDocument) FindMatch(matchID string) (*Match, *Round) {
	for i := range d.Rounds {
		r := &d.Rounds[i]
		for j := range r.Matches {
			if r.Matches[j].ID == matchID {
				return &r.Matches[j], r
			}
		}
	}
	return nil, nil
}

// Clone returns a deep copy. Sessions hand copies to readers so the
// authoritative document is never aliased outside the owner.
func (d *TournamentDocument) Clone() *TournamentDocument {
	if d == nil {
		return nil
	}
	out := *d
	out.Config.MixTable = d.Config.MixTable.Clone()
	out.Entrants = append([]Entrant(nil), d.Entrants...)
	out.Rounds = make([]Round, len(d.Rounds))
	for i, r := range d.Rounds {
		cr := r
		cr.Matches = make([]Match, len(r.Matches))
		for j, m := range r.Matches {
			cm := m
			cm.Team1 = append([]string(nil), m.Team1...)
			cm.Team2 = append([]string(nil), m.Team2...)
			if m.Score1 != nil {
				v := *m.Score1
				cm.Score1 = &v
			}
			if m.Score2 != nil {
				v := *m.Score2
				cm.Score2 = &v
			}
			cr.Matches[j] = cm
		}
		cr.SittingOut = append([]string(nil), r.SittingOut...)
		out.Rounds[i] = cr
	}
	return &out
}

// Validate checks the structural invariants of the aggregate.
func (d *TournamentDocument) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("document id is required")
	}
	known := make(map[string]struct{}, len(d.Entrants))
	for _, e := range d.Entrants {
		if e.ID == "" {
			return fmt.Errorf("entrant %q has no id", e.Name)
		}
		if _, dup := known[e.ID]; dup {
			return fmt.Errorf("duplicate entrant id %s", e.ID)
		}
		known[e.ID] = struct{}{}
	}
	if len(d.Rounds) > 0 && (d.CurrentRound < 1 || d.CurrentRound > len(d.Rounds)) {
		return fmt.Errorf("currentRound %d out of range 1..%d", d.CurrentRound, len(d.Rounds))
	}
	for _, r := range d.Rounds {
		for _, m := range r.Matches {
			if err := validateMatch(m, known); err != nil {
				return fmt.Errorf("round %d: %w", r.RoundNumber, err)
			}
		}
	}
	return nil
}

func validateMatch(m Match, known map[string]struct{}) error {
	seen := make(map[string]struct{}, len(m.Team1)+len(m.Team2))
	for _, id := range append(append([]string(nil), m.Team1...), m.Team2...) {
		if _, ok := known[id]; !ok {
			return fmt.Errorf("match %s references unknown entrant %s", m.ID, id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("match %s lists entrant %s twice", m.ID, id)
		}
		seen[id] = struct{}{}
	}
	if (m.Score1 == nil) != (m.Score2 == nil) {
		return fmt.Errorf("match %s has a half-set score pair", m.ID)
	}
	if m.Score1 != nil && (*m.Score1 < 0 || *m.Score2 < 0) {
		return fmt.Errorf("match %s has a negative score", m.ID)
	}
	return nil
}
