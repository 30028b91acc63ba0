// internal/engine/scoring/scoring.go

// Package scoring validates candidate score pairs against a format's
// point policy and normalizes the storage sentinel for unset scores.
package scoring

import (
	"errors"
	"fmt"

	"github.com/courtmix/courtmix/internal/models"
)

var (
	ErrScorePairIncomplete = errors.New("both scores are required")
	ErrScoreNegative       = errors.New("scores must be zero or positive")
	ErrScoreSum            = errors.New("scores do not add up to the match total")
)

// Validate checks a candidate score pair. Both nil means the match is
// unplayed, which is valid. Exactly one nil is rejected. For fixed-point
// formats the pair must sum to the configured total.
func Validate(score1, score2 *int, cfg models.TournamentConfig) error {
	if score1 == nil && score2 == nil {
		return nil
	}
	if score1 == nil || score2 == nil {
		return ErrScorePairIncomplete
	}
	if *score1 < 0 || *score2 < 0 {
		return ErrScoreNegative
	}
	if cfg.FixedPoints && *score1+*score2 != cfg.PointsPerMatch {
		return fmt.Errorf("%w: must add up to %d", ErrScoreSum, cfg.PointsPerMatch)
	}
	return nil
}

// Normalize maps the storage sentinel to nil and passes every other
// value through untouched.
func Normalize(v *int) *int {
	return models.NormalizeScore(v)
}

// Complement returns the auto-filled second score for fixed-point entry.
func Complement(score, total int) int {
	if c := total - score; c > 0 {
		return c
	}
	return 0
}

// MatchCompleted derives completion from the scores themselves. The
// stored Completed flag is only a cache of this.
func MatchCompleted(m models.Match, cfg models.TournamentConfig) bool {
	if m.Score1 == nil || m.Score2 == nil {
		return false
	}
	if cfg.FixedPoints && *m.Score1+*m.Score2 != cfg.PointsPerMatch {
		return false
	}
	return true
}
