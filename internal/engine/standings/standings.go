// internal/engine/standings/standings.go

// Package standings derives ranked entrant statistics from recorded
// scores. The calculation is pure: it rebuilds every accumulator from
// scratch on each call, so it can never drift from the match records.
package standings

import (
	"sort"

	"github.com/courtmix/courtmix/internal/models"
)

// Standing is one row of the derived ranking table.
type Standing struct {
	EntrantID        string  `json:"entrantId"`
	Name             string  `json:"name"`
	MatchesPlayed    int     `json:"matchesPlayed"`
	Wins             int     `json:"wins"`
	Losses           int     `json:"losses"`
	Draws            int     `json:"draws"`
	PointsFor        int     `json:"pointsFor"`
	PointsAgainst    int     `json:"pointsAgainst"`
	PointsDiff       int     `json:"pointsDiff"`
	TournamentPoints int     `json:"tournamentPoints"`
	AvgScore         float64 `json:"avgScore"`
	WinRate          float64 `json:"winRate"`
	Rank             int     `json:"rank"`
}

// Calculate derives standings from rounds.
func Calculate(format models.Format, entrants []models.Entrant, rounds []models.Round) []Standing {
	var matches []models.Match
	for _, r := range rounds {
		matches = append(matches, r.Matches...)
	}
	return CalculateMatches(format, entrants, matches)
}

// CalculateMatches derives standings from a flat match list. The
// americano flow, which keys scores by fixture index rather than by
// round, feeds this directly.
func CalculateMatches(format models.Format, entrants []models.Entrant, matches []models.Match) []Standing {
	byID := make(map[string]*Standing, len(entrants))
	rows := make([]*Standing, 0, len(entrants))
	for _, e := range entrants {
		row := &Standing{EntrantID: e.ID, Name: e.Name}
		byID[e.ID] = row
		rows = append(rows, row)
	}

	for _, m := range matches {
		if m.Score1 == nil || m.Score2 == nil {
			continue
		}
		s1, s2 := *m.Score1, *m.Score2
		attribute(byID, m.Team1, s1, s2)
		attribute(byID, m.Team2, s2, s1)
	}

	for _, row := range rows {
		row.PointsDiff = row.PointsFor - row.PointsAgainst
		played := row.MatchesPlayed
		if played < 1 {
			played = 1
		}
		row.AvgScore = float64(row.PointsFor) / float64(played)
		row.WinRate = float64(row.Wins) / float64(played)
		row.TournamentPoints = row.Wins*3 + row.Draws
	}

	less := comparatorFor(format)
	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })

	out := make([]Standing, len(rows))
	for i, row := range rows {
		row.Rank = i + 1
		out[i] = *row
	}
	return out
}

func attribute(byID map[string]*Standing, team []string, pointsFor, pointsAgainst int) {
	for _, id := range team {
		row, ok := byID[id]
		if !ok {
			continue
		}
		row.MatchesPlayed++
		row.PointsFor += pointsFor
		row.PointsAgainst += pointsAgainst
		switch {
		case pointsFor > pointsAgainst:
			row.Wins++
		case pointsFor < pointsAgainst:
			row.Losses++
		default:
			row.Draws++
		}
	}
}

// comparatorFor selects the format's tie-break chain. Every chain ends
// on entrant id so the order is total and deterministic.
func comparatorFor(format models.Format) func(a, b *Standing) bool {
	switch format {
	case models.FormatAmericano:
		return func(a, b *Standing) bool {
			if a.AvgScore != b.AvgScore {
				return a.AvgScore > b.AvgScore
			}
			if a.PointsDiff != b.PointsDiff {
				return a.PointsDiff > b.PointsDiff
			}
			if a.PointsFor != b.PointsFor {
				return a.PointsFor > b.PointsFor
			}
			return a.EntrantID < b.EntrantID
		}
	case models.FormatMexicano:
		return func(a, b *Standing) bool {
			if a.PointsFor != b.PointsFor {
				return a.PointsFor > b.PointsFor
			}
			if a.PointsDiff != b.PointsDiff {
				return a.PointsDiff > b.PointsDiff
			}
			if a.Wins != b.Wins {
				return a.Wins > b.Wins
			}
			// Fewer matches first: rewards entrants who sat out.
			if a.MatchesPlayed != b.MatchesPlayed {
				return a.MatchesPlayed < b.MatchesPlayed
			}
			return a.EntrantID < b.EntrantID
		}
	default: // mix, league
		return func(a, b *Standing) bool {
			if a.TournamentPoints != b.TournamentPoints {
				return a.TournamentPoints > b.TournamentPoints
			}
			if a.PointsDiff != b.PointsDiff {
				return a.PointsDiff > b.PointsDiff
			}
			if a.PointsFor != b.PointsFor {
				return a.PointsFor > b.PointsFor
			}
			return a.EntrantID < b.EntrantID
		}
	}
}
