// internal/models/mix.go
package models

// MixTable maps a player count to its pool rounds, each round listing
// roster positions per side. A table stored on TournamentConfig
// overrides the stock one, so organizer-supplied tables survive
// restarts with the document.
type MixTable map[int][]MixRound

type MixRound []MixFixture

type MixFixture struct {
	Team1 [2]int `json:"team1"`
	Team2 [2]int `json:"team2"`
}

// Clone deep-copies the table.
func (t MixTable) Clone() MixTable {
	if t == nil {
		return nil
	}
	out := make(MixTable, len(t))
	for count, rounds := range t {
		rs := make([]MixRound, len(rounds))
		for i, r := range rounds {
			rs[i] = append(MixRound(nil), r...)
		}
		out[count] = rs
	}
	return out
}
