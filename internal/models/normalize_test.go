package models

import (
	"testing"
)

func TestDecodeDocumentArrayShape(t *testing.T) {
	payload := []byte(`{
		"id": "t1",
		"meta": {"name": "Friday Night", "format": "mexicano", "status": "active"},
		"entrants": [{"id": "a", "name": "Alice"}, {"id": "b", "name": "Bob"}],
		"rounds": [{"roundNumber": 1, "matches": [
			{"id": "m1", "court": 1, "team1": ["a"], "team2": ["b"], "score1": 16, "score2": 8, "completed": true}
		], "completed": true}],
		"currentRound": 1
	}`)

	doc, err := DecodeDocument(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc.Entrants) != 2 || doc.Entrants[1].Name != "Bob" {
		t.Fatalf("unexpected entrants: %+v", doc.Entrants)
	}
	if len(doc.Rounds) != 1 || len(doc.Rounds[0].Matches) != 1 {
		t.Fatalf("unexpected rounds: %+v", doc.Rounds)
	}
	m := doc.Rounds[0].Matches[0]
	if m.Score1 == nil || *m.Score1 != 16 || m.Score2 == nil || *m.Score2 != 8 {
		t.Fatalf("unexpected scores: %+v", m)
	}
}

func TestDecodeDocumentKeyedObjectShape(t *testing.T) {
	// A store that flattens arrays into integer-keyed objects must still
	// produce an ordered slice.
	payload := []byte(`{
		"id": "t1",
		"entrants": {"1": {"id": "b", "name": "Bob"}, "0": {"id": "a", "name": "Alice"}},
		"rounds": {"0": {"roundNumber": 1, "matches": {
			"0": {"id": "m1", "team1": ["a"], "team2": ["b"], "score1": -1, "score2": -1}
		}}},
		"currentRound": 1
	}`)

	doc, err := DecodeDocument(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Entrants[0].ID != "a" || doc.Entrants[1].ID != "b" {
		t.Fatalf("entrants not in key order: %+v", doc.Entrants)
	}
	m := doc.Rounds[0].Matches[0]
	if m.Score1 != nil || m.Score2 != nil {
		t.Fatalf("sentinel scores should normalize to nil: %+v", m)
	}
}

func TestEncodeDocumentUsesSentinel(t *testing.T) {
	doc := &TournamentDocument{
		ID:       "t1",
		Entrants: []Entrant{{ID: "a", Name: "Alice"}, {ID: "b", Name: "Bob"}},
		Rounds: []Round{{
			RoundNumber: 1,
			Matches:     []Match{{ID: "m1", Team1: []string{"a"}, Team2: []string{"b"}}},
		}},
		CurrentRound: 1,
	}

	data, err := EncodeDocument(doc)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeDocument(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	m := decoded.Rounds[0].Matches[0]
	if m.Score1 != nil || m.Score2 != nil {
		t.Fatalf("sentinel should round-trip back to nil, got %+v", m)
	}
	// The source document must not be mutated by encoding.
	if doc.Rounds[0].Matches[0].Score1 != nil {
		t.Fatalf("encode mutated the source document")
	}
}

func TestValidateRejectsDoubleBookedEntrant(t *testing.T) {
	doc := &TournamentDocument{
		ID:       "t1",
		Entrants: []Entrant{{ID: "a"}, {ID: "b"}},
		Rounds: []Round{{
			RoundNumber: 1,
			Matches:     []Match{{ID: "m1", Team1: []string{"a"}, Team2: []string{"a"}}},
		}},
		CurrentRound: 1,
	}
	if err := doc.Validate(); err == nil {
		t.Fatalf("expected validation error for entrant on both sides")
	}
}

func TestCloneIsDeep(t *testing.T) {
	s1, s2 := 10, 14
	doc := &TournamentDocument{
		ID:       "t1",
		Entrants: []Entrant{{ID: "a"}, {ID: "b"}},
		Rounds: []Round{{
			RoundNumber: 1,
			Matches: []Match{{
				ID: "m1", Team1: []string{"a"}, Team2: []string{"b"},
				Score1: &s1, Score2: &s2,
			}},
		}},
		CurrentRound: 1,
	}

	clone := doc.Clone()
	*clone.Rounds[0].Matches[0].Score1 = 99
	clone.Rounds[0].Matches[0].Team1[0] = "z"
	if *doc.Rounds[0].Matches[0].Score1 != 10 {
		t.Fatalf("clone shares score pointers with source")
	}
	if doc.Rounds[0].Matches[0].Team1[0] != "a" {
		t.Fatalf("clone shares team slices with source")
	}
}
