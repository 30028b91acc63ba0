// internal/models/normalize.go
package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// UnsetScore is the numeric sentinel that stands in for "no score yet"
// on storage paths that cannot round-trip a null.
const UnsetScore = -1

// DecodeDocument parses an externally-sourced payload into a typed
// document. Collections may arrive either as JSON arrays or as objects
// keyed by integer strings (a store that flattens arrays with
// consecutive integer keys produces the latter); both are materialized
// into ordered slices before any engine code sees them. Score sentinels
// are normalized back to nil.
func DecodeDocument(data []byte) (*TournamentDocument, error) {
	var raw struct {
		ID           string           `json:"id"`
		Meta         Meta             `json:"meta"`
		Config       TournamentConfig `json:"config"`
		Entrants     json.RawMessage  `json:"entrants"`
		Rounds       json.RawMessage  `json:"rounds"`
		CurrentRound int              `json:"currentRound"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode tournament document: %w", err)
	}

	doc := &TournamentDocument{
		ID:           raw.ID,
		Meta:         raw.Meta,
		Config:       raw.Config,
		CurrentRound: raw.CurrentRound,
	}

	entrantItems, err := normalizeList(raw.Entrants)
	if err != nil {
		return nil, fmt.Errorf("decode entrants: %w", err)
	}
	for _, item := range entrantItems {
		var e Entrant
		if err := json.Unmarshal(item, &e); err != nil {
			return nil, fmt.Errorf("decode entrant: %w", err)
		}
		doc.Entrants = append(doc.Entrants, e)
	}

	roundItems, err := normalizeList(raw.Rounds)
	if err != nil {
		return nil, fmt.Errorf("decode rounds: %w", err)
	}
	for _, item := range roundItems {
		r, err := decodeRound(item)
		if err != nil {
			return nil, err
		}
		doc.Rounds = append(doc.Rounds, *r)
	}
	return doc, nil
}

func decodeRound(data []byte) (*Round, error) {
	var raw struct {
		RoundNumber int             `json:"roundNumber"`
		Matches     json.RawMessage `json:"matches"`
		SittingOut  json.RawMessage `json:"sittingOut"`
		Completed   bool            `json:"completed"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode round: %w", err)
	}
	r := &Round{RoundNumber: raw.RoundNumber, Completed: raw.Completed}

	matchItems, err := normalizeList(raw.Matches)
	if err != nil {
		return nil, fmt.Errorf("decode round %d matches: %w", raw.RoundNumber, err)
	}
	for _, item := range matchItems {
		var m Match
		if err := json.Unmarshal(item, &m); err != nil {
			return nil, fmt.Errorf("decode round %d match: %w", raw.RoundNumber, err)
		}
		m.Score1 = NormalizeScore(m.Score1)
		m.Score2 = NormalizeScore(m.Score2)
		r.Matches = append(r.Matches, m)
	}

	if len(raw.SittingOut) > 0 {
		sitItems, err := normalizeList(raw.SittingOut)
		if err != nil {
			return nil, fmt.Errorf("decode round %d sittingOut: %w", raw.RoundNumber, err)
		}
		for _, item := range sitItems {
			var id string
			if err := json.Unmarshal(item, &id); err != nil {
				return nil, fmt.Errorf("decode round %d sittingOut entry: %w", raw.RoundNumber, err)
			}
			r.SittingOut = append(r.SittingOut, id)
		}
	}
	return r, nil
}

// NormalizeScore maps the storage sentinel back to "unset".
func NormalizeScore(v *int) *int {
	if v == nil || *v == UnsetScore {
		return nil
	}
	return v
}

// normalizeList accepts a JSON array, an object with integer keys, or
// null, and returns the elements in key order.
func normalizeList(raw json.RawMessage) ([]json.RawMessage, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	switch raw[0] {
	case 'n': // null
		return nil, nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		return items, nil
	case '{':
		var keyed map[string]json.RawMessage
		if err := json.Unmarshal(raw, &keyed); err != nil {
			return nil, err
		}
		type indexed struct {
			idx  int
			item json.RawMessage
		}
		ordered := make([]indexed, 0, len(keyed))
		for k, v := range keyed {
			idx, err := strconv.Atoi(k)
			if err != nil {
				return nil, fmt.Errorf("collection key %q is not an index", k)
			}
			ordered = append(ordered, indexed{idx: idx, item: v})
		}
		sort.Slice(ordered, func(i, j int) bool { return ordered[i].idx < ordered[j].idx })
		items := make([]json.RawMessage, len(ordered))
		for i, entry := range ordered {
			items[i] = entry.item
		}
		return items, nil
	default:
		return nil, fmt.Errorf("collection is neither array nor object")
	}
}

// EncodeDocument serializes a document for storage, replacing unset
// scores with the sentinel so the payload never carries a null score.
func EncodeDocument(doc *TournamentDocument) ([]byte, error) {
	out := doc.Clone()
	for i := range out.Rounds {
		for j := range out.Rounds[i].Matches {
			m := &out.Rounds[i].Matches[j]
			if m.Score1 == nil {
				v := UnsetScore
				m.Score1 = &v
			}
			if m.Score2 == nil {
				v := UnsetScore
				m.Score2 = &v
			}
		}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode tournament document: %w", err)
	}
	return data, nil
}
