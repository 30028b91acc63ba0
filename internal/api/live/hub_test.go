package live

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/courtmix/courtmix/internal/models"
	"github.com/courtmix/courtmix/internal/statesync"
	"github.com/courtmix/courtmix/internal/testutil"
	"github.com/courtmix/courtmix/internal/tournament"
)

func newTestSession(t *testing.T) (*tournament.Manager, *tournament.Session) {
	t.Helper()

	st := testutil.NewTestStore(t)
	m := tournament.NewManager(st, statesync.WithDebounce(time.Hour))

	entrants := make([]tournament.EntrantInput, 8)
	for i := range entrants {
		entrants[i] = tournament.EntrantInput{Name: "Player " + string(rune('A'+i))}
	}
	s, err := m.Create(context.Background(), "Club Night", models.TournamentConfig{
		Format:         models.FormatMexicano,
		Mode:           models.ModeIndividual,
		PointsPerMatch: 24,
		FixedPoints:    true,
		CourtCount:     2,
		RoundCount:     3,
	}, entrants, "key")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	t.Cleanup(m.Close)
	return m, s
}

func TestAttachSession_ForwardsUpdates(t *testing.T) {
	_, session := newTestSession(t)
	hub := NewHub()
	defer hub.Close()

	id := session.Document().ID
	c := &client{hub: hub, send: make(chan []byte, 8), room: id}
	hub.register(c)
	hub.AttachSession(session)

	matchID := session.Document().Rounds[0].Matches[0].ID
	s1, s2 := 14, 10
	if err := session.RecordScore(matchID, &s1, &s2); err != nil {
		t.Fatalf("record score: %v", err)
	}

	select {
	case payload := <-c.send:
		var msg Message
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Fatalf("decode broadcast: %v", err)
		}
		if msg.Type != TypeTournamentUpdated {
			t.Errorf("type = %q, want %q", msg.Type, TypeTournamentUpdated)
		}
		if msg.Document == nil || msg.Document.ID != id {
			t.Fatalf("broadcast carries wrong document: %+v", msg.Document)
		}
		if msg.Document.Meta.OrganiserKey != "" {
			t.Error("organiser key leaked to spectators")
		}
		m, _ := msg.Document.FindMatch(matchID)
		if m == nil || m.Score1 == nil || *m.Score1 != 14 {
			t.Errorf("broadcast missing recorded score: %+v", m)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no broadcast received")
	}
}

func TestAttachSession_OnlyOneForwarderPerTournament(t *testing.T) {
	_, session := newTestSession(t)
	hub := NewHub()
	defer hub.Close()

	hub.AttachSession(session)
	hub.AttachSession(session)

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	if len(hub.watched) != 1 {
		t.Fatalf("watched = %d, want 1", len(hub.watched))
	}
}

func TestSubscribe_SnapshotPrecedesBroadcasts(t *testing.T) {
	_, session := newTestSession(t)
	hub := NewHub()
	defer hub.Close()

	id := session.Document().ID
	snapshot, err := encodeMessage(Message{Type: TypeTournamentUpdated, TournamentID: id})
	if err != nil {
		t.Fatalf("encode snapshot: %v", err)
	}

	c := &client{hub: hub, send: make(chan []byte, 8), room: id}
	hub.subscribe(c, snapshot)
	hub.Broadcast(id, Message{Type: TypeTournamentUpdated, TournamentID: id, Document: session.Document()})

	first := <-c.send
	var msg Message
	if err := json.Unmarshal(first, &msg); err != nil {
		t.Fatalf("decode first frame: %v", err)
	}
	if msg.Document != nil {
		t.Fatalf("the connect snapshot must be delivered before any broadcast")
	}
	second := <-c.send
	if err := json.Unmarshal(second, &msg); err != nil {
		t.Fatalf("decode second frame: %v", err)
	}
	if msg.Document == nil {
		t.Fatalf("the broadcast should follow the snapshot")
	}
}

func TestServeWS_PushesSnapshotOnConnect(t *testing.T) {
	manager, session := newTestSession(t)
	hub := NewHub()
	defer hub.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/tournaments/{id}/ws", ServeWS(hub, manager))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	id := session.Document().ID
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/tournaments/" + id + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if msg.TournamentID != id {
		t.Errorf("tournamentId = %q, want %q", msg.TournamentID, id)
	}
	if msg.Document == nil || len(msg.Document.Rounds) != 1 {
		t.Fatalf("snapshot missing document rounds: %+v", msg.Document)
	}
}

func TestServeWS_UnknownTournament(t *testing.T) {
	manager, _ := newTestSession(t)
	hub := NewHub()
	defer hub.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/tournaments/{id}/ws", ServeWS(hub, manager))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/tournaments/missing/ws")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}
