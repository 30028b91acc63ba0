// internal/api/live/hub.go

// Package live pushes tournament state to spectator connections. One
// room per tournament; every state change broadcasts a fresh document
// snapshot to the room.
package live

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/courtmix/courtmix/internal/models"
	"github.com/courtmix/courtmix/internal/tournament"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Message is the envelope pushed to spectators.
type Message struct {
	Type         string                     `json:"type"`
	TournamentID string                     `json:"tournamentId"`
	Document     *models.TournamentDocument `json:"document,omitempty"`
}

const TypeTournamentUpdated = "TOURNAMENT_UPDATED"

// Hub fans broadcast payloads out to the spectator connections of each
// tournament room.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[*client]struct{}
	watched map[string]struct{}

	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		rooms:   make(map[string]map[*client]struct{}),
		watched: make(map[string]struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Close stops all session forwarders.
func (h *Hub) Close() { h.cancel() }

// AttachSession starts forwarding a session's refresh signals to its
// room. Safe to call repeatedly; only the first call per tournament
// starts a forwarder. Forwarders run until the hub is closed.
func (h *Hub) AttachSession(s *tournament.Session) {
	id := s.Document().ID

	h.mu.Lock()
	if _, ok := h.watched[id]; ok {
		h.mu.Unlock()
		return
	}
	h.watched[id] = struct{}{}
	h.mu.Unlock()

	go func() {
		for {
			select {
			case <-h.ctx.Done():
				h.mu.Lock()
				delete(h.watched, id)
				h.mu.Unlock()
				return
			case <-s.Updates():
				doc := s.Document()
				doc.Meta.OrganiserKey = "" // never leaves the server
				h.Broadcast(id, Message{
					Type:         TypeTournamentUpdated,
					TournamentID: id,
					Document:     doc,
				})
			}
		}
	}()
}

func encodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// Broadcast sends a message to every connection in a room. A connection
// that cannot keep up is skipped; it will catch up on the next change.
func (h *Hub) Broadcast(roomID string, msg Message) {
	payload, err := encodeMessage(msg)
	if err != nil {
		log.Error().Err(err).Str("room", roomID).Msg("Failed to marshal broadcast")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[roomID] {
		select {
		case c.send <- payload:
		default:
			log.Debug().Str("room", roomID).Msg("Dropping update for slow spectator")
		}
	}
}

// subscribe queues the connect snapshot and then joins the room.
// Queuing first means no broadcast can land ahead of the snapshot, so a
// joiner never sees newer state followed by an older frame.
func (h *Hub) subscribe(c *client, snapshot []byte) {
	c.send <- snapshot
	h.register(c)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[c.room] == nil {
		h.rooms[c.room] = make(map[*client]struct{})
	}
	h.rooms[c.room][c] = struct{}{}
	log.Debug().Str("room", c.room).Int("spectators", len(h.rooms[c.room])).Msg("Spectator joined")
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.rooms[c.room]; ok {
		if _, present := set[c]; present {
			delete(set, c)
			close(c.send)
			if len(set) == 0 {
				delete(h.rooms, c.room)
			}
		}
	}
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	room string
}

func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// Spectators are read-only; inbound frames only keep the
		// connection alive.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Str("room", c.room).Msg("Spectator connection error")
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
