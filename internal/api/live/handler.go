// internal/api/live/handler.go
package live

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/courtmix/courtmix/internal/tournament"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWS upgrades a spectator connection and subscribes it to the
// tournament's room. The current document is pushed immediately so a
// late joiner does not wait for the next change.
func ServeWS(hub *Hub, manager *tournament.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		session, err := manager.Get(r.Context(), id)
		if err != nil {
			http.Error(w, "tournament not found", http.StatusNotFound)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Ctx(r.Context()).Error().Err(err).Msg("Websocket upgrade failed")
			return
		}

		hub.AttachSession(session)

		c := &client{hub: hub, conn: conn, send: make(chan []byte, 8), room: id}

		doc := session.Document()
		doc.Meta.OrganiserKey = ""
		snapshot, err := encodeMessage(Message{
			Type:         TypeTournamentUpdated,
			TournamentID: id,
			Document:     doc,
		})
		if err != nil {
			log.Ctx(r.Context()).Error().Err(err).Msg("Failed to encode connect snapshot")
			conn.Close()
			return
		}
		hub.subscribe(c, snapshot)

		go c.writePump()
		go c.readPump()
	}
}
