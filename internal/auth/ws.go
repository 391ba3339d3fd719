package auth

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type usernameCheckMessage struct {
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}

// UsernameCheck streams live availability of the username in the `u` query
// parameter over a websocket, one message per change. Clients should
// debounce typing (≥300ms, >3 chars) before opening a socket; redundant
// store signals are already deduplicated by the service.
func (h *Handler) UsernameCheck(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("u")
	if strings.TrimSpace(username) == "" {
		http.Error(w, "missing username", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	updates, err := h.service.WatchAvailability(ctx, username)
	if err != nil {
		_ = conn.WriteJSON(usernameCheckMessage{Error: err.Error()})
		return
	}

	// Reads only serve to detect the peer closing the socket.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	for st := range updates {
		msg := usernameCheckMessage{Available: st.Available, Error: st.Err}
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
	}
}
