package httpx

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

// handleStream answers validate requests over a WebSocket, one JSON frame in,
// one JSON frame out. A bad frame gets an error frame; the connection stays up.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Warning: websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxJSONBodyBytes)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("Warning: websocket read: %v", err)
			}
			return
		}

		var reply any
		var req ValidateRequest
		if err := json.Unmarshal(data, &req); err != nil {
			reply = errorResponse{Error: badRequest("invalid frame: %v", err).Error()}
		} else if resp, err := s.evaluate(req); err != nil {
			reply = errorResponse{Error: err.Error()}
		} else {
			reply = resp
		}

		if err := conn.WriteJSON(reply); err != nil {
			log.Printf("Warning: websocket write: %v", err)
			return
		}
	}
}
