package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (s *Server) handleChatWebSocket(w http.ResponseWriter, r *http.Request) {
	sess := s.getSession(r.URL.Query().Get("session"))

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade websocket", "error", err)
		return
	}
	defer ws.Close()

	sess.mu.Lock()
	sess.usage.Conversations++
	sess.mu.Unlock()

	for {
		var msg struct {
			Message string `json:"message"`
		}
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				break
			}
			slog.Error("WebSocket read error", "error", err)
			break
		}

		// Empty messages append no turn and get no reply.
		if strings.TrimSpace(msg.Message) == "" {
			continue
		}

		sess.mu.Lock()
		sess.usage.Messages++
		result, err := s.run.Run(r.Context(), sess.agent, msg.Message)
		sess.mu.Unlock()
		if err != nil {
			slog.Error("Chat turn abandoned", "error", err)
			break
		}

		if err := ws.WriteJSON(map[string]string{"reply": result.FinalOutput}); err != nil {
			slog.Error("WebSocket write error", "error", err)
			break
		}
	}
}
