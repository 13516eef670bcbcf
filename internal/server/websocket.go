package server

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/cortex/internal/cache"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// refreshRequest is the incoming websocket message.
type refreshRequest struct {
	Type      string `json:"type"` // "refresh"
	ForceFull bool   `json:"forceFull"`
}

// refreshEvent is an outgoing websocket message.
type refreshEvent struct {
	Type    string         `json:"type"` // "progress", "done" or "error"
	Done    int            `json:"done,omitempty"`
	Total   int            `json:"total,omitempty"`
	Repo    string         `json:"repo,omitempty"`
	Summary *cache.Summary `json:"summary,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// handleRefreshSocket runs a refresh for each request message and streams
// per-repo progress followed by the result.
func (s *Server) handleRefreshSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade", "error", err)
		return
	}
	defer conn.Close()

	for {
		var req refreshRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket read", "error", err)
			}
			return
		}
		if req.Type != "refresh" {
			s.send(conn, refreshEvent{Type: "error", Error: "unknown message type: " + req.Type})
			continue
		}

		res, err := s.refresher.RefreshWithProgress(r.Context(), req.ForceFull, func(done, total int, repoID string) {
			s.send(conn, refreshEvent{Type: "progress", Done: done, Total: total, Repo: repoID})
		})
		if err != nil {
			s.send(conn, refreshEvent{Type: "error", Error: err.Error()})
			continue
		}
		summary := res.Summary()
		s.send(conn, refreshEvent{Type: "done", Summary: &summary})
	}
}

func (s *Server) send(conn *websocket.Conn, ev refreshEvent) {
	if err := conn.WriteJSON(ev); err != nil {
		s.logger.Debug("websocket write", "error", err)
	}
}
