// internal/handlers/rooms.go
package handlers

import (
	"encoding/json"
	"net/http"
)

// roomSummary is the public shape of one room in the listing endpoint.
type roomSummary struct {
	RoomID  string `json:"roomId"`
	Players int    `json:"players"`
	Started bool   `json:"started"`
}

// ListRoomsHandler returns a JSON listing of active rooms: id, player
// count, and whether a game is running. In-memory only; there is no
// pagination because the registry lives and dies with the process.
func ListRoomsHandler(srv *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		rooms := srv.Rooms.Rooms()
		out := make([]roomSummary, 0, len(rooms))
		for id, room := range rooms {
			room.Mu.Lock()
			out = append(out, roomSummary{
				RoomID:  id,
				Players: len(room.Players),
				Started: room.Started,
			})
			room.Mu.Unlock()
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(out); err != nil {
			srv.Logger.Warnf("failed to encode room list: %v", err)
		}
	}
}
