package updater

import (
	"net/http"

	"github.com/gorilla/websocket"
)

// NewUpdater builds the websocket upgrader. Browsers send an Origin
// header; anything outside the allow-list is refused. An empty origin
// (non-browser client) is accepted.
func NewUpdater(allowedOrigins []string) *websocket.Upgrader {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}
	return &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			if len(allowed) == 0 {
				return true
			}
			_, ok := allowed[origin]
			return ok
		},
	}
}
