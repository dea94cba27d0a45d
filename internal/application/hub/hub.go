package hub

import (
	"sync"

	"go.uber.org/zap"

	"canvasroom/internal/application/client"
)

// Session is the identity a connection acquires after createRoom or
// joinRoom. A session belongs to exactly one room for its lifetime.
type Session struct {
	UserID   string
	Username string
	RoomID   string
}

// Hub tracks live connections and their room sessions, and fans
// payloads out to the members of a room. Broadcasts are always
// room-scoped, never global.
type Hub struct {
	mu          sync.RWMutex
	connections map[string]*client.Client
	sessions    map[string]Session
	log         *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		connections: make(map[string]*client.Client),
		sessions:    make(map[string]Session),
		log:         log,
	}
}

func (h *Hub) Add(c *client.Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[c.ID] = c
	h.log.Info("client connected", zap.String("id", c.ID))
}

// Remove drops the connection and closes its send channel. Any
// session must be resolved (and membership torn down) before calling
// this.
func (h *Hub) Remove(c *client.Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.connections[c.ID]; !ok {
		return
	}
	delete(h.connections, c.ID)
	delete(h.sessions, c.ID)
	close(c.Send)
	h.log.Info("client disconnected", zap.String("id", c.ID))
}

// Bind associates a connection with a (room, user) identity.
func (h *Hub) Bind(clientID string, s Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[clientID] = s
}

func (h *Hub) SessionOf(clientID string) (Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.sessions[clientID]
	return s, ok
}

func (h *Hub) Unbind(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, clientID)
}

// Send delivers a payload to one client. A client that cannot keep up
// loses the message rather than stalling the room.
func (h *Hub) Send(c *client.Client, payload []byte) {
	select {
	case c.Send <- payload:
	default:
		h.log.Warn("client slow, dropping message", zap.String("id", c.ID))
	}
}

// BroadcastRoom delivers a payload to every session currently joined
// to the room. excludeID skips one client (the author of a cursor
// move); pass "" to include everyone.
func (h *Hub) BroadcastRoom(roomID string, payload []byte, excludeID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, s := range h.sessions {
		if s.RoomID != roomID || id == excludeID {
			continue
		}
		c, ok := h.connections[id]
		if !ok {
			continue
		}
		select {
		case c.Send <- payload:
		default:
			h.log.Warn("client slow, dropping message", zap.String("id", id))
		}
	}
}

// RoomClients returns the client ids currently bound to the room.
func (h *Hub) RoomClients(roomID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var ids []string
	for id, s := range h.sessions {
		if s.RoomID == roomID {
			ids = append(ids, id)
		}
	}
	return ids
}

// Stop closes every connection's send channel, ending write pumps.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.connections {
		close(c.Send)
		delete(h.connections, id)
		delete(h.sessions, id)
	}
	h.log.Info("hub stopped")
}
