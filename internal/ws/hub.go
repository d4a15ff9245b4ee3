package ws

import (
	"sync"
)

// Hub keeps the broadcast group for every room that currently has at least
// one live connection. Group membership changes go through the hub lock so
// that an emptied group is removed atomically and deleted rooms never leak
// an entry here.
type Hub struct {
	mu     sync.RWMutex
	groups map[string]*group // room code -> live connections
}

func NewHub() *Hub {
	return &Hub{groups: make(map[string]*group)}
}

// Join subscribes a connection to the room's broadcast group, creating the
// group on first use.
func (h *Hub) Join(roomCode string, c *clientConn) {
	h.mu.Lock()
	g, ok := h.groups[roomCode]
	if !ok {
		g = newGroup()
		h.groups[roomCode] = g
	}
	// Inside the hub lock so a concurrent Leave cannot drop the group
	// between lookup and add.
	g.add(c)
	h.mu.Unlock()
}

// Leave detaches a connection from the room's group; a no-op if it was never
// subscribed. The group entry is dropped once its last connection is gone.
func (h *Hub) Leave(roomCode string, c *clientConn) {
	h.mu.Lock()
	g, ok := h.groups[roomCode]
	if ok {
		g.remove(c)
		if g.empty() {
			delete(h.groups, roomCode)
		}
	}
	h.mu.Unlock()
}

// Broadcast fans msg out to every connection currently subscribed to the
// room. Broadcasts to one room are totally ordered: concurrent callers are
// serialized and every subscriber observes the same sequence. Unknown rooms
// are a no-op.
func (h *Hub) Broadcast(roomCode string, msg []byte) {
	h.Dispatch(roomCode, msg, nil)
}

// Dispatch fans msg out like Broadcast and additionally runs after (when
// non-nil) before the room's ordering section is released, so state updates
// tied to the event — history appends — land in broadcast order. after runs
// even when the room has no live group.
func (h *Hub) Dispatch(roomCode string, msg []byte, after func()) {
	h.mu.RLock()
	g, ok := h.groups[roomCode]
	h.mu.RUnlock()
	if !ok {
		if after != nil {
			after()
		}
		return
	}
	g.broadcast(msg, after)
}
