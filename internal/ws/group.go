package ws

import (
	"sync"
)

// group is the set of live connections subscribed to one room.
type group struct {
	mu    sync.RWMutex // guards conns
	ord   sync.Mutex   // serializes fan-out; defines the room's event order
	conns map[*clientConn]struct{}
}

func newGroup() *group { return &group{conns: map[*clientConn]struct{}{}} }

func (g *group) add(c *clientConn) {
	g.mu.Lock()
	g.conns[c] = struct{}{}
	g.mu.Unlock()
}

func (g *group) remove(c *clientConn) {
	g.mu.Lock()
	delete(g.conns, c)
	g.mu.Unlock()
}

func (g *group) empty() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.conns) == 0
}

// broadcast delivers msg to every subscribed connection. Concurrent
// broadcasts to the same group are serialized by ord, so every member
// observes the same event sequence. after, when non-nil, runs inside the
// ordering section so state tied to the event lands in that same order.
func (g *group) broadcast(msg []byte, after func()) {
	g.ord.Lock()
	defer g.ord.Unlock()

	// Take a quick snapshot of the current connections
	g.mu.RLock()
	conns := make([]*clientConn, 0, len(g.conns))
	for c := range g.conns {
		conns = append(conns, c)
	}
	g.mu.RUnlock()

	// Do the I/O outside the conns lock
	var failed []*clientConn
	for _, c := range conns {
		if err := c.write(msg); err != nil {
			failed = append(failed, c)
		}
	}
	for _, c := range failed {
		g.remove(c)
		_ = c.rawConn.CloseNow()
	}

	if after != nil {
		after()
	}
}
