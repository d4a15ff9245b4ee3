package registry

import (
	"sync"

	"go.uber.org/zap"
)

// Message is one chat line as stored in a room's history.
type Message struct {
	SenderName string `json:"sender_name"`
	Body       string `json:"body"`
}

// RoomInfo is a point-in-time copy of a room's public state.
type RoomInfo struct {
	Code        string `json:"code"`
	MemberCount int    `json:"member_count"`
}

// room is owned exclusively by the Registry; callers never see it.
type room struct {
	mu      sync.Mutex
	members int
	history []Message // append-only, insertion order = chronological order
}

// Registry maps room codes to live room state. It is the sole source of
// truth for room existence. Per-room mutations are serialized by the room
// mutex; distinct rooms mutate in parallel.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*room
}

func New() *Registry {
	return &Registry{rooms: make(map[string]*room)}
}

// Exists reports whether a room with the given code is currently live.
func (r *Registry) Exists(code string) bool {
	r.mu.RLock()
	_, ok := r.rooms[code]
	r.mu.RUnlock()
	return ok
}

// Create inserts a new empty room. Returns false (no-op) when the code is
// already taken.
func (r *Registry) Create(code string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[code]; ok {
		return false
	}
	r.rooms[code] = &room{}
	return true
}

// Snapshot returns a copy of the room's public state.
func (r *Registry) Snapshot(code string) (RoomInfo, bool) {
	r.mu.RLock()
	rm, ok := r.rooms[code]
	r.mu.RUnlock()
	if !ok {
		return RoomInfo{}, false
	}
	rm.mu.Lock()
	info := RoomInfo{Code: code, MemberCount: rm.members}
	rm.mu.Unlock()
	return info, true
}

// History returns a copy of the room's message history, oldest first.
// Returns nil when the room is absent.
func (r *Registry) History(code string) []Message {
	r.mu.RLock()
	rm, ok := r.rooms[code]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	rm.mu.Lock()
	out := make([]Message, len(rm.history))
	copy(out, rm.history)
	rm.mu.Unlock()
	return out
}

// AppendMessage appends msg to the room's history. A message arriving for a
// room that no longer exists is dropped; that is a normal outcome, not an
// error.
func (r *Registry) AppendMessage(code string, msg Message) bool {
	r.mu.RLock()
	rm, ok := r.rooms[code]
	r.mu.RUnlock()
	if !ok {
		zap.L().Debug("registry.append_dropped", zap.String("room", code))
		return false
	}
	rm.mu.Lock()
	rm.history = append(rm.history, msg)
	rm.mu.Unlock()
	return true
}

// IncrementMembers bumps the member count. Returns the new count, or false
// when the room is absent.
func (r *Registry) IncrementMembers(code string) (int, bool) {
	// Write lock, mirroring DecrementMembers: a concurrent last-member
	// decrement deletes the map entry, and an increment that fetched the
	// room under a read lock could land on the detached struct.
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[code]
	if !ok {
		return 0, false
	}
	rm.mu.Lock()
	rm.members++
	n := rm.members
	rm.mu.Unlock()
	return n, true
}

// DecrementMembers drops the member count and deletes the room entry when
// the result reaches zero. Calling it on an already-deleted code is a no-op,
// so the count can never go negative.
func (r *Registry) DecrementMembers(code string) (int, bool) {
	// Deletion mutates the map, so the write lock covers the whole step.
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[code]
	if !ok {
		return 0, false
	}
	rm.mu.Lock()
	rm.members--
	n := rm.members
	rm.mu.Unlock()
	if n <= 0 {
		delete(r.rooms, code)
		zap.L().Info("registry.room_deleted", zap.String("room", code))
		return 0, true
	}
	return n, true
}

// Len returns the number of live rooms.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
