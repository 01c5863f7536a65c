// Package runtime owns event propagation for the relay process: the
// connection registry, the message relay, and the supervised workers.
// It orchestrates the system without containing business logic.
package runtime

import (
	"sync"
	"time"

	"connectrix/contract"
	"connectrix/domain"
)

type set map[string]struct{}

// Registry maps authenticated users to their live connections and groups
// connections into rooms. All maps are guarded by one mutex; the relay
// process is the only writer, so the contract stays single-process.
type Registry struct {
	mu sync.RWMutex
	// sessions and sinks are keyed per connection, so multi-device users
	// keep one entry per device.
	sessions map[string]domain.Session
	sinks    map[string]contract.EventSink
	// byUser is the targeted-delivery lookup. Last registration wins: a
	// second device replaces the entry, while room broadcast delivery is
	// unaffected since membership is per connection.
	byUser    map[string]string
	userConns map[string]set
	rooms     map[domain.RoomID]set
}

func NewRegistry() *Registry {
	return &Registry{
		sessions:  make(map[string]domain.Session),
		sinks:     make(map[string]contract.EventSink),
		byUser:    make(map[string]string),
		userConns: make(map[string]set),
		rooms:     make(map[domain.RoomID]set),
	}
}

func (r *Registry) Register(connectionID, userID string, sink contract.EventSink) domain.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	session := domain.Session{
		UserID:       userID,
		ConnectionID: connectionID,
		JoinedAt:     time.Now().UTC(),
	}
	r.sessions[connectionID] = session
	r.sinks[connectionID] = sink
	r.byUser[userID] = connectionID

	if _, ok := r.userConns[userID]; !ok {
		r.userConns[userID] = make(set)
	}
	r.userConns[userID][connectionID] = struct{}{}

	return session
}

// Unregister removes the session for a connection. Idempotent: unknown
// connections return empty results. lastOfUser reports whether this was
// the user's final live session, which gates the presence-offline write.
func (r *Registry) Unregister(connectionID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[connectionID]
	if !ok {
		return "", false
	}
	delete(r.sessions, connectionID)
	delete(r.sinks, connectionID)

	for roomID, members := range r.rooms {
		delete(members, connectionID)
		if len(members) == 0 {
			delete(r.rooms, roomID)
		}
	}

	userID := session.UserID
	if conns, ok := r.userConns[userID]; ok {
		delete(conns, connectionID)
		if len(conns) == 0 {
			delete(r.userConns, userID)
		}
	}
	if r.byUser[userID] == connectionID {
		delete(r.byUser, userID)
		// Fall back to another live device so targeted delivery survives.
		for conn := range r.userConns[userID] {
			r.byUser[userID] = conn
			break
		}
	}

	_, remains := r.userConns[userID]
	return userID, !remains
}

func (r *Registry) Lookup(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.byUser[userID]
	return conn, ok
}

// Join adds a connection to a room, creating the room lazily.
// Membership is a set, so joining twice is a no-op.
func (r *Registry) Join(connectionID string, roomID domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[connectionID]; !ok {
		// An unauthenticated or already-gone connection cannot join rooms.
		return
	}
	if _, ok := r.rooms[roomID]; !ok {
		r.rooms[roomID] = make(set)
	}
	r.rooms[roomID][connectionID] = struct{}{}
}

func (r *Registry) Leave(connectionID string, roomID domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if members, ok := r.rooms[roomID]; ok {
		delete(members, connectionID)
		if len(members) == 0 {
			delete(r.rooms, roomID)
		}
	}
}

// SinksFor snapshots the sinks of a room's members at call time, minus the
// excluded connection. Fan-out against the snapshot is best-effort with no
// ordering guarantee versus concurrent joins.
func (r *Registry) SinksFor(roomID domain.RoomID, excludeConnectionID string) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	var sinks []contract.EventSink
	for connectionID := range members {
		if connectionID == excludeConnectionID {
			continue
		}
		if sink, exists := r.sinks[connectionID]; exists {
			sinks = append(sinks, sink)
		}
	}
	return sinks
}

// SessionCount and RoomCount feed the monitoring dashboard.
func (r *Registry) SessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
