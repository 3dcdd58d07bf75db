// Package presence tracks which users currently hold a live connection.
package presence

import (
	"sync"

	"github.com/google/uuid"
)

// Registry maps each online user to exactly one connection. A reconnect
// overwrites the previous mapping (last connection wins); an unregister for a
// superseded connection leaves the newer one in place. The registry is
// ephemeral process state with no persistence.
type Registry struct {
	mu     sync.RWMutex
	byUser map[uuid.UUID]uuid.UUID
	byConn map[uuid.UUID]uuid.UUID
}

func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[uuid.UUID]uuid.UUID),
		byConn: make(map[uuid.UUID]uuid.UUID),
	}
}

// Register records connID as the user's live connection, replacing any
// previous one.
func (r *Registry) Register(userID, connID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byUser[userID]; ok {
		delete(r.byConn, old)
	}
	r.byUser[userID] = connID
	r.byConn[connID] = userID
}

// Unregister removes whichever entry holds this specific connection. A no-op
// when the connection is unknown or was already superseded by a reconnect.
func (r *Registry) Unregister(connID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.byConn[connID]
	if !ok {
		return
	}
	delete(r.byConn, connID)
	if r.byUser[userID] == connID {
		delete(r.byUser, userID)
	}
}

// Lookup returns the user's current connection, if any.
func (r *Registry) Lookup(userID uuid.UUID) (uuid.UUID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	connID, ok := r.byUser[userID]
	return connID, ok
}

// Online returns the set of user ids with a live connection.
func (r *Registry) Online() []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]uuid.UUID, 0, len(r.byUser))
	for userID := range r.byUser {
		users = append(users, userID)
	}
	return users
}
