// Copyright (c) 2025 The chatrelay Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package rooms maintains the client<->room membership mapping and the
// broadcast fan-out that sends a message to every other member of a room.
//
// All mutations are serialized under a single mutex; readers take a
// snapshot under the mutex and iterate unlocked, so that sends (which may
// block on a slow peer) never hold the lock.
package rooms

import (
	"sync"

	logging "gopkg.in/op/go-logging.v1"

	"go.chatrelay.io/chatrelay/ids"
)

// Sender delivers one message to one client. Implementations are expected
// to be non-blocking from the caller's perspective (e.g. enqueue onto a
// per-connection outbound channel) since Broadcast calls it once per
// recipient while holding no lock.
type Sender func(to ids.ClientId, message string) error

// Registry owns the client<->room mapping and each room's append-only
// message log.
type Registry struct {
	mu sync.Mutex

	clientRoom map[ids.ClientId]ids.RoomId
	members    map[ids.RoomId][]ids.ClientId
	log        map[ids.RoomId][]string

	logger *logging.Logger
}

// New returns an empty Registry.
func New(logger *logging.Logger) *Registry {
	return &Registry{
		clientRoom: make(map[ids.ClientId]ids.RoomId),
		members:    make(map[ids.RoomId][]ids.ClientId),
		log:        make(map[ids.RoomId][]string),
		logger:     logger,
	}
}

// Join moves client into newRoom, removing it from its previous room (if
// any). Joining the room the client already occupies is a no-op beyond
// that (idempotent: membership ends up with exactly one entry for client).
func (r *Registry) Join(client ids.ClientId, newRoom ids.RoomId) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if oldRoom, ok := r.clientRoom[client]; ok {
		if oldRoom == newRoom {
			return
		}
		r.removeMember(oldRoom, client)
	}

	r.clientRoom[client] = newRoom
	if !containsClient(r.members[newRoom], client) {
		r.members[newRoom] = append(r.members[newRoom], client)
	}
}

// Leave removes client from its current room and from the client->room
// map entirely. Called on disconnect.
func (r *Registry) Leave(client ids.ClientId) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.clientRoom[client]
	if !ok {
		return
	}
	r.removeMember(room, client)
	delete(r.clientRoom, client)
}

// removeMember deletes client from room's member slice. Caller holds r.mu.
func (r *Registry) removeMember(room ids.RoomId, client ids.ClientId) {
	members := r.members[room]
	for i, c := range members {
		if c == client {
			r.members[room] = append(members[:i], members[i+1:]...)
			return
		}
	}
}

func containsClient(members []ids.ClientId, client ids.ClientId) bool {
	for _, c := range members {
		if c == client {
			return true
		}
	}
	return false
}

// RoomOf returns the room client currently occupies (0 if the client has
// never joined and has no record, matching the implicit room 0 default).
func (r *Registry) RoomOf(client ids.ClientId) ids.RoomId {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clientRoom[client]
}

// MembersOf returns a stable snapshot of the members of client's current
// room, suitable for iteration outside the lock.
func (r *Registry) MembersOf(client ids.ClientId) []ids.ClientId {
	r.mu.Lock()
	defer r.mu.Unlock()
	room := r.clientRoom[client]
	return append([]ids.ClientId(nil), r.members[room]...)
}

// MessageLog returns a copy of room's broadcast message log, for
// in-process observation and testing; it is never persisted to disk.
func (r *Registry) MessageLog(room ids.RoomId) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.log[room]...)
}

// Broadcast appends message to the sender's room's MessageLog, then sends
// it to every other member of that room via send. Per-recipient failures
// are logged and do not abort the broadcast for other recipients.
func (r *Registry) Broadcast(sender ids.ClientId, message string, send Sender) {
	r.mu.Lock()
	room := r.clientRoom[sender]
	r.log[room] = append(r.log[room], message)
	members := append([]ids.ClientId(nil), r.members[room]...)
	r.mu.Unlock()

	for _, member := range members {
		if member == sender {
			continue
		}
		if err := send(member, message); err != nil {
			if r.logger != nil {
				r.logger.Errorf("broadcast to client %d in room %d: %v", member, room, err)
			}
		}
	}
}
