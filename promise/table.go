// Copyright (c) 2025 The chatrelay Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package promise implements the response-promise table: a per-ClientId
// single-shot awaitable slot that a waiter arms to await the next offer
// response from that client.
//
// At most one promise is armed per ClientId at a time; arming a second one
// for the same client overwrites the first (the previous waiter is
// abandoned — an accepted race, per spec.md §4.6 step 2a).
package promise

import (
	"sync"

	"go.chatrelay.io/chatrelay/ids"
)

// Waiter is the awaitable side of an armed promise: a buffered channel that
// receives exactly one value, from Fulfil.
type Waiter <-chan string

// Disconnected is the sentinel value Fulfil is called with when a client's
// connection tears down while a promise is armed for it, so that any
// waiter unblocks instead of hanging until timeout.
const Disconnected = "\x00disconnected"

// Table is the process-wide armed-promise registry, guarded by a dedicated
// mutex: every Arm/Fulfil/Disarm call is serialized.
type Table struct {
	mu    sync.Mutex
	armed map[ids.ClientId]chan string
}

// New returns an empty Table.
func New() *Table {
	return &Table{armed: make(map[ids.ClientId]chan string)}
}

// Arm creates and installs a promise for client, returning the waiter side.
// If a promise was already armed for client, it is replaced; nothing is
// sent to the previous waiter, which is expected to rely on its own
// timeout.
func (t *Table) Arm(client ids.ClientId) Waiter {
	ch := make(chan string, 1)
	t.mu.Lock()
	t.armed[client] = ch
	t.mu.Unlock()
	return ch
}

// Fulfil delivers value to the promise armed for client, if any, and
// removes it. If no promise is armed, the value is dropped silently.
func (t *Table) Fulfil(client ids.ClientId, value string) {
	t.mu.Lock()
	ch, ok := t.armed[client]
	if ok {
		delete(t.armed, client)
	}
	t.mu.Unlock()
	if ok {
		ch <- value
	}
}

// Disarm removes any promise armed for client without fulfilling it; a
// waiter that has not yet received a value observes timeout semantics via
// its own timer.
func (t *Table) Disarm(client ids.ClientId) {
	t.mu.Lock()
	delete(t.armed, client)
	t.mu.Unlock()
}

// Armed reports whether a promise is currently armed for client. It exists
// for tests asserting the "at most one armed promise" invariant; it is not
// used on the hot path.
func (t *Table) Armed(client ids.ClientId) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.armed[client]
	return ok
}
