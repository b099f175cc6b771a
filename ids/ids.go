// Copyright (c) 2025 The chatrelay Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ids defines the identifier types shared across the room
// registry, the response-promise table, and the file-transfer coordinator,
// so that none of those packages need to import one another just to agree
// on a key type.
package ids

// ClientId stably identifies a connected client for the lifetime of its
// socket. It is assigned by the acceptor loop on accept and is never
// reused within a process lifetime.
type ClientId uint64

// RoomId is a signed integer chosen by the client at join time. Room 0 is
// the implicit room a client occupies before any explicit join.
type RoomId int64
