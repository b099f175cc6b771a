// Copyright (c) 2025 The chatrelay Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package session implements the per-connection handler task: the
// connection reader/dispatcher loop, the outbound writer, and the acceptor
// loop that ties them to the room registry, the response-promise table,
// and the file-offer coordinator.
package session

import (
	"errors"
	"fmt"

	logging "gopkg.in/op/go-logging.v1"

	"go.chatrelay.io/chatrelay/ids"
	"go.chatrelay.io/chatrelay/promise"
	"go.chatrelay.io/chatrelay/rooms"
	"go.chatrelay.io/chatrelay/transfer"
	"go.chatrelay.io/chatrelay/wire"
)

// unknownCommandText is the exact reply text for unparsable or unrecognized
// messages.
const unknownCommandText = "Unknown command."

// Dispatcher routes one decoded message to its handler, holding the shared
// registries a handler may need. It is stateless with respect to any one
// connection; per-connection data (the socket, the outbound writer, the
// file-reception state) lives in conn and is passed in on every call.
type Dispatcher struct {
	registry    *rooms.Registry
	promises    *promise.Table
	coordinator *transfer.Coordinator
	dir         *directory
	filesRoot   string
	logger      *logging.Logger
}

// NewDispatcher returns a Dispatcher wired to the given shared state.
// filesRoot is the directory under which per-sender upload directories are
// created (spec.md §6's "<root>/ServerFiles").
func NewDispatcher(registry *rooms.Registry, promises *promise.Table, coordinator *transfer.Coordinator, dir *directory, filesRoot string, logger *logging.Logger) *Dispatcher {
	return &Dispatcher{
		registry:    registry,
		promises:    promises,
		coordinator: coordinator,
		dir:         dir,
		filesRoot:   filesRoot,
		logger:      logger,
	}
}

// Dispatch handles one decoded message from the connection identified by
// id, whose outbound writer and file-reception state are c.
func (d *Dispatcher) Dispatch(id ids.ClientId, c *conn, cmd wire.Command, payload []byte) {
	switch cmd {
	case wire.JoinRoom:
		d.handleJoinRoom(id, c, payload)
	case wire.MessageText:
		d.handleMessageText(id, c, payload)
	case wire.FileOffer:
		d.handleFileOffer(id, c, payload)
	case wire.FileSize:
		d.handleFileSize(id, c, payload)
	case wire.FileChunk:
		d.handleFileChunk(id, c, payload)
	case wire.FileOfferResponse:
		d.promises.Fulfil(id, string(payload))
	default:
		d.replyUnknown(c)
	}
}

func (d *Dispatcher) handleJoinRoom(id ids.ClientId, c *conn, payload []byte) {
	name, room, ok := parseJoinRoom(string(payload))
	if !ok {
		d.replyUnknown(c)
		return
	}
	d.registry.Join(id, room)
	if err := c.Send(wire.JoinRoomResponse, []byte("Joined room successfully.")); err != nil {
		d.logf("reply to client %d: %v", id, err)
	}
	msg := fmt.Sprintf("CLIENT %s JOINED ROOM %d", name, room)
	d.registry.Broadcast(id, msg, d.dir.SendText)
}

func (d *Dispatcher) handleMessageText(id ids.ClientId, c *conn, payload []byte) {
	name, text, ok := parseMessageText(string(payload))
	if !ok {
		d.replyUnknown(c)
		return
	}
	msg := fmt.Sprintf("CLIENT %s: %s", name, text)
	d.registry.Broadcast(id, msg, d.dir.SendText)
}

func (d *Dispatcher) handleFileOffer(id ids.ClientId, c *conn, payload []byte) {
	senderName, filename, size, ok := parseFileOffer(string(payload))
	if !ok {
		d.replyUnknown(c)
		return
	}
	path, err := transfer.SafePath(d.filesRoot, senderName, filename)
	if err != nil {
		d.logf("file offer from client %d: %v", id, err)
		d.replyUnknown(c)
		return
	}

	members := d.registry.MembersOf(id)
	offer := transfer.Offer{Path: path, Filename: filename, Size: size, Sender: id, SenderName: senderName}
	d.coordinator.Offer(offer, members, d.dir)

	if err := c.Send(wire.MessageTextResponse, []byte("File transfer complete to all clients.")); err != nil {
		d.logf("reply to client %d: %v", id, err)
	}
}

func (d *Dispatcher) handleFileSize(id ids.ClientId, c *conn, payload []byte) {
	clientName, filename, size, ok := parseFileSize(string(payload))
	if !ok {
		d.replyUnknown(c)
		return
	}
	path, err := transfer.SafePath(d.filesRoot, clientName, filename)
	if err != nil {
		d.logf("file size from client %d: %v", id, err)
		d.replyUnknown(c)
		return
	}
	if err := c.receiver.Open(path, size); err != nil {
		d.logf("open %s for client %d: %v", path, id, err)
		d.replyUnknown(c)
	}
}

func (d *Dispatcher) handleFileChunk(id ids.ClientId, c *conn, payload []byte) {
	_, err := c.receiver.Write(payload)
	if err == nil {
		return
	}
	if errors.Is(err, transfer.ErrNoTransfer) {
		d.logf("file chunk with no transfer state for client %d", id)
		return
	}
	d.logf("write file chunk for client %d: %v", id, err)
}

func (d *Dispatcher) replyUnknown(c *conn) {
	if err := c.Send(wire.Unknown, []byte(unknownCommandText)); err != nil {
		d.logf("reply Unknown to client %d: %v", c.id, err)
	}
}

func (d *Dispatcher) logf(format string, args ...interface{}) {
	if d.logger != nil {
		d.logger.Errorf(format, args...)
	}
}
