// Copyright (c) 2025 The chatrelay Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package session

import (
	"fmt"
	"net"
	"sync"

	"go.chatrelay.io/chatrelay/ids"
	"go.chatrelay.io/chatrelay/transfer"
	"go.chatrelay.io/chatrelay/wire"
)

// outboxCapacity bounds how many encoded frames may queue for a slow peer
// before Send starts blocking its caller.
const outboxCapacity = 64

// conn is one accepted connection's state: the socket, its single writer
// goroutine, and the file-reception state machine owned exclusively by this
// connection (spec.md §4.7/§5).
type conn struct {
	id   ids.ClientId
	nc   net.Conn
	out  chan []byte
	done chan struct{}

	closeOnce sync.Once
	receiver  transfer.Receiver
}

func newConn(id ids.ClientId, nc net.Conn) *conn {
	c := &conn{
		id:   id,
		nc:   nc,
		out:  make(chan []byte, outboxCapacity),
		done: make(chan struct{}),
	}
	go c.writeLoop()
	return c
}

// writeLoop is the connection's sole writer: every frame reaching the
// socket passes through this goroutine, so concurrent senders (the
// dispatcher's own replies, the broadcast engine, the file-offer
// coordinator's streaming sends) never interleave partial frames.
func (c *conn) writeLoop() {
	for {
		select {
		case frame, ok := <-c.out:
			if !ok {
				return
			}
			if _, err := c.nc.Write(frame); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// Send encodes and enqueues one frame for delivery on this connection;
// directory.Send routes to it when acting as transfer.Transport. It returns
// an error instead of blocking forever if the connection has already torn
// down.
func (c *conn) Send(cmd wire.Command, payload []byte) error {
	frame := wire.Encode(cmd, payload)
	select {
	case c.out <- frame:
		return nil
	case <-c.done:
		return fmt.Errorf("session: client %d is no longer connected", c.id)
	}
}

// Close tears down the connection exactly once: the writer goroutine stops,
// the socket closes, and any in-flight upload is abandoned (its partial
// file is retained, per transfer.Receiver.Close).
func (c *conn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.nc.Close()
		c.receiver.Close()
	})
}

// directory is the process-wide live-connection lookup used to route
// broadcasts and file-offer traffic to a ClientId's socket.
type directory struct {
	mu    sync.Mutex
	conns map[ids.ClientId]*conn
}

func newDirectory() *directory {
	return &directory{conns: make(map[ids.ClientId]*conn)}
}

func (d *directory) add(c *conn) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.conns[c.id] = c
}

func (d *directory) remove(id ids.ClientId) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.conns, id)
}

func (d *directory) get(id ids.ClientId) (*conn, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.conns[id]
	return c, ok
}

// Send implements transfer.Transport, routing a framed message to to's
// connection if it is still live.
func (d *directory) Send(to ids.ClientId, cmd wire.Command, payload []byte) error {
	c, ok := d.get(to)
	if !ok {
		return fmt.Errorf("session: client %d is not connected", to)
	}
	return c.Send(cmd, payload)
}

// SendText implements rooms.Sender, wrapping a broadcast string as a
// MessageTextResponse frame.
func (d *directory) SendText(to ids.ClientId, message string) error {
	return d.Send(to, wire.MessageTextResponse, []byte(message))
}
