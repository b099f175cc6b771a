// Copyright (c) 2025 The chatrelay Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package session

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	logging "gopkg.in/op/go-logging.v1"

	"go.chatrelay.io/chatrelay/ids"
	"go.chatrelay.io/chatrelay/promise"
	"go.chatrelay.io/chatrelay/rooms"
	"go.chatrelay.io/chatrelay/transfer"
	"go.chatrelay.io/chatrelay/wire"
)

// serverFilesDirName is the fixed subdirectory name under StorageRoot that
// holds every per-sender upload directory, per spec.md §6.
const serverFilesDirName = "ServerFiles"

// Options configures a Server. Zero OfferTimeout, ChunkSize and ReadLimit
// select their package defaults; ListenAddr and StorageRoot are used as
// given (config.Default supplies the server's default values for them).
type Options struct {
	// ListenAddr is the address Serve binds, e.g. "0.0.0.0:12345".
	ListenAddr string
	// StorageRoot is the working directory under which ServerFiles/ is
	// created.
	StorageRoot string
	// OfferTimeout overrides transfer.DefaultOfferTimeout when positive.
	OfferTimeout time.Duration
	// ChunkSize overrides transfer.DefaultChunkSize when positive.
	ChunkSize int
	// ReadLimit overrides the wire.Reader's default payload cap when
	// non-zero; a negative value disables the cap.
	ReadLimit int
	// Logger receives operational messages. A nil Logger disables logging.
	Logger *logging.Logger
}

// Server accepts connections on a configured address and runs the
// dispatcher loop described in spec.md §4.9 for each one.
type Server struct {
	opts       Options
	filesRoot  string
	registry   *rooms.Registry
	promises   *promise.Table
	dir        *directory
	dispatcher *Dispatcher
	readOpts   []wire.Option
	nextID     atomic.Uint64
	logger     *logging.Logger
}

// NewServer wires a Server's shared registries, coordinator, and
// dispatcher from opts.
func NewServer(opts Options) *Server {
	registry := rooms.New(opts.Logger)
	promises := promise.New()
	dir := newDirectory()
	coordinator := transfer.NewCoordinator(promises, opts.ChunkSize, opts.OfferTimeout, opts.Logger)
	filesRoot := filepath.Join(opts.StorageRoot, serverFilesDirName)
	dispatcher := NewDispatcher(registry, promises, coordinator, dir, filesRoot, opts.Logger)

	var readOpts []wire.Option
	if opts.ReadLimit != 0 {
		readOpts = append(readOpts, wire.WithReadLimit(opts.ReadLimit))
	}

	return &Server{
		opts:       opts,
		filesRoot:  filesRoot,
		registry:   registry,
		promises:   promises,
		dir:        dir,
		dispatcher: dispatcher,
		readOpts:   readOpts,
		logger:     opts.Logger,
	}
}

// Listen creates the storage directory and binds the configured listen
// address, returning the bound Listener without accepting connections yet.
// Split out from Serve so tests and cmd/chatrelayd can observe the actual
// bound address (useful with a ":0" port).
func (s *Server) Listen(ctx context.Context) (net.Listener, error) {
	if err := os.MkdirAll(s.filesRoot, 0o755); err != nil {
		return nil, err
	}

	lc := net.ListenConfig{}
	return lc.Listen(ctx, "tcp", s.opts.ListenAddr)
}

// Serve binds the listener and accepts connections until ctx is cancelled
// or Accept fails. It returns a non-nil error on a bind failure (spec.md
// §6's "non-zero on socket setup failure" is the caller's responsibility to
// translate into an exit code).
func (s *Server) Serve(ctx context.Context) error {
	ln, err := s.Listen(ctx)
	if err != nil {
		return err
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener accepts connections on an already-bound ln until ctx is
// cancelled or Accept fails.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	return s.acceptLoop(ctx, ln)
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		nc, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		id := ids.ClientId(s.nextID.Add(1))
		go s.handleConn(id, nc)
	}
}

// handleConn runs one connection's lifetime: registration, the
// read-decode-dispatch loop, and teardown.
func (s *Server) handleConn(id ids.ClientId, nc net.Conn) {
	c := newConn(id, nc)
	s.dir.add(c)
	// Every client starts in the implicit room 0 until it sends JoinRoom.
	s.registry.Join(id, 0)

	defer s.teardown(id, c)

	reader := wire.NewReader(nc, s.readOpts...)
	for {
		cmd, payload, err := reader.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.logf("connection %d: %v", id, err)
			}
			return
		}
		s.dispatcher.Dispatch(id, c, cmd, payload)
	}
}

// teardown implements spec.md §4.9's disconnect sequence: leave the room,
// discard file-reception state, release any armed promise, close the
// socket, and remove the connection from the directory.
func (s *Server) teardown(id ids.ClientId, c *conn) {
	s.registry.Leave(id)
	s.promises.Fulfil(id, promise.Disconnected)
	c.Close()
	s.dir.remove(id)
}

func (s *Server) logf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Errorf(format, args...)
	}
}
