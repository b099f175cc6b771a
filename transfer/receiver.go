// Copyright (c) 2025 The chatrelay Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package transfer implements the two sides of file movement that spec.md
// §4.6/§4.7 describe: the file-offer coordinator that streams an accepted
// file to each consenting room member with a per-recipient timeout, and
// the per-connection file-reception state machine driven by FileSize and
// FileChunk frames.
package transfer

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoTransfer is returned by Receiver.Write when no upload has been
// opened on this connection; the dispatcher logs this and drops the chunk
// per spec.md §4.3's FileChunk handling.
var ErrNoTransfer = errors.New("transfer: no upload in progress")

// ErrUnsafePath is returned when a client-supplied name would escape the
// per-sender storage directory.
var ErrUnsafePath = errors.New("transfer: unsafe path component")

// Receiver is the per-connection in-flight receive state described in
// spec.md §4.7: it exists only between a FileSize message and the final
// FileChunk that completes it, and is touched only by its owning
// connection's goroutine, so it needs no internal lock.
type Receiver struct {
	file     *os.File
	expected int64
	received int64
}

// Open installs a new receive state for path, creating parent directories
// as needed. Any previously open (abandoned) upload on this connection is
// closed without deleting its partial file, per spec.md §4.3's "Replaces
// any prior state for this connection" rule.
func (r *Receiver) Open(path string, expected int64) error {
	r.abandon()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	r.file = f
	r.expected = expected
	r.received = 0
	return nil
}

// abandon closes the current file handle, if any, without deleting the
// partial file on disk.
func (r *Receiver) abandon() {
	if r.file != nil {
		_ = r.file.Close()
		r.file = nil
	}
}

// Active reports whether an upload is currently in progress.
func (r *Receiver) Active() bool { return r.file != nil }

// Expected returns the declared total size of the in-progress upload.
func (r *Receiver) Expected() int64 { return r.expected }

// Received returns the number of bytes written so far.
func (r *Receiver) Received() int64 { return r.received }

// Write appends payload to the open stream and reports whether the upload
// just completed (received >= expected), in which case the stream is
// closed and the receiver goes idle. Each payload is written whole, so
// received stays within 0..expected unless a final chunk runs past the
// declared size, in which case received ends above expected.
func (r *Receiver) Write(payload []byte) (completed bool, err error) {
	if r.file == nil {
		return false, ErrNoTransfer
	}
	n, werr := r.file.Write(payload)
	r.received += int64(n)
	if werr != nil {
		r.abandon()
		return false, werr
	}
	if r.received >= r.expected {
		r.abandon()
		return true, nil
	}
	return false, nil
}

// Close destroys the receive state on connection teardown: the stream is
// closed and the partial file is retained on disk (spec.md §4.7's
// file-reception state).
func (r *Receiver) Close() { r.abandon() }

// SafePath computes <root>/<name>/<filename> and rejects any ".." path
// component in name or filename, satisfying spec.md §6's minimum
// filename-sanitization requirement.
func SafePath(root, name, filename string) (string, error) {
	if hasDotDot(name) || hasDotDot(filename) {
		return "", ErrUnsafePath
	}
	return filepath.Join(root, name, filename), nil
}

func hasDotDot(component string) bool {
	for _, part := range strings.Split(filepath.ToSlash(component), "/") {
		if part == ".." {
			return true
		}
	}
	return false
}
