// Copyright (c) 2025 The chatrelay Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package transfer

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	logging "gopkg.in/op/go-logging.v1"

	"go.chatrelay.io/chatrelay/ids"
	"go.chatrelay.io/chatrelay/promise"
	"go.chatrelay.io/chatrelay/wire"
)

// DefaultOfferTimeout is the per-recipient wait for a FileOfferResponse,
// per spec.md §4.6 step 2c.
const DefaultOfferTimeout = 30 * time.Second

// DefaultChunkSize is the maximum payload of one FileChunk frame during a
// streaming send, per spec.md §4.6's streaming-send description.
const DefaultChunkSize = 1024

// Offer describes one file-offer request, gathered by the dispatcher's
// FileOffer handler before handing off to the Coordinator.
type Offer struct {
	Path       string // server-side path of the already-uploaded file
	Filename   string
	Size       int64
	Sender     ids.ClientId
	SenderName string
}

// Transport is the minimal capability the Coordinator needs from the
// session layer: send one framed message to one client. Implementations
// are expected to route through that client's outbound writer so that
// concurrent senders (broadcast, other offers) never interleave frames on
// the same socket.
type Transport interface {
	Send(to ids.ClientId, cmd wire.Command, payload []byte) error
}

// Coordinator implements the file-offer/accept handshake of spec.md §4.6:
// for each recipient other than the sender, send an offer, await a
// Yes/No reply with a timeout, then stream the file on acceptance.
type Coordinator struct {
	promises     *promise.Table
	chunkSize    int
	offerTimeout time.Duration
	logger       *logging.Logger
}

// NewCoordinator returns a Coordinator using promises for response
// correlation. A zero chunkSize or offerTimeout selects the spec default.
func NewCoordinator(promises *promise.Table, chunkSize int, offerTimeout time.Duration, logger *logging.Logger) *Coordinator {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if offerTimeout <= 0 {
		offerTimeout = DefaultOfferTimeout
	}
	return &Coordinator{promises: promises, chunkSize: chunkSize, offerTimeout: offerTimeout, logger: logger}
}

// Offer runs the handshake against every member of recipients other than
// offer.Sender, one goroutine per recipient, and waits for all of them to
// finish before returning (spec.md §4.6 step 3 / §5's "joined before the
// coordinator returns").
func (c *Coordinator) Offer(offer Offer, recipients []ids.ClientId, transport Transport) {
	var wg sync.WaitGroup
	for _, recipient := range recipients {
		if recipient == offer.Sender {
			continue
		}
		wg.Add(1)
		go func(recipient ids.ClientId) {
			defer wg.Done()
			c.offerOne(offer, recipient, transport)
		}(recipient)
	}
	wg.Wait()
}

func (c *Coordinator) offerOne(offer Offer, recipient ids.ClientId, transport Transport) {
	waiter := c.promises.Arm(recipient)

	payload := fmt.Sprintf("fo %s %s %d", offer.SenderName, offer.Filename, offer.Size)
	if err := transport.Send(recipient, wire.FileOffer, []byte(payload)); err != nil {
		c.promises.Disarm(recipient)
		c.logf("send file offer to client %d: %v", recipient, err)
		return
	}

	select {
	case response := <-waiter:
		switch response {
		case promise.Disconnected:
			c.logf("client %d disconnected while awaiting offer response for %s", recipient, offer.Filename)
		case "y":
			c.stream(offer, recipient, transport)
		default:
			c.logf("client %d rejected file %s", recipient, offer.Filename)
		}
	case <-time.After(c.offerTimeout):
		c.promises.Disarm(recipient)
		c.logf("Timeout waiting for response from client %d", recipient)
	}
}

// stream opens offer.Path and sends it to recipient as a FileSize frame
// followed by FileChunk frames of up to c.chunkSize bytes. Any read or
// send error aborts delivery to this recipient only.
func (c *Coordinator) stream(offer Offer, recipient ids.ClientId, transport Transport) {
	f, err := os.Open(offer.Path)
	if err != nil {
		c.logf("open %s for streaming to client %d: %v", offer.Path, recipient, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		c.logf("stat %s: %v", offer.Path, err)
		return
	}
	size := info.Size()

	sizePayload := fmt.Sprintf("%s %d", offer.Filename, size)
	if err := transport.Send(recipient, wire.FileSize, []byte(sizePayload)); err != nil {
		c.logf("send file size to client %d: %v", recipient, err)
		return
	}

	buf := make([]byte, c.chunkSize)
	remaining := size
	for remaining > 0 {
		want := int64(len(buf))
		if remaining < want {
			want = remaining
		}
		n, rerr := f.Read(buf[:want])
		if n > 0 {
			if serr := transport.Send(recipient, wire.FileChunk, buf[:n]); serr != nil {
				c.logf("send file chunk to client %d: %v", recipient, serr)
				return
			}
			remaining -= int64(n)
		}
		if rerr != nil {
			if rerr == io.EOF {
				break
			}
			c.logf("read %s: %v", offer.Path, rerr)
			return
		}
	}
}

func (c *Coordinator) logf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Errorf(format, args...)
	}
}
