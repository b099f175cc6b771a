// Copyright (c) 2025 The chatrelay Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"go.chatrelay.io/chatrelay/wire"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	cmds := []wire.Command{
		wire.JoinRoom, wire.MessageText, wire.FileOffer, wire.FileSize,
		wire.FileChunk, wire.JoinRoomResponse, wire.MessageTextResponse,
		wire.FileOfferResponse, wire.Unknown,
	}
	sizes := []int{0, 1, 5, 253, 254, 65535, 65536, 1 << 20}

	for _, cmd := range cmds {
		for _, size := range sizes {
			payload := bytes.Repeat([]byte{0xAB}, size)
			frame := wire.Encode(cmd, payload)

			rd := wire.NewReader(bytes.NewReader(frame), wire.WithReadLimit(-1))
			gotCmd, gotPayload, err := rd.Next()
			if err != nil {
				t.Fatalf("cmd=%v size=%d: Next: %v", cmd, size, err)
			}
			if gotCmd != cmd {
				t.Fatalf("cmd=%v size=%d: got cmd %v", cmd, size, gotCmd)
			}
			if !bytes.Equal(gotPayload, payload) {
				t.Fatalf("cmd=%v size=%d: payload mismatch", cmd, size)
			}
		}
	}
}

func TestNext_ZeroLengthPayload(t *testing.T) {
	frame := wire.Encode(wire.MessageText, nil)
	rd := wire.NewReader(bytes.NewReader(frame))
	cmd, payload, err := rd.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if cmd != wire.MessageText {
		t.Fatalf("cmd=%v", cmd)
	}
	if len(payload) != 0 {
		t.Fatalf("payload=%v want empty", payload)
	}
}

func TestNext_OneByteAtATime_MatchesWholeFeed(t *testing.T) {
	frame := wire.Encode(wire.FileChunk, []byte("hello world"))

	rd := wire.NewReader(bytes.NewReader(frame))
	wantCmd, wantPayload, wantErr := rd.Next()

	rd2 := wire.NewReader(&oneByteReader{data: frame})
	gotCmd, gotPayload, gotErr := rd2.Next()

	if gotCmd != wantCmd || !bytes.Equal(gotPayload, wantPayload) || !errorsEqual(gotErr, wantErr) {
		t.Fatalf("one-byte-at-a-time feed diverged: got=(%v,%v,%v) want=(%v,%v,%v)",
			gotCmd, gotPayload, gotErr, wantCmd, wantPayload, wantErr)
	}
}

func TestNext_PartialFinalFrameAtClose_YieldsNoSpuriousMessage(t *testing.T) {
	frame := wire.Encode(wire.MessageText, []byte("truncated"))
	truncated := frame[:len(frame)-3]

	rd := wire.NewReader(bytes.NewReader(truncated))
	_, _, err := rd.Next()
	if err == nil {
		t.Fatalf("Next: got nil error on truncated final frame")
	}
	if errors.Is(err, io.EOF) {
		t.Fatalf("Next: truncated frame must not report clean EOF, got %v", err)
	}
	if !errors.Is(err, wire.ErrMalformed) {
		t.Fatalf("Next: err=%v want ErrMalformed", err)
	}
}

func TestNext_CleanEOFAtHeaderBoundary_IsClosed(t *testing.T) {
	rd := wire.NewReader(bytes.NewReader(nil))
	_, _, err := rd.Next()
	if !errors.Is(err, io.EOF) {
		t.Fatalf("Next: err=%v want io.EOF", err)
	}
}

func TestNext_OverReadLimit_ReturnsTooLong(t *testing.T) {
	frame := wire.Encode(wire.FileChunk, make([]byte, 2048))
	rd := wire.NewReader(bytes.NewReader(frame), wire.WithReadLimit(1024))
	_, _, err := rd.Next()
	if !errors.Is(err, wire.ErrTooLong) {
		t.Fatalf("Next: err=%v want ErrTooLong", err)
	}
}

func TestWriteFrame_NilWriter(t *testing.T) {
	if err := wire.WriteFrame(nil, wire.MessageText, nil); !errors.Is(err, wire.ErrInvalidArgument) {
		t.Fatalf("err=%v want ErrInvalidArgument", err)
	}
}

func TestNext_NilReader(t *testing.T) {
	rd := wire.NewReader(nil)
	_, _, err := rd.Next()
	if !errors.Is(err, wire.ErrInvalidArgument) {
		t.Fatalf("err=%v want ErrInvalidArgument", err)
	}
}

// oneByteReader forces every Read call to return at most one byte,
// simulating a stream fed to the reader one byte at a time.
type oneByteReader struct {
	data []byte
	off  int
}

func (r *oneByteReader) Read(p []byte) (int, error) {
	if r.off >= len(r.data) {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	p[0] = r.data[r.off]
	r.off++
	return 1, nil
}

func errorsEqual(a, b error) bool {
	if a == nil || b == nil {
		return a == b
	}
	return errors.Is(a, b) || errors.Is(b, a) || a.Error() == b.Error()
}
