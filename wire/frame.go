// Copyright (c) 2025 The chatrelay Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"io"
)

const (
	headerLen        = 5
	lengthFieldLen   = 4
	maxPayloadLength = 1<<32 - 1
)

// Encode builds the on-wire representation of one frame: a 4-byte
// big-endian payload_length, the 1-byte command, and the payload itself,
// as a single contiguous slice suitable for one Write call.
func Encode(cmd Command, payload []byte) []byte {
	frame := make([]byte, headerLen+len(payload))
	binary.BigEndian.PutUint32(frame[:lengthFieldLen], uint32(len(payload)))
	frame[lengthFieldLen] = byte(cmd)
	copy(frame[headerLen:], payload)
	return frame
}

// WriteFrame encodes and writes one frame to w in a single Write call. On
// transports (such as net.Conn) that write fully or fail, this is exactly
// one atomic frame on the wire.
func WriteFrame(w io.Writer, cmd Command, payload []byte) error {
	if w == nil {
		return ErrInvalidArgument
	}
	frame := Encode(cmd, payload)
	n, err := w.Write(frame)
	if err != nil {
		return err
	}
	if n != len(frame) {
		return io.ErrShortWrite
	}
	return nil
}

// Reader decodes framed messages from an underlying byte stream one at a
// time. Reads on the underlying stream are blocking; Reader imposes no
// timeout of its own (timeouts belong to callers such as the file-offer
// coordinator).
type Reader struct {
	r     io.Reader
	limit int64

	header [headerLen]byte
}

// NewReader returns a Reader that decodes frames from r.
func NewReader(r io.Reader, opts ...Option) *Reader {
	o := defaultOptions
	for _, fn := range opts {
		fn(&o)
	}
	limit := int64(o.ReadLimit)
	if o.ReadLimit == 0 {
		limit = defaultReadLimit
	} else if o.ReadLimit < 0 {
		limit = maxPayloadLength
	}
	return &Reader{r: r, limit: limit}
}

// Next reads exactly one frame: 5 header bytes, then payload_length
// payload bytes. It returns:
//
//   - (cmd, payload, nil) on a complete frame ("decode_next" success).
//   - (0, nil, io.EOF) on a zero-length read at a header boundary ("Closed").
//   - (0, nil, err) wrapping ErrMalformed or ErrTooLong ("Malformed"): a
//     partial header/payload before close, or a payload_length beyond the
//     configured limit.
//   - (0, nil, err) with any other error from the underlying reader (for
//     example a deadline or reset on a net.Conn), returned unchanged.
//
// Next never returns a partial message: it either blocks until a full
// frame is available, or returns without consuming a dangling partial one
// beyond what has already been read from the stream (the underlying
// connection is left to be closed by the caller in that case).
func (rd *Reader) Next() (Command, []byte, error) {
	if rd.r == nil {
		return 0, nil, ErrInvalidArgument
	}

	if _, err := io.ReadFull(rd.r, rd.header[:]); err != nil {
		if err == io.EOF {
			return 0, nil, io.EOF
		}
		if err == io.ErrUnexpectedEOF {
			return 0, nil, wrapMalformed(err)
		}
		return 0, nil, err
	}

	length := binary.BigEndian.Uint32(rd.header[:lengthFieldLen])
	cmd := Command(rd.header[lengthFieldLen])

	if int64(length) > rd.limit {
		return 0, nil, ErrTooLong
	}

	if length == 0 {
		return cmd, []byte{}, nil
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(rd.r, payload); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return 0, nil, wrapMalformed(err)
		}
		return 0, nil, err
	}
	return cmd, payload, nil
}

func wrapMalformed(cause error) error {
	return &malformedError{cause: cause}
}

type malformedError struct{ cause error }

func (e *malformedError) Error() string { return ErrMalformed.Error() + ": " + e.cause.Error() }
func (e *malformedError) Unwrap() error { return ErrMalformed }
func (e *malformedError) Cause() error  { return e.cause }
