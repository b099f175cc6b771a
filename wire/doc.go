// Copyright (c) 2025 The chatrelay Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wire implements the length-prefixed, command-tagged message
// framing protocol spoken between chatrelay clients and the server.
//
// Wire format: every frame is a 4-byte big-endian (network byte order)
// payload length, a 1-byte command tag, and that many bytes of opaque
// payload:
//
//	offset  size  field
//	  0      4    payload_length (unsigned, big-endian)
//	  4      1    command        (unsigned byte)
//	  5      L    payload        (L = payload_length)
//
// Encode produces that layout as a single contiguous byte slice suitable
// for one io.Writer.Write call. Reader decodes frames one at a time from a
// byte stream, blocking on the underlying reader; it never returns a
// partial message.
package wire
