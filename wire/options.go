// Copyright (c) 2025 The chatrelay Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

// defaultReadLimit is the default cap on an accepted payload_length. It is
// well above the 2^20 floor spec requires for file chunks.
const defaultReadLimit = 16 << 20 // 16 MiB

// Options configures a Reader.
type Options struct {
	// ReadLimit caps the maximum accepted payload_length, in bytes. Zero
	// selects defaultReadLimit; a negative value disables the cap.
	ReadLimit int
}

var defaultOptions = Options{ReadLimit: defaultReadLimit}

// Option configures a Reader constructed by NewReader.
type Option func(*Options)

// WithReadLimit caps the maximum payload_length a Reader accepts. Frames
// whose declared length exceeds the limit cause Next to return ErrTooLong
// instead of attempting to allocate and read the payload.
func WithReadLimit(limit int) Option {
	return func(o *Options) { o.ReadLimit = limit }
}
