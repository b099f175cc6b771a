// Copyright (c) 2025 The chatrelay Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import "errors"

var (
	// ErrInvalidArgument reports a nil reader/writer or an out-of-range option.
	ErrInvalidArgument = errors.New("wire: invalid argument")

	// ErrTooLong reports that a frame's payload_length exceeds the configured
	// read limit.
	ErrTooLong = errors.New("wire: message too long")

	// ErrMalformed reports a frame whose header or payload was truncated
	// before the connection closed, or any other decode failure that is not
	// a clean end-of-stream.
	ErrMalformed = errors.New("wire: malformed frame")
)
