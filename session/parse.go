// Copyright (c) 2025 The chatrelay Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package session

import (
	"strconv"
	"strings"

	"go.chatrelay.io/chatrelay/ids"
)

// parseJoinRoom parses a JoinRoom payload: "<clientName> <roomId>".
func parseJoinRoom(payload string) (name string, room ids.RoomId, ok bool) {
	fields := strings.Fields(payload)
	if len(fields) != 2 {
		return "", 0, false
	}
	n, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return "", 0, false
	}
	return fields[0], ids.RoomId(n), true
}

// parseMessageText parses a MessageText payload: "<clientName> <text...>".
// The name ends at the first space character, and only that one space is
// consumed; the remainder of the payload, including any further
// whitespace, is returned verbatim as text.
func parseMessageText(payload string) (name, text string, ok bool) {
	idx := strings.IndexByte(payload, ' ')
	if idx < 0 {
		return "", "", false
	}
	return payload[:idx], payload[idx+1:], true
}

// parseFileOffer parses a FileOffer payload: "fo <senderName> <filename>
// <sizeBytes>".
func parseFileOffer(payload string) (senderName, filename string, size int64, ok bool) {
	fields := strings.Fields(payload)
	if len(fields) != 4 || fields[0] != "fo" {
		return "", "", 0, false
	}
	n, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil || n < 0 {
		return "", "", 0, false
	}
	return fields[1], fields[2], n, true
}

// parseFileSize parses a FileSize payload: "<clientName> <filename>
// <sizeBytes>".
func parseFileSize(payload string) (clientName, filename string, size int64, ok bool) {
	fields := strings.Fields(payload)
	if len(fields) != 3 {
		return "", "", 0, false
	}
	n, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil || n < 0 {
		return "", "", 0, false
	}
	return fields[0], fields[1], n, true
}
