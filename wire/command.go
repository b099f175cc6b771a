// Copyright (c) 2025 The chatrelay Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

// Command identifies the kind of a framed message. It is the complete set
// of tags the dispatcher recognizes.
type Command uint8

const (
	// JoinRoom (c->s): "<clientName> <roomId>".
	JoinRoom Command = 0x01
	// MessageText (c->s): "<clientName> <text...>".
	MessageText Command = 0x02
	// FileOffer (c->s): "fo <senderName> <filename> <sizeBytes>".
	FileOffer Command = 0x03
	// FileSize (c->s): "<clientName> <filename> <sizeBytes>"; opens an upload.
	FileSize Command = 0x04
	// FileChunk (c->s or s->c): raw bytes belonging to the currently open
	// upload on this connection, or to an in-progress download.
	FileChunk Command = 0x05
	// JoinRoomResponse (s->c): short status text.
	JoinRoomResponse Command = 0x10
	// MessageTextResponse (s->c): broadcast text to recipients.
	MessageTextResponse Command = 0x20
	// FileOfferResponse (either direction): "y" or "n".
	FileOfferResponse Command = 0x30
	// Unknown (s->c): error text.
	Unknown Command = 0xFF
)

// String renders the command tag for logging.
func (c Command) String() string {
	switch c {
	case JoinRoom:
		return "JoinRoom"
	case MessageText:
		return "MessageText"
	case FileOffer:
		return "FileOffer"
	case FileSize:
		return "FileSize"
	case FileChunk:
		return "FileChunk"
	case JoinRoomResponse:
		return "JoinRoomResponse"
	case MessageTextResponse:
		return "MessageTextResponse"
	case FileOfferResponse:
		return "FileOfferResponse"
	case Unknown:
		return "Unknown"
	default:
		return "Command(0x" + hexByte(uint8(c)) + ")"
	}
}

const hexDigits = "0123456789abcdef"

func hexByte(b uint8) string {
	return string([]byte{hexDigits[b>>4], hexDigits[b&0xf]})
}
