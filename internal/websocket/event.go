// Package websocket implements the WebSocket-over-HTTP framing used by a
// GRIP proxy: event encoding, control messages and a per-request context
// for building responses.
package websocket

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"

	gws "github.com/gorilla/websocket"

	ierrors "github.com/jamesprial/go-grip/internal/errors"
	"github.com/jamesprial/go-grip/internal/grip"
)

const domainWebSocket = "websocket"

// Event types defined by the WebSocket-over-HTTP protocol.
const (
	EventOpen       = "OPEN"
	EventText       = "TEXT"
	EventBinary     = "BINARY"
	EventPing       = "PING"
	EventPong       = "PONG"
	EventClose      = "CLOSE"
	EventDisconnect = "DISCONNECT"
)

var crlf = []byte("\r\n")

// Event is one framed WebSocket-over-HTTP event. A nil Content encodes
// without a length section ("OPEN\r\n"); an empty non-nil Content encodes
// as "TEXT 0\r\n\r\n".
type Event struct {
	Type    string
	Content []byte
}

// NewTextEvent returns a TEXT event.
func NewTextEvent(text string) Event {
	return Event{Type: EventText, Content: []byte(text)}
}

// NewBinaryEvent returns a BINARY event.
func NewBinaryEvent(data []byte) Event {
	return Event{Type: EventBinary, Content: append([]byte{}, data...)}
}

// NewCloseEvent returns a CLOSE event carrying the close code and reason.
// gws.CloseNoStatusReceived produces an event without a code.
func NewCloseEvent(code int, reason string) Event {
	return Event{Type: EventClose, Content: gws.FormatCloseMessage(code, reason)}
}

// CloseCode returns the code carried by a CLOSE event, or
// gws.CloseNoStatusReceived if it has none.
func (e Event) CloseCode() int {
	if len(e.Content) < 2 {
		return gws.CloseNoStatusReceived
	}
	return int(binary.BigEndian.Uint16(e.Content[:2]))
}

// Encode returns the wire form of the event.
func (e Event) Encode() []byte {
	if e.Content == nil {
		return grip.ConcatBytes([]byte(e.Type), crlf)
	}
	header := e.Type + " " + strconv.FormatInt(int64(len(e.Content)), 16)
	return grip.ConcatBytes([]byte(header), crlf, e.Content, crlf)
}

// EncodeEvents encodes events back to back.
func EncodeEvents(events []Event) []byte {
	parts := make([][]byte, 0, len(events))
	for _, e := range events {
		parts = append(parts, e.Encode())
	}
	return grip.ConcatBytes(parts...)
}

// DecodeEvents parses a WebSocket-over-HTTP body.
func DecodeEvents(data []byte) ([]Event, error) {
	var events []Event
	for len(data) > 0 {
		at := bytes.Index(data, crlf)
		if at < 0 {
			return nil, ierrors.Invalid(domainWebSocket, "DecodeEvents",
				fmt.Errorf("%w: missing line terminator", ErrMalformedEvents))
		}
		line := string(data[:at])
		data = data[at+len(crlf):]

		typ, sizeHex, hasSize := cutSpace(line)
		if typ == "" {
			return nil, ierrors.Invalid(domainWebSocket, "DecodeEvents",
				fmt.Errorf("%w: empty event type", ErrMalformedEvents))
		}
		if !hasSize {
			events = append(events, Event{Type: typ})
			continue
		}

		size, err := strconv.ParseUint(sizeHex, 16, 31)
		if err != nil {
			return nil, ierrors.Invalid(domainWebSocket, "DecodeEvents",
				fmt.Errorf("%w: bad content length %q", ErrMalformedEvents, sizeHex))
		}
		if uint64(len(data)) < size+uint64(len(crlf)) {
			return nil, ierrors.Invalid(domainWebSocket, "DecodeEvents",
				fmt.Errorf("%w: truncated %s event", ErrMalformedEvents, typ))
		}
		content := append([]byte{}, data[:size]...)
		if !bytes.Equal(data[size:size+uint64(len(crlf))], crlf) {
			return nil, ierrors.Invalid(domainWebSocket, "DecodeEvents",
				fmt.Errorf("%w: content not terminated", ErrMalformedEvents))
		}
		data = data[size+uint64(len(crlf)):]
		events = append(events, Event{Type: typ, Content: content})
	}
	return events, nil
}

func cutSpace(line string) (before, after string, found bool) {
	for i := 0; i < len(line); i++ {
		if line[i] == ' ' {
			return line[:i], line[i+1:], true
		}
	}
	return line, "", false
}
