package websocket

import (
	"errors"
)

// Sentinel errors for WebSocket-over-HTTP handling.
var (
	// ErrMalformedEvents indicates a request body is not a valid event stream.
	ErrMalformedEvents = errors.New("malformed websocket events")

	// ErrNotWebSocketOverHTTP indicates a request is not a WebSocket-over-HTTP request.
	ErrNotWebSocketOverHTTP = errors.New("not a websocket-over-http request")

	// ErrClosed is returned by Recv when the client sent a CLOSE event.
	ErrClosed = errors.New("websocket closed by client")

	// ErrDisconnected is returned by Recv when the proxy reported the
	// client connection as gone.
	ErrDisconnected = errors.New("websocket disconnected")

	// ErrEmptyControlType indicates a control message without a type.
	ErrEmptyControlType = errors.New("control message type is empty")
)
