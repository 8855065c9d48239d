// Package grip provides shared GRIP protocol constants used by publishers,
// hold-instruction builders and the HTTP adapters.
package grip

// Hold modes understood by the proxy.
const (
	// HoldModeResponse holds the request as a long-poll until a single
	// http-response item is published.
	HoldModeResponse = "response"

	// HoldModeStream holds the request as an open streaming response that
	// receives every http-stream item published to its channels.
	HoldModeStream = "stream"
)

// Format names used as keys in published items.
const (
	// FormatHTTPResponse is the name of the http-response format.
	FormatHTTPResponse = "http-response"

	// FormatHTTPStream is the name of the http-stream format.
	FormatHTTPStream = "http-stream"

	// FormatWebSocketMessage is the name of the ws-message format.
	FormatWebSocketMessage = "ws-message"
)

// Hold instruction headers.
const (
	HeaderGripHold      = "Grip-Hold"
	HeaderGripChannel   = "Grip-Channel"
	HeaderGripTimeout   = "Grip-Timeout"
	HeaderGripKeepAlive = "Grip-Keep-Alive"
	HeaderGripLink      = "Grip-Link"
	HeaderGripSetMeta   = "Grip-Set-Meta"
	HeaderGripStatus    = "Grip-Status"

	// HeaderGripSig carries the signed token the proxy attaches to
	// requests it forwards to the backend.
	HeaderGripSig = "Grip-Sig"
)

// WebSocket-over-HTTP headers.
const (
	// HeaderConnectionID identifies the client connection on the proxy.
	HeaderConnectionID = "Connection-Id"

	// HeaderWebSocketExtensions is used to negotiate the grip extension.
	HeaderWebSocketExtensions = "Sec-WebSocket-Extensions"

	// HeaderMetaPrefix prefixes connection meta values on inbound requests.
	HeaderMetaPrefix = "Meta-"

	// HeaderSetMetaPrefix prefixes meta values the backend wants stored.
	HeaderSetMetaPrefix = "Set-Meta-"

	// WebSocketExtensionGrip is the value that enables control messages.
	WebSocketExtensionGrip = "grip"
)

// HTTP header names.
const (
	// HeaderAuthorization is the Authorization HTTP header name.
	HeaderAuthorization = "Authorization"

	// HeaderContentType is the Content-Type HTTP header name.
	HeaderContentType = "Content-Type"
)

// Content type constants.
const (
	// ContentTypeJSON is the application/json content type.
	ContentTypeJSON = "application/json"

	// ContentTypeGripInstruct is the content type of a hold instruction body.
	ContentTypeGripInstruct = "application/grip-instruct"

	// ContentTypeWebSocketEvents is the content type of WebSocket-over-HTTP bodies.
	ContentTypeWebSocketEvents = "application/websocket-events"

	// ContentTypeText is the text/plain content type.
	ContentTypeText = "text/plain"
)

// Auth schemes.
const (
	SchemeBasic  = "Basic"
	SchemeBearer = "Bearer"
)
