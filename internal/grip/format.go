package grip

import (
	"fmt"

	ierrors "github.com/jamesprial/go-grip/internal/errors"
	pkggrip "github.com/jamesprial/go-grip/pkg/grip"
)

// Format is one wire representation of a published message.
// Export must be pure and deterministic.
type Format interface {
	// Name returns the key the export is stored under in an item.
	Name() string

	// Export returns the JSON object the proxy decodes for this format.
	Export() map[string]any
}

// HTTPResponseFormat completes a held long-poll request.
type HTTPResponseFormat struct {
	// Code overrides the response status when non-zero.
	Code int

	// Reason overrides the status reason phrase when non-empty.
	Reason string

	// Headers are added to the response.
	Headers map[string]string

	// Body is the response body; nil sends none.
	Body Content
}

// Name returns "http-response".
func (f HTTPResponseFormat) Name() string { return pkggrip.FormatHTTPResponse }

// Export returns the http-response object.
func (f HTTPResponseFormat) Export() map[string]any {
	out := make(map[string]any)
	if f.Code != 0 {
		out["code"] = f.Code
	}
	if f.Reason != "" {
		out["reason"] = f.Reason
	}
	if len(f.Headers) > 0 {
		headers := make(map[string]string, len(f.Headers))
		for k, v := range f.Headers {
			headers[k] = v
		}
		out["headers"] = headers
	}
	exportContent(out, "body", f.Body)
	return out
}

// HTTPStreamFormat appends a chunk to held streaming responses, or closes
// them.
//
// Close wins over Content: a value with both set exports only the close
// action and the content is silently dropped. NewHTTPStreamFormat rejects
// that combination.
type HTTPStreamFormat struct {
	Content Content
	Close   bool
}

// NewHTTPStreamFormat builds an http-stream format. Exactly one of content
// and close must be given.
func NewHTTPStreamFormat(content Content, close bool) (HTTPStreamFormat, error) {
	if close && content != nil {
		return HTTPStreamFormat{}, ierrors.Invalid(domainGrip, "NewHTTPStreamFormat", ErrContentWithClose)
	}
	if !close && content == nil {
		return HTTPStreamFormat{}, ierrors.Invalid(domainGrip, "NewHTTPStreamFormat", ErrNoContent)
	}
	return HTTPStreamFormat{Content: content, Close: close}, nil
}

// Name returns "http-stream".
func (f HTTPStreamFormat) Name() string { return pkggrip.FormatHTTPStream }

// Export returns {"action":"close"} when closing, otherwise the content.
func (f HTTPStreamFormat) Export() map[string]any {
	out := make(map[string]any)
	if f.Close {
		out["action"] = "close"
		return out
	}
	exportContent(out, "content", f.Content)
	return out
}

// WebSocketMessageFormat sends a message to connections held as
// WebSocket-over-HTTP sessions, or closes them.
//
// As with HTTPStreamFormat, Close wins over Content at export time.
type WebSocketMessageFormat struct {
	Content Content
	Close   bool

	// Code is the close code sent with a close action; 0 omits it.
	Code int
}

// NewWebSocketMessageFormat builds a ws-message format. Content and close
// are mutually exclusive and code is only valid with close.
func NewWebSocketMessageFormat(content Content, close bool, code int) (WebSocketMessageFormat, error) {
	switch {
	case close && content != nil:
		return WebSocketMessageFormat{}, ierrors.Invalid(domainGrip, "NewWebSocketMessageFormat", ErrContentWithClose)
	case !close && content == nil:
		return WebSocketMessageFormat{}, ierrors.Invalid(domainGrip, "NewWebSocketMessageFormat", ErrNoContent)
	case code != 0 && !close:
		return WebSocketMessageFormat{}, ierrors.Invalid(domainGrip, "NewWebSocketMessageFormat",
			fmt.Errorf("%w: code %d without close", ErrInvalidCloseCode, code))
	case code != 0 && (code < 1000 || code > 4999):
		return WebSocketMessageFormat{}, ierrors.Invalid(domainGrip, "NewWebSocketMessageFormat",
			fmt.Errorf("%w: %d", ErrInvalidCloseCode, code))
	}
	return WebSocketMessageFormat{Content: content, Close: close, Code: code}, nil
}

// Name returns "ws-message".
func (f WebSocketMessageFormat) Name() string { return pkggrip.FormatWebSocketMessage }

// Export returns {"action":"close"[,"code":n]} when closing, otherwise the
// content.
func (f WebSocketMessageFormat) Export() map[string]any {
	out := make(map[string]any)
	if f.Close {
		out["action"] = "close"
		if f.Code != 0 {
			out["code"] = f.Code
		}
		return out
	}
	exportContent(out, "content", f.Content)
	return out
}
