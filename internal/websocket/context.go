package websocket

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"sort"
	"strings"

	gws "github.com/gorilla/websocket"

	ierrors "github.com/jamesprial/go-grip/internal/errors"
	"github.com/jamesprial/go-grip/internal/grip"
	pkggrip "github.com/jamesprial/go-grip/pkg/grip"
)

// maxBodySize bounds the event body read from an inbound request.
const maxBodySize = 1 << 20

// IsWebSocketOverHTTP reports whether r carries WebSocket-over-HTTP events.
func IsWebSocketOverHTTP(r *http.Request) bool {
	if r.Method != http.MethodPost {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(r.Header.Get(pkggrip.HeaderContentType))
	if err != nil {
		return false
	}
	return mediaType == pkggrip.ContentTypeWebSocketEvents
}

// Context accumulates the response to one WebSocket-over-HTTP request:
// inbound events are read with Recv, outbound events and control messages
// are queued and rendered by Headers and Body. A Context belongs to a
// single request and is not safe for concurrent use.
type Context struct {
	id       string
	in       []Event
	readIdx  int
	accepted bool

	closed    bool
	closeCode int

	outClose *Event
	out      []Event
	origMeta map[string]string
	meta     map[string]string
}

// NewContext reads and decodes the body of a WebSocket-over-HTTP request.
func NewContext(r *http.Request) (*Context, error) {
	if !IsWebSocketOverHTTP(r) {
		return nil, ierrors.New(domainWebSocket, "NewContext", ierrors.ErrBadRequest, ErrNotWebSocketOverHTTP)
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return nil, ierrors.New(domainWebSocket, "NewContext", ierrors.ErrBadRequest,
			fmt.Errorf("read body: %w", err))
	}
	events, err := DecodeEvents(body)
	if err != nil {
		return nil, err
	}

	meta := make(map[string]string)
	for name, values := range r.Header {
		lower := strings.ToLower(name)
		prefix := strings.ToLower(pkggrip.HeaderMetaPrefix)
		if strings.HasPrefix(lower, prefix) && len(values) > 0 {
			meta[lower[len(prefix):]] = values[0]
		}
	}

	return NewContextFromEvents(r.Header.Get(pkggrip.HeaderConnectionID), events, meta), nil
}

// NewContextFromEvents builds a context from already decoded events.
func NewContextFromEvents(id string, events []Event, meta map[string]string) *Context {
	orig := make(map[string]string, len(meta))
	cur := make(map[string]string, len(meta))
	for k, v := range meta {
		orig[k] = v
		cur[k] = v
	}
	return &Context{
		id:       id,
		in:       events,
		origMeta: orig,
		meta:     cur,
	}
}

// ID returns the proxy's connection id.
func (c *Context) ID() string { return c.id }

// IsOpening reports whether the request starts with an OPEN event.
func (c *Context) IsOpening() bool {
	return len(c.in) > 0 && c.in[0].Type == EventOpen
}

// Accept accepts an opening connection.
func (c *Context) Accept() { c.accepted = true }

// Accepted reports whether Accept was called.
func (c *Context) Accepted() bool { return c.accepted }

// Meta returns the current value of a connection meta key.
func (c *Context) Meta(key string) (string, bool) {
	v, ok := c.meta[strings.ToLower(key)]
	return v, ok
}

// SetMeta sets a connection meta value, sent back as a Set-Meta-* header.
func (c *Context) SetMeta(key, value string) {
	c.meta[strings.ToLower(key)] = value
}

// CanRecv reports whether unread TEXT, BINARY, CLOSE or DISCONNECT events remain.
func (c *Context) CanRecv() bool {
	for _, e := range c.in[c.readIdx:] {
		switch e.Type {
		case EventText, EventBinary, EventClose, EventDisconnect:
			return true
		}
	}
	return false
}

// Recv returns the next client message. It returns ErrClosed after a CLOSE
// event, ErrDisconnected after a DISCONNECT event and io.EOF when the
// request holds no further messages.
func (c *Context) Recv() (grip.Content, error) {
	for c.readIdx < len(c.in) {
		e := c.in[c.readIdx]
		c.readIdx++
		switch e.Type {
		case EventText:
			return grip.Text(e.Content), nil
		case EventBinary:
			return grip.Binary(e.Content), nil
		case EventClose:
			c.closed = true
			c.closeCode = e.CloseCode()
			return nil, ErrClosed
		case EventDisconnect:
			c.closed = true
			return nil, ErrDisconnected
		}
	}
	return nil, io.EOF
}

// CloseCode returns the code received with the client's CLOSE event.
func (c *Context) CloseCode() int { return c.closeCode }

// Send queues a text message for the client.
func (c *Context) Send(message string) {
	c.out = append(c.out, NewTextEvent(MessagePrefix+message))
}

// SendBinary queues a binary message for the client.
func (c *Context) SendBinary(data []byte) {
	c.out = append(c.out, NewBinaryEvent(data))
}

// SendControl queues a control message built with ControlMessage.
func (c *Context) SendControl(msgType string, args map[string]any) error {
	msg, err := ControlMessage(msgType, args)
	if err != nil {
		return err
	}
	c.out = append(c.out, NewTextEvent(msg))
	return nil
}

// Subscribe subscribes the connection to a channel.
func (c *Context) Subscribe(channel string) error {
	return c.SendControl(ControlSubscribe, map[string]any{"channel": channel})
}

// Unsubscribe removes a channel subscription.
func (c *Context) Unsubscribe(channel string) error {
	return c.SendControl(ControlUnsubscribe, map[string]any{"channel": channel})
}

// Detach tells the proxy to stop forwarding events for this connection.
func (c *Context) Detach() error {
	return c.SendControl(ControlDetach, nil)
}

// Close queues a CLOSE event. A zero code sends gws.CloseNormalClosure.
func (c *Context) Close(code int) {
	if code == 0 {
		code = gws.CloseNormalClosure
	}
	e := NewCloseEvent(code, "")
	c.outClose = &e
}

// Headers returns the response headers for this request.
func (c *Context) Headers() http.Header {
	h := make(http.Header)
	h.Set(pkggrip.HeaderContentType, pkggrip.ContentTypeWebSocketEvents)
	if c.accepted {
		h.Set(pkggrip.HeaderWebSocketExtensions, pkggrip.WebSocketExtensionGrip)
	}

	keys := make([]string, 0, len(c.meta))
	for k := range c.meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if orig, ok := c.origMeta[k]; !ok || orig != c.meta[k] {
			h.Set(pkggrip.HeaderSetMetaPrefix+k, c.meta[k])
		}
	}
	return h
}

// Events returns the outbound events in wire order: OPEN if accepted,
// queued events, then CLOSE if requested.
func (c *Context) Events() []Event {
	events := make([]Event, 0, len(c.out)+2)
	if c.accepted && c.IsOpening() {
		events = append(events, Event{Type: EventOpen})
	}
	events = append(events, c.out...)
	if c.outClose != nil {
		events = append(events, *c.outClose)
	}
	return events
}

// Body returns the encoded outbound events.
func (c *Context) Body() []byte {
	return EncodeEvents(c.Events())
}

// Write writes headers and body as a 200 response.
func (c *Context) Write(w http.ResponseWriter) error {
	for k, v := range c.Headers() {
		w.Header()[k] = v
	}
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(c.Body())
	return err
}
