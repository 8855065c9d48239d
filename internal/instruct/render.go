package instruct

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	ierrors "github.com/jamesprial/go-grip/internal/errors"
	"github.com/jamesprial/go-grip/internal/grip"
	"github.com/jamesprial/go-grip/internal/websocket"
	pkggrip "github.com/jamesprial/go-grip/pkg/grip"
)

// Headers returns the instruction as response headers. In websocket mode
// it returns the WebSocket-over-HTTP headers instead of Grip-* headers.
func (g *Instruct) Headers() http.Header {
	h := make(http.Header)
	if g.mode == ModeWebSocket {
		h.Set(pkggrip.HeaderContentType, pkggrip.ContentTypeWebSocketEvents)
		h.Set(pkggrip.HeaderWebSocketExtensions, pkggrip.WebSocketExtensionGrip)
		return h
	}

	if g.mode != ModeNone {
		h.Set(pkggrip.HeaderGripHold, string(g.mode))
	}
	if len(g.channels) > 0 {
		h.Set(pkggrip.HeaderGripChannel, grip.FormatChannels(g.channels))
	}
	if g.timeout > 0 {
		h.Set(pkggrip.HeaderGripTimeout, strconv.Itoa(g.timeout))
	}
	if g.keep != nil {
		h.Set(pkggrip.HeaderGripKeepAlive, g.keep.headerValue())
	}
	if g.next != nil {
		h.Set(pkggrip.HeaderGripLink, g.next.headerValue())
	}
	if len(g.meta) > 0 {
		parts := make([]string, 0, len(g.meta))
		for _, k := range g.metaKeys() {
			parts = append(parts, k+"="+quoteMeta(g.meta[k]))
		}
		h.Set(pkggrip.HeaderGripSetMeta, strings.Join(parts, ", "))
	}
	if g.status != 0 {
		h.Set(pkggrip.HeaderGripStatus, strconv.Itoa(g.status))
	}
	return h
}

// holdChannel is a channel as the proxy reads it from a grip-instruct body.
type holdChannel struct {
	Name   string `json:"name"`
	PrevID string `json:"prev-id,omitempty"`
}

type holdBody struct {
	Mode      string         `json:"mode"`
	Channels  []holdChannel  `json:"channels,omitempty"`
	Timeout   int            `json:"timeout,omitempty"`
	KeepAlive map[string]any `json:"keep-alive,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
}

type responseBody struct {
	Code    int               `json:"code,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

type instructBody struct {
	Hold     holdBody      `json:"hold"`
	Response *responseBody `json:"response,omitempty"`
}

// Body returns the application/grip-instruct JSON form. A missing hold mode
// defaults to "response"; websocket mode has no body form and is rendered
// with WebSocketEvents.
func (g *Instruct) Body() ([]byte, error) {
	if g.mode == ModeWebSocket {
		return nil, ierrors.Invalid(domainInstruct, "Body", ErrWebSocketBody)
	}

	mode := g.mode
	if mode == ModeNone {
		mode = ModeResponse
	}
	body := instructBody{Hold: holdBody{Mode: string(mode), Timeout: g.timeout}}
	for _, ch := range g.channels {
		body.Hold.Channels = append(body.Hold.Channels, holdChannel{Name: ch.Name(), PrevID: ch.PrevID()})
	}
	if g.keep != nil {
		ka := map[string]any{}
		switch c := g.keep.content.(type) {
		case grip.Text:
			ka["content"] = string(c)
		case grip.Binary:
			ka["content-bin"] = grip.EncodeBase64(c)
		}
		if g.keep.timeout > 0 {
			ka["timeout"] = g.keep.timeout
		}
		body.Hold.KeepAlive = ka
	}
	if len(g.meta) > 0 {
		body.Hold.Meta = make(map[string]any, len(g.meta))
		for k, v := range g.meta {
			body.Hold.Meta[k] = v
		}
	}

	if g.status != 0 || g.next != nil {
		resp := &responseBody{Code: g.status}
		if g.next != nil {
			resp.Headers = map[string]string{pkggrip.HeaderGripLink: g.next.headerValue()}
		}
		body.Response = resp
	}
	return json.Marshal(body)
}

// WebSocketEvents returns the events answering a WebSocket-over-HTTP
// request: OPEN, then a subscribe control message per channel, then
// keep-alive and set-meta control messages.
func (g *Instruct) WebSocketEvents() ([]websocket.Event, error) {
	events := []websocket.Event{{Type: websocket.EventOpen}}
	add := func(msgType string, args map[string]any) error {
		msg, err := websocket.ControlMessage(msgType, args)
		if err != nil {
			return err
		}
		events = append(events, websocket.NewTextEvent(msg))
		return nil
	}

	for _, ch := range g.channels {
		if err := add(websocket.ControlSubscribe, map[string]any{"channel": ch.Name()}); err != nil {
			return nil, err
		}
	}
	if g.keep != nil {
		args := map[string]any{}
		switch c := g.keep.content.(type) {
		case grip.Text:
			args["content"] = string(c)
		case grip.Binary:
			args["content-bin"] = grip.EncodeBase64(c)
		}
		if g.keep.timeout > 0 {
			args["timeout"] = g.keep.timeout
		}
		if err := add(websocket.ControlKeepAlive, args); err != nil {
			return nil, err
		}
	}
	for _, k := range g.metaKeys() {
		if err := add(websocket.ControlSetMeta, map[string]any{"name": k, "value": g.meta[k]}); err != nil {
			return nil, err
		}
	}
	return events, nil
}

// Write sends the immediate 200 response carrying the instruction: Grip-*
// headers plus a grip-instruct body, or WebSocket-over-HTTP events in
// websocket mode.
func (g *Instruct) Write(w http.ResponseWriter) error {
	var body []byte
	if g.mode == ModeWebSocket {
		events, err := g.WebSocketEvents()
		if err != nil {
			return err
		}
		body = websocket.EncodeEvents(events)
	} else {
		b, err := g.Body()
		if err != nil {
			return err
		}
		body = b
	}

	for k, v := range g.Headers() {
		w.Header()[k] = v
	}
	if g.mode != ModeWebSocket {
		w.Header().Set(pkggrip.HeaderContentType, pkggrip.ContentTypeGripInstruct)
	}
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(body)
	return err
}
